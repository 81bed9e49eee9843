package api

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/bulkcomplete/internal/models"
)

func TestDriveAuth_PreCheckFailureSkipsAction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/gdrive/check", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	})
	auth := NewDriveAuth(client, "/api/gdrive/check")

	called := false
	err := auth.WithAuth(context.Background(), func(context.Context) error {
		called = true
		return nil
	}, "Unable to Authorize")

	assert.False(t, called)
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "Unable to Authorize", authErr.Message)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
	var httpErr *HTTPError
	assert.True(t, errors.As(err, &httpErr))
}

func TestDriveAuth_RunsActionAfterCheck(t *testing.T) {
	var checks int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&checks, 1)
		w.WriteHeader(http.StatusNoContent)
	})
	auth := NewDriveAuth(client, "/api/gdrive/check")

	err := auth.WithAuth(context.Background(), func(context.Context) error { return nil }, "Unable to Authorize")

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&checks))
}

func TestDriveAuth_ActionErrors(t *testing.T) {
	auth := NewDriveAuth(nil, "")

	forbidden := &HTTPError{StatusCode: http.StatusForbidden}
	err := auth.WithAuth(context.Background(), func(context.Context) error { return forbidden }, "Unable to Authorize")
	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))
	assert.True(t, errors.Is(err, models.ErrUnauthorized))

	serverErr := &HTTPError{StatusCode: http.StatusBadGateway}
	err = auth.WithAuth(context.Background(), func(context.Context) error { return serverErr }, "Unable to Authorize")
	assert.False(t, errors.As(err, &authErr))
	assert.False(t, errors.Is(err, models.ErrUnauthorized))
	assert.Equal(t, serverErr, err)
}
