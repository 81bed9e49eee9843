package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/harrison/bulkcomplete/internal/models"
)

// AuthError is returned when the Drive authorization could not be established.
type AuthError struct {
	Message string
	Err     error
}

// Error implements the error interface for AuthError.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error wrapping support.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is reports AuthError as models.ErrUnauthorized.
func (e *AuthError) Is(target error) bool {
	return target == models.ErrUnauthorized
}

// DriveAuth guards submissions that may reference Drive evidence files.
// Before the action runs, the optional check path is requested; an action
// rejected with 401 or 403 is reported as an AuthError too.
type DriveAuth struct {
	client    *Client
	checkPath string
}

// NewDriveAuth creates a DriveAuth. An empty checkPath skips the pre-check.
func NewDriveAuth(client *Client, checkPath string) *DriveAuth {
	return &DriveAuth{client: client, checkPath: checkPath}
}

// WithAuth runs action once authorization is confirmed.
func (d *DriveAuth) WithAuth(ctx context.Context, action func(context.Context) error, errMessage string) error {
	if d.checkPath != "" {
		if err := d.client.Get(ctx, d.checkPath); err != nil {
			return &AuthError{Message: errMessage, Err: err}
		}
	}

	err := action(ctx)
	if isUnauthorized(err) {
		return &AuthError{Message: errMessage, Err: err}
	}
	return err
}

func isUnauthorized(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden
}
