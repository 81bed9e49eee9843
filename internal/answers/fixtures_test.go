package answers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harrison/bulkcomplete/internal/bulk"
	"github.com/harrison/bulkcomplete/internal/models"
)

type staticRequester struct {
	rows []models.Row
}

func (s *staticRequester) Search(context.Context, models.ListRequest) (*models.SearchResult, error) {
	return &models.SearchResult{Rows: s.rows}, nil
}

func (s *staticRequester) Complete(context.Context, models.CompletionRequest) (models.TaskResponse, error) {
	return models.TaskResponse{}, nil
}

func (s *staticRequester) SaveAnswers(context.Context, models.CompletionRequest) (models.TaskResponse, error) {
	return models.TaskResponse{}, nil
}

func idPtr(v int64) *int64 { return &v }

func attribute(id *int64, title string, kind models.AttributeType, mandatory bool) models.Attribute {
	return models.Attribute{
		ID:           id,
		Title:        title,
		Type:         kind,
		Value:        models.EmptyValue(kind),
		IsApplicable: true,
		Validation:   models.Validation{Mandatory: mandatory, Valid: !mandatory},
	}
}

func answerDropdown(id *int64) models.Attribute {
	a := attribute(id, "Answer", models.TypeDropdown, true)
	a.Options = models.ParseMultiChoiceOptions("Yes,No", "5,0")
	return a
}

func fixtureRows() []models.Row {
	tags := attribute(idPtr(14), "Tags", models.TypeMultiselect, false)
	tags.Options = models.ParseMultiChoiceOptions("pci,sox,gdpr", "")
	owner := attribute(idPtr(15), "Owner", models.TypePerson, true)
	owner.IsApplicable = false

	return []models.Row{
		{
			AssessmentID: 1,
			Slug:         "A-1",
			Title:        "Access review",
			Attributes: []models.Attribute{
				attribute(idPtr(11), "Reviewed", models.TypeCheckbox, true),
				answerDropdown(idPtr(12)),
				attribute(idPtr(13), "Due", models.TypeDate, false),
				tags,
				owner,
			},
		},
		{
			AssessmentID: 2,
			Slug:         "A-2",
			Title:        "Vendor review",
			Attributes:   []models.Attribute{answerDropdown(nil)},
		},
	}
}

func loadedAggregator(t *testing.T) *bulk.Aggregator {
	t.Helper()
	agg := bulk.NewAggregator(bulk.Dependencies{Requester: &staticRequester{rows: fixtureRows()}}, bulk.Options{})
	require.NoError(t, agg.LoadItems(context.Background()))
	t.Cleanup(agg.Close)
	return agg
}
