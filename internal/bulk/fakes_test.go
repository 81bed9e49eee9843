package bulk

import (
	"context"
	"fmt"
	"sync"

	"github.com/harrison/bulkcomplete/internal/models"
	"github.com/harrison/bulkcomplete/internal/validation"
)

type fakeRequester struct {
	result     *models.SearchResult
	searchErr  error
	taskID     int64
	submitErr  error
	searches   []models.ListRequest
	completed  []models.CompletionRequest
	saved      []models.CompletionRequest
	beforeLoad func()
}

func (f *fakeRequester) Search(_ context.Context, req models.ListRequest) (*models.SearchResult, error) {
	f.searches = append(f.searches, req)
	if f.beforeLoad != nil {
		f.beforeLoad()
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.result, nil
}

func (f *fakeRequester) Complete(_ context.Context, payload models.CompletionRequest) (models.TaskResponse, error) {
	f.completed = append(f.completed, payload)
	return models.TaskResponse{ID: f.taskID}, f.submitErr
}

func (f *fakeRequester) SaveAnswers(_ context.Context, payload models.CompletionRequest) (models.TaskResponse, error) {
	f.saved = append(f.saved, payload)
	return models.TaskResponse{ID: f.taskID}, f.submitErr
}

type notice struct {
	Level   models.NoticeLevel
	Message string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *recordingNotifier) Notify(level models.NoticeLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{level, message})
}

func (n *recordingNotifier) levels() []models.NoticeLevel {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.NoticeLevel, 0, len(n.notices))
	for _, x := range n.notices {
		out = append(out, x.Level)
	}
	return out
}

type fakeConfirmer struct {
	answer bool
	err    error
	asked  []models.Confirmation
}

func (f *fakeConfirmer) Confirm(_ context.Context, c models.Confirmation) (bool, error) {
	f.asked = append(f.asked, c)
	return f.answer, f.err
}

type failingAuth struct{}

func (failingAuth) WithAuth(_ context.Context, _ func(context.Context) error, errMessage string) error {
	return fmt.Errorf("%s: %w", errMessage, models.ErrUnauthorized)
}

type syncTracker struct {
	fail    error
	tracked []int64
}

func (s *syncTracker) Track(_ context.Context, taskID int64, onSuccess func(), onFail func(error)) {
	s.tracked = append(s.tracked, taskID)
	if s.fail != nil {
		onFail(s.fail)
		return
	}
	onSuccess()
}

func int64Ptr(v int64) *int64 { return &v }

func textAttr(id int64, title string, mandatory bool, value string) models.Attribute {
	return models.Attribute{
		ID:           int64Ptr(id),
		Title:        title,
		Type:         models.TypeText,
		Value:        models.TextValue(models.TypeText, value),
		IsApplicable: true,
		Validation:   models.Validation{Mandatory: mandatory, Valid: !mandatory},
	}
}

func checkboxAttr(id int64, title string, mandatory, checked bool) models.Attribute {
	return models.Attribute{
		ID:           int64Ptr(id),
		Title:        title,
		Type:         models.TypeCheckbox,
		Value:        models.CheckboxValue(checked),
		IsApplicable: true,
		Validation:   models.Validation{Mandatory: mandatory, Valid: !mandatory},
	}
}

func dateAttr(id int64, title string) models.Attribute {
	return models.Attribute{
		ID:           int64Ptr(id),
		Title:        title,
		Type:         models.TypeDate,
		Value:        models.EmptyValue(models.TypeDate),
		IsApplicable: true,
		Validation:   models.Validation{Valid: true},
	}
}

func dropdownAttr(id int64, title string, mandatory bool, value string) models.Attribute {
	return models.Attribute{
		ID:           int64Ptr(id),
		Title:        title,
		Type:         models.TypeDropdown,
		Value:        models.TextValue(models.TypeDropdown, value),
		IsApplicable: true,
		Options:      models.ParseMultiChoiceOptions("Yes,No", "5,0"),
		Validation:   models.Validation{Mandatory: mandatory},
	}
}

func newRow(id int64, slug string, attrs ...models.Attribute) models.Row {
	return models.Row{
		AssessmentID: id,
		Title:        "Assessment " + slug,
		Status:       "In Progress",
		Slug:         slug,
		Attributes:   attrs,
	}
}

func newTestAggregator(req *fakeRequester, opts Options) (*Aggregator, *recordingNotifier, *syncTracker) {
	n := &recordingNotifier{}
	tr := &syncTracker{}
	agg := NewAggregator(Dependencies{
		Requester: req,
		Notifier:  n,
		Tracker:   tr,
		Validator: validation.NewValidator(nil),
	}, opts)
	return agg, n, tr
}
