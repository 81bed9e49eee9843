// Package bulk holds the bulk-complete session: one RowState per loaded
// assessment and the Aggregator that collects their readiness and edits into
// a single completion request.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/harrison/bulkcomplete/internal/bus"
	"github.com/harrison/bulkcomplete/internal/models"
	"github.com/harrison/bulkcomplete/internal/validation"
)

// CompletionStatuses are the statuses an assessment may be completed from.
var CompletionStatuses = []string{"Not Started", "In Progress", "Rework Needed"}

// AuthErrorMessage is reported when the Drive authorization pre-check fails.
const AuthErrorMessage = "Unable to Authorize"

// Requester performs the backend calls of a session.
type Requester interface {
	Search(ctx context.Context, req models.ListRequest) (*models.SearchResult, error)
	Complete(ctx context.Context, payload models.CompletionRequest) (models.TaskResponse, error)
	SaveAnswers(ctx context.Context, payload models.CompletionRequest) (models.TaskResponse, error)
}

// Authorizer runs action once the operator's Drive authorization is in place.
// When authorization fails, action is not run and the returned error carries errMessage.
type Authorizer interface {
	WithAuth(ctx context.Context, action func(context.Context) error, errMessage string) error
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, c models.Confirmation) (bool, error)
}

// Notifier shows notices. It must be safe for concurrent use.
type Notifier interface {
	Notify(level models.NoticeLevel, message string)
}

// TaskTracker follows a background task until it finishes. Exactly one of
// onSuccess and onFail is called, possibly from another goroutine.
type TaskTracker interface {
	Track(ctx context.Context, taskID int64, onSuccess func(), onFail func(error))
}

// SubmissionKind tells completion and save-answers requests apart.
type SubmissionKind string

const (
	KindComplete SubmissionKind = "complete"
	KindSave     SubmissionKind = "save"
)

// Hooks are optional callbacks around submissions.
type Hooks struct {
	// Submitted runs after the backend accepted a request and returned a task id.
	Submitted func(kind SubmissionKind, taskID int64, payload models.CompletionRequest)
	// TaskFinished runs when tracking ends; err is nil on success.
	TaskFinished func(kind SubmissionKind, taskID int64, err error)
}

// Dependencies are the collaborators of an Aggregator. Requester is required;
// the others fall back to pass-through or no-op implementations.
type Dependencies struct {
	Requester  Requester
	Authorizer Authorizer
	Confirmer  Confirmer
	Notifier   Notifier
	Tracker    TaskTracker
	Validator  *validation.Validator
}

// Options scope the assessment list and identify the operator.
type Options struct {
	// MyAssessments lists the operator's own assessments instead of those of Parent.
	MyAssessments bool
	Parent        *models.ObjectRef
	// Filter is an additional operator filter joined to the list query.
	Filter      *models.Expression
	Statuses    []string
	CurrentUser models.PersonRef
	Hooks       Hooks
}

// Aggregator owns the rows of a session and tracks which of them are ready
// to complete and which attributes were edited.
type Aggregator struct {
	deps Dependencies
	opts Options
	bus  *bus.Bus

	listRequest *models.ListRequest
	rows        []*RowState
	headers     []models.AttributeHeader

	toComplete *idSet
	toSave     *editMap
	count      int

	attributeModified bool
	gridEmpty         bool
	loadErr           error
	lastTaskID        int64

	loading     atomic.Bool
	unsubscribe []func()
}

// NewAggregator creates an Aggregator with its own bus.
func NewAggregator(deps Dependencies, opts Options) *Aggregator {
	if deps.Authorizer == nil {
		deps.Authorizer = noAuth{}
	}
	if deps.Notifier == nil {
		deps.Notifier = noNotifier{}
	}
	if deps.Confirmer == nil {
		deps.Confirmer = alwaysConfirm{}
	}
	if deps.Validator == nil {
		deps.Validator = validation.NewValidator(nil)
	}
	if len(opts.Statuses) == 0 {
		opts.Statuses = CompletionStatuses
	}

	a := &Aggregator{
		deps:       deps,
		opts:       opts,
		bus:        bus.New(),
		toComplete: newIDSet(),
		toSave:     newEditMap(),
	}
	a.unsubscribe = append(a.unsubscribe,
		a.bus.AttributeModified.Subscribe(a.onAttributeModified),
		a.bus.ReadyToComplete.Subscribe(a.onReadyToComplete),
	)
	return a
}

// Bus returns the bus shared by the aggregator and its rows.
func (a *Aggregator) Bus() *bus.Bus {
	return a.bus
}

// BuildListRequest builds and stores the query for the assessments to show.
func (a *Aggregator) BuildListRequest() models.ListRequest {
	var scope *models.Expression
	switch {
	case a.opts.MyAssessments:
		scope = models.Contains("Assignees", a.opts.CurrentUser.Email)
	case a.opts.Parent != nil:
		scope = models.Relevant(*a.opts.Parent)
	}

	req := models.ListRequest{
		ObjectName: "Assessment",
		Filters: models.QueryFilters{
			Expression: models.And(models.In("Status", a.opts.Statuses), a.opts.Filter, scope),
		},
		Type: "ids",
	}
	a.listRequest = &req
	return req
}

// LoadItems fetches the rows and resets the session state. A call made while
// another load runs returns ErrLoadInProgress.
func (a *Aggregator) LoadItems(ctx context.Context) error {
	if !a.loading.CompareAndSwap(false, true) {
		return ErrLoadInProgress
	}
	defer a.loading.Store(false)

	if a.listRequest == nil {
		a.BuildListRequest()
	}

	result, err := a.deps.Requester.Search(ctx, *a.listRequest)
	if err != nil {
		a.loadErr = err
		a.deps.Notifier.Notify(models.NoticeError, "Failed to load assessments: "+err.Error())
		return fmt.Errorf("load assessments: %w", err)
	}

	a.closeRows()
	a.toComplete = newIDSet()
	a.toSave = newEditMap()
	a.count = 0
	a.attributeModified = false
	a.loadErr = nil
	a.headers = append([]models.AttributeHeader(nil), result.Headers...)
	a.gridEmpty = len(result.Rows) == 0

	a.rows = make([]*RowState, 0, len(result.Rows))
	for _, row := range result.Rows {
		a.rows = append(a.rows, NewRowState(row.Clone(), a.bus, a.deps.Validator))
	}
	for _, r := range a.rows {
		r.Init()
	}
	return nil
}

func (a *Aggregator) onAttributeModified(ev bus.AttributeModified) {
	a.attributeModified = true
	if ev.Ready {
		a.toComplete.Add(ev.AssessmentID)
	} else {
		a.toComplete.Delete(ev.AssessmentID)
	}
	a.toSave.Record(ev.AssessmentID, ev.Slug, ev.AttributeIndex, ev.Attribute)
	a.count = a.toComplete.Len()
}

func (a *Aggregator) onReadyToComplete(ev bus.ReadyToComplete) {
	a.toComplete.Add(ev.AssessmentID)
	a.toSave.Ensure(ev.AssessmentID, ev.Slug)
	a.count = a.toComplete.Len()
}

// IsCompleteEnabled reports whether at least one assessment is ready.
func (a *Aggregator) IsCompleteEnabled() bool {
	return a.count > 0
}

// CompletionConfirmation is the question asked before completing.
func (a *Aggregator) CompletionConfirmation() models.Confirmation {
	return models.Confirmation{
		Title: "Confirmation",
		Description: fmt.Sprintf("Please confirm the bulk completion request for %d highlighted assessment(s). "+
			"Answers to all other assessments will be saved", a.count),
		ConfirmLabel: "Proceed",
	}
}

// OnCompleteClick asks for confirmation and completes the ready assessments.
// It reports whether the operator confirmed; a declined confirmation leaves
// the state untouched.
func (a *Aggregator) OnCompleteClick(ctx context.Context) (bool, error) {
	ok, err := a.deps.Confirmer.Confirm(ctx, a.CompletionConfirmation())
	if err != nil {
		return false, fmt.Errorf("confirm completion: %w", err)
	}
	if !ok {
		return false, nil
	}
	if _, err := a.CompleteAssessments(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// BuildCompletionPayload builds the request body from the edit map. Only
// modified applicable attributes are sent and assessments without any are
// left out. With saveOnly no assessment is completed.
func (a *Aggregator) BuildCompletionPayload(saveOnly bool) models.CompletionRequest {
	req := models.CompletionRequest{
		AssessmentsIDs: []int64{},
		Attributes:     []models.AssessmentValues{},
	}
	if !saveOnly {
		req.AssessmentsIDs = a.toComplete.IDs()
	}

	for _, entry := range a.toSave.Entries() {
		var values []models.AttributeValue
		for _, attr := range entry.Attributes() {
			if !attr.Modified || !attr.IsApplicable {
				continue
			}
			values = append(values, models.AttributeValue{
				Value:        completionValue(attr.Value),
				Title:        attr.Title,
				Type:         attr.Type,
				DefinitionID: entry.AssessmentID,
				ID:           attr.ID,
				Extra:        models.NewExtra(attr.Attachments, a.opts.CurrentUser.ID),
			})
		}
		if len(values) == 0 {
			continue
		}
		req.Attributes = append(req.Attributes, models.AssessmentValues{
			Assessment: models.AssessmentRef{ID: entry.AssessmentID, Slug: entry.Slug},
			Values:     values,
		})
	}
	return req
}

// completionValue coerces a value to the form the backend stores.
func completionValue(v models.Value) interface{} {
	switch v.Kind() {
	case models.TypeCheckbox:
		if v.Checked() {
			return "1"
		}
		return "0"
	case models.TypeDate:
		return v.Text()
	case models.TypePerson:
		return v.People()
	case models.TypeInput, models.TypeText, models.TypeDropdown, models.TypeMultiselect:
		return v.Text()
	default:
		return v.Raw()
	}
}

// CompleteAssessments sends the completion request, starts tracking the
// background task and drops the completed rows. It returns the task id.
func (a *Aggregator) CompleteAssessments(ctx context.Context) (int64, error) {
	payload := a.BuildCompletionPayload(false)

	resp, err := a.submit(ctx, payload, a.deps.Requester.Complete)
	if err != nil {
		a.notifySubmitError(err, models.CompletionMessages.Fail)
		return 0, fmt.Errorf("complete assessments: %w", err)
	}
	if resp.ID == 0 {
		a.deps.Notifier.Notify(models.NoticeError, models.CompletionMessages.Fail)
		return 0, ErrNoTaskID
	}

	a.count = 0
	a.lastTaskID = resp.ID
	if a.opts.Hooks.Submitted != nil {
		a.opts.Hooks.Submitted(KindComplete, resp.ID, payload)
	}
	a.trackBackgroundTask(ctx, KindComplete, resp.ID, models.CompletionMessages)
	a.cleanUpGridAfterCompletion()
	return resp.ID, nil
}

// SaveAnswers sends every edit without completing any assessment. Rows and
// readiness are kept. It returns the task id, or zero when the backend saved
// synchronously.
func (a *Aggregator) SaveAnswers(ctx context.Context) (int64, error) {
	payload := a.BuildCompletionPayload(true)

	resp, err := a.submit(ctx, payload, a.deps.Requester.SaveAnswers)
	if err != nil {
		a.notifySubmitError(err, models.SaveMessages.Fail)
		return 0, fmt.Errorf("save answers: %w", err)
	}

	a.lastTaskID = resp.ID
	if a.opts.Hooks.Submitted != nil {
		a.opts.Hooks.Submitted(KindSave, resp.ID, payload)
	}
	if resp.ID == 0 {
		a.deps.Notifier.Notify(models.NoticeSuccess, models.SaveMessages.Success)
		return 0, nil
	}
	a.trackBackgroundTask(ctx, KindSave, resp.ID, models.SaveMessages)
	return resp.ID, nil
}

func (a *Aggregator) submit(
	ctx context.Context,
	payload models.CompletionRequest,
	call func(context.Context, models.CompletionRequest) (models.TaskResponse, error),
) (models.TaskResponse, error) {
	var resp models.TaskResponse
	err := a.deps.Authorizer.WithAuth(ctx, func(ctx context.Context) error {
		var err error
		resp, err = call(ctx, payload)
		return err
	}, AuthErrorMessage)
	return resp, err
}

// notifySubmitError shows AuthErrorMessage for authorization failures and
// fallback for everything else.
func (a *Aggregator) notifySubmitError(err error, fallback string) {
	message := fallback
	if errors.Is(err, models.ErrUnauthorized) {
		message = AuthErrorMessage
	}
	a.deps.Notifier.Notify(models.NoticeError, message)
}

func (a *Aggregator) trackBackgroundTask(ctx context.Context, kind SubmissionKind, taskID int64, messages models.TaskMessages) {
	a.deps.Notifier.Notify(models.NoticeProgress, messages.Start)
	if a.deps.Tracker == nil {
		return
	}

	finished := a.opts.Hooks.TaskFinished
	a.deps.Tracker.Track(ctx, taskID,
		func() {
			a.deps.Notifier.Notify(models.NoticeSuccess, messages.Success)
			if finished != nil {
				finished(kind, taskID, nil)
			}
		},
		func(err error) {
			message := messages.Fail
			if errors.Is(err, models.ErrTrackingLost) {
				message = messages.Lost
			}
			a.deps.Notifier.Notify(models.NoticeError, message)
			if finished != nil {
				finished(kind, taskID, err)
			}
		},
	)
}

// cleanUpGridAfterCompletion drops the completed rows and resets the edits.
func (a *Aggregator) cleanUpGridAfterCompletion() {
	remaining := make([]*RowState, 0, len(a.rows))
	for _, r := range a.rows {
		if a.toComplete.Has(r.ID()) {
			r.Close()
			continue
		}
		remaining = append(remaining, r)
	}

	if len(remaining) == 0 {
		a.gridEmpty = true
		a.headers = nil
	}

	a.toComplete = newIDSet()
	a.toSave = newEditMap()
	a.attributeModified = false
	a.rows = remaining
}

func (a *Aggregator) closeRows() {
	for _, r := range a.rows {
		r.Close()
	}
	a.rows = nil
}

// Close detaches the aggregator and its rows from the bus.
func (a *Aggregator) Close() {
	a.closeRows()
	for _, u := range a.unsubscribe {
		u()
	}
	a.unsubscribe = nil
}

// Rows returns the loaded rows.
func (a *Aggregator) Rows() []*RowState {
	return append([]*RowState(nil), a.rows...)
}

// FindRow returns the row with the given slug (case-sensitive) or id.
func (a *Aggregator) FindRow(slug string, id int64) (*RowState, error) {
	for _, r := range a.rows {
		if (slug != "" && r.Slug() == slug) || (id != 0 && r.ID() == id) {
			return r, nil
		}
	}
	if slug != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAssessment, slug)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownAssessment, id)
}

// Headers returns the attribute columns of the grid.
func (a *Aggregator) Headers() []models.AttributeHeader {
	return append([]models.AttributeHeader(nil), a.headers...)
}

// CountReadyToComplete returns the number of ready assessments.
func (a *Aggregator) CountReadyToComplete() int {
	return a.count
}

// ReadyIDs returns the ready assessment ids in the order they became ready.
func (a *Aggregator) ReadyIDs() []int64 {
	return a.toComplete.IDs()
}

// EditedAssessments returns the number of assessments in the edit map.
func (a *Aggregator) EditedAssessments() int {
	return a.toSave.Len()
}

// IsAttributeModified reports whether any attribute was edited since the last load.
func (a *Aggregator) IsAttributeModified() bool {
	return a.attributeModified
}

// IsLoading reports whether a load is running.
func (a *Aggregator) IsLoading() bool {
	return a.loading.Load()
}

// IsGridEmpty reports whether no rows are left to show.
func (a *Aggregator) IsGridEmpty() bool {
	return a.gridEmpty
}

// LoadErr returns the error of the last failed load, or nil.
func (a *Aggregator) LoadErr() error {
	return a.loadErr
}

// LastTaskID returns the task id of the last accepted submission.
func (a *Aggregator) LastTaskID() int64 {
	return a.lastTaskID
}

type noAuth struct{}

func (noAuth) WithAuth(ctx context.Context, action func(context.Context) error, _ string) error {
	return action(ctx)
}

type noNotifier struct{}

func (noNotifier) Notify(models.NoticeLevel, string) {}

type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(context.Context, models.Confirmation) (bool, error) {
	return true, nil
}
