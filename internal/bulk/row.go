package bulk

import (
	"fmt"

	"github.com/harrison/bulkcomplete/internal/bus"
	"github.com/harrison/bulkcomplete/internal/models"
	"github.com/harrison/bulkcomplete/internal/validation"
)

// RequiredInfoPrompt is a copy of what an editor for supplemental info needs.
// Editing it has no effect on the row; submit changes with UpdateRequiredInfo
// or by publishing a RequiredInfoSave event.
type RequiredInfoPrompt struct {
	Title          string
	AttributeID    *int64
	AttributeTitle string
	Value          string
	RequiredInfo   validation.RequiredInfo
	Comment        *string
	URLs           []string
	Files          []models.File
}

// RowState owns one assessment row and keeps its validation state current.
type RowState struct {
	row         models.Row
	bus         *bus.Bus
	validator   *validation.Validator
	unsubscribe func()
}

// NewRowState creates a row bound to b. The row starts listening for
// RequiredInfoSave events immediately; call Close to stop.
func NewRowState(row models.Row, b *bus.Bus, v *validation.Validator) *RowState {
	if v == nil {
		v = validation.NewValidator(nil)
	}
	r := &RowState{
		row:       row,
		bus:       b,
		validator: v,
	}
	r.unsubscribe = b.RequiredInfoSave.Subscribe(r.onRequiredInfoSave)
	return r
}

// Init validates every attribute and announces the row when it is ready on load.
func (r *RowState) Init() {
	for i := range r.row.Attributes {
		r.validator.Validate(&r.row.Attributes[i])
	}
	r.row.IsReadyToComplete = validation.IsRowReady(r.row.Attributes)

	if r.row.IsReadyToComplete {
		r.bus.ReadyToComplete.Publish(bus.ReadyToComplete{
			AssessmentID: r.row.AssessmentID,
			Slug:         r.row.Slug,
		})
	}
}

// AttributeValueChanged assigns value to the attribute at index, validates it
// and publishes the change. The value's kind must match the attribute type.
func (r *RowState) AttributeValueChanged(value models.Value, index int) error {
	if index < 0 || index >= len(r.row.Attributes) {
		return fmt.Errorf("%w: %d", ErrAttributeIndex, index)
	}
	attr := &r.row.Attributes[index]
	if value.Kind() != attr.Type {
		return fmt.Errorf("attribute %q is %s, got %s: %w", attr.Title, attr.Type, value.Kind(), models.ErrValueKind)
	}

	attr.Value = value.Clone()
	attr.Modified = true
	r.validator.Validate(attr)
	r.row.IsReadyToComplete = validation.IsRowReady(r.row.Attributes)

	r.publishModified(index)
	return nil
}

// ShowRequiredInfo returns the supplemental info editor state for the attribute at index.
func (r *RowState) ShowRequiredInfo(index int) (RequiredInfoPrompt, error) {
	if index < 0 || index >= len(r.row.Attributes) {
		return RequiredInfoPrompt{}, fmt.Errorf("%w: %d", ErrAttributeIndex, index)
	}
	attr := &r.row.Attributes[index]
	info := validation.RequiredInfoFor(attr)
	if !info.Any() || attr.Attachments == nil {
		return RequiredInfoPrompt{}, fmt.Errorf("attribute %q: %w", attr.Title, ErrNoRequiredInfo)
	}

	att := attr.Attachments.Clone()
	prompt := RequiredInfoPrompt{
		Title:          info.Title(),
		AttributeTitle: attr.Title,
		Value:          attr.Value.Text(),
		RequiredInfo:   info,
		Comment:        att.Comment,
		URLs:           att.URLs,
		Files:          att.Files,
	}
	if attr.ID != nil {
		id := *attr.ID
		prompt.AttributeID = &id
	}
	return prompt, nil
}

// UpdateRequiredInfo replaces the attachments of the attribute with the given
// record id by a copy of changes, re-checks them and publishes the change.
func (r *RowState) UpdateRequiredInfo(attributeID int64, changes models.Attachments) error {
	index := r.row.AttributeIndexByID(attributeID)
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownAttribute, attributeID)
	}
	return r.UpdateRequiredInfoAt(index, changes)
}

// UpdateRequiredInfoAt is UpdateRequiredInfo for an attribute addressed by
// index, which also works before the value record exists.
func (r *RowState) UpdateRequiredInfoAt(index int, changes models.Attachments) error {
	if index < 0 || index >= len(r.row.Attributes) {
		return fmt.Errorf("%w: %d", ErrAttributeIndex, index)
	}
	attr := &r.row.Attributes[index]
	if !validation.RequiredInfoFor(attr).Any() {
		return fmt.Errorf("attribute %q: %w", attr.Title, ErrNoRequiredInfo)
	}
	r.setRequiredInfo(index, changes)
	return nil
}

// setRequiredInfo stores changes on an attribute that requires info.
func (r *RowState) setRequiredInfo(index int, changes models.Attachments) {
	attr := &r.row.Attributes[index]
	attr.Attachments = changes.Clone()
	if attr.Attachments.URLs == nil {
		attr.Attachments.URLs = []string{}
	}
	if attr.Attachments.Files == nil {
		attr.Attachments.Files = []models.File{}
	}
	attr.Modified = true
	r.validator.ValidateRequiredInfo(attr)
	r.row.IsReadyToComplete = validation.IsRowReady(r.row.Attributes)

	r.publishModified(index)
}

func (r *RowState) onRequiredInfoSave(ev bus.RequiredInfoSave) {
	index := r.row.AttributeIndexByID(ev.AttributeID)
	if index < 0 || !validation.RequiredInfoFor(&r.row.Attributes[index]).Any() {
		return
	}
	r.setRequiredInfo(index, ev.Changes)
}

func (r *RowState) publishModified(index int) {
	r.bus.AttributeModified.Publish(bus.AttributeModified{
		AssessmentID:   r.row.AssessmentID,
		Slug:           r.row.Slug,
		Ready:          r.row.IsReadyToComplete,
		AttributeIndex: index,
		Row:            r.row.Clone(),
		Attribute:      r.row.Attributes[index].Clone(),
	})
}

// IsReadyToComplete reports the row's current readiness.
func (r *RowState) IsReadyToComplete() bool {
	return r.row.IsReadyToComplete
}

// ID returns the assessment id of the row.
func (r *RowState) ID() int64 {
	return r.row.AssessmentID
}

// Slug returns the assessment slug of the row.
func (r *RowState) Slug() string {
	return r.row.Slug
}

// Row returns a snapshot of the row.
func (r *RowState) Row() models.Row {
	return r.row.Clone()
}

// Close stops listening for RequiredInfoSave events.
func (r *RowState) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}
