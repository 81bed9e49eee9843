package answers

import (
	"errors"
	"strconv"

	"github.com/harrison/bulkcomplete/internal/bulk"
	"github.com/harrison/bulkcomplete/internal/bus"
	"github.com/harrison/bulkcomplete/internal/models"
	"github.com/harrison/bulkcomplete/internal/validation"
)

// Result summarizes an Apply run.
type Result struct {
	// Applied lists the slugs of assessments that took at least one answer.
	Applied []string
	Errors  []*AnswerError
}

// Err joins every answer error, or returns nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Messages returns one line per error for display.
func (r *Result) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Error()
	}
	return out
}

// Apply feeds doc into the loaded rows of agg. Values go through
// RowState.AttributeValueChanged; supplemental info is published as a
// RequiredInfoSave event when the attribute has a record id and is applied
// to the row directly otherwise. A failing answer is recorded and skipped.
// step, when set, is called once per assessment that was found.
func Apply(agg *bulk.Aggregator, doc *Document, step func(key string)) *Result {
	result := &Result{}
	for _, entry := range doc.Entries {
		row, err := findRow(agg, entry.Key)
		if err != nil {
			result.Errors = append(result.Errors, &AnswerError{Key: entry.Key, Err: err})
			continue
		}
		if step != nil {
			step(row.Slug())
		}

		applied := false
		for _, answer := range entry.Answers {
			if err := applyAnswer(agg.Bus(), row, answer); err != nil {
				result.Errors = append(result.Errors, &AnswerError{Key: entry.Key, Attribute: answer.Attribute, Err: err})
				continue
			}
			applied = true
		}
		if applied {
			result.Applied = append(result.Applied, row.Slug())
		}
	}
	return result
}

func findRow(agg *bulk.Aggregator, key string) (*bulk.RowState, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		id = 0
	}
	return agg.FindRow(key, id)
}

func applyAnswer(b *bus.Bus, row *bulk.RowState, answer Answer) error {
	snapshot := row.Row()
	index := snapshot.AttributeIndexByTitle(answer.Attribute)
	if index < 0 {
		return bulk.ErrUnknownAttribute
	}
	attr := snapshot.Attributes[index]
	if !attr.IsApplicable {
		return ErrNotApplicable
	}

	if answer.HasValue {
		value, err := Coerce(&attr, answer.Values)
		if err != nil {
			return err
		}
		if err := row.AttributeValueChanged(value, index); err != nil {
			return err
		}
		attr = row.Row().Attributes[index]
	}

	if !answer.HasInfo() {
		return nil
	}
	if !validation.RequiredInfoFor(&attr).Any() {
		return bulk.ErrNoRequiredInfo
	}

	changes := mergeInfo(attr.Attachments, answer)
	if attr.ID != nil {
		b.RequiredInfoSave.Publish(bus.RequiredInfoSave{AttributeID: *attr.ID, Changes: changes})
		return nil
	}
	return row.UpdateRequiredInfoAt(index, changes)
}

// mergeInfo overlays the fields the answer sets on the current attachments.
func mergeInfo(current *models.Attachments, answer Answer) models.Attachments {
	merged := models.Attachments{}
	if current != nil {
		merged = *current.Clone()
	}
	if answer.Comment != nil {
		c := *answer.Comment
		merged.Comment = &c
	}
	if answer.URLs != nil {
		merged.URLs = append([]string{}, answer.URLs...)
	}
	if answer.Files != nil {
		merged.Files = append([]models.File{}, answer.Files...)
	}
	return merged
}
