package answers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/bulkcomplete/internal/bulk"
	"github.com/harrison/bulkcomplete/internal/models"
)

func strPtr(s string) *string { return &s }

func TestApply(t *testing.T) {
	agg := loadedAggregator(t)
	require.Equal(t, 0, agg.CountReadyToComplete())

	doc := &Document{Entries: []Entry{
		{Key: "A-1", Answers: []Answer{
			{Attribute: "reviewed", Values: []string{"true"}, HasValue: true},
			{Attribute: "Answer", Values: []string{"Yes"}, HasValue: true,
				Comment: strPtr("Checked the log"), URLs: []string{"https://example.com/log"}},
			{Attribute: "Tags", Values: []string{"PCI", "sox"}, HasValue: true},
			{Attribute: "Due", Values: []string{"2025-13-01"}, HasValue: true},
			{Attribute: "Owner", Values: []string{"5"}, HasValue: true},
			{Attribute: "Nope", Values: []string{"x"}, HasValue: true},
		}},
		{Key: "2", Answers: []Answer{
			{Attribute: "Answer", Values: []string{"yes"}, HasValue: true,
				Comment: strPtr("ok"), URLs: []string{"https://example.com/vendor"}},
		}},
		{Key: "A-9", Answers: []Answer{{Attribute: "Answer", Values: []string{"No"}, HasValue: true}}},
	}}

	var steps []string
	result := Apply(agg, doc, func(key string) { steps = append(steps, key) })

	assert.Equal(t, []string{"A-1", "A-2"}, steps)
	assert.Equal(t, []string{"A-1", "A-2"}, result.Applied)
	assert.Equal(t, 2, agg.CountReadyToComplete())
	assert.ElementsMatch(t, []int64{1, 2}, agg.ReadyIDs())

	require.Len(t, result.Errors, 4)
	assert.ErrorIs(t, result.Errors[0], ErrInvalidValue)
	assert.Equal(t, "Due", result.Errors[0].Attribute)
	assert.ErrorIs(t, result.Errors[1], ErrNotApplicable)
	assert.ErrorIs(t, result.Errors[2], bulk.ErrUnknownAttribute)
	assert.ErrorIs(t, result.Errors[3], bulk.ErrUnknownAssessment)
	assert.Equal(t, "A-9", result.Errors[3].Key)
	assert.ErrorIs(t, result.Err(), ErrNotApplicable)
	assert.Len(t, result.Messages(), 4)

	row, err := agg.FindRow("A-1", 0)
	require.NoError(t, err)
	attrs := row.Row().Attributes
	assert.True(t, attrs[0].Value.Checked())
	assert.Equal(t, "Checked the log", *attrs[1].Attachments.Comment)
	assert.Equal(t, "pci,sox", attrs[3].Value.Text())
	assert.Empty(t, attrs[2].Value.Text(), "invalid date is not applied")

	vendor, err := agg.FindRow("", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/vendor"}, vendor.Row().Attributes[0].Attachments.URLs)
}

func TestApply_InfoForOptionWithoutRequirements(t *testing.T) {
	agg := loadedAggregator(t)

	result := Apply(agg, &Document{Entries: []Entry{{Key: "A-2", Answers: []Answer{
		{Attribute: "Answer", Values: []string{"No"}, HasValue: true, Comment: strPtr("not needed")},
	}}}}, nil)

	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], bulk.ErrNoRequiredInfo)
	assert.Empty(t, result.Applied)

	// the value itself was applied before the info was rejected
	row, err := agg.FindRow("A-2", 0)
	require.NoError(t, err)
	assert.Equal(t, "No", row.Row().Attributes[0].Value.Text())
	assert.True(t, row.IsReadyToComplete())
}

func TestApply_InfoMergesWithExistingAttachments(t *testing.T) {
	agg := loadedAggregator(t)

	first := Apply(agg, &Document{Entries: []Entry{{Key: "A-1", Answers: []Answer{
		{Attribute: "Answer", Values: []string{"Yes"}, HasValue: true, Comment: strPtr("first")},
	}}}}, nil)
	require.NoError(t, first.Err())

	second := Apply(agg, &Document{Entries: []Entry{{Key: "A-1", Answers: []Answer{
		{Attribute: "Answer", URLs: []string{"https://example.com"}},
	}}}}, nil)
	require.NoError(t, second.Err())

	row, err := agg.FindRow("A-1", 0)
	require.NoError(t, err)
	att := row.Row().Attributes[1].Attachments
	require.NotNil(t, att)
	assert.Equal(t, "first", *att.Comment)
	assert.Equal(t, []string{"https://example.com"}, att.URLs)
	assert.Equal(t, []models.File{}, att.Files)
}

func TestResult_ErrNilWhenClean(t *testing.T) {
	assert.NoError(t, (&Result{}).Err())
}
