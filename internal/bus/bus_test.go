package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicPublishOrder(t *testing.T) {
	b := New()
	var got []string

	b.ReadyToComplete.Subscribe(func(ev ReadyToComplete) { got = append(got, "first:"+ev.Slug) })
	b.ReadyToComplete.Subscribe(func(ev ReadyToComplete) { got = append(got, "second:"+ev.Slug) })

	b.ReadyToComplete.Publish(ReadyToComplete{AssessmentID: 1, Slug: "A-1"})

	assert.Equal(t, []string{"first:A-1", "second:A-1"}, got)
}

func TestTopicUnsubscribe(t *testing.T) {
	b := New()
	calls := 0

	unsubscribe := b.AttributeModified.Subscribe(func(AttributeModified) { calls++ })
	b.AttributeModified.Publish(AttributeModified{})
	unsubscribe()
	unsubscribe()
	b.AttributeModified.Publish(AttributeModified{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.AttributeModified.Len())
}

func TestTopicUnsubscribeDuringPublish(t *testing.T) {
	b := New()
	var calls []int

	var unsubscribeFirst func()
	unsubscribeFirst = b.RequiredInfoSave.Subscribe(func(RequiredInfoSave) {
		calls = append(calls, 1)
		unsubscribeFirst()
	})
	b.RequiredInfoSave.Subscribe(func(RequiredInfoSave) { calls = append(calls, 2) })

	b.RequiredInfoSave.Publish(RequiredInfoSave{AttributeID: 1})
	b.RequiredInfoSave.Publish(RequiredInfoSave{AttributeID: 1})

	assert.Equal(t, []int{1, 2, 2}, calls)
}
