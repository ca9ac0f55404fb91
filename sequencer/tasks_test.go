package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskQueueOrder(t *testing.T) {
	var q taskQueue
	var got []int
	q.Defer(func() { got = append(got, 1) })
	q.Defer(func() {
		got = append(got, 2)
		q.Defer(func() { got = append(got, 4) })
	})
	q.Defer(func() { got = append(got, 3) })
	assert.Equal(t, 3, q.Len())

	q.Flush()
	assert.Equal(t, []int{1, 2, 3, 4}, got)
	assert.Zero(t, q.Len())

	q.Flush()
	assert.Len(t, got, 4)
}
