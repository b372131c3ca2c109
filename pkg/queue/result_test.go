package queue_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/pkg/queue"
)

func TestResult(t *testing.T) {
	t.Parallel()

	t.Run("success variant", func(t *testing.T) {
		t.Parallel()

		r := queue.NewValue(42)

		v, ok := r.Value()
		require.True(t, ok)
		assert.Equal(t, 42, v)
		assert.NoError(t, r.Err())
		assert.False(t, r.IsError())
	})

	t.Run("error variant", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("boom")
		r := queue.NewError[int](wantErr)

		_, ok := r.Value()
		assert.False(t, ok)
		assert.ErrorIs(t, r.Err(), wantErr)
		assert.True(t, r.IsError())
	})

	t.Run("zero success value is still the success variant", func(t *testing.T) {
		t.Parallel()

		r := queue.NewValue(0)

		v, ok := r.Value()
		require.True(t, ok)
		assert.Zero(t, v)
		assert.False(t, r.IsError())
	})
}
