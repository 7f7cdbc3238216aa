package invariant

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViolation(t *testing.T) {
	v := New("lift", "draggable %q not found", "item-1")
	assert.Equal(t, `invariant violation in lift: draggable "item-1" not found`, v.Error())
	assert.True(t, errors.Is(v, ErrViolation))

	wrapped := fmt.Errorf("reduce: %w", v)
	assert.True(t, Is(wrapped))

	var target *Violation
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "lift", target.Op)
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("boom")
	v := Wrap("publish", cause, "collection failed")

	assert.ErrorIs(t, v, cause)
	assert.ErrorIs(t, v, ErrViolation)
	assert.Contains(t, v.Error(), "boom")
	assert.False(t, Is(cause))
}
