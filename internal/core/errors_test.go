package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"tablepart/internal/core"
)

func TestNewErrorKind(t *testing.T) {
	err := core.NewError(core.ErrInvalidConfig, "directive %q missing partition_key", "usage_events")

	kind, ok := core.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, core.ErrInvalidConfig, kind)
	assert.True(t, core.Is(err, core.ErrInvalidConfig))
	assert.False(t, core.Is(err, core.ErrCatalogError))
}

func TestWrapErrorNilCausePassesThrough(t *testing.T) {
	assert.Nil(t, core.WrapError(core.ErrExecutionError, nil, "should not appear"))
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := core.WrapError(core.ErrCatalogError, cause, "describing table %q", "events")

	assert.ErrorIs(t, err, cause)
	assert.True(t, core.Is(err, core.ErrCatalogError))
}

func TestKindOfOnPlainError(t *testing.T) {
	_, ok := core.KindOf(errors.New("plain"))
	assert.False(t, ok)
}
