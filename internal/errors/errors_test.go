package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("quantity", -5, "quantity must be positive")
	assert.Contains(t, err.Error(), "quantity")
	assert.Contains(t, err.Error(), "quantity must be positive")
}

func TestStoreErrorClassifiesAsDatabaseError(t *testing.T) {
	cause := fmt.Errorf("disk I/O error")
	err := NewStoreError("save", "trade", cause)

	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.ErrorIs(t, err, cause, "the underlying cause stays reachable")
	assert.Contains(t, err.Error(), "save")
	assert.Contains(t, err.Error(), "trade")
}

func TestStoreErrorWithoutCause(t *testing.T) {
	err := NewStoreError("get", "progress", nil)
	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.Equal(t, "store error [get] progress", err.Error())
}

func TestImportErrorCarriesLine(t *testing.T) {
	err := NewImportError(3, "garbage row", "unparseable", nil)

	var importErr *ImportError
	require.True(t, As(err, &importErr))
	assert.Equal(t, 3, importErr.Line)
}

func TestWrapAndWrapf(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))

	wrapped := Wrapf(ErrConfigInvalid, "duplicate rule: %q", "Stop loss set")
	assert.ErrorIs(t, wrapped, ErrConfigInvalid)
	assert.Contains(t, wrapped.Error(), `duplicate rule: "Stop loss set"`)
}
