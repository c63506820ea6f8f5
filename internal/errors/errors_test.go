package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New("spec rejected").
		WithOperation("validate").
		WithComponent("tank")

	assert.Equal(t, "spec rejected: operation=validate, component=tank", err.Error())
}

func TestWrapPreservesChain(t *testing.T) {
	base := stderrors.New("connection refused")
	err := Wrap(base, "failed to start server").WithComponent("server")

	assert.True(t, Is(err, base))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "failed to start server")
}

func TestWrapNilReturnsNil(t *testing.T) {
	require.Nil(t, Wrap(nil, "ignored"))
	require.Nil(t, Wrapf(nil, "ignored %d", 1))
}

func TestAs(t *testing.T) {
	err := Errorf("bad value %d", 7).WithOperation("parse")

	var appErr *Error
	require.True(t, As(err, &appErr))
	assert.Equal(t, "parse", appErr.Operation)
}
