package helpers

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNil(t *testing.T) {
	var err error
	assert.True(t, IsNil(err))

	var traceableErr Error = NilError
	assert.True(t, IsNil(traceableErr))
	assert.True(t, IsNil(Wrap(nil)))
}

func TestJoin(t *testing.T) {
	assert.True(t, IsNil(Join(NilError, NilError)))

	joined := Join(Errorf("first"), NilError, Errorf("second"))
	assert.False(t, IsNil(joined))
	assert.Equal(t, 2, joined.NumErrors())
	assert.Equal(t, "first\nsecond", joined.Error())
}

func TestWrapUnwraps(t *testing.T) {
	err := Wrap(io.EOF)
	assert.False(t, IsNil(err))
	assert.True(t, errors.Is(err, io.EOF))
}
