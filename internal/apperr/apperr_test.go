package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := Wrap(NetworkFailure, "fetch reading", context.DeadlineExceeded)
	assert.Equal(t, "fetch reading: device unreachable: context deadline exceeded", err.Error())

	err = New(ValidationFailure, "", "poll interval must be finite")
	assert.Equal(t, "poll interval must be finite", err.Error())
}

func TestCodeOfWalksChain(t *testing.T) {
	base := Wrap(DecodeFailure, "fetch reading", errors.New("unexpected EOF"))
	wrapped := fmt.Errorf("tick: %w", base)

	assert.Equal(t, DecodeFailure, CodeOf(wrapped))
	assert.True(t, IsCode(wrapped, DecodeFailure))
	assert.False(t, IsCode(wrapped, NetworkFailure))
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, Internal, CodeOf(errors.New("plain")))
}
