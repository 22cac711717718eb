package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := NewError(KindInvalidPostID, "Post does not exist with id : %s", "p1")

	assert.True(t, errors.Is(err, ErrInvalidPostID))
	assert.False(t, errors.Is(err, ErrInvalidUserID))
	assert.Equal(t, "INVALID_POST_ID: Post does not exist with id : p1", err.Error())
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := fmt.Errorf("like post: %w", UnknownError(KindPostMutationFailed, cause))

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrPostMutationFailed))
	assert.Equal(t, KindPostMutationFailed, KindOf(err))
}

func TestKindOf_Unknown(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
