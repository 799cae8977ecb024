package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vidtube/backend/internal/apperr"
)

func TestCanMutate(t *testing.T) {
	assert.True(t, CanMutate("user-1", "user-1"))
	assert.False(t, CanMutate("user-1", "user-2"))
	assert.False(t, CanMutate("", ""))
	assert.False(t, CanMutate("", "user-1"))
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize("owner", "owner", "video"))

	err := Authorize("intruder", "owner", "playlist")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "you are not allowed to modify this playlist", apperr.Message(err))
}
