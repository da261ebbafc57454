package diagram

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomIDsShape(t *testing.T) {
	gen := NewRandomIDs(7)
	for i := 0; i < 500; i++ {
		id := gen.NextID()
		require.Len(t, id, 8)
		assert.True(t, IsValidRandomID(id), "unexpected id %q", id)
	}
}

func TestRandomIDsDeterministicForSeed(t *testing.T) {
	a, b := NewRandomIDs(42), NewRandomIDs(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.NextID(), b.NextID())
	}
}

func TestIsValidRandomID(t *testing.T) {
	assert.True(t, IsValidRandomID("a1b2c3d4"))
	assert.False(t, IsValidRandomID("1abcdefg"), "first character must be a letter")
	assert.False(t, IsValidRandomID("abcdefgH"))
	assert.False(t, IsValidRandomID("abc"))
}

func TestNewIDGenerator(t *testing.T) {
	gen, err := NewIDGenerator("uuid")
	require.NoError(t, err)
	_, err = uuid.Parse(gen.NextID())
	assert.NoError(t, err)

	gen, err = NewIDGenerator("")
	require.NoError(t, err)
	assert.True(t, IsValidRandomID(gen.NextID()))

	_, err = NewIDGenerator("sequential")
	assert.Error(t, err)
}

func TestFileErrorMatchesKind(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewFileError(ErrIOFailure, "save", "out.json", cause)

	assert.ErrorIs(t, err, ErrIOFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "out.json")
}

func TestFileErrorMessageNamesKindOnce(t *testing.T) {
	cause := fmt.Errorf("%w: unexpected end of JSON input", ErrInvalidFormat)
	err := NewFileError(ErrInvalidFormat, "open", "story.json", cause)
	assert.Equal(t, "open story.json: invalid format: unexpected end of JSON input", err.Error())

	err = NewFileError(ErrIOFailure, "save", "story.json", errors.New("disk full"))
	assert.Equal(t, "save story.json: i/o failure: disk full", err.Error())
}
