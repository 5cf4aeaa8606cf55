package taskid

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	taskID, err := Generate("publish", "video")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(taskID, "publish_video_"))

	components, err := Parse(taskID)
	require.NoError(t, err)
	assert.Equal(t, "publish", components.Prefix)
	assert.Equal(t, "video", components.TaskType)
	assert.Len(t, components.Suffix, suffixLength)
	assert.WithinDuration(t, time.Now().UTC(), components.CreatedAt, time.Minute)
}

func TestGenerate_WithoutType(t *testing.T) {
	t.Parallel()

	taskID, err := Generate("upload", "")
	require.NoError(t, err)

	components, err := Parse(taskID)
	require.NoError(t, err)
	assert.Equal(t, "upload", components.Prefix)
	assert.Empty(t, components.TaskType)
}

func TestGenerate_Uniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		taskID, err := Generate("publish", "video")
		require.NoError(t, err)
		assert.False(t, seen[taskID], "duplicate ID %s", taskID)
		seen[taskID] = true
	}
}

func TestGenerate_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Generate("", "video")
	assert.True(t, errors.Is(err, ErrInvalidTaskID))

	_, err = Generate("bad_prefix", "video")
	assert.True(t, errors.Is(err, ErrInvalidTaskID))

	_, err = Generate("publish", "bad_type")
	assert.True(t, errors.Is(err, ErrInvalidTaskID))
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for _, taskID := range []string{
		"",
		"justone",
		"too_many_parts_in_this_id_here",
		"publish_notadate_1a2b3c4d",
		"publish_video_20260825120000_short",
	} {
		err := Validate(taskID)
		assert.True(t, errors.Is(err, ErrInvalidTaskID), "id %q", taskID)
	}
}
