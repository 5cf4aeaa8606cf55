package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setka-project/medusa/internal/domain"
)

// scriptedSession replays a fixed sequence of chunk outcomes.
type scriptedSession struct {
	steps []func() (*ChunkProgress, *domain.Result, error)
	calls int
}

func (s *scriptedSession) UploadChunk(_ context.Context) (*ChunkProgress, *domain.Result, error) {
	step := s.steps[s.calls]
	s.calls++
	return step()
}

func chunkOK(sent, total int64) func() (*ChunkProgress, *domain.Result, error) {
	return func() (*ChunkProgress, *domain.Result, error) {
		return &ChunkProgress{BytesSent: sent, TotalBytes: total}, nil, nil
	}
}

func chunkDone(total int64, platform, id string) func() (*ChunkProgress, *domain.Result, error) {
	return func() (*ChunkProgress, *domain.Result, error) {
		result, err := domain.NewResult(platform, id)
		if err != nil {
			return nil, nil, err
		}
		return &ChunkProgress{BytesSent: total, TotalBytes: total}, result, nil
	}
}

func chunkErr(err error) func() (*ChunkProgress, *domain.Result, error) {
	return func() (*ChunkProgress, *domain.Result, error) {
		return nil, nil, err
	}
}

func newTestTransfer(session ResumableSession, retryLimit int) (*ResumableTransfer, *[]time.Duration) {
	transfer := NewResumableTransfer("youtube", session, retryLimit, testLogger())

	var sleeps []time.Duration
	transfer.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	transfer.randFloat = func() float64 { return 0.5 }
	return transfer, &sleeps
}

func TestResumableTransfer_ProgressAndCompletion(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{steps: []func() (*ChunkProgress, *domain.Result, error){
		chunkOK(1024, 4096),
		chunkOK(2048, 4096),
		chunkDone(4096, "youtube", "vid789"),
	}}
	transfer, _ := newTestTransfer(session, 5)

	var updates [][2]int64
	result, err := transfer.Run(context.Background(), func(current, total int64) {
		updates = append(updates, [2]int64{current, total})
	})

	require.NoError(t, err)
	assert.Equal(t, "vid789", result.ID)
	require.Len(t, updates, 3)
	assert.Equal(t, [2]int64{1024, 4096}, updates[0])
	assert.Equal(t, [2]int64{2048, 4096}, updates[1])
	assert.Equal(t, [2]int64{4096, 4096}, updates[2], "final callback reports completion")
}

func TestResumableTransfer_ServerErrorRetriesSameChunk(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{steps: []func() (*ChunkProgress, *domain.Result, error){
		chunkErr(&HTTPStatusError{Platform: "youtube", StatusCode: 503, Reason: "backend unavailable"}),
		chunkErr(&HTTPStatusError{Platform: "youtube", StatusCode: 500, Reason: "internal error"}),
		chunkDone(4096, "youtube", "vid789"),
	}}
	transfer, sleeps := newTestTransfer(session, 5)

	result, err := transfer.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "vid789", result.ID)
	assert.Equal(t, 3, session.calls)

	// With randFloat pinned at 0.5: 0.5*2^1 then 0.5*2^2 seconds.
	require.Len(t, *sleeps, 2)
	assert.Equal(t, 1*time.Second, (*sleeps)[0])
	assert.Equal(t, 2*time.Second, (*sleeps)[1])
}

func TestResumableTransfer_RetryLimitExceeded(t *testing.T) {
	t.Parallel()

	failure := chunkErr(&HTTPStatusError{Platform: "youtube", StatusCode: 502, Reason: "bad gateway"})
	session := &scriptedSession{steps: []func() (*ChunkProgress, *domain.Result, error){
		failure, failure, failure,
	}}
	transfer, _ := newTestTransfer(session, 2)

	_, err := transfer.Run(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpload))
	assert.Contains(t, err.Error(), "retry limit")
	assert.Equal(t, 3, session.calls)
}

func TestResumableTransfer_FatalStatusAborts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		reason     string
		sentinel   error
	}{
		{"401 maps to authentication", 401, "invalid credentials", ErrAuthentication},
		{"403 without quota maps to authentication", 403, "forbidden", ErrAuthentication},
		{"400 maps to validation", 400, "bad metadata", ErrValidation},
		{"422 maps to validation", 422, "unprocessable", ErrValidation},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			session := &scriptedSession{steps: []func() (*ChunkProgress, *domain.Result, error){
				chunkErr(&HTTPStatusError{Platform: "youtube", StatusCode: tc.statusCode, Reason: tc.reason}),
			}}
			transfer, sleeps := newTestTransfer(session, 5)

			_, err := transfer.Run(context.Background(), nil)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.sentinel))
			assert.Equal(t, 1, session.calls, "fatal errors abort without retries")
			assert.Empty(t, *sleeps)
		})
	}
}

func TestResumableTransfer_QuotaForbiddenRetries(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{steps: []func() (*ChunkProgress, *domain.Result, error){
		chunkErr(&HTTPStatusError{Platform: "youtube", StatusCode: 403, Reason: "quotaExceeded"}),
		chunkDone(4096, "youtube", "vid789"),
	}}
	transfer, sleeps := newTestTransfer(session, 5)

	result, err := transfer.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "vid789", result.ID)
	assert.Len(t, *sleeps, 1)
}

func TestTranslateHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		reason     string
		sentinel   error
	}{
		{"unauthorized", 401, "expired token", ErrAuthentication},
		{"forbidden", 403, "access denied", ErrAuthentication},
		{"forbidden quota", 403, "dailyLimitExceeded quota", ErrRateLimit},
		{"too many requests", 429, "slow down", ErrRateLimit},
		{"bad request", 400, "missing title", ErrValidation},
		{"unprocessable", 422, "bad category", ErrValidation},
		{"server error", 500, "oops", ErrNetwork},
		{"bad gateway", 502, "upstream", ErrNetwork},
		{"teapot", 418, "short and stout", ErrUpload},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := TranslateHTTPStatus("youtube", tc.statusCode, tc.reason)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.sentinel))
		})
	}
}

func TestMockAdapterChunkedExecution(t *testing.T) {
	t.Parallel()

	adapter := NewMockAdapter("youtube")
	adapter.ChunkCount = 4

	var reported []int64
	result, err := adapter.Execute(context.Background(),
		Content{Kind: ContentMedia, FilePath: "/media/clip.mp4"},
		func(current, total int64) {
			reported = append(reported, current)
		})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "youtube", result.Platform)

	// Three partial chunks plus the completion callback.
	require.Len(t, reported, 4)
	assert.Equal(t, 4*mockChunkSize, reported[3])
}

func chunkDoneBare(platform, id string) func() (*ChunkProgress, *domain.Result, error) {
	return func() (*ChunkProgress, *domain.Result, error) {
		result, err := domain.NewResult(platform, id)
		if err != nil {
			return nil, nil, err
		}
		return nil, result, nil
	}
}

func TestResumableTransfer_FinalWithoutProgressStillReportsCompletion(t *testing.T) {
	t.Parallel()

	session := &scriptedSession{steps: []func() (*ChunkProgress, *domain.Result, error){
		chunkOK(1024, 4096),
		chunkOK(2048, 4096),
		chunkDoneBare("youtube", "vid123"),
	}}
	transfer, _ := newTestTransfer(session, 0)

	var calls [][2]int64
	result, err := transfer.Run(context.Background(), func(current, total int64) {
		calls = append(calls, [2]int64{current, total})
	})

	require.NoError(t, err)
	assert.Equal(t, "vid123", result.ID)

	// Two partial reports plus the unconditional completion report.
	require.Len(t, calls, 3)
	assert.Equal(t, [2]int64{4096, 4096}, calls[2])
}
