package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/setka-project/medusa/internal/domain"
)

// DefaultResumableRetryLimit bounds transient chunk retries within one
// resumable transfer.
const DefaultResumableRetryLimit = 10

// ChunkProgress reports how far a resumable transfer has advanced after a
// successfully submitted chunk.
type ChunkProgress struct {
	BytesSent  int64
	TotalBytes int64
}

// ResumableSession is one in-flight chunked upload. UploadChunk submits
// the next chunk and returns either partial progress, the final result, or
// an error. After a transient error the same chunk is resubmitted on the
// next call.
type ResumableSession interface {
	UploadChunk(ctx context.Context) (*ChunkProgress, *domain.Result, error)
}

// ResumableTransfer drives a ResumableSession to completion, retrying
// transient chunk failures with randomized exponential backoff and
// translating HTTP failures into the error taxonomy.
type ResumableTransfer struct {
	platform   string
	session    ResumableSession
	retryLimit int
	logger     *slog.Logger

	// sleep and randFloat are swapped out in tests.
	sleep     func(time.Duration)
	randFloat func() float64
}

// NewResumableTransfer builds a transfer for one session. A retryLimit of
// zero or less uses DefaultResumableRetryLimit.
func NewResumableTransfer(
	platform string,
	session ResumableSession,
	retryLimit int,
	logger *slog.Logger,
) *ResumableTransfer {
	if retryLimit <= 0 {
		retryLimit = DefaultResumableRetryLimit
	}
	return &ResumableTransfer{
		platform:   platform,
		session:    session,
		retryLimit: retryLimit,
		logger:     logger.With(slog.String("component", "resumable_transfer")),
		sleep:      time.Sleep,
		randFloat:  rand.Float64,
	}
}

// Run uploads chunks until the session produces a final result. Partial
// progress is forwarded to progress (when non-nil); a final success also
// reports 100%. Transient failures retry the same chunk with
// random()*2^retry second jitter until the retry limit; fatal failures
// abort immediately.
func (t *ResumableTransfer) Run(ctx context.Context, progress ProgressFunc) (*domain.Result, error) {
	retry := 0

	// Carried across chunks so the final 100% callback does not depend on
	// the last response carrying progress.
	var totalBytes int64

	for {
		if err := ctx.Err(); err != nil {
			return nil, &NetworkError{
				Platform: t.platform,
				Message:  "transfer cancelled",
				Cause:    err,
			}
		}

		chunkProgress, result, err := t.session.UploadChunk(ctx)
		if err != nil {
			translated := t.translateChunkError(err)
			if !Classify(translated).Retryable {
				return nil, translated
			}

			retry++
			if retry > t.retryLimit {
				return nil, &UploadError{
					Platform: t.platform,
					Message:  fmt.Sprintf("exceeded resumable retry limit (%d)", t.retryLimit),
					Cause:    translated,
				}
			}

			delay := time.Duration(t.randFloat() * math.Pow(2, float64(retry)) * float64(time.Second))
			t.logger.Warn("chunk upload failed, retrying",
				"platform", t.platform,
				"retry", retry,
				"retry_limit", t.retryLimit,
				"sleep", delay.String(),
				"error", translated)
			t.sleep(delay)
			continue
		}

		if chunkProgress != nil && chunkProgress.TotalBytes > 0 {
			totalBytes = chunkProgress.TotalBytes
		}

		if result != nil {
			if progress != nil {
				progress(totalBytes, totalBytes)
			}
			return result, nil
		}

		if chunkProgress != nil && progress != nil {
			progress(chunkProgress.BytesSent, chunkProgress.TotalBytes)
		}
	}
}

// translateChunkError maps a session error into the taxonomy. HTTP status
// failures go through TranslateHTTPStatus; timeouts become retryable
// network errors; taxonomy errors pass through unchanged.
func (t *ResumableTransfer) translateChunkError(err error) error {
	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) {
		return TranslateHTTPStatus(t.platform, httpErr.StatusCode, httpErr.Reason)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Platform: t.platform, Message: "chunk upload timed out", Cause: err}
	}

	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrAuthentication) || errors.Is(err, ErrValidation) {
		return err
	}

	return &NetworkError{Platform: t.platform, Message: "chunk upload failed", Cause: err}
}
