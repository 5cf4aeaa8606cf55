package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/setka-project/medusa/internal/template"
)

// Classification is the retry decision for one error.
type Classification struct {
	// Retryable means the failure is transient and the operation may be
	// attempted again after a backoff.
	Retryable bool

	// Fatal means retrying cannot help; the error propagates immediately.
	Fatal bool

	// Reason is a short machine-friendly label for logs.
	Reason string
}

// Classify maps an error to its retry classification. Network failures,
// rate limiting, and per-attempt timeouts are retryable; authentication,
// validation, and template errors are fatal. Unknown errors default to
// fatal so a misbehaving adapter cannot spin the retry loop.
func Classify(err error) Classification {
	switch {
	case err == nil:
		return Classification{Reason: "none"}
	case errors.Is(err, ErrAuthentication):
		return Classification{Fatal: true, Reason: "authentication"}
	case errors.Is(err, ErrValidation):
		return Classification{Fatal: true, Reason: "validation"}
	case errors.Is(err, template.ErrTemplate):
		return Classification{Fatal: true, Reason: "template"}
	case errors.Is(err, ErrRateLimit):
		return Classification{Retryable: true, Reason: "rate_limit"}
	case errors.Is(err, ErrNetwork):
		return Classification{Retryable: true, Reason: "network"}
	case errors.Is(err, context.DeadlineExceeded):
		return Classification{Retryable: true, Reason: "timeout"}
	default:
		return Classification{Fatal: true, Reason: "unknown"}
	}
}

// TranslateHTTPStatus maps a platform HTTP status into the error taxonomy.
// 401 and non-quota 403 are authentication failures; quota 403 and 429 are
// rate limiting; 400 and 422 are validation rejections; 5xx are transient
// network failures. Anything else is a generic upload failure.
func TranslateHTTPStatus(platform string, statusCode int, reason string) error {
	switch {
	case statusCode == 401:
		return &AuthenticationError{Platform: platform, Message: reason}
	case statusCode == 403:
		lowered := strings.ToLower(reason)
		if strings.Contains(lowered, "quota") || strings.Contains(lowered, "rate") {
			return &RateLimitError{Platform: platform, Message: reason}
		}
		return &AuthenticationError{Platform: platform, Message: reason}
	case statusCode == 429:
		return &RateLimitError{Platform: platform, Message: reason}
	case statusCode == 400 || statusCode == 422:
		return &ValidationError{Platform: platform, Message: reason}
	case statusCode >= 500:
		return &NetworkError{
			Platform: platform,
			Message:  fmt.Sprintf("server returned HTTP %d: %s", statusCode, reason),
		}
	default:
		return &UploadError{
			Platform: platform,
			Message:  fmt.Sprintf("unexpected HTTP %d: %s", statusCode, reason),
		}
	}
}
