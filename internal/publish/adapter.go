package publish

import (
	"context"

	"github.com/setka-project/medusa/internal/domain"
)

// ContentKind distinguishes text posts, which go through template
// substitution, from raw media uploads, which do not.
type ContentKind string

const (
	// ContentPost is text content; its body is template-substituted before
	// validation.
	ContentPost ContentKind = "post"

	// ContentMedia is a media file upload; the body is ignored.
	ContentMedia ContentKind = "media"
)

// Content is the unit of work handed to an adapter: either a text post
// (Body, possibly templated) or a media file (FilePath), plus the
// platform-specific metadata.
type Content struct {
	Kind         ContentKind
	Body         string
	FilePath     string
	Metadata     map[string]interface{}
	TemplateVars map[string]interface{}
}

// ProgressFunc receives transfer progress as (bytes so far, total bytes).
type ProgressFunc func(current, total int64)

// Adapter is the capability set every platform integration implements.
// Concrete adapters own the wire protocol; the executor owns retries,
// timeouts, and error classification.
type Adapter interface {
	// Platform returns the adapter's platform name, e.g. "youtube".
	Platform() string

	// Authenticate reports whether the adapter holds valid credentials,
	// refreshing them if it can.
	Authenticate(ctx context.Context) (bool, error)

	// Validate rejects content or metadata the platform would refuse,
	// before any network work happens.
	Validate(ctx context.Context, content Content) error

	// Execute performs the upload or publish, invoking progress (when
	// non-nil) as the transfer advances.
	Execute(ctx context.Context, content Content, progress ProgressFunc) (*domain.Result, error)
}
