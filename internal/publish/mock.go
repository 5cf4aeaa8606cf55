package publish

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/setka-project/medusa/internal/domain"
)

// MockAdapter is a configurable in-memory adapter used by tests and local
// dry runs. Behavior is controlled by the exported fields; call counts are
// tracked so tests can assert on retry behavior.
type MockAdapter struct {
	PlatformName  string
	Authenticated bool
	AuthErr       error
	ValidateErr   error

	// ExecuteFunc overrides the default successful execution when set.
	ExecuteFunc func(ctx context.Context, content Content, progress ProgressFunc) (*domain.Result, error)

	// ExecuteDelay simulates transfer latency in the default execution.
	ExecuteDelay time.Duration

	// ChunkCount, when positive, makes the default media execution stream
	// through a ResumableTransfer in that many chunks.
	ChunkCount int

	mu            sync.Mutex
	authCalls     int
	validateCalls int
	executeCalls  int
	lastContent   Content
}

// NewMockAdapter builds an authenticated mock for the given platform.
func NewMockAdapter(platform string) *MockAdapter {
	return &MockAdapter{
		PlatformName:  platform,
		Authenticated: true,
	}
}

func (m *MockAdapter) Platform() string {
	return m.PlatformName
}

func (m *MockAdapter) Authenticate(_ context.Context) (bool, error) {
	m.mu.Lock()
	m.authCalls++
	m.mu.Unlock()

	if m.AuthErr != nil {
		return false, m.AuthErr
	}
	return m.Authenticated, nil
}

func (m *MockAdapter) Validate(_ context.Context, content Content) error {
	m.mu.Lock()
	m.validateCalls++
	m.lastContent = content
	m.mu.Unlock()

	return m.ValidateErr
}

func (m *MockAdapter) Execute(ctx context.Context, content Content, progress ProgressFunc) (*domain.Result, error) {
	m.mu.Lock()
	m.executeCalls++
	m.lastContent = content
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, content, progress)
	}

	if m.ExecuteDelay > 0 {
		select {
		case <-time.After(m.ExecuteDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if content.Kind == ContentMedia && m.ChunkCount > 0 {
		session := &mockSession{platform: m.PlatformName, chunks: m.ChunkCount}
		transfer := NewResumableTransfer(m.PlatformName, session, 0,
			slog.New(slog.NewTextHandler(io.Discard, nil)))
		return transfer.Run(ctx, progress)
	}

	if progress != nil {
		progress(100, 100)
	}

	return m.successResult()
}

func (m *MockAdapter) successResult() (*domain.Result, error) {
	result, err := domain.NewResult(m.PlatformName, "mock_"+uuid.NewString())
	if err != nil {
		return nil, err
	}
	result.URL = "https://example.com/mock/" + m.PlatformName
	return result, nil
}

// mockChunkSize is the synthetic chunk size used by the mock's resumable
// execution.
const mockChunkSize = int64(256 * 1024)

type mockSession struct {
	platform string
	chunks   int
	sent     int
}

func (s *mockSession) UploadChunk(_ context.Context) (*ChunkProgress, *domain.Result, error) {
	s.sent++
	total := int64(s.chunks) * mockChunkSize

	if s.sent >= s.chunks {
		result, err := domain.NewResult(s.platform, "mock_"+uuid.NewString())
		if err != nil {
			return nil, nil, err
		}
		result.URL = "https://example.com/mock/" + s.platform
		return &ChunkProgress{BytesSent: total, TotalBytes: total}, result, nil
	}

	return &ChunkProgress{
		BytesSent:  int64(s.sent) * mockChunkSize,
		TotalBytes: total,
	}, nil, nil
}

// ExecuteCalls returns how many times Execute was invoked.
func (m *MockAdapter) ExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeCalls
}

// ValidateCalls returns how many times Validate was invoked.
func (m *MockAdapter) ValidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateCalls
}

// AuthCalls returns how many times Authenticate was invoked.
func (m *MockAdapter) AuthCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authCalls
}

// LastContent returns the content seen by the most recent Validate or
// Execute call.
func (m *MockAdapter) LastContent() Content {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastContent
}
