// Package mockboard provides an in-memory clipboard device for testing.
package mockboard

import (
	"context"
	"sync"

	"github.com/ykotov/clipvault/internal/clipboard"
)

// MockBoard implements clipboard.Device in memory. At most one content kind
// is present at a time, matching real clipboard behavior.
type MockBoard struct {
	mu    sync.Mutex
	text  string
	image []byte

	// Err, when set, is returned by every read. Simulates OS query failures.
	Err error
}

// New creates an empty MockBoard.
func New() *MockBoard {
	return &MockBoard{}
}

// ReadText implements clipboard.Device.
func (m *MockBoard) ReadText(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if m.text == "" {
		return "", clipboard.ErrNoContent
	}
	return m.text, nil
}

// ReadImage implements clipboard.Device.
func (m *MockBoard) ReadImage(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.image) == 0 {
		return nil, clipboard.ErrNoContent
	}
	return append([]byte(nil), m.image...), nil
}

// WriteText implements clipboard.Device.
func (m *MockBoard) WriteText(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.image = nil
	return nil
}

// WriteImage implements clipboard.Device.
func (m *MockBoard) WriteImage(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.image = append([]byte(nil), data...)
	m.text = ""
	return nil
}

// SetText places text on the mock clipboard directly (for tests).
func (m *MockBoard) SetText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.image = nil
}

// SetImage places image bytes on the mock clipboard directly (for tests).
func (m *MockBoard) SetImage(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.image = append([]byte(nil), data...)
	m.text = ""
}

// Text returns the current text content (for tests).
func (m *MockBoard) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Image returns the current image content (for tests).
func (m *MockBoard) Image() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.image...)
}
