package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
)

// Object is a stored file held by Memory
type Object struct {
	ContentType string
	Data        []byte
}

// Memory keeps objects in process memory for development and tests
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

var _ interfaces.ObjectStorage = &Memory{}

func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

func (m *Memory) Upload(ctx context.Context, path, contentType string, r io.Reader, size int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return goerr.Wrap(err, "failed to read upload", goerr.V("path", path))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = Object{ContentType: contentType, Data: buf.Bytes()}
	return nil
}

func (m *Memory) PublicURL(path string) string {
	return m.baseURL + "/" + path
}

// Get returns a stored object
func (m *Memory) Get(path string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[path]
	return obj, ok
}

// Len returns the number of stored objects
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
