package testsupport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"forge/internal/asseturl"
	"forge/internal/services"
)

// MemoryAssets is an in-memory downloader keyed by URL string. It tracks the
// peak number of concurrent downloads.
type MemoryAssets struct {
	// Delay is applied to every download before it returns.
	Delay time.Duration

	mu       sync.Mutex
	files    map[string][]byte
	failures map[string]error
	inFlight int
	peak     int
	calls    int
}

// NewMemoryAssets returns an empty downloader.
func NewMemoryAssets() *MemoryAssets {
	return &MemoryAssets{
		files:    make(map[string][]byte),
		failures: make(map[string]error),
	}
}

// Put stores content at raw and returns the parsed location.
func (m *MemoryAssets) Put(raw, content string) asseturl.URL {
	location := asseturl.MustParse(raw)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[location.String()] = []byte(content)
	return location
}

// Fail makes downloads of raw return err.
func (m *MemoryAssets) Fail(raw string, err error) asseturl.URL {
	location := asseturl.MustParse(raw)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[location.String()] = err
	return location
}

// DownloadBytes implements assets.Downloader.
func (m *MemoryAssets) DownloadBytes(ctx context.Context, location asseturl.URL) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.inFlight++
	if m.inFlight > m.peak {
		m.peak = m.inFlight
	}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failures[location.String()]; ok {
		return nil, err
	}
	data, ok := m.files[location.String()]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "testsupport", "download", location.String(), errors.New("no such asset"))
	}
	return append([]byte(nil), data...), nil
}

// Peak returns the highest number of downloads observed in flight at once.
func (m *MemoryAssets) Peak() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

// Calls returns the number of downloads attempted.
func (m *MemoryAssets) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MemorySink records written files in memory and returns file:///sink/ URLs.
type MemorySink struct {
	mu       sync.Mutex
	files    map[string][]byte
	failures map[string]error
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		files:    make(map[string][]byte),
		failures: make(map[string]error),
	}
}

// Fail makes writes to logicalPath return err.
func (s *MemorySink) Fail(logicalPath string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[logicalPath] = err
}

// WriteFile implements pipelines.Sink.
func (s *MemorySink) WriteFile(_ context.Context, logicalPath string, data []byte) (asseturl.URL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failures[logicalPath]; ok {
		return asseturl.URL{}, err
	}
	location, err := asseturl.Parse("file:///sink/" + logicalPath)
	if err != nil {
		return asseturl.URL{}, fmt.Errorf("sink location: %w", err)
	}
	s.files[location.String()] = append([]byte(nil), data...)
	return location, nil
}

// Get returns the bytes written at location.
func (s *MemorySink) Get(location asseturl.URL) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[location.String()]
	return data, ok
}

// Len returns the number of stored files.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
