// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

var _ models.VideoStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory [models.VideoStore] test double.
//
// Setting the *Err fields makes the matching method fail.
type MemoryStore struct {
	mu         sync.Mutex
	records    []*models.VideoRecord
	AddErr     error
	RemoveErr  error
	ListErr    error
	ReplaceErr error
}

func NewMemoryStore(records ...*models.VideoRecord) *MemoryStore {
	return &MemoryStore{records: append([]*models.VideoRecord{}, records...)}
}

func (m *MemoryStore) List() ([]*models.VideoRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]*models.VideoRecord{}, m.records...), nil
}

func (m *MemoryStore) Get(id string) (*models.VideoRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
}

func (m *MemoryStore) Add(record *models.VideoRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return m.AddErr
	}
	for _, r := range m.records {
		if r.ID() == record.ID() {
			return fmt.Errorf("%w: %s", shared.ErrDuplicateID, record.ID())
		}
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MemoryStore) Remove(id string) (*models.VideoRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return nil, m.RemoveErr
	}
	for i, r := range m.records {
		if r.ID() == id {
			m.records = append(m.records[:i:i], m.records[i+1:]...)
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
}

func (m *MemoryStore) Replace(records []*models.VideoRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.records = append([]*models.VideoRecord{}, records...)
	return nil
}

// MemoryBatchStore is an in-memory [models.BatchStore] test double.
type MemoryBatchStore struct {
	Batches   []*models.ImportBatch
	RecordErr error
}

func (m *MemoryBatchStore) Record(batch *models.ImportBatch) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.Batches = append(m.Batches, batch)
	return nil
}

func (m *MemoryBatchStore) Recent(limit int) ([]*models.ImportBatch, error) {
	var out []*models.ImportBatch
	for i := len(m.Batches) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Batches[i])
	}
	return out, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// WriteVideo creates dir/name filled with size bytes and returns its path.
func WriteVideo(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write video %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

// CountAllFiles returns the number of regular files in dir, hidden ones included.
func CountAllFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("Failed to read directory %s: %v", dir, err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
