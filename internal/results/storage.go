package results

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/searchroi/search-roi/internal/pkg/errors"
)

// MemoryStore keeps runs in memory (for testing).
type MemoryStore struct {
	runs map[string]*RunRecord
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*RunRecord),
	}
}

func (m *MemoryStore) SaveRun(ctx context.Context, record *RunRecord) error {
	if record.ID == "" {
		return errors.ValidationError("run ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Copy to avoid mutations after save
	recordCopy := *record
	m.runs[record.ID] = &recordCopy
	return nil
}

func (m *MemoryStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.runs[id]
	if !exists {
		return nil, errors.NotFoundError("run " + id)
	}

	recordCopy := *record
	return &recordCopy, nil
}

func (m *MemoryStore) ListRuns(ctx context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]Summary, 0, len(m.runs))
	for _, record := range m.runs {
		summaries = append(summaries, record.Summarize())
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (m *MemoryStore) Close() error { return nil }

// FileStore persists runs as JSON files, one per run.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file-based store rooted at basePath.
func NewFileStore(basePath string) *FileStore {
	return &FileStore{
		basePath: basePath,
	}
}

func (f *FileStore) runPath(id string) string {
	return filepath.Join(f.basePath, id+".json")
}

func (f *FileStore) SaveRun(ctx context.Context, record *RunRecord) error {
	if record.ID == "" {
		return errors.ValidationError("run ID cannot be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.basePath, 0755); err != nil {
		return errors.StorageError("failed to create results directory", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.StorageError("failed to marshal run", err)
	}

	if err := os.WriteFile(f.runPath(record.ID), data, 0644); err != nil {
		return errors.StorageError("failed to write run file", err)
	}

	return nil
}

func (f *FileStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.runPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("run " + id)
		}
		return nil, errors.StorageError("failed to read run file", err)
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.StorageError("failed to unmarshal run", err)
	}

	return &record, nil
}

func (f *FileStore) ListRuns(ctx context.Context) ([]Summary, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, errors.StorageError("failed to read results directory", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(f.basePath, entry.Name()))
		if err != nil {
			continue
		}
		var record RunRecord
		if err := json.Unmarshal(data, &record); err != nil {
			// Skip unreadable entries
			continue
		}
		summaries = append(summaries, record.Summarize())
	}
	sortSummaries(summaries)
	return summaries, nil
}

func (f *FileStore) Close() error { return nil }

func sortSummaries(summaries []Summary) {
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartedAt.After(summaries[j].StartedAt)
	})
}
