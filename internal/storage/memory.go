package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sevigo/repo-pilot/internal/core"
)

type memoryKey struct {
	owner  string
	name   string
	number int64
}

type memoryRow struct {
	result    []byte
	updatedAt time.Time
}

// memoryStore keeps results for the lifetime of the process. It is used when no
// database is configured. Results are stored as JSON so callers never share
// pointers with the store.
type memoryStore struct {
	mu       sync.RWMutex
	tables   map[string]map[memoryKey]memoryRow
	profiles map[string]Profile
	now      func() time.Time
}

// NewMemoryStore creates a Store that is not persisted across restarts.
func NewMemoryStore() Store {
	return &memoryStore{
		tables: map[string]map[memoryKey]memoryRow{
			issueTable.name: {},
			prTable.name:    {},
			ciTable.name:    {},
			docsTable:       {},
		},
		profiles: map[string]Profile{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *memoryStore) save(table string, key memoryKey, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s result: %w", table, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table][key] = memoryRow{result: payload, updatedAt: m.now()}
	return nil
}

func memoryGet[T any](m *memoryStore, table string, key memoryKey) (*core.StoredAnalysis[T], error) {
	m.mu.RLock()
	row, ok := m.tables[table][key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeMemoryRow[T](table, key, row)
}

func memoryList[T any](m *memoryStore, table, owner, name string) ([]*core.StoredAnalysis[T], error) {
	m.mu.RLock()
	var out []*core.StoredAnalysis[T]
	for key, row := range m.tables[table] {
		if key.owner != owner || key.name != name {
			continue
		}
		rec, err := decodeMemoryRow[T](table, key, row)
		if err != nil {
			m.mu.RUnlock()
			return nil, err
		}
		out = append(out, rec)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *core.StoredAnalysis[T]) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return int(b.Number - a.Number)
	})
	return out, nil
}

func decodeMemoryRow[T any](table string, key memoryKey, row memoryRow) (*core.StoredAnalysis[T], error) {
	var result T
	if err := json.Unmarshal(row.result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s row: %w", table, err)
	}
	return &core.StoredAnalysis[T]{
		RepoOwner: key.owner,
		RepoName:  key.name,
		Number:    key.number,
		Result:    result,
		UpdatedAt: row.updatedAt,
	}, nil
}

func (m *memoryStore) SaveIssueAnalysis(_ context.Context, owner, name string, number int, a *core.IssueAnalysis) error {
	return m.save(issueTable.name, memoryKey{owner, name, int64(number)}, a)
}

func (m *memoryStore) GetIssueAnalysis(_ context.Context, owner, name string, number int) (*IssueAnalysisRecord, error) {
	return memoryGet[*core.IssueAnalysis](m, issueTable.name, memoryKey{owner, name, int64(number)})
}

func (m *memoryStore) ListIssueAnalyses(_ context.Context, owner, name string) ([]*IssueAnalysisRecord, error) {
	return memoryList[*core.IssueAnalysis](m, issueTable.name, owner, name)
}

func (m *memoryStore) SavePRReview(_ context.Context, owner, name string, number int, r *core.PRReview) error {
	return m.save(prTable.name, memoryKey{owner, name, int64(number)}, r)
}

func (m *memoryStore) GetPRReview(_ context.Context, owner, name string, number int) (*PRReviewRecord, error) {
	return memoryGet[*core.PRReview](m, prTable.name, memoryKey{owner, name, int64(number)})
}

func (m *memoryStore) ListPRReviews(_ context.Context, owner, name string) ([]*PRReviewRecord, error) {
	return memoryList[*core.PRReview](m, prTable.name, owner, name)
}

func (m *memoryStore) SaveCIAnalysis(_ context.Context, owner, name string, runID int64, a *core.CIAnalysis) error {
	return m.save(ciTable.name, memoryKey{owner, name, runID}, a)
}

func (m *memoryStore) GetCIAnalysis(_ context.Context, owner, name string, runID int64) (*CIAnalysisRecord, error) {
	return memoryGet[*core.CIAnalysis](m, ciTable.name, memoryKey{owner, name, runID})
}

func (m *memoryStore) ListCIAnalyses(_ context.Context, owner, name string) ([]*CIAnalysisRecord, error) {
	return memoryList[*core.CIAnalysis](m, ciTable.name, owner, name)
}

func (m *memoryStore) SaveDocumentation(_ context.Context, owner, name string, doc *core.Documentation) error {
	return m.save(docsTable, memoryKey{owner: owner, name: name}, doc)
}

func (m *memoryStore) GetDocumentation(_ context.Context, owner, name string) (*DocumentationRecord, error) {
	return memoryGet[*core.Documentation](m, docsTable, memoryKey{owner: owner, name: name})
}

func (m *memoryStore) GetProfile(_ context.Context, userID string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memoryStore) SaveProfile(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *p
	row.UpdatedAt = m.now()
	m.profiles[p.UserID] = row
	return nil
}
