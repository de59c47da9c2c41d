package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

// Repository is an in-memory Repository implementation for local runs
// and tests. Records survive only for the process lifetime.
type Repository struct {
	mu            sync.Mutex
	nextID        int64
	pullRequests  map[string]*model.PullRequestRecord
	installations map[int64]*model.Installation
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		nextID:        1,
		pullRequests:  make(map[string]*model.PullRequestRecord),
		installations: make(map[int64]*model.Installation),
	}
}

// InsertPullRequest stores one analysis record and returns a synthetic ID
func (r *Repository) InsertPullRequest(ctx context.Context, record *model.PullRequestRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := strconv.FormatInt(r.nextID, 10)
	r.nextID++

	copied := *record
	r.pullRequests[id] = &copied
	return id, nil
}

// SaveInstallation stores an installation record keyed by its ID
func (r *Repository) SaveInstallation(ctx context.Context, inst *model.Installation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *inst
	r.installations[inst.ID] = &copied
	return nil
}

// PullRequests returns a snapshot of all stored records, for tests
func (r *Repository) PullRequests() []*model.PullRequestRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.PullRequestRecord, 0, len(r.pullRequests))
	for _, rec := range r.pullRequests {
		copied := *rec
		out = append(out, &copied)
	}
	return out
}

// Installations returns a snapshot of all stored installations, for tests
func (r *Repository) Installations() []*model.Installation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Installation, 0, len(r.installations))
	for _, inst := range r.installations {
		copied := *inst
		out = append(out, &copied)
	}
	return out
}
