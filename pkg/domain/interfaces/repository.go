package interfaces

import (
	"context"

	"github.com/m-mizutani/assayer/pkg/domain/model"
)

// Repository persists analysis outcomes and installation records
type Repository interface {
	// InsertPullRequest stores the record of one analysis run and returns
	// the storage-assigned record ID
	InsertPullRequest(ctx context.Context, record *model.PullRequestRecord) (string, error)

	// SaveInstallation stores (or overwrites) an App installation record
	SaveInstallation(ctx context.Context, inst *model.Installation) error
}
