package firestore

import (
	"context"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/assayer/pkg/domain/model"
	"github.com/m-mizutani/assayer/pkg/domain/types"
)

const (
	collectionPullRequests  = "pull_requests"
	collectionInstallations = "installations"
)

// Client implements the Repository interface on Firestore
type Client struct {
	fs *firestore.Client
}

// New creates a new Firestore repository for the given project and
// database. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string) (*Client, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	fs, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.T(types.ErrTagPersistence),
			goerr.V("project_id", projectID),
		)
	}

	return &Client{fs: fs}, nil
}

// InsertPullRequest stores one analysis record. Each delivery writes its
// own document, overlapping deliveries for the same PR do not conflict.
func (c *Client) InsertPullRequest(ctx context.Context, record *model.PullRequestRecord) (string, error) {
	doc := c.fs.Collection(collectionPullRequests).Doc(uuid.NewString())
	if _, err := doc.Set(ctx, record); err != nil {
		return "", goerr.Wrap(err, "failed to insert pull request record",
			goerr.T(types.ErrTagPersistence),
			goerr.V("repository", record.Repository),
			goerr.V("number", record.Number),
		)
	}
	return doc.ID, nil
}

// SaveInstallation stores an App installation record keyed by its ID
func (c *Client) SaveInstallation(ctx context.Context, inst *model.Installation) error {
	doc := c.fs.Collection(collectionInstallations).Doc(strconv.FormatInt(inst.ID, 10))
	if _, err := doc.Set(ctx, inst); err != nil {
		return goerr.Wrap(err, "failed to save installation record",
			goerr.T(types.ErrTagPersistence),
			goerr.V("installation_id", inst.ID),
		)
	}
	return nil
}

// Close releases the underlying Firestore client
func (c *Client) Close() error {
	return c.fs.Close()
}
