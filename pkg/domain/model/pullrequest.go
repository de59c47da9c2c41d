package model

import "time"

// PullRequestRef identifies one pull request as the unit of work for an
// analysis run. Owner and repo are always carried explicitly so downstream
// transforms never have to reconstruct them from payload fragments.
type PullRequestRef struct {
	Owner          string
	Repo           string
	Number         int
	HeadSHA        string
	InstallationID int64
}

// FullName returns the owner/repo form of the repository
func (r *PullRequestRef) FullName() string {
	return r.Owner + "/" + r.Repo
}

// PullRequestDetail holds the data fetched from the GitHub API for one
// analysis run. Read-only once obtained.
type PullRequestDetail struct {
	Title        string
	Body         string
	Diff         string
	Author       string
	Additions    int
	Deletions    int
	FilesChanged int
}

// PullRequestRecord is the persisted outcome of an analysis run
type PullRequestRecord struct {
	Number       int       `firestore:"number"`
	Repository   string    `firestore:"repository"`
	Title        string    `firestore:"title"`
	Author       string    `firestore:"author"`
	Status       string    `firestore:"status"`
	Additions    int       `firestore:"additions"`
	Deletions    int       `firestore:"deletions"`
	FilesChanged int       `firestore:"files_changed"`
	CreatedAt    time.Time `firestore:"created_at"`
}

// RecordStatusAnalyzed marks a record written after a completed analysis
const RecordStatusAnalyzed = "analyzed"
