package model

import "time"

// Installation represents a GitHub App installation recorded when the app
// is installed on an account
type Installation struct {
	ID           int64     `firestore:"id"`
	Account      string    `firestore:"account"`
	Repositories []string  `firestore:"repositories"`
	InstalledAt  time.Time `firestore:"installed_at"`
}
