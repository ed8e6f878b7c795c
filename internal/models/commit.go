package models

import "time"

// * The latest commit of one repository. AuthorDate is nil when GitHub did
// * not return a parseable date; such records never make it into a ranking.
type CommitRecord struct {
	Repository Repository `json:"repository"`
	SHA        string     `json:"sha"`
	Message    string     `json:"message"`
	AuthorDate *time.Time `json:"author_date,omitempty"`
}
