package githubcli

import "time"

// Repository contains the repository fields consumed by the profile scripts.
type Repository struct {
	Owner       string
	Name        string
	FullName    string
	Description string
	HTMLURL     string
	Stars       int
	Forks       int
	OpenIssues  int
	Fork        bool
	Archived    bool
	UpdatedAt   time.Time
}

// ContentEntryType distinguishes files from directories in a contents listing.
type ContentEntryType string

// Content entry types reported by the contents API.
const (
	ContentEntryTypeFile      ContentEntryType = ContentEntryType("file")
	ContentEntryTypeDirectory ContentEntryType = ContentEntryType("dir")
)

// ContentEntry is a single item of a repository directory listing.
type ContentEntry struct {
	Name string
	Path string
	Type ContentEntryType
}

// PagesSite describes a published GitHub Pages site.
type PagesSite struct {
	HTMLURL string
}

// Branch is a branch together with the SHA of its head commit.
type Branch struct {
	Name      string
	CommitSHA string
}

// Commit carries the latest-commit details rendered by the branch dashboard.
type Commit struct {
	SHA        string
	Message    string
	AuthorName string
	AuthorDate time.Time
	HTMLURL    string
}
