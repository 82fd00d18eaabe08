// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These types are shared by the GitHub client, the
// AI proposal engine, the fix publisher and the analysis pipelines, and carry no
// dependency on any of them.
package core

import (
	"fmt"
	"time"
)

// Repository identifies a target repository. Owner, Name and DefaultBranch form
// the reference used by every operation and never change within one.
type Repository struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	DefaultBranch string `json:"defaultBranch"`
	FullName      string `json:"fullName,omitempty"`
	HTMLURL       string `json:"htmlUrl,omitempty"`
	Description   string `json:"description,omitempty"`
	Language      string `json:"language,omitempty"`
}

// DisplayName returns owner/name, preferring the name reported by the host.
func (r Repository) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

type User struct {
	Login string `json:"login"`
}

type Label struct {
	Name string `json:"name"`
}

// Issue is an open issue. Items that are really pull requests never reach this type.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	User      User      `json:"user"`
	Labels    []Label   `json:"labels"`
	HTMLURL   string    `json:"htmlUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasLabel reports whether the issue carries the named label.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// LabelNames joins the label names for prompt rendering.
func (i *Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// PullRequest holds PR metadata plus the context assembled for a review.
type PullRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"`
	User    User   `json:"user"`
	HeadRef string `json:"headRef"`
	HeadSHA string `json:"headSha"`
	BaseRef string `json:"baseRef"`
	HTMLURL string `json:"htmlUrl,omitempty"`
	DiffURL string `json:"diffUrl,omitempty"`
}

// FileContext is the content of one changed file as seen at the PR head. When the
// fetch failed, Content holds an inline error message instead.
type FileContext struct {
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
}

type WorkflowRun struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	HeadBranch string    `json:"headBranch"`
	HeadSHA    string    `json:"headSha"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	HTMLURL    string    `json:"htmlUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type WorkflowJob struct {
	ID         int64  `json:"id"`
	RunID      int64  `json:"runId"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// Tree entry types as reported by the Git Data API.
const (
	EntryTypeTree = "tree"
	EntryTypeBlob = "blob"
)

// TreeEntry is one item of a recursive tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

// IsDir reports whether the entry is a directory. Only the type discriminator is consulted.
func (e TreeEntry) IsDir() bool {
	return e.Type == EntryTypeTree
}

// FileContent is a decoded file body plus its blob sha. The zero value means the
// file does not exist at the requested ref.
type FileContent struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

// Exists reports whether the lookup found a file.
func (f FileContent) Exists() bool {
	return f.SHA != ""
}
