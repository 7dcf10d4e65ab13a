package models

import "time"

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
	CommentSpam     CommentStatus = "spam"
)

// Valid reports whether s is one of the known statuses.
func (s CommentStatus) Valid() bool {
	switch s {
	case CommentPending, CommentApproved, CommentRejected, CommentSpam:
		return true
	}
	return false
}

type Comment struct {
	ID          string
	PostID      string
	AuthorName  string
	AuthorEmail string
	Content     string
	Status      CommentStatus
	CreatedAt   time.Time
	PostTitle   string // Title of the commented post
}

// CommentInput is a comment submitted from a public post page.
type CommentInput struct {
	PostID      string
	AuthorName  string
	AuthorEmail string
	Content     string
	Status      CommentStatus
}
