// Package backend defines the client the blog uses for every read, write and
// auth call. Adapters in the sub-packages talk to a hosted REST backend, a
// Postgres database or an embedded SQLite file.
package backend

import (
	"context"
	"errors"

	"github.com/ghazighazi3030/blogueee/internal/models"
)

// ErrNotFound is wrapped by adapters when a single-row lookup matches
// nothing.
var ErrNotFound = errors.New("not found")

// Error is a failed backend call. Message is the text the backend returned
// and is what the UI shows.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Op + " failed"
}

func (e *Error) Unwrap() error { return e.Err }

// Fail wraps err as an *Error for op. A nil err returns nil; an err that is
// already an *Error is returned unchanged.
func Fail(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	return &Error{Op: op, Message: err.Error(), Err: err}
}

// NotFound returns an *Error for op that matches ErrNotFound.
func NotFound(op, what string) error {
	return &Error{Op: op, Message: what + " not found", Err: ErrNotFound}
}

// Message extracts the user-facing message of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Error()
	}
	return err.Error()
}

// AuthAPI covers sign-in, sign-out and session lookup. GetSession returns
// (nil, nil) when the token carries no live session.
type AuthAPI interface {
	SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	SignUp(ctx context.Context, user models.NewUser) (*models.Profile, error)
	GetSession(ctx context.Context, accessToken string) (*models.Session, error)
	OnAuthStateChange(fn func(AuthEvent)) Subscription
}

type StatsAPI interface {
	GetStats(ctx context.Context) (models.Stats, error)
}

type PostAPI interface {
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type CommentAPI interface {
	ListComments(ctx context.Context) ([]models.Comment, error)
	ListPostComments(ctx context.Context, postID string, status models.CommentStatus) ([]models.Comment, error)
	CreateComment(ctx context.Context, in models.CommentInput) (*models.Comment, error)
	UpdateCommentStatus(ctx context.Context, id string, status models.CommentStatus) error
	DeleteComment(ctx context.Context, id string) error
}

type UserAPI interface {
	ListUsers(ctx context.Context) ([]models.Profile, error)
	GetUser(ctx context.Context, id string) (*models.Profile, error)
	UpdateUser(ctx context.Context, id string, in models.ProfileInput) (*models.Profile, error)
	DeleteUser(ctx context.Context, id string) error
}

type MediaAPI interface {
	ListMedia(ctx context.Context) ([]models.Media, error)
	GetMedia(ctx context.Context, id string) (*models.Media, error)
	CreateMedia(ctx context.Context, in models.MediaInput) (*models.Media, error)
	DeleteMedia(ctx context.Context, id string) error
}

type SettingsAPI interface {
	GetSiteSettings(ctx context.Context) (models.SiteSettings, error)
	UpdateSiteSettings(ctx context.Context, s models.SiteSettings) error
	GetSEOSettings(ctx context.Context) (models.SEOSettings, error)
	UpdateSEOSettings(ctx context.Context, s models.SEOSettings) error
}

// Client is everything the web layer needs from a backend.
type Client interface {
	AuthAPI
	StatsAPI
	PostAPI
	CategoryAPI
	CommentAPI
	UserAPI
	MediaAPI
	SettingsAPI
	Close() error
}
