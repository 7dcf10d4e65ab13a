package handlers

import (
	"strconv"

	"github.com/ghazighazi3030/blogueee/internal/query"
	"github.com/ghazighazi3030/blogueee/internal/session"
)

// Cache keys. Mutations invalidate by the first segment, so every key of an
// entity kind shares it.
var (
	keyPosts      = query.Key{"posts"}
	keyCategories = query.Key{"categories"}
	keyComments   = query.Key{"comments"}
	keyUsers      = query.Key{"users"}
	keyMedia      = query.Key{"media"}
	keyStats      = query.Key{"stats"}
	keySettings   = query.Key{"settings"}
	keySEO        = query.Key{"seo"}
)

func keyAdminPosts() query.Key       { return query.Key{"posts", "admin"} }
func keyPost(id string) query.Key    { return query.Key{"posts", "id", id} }
func keyPostSlug(s string) query.Key { return query.Key{"posts", "slug", s} }

func keyPublishedPosts(categorySlug string, limit int) query.Key {
	return query.Key{"posts", "published", categorySlug, strconv.Itoa(limit)}
}

func keyCategory(id string) query.Key         { return query.Key{"categories", "id", id} }
func keyCategorySlug(s string) query.Key      { return query.Key{"categories", "slug", s} }
func keyPostComments(postID string) query.Key { return query.Key{"comments", "post", postID, "approved"} }
func keyUser(id string) query.Key             { return query.Key{"users", id} }

// Keys dropped after each kind of mutation.
var (
	postWrites     = []query.Key{keyPosts, keyStats}
	categoryWrites = []query.Key{keyCategories, keyPosts}
	commentWrites  = []query.Key{keyComments, keyStats}
	userWrites     = []query.Key{keyUsers, keyStats, session.KeyPrefix}
	mediaWrites    = []query.Key{keyMedia}
)
