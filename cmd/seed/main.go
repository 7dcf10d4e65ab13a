// Seed tool: creates the first admin account and a few starter posts so a
// fresh blog has something to show. It uses the backend selected by the
// usual BLOG_* environment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ghazighazi3030/blogueee/config"
	"github.com/ghazighazi3030/blogueee/internal/auth"
	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/backend/connect"
	"github.com/ghazighazi3030/blogueee/internal/models"
	"github.com/ghazighazi3030/blogueee/internal/slug"
)

type samplePost struct {
	title, category, excerpt, content string
}

var samplePosts = []samplePost{
	{
		title:    "Season Preview: Who Can Stop the Champions?",
		category: "football",
		excerpt:  "Five contenders, one trophy. We break down the title race before a ball is kicked.",
		content:  "The new season starts this weekend and the champions look stronger than ever.\n\nBut the chasing pack has spent big over the summer, and the gap may be smaller than it looks.",
	},
	{
		title:    "Playoff Picture After the All-Star Break",
		category: "basketball",
		excerpt:  "Seeding battles heat up as the second half of the season begins.",
		content:  "With thirty games left, six teams are within three wins of home-court advantage.\n\nDepth and health will decide who gets there.",
	},
	{
		title:    "Clay Court Season: Early Lessons",
		category: "tennis",
		excerpt:  "The first clay events reshuffled the rankings. Here is what we learned.",
		content:  "Clay rewards patience, and this spring the patient players are winning.\n\nThe big servers have struggled to adapt to the slower surface.",
	},
}

func main() {
	var (
		email    string
		password string
		name     string
		posts    bool
	)
	flag.StringVar(&email, "email", "admin@example.com", "admin account email")
	flag.StringVar(&password, "password", "", "admin account password (required)")
	flag.StringVar(&name, "name", "Site Admin", "admin full name")
	flag.BoolVar(&posts, "posts", true, "create sample posts")
	flag.Parse()

	if password == "" {
		log.Fatal("seed: -password is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := connect.Open(ctx, cfg, false)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	defer client.Close()

	start := time.Now()
	admin, err := seedAdmin(ctx, client, email, password, name)
	if err != nil {
		log.Fatalf("seed admin failed: %v", err)
	}
	if posts {
		n, err := seedPosts(ctx, client, admin.ID)
		if err != nil {
			log.Fatalf("seed posts failed: %v", err)
		}
		log.Printf("created %d sample posts", n)
	}
	log.Printf("done in %s", time.Since(start).Truncate(time.Millisecond))
}

// seedAdmin creates the admin account, or signs in to the existing one.
func seedAdmin(ctx context.Context, client backend.Client, email, password, name string) (*models.Profile, error) {
	if err := auth.ValidateNewUser(email, name, password); err != nil {
		return nil, err
	}
	p, err := client.SignUp(ctx, models.NewUser{Email: email, Password: password, FullName: name, Role: models.RoleAdmin})
	if err == nil {
		log.Printf("created admin %s", p.Email)
		return p, nil
	}
	if !errors.Is(err, auth.ErrEmailExists) {
		return nil, err
	}

	sess, err := client.SignIn(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("admin %s exists but sign in failed: %w", email, err)
	}
	defer client.SignOut(ctx, sess.AccessToken)
	log.Printf("admin %s already exists", email)
	return &sess.User, nil
}

// seedPosts publishes the sample posts whose slugs are still free.
func seedPosts(ctx context.Context, client backend.Client, authorID string) (int, error) {
	created := 0
	for _, sp := range samplePosts {
		s := slug.Make(sp.title)
		if _, err := client.GetPostBySlug(ctx, s); err == nil {
			continue
		} else if !errors.Is(err, backend.ErrNotFound) {
			return created, err
		}

		in := models.PostInput{
			Title:    sp.title,
			Slug:     s,
			Content:  sp.content,
			Excerpt:  sp.excerpt,
			Status:   models.PostPublished,
			AuthorID: authorID,
		}
		if cat, err := client.GetCategoryBySlug(ctx, sp.category); err == nil {
			in.CategoryID = &cat.ID
		}
		if _, err := client.CreatePost(ctx, in); err != nil {
			return created, fmt.Errorf("create %q: %w", sp.title, err)
		}
		created++
	}
	return created, nil
}
