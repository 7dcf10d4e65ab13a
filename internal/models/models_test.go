package models

import (
	"testing"
	"time"
)

func TestMonthWindow(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	got := MonthWindow(now, 6)
	want := []string{"2023-10", "2023-11", "2023-12", "2024-01", "2024-02", "2024-03"}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(got))
	}
	for i, m := range got {
		if m.Format("2006-01") != want[i] || m.Day() != 1 {
			t.Errorf("month %d = %s, want first of %s", i, m, want[i])
		}
	}
}

func TestBucketByMonth(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	posts := []time.Time{
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.October, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2023, time.September, 30, 0, 0, 0, 0, time.UTC), // outside the window
	}
	comments := []time.Time{time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)}

	stats := BucketByMonth(now, 6, posts, comments)
	if len(stats) != 6 {
		t.Fatalf("expected 6 buckets, got %d", len(stats))
	}
	if stats[5].Posts != 2 || stats[0].Posts != 1 {
		t.Fatalf("unexpected post buckets %+v", stats)
	}
	if stats[3].Comments != 1 {
		t.Fatalf("expected one January comment, got %+v", stats[3])
	}
	if stats[5].Label() != "Mar" {
		t.Fatalf("label = %q", stats[5].Label())
	}
}

func TestPostSummary(t *testing.T) {
	cases := []struct {
		name  string
		post  Post
		words int
		want  string
	}{
		{"excerpt wins", Post{Excerpt: "Short intro", Content: "long body text"}, 2, "Short intro"},
		{"truncated content", Post{Content: "one two three four"}, 2, "one two…"},
		{"short content", Post{Content: "one  two"}, 5, "one two"},
		{"blank excerpt", Post{Excerpt: "  ", Content: "a b"}, 0, "a b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.post.Summary(tc.words); got != tc.want {
				t.Fatalf("Summary = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEnumsValid(t *testing.T) {
	if !PostPublished.Valid() || PostStatus("live").Valid() {
		t.Fatal("post status validation")
	}
	if !CommentSpam.Valid() || CommentStatus("hidden").Valid() {
		t.Fatal("comment status validation")
	}
	if !RoleEditor.Valid() || Role("owner").Valid() {
		t.Fatal("role validation")
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		s    *Session
		want bool
	}{
		{"nil", nil, true},
		{"no expiry", &Session{}, false},
		{"future", &Session{ExpiresAt: now.Add(time.Minute)}, false},
		{"past", &Session{ExpiresAt: now.Add(-time.Minute)}, true},
		{"exactly now", &Session{ExpiresAt: now}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.s.Expired(now); got != tc.want {
				t.Fatalf("Expired = %v, want %v", got, tc.want)
			}
		})
	}
}
