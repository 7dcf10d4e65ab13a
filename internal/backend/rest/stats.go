package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

// StatsMonths is the number of months in the dashboard chart.
const StatsMonths = 6

// count asks for an exact row count without fetching rows.
func (c *Client) count(ctx context.Context, tbl string) (int, error) {
	h, err := c.do(ctx, request{
		op:     "get stats",
		method: http.MethodHead,
		path:   table(tbl),
		query:  url.Values{"select": {"*"}},
		prefer: "count=exact",
	}, nil)
	if err != nil {
		return 0, err
	}
	n, err := parseCount(h)
	if err != nil {
		return 0, backend.Fail("get stats", err)
	}
	return n, nil
}

// GetStats issues one request per counter with no snapshot guarantee.
func (c *Client) GetStats(ctx context.Context) (models.Stats, error) {
	var (
		st  models.Stats
		err error
	)
	if st.PostCount, err = c.count(ctx, "posts"); err != nil {
		return st, err
	}
	if st.CommentCount, err = c.count(ctx, "comments"); err != nil {
		return st, err
	}
	if st.UserCount, err = c.count(ctx, "profiles"); err != nil {
		return st, err
	}

	var views []struct {
		ViewCount *int `json:"view_count"`
	}
	q := url.Values{"select": {"view_count"}}
	if _, err := c.do(ctx, request{op: "get stats", method: http.MethodGet, path: table("posts"), query: q}, &views); err != nil {
		return st, err
	}
	for _, v := range views {
		if v.ViewCount != nil {
			st.TotalViews += *v.ViewCount
		}
	}

	now := c.now().UTC()
	since := models.MonthWindow(now, StatsMonths)[0]
	posts, err := c.createdSince(ctx, "posts", since)
	if err != nil {
		return st, err
	}
	comments, err := c.createdSince(ctx, "comments", since)
	if err != nil {
		return st, err
	}
	st.Monthly = models.BucketByMonth(now, StatsMonths, posts, comments)
	return st, nil
}

func (c *Client) createdSince(ctx context.Context, tbl string, since time.Time) ([]time.Time, error) {
	var rows []struct {
		CreatedAt time.Time `json:"created_at"`
	}
	q := url.Values{"select": {"created_at"}, "created_at": {"gte." + since.Format(time.RFC3339)}}
	if _, err := c.do(ctx, request{op: "get stats", method: http.MethodGet, path: table(tbl), query: q}, &rows); err != nil {
		return nil, err
	}
	times := make([]time.Time, len(rows))
	for i, r := range rows {
		times[i] = r.CreatedAt
	}
	return times, nil
}
