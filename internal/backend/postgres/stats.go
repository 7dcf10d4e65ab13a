package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
)

// StatsMonths is the number of months in the dashboard chart.
const StatsMonths = 6

// GetStats runs independent count queries; the counters are not a snapshot.
func (s *Store) GetStats(ctx context.Context) (models.Stats, error) {
	const op = "get stats"
	var st models.Stats
	counters := []struct {
		q   string
		dst *int
	}{
		{"SELECT COUNT(*) FROM posts", &st.PostCount},
		{"SELECT COUNT(*) FROM comments", &st.CommentCount},
		{"SELECT COUNT(*) FROM profiles", &st.UserCount},
		{"SELECT COALESCE(SUM(view_count), 0) FROM posts", &st.TotalViews},
	}
	for _, c := range counters {
		if err := s.pool.QueryRow(ctx, c.q).Scan(c.dst); err != nil {
			return st, backend.Fail(op, err)
		}
	}

	now := s.utcNow()
	since := models.MonthWindow(now, StatsMonths)[0]
	posts, err := s.createdSince(ctx, "posts", since)
	if err != nil {
		return st, backend.Fail(op, err)
	}
	comments, err := s.createdSince(ctx, "comments", since)
	if err != nil {
		return st, backend.Fail(op, err)
	}
	st.Monthly = models.BucketByMonth(now, StatsMonths, posts, comments)
	return st, nil
}

func (s *Store) createdSince(ctx context.Context, table string, since time.Time) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx, "SELECT created_at FROM "+table+" WHERE created_at >= $1", since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}
