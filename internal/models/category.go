package models

import "time"

type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
}

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}
