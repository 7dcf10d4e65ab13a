package models

import "time"

type Media struct {
	ID         string
	Filename   string
	URL        string
	MimeType   string
	SizeBytes  int64
	AltText    string
	UploadedBy *string
	CreatedAt  time.Time
}

// MediaInput describes a stored file to register.
type MediaInput struct {
	Filename   string
	URL        string
	MimeType   string
	SizeBytes  int64
	AltText    string
	UploadedBy *string
}
