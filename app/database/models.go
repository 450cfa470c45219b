package database

import (
	"time"
)

// CurrentContentSchemaVersion is bumped whenever the rewriting of cached
// content changes shape, so existing rows get re-scraped on the next sync.
const CurrentContentSchemaVersion = 2

// CachedPost represents a mirrored upstream post
type CachedPost struct {
	ID                   string
	SourceURL            string
	Title                string
	DateText             string
	Content              string
	ImageURL             string
	HasFullContent       bool
	ContentSchemaVersion int
	PublishedAt          time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsStale reports whether the post needs to be scraped again
func (p *CachedPost) IsStale() bool {
	return !p.HasFullContent || p.ContentSchemaVersion < CurrentContentSchemaVersion
}

// PostUpsert carries the values written by UpsertPost. A nil PublishedAt
// keeps the stored date on update and falls back to the current time on insert.
type PostUpsert struct {
	SourceURL      string
	Title          string
	DateText       string
	Content        string
	ImageURL       string
	HasFullContent bool
	PublishedAt    *time.Time
}

// Announcement represents a first-party announcement record
type Announcement struct {
	ID        string
	Title     string
	Content   string
	Priority  int
	Images    []string
	Files     []string
	CreatedAt time.Time
}
