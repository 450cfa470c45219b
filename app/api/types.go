package api

import (
	"github.com/lysyi3m/duyuru/app/database"
	"github.com/lysyi3m/duyuru/app/feed"
	"github.com/lysyi3m/duyuru/app/tasks"
)

type GeneratorInterface interface {
	Run(items []feed.AnnouncementView) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	postRepo         database.PostRepository
	announcementRepo database.AnnouncementRepository
	lister           tasks.Lister
	scraper          tasks.Scraper
	allowlist        *feed.Allowlist
	fetcher          *feed.Fetcher
	normalizer       *feed.DateNormalizer
	generator        GeneratorInterface
	scheduler        tasks.TaskSchedulerInterface
}

// PostResponse is the detail endpoint payload
type PostResponse struct {
	Title       string `json:"title"`
	DateText    string `json:"dateText,omitempty"`
	ContentHTML string `json:"contentHTML"`
	Cached      bool   `json:"cached"`
	Stale       bool   `json:"stale,omitempty"`
}
