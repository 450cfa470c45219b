package feed

import (
	"time"
)

// Upstream content types

type ItemSummary struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	ImageURL string `json:"image,omitempty"`
	DateText string `json:"dateText,omitempty"`
	Excerpt  string `json:"excerpt"`
}

type ScrapeResult struct {
	Title       string `json:"title"`
	DateText    string `json:"dateText,omitempty"`
	ContentHTML string `json:"contentHTML"`
}

// AnnouncementView is the merged shape served to the consuming application.
// Source is set only for upstream-derived records.
type AnnouncementView struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Date     time.Time `json:"date"`
	Priority int       `json:"priority"`
	Images   []string  `json:"images"`
	Files    []string  `json:"files"`
	Source   string    `json:"source,omitempty"`
}

// Rule types

type Rules struct {
	Listing ListingRules   `yaml:"listing"`
	Post    PostRules      `yaml:"post"`
	Filters []ConfigFilter `yaml:"filters"`
}

type ListingRules struct {
	Container     string `yaml:"container"`
	Entry         string `yaml:"entry"`
	FallbackEntry string `yaml:"fallback_entry"`
	Title         string `yaml:"title"`
	Date          string `yaml:"date"`
	Excerpt       string `yaml:"excerpt"`
}

type PostRules struct {
	Title           string   `yaml:"title"`
	Date            string   `yaml:"date"`
	ContentRegions  []string `yaml:"content_regions"`
	MainContainers  []string `yaml:"main_containers"`
	Noise           []string `yaml:"noise"`
	FileBlocks      string   `yaml:"file_blocks"`
	FileEmbeds      string   `yaml:"file_embeds"`
	SpreadsheetExts []string `yaml:"spreadsheet_extensions"`
	MinEmbedHeight  string   `yaml:"min_embed_height"`
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
