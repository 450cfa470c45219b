package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath string

	// Application configuration
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Upstream
	ListingURL    string
	AllowedDomain string
	RulesFile     string
	EmbedMode     string
	ViewerURL     string
	UserAgent     string
	FetchTimeout  time.Duration

	// Sync
	ChunkSize      int
	SyncInterval   time.Duration
	SyncMinSpacing time.Duration

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
