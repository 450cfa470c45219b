package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	EmbedModeAbsolute = "absolute"
	EmbedModeProxy    = "proxy"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/duyuru.db" description:"SQLite database file"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service, used for proxied embeds (e.g., https://duyuru.example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the manual sync endpoint (optional)"`

	// Upstream
	ListingURL    string `long:"listing-url" env:"LISTING_URL" default:"https://ydyo.ankaramedipol.edu.tr/duyurular/" description:"Upstream announcement listing page"`
	AllowedDomain string `long:"allowed-domain" env:"ALLOWED_DOMAIN" default:"ankaramedipol.edu.tr" description:"Host substring allowed for outbound fetches"`
	RulesFile     string `long:"rules-file" env:"RULES_FILE" description:"YAML file overriding the built-in scrape rules"`
	EmbedMode     string `long:"embed-mode" env:"EMBED_MODE" default:"absolute" choice:"absolute" choice:"proxy" description:"How embedded upstream files are referenced"`
	ViewerURL     string `long:"viewer-url" env:"VIEWER_URL" default:"https://view.officeapps.live.com/op/embed.aspx?src=" description:"Document viewer prefix for spreadsheet files"`
	UserAgent     string `long:"user-agent" env:"USER_AGENT" description:"User agent string for upstream requests"`
	FetchTimeout  int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"20" description:"Outbound fetch timeout in seconds"`

	// Sync
	ChunkSize      int `long:"chunk-size" env:"CHUNK_SIZE" default:"5" description:"Number of posts scraped concurrently per batch"`
	SyncInterval   int `long:"sync-interval" env:"SYNC_INTERVAL" default:"900" description:"Periodic sync interval in seconds"`
	SyncMinSpacing int `long:"sync-min-spacing" env:"SYNC_MIN_SPACING" default:"300" description:"Minimum seconds between on-demand syncs"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"Europe/Istanbul" description:"Timezone for timestamps (e.g., UTC, Europe/Istanbul)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := fromRaw(raw)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func fromRaw(raw rawCfg) *Cfg {
	return &Cfg{
		DBPath:         raw.DBPath,
		Port:           raw.Port,
		BaseUrl:        raw.BaseUrl,
		APIAccessKey:   raw.APIAccessKey,
		ListingURL:     raw.ListingURL,
		AllowedDomain:  raw.AllowedDomain,
		RulesFile:      raw.RulesFile,
		EmbedMode:      cmp.Or(raw.EmbedMode, EmbedModeAbsolute),
		ViewerURL:      raw.ViewerURL,
		UserAgent:      cmp.Or(raw.UserAgent, DefaultUserAgent),
		FetchTimeout:   time.Duration(raw.FetchTimeout) * time.Second,
		ChunkSize:      raw.ChunkSize,
		SyncInterval:   time.Duration(raw.SyncInterval) * time.Second,
		SyncMinSpacing: time.Duration(raw.SyncMinSpacing) * time.Second,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}
}

func validate(cfg *Cfg) error {
	if cfg.ListingURL == "" {
		return fmt.Errorf("listing URL is required")
	}
	if cfg.AllowedDomain == "" {
		return fmt.Errorf("allowed domain is required")
	}

	positive := map[string]int{
		"chunk size":    cfg.ChunkSize,
		"sync interval": int(cfg.SyncInterval / time.Second),
		"fetch timeout": int(cfg.FetchTimeout / time.Second),
	}

	for fieldName, fieldValue := range positive {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if cfg.SyncMinSpacing < 0 {
		return fmt.Errorf("sync min spacing must be non-negative")
	}

	if cfg.EmbedMode == EmbedModeProxy && cfg.BaseUrl == "" {
		return fmt.Errorf("base URL is required when embed mode is %q", EmbedModeProxy)
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
