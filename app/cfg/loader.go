package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBDriver   string `long:"db-driver" env:"DB_DRIVER" default:"sqlite" choice:"sqlite" choice:"postgres" description:"Database driver"`
	DBPath     string `long:"db-path" env:"DB_PATH" default:"./rss-picks.db" description:"SQLite database file"`
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host (postgres)"`
	DBPort     int    `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port (postgres)"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"rss_user" description:"Database user (postgres)"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" description:"Database password (postgres)"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"rss_picks" description:"Database name (postgres)"`

	// Feed sources
	FeedsDir       string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed source files"`
	FeedURL        string `long:"feed-url" env:"FEED_URL" default:"https://www.thedartmouth.com/plugin/feeds/the-dartmouth-articles-feed.xml" description:"URL registered as the 'default' source (empty to disable)"`
	DefaultSource  string `long:"default-source" env:"DEFAULT_SOURCE" default:"default" description:"Source used when a request names none"`
	RequestTimeout int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Upstream fetch timeout in seconds for sources without one"`

	// HTTP server
	Port    string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://picks.example.com)"`

	// Background tasks
	WorkerCount       int `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	SchedulerInterval int `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Scheduler interval in seconds"`

	// Authentication
	BcryptCost    int    `long:"bcrypt-cost" env:"BCRYPT_COST" default:"10" description:"bcrypt work factor for stored passwords"`
	UsernameMatch string `long:"username-match" env:"USERNAME_MATCH" default:"exact" choice:"exact" choice:"pattern" description:"Username lookup policy at login"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Picks/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the process arguments and environment. It returns nil, nil
// when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", raw.WorkerCount)
	}
	if raw.SchedulerInterval < 1 {
		return nil, fmt.Errorf("scheduler interval must be at least 1 second, got %d", raw.SchedulerInterval)
	}

	cfg := &Cfg{
		DBDriver:          raw.DBDriver,
		DBPath:            raw.DBPath,
		DBHost:            raw.DBHost,
		DBPort:            raw.DBPort,
		DBUser:            raw.DBUser,
		DBPassword:        raw.DBPassword,
		DBName:            raw.DBName,
		FeedsDir:          raw.FeedsDir,
		FeedURL:           raw.FeedURL,
		DefaultSource:     raw.DefaultSource,
		RequestTimeout:    time.Duration(raw.RequestTimeout) * time.Second,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: time.Duration(raw.SchedulerInterval) * time.Second,
		BcryptCost:        raw.BcryptCost,
		UsernameMatch:     raw.UsernameMatch,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
