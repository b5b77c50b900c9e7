package cfg

import (
	"time"
)

type Cfg struct {
	// Database configuration
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// Feed sources
	FeedsDir       string
	FeedURL        string
	DefaultSource  string
	RequestTimeout time.Duration

	// HTTP server
	Port    string
	BaseUrl string

	// Background tasks
	WorkerCount       int
	SchedulerInterval time.Duration

	// Authentication
	BcryptCost    int
	UsernameMatch string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
