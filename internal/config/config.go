package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR,default=:8080"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	LogFormat       string        `env:"LOG_FORMAT,default=json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	// Dataset sources. http(s)://, gs://bucket/object, or a local path.
	TabularDataURL   string        `env:"TABULAR_DATA_URL,default=https://raw.githubusercontent.com/madu12/metro-interstate-traffic-volume/refs/heads/main/data/output_data.csv"`
	HierarchyDataURL string        `env:"HIERARCHY_DATA_URL,default=https://raw.githubusercontent.com/madu12/metro-interstate-traffic-volume/refs/heads/main/data/hierarchical_traffic_data.json"`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT,default=30s"`
	DataTimeZone     string        `env:"DATA_TIME_ZONE,default=UTC"`

	// Chart rendering.
	HistogramBuckets int           `env:"HISTOGRAM_BUCKETS,default=40"`
	NiceDomains      bool          `env:"NICE_DOMAINS,default=true"`
	ChartWidth       int           `env:"CHART_WIDTH,default=1200"`
	ChartHeight      int           `env:"CHART_HEIGHT,default=400"`
	ZoomDuration     time.Duration `env:"ZOOM_DURATION,default=750ms"`
	MaxSessions      int           `env:"MAX_SESSIONS,default=1000"`

	// Interaction event sink. Empty KAFKA_BROKERS disables publishing.
	KafkaBrokers       []string      `env:"KAFKA_BROKERS"`
	KafkaEventsTopic   string        `env:"KAFKA_EVENTS_TOPIC,default=traffic-viz-interactions"`
	EventBatchSize     int           `env:"EVENT_BATCH_SIZE,default=50"`
	EventFlushInterval time.Duration `env:"EVENT_FLUSH_INTERVAL,default=500ms"`
	EventQueueSize     int           `env:"EVENT_QUEUE_SIZE,default=1024"`

	loc *time.Location
}

// Location is DATA_TIME_ZONE resolved by Load.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// EventsEnabled reports whether interaction events are published.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.DataTimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid DATA_TIME_ZONE %q: %w", cfg.DataTimeZone, err)
	}
	cfg.loc = loc

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.ShutdownTimeout <= 0:
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	case c.TabularDataURL == "":
		return errors.New("TABULAR_DATA_URL is required")
	case c.HierarchyDataURL == "":
		return errors.New("HIERARCHY_DATA_URL is required")
	case c.FetchTimeout <= 0:
		return errors.New("FETCH_TIMEOUT must be positive")
	case c.HistogramBuckets < 1:
		return errors.New("HISTOGRAM_BUCKETS must be at least 1")
	case c.ChartWidth < 100 || c.ChartHeight < 100:
		return errors.New("CHART_WIDTH and CHART_HEIGHT must be at least 100")
	case c.ZoomDuration < 0:
		return errors.New("ZOOM_DURATION must not be negative")
	case c.MaxSessions < 1:
		return errors.New("MAX_SESSIONS must be at least 1")
	}

	if !c.EventsEnabled() {
		return nil
	}
	switch {
	case c.KafkaEventsTopic == "":
		return errors.New("KAFKA_EVENTS_TOPIC is required when KAFKA_BROKERS is set")
	case c.EventBatchSize < 1 || c.EventBatchSize > 1000:
		return errors.New("EVENT_BATCH_SIZE must be between 1 and 1000")
	case c.EventFlushInterval <= 0:
		return errors.New("EVENT_FLUSH_INTERVAL must be positive")
	case c.EventQueueSize < c.EventBatchSize:
		return errors.New("EVENT_QUEUE_SIZE must be at least EVENT_BATCH_SIZE")
	}
	return nil
}
