package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/relaybot/core/config"
	coredatabase "github.com/m3rciful/relaybot/core/database"
	"github.com/m3rciful/relaybot/internal/payout"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

const (
	defaultForwardRetention = 720 * time.Hour
	defaultPruneInterval    = time.Hour
	defaultHTTPListen       = ":8080"
	// HTTPDisabled turns the liveness server off.
	HTTPDisabled = "off"
)

// Config is the relay bot configuration: the core settings plus the relay's own.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Support  SupportConfig       `yaml:"support"`
	Payout   PayoutConfig        `yaml:"payout"`
	Storage  StorageConfig       `yaml:"storage"`
	Database coredatabase.Config `yaml:"database"`
	Redis    RedisConfig         `yaml:"redis"`
	HTTP     HTTPConfig          `yaml:"http"`
}

// SupportConfig points at the staff chat. GroupID 0 leaves the bot running in degraded mode.
type SupportConfig struct {
	GroupID int64 `yaml:"group_id" envconfig:"SUPPORT_GROUP_ID"`
}

// PayoutConfig tunes request validation.
type PayoutConfig struct {
	MinRequisitesLen int      `yaml:"min_requisites_len" envconfig:"PAYOUT_MIN_REQUISITES_LEN"`
	LinkPrefixes     []string `yaml:"link_prefixes" envconfig:"PAYOUT_LINK_PREFIXES"`
	// BareLinks accepts links without a scheme that start with one of LinkPrefixes. Default true.
	BareLinks *bool `yaml:"bare_links" envconfig:"PAYOUT_BARE_LINKS"`
}

// StorageConfig selects where requests and forwarding records live.
type StorageConfig struct {
	Requests string `yaml:"requests" envconfig:"STORAGE_REQUESTS"`
	Forwards string `yaml:"forwards" envconfig:"STORAGE_FORWARDS"`
	// ForwardRetention defaults to 720h; 0 keeps records forever.
	ForwardRetention *time.Duration `yaml:"forward_retention" envconfig:"STORAGE_FORWARD_RETENTION"`
	PruneInterval    time.Duration  `yaml:"prune_interval" envconfig:"STORAGE_PRUNE_INTERVAL"`
	// RequestTTL expires idle requests in Redis; 0 means no expiry.
	RequestTTL time.Duration `yaml:"request_ttl" envconfig:"STORAGE_REQUEST_TTL"`
}

// RedisConfig holds the go-redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// HTTPConfig configures the liveness and metrics server.
type HTTPConfig struct {
	Listen string `yaml:"listen" envconfig:"HTTP_LISTEN"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads path (optional) and the environment, then validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	s := &c.Storage
	s.Requests = strings.ToLower(strings.TrimSpace(s.Requests))
	if s.Requests == "" {
		s.Requests = StorageMemory
	}
	if s.Requests != StorageMemory && s.Requests != StorageRedis {
		return fmt.Errorf("invalid storage.requests %q; allowed: memory, redis", s.Requests)
	}
	s.Forwards = strings.ToLower(strings.TrimSpace(s.Forwards))
	if s.Forwards == "" {
		s.Forwards = StorageMemory
	}
	if s.Forwards != StorageMemory && s.Forwards != StoragePostgres {
		return fmt.Errorf("invalid storage.forwards %q; allowed: memory, postgres", s.Forwards)
	}
	if s.ForwardRetention == nil {
		d := defaultForwardRetention
		s.ForwardRetention = &d
	}
	if *s.ForwardRetention < 0 {
		return fmt.Errorf("storage.forward_retention must be >= 0")
	}
	if s.PruneInterval <= 0 {
		s.PruneInterval = defaultPruneInterval
	}
	if s.RequestTTL < 0 {
		return fmt.Errorf("storage.request_ttl must be >= 0")
	}

	if s.Requests == StorageRedis && strings.TrimSpace(c.Redis.Addr) == "" {
		return fmt.Errorf("redis.addr is required when storage.requests is 'redis'")
	}
	if s.Forwards == StoragePostgres {
		if strings.TrimSpace(c.Database.Host) == "" || strings.TrimSpace(c.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required when storage.forwards is 'postgres'")
		}
		c.Database = c.Database.WithDefaults()
	}

	if c.HTTP.Listen = strings.TrimSpace(c.HTTP.Listen); c.HTTP.Listen == "" {
		c.HTTP.Listen = defaultHTTPListen
	}
	return nil
}

// Retention returns the effective forwarding record retention.
func (c *Config) Retention() time.Duration {
	if c.Storage.ForwardRetention == nil {
		return defaultForwardRetention
	}
	return *c.Storage.ForwardRetention
}

// Policy builds the request validation policy.
func (c *Config) Policy() payout.Policy {
	p := payout.DefaultPolicy()
	if c.Payout.MinRequisitesLen != 0 {
		p.MinRequisitesLen = c.Payout.MinRequisitesLen
	}
	if len(c.Payout.LinkPrefixes) > 0 {
		p.LinkPrefixes = nil
		for _, prefix := range c.Payout.LinkPrefixes {
			if prefix = strings.TrimSpace(prefix); prefix != "" {
				p.LinkPrefixes = append(p.LinkPrefixes, prefix)
			}
		}
	}
	if c.Payout.BareLinks != nil && !*c.Payout.BareLinks {
		p.LinkPrefixes = nil
	}
	return p
}
