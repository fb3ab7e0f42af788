package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"2s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	// Store is the durable key-value binding shared by the snapshot cache,
	// baselines and coach output.
	Store struct {
		Type          string `yaml:"type" default:"redis"`
		Prefix        string `yaml:"prefix" default:"mcm"`
		MemoryMaxSize int    `yaml:"memory_max_size" default:"1000"`
		Redis         struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size" default:"10"`
		} `yaml:"redis"`
	} `yaml:"store"`
	TwelveData struct {
		APIKey     string        `yaml:"api_key"`
		BaseURL    string        `yaml:"base_url" default:"https://api.twelvedata.com"`
		Timeout    time.Duration `yaml:"timeout" default:"8s"`
		Interval   string        `yaml:"interval" default:"5min"`
		OutputSize int           `yaml:"output_size" default:"300"`
	} `yaml:"twelvedata"`
	Snapshot struct {
		Timezone      string        `yaml:"timezone" default:"America/New_York"`
		MaxSymbols    int           `yaml:"max_symbols" default:"50"`
		RTHCadence    time.Duration `yaml:"rth_cadence" default:"5m"`
		ETHCadence    time.Duration `yaml:"eth_cadence" default:"1h"`
		Grace         time.Duration `yaml:"grace" default:"15s"`
		SymbolTimeout time.Duration `yaml:"symbol_timeout" default:"20s"`
		Note          string        `yaml:"note" default:"Signals update from cached snapshots (credits-aware)."`
	} `yaml:"snapshot"`
	Stream struct {
		Interval time.Duration `yaml:"interval" default:"30s"`
	} `yaml:"stream"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity" default:"20"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"2"`
	} `yaml:"rate_limit"`
	Coach struct {
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url" default:"https://api.openai.com/v1"`
		Model       string        `yaml:"model" default:"gpt-4.1-mini"`
		Temperature float64       `yaml:"temperature" default:"0.4"`
		Timeout     time.Duration `yaml:"timeout" default:"30s"`
		MinInterval time.Duration `yaml:"min_interval" default:"30m"`
		TTL         time.Duration `yaml:"ttl"`
		MaxLines    int           `yaml:"max_lines" default:"10"`
	} `yaml:"coach"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"mcm.snapshots"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id" default:"mcm-coach"`
			Workers    int           `yaml:"workers" default:"1"`
			BufferSize int           `yaml:"buffer_size" default:"16"`
			RetryMax   int           `yaml:"retry_max" default:"2"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Basket []BasketEntry `yaml:"basket"`
}

// BasketEntry describes one tracked symbol.
type BasketEntry struct {
	Symbol    string  `yaml:"symbol" json:"symbol"`
	Name      string  `yaml:"name" json:"name"`
	Category  string  `yaml:"category" json:"category"`
	Cohort    string  `yaml:"cohort" json:"cohort"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// DefaultBasket is the basket tracked when the config file names none.
var DefaultBasket = []BasketEntry{
	{Symbol: "MSFT", Name: "Microsoft", Category: "Mega-cap Liquidity Leader", Cohort: "liquidity_leader", Threshold: 0.005},
	{Symbol: "CRM", Name: "Salesforce", Category: "Enterprise Software / IT Budgets", Cohort: "reflex_bounce", Threshold: 0.010},
	{Symbol: "JPM", Name: "JPMorgan", Category: "Cyclical Financials", Cohort: "macro_sensitive", Threshold: 0.008},
	{Symbol: "AXP", Name: "American Express", Category: "Payments / Affluent Spend", Cohort: "macro_sensitive", Threshold: 0.012},
	{Symbol: "NKE", Name: "Nike", Category: "Consumer Discretionary", Cohort: "macro_sensitive", Threshold: 0.010},
	{Symbol: "IBM", Name: "IBM", Category: "Value Tech / Rebalancing", Cohort: "liquidity_leader", Threshold: 0.007},
}

// Default returns a config populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	c.Basket = append([]BasketEntry(nil), DefaultBasket...)
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. A .env file in the working directory is honoured when present.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the given lookup function.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := firstNonEmpty(getenv("TWELVEDATA_API_KEY"), getenv("TWELVE_DATA_API_KEY")); v != "" {
		c.TwelveData.APIKey = v
	}
	if v := firstNonEmpty(getenv("OPENAI_API_KEY"), getenv("OPENAI_KEY")); v != "" {
		c.Coach.APIKey = v
	}
	if v := getenv("OPENAI_MODEL"); v != "" {
		c.Coach.Model = v
	}
	if v := getenv("STORE_TYPE"); v != "" {
		c.Store.Type = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		if host, port, err := net.SplitHostPort(v); err == nil {
			c.Store.Redis.Host = host
			if p, err := strconv.Atoi(port); err == nil {
				c.Store.Redis.Port = p
			}
		} else {
			c.Store.Redis.Host = v
		}
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Store.Redis.Password = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
}

// Validate checks structural settings. Missing API keys are not an error
// here; requests report them as configuration errors.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Store.Type {
	case "redis", "memory", "layered":
	default:
		return fmt.Errorf("store.type must be 'redis', 'memory' or 'layered', got '%s'", c.Store.Type)
	}
	if c.Snapshot.MaxSymbols <= 0 {
		return fmt.Errorf("snapshot.max_symbols must be positive")
	}
	if c.Snapshot.RTHCadence <= 0 || c.Snapshot.ETHCadence <= 0 {
		return fmt.Errorf("snapshot cadences must be positive")
	}
	if _, err := time.LoadLocation(c.Snapshot.Timezone); err != nil {
		return fmt.Errorf("snapshot.timezone: %w", err)
	}
	if c.TwelveData.Interval == "" || c.TwelveData.OutputSize <= 0 {
		return fmt.Errorf("twelvedata.interval and twelvedata.output_size are required")
	}
	for i, b := range c.Basket {
		if strings.TrimSpace(b.Symbol) == "" {
			return fmt.Errorf("basket[%d].symbol is required", i)
		}
	}
	return nil
}

// BasketSymbols returns the basket symbols in configured order.
func (c *Config) BasketSymbols() []string {
	out := make([]string, 0, len(c.Basket))
	for _, b := range c.Basket {
		out = append(out, strings.ToUpper(strings.TrimSpace(b.Symbol)))
	}
	return out
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
