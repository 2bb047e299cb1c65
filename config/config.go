package config

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv environment variable holding the exchange API key.
const APIKeyEnv = "BLOCKCHAIN_API_KEY"

const (
	defaultWSURL           = "wss://ws.prod.blockchain.info/mercury-gateway/v1/ws"
	defaultOrigin          = "https://exchange.blockchain.com"
	defaultQuoteRate       = "0.01"
	defaultCancelRate      = "0.005"
	defaultEvalInterval    = 10 * time.Second
	defaultPlaceFreshness  = 180 * time.Second
	defaultCancelFreshness = 300 * time.Second
	defaultGranularity     = 60
	defaultJournalDir      = "./wal/actions"
	defaultCancelDedupTTL  = 30 * time.Second
	defaultRestartWait     = 10 * time.Second
)

var granularities = []int{60, 300, 900, 3600, 21600, 86400}

type Config struct {
	WSURL            string
	Origin           string
	APIKey           string
	QuoteRate        decimal.Decimal
	CancelRate       decimal.Decimal
	EvalInterval     time.Duration
	PlaceFreshness   time.Duration
	CancelFreshness  time.Duration
	PriceGranularity int
	JournalDir       string
	DryRun           bool
	CancelDedupTTL   time.Duration
	RestartWait      time.Duration
	Debug            bool
}

type configTmp struct {
	WSURL            string        `yaml:"ws_url"`
	Origin           string        `yaml:"origin"`
	QuoteRate        string        `yaml:"quote_rate"`
	CancelRate       string        `yaml:"cancel_rate"`
	EvalInterval     time.Duration `yaml:"eval_interval"`
	PlaceFreshness   time.Duration `yaml:"place_freshness"`
	CancelFreshness  time.Duration `yaml:"cancel_freshness"`
	PriceGranularity int           `yaml:"price_granularity"`
	JournalDir       string        `yaml:"journal_dir"`
	DryRun           bool          `yaml:"dry_run"`
	CancelDedupTTL   time.Duration `yaml:"cancel_dedup_ttl"`
	RestartWait      time.Duration `yaml:"restart_wait"`
}

// Get reads the configuration from the process arguments and environment.
func Get() (Config, error) {
	return Load(os.Args[1:], os.Getenv)
}

// Load reads the configuration from a yaml file when --config is given, otherwise from flags.
// Flags set explicitly on the command line override the yaml values.
// The API key always comes from the environment.
func Load(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("tobmaker", flag.ContinueOnError)
	path := fs.String("config", "", "path to yaml config, explicitly set flags override its values")
	debug := fs.Bool("debug", false, "development logging")
	tmp := configTmp{}
	fs.StringVar(&tmp.WSURL, "wsurl", defaultWSURL, "exchange websocket url")
	fs.StringVar(&tmp.Origin, "origin", defaultOrigin, "Origin header sent on connect")
	fs.StringVar(&tmp.QuoteRate, "quoterate", defaultQuoteRate, "minimum distance from the last price to place an order, example: 0.01")
	fs.StringVar(&tmp.CancelRate, "cancelrate", defaultCancelRate, "distance from the last price that cancels a resting order, example: 0.005")
	fs.DurationVar(&tmp.EvalInterval, "evalinterval", defaultEvalInterval, "strategy evaluation interval")
	fs.DurationVar(&tmp.PlaceFreshness, "placefreshness", defaultPlaceFreshness, "maximum price age to place an order")
	fs.DurationVar(&tmp.CancelFreshness, "cancelfreshness", defaultCancelFreshness, "price age that cancels resting orders")
	fs.IntVar(&tmp.PriceGranularity, "granularity", defaultGranularity, "price candle width in seconds")
	fs.StringVar(&tmp.JournalDir, "journaldir", defaultJournalDir, "action journal directory")
	fs.BoolVar(&tmp.DryRun, "dryrun", false, "log orders instead of sending them")
	fs.DurationVar(&tmp.CancelDedupTTL, "canceldedupttl", defaultCancelDedupTTL, "window in which repeated cancels of one order are dropped")
	fs.DurationVar(&tmp.RestartWait, "restartwait", defaultRestartWait, "wait before reconnecting after a session ends")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *path != "" {
		overrides := map[string]string{}
		fs.Visit(func(f *flag.Flag) {
			overrides[f.Name] = f.Value.String()
		})

		var err error
		if tmp, err = getYaml(*path); err != nil {
			return Config{}, err
		}
		for name, value := range overrides {
			if err := fs.Set(name, value); err != nil {
				return Config{}, fmt.Errorf("apply flag --%s over yaml config, error: %w", name, err)
			}
		}
	}

	cfg, err := tmp.toConfig()
	if err != nil {
		return Config{}, err
	}
	cfg.Debug = *debug
	cfg.APIKey = getenv(APIKeyEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getYaml(path string) (configTmp, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return configTmp{}, err
	}

	tmp := configTmp{}
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return configTmp{}, fmt.Errorf("incorrect yaml config %s, error: %w", path, err)
	}
	tmp.applyDefaults()

	return tmp, nil
}

func (c *configTmp) applyDefaults() {
	if c.WSURL == "" {
		c.WSURL = defaultWSURL
	}
	if c.Origin == "" {
		c.Origin = defaultOrigin
	}
	if c.QuoteRate == "" {
		c.QuoteRate = defaultQuoteRate
	}
	if c.CancelRate == "" {
		c.CancelRate = defaultCancelRate
	}
	if c.EvalInterval == 0 {
		c.EvalInterval = defaultEvalInterval
	}
	if c.PlaceFreshness == 0 {
		c.PlaceFreshness = defaultPlaceFreshness
	}
	if c.CancelFreshness == 0 {
		c.CancelFreshness = defaultCancelFreshness
	}
	if c.PriceGranularity == 0 {
		c.PriceGranularity = defaultGranularity
	}
	if c.JournalDir == "" {
		c.JournalDir = defaultJournalDir
	}
	if c.CancelDedupTTL == 0 {
		c.CancelDedupTTL = defaultCancelDedupTTL
	}
	if c.RestartWait == 0 {
		c.RestartWait = defaultRestartWait
	}
}

func (c configTmp) toConfig() (Config, error) {
	quoteRate, err := decimal.NewFromString(c.QuoteRate)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'quote_rate' param (must be a decimal, example: 0.01), error: %w", err)
	}
	cancelRate, err := decimal.NewFromString(c.CancelRate)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'cancel_rate' param (must be a decimal, example: 0.005), error: %w", err)
	}

	return Config{
		WSURL:            c.WSURL,
		Origin:           c.Origin,
		QuoteRate:        quoteRate,
		CancelRate:       cancelRate,
		EvalInterval:     c.EvalInterval,
		PlaceFreshness:   c.PlaceFreshness,
		CancelFreshness:  c.CancelFreshness,
		PriceGranularity: c.PriceGranularity,
		JournalDir:       c.JournalDir,
		DryRun:           c.DryRun,
		CancelDedupTTL:   c.CancelDedupTTL,
		RestartWait:      c.RestartWait,
	}, nil
}

// Validate checks the value ranges.
func (c Config) Validate() error {
	one := decimal.NewFromInt(1)
	if c.QuoteRate.IsNegative() || c.QuoteRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("invalid quote rate %s, must be in [0, 1)", c.QuoteRate)
	}
	if c.CancelRate.IsNegative() || c.CancelRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("invalid cancel rate %s, must be in [0, 1)", c.CancelRate)
	}
	if c.EvalInterval <= 0 || c.PlaceFreshness <= 0 || c.CancelFreshness <= 0 {
		return fmt.Errorf("eval interval and freshness windows must be positive")
	}
	if c.CancelDedupTTL < 0 || c.RestartWait < 0 {
		return fmt.Errorf("cancel dedup ttl and restart wait must not be negative")
	}
	if !slices.Contains(granularities, c.PriceGranularity) {
		return fmt.Errorf("invalid price granularity %d, must be one of %v", c.PriceGranularity, granularities)
	}
	if c.WSURL == "" {
		return fmt.Errorf("websocket url is required")
	}
	if c.APIKey == "" && !c.DryRun {
		return fmt.Errorf("%s is required unless dry run is enabled", APIKeyEnv)
	}
	return nil
}
