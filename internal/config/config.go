package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"pairsniper/internal/logging"
)

// Config materialises process-level configuration. The watch configuration
// itself (pair, thresholds, credentials) arrives at runtime through the
// HTTP API; the optional `watch` section only seeds it at startup.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Market    MarketConfig    `mapstructure:"market"`
	Exchange  ExchangeConfig  `mapstructure:"exchange"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Watch     WatchConfig     `mapstructure:"watch"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// HTTPConfig governs the presentation API listener.
type HTTPConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SchedulerConfig governs polling cadence.
type SchedulerConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
}

// MarketConfig covers the data-provider endpoint.
type MarketConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// ExchangeConfig covers the trading API endpoint. Order placement gets a
// longer deadline than data fetches; exchanges are slower.
type ExchangeConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	OrderTimeout time.Duration `mapstructure:"order_timeout"`
}

// TelegramConfig 描述 Telegram 接入参数。
type TelegramConfig struct {
	APIBase        string        `mapstructure:"api_base"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// WatchConfig optionally seeds the watch configuration at startup, so the
// daemon can run headless without waiting for an API submit. Credentials
// here are secrets: hold in memory, never log.
type WatchConfig struct {
	Pair                    string  `mapstructure:"pair"`
	PriceChangeThresholdPct float64 `mapstructure:"price_change_threshold_pct"`
	VolumeThreshold         float64 `mapstructure:"volume_threshold"`
	TradeAmountQuote        float64 `mapstructure:"trade_amount_quote"`
	ExchangeAPIKey          string  `mapstructure:"exchange_api_key"`
	ExchangeAPISecret       string  `mapstructure:"exchange_api_secret"`
	TelegramBotToken        string  `mapstructure:"telegram_bot_token"`
	TelegramChatID          string  `mapstructure:"telegram_chat_id"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAIRSNIPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pairsniper")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("http.listen_addr", ":8080")
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("scheduler.interval", "5s")
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("market.base_url", "https://api.dexscreener.com/latest/dex/pairs")
	v.SetDefault("market.request_timeout", "5s")
	v.SetDefault("market.user_agent", "pairsniper/1.0")

	v.SetDefault("exchange.order_timeout", "30s")

	v.SetDefault("telegram.api_base", "https://api.telegram.org")
	v.SetDefault("telegram.request_timeout", "10s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Market.RequestTimeout <= 0 {
		return fmt.Errorf("market.request_timeout must be greater than zero")
	}
	if c.Exchange.OrderTimeout <= 0 {
		return fmt.Errorf("exchange.order_timeout must be greater than zero")
	}
	if c.Watch.Pair != "" && c.Watch.TradeAmountQuote <= 0 {
		return fmt.Errorf("watch.trade_amount_quote must be greater than zero")
	}
	return nil
}
