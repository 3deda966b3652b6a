package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const DefaultAnnualIncome = 50000

type Config struct {
	App         AppConfig      `yaml:"app"`
	Scraping    ScrapingConfig `yaml:"scraping"`
	Storage     StorageConfig  `yaml:"storage"`
	Credentials Credentials    `yaml:"-"`
}

type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Debug    bool   `yaml:"debug"`
	Port     int    `yaml:"port"`
	Timezone string `yaml:"timezone"`
}

type ScrapingConfig struct {
	HousingConnect HousingConnectConfig `yaml:"housingconnect"`
}

type HousingConnectConfig struct {
	BaseURL     string            `yaml:"base_url"`
	Endpoints   map[string]string `yaml:"endpoints"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	RetryPolicy RetryPolicyConfig `yaml:"retry_policy"`
	UserAgent   string            `yaml:"user_agent"`
	Browser     BrowserConfig     `yaml:"browser"`
	Delays      DelayConfig       `yaml:"delays"`
}

// RateLimitConfig bounds how often the bot loads pages from the portal.
type RateLimitConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

type RetryPolicyConfig struct {
	CardsTimeout     Duration `yaml:"cards_timeout"`
	DetailTimeout    Duration `yaml:"detail_timeout"`
	ListTimeout      Duration `yaml:"list_timeout"`
	ListRetryTimeout Duration `yaml:"list_retry_timeout"`
	LoginFormTimeout Duration `yaml:"login_form_timeout"`
	DialogTimeout    Duration `yaml:"dialog_timeout"`
	PollInterval     Duration `yaml:"poll_interval"`
	PageChangePolls  int      `yaml:"page_change_polls"`
}

type BrowserConfig struct {
	Bin            string   `yaml:"bin"`
	Headless       bool     `yaml:"headless"`
	SlowMotion     Duration `yaml:"slow_motion"`
	ViewportWidth  int      `yaml:"viewport_width"`
	ViewportHeight int      `yaml:"viewport_height"`
	DefaultTimeout Duration `yaml:"default_timeout"`
}

// DelayRange is a pause drawn uniformly from [Min, Max].
type DelayRange struct {
	Min Duration `yaml:"min"`
	Max Duration `yaml:"max"`
}

type DelayConfig struct {
	PageLoad       DelayRange `yaml:"page_load"`
	TabSwitch      DelayRange `yaml:"tab_switch"`
	PageParse      DelayRange `yaml:"page_parse"`
	Keystroke      DelayRange `yaml:"keystroke"`
	LoginRedirect  DelayRange `yaml:"login_redirect"`
	DetailLoad     DelayRange `yaml:"detail_load"`
	DetailRetry    DelayRange `yaml:"detail_retry"`
	DetailGrace    DelayRange `yaml:"detail_grace"`
	DetailSettle   DelayRange `yaml:"detail_settle"`
	ApplyClick     DelayRange `yaml:"apply_click"`
	Submit         DelayRange `yaml:"submit"`
	ListReturn     DelayRange `yaml:"list_return"`
	ListTab        DelayRange `yaml:"list_tab"`
	PageTurn       DelayRange `yaml:"page_turn"`
	RenavigatePage DelayRange `yaml:"renavigate_page"`
	BetweenCards   DelayRange `yaml:"between_cards"`
}

type StorageConfig struct {
	Driver string       `yaml:"driver"`
	Dir    string       `yaml:"dir"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Mongo  MongoConfig  `yaml:"mongo"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// Credentials come from the environment (or a .env file), never from YAML.
type Credentials struct {
	Username     string
	Password     string
	AnnualIncome int
}

// Duration reads Go duration strings ("1.5s") as well as plain seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func seconds(s float64) Duration {
	return Duration(time.Duration(s * float64(time.Second)))
}

func fixed(s float64) DelayRange {
	return DelayRange{Min: seconds(s), Max: seconds(s)}
}

func between(min, max float64) DelayRange {
	return DelayRange{Min: seconds(min), Max: seconds(max)}
}

// Default mirrors the pacing the portal tolerates without rate limiting.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "housingconnect-bot",
			Env:      "development",
			Port:     8080,
			Timezone: "America/New_York",
		},
		Scraping: ScrapingConfig{
			HousingConnect: HousingConnectConfig{
				BaseURL: "https://housingconnect.nyc.gov/PublicWeb",
				Endpoints: map[string]string{
					"login":  "/login",
					"search": "/search-lotteries",
					"detail": "/lottery-details/",
				},
				RateLimit: RateLimitConfig{
					RequestsPerMinute: 20,
					Burst:             3,
				},
				RetryPolicy: RetryPolicyConfig{
					CardsTimeout:     seconds(15),
					DetailTimeout:    seconds(45),
					ListTimeout:      seconds(45),
					ListRetryTimeout: seconds(60),
					LoginFormTimeout: seconds(10),
					DialogTimeout:    seconds(5),
					PollInterval:     seconds(0.5),
					PageChangePolls:  10,
				},
				Browser: BrowserConfig{
					SlowMotion:     seconds(0.1),
					ViewportWidth:  1280,
					ViewportHeight: 800,
					DefaultTimeout: seconds(60),
				},
				Delays: DelayConfig{
					PageLoad:       fixed(3),
					TabSwitch:      fixed(2),
					PageParse:      fixed(1),
					Keystroke:      fixed(0.5),
					LoginRedirect:  fixed(5),
					DetailLoad:     between(3, 5),
					DetailRetry:    between(5, 8),
					DetailGrace:    fixed(10),
					DetailSettle:   between(2, 4),
					ApplyClick:     fixed(2),
					Submit:         fixed(3),
					ListReturn:     between(3, 5),
					ListTab:        between(2, 3),
					PageTurn:       between(2, 4),
					RenavigatePage: between(2, 3),
					BetweenCards:   between(2, 4),
				},
			},
		},
		Storage: StorageConfig{
			Driver: "file",
			Dir:    "data",
			SQLite: SQLiteConfig{Path: "data/housingconnect.db"},
			Mongo:  MongoConfig{Database: "housingconnect"},
		},
		Credentials: Credentials{AnnualIncome: DefaultAnnualIncome},
	}
}

// LoadConfig reads app.yaml and scraping.yaml from dir on top of the
// defaults, then applies the environment. Missing files are not an error.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()

	if err := readYAML(filepath.Join(dir, "app.yaml"), cfg); err != nil {
		return nil, err
	}
	if err := readYAML(filepath.Join(dir, "scraping.yaml"), &cfg.Scraping); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("USERNAME"); v != "" {
		c.Credentials.Username = v
	}
	if v := os.Getenv("PASSWORD"); v != "" {
		c.Credentials.Password = v
	}

	income := os.Getenv("SALARY")
	if income == "" {
		income = os.Getenv("ANNUAL_INCOME")
	}
	if income != "" {
		n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(income), ",", ""))
		if err != nil {
			return fmt.Errorf("invalid annual income %q: %w", income, err)
		}
		c.Credentials.AnnualIncome = n
	}

	if v := os.Getenv("HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS %q: %w", v, err)
		}
		c.Scraping.HousingConnect.Browser.Headless = headless
	}
	if v := os.Getenv("HOUSINGBOT_STORAGE"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Storage.Mongo.URI = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Credentials.AnnualIncome < 0 {
		return fmt.Errorf("annual income must not be negative")
	}
	if c.Scraping.HousingConnect.BaseURL == "" {
		return fmt.Errorf("scraping.housingconnect.base_url is required")
	}
	switch c.Storage.Driver {
	case "file", "sqlite":
	case "mongo":
		if c.Storage.Mongo.URI == "" {
			return fmt.Errorf("storage.mongo.uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// Endpoint joins a named endpoint onto the base URL.
func (h HousingConnectConfig) Endpoint(name string) string {
	return strings.TrimRight(h.BaseURL, "/") + h.Endpoints[name]
}
