package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Timings holds the simulated delays of the product demo.
type Timings struct {
	Connect    time.Duration `validate:"gte=0"`
	Start      time.Duration `validate:"gte=0"`
	Recording  time.Duration `validate:"gte=0"`
	Processing time.Duration `validate:"gte=0"`
	Preview    time.Duration `validate:"gte=0"`
	Seed       time.Duration `validate:"gte=0"`
}

type Preferences struct {
	AutoStart     bool
	Language      string `validate:"required,bcp47_language_tag"`
	Notifications bool
}

type Config struct {
	// VaultPath enables markdown and sqlite history export when set.
	VaultPath        string
	DBPath           string
	LogLevel         string `validate:"oneof=trace debug info warn error off"`
	HTTPAddr         string `validate:"required"`
	SummarizerPlugin string
	SeedPlatforms    []string `validate:"dive,required"`
	KnownPlatforms   []string `validate:"min=1,dive,required"`
	Timings          Timings
	Preferences      Preferences
}

// Overrides are applied last, typically from command line flags.
type Overrides struct {
	VaultPath string
	LogLevel  string
}

func Default() Config {
	return Config{
		LogLevel:       "warn",
		HTTPAddr:       ":8080",
		SeedPlatforms:  []string{"Zoom", "Microsoft Teams"},
		KnownPlatforms: []string{"Zoom", "Microsoft Teams", "Google Meet"},
		Timings: Timings{
			Connect:    2 * time.Second,
			Start:      2500 * time.Millisecond,
			Recording:  5 * time.Second,
			Processing: 3 * time.Second,
			Preview:    1500 * time.Millisecond,
			Seed:       time.Second,
		},
		Preferences: Preferences{AutoStart: true, Language: "en", Notifications: true},
	}
}

// Load resolves configuration from defaults, an optional .env file, an
// optional config file (.yaml, .yml or .toml), MEETNOTE_* variables and
// finally the overrides.
func Load(path string, overrides Overrides) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		fc, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := fc.apply(&cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if overrides.VaultPath != "" {
		cfg.VaultPath = overrides.VaultPath
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if cfg.VaultPath != "" && cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.VaultPath, ".meetnote", "meetnote.db")
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

type fileTimings struct {
	Connect    string `yaml:"connect" toml:"connect"`
	Start      string `yaml:"start" toml:"start"`
	Recording  string `yaml:"recording" toml:"recording"`
	Processing string `yaml:"processing" toml:"processing"`
	Preview    string `yaml:"preview" toml:"preview"`
	Seed       string `yaml:"seed" toml:"seed"`
}

type filePreferences struct {
	AutoStart     *bool  `yaml:"auto_start" toml:"auto_start"`
	Language      string `yaml:"language" toml:"language"`
	Notifications *bool  `yaml:"notifications" toml:"notifications"`
}

type fileConfig struct {
	VaultPath        string          `yaml:"vault_path" toml:"vault_path"`
	DBPath           string          `yaml:"db_path" toml:"db_path"`
	LogLevel         string          `yaml:"log_level" toml:"log_level"`
	HTTPAddr         string          `yaml:"http_addr" toml:"http_addr"`
	SummarizerPlugin string          `yaml:"summarizer_plugin" toml:"summarizer_plugin"`
	SeedPlatforms    []string        `yaml:"seed_platforms" toml:"seed_platforms"`
	KnownPlatforms   []string        `yaml:"known_platforms" toml:"known_platforms"`
	Timings          fileTimings     `yaml:"timings" toml:"timings"`
	Preferences      filePreferences `yaml:"preferences" toml:"preferences"`
}

func readFile(path string) (fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}
	fc := fileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(raw), &fc); err != nil {
			return fileConfig{}, fmt.Errorf("decode toml config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return fileConfig{}, fmt.Errorf("decode yaml config: %w", err)
		}
	default:
		return fileConfig{}, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
	return fc, nil
}

func (fc fileConfig) apply(cfg *Config) error {
	setString(&cfg.VaultPath, expandTilde(fc.VaultPath))
	setString(&cfg.DBPath, expandTilde(fc.DBPath))
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.HTTPAddr, fc.HTTPAddr)
	setString(&cfg.SummarizerPlugin, expandTilde(fc.SummarizerPlugin))
	if fc.SeedPlatforms != nil {
		cfg.SeedPlatforms = fc.SeedPlatforms
	}
	if len(fc.KnownPlatforms) > 0 {
		cfg.KnownPlatforms = fc.KnownPlatforms
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"connect", fc.Timings.Connect, &cfg.Timings.Connect},
		{"start", fc.Timings.Start, &cfg.Timings.Start},
		{"recording", fc.Timings.Recording, &cfg.Timings.Recording},
		{"processing", fc.Timings.Processing, &cfg.Timings.Processing},
		{"preview", fc.Timings.Preview, &cfg.Timings.Preview},
		{"seed", fc.Timings.Seed, &cfg.Timings.Seed},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("timings.%s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	if fc.Preferences.AutoStart != nil {
		cfg.Preferences.AutoStart = *fc.Preferences.AutoStart
	}
	if fc.Preferences.Notifications != nil {
		cfg.Preferences.Notifications = *fc.Preferences.Notifications
	}
	setString(&cfg.Preferences.Language, fc.Preferences.Language)
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("MEETNOTE_VAULT"); v != "" {
		cfg.VaultPath = expandTilde(v)
	}
	if v := os.Getenv("MEETNOTE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MEETNOTE_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("MEETNOTE_SUMMARIZER_PLUGIN"); v != "" {
		cfg.SummarizerPlugin = expandTilde(v)
	}
	if v := os.Getenv("MEETNOTE_TIME_SCALE"); v != "" {
		var scale float64
		if _, err := fmt.Sscanf(v, "%g", &scale); err != nil || scale < 0 {
			return fmt.Errorf("MEETNOTE_TIME_SCALE must be a non-negative number, got %q", v)
		}
		cfg.Timings = cfg.Timings.Scale(scale)
	}
	return nil
}

// Scale multiplies every delay by factor; 0 makes the demo instantaneous.
func (t Timings) Scale(factor float64) Timings {
	scale := func(d time.Duration) time.Duration { return time.Duration(float64(d) * factor) }
	return Timings{
		Connect:    scale(t.Connect),
		Start:      scale(t.Start),
		Recording:  scale(t.Recording),
		Processing: scale(t.Processing),
		Preview:    scale(t.Preview),
		Seed:       scale(t.Seed),
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
