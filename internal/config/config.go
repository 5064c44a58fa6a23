// config.go - CLI configuration loading

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/vecrender
License: GPLv3 or later
*/

// Package config loads the vecrender CLI configuration. Values are layered:
// built-in defaults, then an optional YAML file, then a .env file and
// VECRENDER_* environment variables. Command-line flags are applied last by
// the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "VECRENDER_"

// Config is the CLI configuration.
type Config struct {
	Run     RunConfig     `yaml:"run"`
	Record  RecordConfig  `yaml:"record"`
	Display DisplayConfig `yaml:"display"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// RunConfig configures the simulated vector environment.
type RunConfig struct {
	Envs       int    `yaml:"envs"`
	Episodes   int    `yaml:"episodes"`
	MaxSteps   int    `yaml:"max_steps"`
	Seed       int64  `yaml:"seed"`
	RenderMode string `yaml:"render_mode"` // rgb_array or rgb_array_list
	FrameSize  string `yaml:"frame_size"`  // WxH of one sub-environment frame
}

// RecordConfig configures video recording. An empty Dir disables it.
type RecordConfig struct {
	Dir            string `yaml:"dir"`
	Aspect         string `yaml:"aspect"` // W:H
	EpisodeTrigger string `yaml:"episode_trigger"`
	StepTrigger    string `yaml:"step_trigger"`
	VideoLength    int    `yaml:"video_length"`
	NamePrefix     string `yaml:"name_prefix"`
	FPS            int    `yaml:"fps"`
	Compress       bool   `yaml:"compress"`
	Progress       bool   `yaml:"progress"`
}

// DisplayConfig configures the live window.
type DisplayConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Headless  bool   `yaml:"headless"`
	Screen    string `yaml:"screen"` // WxH, empty for the native frame size
	Scale     int    `yaml:"scale"`
	StatusBar bool   `yaml:"status_bar"`
}

// ServerConfig configures the metrics endpoint. An empty MetricsAddr
// disables it.
type ServerConfig struct {
	MetricsAddr string `yaml:"metrics_addr"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Envs:       4,
			Episodes:   10,
			MaxSteps:   500,
			RenderMode: "rgb_array",
			FrameSize:  "600x400",
		},
		Record: RecordConfig{
			Aspect:     "1:1",
			NamePrefix: "rl-video",
		},
		Display: DisplayConfig{
			Scale: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty), the .env file in the working directory (if present)
// and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv reads .env files into the process environment without
// overriding variables that are already set. A missing file is not an
// error. With no paths, ".env" is used.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays VECRENDER_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		*dst = GetEnv(EnvPrefix+key, *dst)
	}
	num := func(key string, dst *int) {
		if s := os.Getenv(EnvPrefix + key); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if s := os.Getenv(EnvPrefix + key); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	num("ENVS", &c.Run.Envs)
	num("EPISODES", &c.Run.Episodes)
	num("MAX_STEPS", &c.Run.MaxSteps)
	if s := os.Getenv(EnvPrefix + "SEED"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			c.Run.Seed = n
		}
	}
	str("RENDER_MODE", &c.Run.RenderMode)
	str("FRAME_SIZE", &c.Run.FrameSize)

	str("RECORD_DIR", &c.Record.Dir)
	str("ASPECT", &c.Record.Aspect)
	str("EPISODE_TRIGGER", &c.Record.EpisodeTrigger)
	str("STEP_TRIGGER", &c.Record.StepTrigger)
	num("VIDEO_LENGTH", &c.Record.VideoLength)
	str("NAME_PREFIX", &c.Record.NamePrefix)
	num("FPS", &c.Record.FPS)
	flag("COMPRESS", &c.Record.Compress)
	flag("PROGRESS", &c.Record.Progress)

	flag("DISPLAY", &c.Display.Enabled)
	flag("HEADLESS", &c.Display.Headless)
	str("SCREEN", &c.Display.Screen)
	num("SCALE", &c.Display.Scale)
	flag("STATUS_BAR", &c.Display.StatusBar)

	str("METRICS_ADDR", &c.Server.MetricsAddr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

// Validate checks the values that cannot be checked by the libraries they
// are handed to.
func (c *Config) Validate() error {
	var errs []error
	if c.Run.Envs < 1 {
		errs = append(errs, fmt.Errorf("envs must be at least 1, got %d", c.Run.Envs))
	}
	if c.Run.Episodes < 0 {
		errs = append(errs, fmt.Errorf("episodes must not be negative, got %d", c.Run.Episodes))
	}
	if _, _, err := ParseSize(c.Run.FrameSize); err != nil {
		errs = append(errs, fmt.Errorf("frame_size: %w", err))
	}
	if _, err := ParseAspect(c.Record.Aspect); err != nil {
		errs = append(errs, fmt.Errorf("aspect: %w", err))
	}
	if c.Display.Screen != "" {
		if _, _, err := ParseSize(c.Display.Screen); err != nil {
			errs = append(errs, fmt.Errorf("screen: %w", err))
		}
	}
	if c.Display.Enabled && c.Record.Dir != "" && strings.HasSuffix(c.Run.RenderMode, "_list") {
		// The recorder drains each list render, leaving the display nothing to show.
		errs = append(errs, fmt.Errorf("render_mode %s cannot be displayed and recorded at once", c.Run.RenderMode))
	}
	if !c.Display.Enabled && c.Record.Dir == "" {
		errs = append(errs, errors.New("nothing to do: enable the display or set a record dir"))
	}
	return errors.Join(errs...)
}

// ParseSize parses "WxH".
func ParseSize(s string) (w, h int, err error) {
	return parsePair(s, "x")
}

// ParseAspect parses "W:H".
func ParseAspect(s string) ([2]int, error) {
	w, h, err := parsePair(s, ":")
	return [2]int{w, h}, err
}

func parsePair(s, sep string) (int, int, error) {
	a, b, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), sep)
	if !ok {
		return 0, 0, fmt.Errorf("%q is not of the form A%sB", s, sep)
	}
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("%q: %w", s, err)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("%q: %w", s, err)
	}
	if x <= 0 || y <= 0 {
		return 0, 0, fmt.Errorf("%q: both values must be positive", s)
	}
	return x, y, nil
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}
