// Package config loads mutecut settings from a TOML file, applies
// environment overrides and validates the result.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/forPelevin/mutecut/internal/domain/lexicon"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and scratch locations.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	CacheDir  string `toml:"cache_dir"`
}

// Input controls how a directory is scanned for videos.
type Input struct {
	Extensions []string `toml:"extensions"`
}

// Transcription selects the speech engine.
type Transcription struct {
	Engine   string `toml:"engine"`
	Language string `toml:"language"`
}

type WhisperCpp struct {
	Bin   string `toml:"bin"`
	Model string `toml:"model"`
}

// OpenAI configures the hosted transcription endpoint.
type OpenAI struct {
	APIKey            string   `toml:"api_key"`
	BaseURL           string   `toml:"base_url"`
	AllowedHosts      []string `toml:"allowed_hosts"`
	Model             string   `toml:"model"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
}

type FFmpeg struct {
	FFmpeg       string `toml:"ffmpeg"`
	FFprobe      string `toml:"ffprobe"`
	AudioEncoder string `toml:"audio_encoder"`
	AudioBitrate string `toml:"audio_bitrate"`
}

// Classifier selects the profanity engine and the terms added to its list.
type Classifier struct {
	Engine     string   `toml:"engine"`
	ExtraWords []string `toml:"extra_words"`
}

// Output toggles optional artifacts.
type Output struct {
	Subtitles      bool `toml:"subtitles"`
	SaveTranscript bool `toml:"save_transcript"`
	KeepWork       bool `toml:"keep_work"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for mutecut.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Input         Input         `toml:"input"`
	Transcription Transcription `toml:"transcription"`
	WhisperCpp    WhisperCpp    `toml:"whispercpp"`
	OpenAI        OpenAI        `toml:"openai"`
	FFmpeg        FFmpeg        `toml:"ffmpeg"`
	Classifier    Classifier    `toml:"classifier"`
	Output        Output        `toml:"output"`
	Logging       Logging       `toml:"logging"`
}

const (
	EngineWhisperCpp = "whispercpp"
	EngineOpenAI     = "openai"

	ClassifierLexicon = "lexicon"
	ClassifierGoAway  = "goaway"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: "out",
			CacheDir:  defaultCacheDir(),
		},
		Input:         Input{Extensions: []string{".mp4"}},
		Transcription: Transcription{Engine: EngineWhisperCpp, Language: "auto"},
		WhisperCpp:    WhisperCpp{Bin: "whisper-cli"},
		OpenAI: OpenAI{
			BaseURL:           "https://api.openai.com",
			AllowedHosts:      []string{"api.openai.com"},
			Model:             "whisper-1",
			RequestsPerMinute: 50,
		},
		FFmpeg: FFmpeg{
			FFmpeg:       "ffmpeg",
			FFprobe:      "ffprobe",
			AudioEncoder: "aac",
			AudioBitrate: "192k",
		},
		Classifier: Classifier{
			Engine:     ClassifierLexicon,
			ExtraWords: append([]string(nil), lexicon.DefaultExtraTerms...),
		},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mutecut/config.toml")
}

// Load locates, parses and validates a configuration file. A missing file
// yields defaults. Environment overrides are applied after the file.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("mutecut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) applyEnv() {
	if v, ok := lookupEnv("OPENAI_API_KEY"); ok {
		c.OpenAI.APIKey = v
	}
	if v, ok := lookupEnv("MUTECUT_OPENAI_BASE_URL"); ok {
		c.OpenAI.BaseURL = v
	}
	if v, ok := lookupEnv("MUTECUT_WHISPER_BIN"); ok {
		c.WhisperCpp.Bin = v
	}
	if v, ok := lookupEnv("MUTECUT_WHISPER_MODEL"); ok {
		c.WhisperCpp.Model = v
	}
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(strings.TrimSpace(c.Paths.CacheDir)); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.WhisperCpp.Model != "" {
		if c.WhisperCpp.Model, err = expandPath(c.WhisperCpp.Model); err != nil {
			return fmt.Errorf("whispercpp.model: %w", err)
		}
	}
	c.Transcription.Engine = strings.ToLower(strings.TrimSpace(c.Transcription.Engine))
	c.Classifier.Engine = strings.ToLower(strings.TrimSpace(c.Classifier.Engine))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if len(c.Input.Extensions) == 0 {
		return errors.New("input.extensions must list at least one extension")
	}
	switch c.Transcription.Engine {
	case EngineWhisperCpp, EngineOpenAI:
	default:
		return fmt.Errorf("transcription.engine: unsupported value %q", c.Transcription.Engine)
	}
	switch c.Classifier.Engine {
	case ClassifierLexicon, ClassifierGoAway:
	default:
		return fmt.Errorf("classifier.engine: unsupported value %q", c.Classifier.Engine)
	}
	if c.OpenAI.RequestsPerMinute < 0 {
		return errors.New("openai.requests_per_minute must be >= 0")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path. It refuses to
// overwrite an existing file.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file %s already exists", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "mutecut")
	}
	return "~/.cache/mutecut"
}
