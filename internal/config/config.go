// Package config holds the application settings. Values come from
// built-in defaults, an optional TOML file, the environment and finally
// command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "celestialwok.toml"

// Config is the non-secret application configuration.
type Config struct {
	LogLevel    string `toml:"log_level" env:"WOK_LOG_LEVEL"`
	LogFile     string `toml:"log_file" env:"WOK_LOG_FILE"`
	Language    string `toml:"language" env:"WOK_LANGUAGE"`
	MetricsAddr string `toml:"metrics_addr" env:"WOK_METRICS_ADDR"`

	Speech  SpeechConfig  `toml:"speech"`
	Audio   AudioConfig   `toml:"audio"`
	Camera  CameraConfig  `toml:"camera"`
	Grading GradingConfig `toml:"grading"`
	Gemini  GeminiConfig  `toml:"gemini"`
	Visuals VisualsConfig `toml:"visuals"`
}

// SpeechConfig selects the narration backend.
type SpeechConfig struct {
	Provider string `toml:"provider" env:"WOK_TTS_PROVIDER"` // "gemini" or "azure"
	Voice    string `toml:"voice" env:"WOK_TTS_VOICE"`
	Disabled bool   `toml:"disabled" env:"WOK_NO_SPEECH"`
}

// AudioConfig selects the playback backend.
type AudioConfig struct {
	Backend string `toml:"backend" env:"WOK_AUDIO_BACKEND"` // "oto" or "malgo"
}

// CameraConfig names the capture source, "file:<path>" or
// "ffmpeg:<device>".
type CameraConfig struct {
	Source string `toml:"source" env:"WOK_CAMERA"`
}

// GradingConfig selects the dish grader. The gpt grader talks to an
// OpenAI-compatible chat endpoint with image input.
type GradingConfig struct {
	Provider string `toml:"provider" env:"WOK_GRADER"` // "gemini" or "gpt"
	Model    string `toml:"model" env:"WOK_GRADER_MODEL"`
}

// GeminiConfig tunes the generative backend client.
type GeminiConfig struct {
	TextModel         string `toml:"text_model" env:"WOK_GEMINI_TEXT_MODEL"`
	SpeechModel       string `toml:"speech_model" env:"WOK_GEMINI_SPEECH_MODEL"`
	ImageModel        string `toml:"image_model" env:"WOK_GEMINI_IMAGE_MODEL"`
	RequestsPerMinute int    `toml:"requests_per_minute" env:"WOK_GEMINI_RPM"`
	TimeoutSeconds    int    `toml:"timeout_seconds" env:"WOK_GEMINI_TIMEOUT"`
	CatalogSize       int    `toml:"catalog_size" env:"WOK_CATALOG_SIZE"`
}

// Timeout returns the HTTP timeout as a duration.
func (g GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// VisualsConfig controls image generation.
type VisualsConfig struct {
	Disabled  bool   `toml:"disabled" env:"WOK_NO_IMAGES"`
	ExportDir string `toml:"export_dir" env:"WOK_IMAGE_DIR"`
}

// Secrets are credentials read only from the environment.
type Secrets struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	// APIKey is accepted as a fallback for GeminiAPIKey.
	APIKey      string `env:"API_KEY"`
	AzureKey    string `env:"AZURE_SPEECH_KEY"`
	AzureRegion string `env:"AZURE_SPEECH_REGION"`
	GPTKey      string `env:"GPT_CHAT_KEY"`
	GPTEndpoint string `env:"GPT_CHAT_ENDPOINT"`
}

// Gemini returns the Gemini key, falling back to API_KEY.
func (s *Secrets) Gemini() string {
	if s.GeminiAPIKey != "" {
		return s.GeminiAPIKey
	}
	return s.APIKey
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "normal",
		LogFile:  ".wok-logs/wok.log",
		Language: "zh-TW",
		Speech:   SpeechConfig{Provider: "gemini"},
		Audio:    AudioConfig{Backend: "oto"},
		Camera:   CameraConfig{Source: "ffmpeg:"},
		Grading:  GradingConfig{Provider: "gemini"},
		Gemini: GeminiConfig{
			RequestsPerMinute: 60,
			TimeoutSeconds:    60,
			CatalogSize:       30,
		},
		Visuals: VisualsConfig{ExportDir: ".wok-images"},
	}
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case "off", "quiet", "none", "normal", "info", "verbose", "debug":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: want off, normal or verbose", c.LogLevel))
	}
	switch c.Language {
	case "en", "zh-TW":
	default:
		errs = append(errs, fmt.Errorf("language %q: want en or zh-TW", c.Language))
	}
	switch c.Speech.Provider {
	case "gemini", "azure":
	default:
		errs = append(errs, fmt.Errorf("speech.provider %q: want gemini or azure", c.Speech.Provider))
	}
	switch c.Grading.Provider {
	case "gemini", "gpt":
	default:
		errs = append(errs, fmt.Errorf("grading.provider %q: want gemini or gpt", c.Grading.Provider))
	}
	switch c.Audio.Backend {
	case "oto", "malgo":
	default:
		errs = append(errs, fmt.Errorf("audio.backend %q: want oto or malgo", c.Audio.Backend))
	}
	if !strings.HasPrefix(c.Camera.Source, "file:") && !strings.HasPrefix(c.Camera.Source, "ffmpeg:") {
		errs = append(errs, fmt.Errorf("camera.source %q: want file:<path> or ffmpeg:<device>", c.Camera.Source))
	}
	if c.Gemini.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("gemini.requests_per_minute must not be negative"))
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("gemini.timeout_seconds must be positive"))
	}
	if c.Gemini.CatalogSize <= 0 {
		errs = append(errs, fmt.Errorf("gemini.catalog_size must be positive"))
	}

	return errors.Join(errs...)
}

// CheckSecrets reports credentials the selected providers need but lack.
func (c *Config) CheckSecrets(s *Secrets) error {
	if c.Speech.Provider == "azure" && !c.Speech.Disabled && (s.AzureKey == "" || s.AzureRegion == "") {
		return errors.New("speech.provider azure needs AZURE_SPEECH_KEY and AZURE_SPEECH_REGION")
	}
	if c.Grading.Provider == "gpt" && (s.GPTKey == "" || s.GPTEndpoint == "") {
		return errors.New("grading.provider gpt needs GPT_CHAT_KEY and GPT_CHAT_ENDPOINT")
	}
	return nil
}
