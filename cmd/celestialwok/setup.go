package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/celestialwok/internal/config"
	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/gemini"
	"github.com/hammamikhairi/celestialwok/internal/logger"
	"github.com/hammamikhairi/celestialwok/internal/metrics"
	"github.com/hammamikhairi/celestialwok/internal/recipe"
)

// options are the persistent command-line flags. Flags that were set
// explicitly override the config file and the environment.
type options struct {
	configPath string
	envFile    string
	logLevel   string
	logFile    string
	language   string
	provider   string
	backend    string
	camera     string
	metrics    string
	noSpeech   bool
	noImages   bool
}

func (o *options) bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.configPath, "config", config.DefaultPath, "path to the TOML config file")
	f.StringVar(&o.envFile, "env-file", ".env", "path to an environment file")
	f.StringVar(&o.logLevel, "log-level", "", "log level: off, normal or verbose")
	f.StringVar(&o.logFile, "log-file", "", `file to write logs to (use "stderr" to log to console)`)
	f.StringVar(&o.language, "language", "", "narration language: en or zh-TW")
	f.StringVar(&o.provider, "tts", "", "speech provider: gemini or azure")
	f.StringVar(&o.backend, "audio", "", "audio backend: oto or malgo")
	f.StringVar(&o.camera, "camera", "", "camera source: file:<path> or ffmpeg:<device>")
	f.StringVar(&o.metrics, "metrics-addr", "", "serve prometheus metrics on this address")
	f.BoolVar(&o.noSpeech, "no-speech", false, "disable narration")
	f.BoolVar(&o.noImages, "no-images", false, "disable image generation")
}

// load resolves the effective configuration: defaults, file, env, flags.
func (o *options) load(cmd *cobra.Command) (*config.Config, *config.Secrets, error) {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	required := cmd.Flags().Changed("config")
	cfg, secrets, err := config.Load(o.configPath, required)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("log-level", &cfg.LogLevel, o.logLevel)
	set("log-file", &cfg.LogFile, o.logFile)
	set("language", &cfg.Language, o.language)
	set("tts", &cfg.Speech.Provider, o.provider)
	set("audio", &cfg.Audio.Backend, o.backend)
	set("camera", &cfg.Camera.Source, o.camera)
	set("metrics-addr", &cfg.MetricsAddr, o.metrics)
	if flags.Changed("no-speech") {
		cfg.Speech.Disabled = o.noSpeech
	}
	if flags.Changed("no-images") {
		cfg.Visuals.Disabled = o.noImages
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.CheckSecrets(secrets); err != nil {
		return nil, nil, err
	}
	return cfg, secrets, nil
}

// openLogger directs logs to a file by default so the TUI stays clean.
// The returned cleanup func is never nil.
func openLogger(cfg *config.Config) (*logger.Logger, func()) {
	var out io.Writer = os.Stderr
	cleanup := func() {}

	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		if dir := filepath.Dir(cfg.LogFile); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			out = f
			cleanup = func() { _ = f.Close() }
		}
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel), out)

	// Third-party packages that use the standard logger (audio backends)
	// write through the same output.
	std := log.StandardLog()
	stdlog.SetOutput(std.Writer())
	stdlog.SetFlags(0)

	return log, cleanup
}

// languageName names the language generated text is written in.
func languageName(lang string) string {
	if lang == "en" {
		return "English"
	}
	return "Traditional Chinese"
}

// newGemini builds the Gemini client, or nil when no key is configured.
func newGemini(ctx context.Context, cfg *config.Config, secrets *config.Secrets, log *logger.Logger) *gemini.Client {
	key := secrets.Gemini()
	if key == "" {
		log.Info("gemini disabled: set GEMINI_API_KEY to enable generated recipes, narration, images and grading")
		return nil
	}
	opts := []gemini.ClientOption{
		gemini.WithModels(gemini.Models{
			Text:   cfg.Gemini.TextModel,
			Speech: cfg.Gemini.SpeechModel,
			Image:  cfg.Gemini.ImageModel,
		}),
		gemini.WithLanguage(languageName(cfg.Language)),
		gemini.WithRequestsPerMinute(cfg.Gemini.RequestsPerMinute),
		gemini.WithHTTPTimeout(cfg.Gemini.Timeout()),
	}
	if cfg.Speech.Provider == "gemini" && cfg.Speech.Voice != "" {
		opts = append(opts, gemini.WithVoice(cfg.Speech.Voice))
	}
	client, err := gemini.NewClient(ctx, key, log.With("gemini"), opts...)
	if err != nil {
		log.Warn("gemini disabled: %v", err)
		return nil
	}
	return client
}

// recipes wires the house recipes in front of the generated catalog.
func recipes(cfg *config.Config, client *gemini.Client, log *logger.Logger) (domain.Catalog, domain.DetailFetcher) {
	house := recipe.NewMemorySource(log.With("recipes"))
	if client == nil {
		return house, house
	}
	catalog := recipe.NewMerged(log, house, gemini.NewCatalog(client, cfg.Gemini.CatalogSize))
	return catalog, recipe.Chain{house, client}
}

// serveMetrics exposes /metrics in the background when an address is set.
func serveMetrics(ctx context.Context, cfg *config.Config, log *logger.Logger) {
	if cfg.MetricsAddr == "" {
		return
	}
	go func() {
		log.Info("serving metrics on %s", cfg.MetricsAddr)
		if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
			log.Error("metrics server: %v", err)
		}
	}()
}
