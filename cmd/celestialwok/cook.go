package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/celestialwok/internal/audio"
	"github.com/hammamikhairi/celestialwok/internal/audio/device"
	"github.com/hammamikhairi/celestialwok/internal/camera"
	"github.com/hammamikhairi/celestialwok/internal/config"
	"github.com/hammamikhairi/celestialwok/internal/conversation"
	"github.com/hammamikhairi/celestialwok/internal/display"
	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/gemini"
	"github.com/hammamikhairi/celestialwok/internal/gpt"
	"github.com/hammamikhairi/celestialwok/internal/grading"
	"github.com/hammamikhairi/celestialwok/internal/logger"
	"github.com/hammamikhairi/celestialwok/internal/media"
	"github.com/hammamikhairi/celestialwok/internal/narration"
	"github.com/hammamikhairi/celestialwok/internal/session"
	"github.com/hammamikhairi/celestialwok/internal/speech"
	"github.com/hammamikhairi/celestialwok/internal/storage"
	"github.com/hammamikhairi/celestialwok/internal/visuals"
)

// kitchen holds the process-scoped collaborators shared by every
// session: one audio output, one narration gate, one cache per media kind.
type kitchen struct {
	log      *logger.Logger
	ui       *display.UI
	parser   *conversation.KeywordParser
	catalog  domain.Catalog
	details  domain.DetailFetcher
	output   *audio.Output
	narrator *narration.Service // nil when speech is off
	visuals  *visuals.Service   // nil when images are off
	grading  *grading.Workflow  // nil without a grader
	store    *storage.MemoryStore
	lines    narration.Lines

	listed []domain.RecipeSummary
}

func runCook(cmd *cobra.Command, opts *options, args []string) error {
	cfg, secrets, err := opts.load(cmd)
	if err != nil {
		return err
	}

	log, cleanup := openLogger(cfg)
	defer cleanup()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serveMetrics(ctx, cfg, log)

	k := newKitchen(ctx, cfg, secrets, log)
	defer k.close(context.Background())

	fmt.Print(display.RenderBanner())

	uiErr := make(chan error, 1)
	go func() { uiErr <- k.ui.Run() }()
	k.ui.WaitReady()

	err = k.loop(ctx, strings.TrimSpace(strings.Join(args, " ")))
	k.ui.Quit()
	if e := <-uiErr; e != nil && err == nil {
		err = e
	}
	return err
}

func newKitchen(ctx context.Context, cfg *config.Config, secrets *config.Secrets, log *logger.Logger) *kitchen {
	client := newGemini(ctx, cfg, secrets, log)
	catalog, details := recipes(cfg, client, log)

	k := &kitchen{
		log:     log,
		ui:      display.NewUI(),
		parser:  conversation.NewKeywordParser(log.With("input")),
		catalog: catalog,
		details: details,
		output:  audio.NewOutput(deviceFactory(cfg.Audio.Backend, log.With("audio")), log.With("audio")),
		store:   storage.NewMemoryStore(log.With("store")),
		lines:   narration.Lines{Lang: narration.ParseLanguage(cfg.Language)},
	}

	if tts := speechGenerator(cfg, secrets, client, log); tts != nil {
		cache := media.New[media.NarrationText, string]("narration", log.With("cache"))
		k.narrator = narration.New(tts, k.output, log.With("narration"),
			narration.WithGate(narration.NewGate()),
			narration.WithCache(cache),
			narration.WithFetchTimeout(cfg.Gemini.Timeout()),
		)
		log.Info("narration enabled (provider=%s, language=%s)", cfg.Speech.Provider, cfg.Language)
	}

	if client != nil && !cfg.Visuals.Disabled {
		cache := media.New[media.VisualPrompt, string]("visual", log.With("cache"))
		k.visuals = visuals.New(client, log.With("visuals"),
			visuals.WithCache(cache),
			visuals.WithExportDir(cfg.Visuals.ExportDir),
		)
		k.ui.ImagePath = func(prompt string) string {
			path, _ := k.visuals.Path(prompt)
			return path
		}
	}

	if grader := dishGrader(cfg, secrets, client, log); grader != nil {
		cam, err := camera.Parse(cfg.Camera.Source, log.With("camera"))
		if err != nil {
			log.Warn("grading disabled: %v", err)
		} else {
			k.grading = grading.New(cam, grader, log.With("grading"))
		}
	}
	return k
}

// dishGrader returns the configured grader, or nil when none is available.
func dishGrader(cfg *config.Config, secrets *config.Secrets, client *gemini.Client, log *logger.Logger) domain.DishGrader {
	if cfg.Grading.Provider == "gpt" {
		var opts []gpt.ClientOption
		if cfg.Grading.Model != "" {
			opts = append(opts, gpt.WithModel(cfg.Grading.Model))
		}
		opts = append(opts, gpt.WithTemperature(0.2), gpt.WithHTTPTimeout(cfg.Gemini.Timeout()))
		chat := gpt.NewClient(secrets.GPTEndpoint, secrets.GPTKey, log.With("gpt"), opts...)
		return gpt.NewGrader(chat, languageName(cfg.Language), log.With("gpt"))
	}
	if client == nil {
		return nil
	}
	return client
}

// deviceFactory picks the playback backend. The device is opened lazily
// by the Output on first play.
func deviceFactory(backend string, log *logger.Logger) audio.DeviceFactory {
	if backend == "malgo" {
		return func() (audio.Device, error) {
			d, err := device.NewMalgo(log)
			if err != nil {
				return nil, err
			}
			return d, nil
		}
	}
	return func() (audio.Device, error) {
		d, err := device.NewOto(log)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// speechGenerator returns the configured TTS backend, or nil when
// narration is off or unavailable.
func speechGenerator(cfg *config.Config, secrets *config.Secrets, client *gemini.Client, log *logger.Logger) domain.SpeechGenerator {
	if cfg.Speech.Disabled {
		return nil
	}
	if cfg.Speech.Provider == "azure" {
		voice := cfg.Speech.Voice
		if voice == "" {
			voice = speech.VoiceFor(cfg.Language)
		}
		return speech.NewAzureClient(secrets.AzureKey, secrets.AzureRegion, log.With("azure"),
			speech.WithVoice(voice),
			speech.WithHTTPTimeout(cfg.Gemini.Timeout()),
		)
	}
	if client == nil {
		return nil
	}
	return client
}

// close releases the audio device and reports sessions left open.
func (k *kitchen) close(ctx context.Context) {
	if err := k.output.Close(); err != nil {
		k.log.Warn("closing audio output: %v", err)
	}
	if k.narrator != nil {
		k.narrator.Wait()
	}
	if open, err := k.store.ListOpen(ctx); err == nil {
		for _, s := range open {
			k.log.Info("session %s (%s) left open in %s", s.ID, s.RecipeName, s.State)
		}
	}
}

// ── Catalog ──────────────────────────────────────────────────────

// loop alternates between picking a recipe and cooking it until the
// user quits.
func (k *kitchen) loop(ctx context.Context, name string) error {
	k.ui.PrintChat("Welcome to Celestial Wok.")
	for {
		if name == "" {
			name = k.choose(ctx)
			if name == "" {
				return nil
			}
		}
		if quit := k.cook(ctx, name); quit {
			return nil
		}
		name = ""
	}
}

// choose shows the catalog and waits for a selection. It returns "" when
// the user quits.
func (k *kitchen) choose(ctx context.Context) string {
	k.showCatalog(ctx, "")
	k.ui.PrintHint("Pick a dish by number or name, search <text> to filter, exit to quit.")

	for {
		select {
		case <-ctx.Done():
			return ""
		case <-k.ui.QuitChan():
			return ""
		case line := <-k.ui.InputChan():
			line = strings.TrimSpace(line)
			switch k.parser.Parse(line) {
			case conversation.CommandExit:
				return ""
			case conversation.CommandHelp:
				k.ui.PrintHint("Pick a dish by number or name, search <text> to filter, list to show everything.")
				continue
			}

			if n, err := strconv.Atoi(line); err == nil {
				if n >= 1 && n <= len(k.listed) {
					return k.listed[n-1].Name
				}
				k.ui.PrintHint("No dish with that number.")
				continue
			}
			lower := strings.ToLower(line)
			if q, ok := strings.CutPrefix(lower, "search "); ok {
				k.showCatalog(ctx, q)
				continue
			}
			if lower == "list" {
				k.showCatalog(ctx, "")
				continue
			}
			for _, r := range k.listed {
				if strings.EqualFold(r.Name, line) {
					return r.Name
				}
			}
			// Any other dish name goes straight to the detail fetcher.
			return line
		}
	}
}

func (k *kitchen) showCatalog(ctx context.Context, query string) {
	var (
		list []domain.RecipeSummary
		err  error
	)
	if query == "" {
		k.ui.PrintHint("Loading the menu...")
		list, err = k.catalog.List(ctx)
	} else {
		list, err = k.catalog.Search(ctx, query)
	}
	if err != nil {
		k.ui.PrintUrgent("Could not load the menu: " + err.Error())
		return
	}
	k.listed = list
	for _, line := range display.CatalogLines(list) {
		k.ui.Println(line)
	}
}

// ── Session ──────────────────────────────────────────────────────

// cook runs one session to its end. It reports whether the user quit the
// application.
func (k *kitchen) cook(ctx context.Context, name string) (quit bool) {
	opts := []session.Option{
		session.WithStore(k.store),
		session.WithLines(k.lines),
	}
	if k.visuals != nil {
		opts = append(opts, session.WithVisuals(k.visuals))
	}
	if k.grading != nil {
		opts = append(opts, session.WithGrader(k.grading))
	}
	var narrator domain.Narrator
	if k.narrator != nil {
		narrator = k.narrator
	}

	ctrl := session.New(name, k.details, narrator, k.log.With("session"), opts...)
	updates := ctrl.Subscribe()

	// Choosing a dish is the user gesture that allows audio.
	k.output.Unlock()
	ctrl.Start(ctx)
	defer ctrl.Close()

	var photo []byte
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				k.ui.Show(ctrl.Snapshot())
				_ = k.store.Delete(ctx, ctrl.ID())
				return false
			}
			k.ui.Show(snap)
		case line := <-k.ui.InputChan():
			k.command(ctx, ctrl, line, &photo)
		case <-k.ui.QuitChan():
			return true
		case <-ctx.Done():
			return true
		}
	}
}

func (k *kitchen) command(ctx context.Context, ctrl *session.Controller, line string, photo *[]byte) {
	state := ctrl.Snapshot().State

	var err error
	switch k.parser.Parse(line) {
	case conversation.CommandNext:
		err = ctrl.Advance()
	case conversation.CommandBack:
		err = ctrl.Retreat()
	case conversation.CommandReplay:
		err = ctrl.Replay()
	case conversation.CommandExit:
		err = ctrl.Exit()

	case conversation.CommandPhoto:
		if !k.canGrade(state) {
			return
		}
		k.ui.PrintHint("Say cheese...")
		p, cerr := k.grading.Capture(ctx)
		if cerr != nil {
			k.ui.PrintUrgent("Camera: " + cerr.Error())
			return
		}
		*photo = p
		k.ui.PrintHint(fmt.Sprintf("Photo captured (%s). Type grade to submit it or retake to try again.",
			humanize.Bytes(uint64(len(p)))))

	case conversation.CommandGrade:
		if !k.canGrade(state) {
			return
		}
		err = ctrl.SubmitPhoto(*photo)
		*photo = nil

	case conversation.CommandHelp:
		for _, h := range conversation.Help() {
			k.ui.PrintHint(h)
		}

	default:
		k.ui.PrintHint("Type help to see what I understand.")
	}

	if err != nil && !errors.Is(err, domain.ErrClosed) {
		k.log.Warn("session %s: %v", ctrl.ID(), err)
	}
}

func (k *kitchen) canGrade(state domain.SessionState) bool {
	if k.grading == nil {
		k.ui.PrintHint("Grading needs a grader (GEMINI_API_KEY or GPT_CHAT_KEY) and a camera.")
		return false
	}
	if state != domain.StateFinished {
		k.ui.PrintHint("Finish all the steps before taking a photo.")
		return false
	}
	return true
}
