package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
	"github.com/hammamikhairi/celestialwok/internal/metrics"
	"github.com/hammamikhairi/celestialwok/internal/narration"
	"github.com/hammamikhairi/celestialwok/internal/visuals"
)

var errNoGrader = errors.New("no grader configured")

// Grader scores the finished dish. *grading.Workflow satisfies it.
type Grader interface {
	Grade(ctx context.Context, recipeName string) (*domain.GradingResult, error)
	GradeImage(ctx context.Context, photo []byte, recipeName string) (*domain.GradingResult, error)
}

// Visuals resolves the images shown per state. *visuals.Service
// satisfies it.
type Visuals interface {
	Hero(ctx context.Context, name string) visuals.Image
	Ingredient(ctx context.Context, ing domain.Ingredient) visuals.Image
	Step(ctx context.Context, step domain.CookingStep) visuals.Image
}

// Prefetcher is implemented by narrators that can warm their cache.
type Prefetcher interface {
	Prefetch(ctx context.Context, texts ...string)
}

// Option configures the Controller.
type Option func(*Controller)

func WithGrader(g Grader) Option {
	return func(c *Controller) { c.grader = g }
}

func WithVisuals(v Visuals) Option {
	return func(c *Controller) { c.visuals = v }
}

// WithStore saves a snapshot on every transition.
func WithStore(s domain.SessionStore) Option {
	return func(c *Controller) { c.store = s }
}

// WithLines selects the narration phrasing.
func WithLines(l narration.Lines) Option {
	return func(c *Controller) { c.lines = l }
}

// WithQueueSize sets the event channel capacity.
func WithQueueSize(n int) Option {
	return func(c *Controller) { c.events = make(chan event, n) }
}

// event is a queued input. Payload fields are set only for the events
// that carry them.
type event struct {
	kind   Event
	detail *domain.RecipeDetail
	result *domain.GradingResult
	photo  []byte
	err    error

	// visual updates carry a resolved image and cause no transition.
	visual *visuals.Image
}

// Controller owns one cooking session. A single goroutine drains the
// event queue; it is the only writer of session state. All exported
// methods are safe for concurrent use.
type Controller struct {
	details  domain.DetailFetcher
	narrator domain.Narrator
	grader   Grader
	visuals  Visuals
	store    domain.SessionStore
	lines    narration.Lines
	log      *logger.Logger

	events  chan event
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
	started bool

	// Loop-owned state.
	state  domain.SessionState
	index  int
	detail *domain.RecipeDetail
	result *domain.GradingResult
	err    error
	images map[string]string
	photo  []byte

	mu   sync.RWMutex
	snap domain.Snapshot

	subsMu sync.Mutex
	subs   []chan domain.Snapshot

	workers sync.WaitGroup
}

// New creates a controller for the named recipe. Call Start to begin
// loading details.
func New(recipeName string, details domain.DetailFetcher, narrator domain.Narrator, log *logger.Logger, opts ...Option) *Controller {
	now := time.Now()
	c := &Controller{
		details:  details,
		narrator: narrator,
		lines:    narration.Lines{Lang: narration.English},
		log:      log,
		events:   make(chan event, 16),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
		state:    domain.StateLoadingDetails,
		images:   make(map[string]string),
	}
	for _, fn := range opts {
		fn(c)
	}
	c.snap = domain.Snapshot{
		ID:         uuid.NewString(),
		RecipeName: recipeName,
		State:      domain.StateLoadingDetails,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.snap.ID }

// Start runs the event loop in a goroutine and kicks off the detail
// fetch. It must be called once.
func (c *Controller) Start(ctx context.Context) {
	if c.started {
		return
	}
	c.started = true

	c.log.Info("session %s: cooking %q", c.ID(), c.snap.RecipeName)
	c.publish(ctx)
	go c.run(ctx)
}

// ── Commands ─────────────────────────────────────────────────────

func (c *Controller) Advance() error { return c.post(event{kind: EventAdvance}) }
func (c *Controller) Retreat() error { return c.post(event{kind: EventRetreat}) }
func (c *Controller) Replay() error  { return c.post(event{kind: EventReplay}) }
func (c *Controller) Exit() error    { return c.post(event{kind: EventExit}) }

// SubmitPhoto starts grading. A nil photo is captured from the camera.
func (c *Controller) SubmitPhoto(photo []byte) error {
	return c.post(event{kind: EventSubmitPhoto, photo: photo})
}

// ── Observation ──────────────────────────────────────────────────

// Snapshot returns the latest published view of the session.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Subscribe returns a channel that receives a snapshot after every change.
// Slow readers only see the latest snapshot. The channel is closed when
// the session ends.
func (c *Controller) Subscribe() <-chan domain.Snapshot {
	ch := make(chan domain.Snapshot, 1)
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	select {
	case <-c.stopped:
		ch <- c.Snapshot()
		close(ch)
		return ch
	default:
	}
	c.subs = append(c.subs, ch)
	return ch
}

// Done is closed when the session reaches a terminal state or is closed.
func (c *Controller) Done() <-chan struct{} { return c.stopped }

// Close stops the event loop. Pending and late events are discarded.
func (c *Controller) Close() {
	c.once.Do(func() { close(c.quit) })
	if c.started {
		<-c.stopped
	}
}

// Wait blocks until background fetches started by the session return.
func (c *Controller) Wait() { c.workers.Wait() }

// ── Event loop ───────────────────────────────────────────────────

func (c *Controller) post(ev event) error {
	select {
	case <-c.stopped:
		return domain.ErrClosed
	case <-c.quit:
		return domain.ErrClosed
	default:
	}

	select {
	case c.events <- ev:
		return nil
	case <-c.stopped:
		return domain.ErrClosed
	case <-c.quit:
		return domain.ErrClosed
	}
}

func (c *Controller) run(ctx context.Context) {
	defer c.stop()

	c.enter(ctx)
	for {
		select {
		case <-ctx.Done():
			c.log.Debug("session %s: context done", c.ID())
			return
		case <-c.quit:
			c.log.Debug("session %s: closed", c.ID())
			return
		case ev := <-c.events:
			c.handle(ctx, ev)
			if c.state.Terminal() {
				return
			}
		}
	}
}

func (c *Controller) stop() {
	close(c.stopped)

	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
}

func (c *Controller) handle(ctx context.Context, ev event) {
	switch {
	case ev.visual != nil:
		c.images[ev.visual.Prompt] = ev.visual.Ref
		c.publish(ctx)
		return
	case ev.kind == EventReplay:
		c.replay(ctx)
		return
	}

	prevState, prevIndex := c.state, c.index
	steps := 0
	if c.detail != nil {
		steps = len(c.detail.Steps)
	}

	next, idx, err := Transition(c.state, c.index, steps, ev.kind)
	if err != nil {
		c.log.Debug("session %s: ignoring %s: %v", c.ID(), ev.kind, err)
		return
	}

	switch ev.kind {
	case EventDetailsLoaded:
		c.detail = ev.detail
	case EventDetailsFailed:
		c.err = ev.err
	case EventSubmitPhoto:
		c.photo = ev.photo
	case EventGraded:
		c.result = ev.result
		c.photo = nil
	case EventGradeFailed:
		c.log.Warn("session %s: grading failed: %v", c.ID(), ev.err)
		c.result = nil
		c.photo = nil
	}

	if next == prevState && idx == prevIndex {
		return
	}

	c.state, c.index = next, idx
	if c.state == domain.StateFinished {
		c.result = nil
	}

	c.log.Debug("session %s: %s(%d) --(%s)--> %s(%d)", c.ID(), prevState, prevIndex, ev.kind, next, idx)
	metrics.RecordTransition(next.String())
	c.assertIndex()
	c.enter(ctx)
	c.publish(ctx)
}

// publish copies loop state into the snapshot, saves it and notifies
// subscribers.
func (c *Controller) publish(ctx context.Context) {
	c.assertIndex()

	c.mu.Lock()
	c.snap.State = c.state
	c.snap.StepIndex = c.index
	c.snap.Detail = c.detail
	c.snap.StepCount = 0
	if c.detail != nil {
		c.snap.StepCount = len(c.detail.Steps)
	}
	c.snap.Result = c.result
	c.snap.Err = c.err
	c.snap.UpdatedAt = time.Now()
	imgs := make(map[string]string, len(c.images))
	for k, v := range c.images {
		imgs[k] = v
	}
	c.snap.Visuals = imgs
	snap := c.snap
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(ctx, &snap); err != nil {
			c.log.Warn("session %s: saving snapshot: %v", c.ID(), err)
		}
	}

	c.subsMu.Lock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale snapshot with the latest one.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	c.subsMu.Unlock()
}

// assertIndex panics when the cooking step index is out of range.
func (c *Controller) assertIndex() {
	if c.state != domain.StateCooking {
		return
	}
	steps := 0
	if c.detail != nil {
		steps = len(c.detail.Steps)
	}
	if c.index < 0 || c.index >= steps {
		panic(fmt.Errorf("%w: step index %d with %d steps", domain.ErrInvariant, c.index, steps))
	}
}

// ── Entry actions ────────────────────────────────────────────────

func (c *Controller) enter(ctx context.Context) {
	switch c.state {
	case domain.StateLoadingDetails:
		c.async(ctx, c.fetchDetails)

	case domain.StateIntro:
		c.speak(ctx)
		name := c.detail.Name
		c.fetchVisual(ctx, visuals.HeroPrompt(name), func(ctx context.Context) visuals.Image {
			return c.visuals.Hero(ctx, name)
		})

	case domain.StateIngredients:
		c.speak(ctx)
		for _, ing := range c.detail.Ingredients {
			c.fetchVisual(ctx, visuals.IngredientPrompt(ing), func(ctx context.Context) visuals.Image {
				return c.visuals.Ingredient(ctx, ing)
			})
		}

	case domain.StateCooking:
		c.speak(ctx)
		step := c.detail.Steps[c.index]
		c.fetchVisual(ctx, step.VisualPrompt, func(ctx context.Context) visuals.Image {
			return c.visuals.Step(ctx, step)
		})
		if p, ok := c.narrator.(Prefetcher); ok && c.index+1 < len(c.detail.Steps) {
			p.Prefetch(ctx, c.lines.Step(c.index+1, c.detail.Steps[c.index+1].Instruction))
		}

	case domain.StateFinished, domain.StateGradingResult:
		c.speak(ctx)

	case domain.StateGrading:
		photo, name := c.photo, c.detail.Name
		c.async(ctx, func(ctx context.Context) event { return c.grade(ctx, name, photo) })

	case domain.StateFailed:
		c.log.Error("session %s: could not load %q: %v", c.ID(), c.snap.RecipeName, c.err)

	case domain.StateClosed:
		c.log.Info("session %s: closed", c.ID())
	}
}

// cue returns the narration for the current state, if it has one.
func (c *Controller) cue() string {
	switch c.state {
	case domain.StateIntro:
		return c.lines.Intro(c.detail.Name, c.detail.Intro)
	case domain.StateIngredients:
		return c.lines.IngredientsReady()
	case domain.StateCooking:
		return c.lines.Step(c.index, c.detail.Steps[c.index].Instruction)
	case domain.StateFinished:
		return c.lines.Finished()
	case domain.StateGradingResult:
		if c.result != nil {
			return c.lines.GradeResult(c.result.Score, c.result.Feedback)
		}
	}
	return ""
}

func (c *Controller) speak(ctx context.Context) {
	text := c.cue()
	if text == "" || c.narrator == nil {
		return
	}
	if !c.narrator.Speak(ctx, text) {
		c.log.Debug("session %s: narration skipped (busy)", c.ID())
	}
}

func (c *Controller) replay(ctx context.Context) {
	if c.cue() == "" {
		c.log.Debug("session %s: nothing to replay in %s", c.ID(), c.state)
		return
	}
	c.speak(ctx)
}

// async runs fn in a goroutine and posts its result back. Results that
// arrive after the loop has stopped are dropped.
func (c *Controller) async(ctx context.Context, fn func(context.Context) event) {
	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		ev := fn(ctx)
		if err := c.post(ev); err != nil {
			c.log.Debug("session %s: dropped late %s", c.ID(), ev.kind)
		}
	}()
}

func (c *Controller) fetchDetails(ctx context.Context) event {
	name := c.snap.RecipeName
	detail, err := c.details.FetchRecipeDetail(ctx, name)
	switch {
	case err != nil:
		return event{kind: EventDetailsFailed, err: fmt.Errorf("loading details: %w", err)}
	case detail == nil || len(detail.Steps) == 0:
		return event{kind: EventDetailsFailed, err: fmt.Errorf("loading details: %w", domain.ErrNoContent)}
	}
	if detail.Name == "" {
		detail.Name = name
	}
	return event{kind: EventDetailsLoaded, detail: detail}
}

func (c *Controller) grade(ctx context.Context, name string, photo []byte) event {
	if c.grader == nil {
		return event{kind: EventGradeFailed, err: errNoGrader}
	}

	var (
		res *domain.GradingResult
		err error
	)
	if photo != nil {
		res, err = c.grader.GradeImage(ctx, photo, name)
	} else {
		res, err = c.grader.Grade(ctx, name)
	}
	if err != nil {
		return event{kind: EventGradeFailed, err: err}
	}
	return event{kind: EventGraded, result: res}
}

// fetchVisual resolves the image for prompt in the background unless it
// is already known.
func (c *Controller) fetchVisual(ctx context.Context, prompt string, fetch func(context.Context) visuals.Image) {
	if c.visuals == nil || prompt == "" {
		return
	}
	if _, done := c.images[prompt]; done {
		return
	}
	c.async(ctx, func(ctx context.Context) event {
		img := fetch(ctx)
		return event{visual: &img}
	})
}
