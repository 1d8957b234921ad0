package dispatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"storyteller/internal/config"
	"storyteller/internal/engine"
	"storyteller/internal/interfaces"
	"storyteller/internal/logging"
	"storyteller/internal/observe"
	"storyteller/internal/prompts"
	"storyteller/internal/token"
)

// Outcome labels that are not engine states.
const (
	OutcomePrompt      = "prompt"
	OutcomeReplay      = "replay"
	OutcomeSkipped     = "skipped"
	OutcomePaused      = "paused"
	OutcomeCancelled   = "cancelled"
	OutcomeUnsupported = "unsupported"
	OutcomeHelp        = "help"
	OutcomeObserved    = "observed"
	OutcomeFailure     = "failure"
)

// Dispatcher handles one event at a time per session. It keeps no playback
// state; positions live in the session store and in playback tokens.
type Dispatcher struct {
	engine   *engine.StoryEngine
	catalog  interfaces.StoryCatalog
	prompts  *prompts.TemplateEngine
	mode     string
	logger   *zap.Logger
	metrics  *observe.Metrics
	observer interfaces.PlaybackObserver
	handled  *atomic.Int64
	now      func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(l *zap.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

func WithMetrics(m *observe.Metrics) Option { return func(d *Dispatcher) { d.metrics = m } }

// WithObserver publishes a summary of every event to o.
func WithObserver(o interfaces.PlaybackObserver) Option {
	return func(d *Dispatcher) { d.observer = o }
}

func WithPrompts(p *prompts.TemplateEngine) Option { return func(d *Dispatcher) { d.prompts = p } }

// WithNarrationMode selects config.NarrationAudioPlayer or config.NarrationSSML.
func WithNarrationMode(mode string) Option { return func(d *Dispatcher) { d.mode = mode } }

// WithEngineOptions forwards options to the story engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(d *Dispatcher) {
		d.engine = engine.NewStoryEngine(d.catalog, nil, opts...)
	}
}

// New creates a dispatcher over catalog and store.
func New(catalog interfaces.StoryCatalog, store interfaces.SessionStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		catalog: catalog,
		engine:  engine.NewStoryEngine(catalog, nil),
		prompts: prompts.NewTemplateEngine(),
		mode:    config.NarrationAudioPlayer,
		logger:  zap.NewNop(),
		metrics: observe.Noop(),
		handled: atomic.NewInt64(0),
		now:     time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	d.engine = d.engine.WithStore(store)
	return d
}

// WithStore returns a dispatcher sharing everything but the session store,
// for platforms that carry session state inside each request.
func (d *Dispatcher) WithStore(store interfaces.SessionStore) *Dispatcher {
	cp := *d
	cp.engine = d.engine.WithStore(store)
	return &cp
}

// Handled reports the number of events dispatched.
func (d *Dispatcher) Handled() int64 { return d.handled.Load() }

// Dispatch handles evt. It never fails: errors are logged and turned into a
// spoken apology or a silent response so the conversation survives.
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) Response {
	d.handled.Inc()
	d.metrics.RecordEvent(ctx, evt.Name())

	log := logging.WithContext(ctx, d.logger).With(
		zap.String(logging.FieldEvent, evt.Name()),
		zap.String(logging.FieldSessionID, evt.SessionID),
	)

	var resp Response
	switch evt.Type {
	case EventLaunch:
		resp = d.prompt(log)
	case EventIntent:
		resp = d.intent(ctx, log, evt)
	case EventAudioPlayer:
		resp = d.audio(ctx, log, evt)
	case EventSessionEnded:
		log.Debug("session ended")
		resp = Response{Outcome: OutcomeObserved}
	case EventSystemException:
		log.Warn("platform reported an exception", zap.String("error", evt.Error))
		resp = Response{Outcome: OutcomeObserved}
	default:
		log.Warn("unhandled event type", zap.String("type", string(evt.Type)))
		resp = Response{Outcome: OutcomeSkipped}
	}

	d.metrics.RecordOutcome(ctx, resp.Outcome)
	if d.observer != nil {
		d.observer.Publish(interfaces.PlaybackEvent{
			Type:      evt.Name(),
			SessionID: evt.SessionID,
			Token:     playbackToken(evt, resp),
			OffsetMs:  evt.OffsetMs,
			Outcome:   resp.Outcome,
			Timestamp: d.now().Unix(),
		})
	}
	return resp
}

func playbackToken(evt Event, resp Response) string {
	if resp.Audio != nil && resp.Audio.Type == AudioPlay {
		return resp.Audio.Stream.Token
	}
	return evt.Token
}

func (d *Dispatcher) intent(ctx context.Context, log *zap.Logger, evt Event) Response {
	switch evt.Intent {
	case IntentResume:
		return d.prompt(log)
	case IntentBeginStory:
		return d.beginStory(ctx, log, evt)
	case IntentContinueStory, IntentFallback, IntentNext:
		return d.advance(ctx, log, evt.SessionID, "")
	case IntentPause:
		return Response{
			Speech:     d.say(log, prompts.Pause, prompts.TemplateContext{}),
			EndSession: endSession(true),
			Audio:      &AudioDirective{Type: AudioStop},
			Outcome:    OutcomePaused,
		}
	case IntentCancel, IntentStop:
		return Response{
			Speech:     d.say(log, prompts.Farewell, prompts.TemplateContext{}),
			EndSession: endSession(true),
			Audio:      &AudioDirective{Type: AudioClearQueue},
			Outcome:    OutcomeCancelled,
		}
	case IntentLoopOn, IntentLoopOff, IntentPrevious, IntentRepeat,
		IntentShuffleOn, IntentShuffleOff, IntentStartOver:
		return Response{
			Speech:     d.say(log, prompts.Unsupported, prompts.TemplateContext{}),
			EndSession: endSession(false),
			Outcome:    OutcomeUnsupported,
		}
	case IntentHelp:
		return Response{
			Speech:     d.say(log, prompts.Help, prompts.TemplateContext{Titles: d.titles()}),
			EndSession: endSession(false),
			Outcome:    OutcomeHelp,
		}
	default:
		// Anything the interaction model routes here keeps the story going,
		// like the fallback intent.
		log.Debug("unknown intent treated as fallback", zap.String("intent", evt.Intent))
		return d.advance(ctx, log, evt.SessionID, "")
	}
}

func (d *Dispatcher) prompt(log *zap.Logger) Response {
	return Response{
		Speech:     d.say(log, prompts.Launch, prompts.TemplateContext{}),
		EndSession: endSession(false),
		Outcome:    OutcomePrompt,
	}
}

func (d *Dispatcher) beginStory(ctx context.Context, log *zap.Logger, evt Event) Response {
	if evt.Story.Empty() {
		return d.prompt(log)
	}

	sel := engine.Requested(evt.Story.RawValue)
	if evt.Story.ResolvedID != "" {
		sel = engine.ParseSelection(evt.Story.ResolvedID)
	}

	story, err := d.engine.SelectStory(ctx, evt.SessionID, sel)
	if err != nil {
		return d.failure(ctx, log, "select story", err)
	}
	log.Info("beginning story", zap.String(logging.FieldStory, story), zap.Stringer("selection", sel))

	value := evt.Story.RawValue
	if value == "" {
		value = d.catalog.Title(story)
	}
	intro := d.text(log, prompts.Begin, prompts.TemplateContext{
		Story: story,
		Title: d.catalog.Title(story),
		Value: value,
	})
	return d.advance(ctx, log, evt.SessionID, intro)
}

// advance plays the next segment, prefixing intro to whatever is spoken.
func (d *Dispatcher) advance(ctx context.Context, log *zap.Logger, sessionID, intro string) Response {
	out, err := d.engine.Advance(ctx, sessionID)
	if err != nil {
		return d.failure(ctx, log, "advance", err)
	}

	var speech prompts.SSML
	speech.Say(intro)

	switch out.Kind {
	case engine.NoStoryChosen:
		speech.Say(d.text(log, prompts.Launch, prompts.TemplateContext{}))
		return Response{Speech: speech.String(), EndSession: endSession(false), Outcome: out.Kind.String()}

	case engine.UnknownStory:
		log.Info("unknown story", zap.String(logging.FieldStory, out.Story))
		speech.Say(d.text(log, prompts.UnknownStory, prompts.TemplateContext{Story: out.Story, Title: out.Story}))
		return Response{Speech: speech.String(), EndSession: endSession(false), Outcome: out.Kind.String()}

	case engine.Completed:
		speech.Say(d.text(log, prompts.End, prompts.TemplateContext{Story: out.Story, Title: d.catalog.Title(out.Story)}))
		return Response{Speech: speech.String(), EndSession: endSession(true), Outcome: out.Kind.String()}
	}

	log.Info("playing segment",
		zap.String(logging.FieldStory, out.Story),
		zap.Int("index", out.Index),
		zap.String(logging.FieldToken, out.Token),
	)

	if d.mode == config.NarrationSSML {
		speech.Audio(out.URL)
		return Response{Speech: speech.String(), EndSession: endSession(false), Outcome: out.Kind.String()}
	}

	resp := Response{
		EndSession: endSession(false),
		Audio: &AudioDirective{
			Type:     AudioPlay,
			Behavior: ReplaceAll,
			Stream:   Stream{URL: out.URL, Token: out.Token},
		},
		Outcome: out.Kind.String(),
	}
	if !speech.Empty() {
		resp.Speech = speech.String()
	}
	return resp
}

func (d *Dispatcher) audio(ctx context.Context, log *zap.Logger, evt Event) Response {
	log = log.With(zap.String(logging.FieldToken, evt.Token), zap.Int64("offset_ms", evt.OffsetMs))

	switch evt.AudioEvent {
	case AudioPlaybackNearlyFinished:
		return d.replay(ctx, log, evt.Token)
	case AudioPlaybackFailed:
		log.Warn("playback failed", zap.String("error", evt.Error))
	default:
		log.Debug("playback event")
	}
	return Response{Outcome: OutcomeObserved}
}

// replay enqueues the segment that is about to finish behind itself. The
// token is trusted over the session, which may already point further ahead.
func (d *Dispatcher) replay(ctx context.Context, log *zap.Logger, tok string) Response {
	if d.mode == config.NarrationSSML {
		return Response{Outcome: OutcomeSkipped}
	}

	out, err := d.engine.Replay(tok)
	if err != nil {
		if errors.Is(err, token.ErrMalformed) {
			d.metrics.MalformedTokens.Add(ctx, 1)
		}
		log.Warn("skipping replay", zap.Error(err))
		return Response{Outcome: OutcomeSkipped}
	}
	if out.Kind != engine.InProgress {
		log.Warn("skipping replay", zap.Stringer("state", out.Kind), zap.String(logging.FieldStory, out.Story))
		return Response{Outcome: OutcomeSkipped}
	}

	return Response{
		Audio: &AudioDirective{
			Type:     AudioPlay,
			Behavior: Enqueue,
			Stream: Stream{
				URL:                   out.URL,
				Token:                 out.Token,
				ExpectedPreviousToken: out.ExpectedPreviousToken,
			},
		},
		Outcome: OutcomeReplay,
	}
}

func (d *Dispatcher) failure(ctx context.Context, log *zap.Logger, op string, err error) Response {
	d.metrics.StoreErrors.Add(ctx, 1)
	log.Error(op+" failed", zap.Error(err))
	return Response{
		Speech:     d.say(log, prompts.Failure, prompts.TemplateContext{}),
		EndSession: endSession(false),
		Outcome:    OutcomeFailure,
	}
}

func (d *Dispatcher) titles() []string {
	ids := d.catalog.IDs()
	titles := make([]string, 0, len(ids))
	for _, id := range ids {
		titles = append(titles, d.catalog.Title(id))
	}
	return titles
}

// text renders a message template; on error the message is dropped.
func (d *Dispatcher) text(log *zap.Logger, name string, ctx prompts.TemplateContext) string {
	s, err := d.prompts.Render(name, ctx)
	if err != nil {
		log.Error("render speech", zap.String("template", name), zap.Error(err))
		return ""
	}
	return s
}

// say renders a message as a complete SSML document.
func (d *Dispatcher) say(log *zap.Logger, name string, ctx prompts.TemplateContext) string {
	var s prompts.SSML
	s.Say(d.text(log, name, ctx))
	return s.String()
}
