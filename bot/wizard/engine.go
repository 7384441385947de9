package wizard

import (
	"context"
	"strings"
	"sync"

	"github.com/m3rciful/avatarbot/bot/avatar"
	"github.com/m3rciful/avatarbot/core/logger"

	"log/slog"
)

// Fetcher requests a generated avatar and returns its bytes.
type Fetcher interface {
	Fetch(ctx context.Context, req avatar.Request) ([]byte, error)
}

// Outcome summarizes one finished wizard run for optional recording.
type Outcome struct {
	ChatID     int64
	Style      string
	Seed       string
	Format     string
	Background string
	Color      string
	Status     string
}

// Recorder persists wizard outcomes. Recording failures must not affect the
// chat flow; implementations log and swallow their own errors.
type Recorder interface {
	Record(ctx context.Context, out Outcome)
}

// User-facing texts.
const (
	welcomeText = "Hi! I generate avatars from a seed of your choice. Send /help to pick a style."
	catalogText = "Choose an avatar style:"
	formatText  = "Choose an image format:"
	bgText      = "Choose a background:"
	seedText    = "Enter a seed (any text; the same seed always gives the same avatar):"

	incompleteText = "Something went wrong with your selections. Please start over with /help."
	failureText    = "Failed to generate the avatar. Please try again later."
)

func colorText() string {
	return "Type a background color. I know: " + strings.Join(avatar.ColorNames(), ", ") + "."
}

func invalidColorText() string {
	return "I don't know that color. Try one of: " + strings.Join(avatar.ColorNames(), ", ") + "."
}

// Engine is the per-chat wizard state machine. Given an inbound selection or
// text it advances the chat's session and drives prompts, the terminal avatar
// fetch and the attachment delivery, in a fixed order.
type Engine struct {
	catalog  *avatar.Catalog
	fetcher  Fetcher
	delivery Delivery
	sessions *Store
	recorder Recorder

	lifeMu sync.Mutex
	life   context.Context
}

// EngineConfig wires an Engine. Recorder may be nil.
type EngineConfig struct {
	Catalog  *avatar.Catalog
	Fetcher  Fetcher
	Delivery Delivery
	Sessions *Store
	Recorder Recorder
}

// NewEngine builds a wizard engine.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		catalog:  cfg.Catalog,
		fetcher:  cfg.Fetcher,
		delivery: cfg.Delivery,
		sessions: cfg.Sessions,
		recorder: cfg.Recorder,
	}
}

// BindLifetime ties in-flight fetches to the process lifetime: when ctx is
// canceled (shutdown), running fetches are aborted instead of left dangling.
func (e *Engine) BindLifetime(ctx context.Context) {
	e.lifeMu.Lock()
	e.life = ctx
	e.lifeMu.Unlock()
}

// fetchContext derives the context used for one avatar fetch, canceled either
// with the inbound update's context or with the bound process lifetime.
func (e *Engine) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	fetchCtx, cancel := context.WithCancel(ctx)
	e.lifeMu.Lock()
	life := e.life
	e.lifeMu.Unlock()
	if life == nil {
		return fetchCtx, cancel
	}
	stop := context.AfterFunc(life, cancel)
	return fetchCtx, func() {
		stop()
		cancel()
	}
}

// InProgress reports whether the chat has an active wizard.
func (e *Engine) InProgress(chatID int64) bool {
	sess, ok := e.sessions.Peek(chatID)
	return ok && sess.Stage != StageNone
}

// Welcome sends the greeting for the start command.
func (e *Engine) Welcome(chatID int64) error {
	return e.delivery.SendText(chatID, welcomeText)
}

// SendCatalogMenu sends the style menu rendered from the catalog, in catalog
// insertion order.
func (e *Engine) SendCatalogMenu(chatID int64) error {
	entries := e.catalog.Entries()
	choices := make([]Choice, 0, len(entries))
	for _, entry := range entries {
		choices = append(choices, Choice{Label: entry.Label, Token: entry.Command})
	}
	return e.delivery.SendMenu(chatID, catalogText, choices)
}

func formatChoices() []Choice {
	return []Choice{
		{Label: "🖼 PNG", Token: "format|png"},
		{Label: "📄 SVG", Token: "format|svg"},
	}
}

func backgroundChoices() []Choice {
	return []Choice{
		{Label: "🔳 Transparent", Token: "bg|" + BackgroundTransparent},
		{Label: "🟥 Solid color", Token: "bg|" + BackgroundSolid},
	}
}

// HandleSelection advances the wizard for one parsed menu selection.
// menuMessageID identifies the message carrying the tapped menu; it is
// cleaned up before the next prompt goes out.
func (e *Engine) HandleSelection(ctx context.Context, chatID int64, menuMessageID int, sel Selection) error {
	switch s := sel.(type) {
	case StyleSelection:
		entry, ok := e.catalog.Lookup(s.Command)
		if !ok {
			logger.Debug(ctx, "wizard", "selection.skip",
				slog.String("status", "skip"),
				slog.Int64("chat_id", chatID),
				slog.String("cb_key", s.Command),
			)
			return nil
		}
		return e.startWizard(ctx, chatID, menuMessageID, entry)
	case FormatSelection:
		return e.applyFormat(ctx, chatID, menuMessageID, s.Format)
	case BackgroundSelection:
		return e.applyBackground(ctx, chatID, menuMessageID, s.Choice)
	}
	return nil
}

// startWizard begins a fresh run for the chat, discarding any prior state.
func (e *Engine) startWizard(ctx context.Context, chatID int64, menuMessageID int, entry avatar.Entry) error {
	h := e.sessions.Acquire(chatID)
	defer h.Release()

	sess := h.Start()
	sess.Style = entry.Style
	sess.Stage = StageAwaitingFormat

	logger.Debug(ctx, "wizard", "stage.advance",
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
		slog.String("style", entry.Style),
		slog.String("stage", sess.Stage.String()),
	)

	e.cleanupMenu(ctx, chatID, menuMessageID)
	return e.delivery.SendMenu(chatID, formatText, formatChoices())
}

func (e *Engine) applyFormat(ctx context.Context, chatID int64, menuMessageID int, format string) error {
	h := e.sessions.Acquire(chatID)
	defer h.Release()

	sess := h.Session()
	if sess == nil {
		// Stale menu tapped after the wizard ended; nothing to advance.
		return nil
	}
	sess.Format = format
	sess.Stage = StageAwaitingBackgroundChoice

	logger.Debug(ctx, "wizard", "stage.advance",
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
		slog.String("format", format),
		slog.String("stage", sess.Stage.String()),
	)

	e.cleanupMenu(ctx, chatID, menuMessageID)
	return e.delivery.SendMenu(chatID, bgText, backgroundChoices())
}

func (e *Engine) applyBackground(ctx context.Context, chatID int64, menuMessageID int, choice string) error {
	h := e.sessions.Acquire(chatID)
	defer h.Release()

	sess := h.Session()
	if sess == nil {
		return nil
	}
	sess.Background = choice

	e.cleanupMenu(ctx, chatID, menuMessageID)

	if choice == BackgroundSolid {
		sess.Stage = StageAwaitingColor
		logger.Debug(ctx, "wizard", "stage.advance",
			slog.String("status", "ok"),
			slog.Int64("chat_id", chatID),
			slog.String("bg", choice),
			slog.String("stage", sess.Stage.String()),
		)
		return e.delivery.SendText(chatID, colorText())
	}

	sess.Stage = StageAwaitingSeed
	logger.Debug(ctx, "wizard", "stage.advance",
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
		slog.String("bg", choice),
		slog.String("stage", sess.Stage.String()),
	)
	return e.delivery.SendText(chatID, seedText)
}

// HandleText consumes free text according to the chat's current stage. Text
// outside the color and seed stages is ignored.
func (e *Engine) HandleText(ctx context.Context, chatID int64, text string) error {
	h := e.sessions.Acquire(chatID)
	defer h.Release()

	sess := h.Session()
	if sess == nil {
		return nil
	}

	switch sess.Stage {
	case StageAwaitingColor:
		name := strings.TrimSpace(text)
		if !avatar.KnownColor(name) {
			logger.Debug(ctx, "wizard", "color.reject",
				slog.String("status", "skip"),
				slog.Int64("chat_id", chatID),
				slog.String("color", logger.Sanitize(name)),
			)
			return e.delivery.SendText(chatID, invalidColorText())
		}
		sess.Color = strings.ToLower(name)
		sess.Stage = StageAwaitingSeed
		return e.delivery.SendText(chatID, seedText)
	case StageAwaitingSeed:
		sess.Seed = strings.TrimSpace(text)
		return e.finish(ctx, h, chatID)
	}
	return nil
}

// finish runs the terminal fetch for a completed wizard. The session is
// destroyed exactly once, whatever the outcome.
func (e *Engine) finish(ctx context.Context, h *Handle, chatID int64) error {
	sess := h.Session()
	defer h.Discard()

	if sess.Background == BackgroundSolid && sess.Color != "" {
		if hex, ok := avatar.ResolveColor(sess.Color); ok {
			// Unresolvable names were rejected at the color stage.
			sess.Color = hex
		}
	}

	if sess.Style == "" || sess.Format == "" || sess.Seed == "" {
		// Should be unreachable via the transition table; enforced anyway.
		logger.WIZ.Warn("incomplete session at terminal stage",
			slog.String("event", "fetch.incomplete"),
			slog.String("status", "error"),
			slog.Int64("chat_id", chatID),
			slog.String("style", sess.Style),
			slog.String("format", sess.Format),
		)
		return e.delivery.SendText(chatID, incompleteText)
	}

	req := avatar.Request{
		Style:  sess.Style,
		Seed:   sess.Seed,
		Format: sess.Format,
	}
	if sess.Background == BackgroundSolid {
		req.BackgroundColor = sess.Color
	}

	fetchCtx, cancel := e.fetchContext(ctx)
	defer cancel()

	data, err := e.fetcher.Fetch(fetchCtx, req)
	if err != nil {
		logger.WIZ.Error("avatar fetch failed",
			slog.String("event", "fetch.failed"),
			slog.String("status", "error"),
			slog.Int64("chat_id", chatID),
			slog.String("style", sess.Style),
			slog.String("seed", logger.Sanitize(sess.Seed)),
			slog.String("err", err.Error()),
		)
		e.record(ctx, chatID, sess, "error")
		return e.delivery.SendText(chatID, failureText)
	}

	filename := sess.Seed + "." + sess.Format
	if strings.EqualFold(sess.Format, "png") {
		err = e.delivery.SendPhoto(chatID, data, filename)
	} else {
		err = e.delivery.SendFile(chatID, data, filename)
	}
	if err != nil {
		e.record(ctx, chatID, sess, "error")
		return err
	}

	logger.WIZ.Info("avatar delivered",
		slog.String("event", "fetch.done"),
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
		slog.String("style", sess.Style),
		slog.String("format", sess.Format),
		slog.Int("bytes", len(data)),
	)
	e.record(ctx, chatID, sess, "ok")

	return e.SendCatalogMenu(chatID)
}

func (e *Engine) record(ctx context.Context, chatID int64, sess *Session, status string) {
	if e.recorder == nil {
		return
	}
	e.recorder.Record(ctx, Outcome{
		ChatID:     chatID,
		Style:      sess.Style,
		Seed:       sess.Seed,
		Format:     sess.Format,
		Background: sess.Background,
		Color:      sess.Color,
		Status:     status,
	})
}

// cleanupMenu strips and deletes the prior prompt before the next one is
// sent. Failures are logged and do not abort the transition: the message may
// already be gone.
func (e *Engine) cleanupMenu(ctx context.Context, chatID int64, menuMessageID int) {
	if menuMessageID == 0 {
		return
	}
	if err := e.delivery.EditAndRemoveMenu(chatID, menuMessageID); err != nil {
		logger.Warn(ctx, "wizard", "menu.cleanup",
			slog.String("status", "error"),
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
}
