package wizard

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/m3rciful/avatarbot/bot/avatar"
	coreconfig "github.com/m3rciful/avatarbot/core/config"
	"github.com/m3rciful/avatarbot/core/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(&coreconfig.Config{
		Logging: coreconfig.LoggingConfig{Level: "error"},
	})
	os.Exit(m.Run())
}

type deliveryCall struct {
	kind     string
	chatID   int64
	text     string
	choices  []Choice
	filename string
	bytes    int
}

type fakeDelivery struct {
	calls []deliveryCall
	fail  map[string]error
}

func (d *fakeDelivery) SendText(chatID int64, text string) error {
	d.calls = append(d.calls, deliveryCall{kind: "text", chatID: chatID, text: text})
	return d.fail["text"]
}

func (d *fakeDelivery) SendMenu(chatID int64, text string, choices []Choice) error {
	d.calls = append(d.calls, deliveryCall{kind: "menu", chatID: chatID, text: text, choices: choices})
	return d.fail["menu"]
}

func (d *fakeDelivery) EditAndRemoveMenu(chatID int64, messageID int) error {
	d.calls = append(d.calls, deliveryCall{kind: "cleanup", chatID: chatID})
	return d.fail["cleanup"]
}

func (d *fakeDelivery) SendPhoto(chatID int64, data []byte, filename string) error {
	d.calls = append(d.calls, deliveryCall{kind: "photo", chatID: chatID, filename: filename, bytes: len(data)})
	return d.fail["photo"]
}

func (d *fakeDelivery) SendFile(chatID int64, data []byte, filename string) error {
	d.calls = append(d.calls, deliveryCall{kind: "file", chatID: chatID, filename: filename, bytes: len(data)})
	return d.fail["file"]
}

func (d *fakeDelivery) kinds() []string {
	out := make([]string, 0, len(d.calls))
	for _, c := range d.calls {
		out = append(out, c.kind)
	}
	return out
}

type fakeFetcher struct {
	requests []avatar.Request
	data     []byte
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, req avatar.Request) ([]byte, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeRecorder struct {
	outcomes []Outcome
}

func (r *fakeRecorder) Record(ctx context.Context, out Outcome) {
	r.outcomes = append(r.outcomes, out)
}

func testCatalog() *avatar.Catalog {
	return avatar.NewCatalog([]avatar.Entry{
		{Command: "/avataaars", Style: "avataaars", Label: "Avataaars"},
		{Command: "/bottts", Style: "bottts", Label: "Bottts"},
	})
}

func newTestEngine(fetcher *fakeFetcher) (*Engine, *fakeDelivery, *Store, *fakeRecorder) {
	delivery := &fakeDelivery{}
	store := NewStore(0)
	recorder := &fakeRecorder{}
	engine := NewEngine(EngineConfig{
		Catalog:  testCatalog(),
		Fetcher:  fetcher,
		Delivery: delivery,
		Sessions: store,
		Recorder: recorder,
	})
	return engine, delivery, store, recorder
}

func mustSelect(t *testing.T, e *Engine, chatID int64, token string) {
	t.Helper()
	sel, ok := ParseSelection(token)
	if !ok {
		t.Fatalf("ParseSelection(%q) rejected", token)
	}
	if err := e.HandleSelection(context.Background(), chatID, 42, sel); err != nil {
		t.Fatalf("HandleSelection(%q): %v", token, err)
	}
}

func TestTransparentRunDeliversPhoto(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte("png-bytes")}
	engine, delivery, store, recorder := newTestEngine(fetcher)
	const chatID = int64(100)

	mustSelect(t, engine, chatID, "/avataaars")
	mustSelect(t, engine, chatID, "format|png")
	mustSelect(t, engine, chatID, "bg|transparent")

	sess, ok := store.Peek(chatID)
	if !ok || sess.Stage != StageAwaitingSeed {
		t.Fatalf("stage = %v, ok = %v, want awaiting seed", sess.Stage, ok)
	}

	if err := engine.HandleText(context.Background(), chatID, "alice"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	if len(fetcher.requests) != 1 {
		t.Fatalf("fetch count = %d, want 1", len(fetcher.requests))
	}
	req := fetcher.requests[0]
	want := avatar.Request{Style: "avataaars", Seed: "alice", Format: "png"}
	if req != want {
		t.Fatalf("request = %+v, want %+v", req, want)
	}

	last := delivery.calls[len(delivery.calls)-2]
	if last.kind != "photo" || last.filename != "alice.png" {
		t.Fatalf("delivery = %+v, want photo alice.png", last)
	}
	if final := delivery.calls[len(delivery.calls)-1]; final.kind != "menu" {
		t.Fatalf("final call = %q, want follow-up menu", final.kind)
	}

	if _, ok := store.Peek(chatID); ok {
		t.Fatal("session survived a completed run")
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0].Status != "ok" {
		t.Fatalf("outcomes = %+v, want one ok", recorder.outcomes)
	}
}

func TestSolidColorRunDeliversFile(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte("<svg/>")}
	engine, delivery, store, _ := newTestEngine(fetcher)
	const chatID = int64(200)

	mustSelect(t, engine, chatID, "/bottts")
	mustSelect(t, engine, chatID, "format|svg")
	mustSelect(t, engine, chatID, "bg|solid")

	sess, _ := store.Peek(chatID)
	if sess.Stage != StageAwaitingColor {
		t.Fatalf("stage = %v, want awaiting color", sess.Stage)
	}

	if err := engine.HandleText(context.Background(), chatID, "red"); err != nil {
		t.Fatalf("HandleText(red): %v", err)
	}
	sess, _ = store.Peek(chatID)
	if sess.Stage != StageAwaitingSeed || sess.Color != "red" {
		t.Fatalf("after color: stage=%v color=%q", sess.Stage, sess.Color)
	}

	if err := engine.HandleText(context.Background(), chatID, "bob"); err != nil {
		t.Fatalf("HandleText(bob): %v", err)
	}

	req := fetcher.requests[0]
	if req.BackgroundColor != "FF0000" {
		t.Fatalf("backgroundColor = %q, want resolved hex FF0000", req.BackgroundColor)
	}
	if req.Style != "bottts" || req.Seed != "bob" || req.Format != "svg" {
		t.Fatalf("request = %+v", req)
	}

	var file *deliveryCall
	for i := range delivery.calls {
		if delivery.calls[i].kind == "file" {
			file = &delivery.calls[i]
		}
	}
	if file == nil || file.filename != "bob.svg" {
		t.Fatalf("no file delivery bob.svg, calls: %v", delivery.kinds())
	}
}

func TestInvalidColorReprompts(t *testing.T) {
	engine, delivery, store, _ := newTestEngine(&fakeFetcher{})
	const chatID = int64(300)

	mustSelect(t, engine, chatID, "/bottts")
	mustSelect(t, engine, chatID, "format|svg")
	mustSelect(t, engine, chatID, "bg|solid")

	before := len(delivery.calls)
	if err := engine.HandleText(context.Background(), chatID, "chartreuse"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	sess, ok := store.Peek(chatID)
	if !ok || sess.Stage != StageAwaitingColor {
		t.Fatalf("stage = %v, want still awaiting color", sess.Stage)
	}
	if sess.Color != "" {
		t.Fatalf("color = %q, want unset", sess.Color)
	}
	if got := delivery.calls[before]; got.kind != "text" {
		t.Fatalf("expected re-prompt text, got %+v", got)
	}
}

func TestNewCommandDiscardsInProgressWizard(t *testing.T) {
	engine, _, store, _ := newTestEngine(&fakeFetcher{})
	const chatID = int64(400)

	mustSelect(t, engine, chatID, "/avataaars")
	mustSelect(t, engine, chatID, "format|png")

	mustSelect(t, engine, chatID, "/bottts")

	sess, ok := store.Peek(chatID)
	if !ok {
		t.Fatal("expected fresh session")
	}
	if sess.Style != "bottts" || sess.Format != "" || sess.Stage != StageAwaitingFormat {
		t.Fatalf("restart kept prior state: %+v", sess)
	}
}

func TestFetchFailureSendsGenericTextAndClearsState(t *testing.T) {
	fetcher := &fakeFetcher{err: &avatar.StatusError{Code: 503}}
	engine, delivery, store, recorder := newTestEngine(fetcher)
	const chatID = int64(500)

	mustSelect(t, engine, chatID, "/bottts")
	mustSelect(t, engine, chatID, "format|png")
	mustSelect(t, engine, chatID, "bg|transparent")

	if err := engine.HandleText(context.Background(), chatID, "carol"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	for _, c := range delivery.calls {
		if c.kind == "photo" || c.kind == "file" {
			t.Fatalf("attachment sent despite fetch failure: %+v", c)
		}
	}
	last := delivery.calls[len(delivery.calls)-1]
	if last.kind != "text" || last.text != failureText {
		t.Fatalf("last call = %+v, want generic failure text", last)
	}
	if _, ok := store.Peek(chatID); ok {
		t.Fatal("session survived a failed run")
	}
	if len(recorder.outcomes) != 1 || recorder.outcomes[0].Status != "error" {
		t.Fatalf("outcomes = %+v, want one error", recorder.outcomes)
	}
}

func TestMenuCleanupPrecedesNextPrompt(t *testing.T) {
	engine, delivery, _, _ := newTestEngine(&fakeFetcher{})

	mustSelect(t, engine, 600, "/avataaars")

	kinds := delivery.kinds()
	if len(kinds) != 2 || kinds[0] != "cleanup" || kinds[1] != "menu" {
		t.Fatalf("call order = %v, want [cleanup menu]", kinds)
	}
}

func TestUnknownTokensAreIgnored(t *testing.T) {
	engine, delivery, store, _ := newTestEngine(&fakeFetcher{})

	sel, ok := ParseSelection("/unknown-style")
	if !ok {
		t.Fatal("bare tokens should parse as style selections")
	}
	if err := engine.HandleSelection(context.Background(), 700, 42, sel); err != nil {
		t.Fatalf("HandleSelection: %v", err)
	}
	if len(delivery.calls) != 0 {
		t.Fatalf("unexpected replies: %v", delivery.kinds())
	}
	if _, ok := store.Peek(700); ok {
		t.Fatal("unknown command created a session")
	}
}

func TestStaleSelectionsWithoutSessionAreIgnored(t *testing.T) {
	engine, delivery, _, _ := newTestEngine(&fakeFetcher{})

	mustSelect(t, engine, 800, "format|png")
	mustSelect(t, engine, 800, "bg|solid")

	if len(delivery.calls) != 0 {
		t.Fatalf("unexpected replies: %v", delivery.kinds())
	}
}

func TestFreeTextWithoutWizardIsIgnored(t *testing.T) {
	engine, delivery, _, _ := newTestEngine(&fakeFetcher{})

	if err := engine.HandleText(context.Background(), 900, "hello"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if len(delivery.calls) != 0 {
		t.Fatalf("unexpected replies: %v", delivery.kinds())
	}
}

func TestDeliveryFailureStillClearsState(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte("png")}
	engine, delivery, store, _ := newTestEngine(fetcher)
	delivery.fail = map[string]error{"photo": errors.New("send failed")}
	const chatID = int64(1000)

	mustSelect(t, engine, chatID, "/avataaars")
	mustSelect(t, engine, chatID, "format|png")
	mustSelect(t, engine, chatID, "bg|transparent")

	if err := engine.HandleText(context.Background(), chatID, "dave"); err == nil {
		t.Fatal("expected delivery error to propagate")
	}
	if _, ok := store.Peek(chatID); ok {
		t.Fatal("session survived a failed delivery")
	}
}

func TestLifetimeCancelAbortsFetch(t *testing.T) {
	engine, _, _, _ := newTestEngine(&fakeFetcher{})

	life, cancel := context.WithCancel(context.Background())
	engine.BindLifetime(life)
	cancel()

	fetchCtx, stop := engine.fetchContext(context.Background())
	defer stop()

	select {
	case <-fetchCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("fetch context not canceled with lifetime")
	}
}
