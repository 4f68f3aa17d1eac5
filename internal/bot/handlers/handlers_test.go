package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/atheraber/saverbot/internal/analyzer"
	"github.com/atheraber/saverbot/internal/config"
	"github.com/atheraber/saverbot/internal/database"
	"github.com/atheraber/saverbot/internal/downloader"
	"github.com/atheraber/saverbot/internal/gate"
)

// fakeTelegram records Telegram Bot API calls and answers them with canned
// responses. Methods not listed in responses get an empty success result.
type fakeTelegram struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]string
	srv       *httptest.Server
}

func newFakeTelegram(t *testing.T, responses map[string]string) *fakeTelegram {
	t.Helper()

	f := &fakeTelegram{responses: responses}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]

		f.mu.Lock()
		f.calls = append(f.calls, method)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if resp, ok := f.responses[method]; ok {
			fmt.Fprint(w, resp)
			return
		}
		switch method {
		case "sendMessage", "editMessageText", "sendVideo":
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":99,"chat":{"id":123}}}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeTelegram) bot(t *testing.T) *tgbot.Bot {
	t.Helper()
	b, err := tgbot.New("test-token", tgbot.WithSkipGetMe(), tgbot.WithServerURL(f.srv.URL))
	if err != nil {
		t.Fatalf("failed to create bot: %v", err)
	}
	return b
}

func (f *fakeTelegram) called(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

// fakeYTDLP installs a shell script that answers -J probes with probeJSON and
// writes an artifact of artifactSize bytes on download.
func fakeYTDLP(t *testing.T, probeJSON string, artifactSize int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp")
	script := `#!/bin/sh
for a in "$@"; do
  if [ "$a" = "-J" ]; then
    echo '` + probeJSON + `'
    exit 0
  fi
done
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
dir=$(dirname "$out")
head -c ` + fmt.Sprint(artifactSize) + ` /dev/zero > "$dir/abc.mp4"
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake yt-dlp: %v", err)
	}
	return path
}

func failingYTDLP(t *testing.T, stderr string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp")
	script := "#!/bin/sh\necho \"" + stderr + "\" >&2\nexit 1\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake yt-dlp: %v", err)
	}
	return path
}

func testDeps(t *testing.T, ytdlp, scratch string) HandlerDeps {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })
	store := database.NewStore(db, log)

	cfg := &config.Config{
		Download: config.DownloadConfig{
			Dir:         scratch,
			MaxFileSize: 10 * 1024 * 1024,
			MaxDuration: 600,
			Timeout:     time.Minute,
			Quality:     "best",
			YTDLPPath:   ytdlp,
		},
		Messages: config.DefaultMessages,
	}

	return HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      store,
		Downloader: downloader.New(cfg.Download, log),
		Gate:       gate.New("", log),
	}
}

func messageUpdate(text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			Text: text,
			Chat: models.Chat{ID: 123},
			From: &models.User{ID: 42, Username: "tester"},
		},
	}
}

func seedUser(t *testing.T, deps HandlerDeps, id int64) {
	t.Helper()
	if err := deps.Store.UpsertUser(context.Background(), &database.User{ID: id, Username: "tester"}); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func TestDownloadHandlerDeliversVideo(t *testing.T) {
	t.Parallel()

	scratch := t.TempDir()
	script := fakeYTDLP(t, `{"id":"abc","title":"Test Video","duration":42,"filesize":1024}`, 1024)
	deps := testDeps(t, script, scratch)
	seedUser(t, deps, 42)

	tg := newFakeTelegram(t, nil)
	handler := NewDownloadHandler(deps)

	handler(context.Background(), tg.bot(t), messageUpdate("https://youtu.be/abc"))

	if tg.called("sendVideo") != 1 {
		t.Errorf("expected one sendVideo call, got %d", tg.called("sendVideo"))
	}
	if tg.called("deleteMessage") != 1 {
		t.Errorf("expected placeholder to be deleted, got %d deleteMessage calls", tg.called("deleteMessage"))
	}

	// The scratch directory must be empty once the video is delivered.
	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatalf("failed to read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty scratch dir, found %d entries", len(entries))
	}

	stats, err := deps.Store.GetUserStats(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetUserStats failed: %v", err)
	}
	if stats.Completed != 1 {
		t.Errorf("expected 1 completed download recorded, got %d", stats.Completed)
	}
}

func TestDownloadHandlerReportsFailure(t *testing.T) {
	t.Parallel()

	scratch := t.TempDir()
	script := failingYTDLP(t, "ERROR: Video unavailable")
	deps := testDeps(t, script, scratch)
	seedUser(t, deps, 42)

	tg := newFakeTelegram(t, nil)
	handler := NewDownloadHandler(deps)

	handler(context.Background(), tg.bot(t), messageUpdate("https://youtu.be/abc"))

	if tg.called("sendVideo") != 0 {
		t.Error("expected no sendVideo call on failure")
	}
	if tg.called("editMessageText") == 0 {
		t.Error("expected the placeholder to be edited with the failure reason")
	}

	stats, err := deps.Store.GetUserStats(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetUserStats failed: %v", err)
	}
	if stats.Failed != 1 {
		t.Errorf("expected 1 failed download recorded, got %d", stats.Failed)
	}
	if stats.Completed != 0 {
		t.Errorf("expected no completed downloads, got %d", stats.Completed)
	}
}

func TestDownloadHandlerUnsupportedText(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, "yt-dlp", t.TempDir())
	tg := newFakeTelegram(t, nil)
	handler := NewDownloadHandler(deps)

	handler(context.Background(), tg.bot(t), messageUpdate("hello there"))

	if tg.called("sendMessage") != 1 {
		t.Errorf("expected one sendMessage call, got %d", tg.called("sendMessage"))
	}
}

func TestAnalyzeHandlerUsageMessage(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, "yt-dlp", t.TempDir())
	tg := newFakeTelegram(t, nil)
	handler := NewAnalyzeHandler(deps)

	handler(context.Background(), tg.bot(t), messageUpdate("/analyze"))

	if tg.called("sendMessage") != 1 {
		t.Errorf("expected one sendMessage call, got %d", tg.called("sendMessage"))
	}
}

func TestAnalyzeHandlerEditsPlaceholderWithReport(t *testing.T) {
	t.Parallel()

	ghSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"proj","full_name":"test/proj","stargazers_count":1}`)
	}))
	t.Cleanup(ghSrv.Close)

	deps := testDeps(t, "yt-dlp", t.TempDir())
	a, err := analyzer.New(config.GitHubConfig{BaseURL: ghSrv.URL}, nil, deps.Logger)
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	deps.Analyzer = a

	tg := newFakeTelegram(t, nil)
	handler := NewAnalyzeHandler(deps)

	handler(context.Background(), tg.bot(t), messageUpdate("/analyze github.com/test/proj"))

	if tg.called("sendMessage") != 1 {
		t.Errorf("expected one placeholder sendMessage, got %d", tg.called("sendMessage"))
	}
	if tg.called("editMessageText") != 1 {
		t.Errorf("expected the placeholder to be edited with the report, got %d", tg.called("editMessageText"))
	}
}

func TestRequireSubscriptionBlocksNonMembers(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, "yt-dlp", t.TempDir())
	deps.Gate = gate.New("@mychannel", deps.Logger)

	tg := newFakeTelegram(t, map[string]string{
		"getChatMember": `{"ok":true,"result":{"status":"left","user":{"id":42}}}`,
	})

	nextCalled := false
	mw := RequireSubscription(deps)
	handler := mw(func(context.Context, *tgbot.Bot, *models.Update) { nextCalled = true })

	handler(context.Background(), tg.bot(t), messageUpdate("https://youtu.be/abc"))

	if nextCalled {
		t.Error("expected the handler chain to be blocked")
	}
	if tg.called("sendMessage") != 1 {
		t.Errorf("expected one subscription prompt, got %d sendMessage calls", tg.called("sendMessage"))
	}
}

func TestRequireSubscriptionPassesMembers(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, "yt-dlp", t.TempDir())
	deps.Gate = gate.New("@mychannel", deps.Logger)

	tg := newFakeTelegram(t, map[string]string{
		"getChatMember": `{"ok":true,"result":{"status":"member","user":{"id":42}}}`,
	})

	nextCalled := false
	mw := RequireSubscription(deps)
	handler := mw(func(context.Context, *tgbot.Bot, *models.Update) { nextCalled = true })

	handler(context.Background(), tg.bot(t), messageUpdate("https://youtu.be/abc"))

	if !nextCalled {
		t.Error("expected the handler chain to continue for members")
	}
	if tg.called("sendMessage") != 0 {
		t.Errorf("expected no prompt for members, got %d sendMessage calls", tg.called("sendMessage"))
	}
}

func TestTrackUserUpsertsSender(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, "yt-dlp", t.TempDir())
	tg := newFakeTelegram(t, nil)

	mw := TrackUser(deps)
	handler := mw(func(context.Context, *tgbot.Bot, *models.Update) {})

	handler(context.Background(), tg.bot(t), messageUpdate("hello"))

	user, err := deps.Store.GetUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user == nil {
		t.Fatal("expected the sender to be upserted")
	}
	if user.Username != "tester" {
		t.Errorf("expected username tester, got %q", user.Username)
	}
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, "yt-dlp", t.TempDir())
	handlers := RegisterAllCommands(deps)

	for _, name := range []string{"/start", "/help", "/stats", "/analyze", subscriptionCheckCallback} {
		h, ok := handlers[name]
		if !ok {
			t.Errorf("expected handler %q to be registered", name)
			continue
		}
		if h.Handler == nil {
			t.Errorf("handler %q has nil HandlerFunc", name)
		}
	}

	// Gate disabled: no middleware anywhere.
	if len(handlers["/stats"].Middleware) != 0 {
		t.Error("expected no middleware with the gate disabled")
	}

	deps.Gate = gate.New("@mychannel", deps.Logger)
	gatedHandlers := RegisterAllCommands(deps)
	if len(gatedHandlers["/stats"].Middleware) == 0 {
		t.Error("expected subscription middleware with the gate enabled")
	}
	if len(gatedHandlers[subscriptionCheckCallback].Middleware) != 0 {
		t.Error("expected the re-check callback to stay ungated")
	}
}
