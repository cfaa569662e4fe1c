package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"productos/internal/apitest"
	"productos/internal/config"
	"productos/internal/domain"
	"productos/internal/http/handlers"
	"productos/internal/repos"
)

// newUIApp wires the UI like main does, against a fake productos service.
func newUIApp(t *testing.T, seed ...domain.Product) (*fiber.App, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t, seed...)
	cfg := config.Config{APIBaseURL: srv.URL, DBDSN: ":memory:"}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Use(limiter.New(limiter.Config{Max: 1000, Expiration: 0}))
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax", ContextKey: "csrf"}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	handlers.Register(app, handlers.NewDeps(db, cfg))
	return app, srv
}

// browser keeps cookies between requests.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newBrowser(t *testing.T, app *fiber.App) *browser {
	return &browser{t: t, app: app, cookies: map[string]string{}}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	for k, v := range b.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := b.app.Test(req, -1)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	for _, c := range resp.Cookies() {
		b.cookies[c.Name] = c.Value
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	return b.do(httptest.NewRequest(fiber.MethodGet, path, nil))
}

// post sends a form with the current csrf token.
func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", b.cookies["csrf_"])
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func expectRedirect(t *testing.T, resp *http.Response, to string) {
	t.Helper()
	if resp.StatusCode != fiber.StatusFound || resp.Header.Get("Location") != to {
		t.Fatalf("want redirect to %s, got %d %q", to, resp.StatusCode, resp.Header.Get("Location"))
	}
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
