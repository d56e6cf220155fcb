package server

import (
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muurk/godotserve/internal/inject"
)

// newSite writes files under a temp root and returns a handler serving it.
func newSite(t *testing.T, files map[string]string, opts HandlerOptions) *Handler {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	opts.Root = root
	return NewHandler(opts)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertIsolationHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if got := rec.Header().Get("Cross-Origin-Opener-Policy"); got != "same-origin" {
		t.Errorf("Cross-Origin-Opener-Policy = %q, want same-origin", got)
	}
	if got := rec.Header().Get("Cross-Origin-Embedder-Policy"); got != "require-corp" {
		t.Errorf("Cross-Origin-Embedder-Policy = %q, want require-corp", got)
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "index.html"},
		{"/game.wasm", "game.wasm"},
		{"/assets/icon.png", "assets/icon.png"},
		{"//double.js", "double.js"},
		{"/../secret", "../secret"},
	}
	for _, tt := range tests {
		if got := ResolvePath(tt.path, "index.html"); got != tt.want {
			t.Errorf("ResolvePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestHandlerNotFound(t *testing.T) {
	h := newSite(t, nil, HandlerOptions{InjectAudio: true})

	tests := []struct {
		name        string
		target      string
		wantType    string
		wantCaching bool
	}{
		{"unknown extension", "/missing.bin.unknownext", "", true},
		{"png", "/missing.png", mime.TypeByExtension(".png"), true},
		{"html", "/missing.html", mime.TypeByExtension(".html"), false},
		{"root without index", "/", mime.TypeByExtension(".html"), false},
		{"directory", "/.", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(h, tt.target)

			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
			if rec.Body.String() != NotFoundBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), NotFoundBody)
			}
			assertIsolationHeaders(t, rec)
			if got := rec.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			if got := rec.Header().Get("Cache-Control"); (got == StaticCacheControl) != tt.wantCaching {
				t.Errorf("Cache-Control = %q, want caching %v", got, tt.wantCaching)
			}
		})
	}
}

func TestHandlerStaticFile(t *testing.T) {
	binary := string([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0xff, 0xfe})
	h := newSite(t, map[string]string{
		"game.wasm":        binary,
		"game.js":          "console.log('hi')",
		"data/level.pck":   "\xde\xad\xbe\xef",
		"notes.unknownext": "plain text",
	}, HandlerOptions{InjectAudio: true})

	tests := []struct {
		target   string
		wantBody string
		wantType string
	}{
		{"/game.wasm", binary, "application/wasm"},
		{"/game.js", "console.log('hi')", mime.TypeByExtension(".js")},
		{"/data/level.pck", "\xde\xad\xbe\xef", ""},
		{"/notes.unknownext", "plain text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(h, tt.target+"?audio=legacy")

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if got := rec.Header().Get("Cache-Control"); got != StaticCacheControl {
				t.Errorf("Cache-Control = %q, want %q", got, StaticCacheControl)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			assertIsolationHeaders(t, rec)
		})
	}
}

func TestHandlerHTMLInjection(t *testing.T) {
	page := "<html><head><title>Game</title></head><body></body></html>"
	noHead := "<html><body>no head</body></html>"
	h := newSite(t, map[string]string{
		"index.html":   page,
		"plain.html":   noHead,
		"sub/dev.html": "<head><!--DEVMODE--></head>",
	}, HandlerOptions{InjectAudio: true})

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"root maps to index", "/", inject.Inject(page, "")},
		{"root ignores query", "/?audio=legacy", inject.Inject(page, "")},
		{"explicit index", "/index.html", inject.Inject(page, "")},
		{"no head close unchanged", "/plain.html", noHead},
		{"dev marker", "/sub/dev.html", "<head><!--DEVMODE-->" + inject.DevModeScript + inject.AudioScript + "</head>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(h, tt.target)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if rec.Body.String() != tt.want {
				t.Errorf("body =\n%q\nwant\n%q", rec.Body.String(), tt.want)
			}
			if _, ok := rec.Header()["Cache-Control"]; ok {
				t.Errorf("Cache-Control present on HTML: %q", rec.Header().Get("Cache-Control"))
			}
			if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
				t.Errorf("Content-Type = %q, want text/html", got)
			}
			assertIsolationHeaders(t, rec)
		})
	}
}

func TestHandlerInjectionDisabled(t *testing.T) {
	page := "<html><head></head></html>"
	h := newSite(t, map[string]string{"index.html": page}, HandlerOptions{})

	rec := get(h, "/")
	if rec.Body.String() != page {
		t.Errorf("body = %q, want unchanged page", rec.Body.String())
	}
}

func TestHandlerHeadSnippet(t *testing.T) {
	h := newSite(t, map[string]string{"index.html": "<head></head>"}, HandlerOptions{
		InjectAudio: true,
		HeadSnippet: "<script>reload()</script>",
	})

	rec := get(h, "/")
	want := "<head>" + inject.AudioScript + "<script>reload()</script></head>"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestHandlerNonUTF8HTMLIsStreamed(t *testing.T) {
	raw := "<head>\xff\xfe</head>"
	h := newSite(t, map[string]string{"latin1.html": raw}, HandlerOptions{InjectAudio: true})

	rec := get(h, "/latin1.html")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != raw {
		t.Errorf("body = %q, want raw bytes", rec.Body.String())
	}
	if _, ok := rec.Header()["Cache-Control"]; ok {
		t.Error("Cache-Control present on HTML path")
	}
}

func TestHandlerRejectsEscapingPaths(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "site")
	if err := os.Mkdir(root, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}
	h := NewHandler(HandlerOptions{Root: root})

	for _, target := range []string{"/../secret.txt", "/sub/../../secret.txt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.URL.Path = target
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "secret") {
			t.Errorf("%s: leaked file outside root", target)
		}
	}
}

func TestHandlerHead(t *testing.T) {
	h := newSite(t, map[string]string{"game.wasm": "0123456789"}, HandlerOptions{})

	req := httptest.NewRequest(http.MethodHead, "/game.wasm", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD response has body %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Length"); got != "10" {
		t.Errorf("Content-Length = %q, want 10", got)
	}
}
