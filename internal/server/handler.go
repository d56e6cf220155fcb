package server

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/muurk/godotserve/internal/inject"
	"github.com/muurk/godotserve/internal/logging"
	"go.uber.org/zap"
)

const (
	// NotFoundBody is the exact body of every 404 response.
	NotFoundBody = "404 Not Found"

	// StaticCacheControl is applied to every non-HTML response.
	StaticCacheControl = "public, max-age=86400"
)

func init() {
	// Browsers refuse streaming compilation without it; some system mime tables map .wasm elsewhere.
	_ = mime.AddExtensionType(".wasm", "application/wasm")
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Root            string // Directory request paths are resolved against
	DefaultDocument string // Served for "/"
	InjectAudio     bool   // Insert inject.AudioScript into HTML pages
	HeadSnippet     string // Extra markup inserted before </head> in HTML pages
}

// Handler serves files from a directory. It keeps no state between requests
// and is safe for concurrent use.
type Handler struct {
	opts HandlerOptions
}

// NewHandler creates a Handler.
func NewHandler(opts HandlerOptions) *Handler {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.DefaultDocument == "" {
		opts.DefaultDocument = "index.html"
	}
	return &Handler{opts: opts}
}

// ResolvePath maps a request path onto a file path relative to the root:
// "/" becomes the default document, anything else loses its leading slashes.
func ResolvePath(requestPath, defaultDocument string) string {
	if requestPath == "/" {
		return defaultDocument
	}
	return strings.TrimLeft(requestPath, "/")
}

// IsHTML reports whether a resolved path is rewritten and exempt from caching.
func IsHTML(resolved string) bool {
	return strings.HasSuffix(resolved, ".html")
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resolved := ResolvePath(r.URL.Path, h.opts.DefaultDocument)
	setHeaders(w.Header(), resolved)

	status, written := h.serve(w, r, resolved)
	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, status, written)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, resolved string) (int, int64) {
	full, ok := h.locate(resolved)
	if !ok {
		return notFound(w)
	}

	if IsHTML(resolved) {
		if page, ok := readText(full); ok {
			body := h.rewrite(page, r.URL.RawQuery)
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			w.WriteHeader(http.StatusOK)
			if r.Method == http.MethodHead {
				return http.StatusOK, 0
			}
			n, _ := io.WriteString(w, body)
			return http.StatusOK, int64(n)
		}
	}

	f, err := os.Open(full)
	if err != nil {
		return notFound(w)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return notFound(w)
	}

	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return http.StatusOK, 0
	}

	n, err := io.Copy(w, f)
	if err != nil {
		logging.Debug("Streaming file aborted",
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("path", resolved),
			zap.Int64("bytes_written", n),
			zap.Error(err),
		)
	}
	return http.StatusOK, n
}

// locate joins resolved onto the root. Paths that would leave the root are
// rejected.
func (h *Handler) locate(resolved string) (string, bool) {
	rel := filepath.FromSlash(resolved)
	if !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.Join(h.opts.Root, rel), true
}

func (h *Handler) rewrite(page, query string) string {
	if h.opts.InjectAudio {
		page = inject.Inject(page, query)
	}
	if h.opts.HeadSnippet != "" {
		page, _ = inject.BeforeHead(page, h.opts.HeadSnippet)
	}
	return page
}

// readText returns the file contents if they are valid UTF-8.
func readText(full string) (string, bool) {
	data, err := os.ReadFile(full)
	if err != nil || !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func notFound(w http.ResponseWriter) (int, int64) {
	w.Header().Set("Content-Length", strconv.Itoa(len(NotFoundBody)))
	w.WriteHeader(http.StatusNotFound)
	n, _ := io.WriteString(w, NotFoundBody)
	return http.StatusNotFound, int64(n)
}

// setHeaders applies the headers every response carries, whatever its status.
func setHeaders(header http.Header, resolved string) {
	header.Set("Cross-Origin-Opener-Policy", "same-origin")
	header.Set("Cross-Origin-Embedder-Policy", "require-corp")

	if contentType := mime.TypeByExtension(path.Ext(resolved)); contentType != "" {
		header.Set("Content-Type", contentType)
	} else {
		// A nil value stops net/http from sniffing a type.
		header["Content-Type"] = nil
	}

	if IsHTML(resolved) {
		header.Del("Cache-Control")
	} else {
		header.Set("Cache-Control", StaticCacheControl)
	}
}
