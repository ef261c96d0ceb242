package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/markdown"
	"github.com/hpungsan/uwu/internal/ops"
	"github.com/hpungsan/uwu/internal/record"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
}

// IndexPageData is the template data for the playground page.
type IndexPageData struct {
	PageData
	Text         string
	Markdown     bool
	Save         bool
	HasResult    bool
	Output       string
	Fallback     bool
	ID           string
	RenderedHTML template.HTML
}

// HistoryPageData is the template data for the history list page.
type HistoryPageData struct {
	PageData
	Items      []record.Summary
	Pagination ops.Pagination
}

// DetailPageData is the template data for one history record.
type DetailPageData struct {
	PageData
	Record       *ops.FetchOutput
	RenderedHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    zerolog.Logger
}

// NewRenderer parses the page templates.
func NewRenderer(version string, logger zerolog.Logger) *Renderer {
	funcMap := template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"formatTime":  formatTime,
		"formatChars": formatChars,
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).Parse(pageTemplates["layout"]))

	templates := make(map[string]*template.Template)
	for _, name := range []string{"index", "history", "detail", "error"} {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.Parse(pageTemplates[name]))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error().Str("template", name).Msg("template not found")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error().Err(err).Str("template", name).Msg("template execution error")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
// API routes and clients accepting JSON get a JSON body, everyone else a page.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	uErr := errors.As(err)
	message := errors.Message(err)
	if uErr.Status >= 500 {
		r.logger.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
	}

	if wantsJSON(req) {
		renderJSON(w, uErr.Status, map[string]any{
			"error": map[string]any{
				"code":    string(uErr.Code),
				"message": message,
				"status":  uErr.Status,
			},
		})
		return
	}

	r.renderPageStatus(w, uErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", uErr.Status),
			Version: r.version,
		},
		StatusCode: uErr.Status,
		Message:    message,
	})
}

func wantsJSON(req *http.Request) bool {
	return strings.HasPrefix(req.URL.Path, "/api/") ||
		strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML, escaping the source on failure.
func renderMarkdown(md string) template.HTML {
	html, err := markdown.Render(md)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(html)
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// formatChars formats an integer with comma thousands separators.
func formatChars(n int) string {
	if n < 0 {
		return "-" + formatChars(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
