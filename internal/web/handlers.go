package web

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/hpungsan/uwu/internal/config"
	"github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/markdown"
	"github.com/hpungsan/uwu/internal/ops"
	"github.com/hpungsan/uwu/internal/record"
)

// maxBodyBytes caps JSON and form request bodies.
const maxBodyBytes = 4 << 20

// Handlers contains HTTP route handlers for the API and the web UI.
type Handlers struct {
	db       *sql.DB // nil disables history routes and saving
	cfg      *config.Config
	renderer *Renderer
}

// UwuifyRequest is the body of POST /api/uwuify.
type UwuifyRequest struct {
	Text     *string     `json:"text"`
	Options  ops.Options `json:"options"`
	Markdown bool        `json:"markdown"`
	Save     *bool       `json:"save,omitempty"`
}

// BatchRequest is the body of POST /api/uwuify/batch.
type BatchRequest struct {
	Texts    []string    `json:"texts"`
	Options  ops.Options `json:"options"`
	Markdown bool        `json:"markdown"`
	Save     *bool       `json:"save,omitempty"`
}

// RenderRequest is the body of POST /api/render.
type RenderRequest struct {
	Text    *string     `json:"text"`
	Options ops.Options `json:"options"`
}

// RenderResponse is the result of POST /api/render.
type RenderResponse struct {
	Output   string `json:"output"`
	HTML     string `json:"html"`
	Fallback bool   `json:"fallback,omitempty"`
}

// PurgeRequest is the body of POST /api/history/purge.
type PurgeRequest struct {
	Confirm       bool `json:"confirm"`
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// HandleUwuify handles POST /api/uwuify.
func (h *Handlers) HandleUwuify(w http.ResponseWriter, r *http.Request) {
	var req UwuifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if req.Text == nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("text is required"))
		return
	}

	out, err := ops.Uwuify(r.Context(), h.db, h.cfg, ops.UwuifyInput{
		Text:     *req.Text,
		Options:  req.Options,
		Markdown: req.Markdown,
		Save:     h.save(req.Save),
		Source:   record.SourceWeb,
		Fallback: true,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleBatch handles POST /api/uwuify/batch.
func (h *Handlers) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	out, err := ops.UwuifyBatch(r.Context(), h.db, h.cfg, ops.BatchInput{
		Texts:    req.Texts,
		Options:  req.Options,
		Markdown: req.Markdown,
		Save:     h.save(req.Save),
		Source:   record.SourceWeb,
		Fallback: true,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, out)
}

// HandleRender handles POST /api/render: uwuify markdown prose, then render HTML.
func (h *Handlers) HandleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if req.Text == nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("text is required"))
		return
	}

	noSave := false
	out, err := ops.Uwuify(r.Context(), h.db, h.cfg, ops.UwuifyInput{
		Text:     *req.Text,
		Options:  req.Options,
		Markdown: true,
		Save:     &noSave,
		Source:   record.SourceWeb,
		Fallback: true,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	html, err := markdown.Render(out.Output)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewUnknown(err))
		return
	}

	renderJSON(w, http.StatusOK, RenderResponse{Output: out.Output, HTML: html, Fallback: out.Fallback})
}

// HandleHistoryList handles GET /api/history.
func (h *Handlers) HandleHistoryList(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w, r) {
		return
	}
	q := r.URL.Query()
	out, err := ops.List(r.Context(), h.db, ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
		Source: q.Get("source"),
		Text:   q.Get("text"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleHistoryFetch handles GET /api/history/{id}.
func (h *Handlers) HandleHistoryFetch(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w, r) {
		return
	}
	includeText := r.URL.Query().Get("include_text") != "false"
	out, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id"), IncludeText: &includeText})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleHistoryPurge handles POST /api/history/purge.
func (h *Handlers) HandleHistoryPurge(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w, r) {
		return
	}
	var req PurgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if !req.Confirm {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm must be true"))
		return
	}

	out, err := ops.Purge(r.Context(), h.db, ops.PurgeInput{OlderThanDays: req.OlderThanDays})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok", "history": h.db != nil}
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			renderJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "history": false})
			return
		}
	}
	renderJSON(w, http.StatusOK, status)
}

// HandleIndex handles GET / and POST / (the playground form).
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := IndexPageData{
		PageData: PageData{Title: "uwuify", Version: h.renderer.version},
	}

	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
			return
		}
		data.Text = r.FormValue("text")
		data.Markdown = r.FormValue("markdown") == "true"
		data.Save = r.FormValue("save") == "true" && h.db != nil

		out, err := ops.Uwuify(r.Context(), h.db, h.cfg, ops.UwuifyInput{
			Text:     data.Text,
			Markdown: data.Markdown,
			Save:     &data.Save,
			Source:   record.SourceWeb,
			Fallback: true,
		})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.HasResult = true
		data.Output = out.Output
		data.Fallback = out.Fallback
		data.ID = out.ID
		if data.Markdown {
			data.RenderedHTML = renderMarkdown(out.Output)
		}
	}

	h.renderer.renderPage(w, "index", data)
}

// HandleHistoryPage handles GET /history.
func (h *Handlers) HandleHistoryPage(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w, r) {
		return
	}
	out, err := ops.List(r.Context(), h.db, ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
		Source: r.URL.Query().Get("source"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "history", HistoryPageData{
		PageData:   PageData{Title: "History", Version: h.renderer.version},
		Items:      out.Items,
		Pagination: out.Pagination,
	})
}

// HandleDetailPage handles GET /history/{id}.
func (h *Handlers) HandleDetailPage(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w, r) {
		return
	}
	out, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data := DetailPageData{
		PageData: PageData{Title: out.ID, Version: h.renderer.version},
		Record:   out,
	}
	if out.Markdown {
		data.RenderedHTML = renderMarkdown(out.Output)
	}
	h.renderer.renderPage(w, "detail", data)
}

// save resolves the per-request save flag. Without a database nothing is saved.
func (h *Handlers) save(requested *bool) *bool {
	if h.db == nil {
		off := false
		return &off
	}
	return requested
}

// requireDB rejects history routes when the server runs without a database.
func (h *Handlers) requireDB(w http.ResponseWriter, r *http.Request) bool {
	if h.db != nil {
		return true
	}
	h.renderer.renderError(w, r, errors.NewInvalidRequest("history is disabled on this server"))
	return false
}

// decodeJSON decodes a size-limited JSON body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.NewInvalidRequest("request body is empty")
		}
		return errors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
