package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"inkwell/api/internal/article"
	"inkwell/api/internal/block"
	"inkwell/api/internal/document"
	"inkwell/api/internal/editor"
	"inkwell/api/internal/export"
	"inkwell/api/internal/render"
	"inkwell/api/internal/reorder"
	"inkwell/api/internal/search"
	"inkwell/api/internal/store"
	"inkwell/api/internal/upload"
)

const maxMultipartMemory = 32 << 20

type HTTPServer struct {
	service    *Service
	corsOrigin string
	log        zerolog.Logger
}

func NewHTTPServer(service *Service, corsOrigin string, log zerolog.Logger) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin, log: log}
}

func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Get("/api/ready", s.handleReady)

	r.Route("/api/articles", func(r chi.Router) {
		r.Get("/", s.handleListArticles)
		r.Post("/", s.handleCreateArticle)
		r.Get("/{id}", s.handleGetArticle)
		r.Put("/{id}", s.handleUpdateArticle)
		r.Put("/{id}/sections", s.handleReplaceSections)
		r.Get("/{id}/export", s.handleExport)
	})

	r.Get("/api/search", s.handleSearch)

	r.Route("/api/editor/sessions", func(r chi.Router) {
		r.Post("/", s.handleOpenEditor)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", s.withSession(s.handleEditorView))
			r.Delete("/", s.handleCloseEditor)
			r.Patch("/fields", s.withSession(s.handlePatchFields))
			r.Post("/blocks", s.withSession(s.handleInsertBlock))
			r.Patch("/blocks/{bid}", s.withSession(s.handleChangeBlock))
			r.Delete("/blocks/{bid}", s.withSession(s.handleDeleteBlock))
			r.Post("/blocks/{bid}/move", s.withSession(s.handleMoveBlock))
			r.Post("/blocks/{bid}/upload", s.withSession(s.handleUpload))
			r.Post("/drag/start", s.withSession(s.handleDragStart))
			r.Post("/drag/over", s.withSession(s.handleDragOver))
			r.Post("/drag/end", s.withSession(s.handleDragEnd))
			r.Post("/drag/cancel", s.withSession(s.handleDragCancel))
			r.Post("/keys", s.withSession(s.handleKey))
			r.Post("/save", s.withSession(s.handleSave))
			r.Get("/preview", s.withSession(s.handlePreview))
			r.Get("/edit", s.withSession(s.handleEditHTML))
		})
	})

	r.Get("/p/{slug}", s.handlePublicPage)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})
	return r
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"database": map[string]any{"status": "ok"},
	}
	if err := s.service.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["database"] = map[string]any{
			"status": "error",
			"error":  err.Error(),
		}
	}
	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

type articleRequest struct {
	article.Fields
	Blocks []block.Block `json:"blocks"`
}

func (s *HTTPServer) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	view, err := s.service.CreateArticle(r.Context(), req.Fields, req.Blocks)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *HTTPServer) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	var fields article.Fields
	if err := decodeBody(r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	view, err := s.service.UpdateArticle(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleReplaceSections(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Blocks []block.Block `json:"blocks"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	view, err := s.service.ReplaceSections(r.Context(), chi.URLParam(r, "id"), body.Blocks)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetArticle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleListArticles(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := s.service.ListArticles(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if items == nil {
		items = []article.Article{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": items})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.service.Export(r.Context(), chi.URLParam(r, "id"), format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
	w.Header().Set("Content-Type", result.MimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	writeJSON(w, http.StatusOK, s.service.Search(search.Query{
		Text:   strings.TrimSpace(q.Get("q")),
		Tag:    strings.TrimSpace(q.Get("tag")),
		Limit:  limit,
		Offset: offset,
	}))
}

func (s *HTTPServer) handlePublicPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.PublicPage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

func (s *HTTPServer) handleOpenEditor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ArticleID string `json:"articleId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	session, err := s.service.OpenEditor(r.Context(), strings.TrimSpace(body.ArticleID))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session.View())
}

func (s *HTTPServer) handleCloseEditor(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseEditor(chi.URLParam(r, "sid")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, session *editor.Session)

func (s *HTTPServer) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.service.Editor(chi.URLParam(r, "sid"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		next(w, r, session)
	}
}

func (s *HTTPServer) handleEditorView(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	writeJSON(w, http.StatusOK, session.View())
}

func (s *HTTPServer) handlePatchFields(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var raw json.RawMessage
	if err := decodeBody(r, &raw); err != nil || len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := session.PatchFields(raw); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

func (s *HTTPServer) handleInsertBlock(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var body struct {
		Type block.Type `json:"type"`
		At   *int       `json:"at"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	b, err := session.InsertBlock(body.Type, body.At)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"block": b, "html": render.Edit(b)})
}

func (s *HTTPServer) handleChangeBlock(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var change render.Change
	if err := decodeBody(r, &change); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	b, err := session.ApplyChange(chi.URLParam(r, "bid"), change)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"block": b, "html": render.Edit(b)})
}

func (s *HTTPServer) handleDeleteBlock(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	if err := session.DeleteBlock(chi.URLParam(r, "bid")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

func (s *HTTPServer) handleMoveBlock(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var body struct {
		Direction document.Direction `json:"direction"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	if body.Direction != document.Up && body.Direction != document.Down {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "direction must be up or down", nil)
		return
	}
	if err := session.MoveBlock(chi.URLParam(r, "bid"), body.Direction); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart body", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "file field is required", nil)
		return
	}
	defer file.Close()

	b, err := session.Upload(r.Context(), chi.URLParam(r, "bid"), upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"block": b, "html": render.Edit(b)})
}

func (s *HTTPServer) handleDragStart(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var body struct {
		BlockID string         `json:"blockId"`
		Origin  reorder.Origin `json:"origin"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	started, err := session.DragStart(body.BlockID, body.Origin)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"started": started})
}

func (s *HTTPServer) handleDragOver(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var body struct {
		PointerY float64        `json:"pointerY"`
		Layout   []reorder.Rect `json:"layout"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	target, ok, err := session.DragOver(body.PointerY, body.Layout)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dragging": ok, "target": target})
}

func (s *HTTPServer) handleDragEnd(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	moved, err := session.DragEnd()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "session": session.View()})
}

func (s *HTTPServer) handleDragCancel(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	if err := session.DragCancel(); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleKey(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var ev reorder.KeyEvent
	if err := decodeBody(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	handled, err := session.HandleKey(ev)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"handled": handled, "session": session.View()})
}

func (s *HTTPServer) handleSave(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	if err := session.Save(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

func (s *HTTPServer) handlePreview(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	writeHTML(w, http.StatusOK, session.Preview(render.ParseDevice(r.URL.Query().Get("device"))))
}

func (s *HTTPServer) handleEditHTML(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	writeHTML(w, http.StatusOK, session.EditHTML())
}

func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := mapError(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeError(w, status, code, message, details)
}

// requestLogger writes one structured line per request and makes a
// request-scoped logger available through zerolog.Ctx.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		requestID := middleware.GetReqID(r.Context())
		logger := s.log.With().Str("request_id", requestID).Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", writer.status).
			Int64("duration_ms", time.Since(started).Milliseconds()).
			Msg("request")
	})
}

func (s *HTTPServer) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w.Header(), s.corsOrigin)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type,X-Request-ID")
	header.Set("Vary", "Origin")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	var validation *article.ValidationError
	if errors.As(err, &validation) {
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", validation.Message, map[string]any{"field": validation.Field}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	case errors.Is(err, editor.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND", "Editor session not found", nil
	case errors.Is(err, editor.ErrBlockNotFound):
		return http.StatusNotFound, "BLOCK_NOT_FOUND", "Block not found", nil
	case errors.Is(err, editor.ErrSessionClosed):
		return http.StatusConflict, "SESSION_CLOSED", "Editor session closed", nil
	case errors.Is(err, store.ErrSlugTaken):
		return http.StatusConflict, "SLUG_TAKEN", "Slug already in use", nil
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error(), nil
	case errors.Is(err, upload.ErrContentType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", err.Error(), nil
	case errors.Is(err, upload.ErrEmpty),
		errors.Is(err, editor.ErrUnknownType),
		errors.Is(err, editor.ErrNotUploadable),
		errors.Is(err, render.ErrUnknownPath),
		errors.Is(err, render.ErrUnsupportedOp),
		errors.Is(err, render.ErrInvalidValue),
		errors.Is(err, store.ErrInvalidSections):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil
	case errors.Is(err, editor.ErrNoUploader):
		return http.StatusServiceUnavailable, "UPLOADS_UNAVAILABLE", "Uploads are not configured", nil
	case errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", err.Error(), nil
	case errors.Is(err, export.ErrPDFDependencyMissing), errors.Is(err, export.ErrDOCXDependencyMissing):
		return http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", err.Error(), nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
