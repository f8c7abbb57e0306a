// Package chat serves the session-scoped copilot endpoints: session state,
// free chat (blocking and streamed), screener, memo and document upload.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"value_copilot/pkg/api/respond"
	"value_copilot/pkg/core/conversation"
	"value_copilot/pkg/core/copilot"
	"value_copilot/pkg/core/prompt"
	"value_copilot/pkg/core/report"
	"value_copilot/pkg/core/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler holds dependencies for the session endpoints.
type Handler struct {
	service        *copilot.Service
	sessions       store.SessionStore
	locks          *store.Locks
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewHandler(service *copilot.Service, sessions store.SessionStore, maxUploadBytes int64, logger *zap.Logger) *Handler {
	return &Handler{
		service:        service,
		sessions:       sessions,
		locks:          store.NewLocks(),
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("chat"),
	}
}

// Routes mounts the endpoints below /api/sessions.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.HandleCreate)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Delete("/", h.HandleDelete)
		r.Put("/profile", h.HandleProfile)
		r.Post("/watchlist", h.HandleAddTicker)
		r.Delete("/watchlist", h.HandleClearWatchlist)
		r.Delete("/history", h.HandleResetHistory)
		r.Put("/tone", h.HandleTone)
		r.Post("/chat", h.HandleChat)
		r.Post("/chat/stream", h.HandleChatStream)
		r.Post("/screener", h.HandleScreener)
		r.Post("/memo", h.HandleMemo)
		r.Post("/upload", h.HandleUpload)
	})
}

// withSession loads the session named in the URL, runs fn under the
// session lock, saves the session and then runs the writer fn returned.
// A model failure still saves, so the user turn stays in history.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, s *conversation.Session) (func(), error)) {
	id := chi.URLParam(r, "id")
	unlock := h.locks.Lock(id)
	defer unlock()

	ctx := r.Context()
	sess, err := h.sessions.Get(ctx, id)
	if err != nil {
		respond.Fail(w, h.logger, err)
		return
	}

	write, fnErr := fn(ctx, sess)
	if fnErr != nil && !errors.Is(fnErr, copilot.ErrUpstream) {
		respond.Fail(w, h.logger, fnErr)
		return
	}

	// The request context may be gone after a long stream; the save must still happen.
	if err := h.sessions.Save(context.WithoutCancel(ctx), sess); err != nil {
		respond.Fail(w, h.logger, fmt.Errorf("save session: %w", err))
		return
	}
	if fnErr != nil {
		respond.Fail(w, h.logger, fnErr)
		return
	}
	if write != nil {
		write()
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid request body: %v", copilot.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Create(r.Context())
	if err != nil {
		respond.Fail(w, h.logger, err)
		return
	}
	h.logger.Info("session created", zap.String("session", sess.ID))
	respond.JSON(w, http.StatusCreated, sess)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, sess)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		respond.Fail(w, h.logger, err)
		return
	}
	h.service.Forget(id)
	h.locks.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleProfile replaces the investor profile. An omitted watchlist keeps the current one.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	var profile conversation.Profile
	if err := decode(r, &profile); err != nil {
		respond.Fail(w, h.logger, err)
		return
	}
	if err := profile.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.withSession(w, r, func(ctx context.Context, s *conversation.Session) (func(), error) {
		if profile.Watchlist == nil {
			profile.Watchlist = s.Profile.Watchlist
		}
		s.Profile = profile
		s.Touch()
		return func() { respond.JSON(w, http.StatusOK, s.Profile) }, nil
	})
}

type tickerRequest struct {
	Ticker string `json:"ticker"`
}

func (h *Handler) HandleAddTicker(w http.ResponseWriter, r *http.Request) {
	var req tickerRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, h.logger, err)
		return
	}
	h.withSession(w, r, func(ctx context.Context, s *conversation.Session) (func(), error) {
		s.Profile.AddTicker(req.Ticker)
		s.Touch()
		return func() { respond.JSON(w, http.StatusOK, s.Profile) }, nil
	})
}

func (h *Handler) HandleClearWatchlist(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, s *conversation.Session) (func(), error) {
		s.Profile.ClearWatchlist()
		s.Touch()
		return func() { respond.JSON(w, http.StatusOK, s.Profile) }, nil
	})
}

func (h *Handler) HandleResetHistory(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, s *conversation.Session) (func(), error) {
		s.History.Reset()
		s.Touch()
		return func() { w.WriteHeader(http.StatusNoContent) }, nil
	})
}

type toneRequest struct {
	Tone string `json:"tone"`
}

type toneResponse struct {
	Tone conversation.Tone `json:"tone"`
	Line string            `json:"line"`
}

func (h *Handler) HandleTone(w http.ResponseWriter, r *http.Request) {
	var req toneRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, h.logger, err)
		return
	}
	tone, err := conversation.ParseTone(req.Tone)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withSession(w, r, func(ctx context.Context, s *conversation.Session) (func(), error) {
		s.Tone = tone
		s.Touch()
		return func() { respond.JSON(w, http.StatusOK, toneResponse{Tone: tone, Line: tone.Line()}) }, nil
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, h.logger, err)
		return
	}
	h.withSession(w, r, func(ctx context.Context, s *conversation.Session) (func(), error) {
		res, err := h.service.Chat(ctx, s, req.Message)
		if err != nil {
			return nil, err
		}
		return func() { respond.JSON(w, http.StatusOK, res) }, nil
	})
}

type screenerRequest struct {
	Ticker string `json:"ticker"`
	Notes  string `json:"notes"`
}

// HandleScreener runs the screener; ?format=md|html|json downloads the reply.
func (h *Handler) HandleScreener(w http.ResponseWriter, r *http.Request) {
	if !validFormat(w, r) {
		return
	}
	var req screenerRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, h.logger, err)
		return
	}
	h.withSession(w, r, func(ctx context.Context, s *conversation.Session) (func(), error) {
		res, err := h.service.Screener(ctx, s, req.Ticker, req.Notes)
		if err != nil {
			return nil, err
		}
		return func() { h.writeResult(w, r, "screener", req.Ticker, res, res.Title, res.Reply, res.Record) }, nil
	})
}

type memoRequest struct {
	Company string `json:"company"`
	Hints   string `json:"hints"`
}

func (h *Handler) HandleMemo(w http.ResponseWriter, r *http.Request) {
	if !validFormat(w, r) {
		return
	}
	var req memoRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, h.logger, err)
		return
	}
	h.withSession(w, r, func(ctx context.Context, s *conversation.Session) (func(), error) {
		res, err := h.service.Memo(ctx, s, req.Company, req.Hints)
		if err != nil {
			return nil, err
		}
		return func() { h.writeResult(w, r, "memo", req.Company, res, res.Title, res.Reply, res.Record) }, nil
	})
}

// HandleUpload accepts a multipart form with a "file" field (PDF, text or HTML).
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !validFormat(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
			return
		}
		respond.Error(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
		return
	}

	h.withSession(w, r, func(ctx context.Context, s *conversation.Session) (func(), error) {
		res, err := h.service.SummarizeUpload(ctx, s, header.Filename, header.Header.Get("Content-Type"), data)
		if err != nil {
			return nil, err
		}
		return func() { h.writeResult(w, r, "upload", header.Filename, res, res.Title, res.Reply, res.Record) }, nil
	})
}

// validFormat rejects an unknown ?format= before any model call is made.
func validFormat(w http.ResponseWriter, r *http.Request) bool {
	switch format := r.URL.Query().Get("format"); format {
	case "", report.FormatMarkdown, report.FormatHTML, report.FormatJSON:
		return true
	default:
		respond.Error(w, http.StatusBadRequest, "unknown format "+format+" (want md, html or json)")
		return false
	}
}

// writeResult sends the task result as JSON or, with ?format=, as a download.
func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, kind, subject string, result any, title, reply string, record any) {
	switch r.URL.Query().Get("format") {
	case "":
		respond.JSON(w, http.StatusOK, result)
	case report.FormatMarkdown:
		respond.Download(w, "text/markdown; charset=utf-8", report.Filename(kind, subject, "md"),
			[]byte(report.ReplyMarkdown(title, reply)))
	case report.FormatHTML:
		page, err := report.ReplyHTML(title, reply)
		if err != nil {
			respond.Fail(w, h.logger, err)
			return
		}
		respond.Download(w, "text/html; charset=utf-8", report.Filename(kind, subject, "html"), []byte(page))
	case report.FormatJSON:
		data, err := report.RecordJSON(record)
		if err != nil {
			respond.Fail(w, h.logger, err)
			return
		}
		respond.Download(w, "application/json", report.Filename(kind, subject, "json"), data)
	}
}

// Sample is a one-click starter question.
type Sample struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// HandleSamples lists the sample prompts.
func HandleSamples(registry *prompt.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates := registry.ListByCategory(prompt.CategorySample)
		samples := make([]Sample, 0, len(templates))
		for _, pt := range templates {
			samples = append(samples, Sample{ID: pt.ID, Label: pt.Name, Prompt: pt.UserPromptTmpl})
		}
		respond.JSON(w, http.StatusOK, samples)
	}
}
