package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"value_copilot/pkg/api/respond"
	"value_copilot/pkg/core/copilot"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StreamEvent is the data payload of one SSE message.
type StreamEvent struct {
	Delta  string `json:"delta,omitempty"`
	Reply  string `json:"reply,omitempty"`
	Error  string `json:"error,omitempty"`
	Status int    `json:"status,omitempty"`
}

// HandleChatStream answers a chat message as server-sent events:
// "delta" events while the model writes, then one "done" (or "error") event.
// Failures before the first delta are plain JSON errors with a status code.
func (h *Handler) HandleChatStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	var req chatRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, h.logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	unlock := h.locks.Lock(id)
	defer unlock()

	ctx := r.Context()
	sess, err := h.sessions.Get(ctx, id)
	if err != nil {
		respond.Fail(w, h.logger, err)
		return
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
	}
	send := func(event string, payload StreamEvent) {
		data, _ := json.Marshal(payload)
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	res, chatErr := h.service.ChatStream(ctx, sess, req.Message, func(delta string) error {
		start()
		send("delta", StreamEvent{Delta: delta})
		return ctx.Err()
	})

	if chatErr == nil || errors.Is(chatErr, copilot.ErrUpstream) {
		if err := h.sessions.Save(context.WithoutCancel(ctx), sess); err != nil {
			h.logger.Error("failed to save session after stream", zap.String("session", id), zap.Error(err))
			if chatErr == nil {
				chatErr = fmt.Errorf("save session: %w", err)
			}
		}
	}

	if chatErr != nil {
		if !started {
			respond.Fail(w, h.logger, chatErr)
			return
		}
		status := respond.StatusFor(chatErr)
		h.logger.Warn("stream aborted", zap.String("session", id), zap.Int("status", status), zap.Error(chatErr))
		send("error", StreamEvent{Error: chatErr.Error(), Status: status})
		return
	}

	start()
	send("done", StreamEvent{Reply: res.Reply})
}
