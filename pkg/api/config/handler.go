package config

import (
	"encoding/json"
	"net/http"

	"value_copilot/pkg/api/respond"
	"value_copilot/pkg/core/agent"

	"go.uber.org/zap"
)

type Response struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	AgentMgr *agent.Manager
	logger   *zap.Logger
}

// NewHandler creates a new config handler
func NewHandler(agentMgr *agent.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		AgentMgr: agentMgr,
		logger:   logger.Named("config"),
	}
}

func (h *Handler) response() Response {
	return Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.Available(),
	}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.response())
}

func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.AgentMgr.SetGlobalProvider(req.Provider); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("provider switched via API", zap.String("provider", req.Provider))
	respond.JSON(w, http.StatusOK, h.response())
}
