package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tovigym/gymgate/internal/gymgate/service"
	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/types"
)

type Dependencies struct {
	Logger       *zap.Logger
	Addr         string
	Settings     *service.SettingsService
	Registration *service.RegistrationService
	Events       store.AccessEventStore
}

type Server struct {
	httpServer   *http.Server
	logger       *zap.Logger
	mux          *http.ServeMux
	settings     *service.SettingsService
	registration *service.RegistrationService
	events       store.AccessEventStore
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:       d.Logger,
		mux:          mux,
		settings:     d.Settings,
		registration: d.Registration,
		events:       d.Events,
	}

	mux.HandleFunc("GET /v1/branches/{branch}/integration", s.handleGetIntegration)
	mux.HandleFunc("PUT /v1/branches/{branch}/integration", s.handleSaveIntegration)
	mux.HandleFunc("POST /v1/branches/{branch}/integration/test", s.handleTestConnection)
	mux.HandleFunc("GET /v1/branches/{branch}/sync-status", s.handleSyncStatus)
	mux.HandleFunc("GET /v1/branches/{branch}/events", s.handleEvents)
	mux.HandleFunc("POST /v1/members/{member}/register", s.handleRegister)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleGetIntegration(w http.ResponseWriter, r *http.Request) {
	branchID := r.PathValue("branch")

	settings, err := s.settings.Get(r.Context(), branchID)
	if err != nil {
		s.logger.Error("get integration", zap.String("branch_id", branchID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if settings == nil {
		writeError(w, http.StatusNotFound, "not_found", "no integration settings for branch")
		return
	}

	writeJSON(w, http.StatusOK, redact(settings))
}

func (s *Server) handleSaveIntegration(w http.ResponseWriter, r *http.Request) {
	branchID := r.PathValue("branch")

	var req types.BranchSettings
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	saved, _, err := s.settings.Save(r.Context(), branchID, req)
	if err != nil {
		s.logger.Error("save integration", zap.String("branch_id", branchID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, redact(saved))
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	branchID := r.PathValue("branch")

	if err := s.settings.TestConnection(r.Context(), branchID); err != nil {
		status := http.StatusBadGateway
		code := "vendor_unreachable"
		if errors.Is(err, service.ErrNotConfigured) {
			status = http.StatusNotFound
			code = "not_configured"
		}
		writeJSON(w, status, map[string]any{"ok": false, "code": code, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	branchID := r.PathValue("branch")

	settings, err := s.settings.Get(r.Context(), branchID)
	if err != nil {
		s.logger.Error("sync status", zap.String("branch_id", branchID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if settings == nil {
		writeError(w, http.StatusNotFound, "not_found", "no integration settings for branch")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"branch_id":        settings.BranchID,
		"is_active":        settings.IsActive,
		"subscription_id":  settings.SubscriptionID,
		"last_offset":      settings.LastOffset,
		"last_sync_at":     settings.LastSyncAt,
		"last_sync_status": settings.LastSyncStatus,
		"last_sync_error":  settings.LastSyncError,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	branchID := r.PathValue("branch")

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := s.events.ListRecent(r.Context(), branchID, limit)
	if err != nil {
		s.logger.Error("list events", zap.String("branch_id", branchID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	out := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		out = append(out, map[string]any{
			"branch_id":   ev.BranchID,
			"device_sn":   ev.DeviceSN,
			"event_type":  ev.EventType,
			"event_time":  ev.EventTime,
			"door_name":   ev.DoorName,
			"person_name": ev.PersonName,
			"card_no":     ev.CardNo,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

type registerRequest struct {
	BranchID   string `json:"branch_id"`
	DeviceType string `json:"device_type"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	memberID := r.PathValue("member")

	var req registerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	result, err := s.registration.RegisterMember(
		r.Context(), memberID, req.BranchID, types.CredentialType(req.DeviceType),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			writeError(w, http.StatusNotFound, "member_not_found", err.Error())
		case errors.Is(err, service.ErrNotConfigured):
			writeError(w, http.StatusConflict, "not_configured", err.Error())
		case errors.Is(err, service.ErrNoDeviceConfigured):
			writeError(w, http.StatusConflict, "no_device_configured", err.Error())
		case errors.Is(err, service.ErrUnknownDeviceType):
			writeError(w, http.StatusBadRequest, "unknown_device_type", err.Error())
		default:
			s.logger.Error("register member", zap.String("member_id", memberID), zap.Error(err))
			writeError(w, http.StatusBadGateway, "registration_failed", result.Message)
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// redact strips secrets before settings leave the API.
func redact(in *types.BranchSettings) *types.BranchSettings {
	out := *in
	out.AppSecret = ""
	out.Devices = append([]types.Device(nil), in.Devices...)
	for i := range out.Devices {
		out.Devices[i].Password = ""
	}
	return &out
}
