package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"debitgate/internal/errs"
	"debitgate/internal/model"
	"debitgate/internal/service"
)

type Handler struct {
	svc service.ChargeService
	log *zap.Logger
}

func NewHandler(svc service.ChargeService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /reset", h.Reset)
	mux.HandleFunc("POST /charge", h.Charge)
	mux.HandleFunc("GET /balance", h.Balance)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req model.ResetRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_argument")
		return
	}
	account := ""
	if req.Account != nil {
		account = *req.Account
	}
	if err := h.svc.Reset(r.Context(), account); err != nil {
		h.log.Error("reset failed", zap.Error(err))
		h.respondError(w, statusFor(err), errs.Kind(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Charge(w http.ResponseWriter, r *http.Request) {
	var req model.ChargeRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_argument")
		return
	}
	outcome, err := h.svc.Charge(r.Context(), req)
	if err != nil {
		h.log.Error("charge failed", zap.Error(err))
		h.respondError(w, statusFor(err), errs.Kind(err))
		return
	}
	h.respondJSON(w, http.StatusOK, outcome)
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	bal, err := h.svc.Balance(r.Context(), account)
	if err != nil {
		h.respondError(w, statusFor(err), errs.Kind(err))
		return
	}
	h.respondJSON(w, http.StatusOK, bal)
}

// decodeBody tolerates an empty body: both endpoints default every field, so
// a bare POST is a valid request.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrAccountNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, kind string) {
	h.respondJSON(w, status, map[string]string{"error": kind})
}
