package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"fitbook/internal/availability/service"
	apperrors "fitbook/pkg/errors"
	httputil "fitbook/pkg/http"
	"fitbook/pkg/logger"
	"fitbook/pkg/model"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

type replaceRulesRequest struct {
	Rules []model.AvailabilityRule `json:"rules"`
}

func (h *AvailabilityHandler) ListRules(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trainerID := ps.ByName("trainerID")

	rules, err := h.service.ListRules(r.Context(), trainerID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListRules", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, rules); err != nil {
		h.log.Error("failed to write success response", "handler", "ListRules", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) ReplaceRules(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trainerID := ps.ByName("trainerID")

	var req replaceRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ReplaceRules", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.ReplaceRules(r.Context(), trainerID, req.Rules); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ReplaceRules", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) AddOneOffRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trainerID := ps.ByName("trainerID")

	var rule model.AvailabilityRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "AddOneOffRule", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	created, err := h.service.AddOneOffRule(r.Context(), trainerID, &rule)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AddOneOffRule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "AddOneOffRule", "operation", "WriteCreated", "error", err)
	}
}

type addExceptionRequest struct {
	RuleID string `json:"rule_id"`
	Date   string `json:"date"`
}

func (h *AvailabilityHandler) AddException(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trainerID := ps.ByName("trainerID")

	var req addExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "AddException", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.RemoveOccurrence(r.Context(), trainerID, req.RuleID, req.Date); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AddException", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) GetWindows(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trainerID := ps.ByName("trainerID")
	date := r.URL.Query().Get("date")
	if date == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("date query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetWindows", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	windows, err := h.service.WindowsForDate(r.Context(), trainerID, date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetWindows", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, windows); err != nil {
		h.log.Error("failed to write success response", "handler", "GetWindows", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) GetSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trainerID := ps.ByName("trainerID")
	date := r.URL.Query().Get("date")
	if date == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("date query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	slots, err := h.service.SlotsForDate(r.Context(), trainerID, date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) AddService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trainerID := ps.ByName("trainerID")

	var svc model.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "AddService", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	svc.TrainerID = trainerID

	if err := h.service.AddService(r.Context(), &svc); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AddService", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, svc); err != nil {
		h.log.Error("failed to write created response", "handler", "AddService", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) ListServices(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trainerID := ps.ByName("trainerID")

	services, err := h.service.ListServices(r.Context(), trainerID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListServices", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, services); err != nil {
		h.log.Error("failed to write success response", "handler", "ListServices", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) DeleteService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trainerID := ps.ByName("trainerID")
	serviceID := ps.ByName("serviceID")

	if err := h.service.DeleteService(r.Context(), trainerID, serviceID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteService", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/trainers/:trainerID/rules", h.ListRules)
	router.PUT("/api/v1/trainers/:trainerID/rules", h.ReplaceRules)
	router.POST("/api/v1/trainers/:trainerID/rules/oneoff", h.AddOneOffRule)
	router.POST("/api/v1/trainers/:trainerID/exceptions", h.AddException)
	router.GET("/api/v1/trainers/:trainerID/windows", h.GetWindows)
	router.GET("/api/v1/trainers/:trainerID/slots", h.GetSlots)
	router.POST("/api/v1/trainers/:trainerID/services", h.AddService)
	router.GET("/api/v1/trainers/:trainerID/services", h.ListServices)
	router.DELETE("/api/v1/trainers/:trainerID/services/:serviceID", h.DeleteService)
}
