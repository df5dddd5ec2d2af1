package handler

import (
	"encoding/json"
	"net/http"

	"resumecms/internal/settings/model"
	"resumecms/internal/settings/service"
	"resumecms/pkg/apperror"
	"resumecms/pkg/logger"
	"resumecms/pkg/response"
)

type SettingsHandler struct {
	Service *service.SettingsService
}

func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{Service: svc}
}

// Settings handles GET (bootstraps defaults) and PUT (full replace).
func (h *SettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := h.Service.GetOrCreate(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req model.SiteSettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, apperror.Validation("Invalid request body"))
			return
		}
		settings, err := h.Service.Update(r.Context(), req)
		if err != nil {
			logger.Sugar.Errorf("Handler: Failed to update settings: %v", err)
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, settings)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
