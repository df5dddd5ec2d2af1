package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"resumecms/internal/publish/model"
	"resumecms/internal/publish/service"
	"resumecms/middleware"
	"resumecms/pkg/apperror"
	"resumecms/pkg/logger"
	"resumecms/pkg/response"
)

type PublishHandler struct {
	Service *service.PublishService
}

func NewPublishHandler(svc *service.PublishService) *PublishHandler {
	return &PublishHandler{Service: svc}
}

// Publish accepts an optional {label} body.
func (h *PublishHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, apperror.Validation("Invalid request body"))
		return
	}

	result, err := h.Service.Publish(r.Context(), middleware.UserID(r.Context()), req.Label)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to publish: %v", err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *PublishHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	status, err := h.Service.Status(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, status)
}

func (h *PublishHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap, err := h.Service.Latest(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

func (h *PublishHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	content, err := h.Service.Preview(r.Context(), r.URL.Query().Get("locale"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, content)
}
