package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"resumecms/internal/content/model"
	"resumecms/internal/content/service"
	"resumecms/pkg/apperror"
	"resumecms/pkg/logger"
	"resumecms/pkg/response"
)

// HeroHandler serves the singleton hero section.
type HeroHandler struct {
	Registry *service.Registry
}

func NewHeroHandler(reg *service.Registry) *HeroHandler {
	return &HeroHandler{Registry: reg}
}

// Draft handles GET (null when no draft exists) and PUT (full replace).
func (h *HeroHandler) Draft(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		draft, err := h.Registry.Hero.GetDraft(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}
		if draft == nil {
			response.JSON(w, http.StatusOK, nil)
			return
		}
		response.JSON(w, http.StatusOK, draft.Payload)
	case http.MethodPut:
		var req model.Hero
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, apperror.Validation("Invalid request body"))
			return
		}
		saved, err := h.Registry.UpsertHero(r.Context(), req)
		if err != nil {
			logger.Sugar.Errorf("Handler: Failed to save hero draft: %v", err)
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, saved.Payload)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Published returns the published hero, or the empty hero if never published.
func (h *HeroHandler) Published(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	published, err := h.Registry.Hero.GetPublished(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	if published == nil {
		response.JSON(w, http.StatusOK, h.Registry.Hero.Empty())
		return
	}
	response.JSON(w, http.StatusOK, published.Payload)
}

// ItemHandler serves one list section.
type ItemHandler[P any, T any, PT service.Item[T]] struct {
	Service *service.ItemCollection[P, T, PT]
}

func NewItemHandler[P any, T any, PT service.Item[T]](svc *service.ItemCollection[P, T, PT]) *ItemHandler[P, T, PT] {
	return &ItemHandler[P, T, PT]{Service: svc}
}

// Collection handles GET (list draft items) and POST (add an item).
func (h *ItemHandler[P, T, PT]) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := h.Service.List(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, items)
	case http.MethodPost:
		item, order, err := decodeItem[T](r)
		if err != nil {
			response.Error(w, err)
			return
		}
		added, err := h.Service.Add(r.Context(), item, order)
		if err != nil {
			logger.Sugar.Errorf("Handler: Failed to add %s item: %v", h.Service.Section(), err)
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusCreated, added)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Item handles GET, PUT and DELETE for /{itemId}, or ?itemId= when the
// route has no wildcard.
func (h *ItemHandler[P, T, PT]) Item(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemId")
	if itemID == "" {
		itemID = r.URL.Query().Get("itemId")
	}
	if itemID == "" {
		response.Error(w, apperror.Validation("Missing itemId parameter"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := h.Service.Get(r.Context(), itemID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, item)
	case http.MethodPut:
		item, order, err := decodeItem[T](r)
		if err != nil {
			response.Error(w, err)
			return
		}
		updated, err := h.Service.Update(r.Context(), itemID, item, order)
		if err != nil {
			logger.Sugar.Errorf("Handler: Failed to update %s item %s: %v", h.Service.Section(), itemID, err)
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.Service.Delete(r.Context(), itemID); err != nil {
			logger.Sugar.Errorf("Handler: Failed to delete %s item %s: %v", h.Service.Section(), itemID, err)
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, nil)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ItemHandler[P, T, PT]) Reorder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req model.ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperror.Validation("Invalid request body"))
		return
	}
	if err := h.Service.Reorder(r.Context(), req.OrderedIDs); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, nil)
}

// Published lists the published items; empty when never published.
func (h *ItemHandler[P, T, PT]) Published(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	items, err := h.Service.ListPublished(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

// decodeItem reads an item body. order is nil when the body omits it.
func decodeItem[T any](r *http.Request) (T, *int, error) {
	var item T
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return item, nil, apperror.Validation("Invalid request body")
	}
	var meta struct {
		Order *int `json:"order"`
	}
	if err := json.Unmarshal(body, &item); err != nil {
		return item, nil, apperror.Validation("Invalid request body")
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return item, nil, apperror.Validation("Invalid request body")
	}
	return item, meta.Order, nil
}
