package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mdaffar/marketledger/internal/adapter/http/dto"
	"github.com/mdaffar/marketledger/internal/usecase"
)

// ItemHandler handles catalog-related HTTP requests.
type ItemHandler struct {
	catalogUC *usecase.CatalogUseCase
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(catalogUC *usecase.CatalogUseCase) *ItemHandler {
	return &ItemHandler{catalogUC: catalogUC}
}

// Create lists a new item under a seller's storefront.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	item, err := h.catalogUC.AddItem(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add item", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ItemFromDomain(item))
}

// Get retrieves an item by id.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID", err.Error())
		return
	}

	item, err := h.catalogUC.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get item", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ItemFromDomain(item))
}

// List lists a seller's items. With visible=true only purchasable items are
// returned, which is the buyer's view of the storefront.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := parseInt64Query(r, "seller_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "missing seller_id", "")
		return
	}
	visibleOnly := r.URL.Query().Get("visible") == "true"

	items, err := h.catalogUC.ListItems(r.Context(), sellerID, visibleOnly)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list items", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ItemsFromDomain(items))
}

// Update rewrites an item's name, price and stock in one step.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID", err.Error())
		return
	}

	var req dto.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.catalogUC.UpdateItem(r.Context(), req.ToUseCaseInput(id)); err != nil {
		writeError(w, mapDomainError(err), "failed to update item", err.Error())
		return
	}

	h.respondWithItem(w, r, id)
}

// Replenish adds stock to an item.
func (h *ItemHandler) Replenish(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.catalogUC.Replenish)
}

// Discard removes stock from an item.
func (h *ItemHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.catalogUC.Discard)
}

func (h *ItemHandler) adjustStock(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sellerID, itemID, quantity int64) error) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID", err.Error())
		return
	}

	var req dto.StockAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := op(r.Context(), req.SellerID, id, req.Quantity); err != nil {
		writeError(w, mapDomainError(err), "failed to adjust stock", err.Error())
		return
	}

	h.respondWithItem(w, r, id)
}

// SetPrice changes an item's unit price. Open orders keep their frozen total.
func (h *ItemHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID", err.Error())
		return
	}

	var req dto.SetPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.catalogUC.SetPrice(r.Context(), req.SellerID, id, req.Price); err != nil {
		writeError(w, mapDomainError(err), "failed to set price", err.Error())
		return
	}

	h.respondWithItem(w, r, id)
}

// SetVisibility toggles an item's visibility to buyers.
func (h *ItemHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID", err.Error())
		return
	}

	var req dto.SetVisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.catalogUC.SetVisibility(r.Context(), req.SellerID, id, req.Visible); err != nil {
		writeError(w, mapDomainError(err), "failed to set visibility", err.Error())
		return
	}

	h.respondWithItem(w, r, id)
}

func (h *ItemHandler) respondWithItem(w http.ResponseWriter, r *http.Request, id int64) {
	item, err := h.catalogUC.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get item", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.ItemFromDomain(item))
}
