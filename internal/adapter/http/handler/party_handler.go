package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mdaffar/marketledger/internal/adapter/http/dto"
	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/usecase"
)

// PartyService defines the behavior needed by PartyHandler.
type PartyService interface {
	RegisterParty(ctx context.Context, input usecase.RegisterPartyInput) (*domain.Party, error)
	GetParty(ctx context.Context, id int64) (*domain.Party, error)
	ListParties(ctx context.Context) ([]*domain.Party, error)
	OpenStorefront(ctx context.Context, partyID int64, storeName string) (*domain.Party, error)
}

// PartyHandler handles party-related HTTP requests.
type PartyHandler struct {
	partyUC PartyService
}

// NewPartyHandler creates a new PartyHandler.
func NewPartyHandler(partyUC PartyService) *PartyHandler {
	return &PartyHandler{partyUC: partyUC}
}

// Register registers a new party with its bank account.
func (h *PartyHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	party, err := h.partyUC.RegisterParty(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to register party", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PartyFromDomain(party))
}

// Get retrieves a party by id.
func (h *PartyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid party ID", err.Error())
		return
	}

	party, err := h.partyUC.GetParty(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get party", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PartyFromDomain(party))
}

// List lists all parties.
func (h *PartyHandler) List(w http.ResponseWriter, r *http.Request) {
	parties, err := h.partyUC.ListParties(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list parties", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PartiesFromDomain(parties))
}

// OpenStorefront upgrades a party to a seller.
func (h *PartyHandler) OpenStorefront(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid party ID", err.Error())
		return
	}

	var req dto.OpenStorefrontRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	party, err := h.partyUC.OpenStorefront(r.Context(), id, req.StoreName)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open storefront", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PartyFromDomain(party))
}
