package handler

import (
	"net/http"
	"sort"

	"github.com/mdaffar/marketledger/internal/adapter/http/dto"
	"github.com/mdaffar/marketledger/internal/usecase"
)

// ReportHandler serves the aggregation endpoints.
type ReportHandler struct {
	ledgerUC *usecase.LedgerUseCase
	orderUC  *usecase.OrderBookUseCase
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(ledgerUC *usecase.LedgerUseCase, orderUC *usecase.OrderBookUseCase) *ReportHandler {
	return &ReportHandler{ledgerUC: ledgerUC, orderUC: orderUC}
}

// TopActiveAccounts ranks accounts by today's ledger entry count.
func (h *ReportHandler) TopActiveAccounts(w http.ResponseWriter, r *http.Request) {
	n := parseIntQuery(r, "n", 10)

	activity, err := h.ledgerUC.TopActiveToday(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rank accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// DormantAccounts lists accounts with no entries in the threshold window.
func (h *ReportHandler) DormantAccounts(w http.ResponseWriter, r *http.Request) {
	days := parseIntQuery(r, "days", usecase.DefaultDormancyDays)

	accounts, err := h.ledgerUC.DormantAccounts(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list dormant accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// TopSoldItems ranks item names by quantity sold across paid and completed
// orders.
func (h *ReportHandler) TopSoldItems(w http.ResponseWriter, r *http.Request) {
	m := parseIntQuery(r, "m", 10)

	sales, err := h.orderUC.TopSoldItems(r.Context(), m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rank items", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sales)
}

// ActiveBuyersToday lists buyers by today's order count.
func (h *ReportHandler) ActiveBuyersToday(w http.ResponseWriter, r *http.Request) {
	activity, err := h.orderUC.MostActiveBuyersToday(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rank buyers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// ActiveSellersToday lists sellers by today's order count.
func (h *ReportHandler) ActiveSellersToday(w http.ResponseWriter, r *http.Request) {
	activity, err := h.orderUC.MostActiveSellersToday(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rank sellers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// Spending returns a buyer's total across paid and completed orders in the
// trailing window.
func (h *ReportHandler) Spending(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := parseInt64Query(r, "buyer_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "missing buyer_id", "")
		return
	}
	days := parseIntQuery(r, "since_days", 30)

	total, err := h.orderUC.SpendingInWindow(r.Context(), buyerID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute spending", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SpendingResponse{
		BuyerID:   buyerID,
		SinceDays: days,
		Total:     total,
	})
}

// LoyalCustomers lists buyers with more than one order from the seller this
// month, buyer id ascending.
func (h *ReportHandler) LoyalCustomers(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := parseInt64Query(r, "seller_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "missing seller_id", "")
		return
	}

	counts, err := h.orderUC.LoyalCustomers(r.Context(), sellerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list loyal customers", err.Error())
		return
	}

	result := make([]dto.LoyalCustomerResponse, 0, len(counts))
	for buyerID, orders := range counts {
		result = append(result, dto.LoyalCustomerResponse{BuyerID: buyerID, Orders: orders})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BuyerID < result[j].BuyerID })

	writeJSON(w, http.StatusOK, result)
}
