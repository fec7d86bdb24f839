package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mdaffar/marketledger/internal/adapter/http/dto"
	"github.com/mdaffar/marketledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reports?n=50", nil)
	if got := parseIntQuery(req, "n", 10); got != 50 {
		t.Fatalf("expected n=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/reports?n=invalid", nil)
	if got := parseIntQuery(req, "n", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "n", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseInt64Query(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders?buyer_id=7", nil)
	id, ok := parseInt64Query(req, "buyer_id")
	if !ok || id != 7 {
		t.Fatalf("expected (7, true), got (%d, %v)", id, ok)
	}

	req = httptest.NewRequest(http.MethodGet, "/orders?buyer_id=abc", nil)
	if _, ok := parseInt64Query(req, "buyer_id"); ok {
		t.Fatal("expected ok=false for malformed value")
	}

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	if _, ok := parseInt64Query(req, "buyer_id"); ok {
		t.Fatal("expected ok=false for missing value")
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"payment rejected", domain.ErrPaymentRejected, http.StatusPaymentRequired},
		{"payment rejected wraps cause", errors.Join(domain.ErrPaymentRejected, domain.ErrInsufficientFunds), http.StatusPaymentRequired},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"order not found", domain.ErrOrderNotFound, http.StatusNotFound},
		{"item not found", domain.ErrItemNotFound, http.StatusNotFound},
		{"party not found", domain.ErrPartyNotFound, http.StatusNotFound},
		{"invalid transition", domain.ErrInvalidTransition, http.StatusConflict},
		{"already a seller", domain.ErrAlreadySeller, http.StatusConflict},
		{"not a seller", domain.ErrNotASeller, http.StatusForbidden},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"insufficient stock", domain.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"invalid quantity", domain.ErrInvalidQuantity, http.StatusBadRequest},
		{"invalid name", domain.ErrInvalidName, http.StatusBadRequest},
		{"amount too large", domain.ErrAmountTooLarge, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}
