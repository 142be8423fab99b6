package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/dimitribekale/ai-marketplace/internal/core/domain"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	msgMissingFields = "Missing 'name', 'price', or 'url'"
	msgListed        = "Model listed successfully"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
}

type modelCountResponse struct {
	Status     string   `json:"status"`
	ModelCount *big.Int `json:"modelCount"`
}

type listModelResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Receipt *domain.Receipt `json:"receipt"`
}

// badRequest is a request validation failure; its text is returned to the caller.
type badRequest string

func (e badRequest) Error() string { return string(e) }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	s.log.Info("Health check endpoint was pinged", "connected", report.Connected)

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Connected: report.Connected})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	code := http.StatusOK
	if !report.Connected {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

func (s *Server) handleModelCount(w http.ResponseWriter, r *http.Request) {
	s.log.Info("GET /model-count: Request received")

	count, err := s.chain.ReadCount(r.Context())
	if err != nil {
		s.log.Error("Error in /model-count endpoint", "error", err, "request_id", requestID(r.Context()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, modelCountResponse{Status: statusSuccess, ModelCount: count})
}

func (s *Server) handleListModel(w http.ResponseWriter, r *http.Request) {
	s.log.Info("POST /list-model: Request received")

	listing, err := decodeListing(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.log.Warn("Rejected /list-model request", "error", err, "request_id", requestID(r.Context()))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Once broadcast, the transaction is awaited even if the caller goes away.
	receipt, err := s.chain.SubmitListing(context.WithoutCancel(r.Context()), listing)
	if err != nil {
		s.log.Error("Error in /list-model endpoint", "error", err, "request_id", requestID(r.Context()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, listModelResponse{
		Status:  statusSuccess,
		Message: msgListed,
		Receipt: receipt,
	})
}

// decodeListing validates a {name, price, url} body. Price may be a JSON
// integer or a decimal string and must not be negative.
func decodeListing(body io.Reader) (domain.Listing, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return domain.Listing{}, badRequest(fmt.Sprintf("Invalid JSON body: %v", err))
	}

	rawName, okName := fields["name"]
	rawPrice, okPrice := fields["price"]
	rawURL, okURL := fields["url"]
	if !okName || !okPrice || !okURL {
		return domain.Listing{}, badRequest(msgMissingFields)
	}

	var listing domain.Listing
	if err := decodeString(rawName, &listing.Name); err != nil {
		return domain.Listing{}, badRequest("'name' must be a string")
	}
	if err := decodeString(rawURL, &listing.URL); err != nil {
		return domain.Listing{}, badRequest("'url' must be a string")
	}

	price, err := parsePrice(rawPrice)
	if err != nil {
		return domain.Listing{}, err
	}
	listing.Price = price

	return listing, nil
}

func decodeString(raw json.RawMessage, dst *string) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errors.New("null")
	}
	return json.Unmarshal(raw, dst)
}

func parsePrice(raw json.RawMessage) (*big.Int, error) {
	text := string(bytes.TrimSpace(raw))
	if len(text) > 0 && text[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, badRequest("'price' must be an integer")
		}
	}

	price, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, badRequest("'price' must be an integer")
	}
	if price.Sign() < 0 {
		return nil, badRequest("'price' must not be negative")
	}
	if price.BitLen() > 256 {
		return nil, badRequest("'price' must fit in uint256")
	}
	return price, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Status: statusError, Message: message})
}
