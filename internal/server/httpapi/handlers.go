package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/cloudbank/internal/common"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps the size of a transfer request body.
const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
	TransID string `json:"trans_id,omitempty"`
}

type listResponse struct {
	Transactions []*models.Transaction `json:"transactions"`
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.TransferRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.logger.Warn(ctx, "undecodable transfer body", "error", err)
		writeMessage(w, http.StatusBadRequest, common.ErrInvalidPayload.Error())
		return
	}

	id, err := s.transfers.Transfer(ctx, PrincipalFromContext(ctx), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "Transaction completed", TransID: id})
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tx, err := s.queries.GetTransaction(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "trans_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	txs, err := s.queries.ListTransactions(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "username"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []*models.Transaction{}
	}

	writeJSON(w, http.StatusOK, listResponse{Transactions: txs})
}

// publicErrors are the errors whose text may be shown to callers.
var publicErrors = []error{
	common.ErrSenderNotFound,
	common.ErrReceiverNotFound,
	common.ErrInvalidSender,
	common.ErrInvalidPayload,
	common.ErrSelfTransfer,
	common.ErrInvalidPIN,
	common.ErrInsufficientBalance,
	common.ErrTransferFailed,
	common.ErrTransactionNotFound,
	common.ErrorForbidden,
}

// StatusFor maps a service error to its HTTP status code.
func StatusFor(err error) int {
	switch common.KindOf(err) {
	case common.KindNone:
		return http.StatusOK
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindUnauthorized, common.KindInvalidCredential:
		return http.StatusUnauthorized
	case common.KindForbidden:
		return http.StatusForbidden
	case common.KindInvalidRequest, common.KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	for _, e := range publicErrors {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	if common.KindOf(err) == common.KindUnauthorized {
		return "Unauthorized"
	}
	return "Internal server error"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeMessage(w, status, publicMessage(err))
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
