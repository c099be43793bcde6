package handler

import (
	"strconv"
	"time"

	"ledger-service/internal/adapter/http/dto"
	"ledger-service/internal/core/domain"
	"ledger-service/internal/core/ports"
	"ledger-service/pkg/apperror"
	"ledger-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles transaction and statement endpoints.
type LedgerHandler struct {
	ledgerSvc    ports.LedgerService
	statementSvc ports.StatementService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService, statementSvc ports.StatementService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, statementSvc: statementSvc}
}

// ApplyTransaction handles POST /api/v1/clients/:id/transactions.
func (h *LedgerHandler) ApplyTransaction(c *gin.Context) {
	accountID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrAccountNotFound())
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrValidation(err.Error()))
		return
	}

	amount, err := req.AmountInt64()
	if err != nil {
		response.Error(c, apperror.ErrValidation("amount must be a positive integer"))
		return
	}

	result, err := h.ledgerSvc.Apply(c.Request.Context(), ports.ApplyRequest{
		AccountID:   accountID,
		Amount:      amount,
		Kind:        req.EntryKind(),
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TransactionResponse{
		Limit:   result.Limit,
		Balance: result.Balance,
	})
}

// GetStatement handles GET /api/v1/clients/:id/statement.
func (h *LedgerHandler) GetStatement(c *gin.Context) {
	accountID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrAccountNotFound())
		return
	}

	statement, err := h.statementSvc.Statement(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toStatementResponse(statement))
}

// toStatementResponse converts ports.Statement to DTO.
func toStatementResponse(s *ports.Statement) dto.StatementResponse {
	entries := make([]dto.JournalEntryResponse, 0, len(s.RecentEntries))
	for _, e := range s.RecentEntries {
		entries = append(entries, toJournalEntryResponse(e))
	}
	return dto.StatementResponse{
		Balance: dto.StatementBalanceResponse{
			Total: s.Balance.Total,
			Limit: s.Balance.Limit,
			AsOf:  s.Balance.AsOf.Format(time.RFC3339Nano),
		},
		RecentEntries: entries,
	}
}

func toJournalEntryResponse(e domain.JournalEntry) dto.JournalEntryResponse {
	return dto.JournalEntryResponse{
		Amount:      e.Amount,
		Kind:        string(e.Kind),
		Description: e.Description,
		OccurredAt:  e.OccurredAt.Format(time.RFC3339Nano),
	}
}
