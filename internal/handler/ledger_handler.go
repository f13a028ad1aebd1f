package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"office-ledger/internal/domain"
	"office-ledger/internal/errors"
	"office-ledger/internal/service"
)

type LedgerHandler struct {
	ledgerService *service.LedgerService
}

func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

type RecordExpenseRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Mode        string `json:"mode"`
}

type RecordDepositRequest struct {
	Amount string `json:"amount"`
}

type AdminCreditRequest struct {
	TargetAccountID string `json:"target_account_id"`
	Amount          string `json:"amount"`
}

type EntryResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Mode        string `json:"mode"`
	OccurredAt  string `json:"occurred_at"`
}

type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

func toEntryResponse(entry *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:          entry.ID.String(),
		AccountID:   entry.AccountID.String(),
		Kind:        string(entry.Kind),
		Amount:      entry.Amount.String(),
		Description: entry.Description,
		Category:    string(entry.Category),
		Mode:        string(entry.Mode),
		OccurredAt:  entry.OccurredAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func toEntryResponses(entries []domain.LedgerEntry) []EntryResponse {
	responses := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, toEntryResponse(&entries[i]))
	}
	return responses
}

func (h *LedgerHandler) RecordExpense(w http.ResponseWriter, r *http.Request) {
	actor, appErr := actorID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req RecordExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid request body"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid amount format"))
		return
	}

	entry, err := h.ledgerService.RecordExpense(&service.ExpenseRequest{
		AccountID:   actor,
		Description: req.Description,
		Amount:      amount,
		Category:    domain.Category(req.Category),
		Mode:        domain.Mode(req.Mode),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *LedgerHandler) RecordDeposit(w http.ResponseWriter, r *http.Request) {
	actor, appErr := actorID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req RecordDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid request body"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid amount format"))
		return
	}

	entry, err := h.ledgerService.RecordDeposit(actor, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *LedgerHandler) AdminCredit(w http.ResponseWriter, r *http.Request) {
	actor, appErr := actorID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req AdminCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid request body"))
		return
	}

	target, err := uuid.Parse(req.TargetAccountID)
	if err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid target_account_id"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid amount format"))
		return
	}

	entry, err := h.ledgerService.AdminCredit(actor, target, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	actor, appErr := actorID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["account_id"])
	if err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid account id"))
		return
	}

	balance, err := h.ledgerService.GetBalance(actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{AccountID: id.String(), Balance: balance.String()})
}

func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	actor, appErr := actorID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["account_id"])
	if err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid account id"))
		return
	}

	entries, err := h.ledgerService.ListEntries(actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponses(entries))
}

func (h *LedgerHandler) ListAllEntries(w http.ResponseWriter, r *http.Request) {
	actor, appErr := actorID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	entries, err := h.ledgerService.ListAllEntries(actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponses(entries))
}

func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	actor, appErr := actorID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	accounts, err := h.ledgerService.ListAccounts(actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, toAccountResponse(&accounts[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}
