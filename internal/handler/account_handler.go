package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"office-ledger/internal/domain"
	"office-ledger/internal/errors"
	"office-ledger/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type CreateAccountRequest struct {
	Username       string `json:"username"`
	Role           string `json:"role,omitempty"`
	InitialBalance string `json:"initial_balance,omitempty"`
}

type AccountResponse struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Balance   string `json:"balance"`
}

func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: account.ID.String(),
		Username:  account.Username,
		Role:      string(account.Role),
		Balance:   account.Balance.String(),
	}
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid request body"))
		return
	}

	initialBalance := decimal.Zero
	if req.InitialBalance != "" {
		parsed, err := decimal.NewFromString(req.InitialBalance)
		if err != nil {
			writeError(w, errors.NewAppError(errors.ValidationError, "invalid initial_balance format"))
			return
		}
		initialBalance = parsed
	}

	account, err := h.accountService.CreateAccount(req.Username, domain.Role(req.Role), initialBalance)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	actor, appErr := actorID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	vars := mux.Vars(r)

	account, err := h.accountService.GetAccount(actor, vars["account_id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}
