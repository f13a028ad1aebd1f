package handler

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"office-ledger/internal/domain"
	"office-ledger/internal/errors"
	"office-ledger/internal/service"
)

// ReportHandler renders ledger activity as downloadable CSV, one report per
// account plus an all-accounts report for admins.
type ReportHandler struct {
	ledgerService  *service.LedgerService
	accountService *service.AccountService
	logger         *slog.Logger
}

func NewReportHandler(ledgerService *service.LedgerService, accountService *service.AccountService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		ledgerService:  ledgerService,
		accountService: accountService,
		logger:         logger,
	}
}

func (h *ReportHandler) AccountReport(w http.ResponseWriter, r *http.Request) {
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
	sortEntriesOldestFirst(entries)

	account, err := h.accountService.GetAccount(actor, id.String())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("report-%s-%s.csv", account.Username, time.Now().UTC().Format("2006-01-02"))
	beginCSV(w, filename)

	cw := csv.NewWriter(w)
	cw.Write([]string{"S.No", "Date", "Timestamp", "Description", "Category", "Type", "Amount", "Mode"})
	for i, entry := range entries {
		cw.Write([]string{
			fmt.Sprintf("%d", i+1),
			entry.OccurredAt.Format("2006-01-02"),
			entry.OccurredAt.Format("15:04:05"),
			entry.Description,
			string(entry.Category),
			string(entry.Kind),
			entry.Amount.String(),
			string(entry.Mode),
		})
	}
	h.finishCSV(cw, "account", account.ID.String())
}

func (h *ReportHandler) AdminReport(w http.ResponseWriter, r *http.Request) {
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
	usernames := make(map[uuid.UUID]string, len(accounts))
	for _, account := range accounts {
		usernames[account.ID] = account.Username
	}

	entries, err := h.ledgerService.ListAllEntries(actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sortEntriesOldestFirst(entries)

	filename := fmt.Sprintf("report-all-%s.csv", time.Now().UTC().Format("2006-01-02"))
	beginCSV(w, filename)

	cw := csv.NewWriter(w)
	cw.Write([]string{"Transaction ID", "Date", "Timestamp", "Username", "Description", "Category", "Type", "Amount", "Mode"})
	for _, entry := range entries {
		cw.Write([]string{
			entry.ID.String(),
			entry.OccurredAt.Format("2006-01-02"),
			entry.OccurredAt.Format("15:04:05"),
			usernames[entry.AccountID],
			entry.Description,
			string(entry.Category),
			string(entry.Kind),
			entry.Amount.String(),
			string(entry.Mode),
		})
	}
	h.finishCSV(cw, "admin", actor.String())
}

// finishCSV flushes the report body. The status line has already gone out,
// so a write failure can only be logged, not reported to the client.
func (h *ReportHandler) finishCSV(cw *csv.Writer, report, subject string) {
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("Failed to write CSV report", "report", report, "subject", subject, "error", err)
	}
}

func beginCSV(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}

func sortEntriesOldestFirst(entries []domain.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.Before(entries[j].OccurredAt)
	})
}
