package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"office-ledger/internal/config"
	"office-ledger/internal/domain"
	"office-ledger/internal/events"
	"office-ledger/internal/events/kafka"
	"office-ledger/internal/handler"
	"office-ledger/internal/repository"
	"office-ledger/internal/service"
)

// Server wires the configured store backend, the event publisher and the
// HTTP surface together.
type Server struct {
	router     *mux.Router
	server     *http.Server
	store      domain.Store
	closeStore func() error
	publisher  events.Publisher
	logger     *slog.Logger
	port       string
}

func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, closeStore, err := repository.NewStoreFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Ledger store ready", "backend", cfg.Backend)

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("Kafka publisher enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	accountService := service.NewAccountService(store, logger)
	ledgerService := service.NewLedgerService(store, publisher, logger)

	accountHandler := handler.NewAccountHandler(accountService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	reportHandler := handler.NewReportHandler(ledgerService, accountService, logger)

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	// Account routes
	router.HandleFunc("/accounts", accountHandler.CreateAccount).Methods("POST")
	router.HandleFunc("/accounts/{account_id}", accountHandler.GetAccount).Methods("GET")
	router.HandleFunc("/accounts/{account_id}/balance", ledgerHandler.GetBalance).Methods("GET")
	router.HandleFunc("/accounts/{account_id}/entries", ledgerHandler.ListEntries).Methods("GET")
	router.HandleFunc("/accounts/{account_id}/report.csv", reportHandler.AccountReport).Methods("GET")

	// Ledger routes
	router.HandleFunc("/expenses", ledgerHandler.RecordExpense).Methods("POST")
	router.HandleFunc("/deposits", ledgerHandler.RecordDeposit).Methods("POST")

	// Admin routes
	router.HandleFunc("/admin/credits", ledgerHandler.AdminCredit).Methods("POST")
	router.HandleFunc("/admin/accounts", ledgerHandler.ListAccounts).Methods("GET")
	router.HandleFunc("/admin/entries", ledgerHandler.ListAllEntries).Methods("GET")
	router.HandleFunc("/admin/report.csv", reportHandler.AdminReport).Methods("GET")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.Accounts().ListAccounts(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "ledger store unavailable"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	return &Server{
		router:     router,
		store:      store,
		closeStore: closeStore,
		publisher:  publisher,
		logger:     logger,
	}, nil
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration", time.Since(start),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start begins serving on the given port; port "0" lets the OS choose.
func (s *Server) Start(port string) (string, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed", "error", err)
		}
	}()

	return s.port, nil
}

// Stop gracefully shuts down the server and releases the store and
// publisher.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if err := s.publisher.Close(); err != nil {
		s.logger.Warn("Failed to close event publisher", "error", err)
	}
	if err := s.closeStore(); err != nil {
		s.logger.Warn("Failed to close ledger store", "error", err)
	}

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) GetPort() string {
	return s.port
}

func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// StartServer starts the server with the given configuration
func StartServer(cfg *config.Config) (*Server, string, error) {
	var logger *slog.Logger
	if cfg.ServerPort == "0" {
		// Test environment - keep output quiet
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	srv, err := NewServer(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	port, err := srv.Start(cfg.ServerPort)
	if err != nil {
		return nil, "", err
	}

	return srv, port, nil
}
