package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fishmarket/internal/ledger"
	"fishmarket/internal/log"
)

// Server is the JSON API over the ledger service.
type Server struct {
	http.Server
	svc          *ledger.Service
	logger       *log.Logger
	rateLimiter  *rateLimiter
	readyCheck   func(ctx context.Context) error
	shutdownOnce sync.Once
}

// NewServer configures all routes and returns a ready-to-run server.
// readyCheck gates /readyz; nil means always ready.
func NewServer(addr string, svc *ledger.Service, logger *log.Logger, readyCheck func(ctx context.Context) error) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:         svc,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(),
		readyCheck:  readyCheck,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /customers", s.with(s.handleCreateCustomer))
	mux.HandleFunc("GET /customers", s.with(s.handleListCustomers))
	mux.HandleFunc("GET /customers/{id}", s.with(s.handleGetCustomer))
	mux.HandleFunc("PUT /customers/{id}", s.with(s.handleUpdateCustomer))
	mux.HandleFunc("GET /customers/{id}/balance", s.with(s.handleCustomerBalance))

	mux.HandleFunc("POST /farmers", s.with(s.handleCreateFarmer))
	mux.HandleFunc("GET /farmers", s.with(s.handleListFarmers))
	mux.HandleFunc("GET /farmers/{id}", s.with(s.handleGetFarmer))
	mux.HandleFunc("PUT /farmers/{id}", s.with(s.handleUpdateFarmer))
	mux.HandleFunc("GET /farmers/{id}/balance", s.with(s.handleFarmerBalance))

	mux.HandleFunc("POST /fish-categories", s.with(s.handleCreateCategory))
	mux.HandleFunc("GET /fish-categories", s.with(s.handleListCategories))
	mux.HandleFunc("PUT /fish-categories/{id}", s.with(s.handleUpdateCategory))
	mux.HandleFunc("PATCH /fish-categories/{id}/active", s.with(s.handleSetCategoryActive))

	mux.HandleFunc("POST /sales", s.with(s.handleRecordSale))
	mux.HandleFunc("GET /sales", s.with(s.handleListSales))
	mux.HandleFunc("GET /sales/{id}", s.with(s.handleGetSale))
	mux.HandleFunc("PATCH /sales/{id}", s.with(s.handleUpdateSale))
	mux.HandleFunc("POST /sales/{id}/void", s.with(s.handleVoidSale))

	mux.HandleFunc("POST /purchases", s.with(s.handleRecordPurchase))
	mux.HandleFunc("GET /purchases", s.with(s.handleListPurchases))
	mux.HandleFunc("GET /purchases/{id}", s.with(s.handleGetPurchase))
	mux.HandleFunc("PATCH /purchases/{id}", s.with(s.handleUpdatePurchase))
	mux.HandleFunc("POST /purchases/{id}/void", s.with(s.handleVoidPurchase))

	mux.HandleFunc("GET /reports/daily", s.with(s.handleDailyReport))
	mux.HandleFunc("GET /reports/range", s.with(s.handleRangeReport))
	mux.HandleFunc("GET /dashboard", s.with(s.handleDashboard))

	return s
}

// with adds security headers, rate limiting and request logging.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		logger := s.logger.With(log.FieldRequestID, requestID)
		ctx := log.WithLogger(r.Context(), logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		// writes are the expensive path; reads stay unthrottled
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readyCheck != nil {
		if err := s.readyCheck(r.Context()); err != nil {
			s.logger.ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter cleanup goroutine and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
