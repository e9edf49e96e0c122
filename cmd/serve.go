package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/clearsight-health/riskscore/internal/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the risk scoring HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, s, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newRouter(eng, cfg.Server.RateLimitRPS, cfg.Server.RateBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("serve: listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("serve: shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newRouter(eng *engine.Engine, rps float64, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if rps > 0 {
		r.Use(rateLimit(rps, burst))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/questions", func(w http.ResponseWriter, req *http.Request) {
			questions, err := eng.Catalog(req.Context())
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
				return
			}
			writeJSON(w, http.StatusOK, questions)
		})

		r.Get("/advice-bands", func(w http.ResponseWriter, req *http.Request) {
			bands, err := eng.AdviceBands(req.Context())
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, "advice bands unavailable")
				return
			}
			writeJSON(w, http.StatusOK, bands)
		})

		r.Post("/assessments", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Answers map[string]string `json:"answers"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			if len(body.Answers) == 0 {
				writeError(w, http.StatusBadRequest, "answers is required")
				return
			}
			result := eng.CalculateRiskScore(req.Context(), body.Answers)
			writeJSON(w, http.StatusOK, result)
		})
	})

	return r
}

// maxTrackedClients bounds the per-IP limiter map so a churn of distinct
// client addresses cannot grow it without limit.
const maxTrackedClients = 8192

// clientLimiters hands out one token bucket per client IP. When the map hits
// its cap it is dropped wholesale; evicted clients simply start with a fresh
// burst allowance.
type clientLimiters struct {
	rps        float64
	burst      int
	maxClients int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{
		rps:        rps,
		burst:      burst,
		maxClients: maxTrackedClients,
		limiters:   make(map[string]*rate.Limiter),
	}
}

func (c *clientLimiters) get(ip string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[ip]
	if !ok {
		if len(c.limiters) >= c.maxClients {
			c.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rate.Limit(c.rps), c.burst)
		c.limiters[ip] = l
	}
	return l
}

// rateLimit enforces a per-client token bucket keyed by remote IP.
func rateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	clients := newClientLimiters(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !clients.get(ip).Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("serve: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
