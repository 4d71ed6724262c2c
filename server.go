package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/moonstream-to/collectables/factory"
	"github.com/moonstream-to/collectables/ledger"
)

// Server exposes a factory and its collections over HTTP. Administrative
// operations are performed with the authorizer's address as the caller.
type Server struct {
	Factory    *factory.Factory
	Authorizer ClaimAuthorizer
	Checker    *RPCContractChecker

	validate           *validator.Validate
	log                logrus.FieldLogger
	corsAllowedOrigins []string
	trustProxyHeaders  bool
	limiter            *rateLimiter
}

func NewServer(f *factory.Factory, authorizer ClaimAuthorizer, config *Config, logger logrus.FieldLogger) *Server {
	return &Server{
		Factory:            f,
		Authorizer:         authorizer,
		validate:           validator.New(),
		log:                logger,
		corsAllowedOrigins: config.CORSAllowedOrigins,
		trustProxyHeaders:  config.TrustProxyHeaders,
		limiter:            newRateLimiter(rate.Limit(config.RateLimit), config.RateBurst),
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
}

func newRateLimiter(r rate.Limit, burst int) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*clientLimiter),
		rate:    r,
		burst:   burst,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, client := range rl.clients {
		if now.Sub(client.lastSeen) > 3*time.Minute {
			delete(rl.clients, key)
		}
	}

	client, ok := rl.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter.Allow()
}

// clientIP returns the address the request came from. X-Real-Ip is only
// honoured when the server is configured to sit behind a proxy.
func (server *Server) clientIP(r *http.Request) string {
	if server.trustProxyHeaders {
		if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
			return realIP
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// corsMiddleware handles CORS origin check
func (server *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			for _, allowedOrigin := range server.corsAllowedOrigins {
				if r.Header.Get("Origin") == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
					w.Header().Set("Access-Control-Allow-Methods", "GET,POST")
					// Credentials are cookies, authorization headers, or TLS client certificates
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				}
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(status int) {
	recorder.status = status
	recorder.ResponseWriter.WriteHeader(status)
}

// logMiddleware tags every request with an id and logs it once served
func (server *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)

		server.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     recorder.status,
			"duration":   time.Since(start).Milliseconds(),
			"ip":         server.clientIP(r),
		}).Info("Request processed")
	})
}

func (server *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !server.limiter.allow(server.clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// panicMiddleware handles panic errors to prevent server shutdown
func (server *Server) panicMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				server.log.WithField("panic", err).Error("recovered panic error")
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PingResponse{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeLedgerError maps collection errors to HTTP statuses. Ledger error
// messages carry no secrets and are returned to the client as is.
func (server *Server) writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrUnauthorized),
		errors.Is(err, ledger.ErrNotOwner),
		errors.Is(err, ledger.ErrNotWhitelisted),
		errors.Is(err, ledger.ErrInvalidSignature):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrUnknownToken), errors.Is(err, factory.ErrUnknownCollection):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrIndexOutOfRange), errors.Is(err, ledger.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		server.log.WithError(err).Error("collection operation failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeRequest decodes and validates a JSON body. It writes the error
// response itself and returns false on failure.
func (server *Server) decodeRequest(w http.ResponseWriter, r *http.Request, request interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		writeError(w, http.StatusBadRequest, "Error decoding request")
		return false
	}
	if err := server.validate.Struct(request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (server *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", PingHandler)
	mux.HandleFunc("GET /version", VersionHandler)
	mux.HandleFunc("GET /status", server.StatusHandler)
	mux.HandleFunc("GET /address", server.AddressHandler)

	mux.HandleFunc("POST /collections", server.CreateCollectionHandler)
	mux.HandleFunc("GET /collections", server.ListCollectionsHandler)
	mux.HandleFunc("GET /collections/{index}", server.CollectionHandler)
	mux.HandleFunc("GET /collections/{index}/events", server.EventsHandler)
	mux.HandleFunc("POST /collections/{index}/mint", server.MintHandler)
	mux.HandleFunc("POST /collections/{index}/batch_mint", server.BatchMintHandler)
	mux.HandleFunc("POST /collections/{index}/burn", server.BurnHandler)
	mux.HandleFunc("GET /collections/{index}/tokens/{tokenID}", server.TokenHandler)
	mux.HandleFunc("GET /collections/{index}/owners/{address}/tokens", server.OwnerTokensHandler)
	mux.HandleFunc("GET /collections/{index}/royalty/{tokenID}", server.RoyaltyHandler)
	mux.HandleFunc("POST /collections/{index}/create_message_hash", server.CreateMessageHashHandler)
	mux.HandleFunc("POST /collections/{index}/authorize", server.AuthorizeHandler)
	mux.HandleFunc("POST /collections/{index}/claim", server.ClaimHandler)

	mux.HandleFunc("POST /collections/{index}/approve", server.ApproveHandler)
	mux.HandleFunc("POST /collections/{index}/set_approval_for_all", server.SetApprovalForAllHandler)
	mux.HandleFunc("POST /collections/{index}/transfer_from", server.TransferFromHandler)
	mux.HandleFunc("POST /collections/{index}/transfer_token_ownership", server.TransferTokenOwnershipHandler)
	mux.HandleFunc("GET /collections/{index}/owners/{address}/tokens/{position}", server.TokenOfOwnerByIndexHandler)
	mux.HandleFunc("GET /collections/{index}/owners/{address}/operators/{operator}", server.OperatorApprovalHandler)

	mux.HandleFunc("GET /collections/{index}/authorized", server.MintersHandler)
	mux.HandleFunc("GET /collections/{index}/authorized/{address}", server.AuthorizedHandler)
	mux.HandleFunc("POST /collections/{index}/add_authorized", server.AddAuthorizedHandler())
	mux.HandleFunc("POST /collections/{index}/remove_authorized", server.RemoveAuthorizedHandler())
	mux.HandleFunc("POST /collections/{index}/transfer_ownership", server.TransferOwnershipHandler)
	mux.HandleFunc("GET /collections/{index}/whitelist/{address}", server.WhitelistHandler)
	mux.HandleFunc("POST /collections/{index}/add_address", server.AddAddressHandler())
	mux.HandleFunc("POST /collections/{index}/remove_address", server.RemoveAddressHandler())
	mux.HandleFunc("POST /collections/{index}/set_default_royalty", server.SetDefaultRoyaltyHandler)
	mux.HandleFunc("POST /collections/{index}/delete_default_royalty", server.DeleteDefaultRoyaltyHandler)
	mux.HandleFunc("POST /collections/{index}/set_token_royalty", server.SetTokenRoyaltyHandler)
	mux.HandleFunc("POST /collections/{index}/reset_token_royalty", server.ResetTokenRoyaltyHandler)

	// Set middleware, from bottom to top
	commonHandler := server.corsMiddleware(mux)
	commonHandler = server.rateLimitMiddleware(commonHandler)
	commonHandler = server.logMiddleware(commonHandler)
	commonHandler = server.panicMiddleware(commonHandler)

	return commonHandler
}

// RunServer serves the API until ctx is cancelled.
func RunServer(ctx context.Context, config *Config, logger *logrus.Logger) error {
	privateKey, err := SigningKeyFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("failed to load signing key, err: %v", err)
	}
	authorizer := NewKeyAuthorizer(privateKey)

	checkers := AnyContract{ledger.NewStaticContracts(config.KnownContracts...)}
	var rpcChecker *RPCContractChecker
	if config.HTTPProviderURL != "" {
		rpcChecker, err = NewRPCContractChecker(ctx, config.HTTPProviderURL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to %s, err: %v", config.HTTPProviderURL, err)
		}
		defer rpcChecker.Web3Client.Close()
		checkers = append(checkers, rpcChecker)
	}

	f := factory.New(config.FactoryAddress, logger,
		ledger.WithContractChecker(checkers),
		ledger.WithEventSink(ledger.LogSink{Logger: logger}),
	)

	server := NewServer(f, authorizer, config, logger)
	server.Checker = rpcChecker

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.Handler(),
		ReadTimeout:  40 * time.Second,
		WriteTimeout: 40 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.WithFields(logrus.Fields{
		"address":  authorizer.Address().Hex(),
		"factory":  config.FactoryAddress.Hex(),
		"listener": httpServer.Addr,
	}).Info("Starting collectables server")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server listener, err: %v", err)
	}
	return nil
}
