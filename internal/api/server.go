// Package api exposes the agent over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"memex-agent/internal/domain"
	"memex-agent/internal/eventlog"
	"memex-agent/internal/executor"
	"memex-agent/internal/pipeline"
	"memex-agent/internal/storage"
)

// endpoints advertised by the health payload.
var endpoints = []string{
	"/api/analyze", "/api/scan", "/api/whales",
	"/api/portfolio", "/api/trade", "/api/copy", "/api/logs",
}

// Server holds the HTTP handlers for the agent API.
type Server struct {
	pipe      *pipeline.Pipeline
	events    *eventlog.Log
	agentName string
	wallet    string
	gateway   string
	startedAt time.Time
}

// NewServer creates the API server over a pipeline.
func NewServer(pipe *pipeline.Pipeline, events *eventlog.Log, agentName, wallet string) *Server {
	return &Server{
		pipe:      pipe,
		events:    events,
		agentName: agentName,
		wallet:    wallet,
		gateway:   "disabled",
		startedAt: time.Now(),
	}
}

// SetGateway records the connected gateway endpoint for the health payload.
func (s *Server) SetGateway(endpoint string) {
	if endpoint != "" {
		s.gateway = endpoint
	}
}

// Router builds the request mux.
func (s *Server) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/whales", s.handleWhales)
	mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /api/logs", s.handleLogs)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/trade", s.handleTrade)
	mux.HandleFunc("POST /api/copy", s.handleCopy)
	return mux
}

// healthResponse is the health payload.
type healthResponse struct {
	Agent         string   `json:"agent"`
	Wallet        string   `json:"wallet"`
	Gateway       string   `json:"gateway"`
	Status        string   `json:"status"`
	UptimeSeconds int64    `json:"uptime"`
	Endpoints     []string `json:"endpoints"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Agent:         s.agentName,
		Wallet:        s.wallet,
		Gateway:       s.gateway,
		Status:        "online",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Endpoints:     endpoints,
	})
}

type scanResponse struct {
	Count   int                      `json:"count"`
	Results []*domain.TokenCandidate `json:"results"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	results := s.pipe.MomentumScan(r.Context(), limit)
	writeJSON(w, http.StatusOK, scanResponse{Count: len(results), Results: results})
}

type whalesResponse struct {
	Count   int                   `json:"count"`
	Signals []*domain.WhaleSignal `json:"signals"`
}

func (s *Server) handleWhales(w http.ResponseWriter, r *http.Request) {
	signals := s.pipe.WhaleScan(r.Context())
	writeJSON(w, http.StatusOK, whalesResponse{Count: len(signals), Signals: signals})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipe.Portfolio(r.Context()))
}

type logsResponse struct {
	Logs []string `json:"logs"`
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, logsResponse{Logs: s.events.Recent()})
}

type analyzeRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	candidate, err := s.pipe.Analyze(r.Context(), req.Token)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidate)
}

type tradeRequest struct {
	Token  string  `json:"token"`
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
}

// tradeResponse mirrors the trade outcome shape task-gateway clients expect.
type tradeResponse struct {
	Success bool                `json:"success"`
	Trade   *domain.TradeRecord `json:"trade,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tradeType := domain.TradeTypeBuy
	if req.Type != "" {
		tradeType = domain.ParseTradeType(req.Type)
	}

	trade, err := s.pipe.ExecuteTrade(r.Context(), req.Token, req.Symbol, req.Amount, tradeType)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tradeResponse{Success: true, Trade: trade})
}

type copyRequest struct {
	TargetAddress string  `json:"targetAddress"`
	Percentage    float64 `json:"percentage"`
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	trade, err := s.pipe.CopyTrade(r.Context(), req.TargetAddress, req.Percentage)
	if errors.Is(err, executor.ErrNoBuySignal) {
		// A target without a buy signal is a normal outcome, not a
		// request failure.
		writeJSON(w, http.StatusOK, tradeResponse{Success: false, Error: "No buy signal"})
		return
	}
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tradeResponse{Success: true, Trade: trade})
}

// decodeBody parses a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeStorageError maps domain errors to HTTP status codes.
func writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
