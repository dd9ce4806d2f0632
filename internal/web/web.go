// Package web serves the board status and control API.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"atlasboard/internal/board"
	"atlasboard/internal/config"
	appLog "atlasboard/internal/log"
	"atlasboard/internal/onenand"
	"atlasboard/internal/pinctrl"
	"atlasboard/internal/pmic"
)

// Server exposes a Board over HTTP.
type Server struct {
	cfg   *config.Config
	board *board.Board
	r     *mux.Router
}

// NewServer constructs a Server for b.
func NewServer(cfg *config.Config, b *board.Board) *Server {
	s := &Server{
		cfg:   cfg,
		board: b,
		r:     mux.NewRouter(),
	}
	s.registerRoutes(s.r)
	return s
}

// Handler returns the router, wrapped in basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.r)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="atlasboard", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/board", s.handleBoard).Methods("GET")
	r.HandleFunc("/api/panel", s.handlePanel).Methods("GET")
	r.HandleFunc("/api/panel/suspend", s.handlePanelOp(s.board.EarlySuspend)).Methods("POST")
	r.HandleFunc("/api/panel/resume", s.handlePanelOp(s.board.LateResume)).Methods("POST")
	r.HandleFunc("/api/panel/reset", s.handlePanelOp(s.board.ResetPanel)).Methods("POST")
	r.HandleFunc("/api/gamma", s.handleGamma).Methods("GET")
	r.HandleFunc("/api/gamma/calibration", s.handleCalibration).Methods("GET")
	r.HandleFunc("/api/partitions", s.handlePartitions).Methods("GET")
	r.HandleFunc("/api/partitions/{name}", s.handlePartition).Methods("GET")
	r.HandleFunc("/api/regulators", s.handleRegulators).Methods("GET")
	r.HandleFunc("/api/regulators/{id}", s.handleRegulator).Methods("GET")
	r.HandleFunc("/api/temperature", s.handleTemperature).Methods("GET")
	r.HandleFunc("/api/charger/cable", s.handleCable).Methods("GET", "POST")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Status())
}

func (s *Server) handlePanel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.board.PanelStatus())
}

// handlePanelOp runs a lifecycle operation and answers with the panel
// status. Busy lines map to 409.
func (s *Server) handlePanelOp(op func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := op(); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, pinctrl.ErrBusy) {
				status = http.StatusConflict
			}
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.board.PanelStatus())
	}
}

func (s *Server) handleGamma(w http.ResponseWriter, r *http.Request) {
	v, err := strconv.ParseUint(r.URL.Query().Get("index"), 0, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an unsigned 32-bit integer")
		return
	}
	writeJSON(w, http.StatusOK, s.board.Gamma(uint32(v)))
}

func (s *Server) handleCalibration(w http.ResponseWriter, r *http.Request) {
	var br *uint8
	if q := r.URL.Query().Get("brightness"); q != "" {
		v, err := strconv.ParseUint(q, 10, 8)
		if err != nil {
			writeError(w, http.StatusBadRequest, "brightness must be 0..255")
			return
		}
		b := uint8(v)
		br = &b
	}
	writeJSON(w, http.StatusOK, s.board.Calibration(br))
}

type partitionsResponse struct {
	MTDParts   string         `json:"mtdparts"`
	Partitions onenand.Layout `json:"partitions"`
}

func (s *Server) handlePartitions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, partitionsResponse{
		MTDParts:   s.board.MTDParts(),
		Partitions: s.board.Partitions(),
	})
}

func (s *Server) handlePartition(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	p, ok := s.board.Partitions().ByName(name)
	if !ok {
		writeError(w, http.StatusNotFound, "no partition "+strconv.Quote(name))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRegulators(w http.ResponseWriter, r *http.Request) {
	regs := s.board.Regulators()
	if supply := r.URL.Query().Get("supply"); supply != "" {
		regs = pmic.Consumers(regs, supply, r.URL.Query().Get("device"))
	}
	writeJSON(w, http.StatusOK, regs)
}

func (s *Server) handleRegulator(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	reg, ok := pmic.Find(s.board.Regulators(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "no regulator "+strconv.Quote(id))
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

type temperatureResponse struct {
	ADC     int     `json:"adc"`
	DeciC   int     `json:"temp_decic"`
	Celsius float64 `json:"celsius"`
}

func (s *Server) handleTemperature(w http.ResponseWriter, r *http.Request) {
	adc, err := strconv.Atoi(r.URL.Query().Get("adc"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "adc must be an integer")
		return
	}
	t := s.board.Temperature(adc)
	writeJSON(w, http.StatusOK, temperatureResponse{ADC: adc, DeciC: t, Celsius: float64(t) / 10})
}

type cableRequest struct {
	Cable string `json:"cable"`
}

type cableResponse struct {
	Cable pmic.Cable `json:"cable"`
}

func (s *Server) handleCable(w http.ResponseWriter, r *http.Request) {
	ch := s.board.Charger()
	if r.Method == http.MethodPost {
		var req cableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		c, err := pmic.ParseCable(req.Cable)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ch.Publish(c)
	}
	writeJSON(w, http.StatusOK, cableResponse{Cable: ch.Status()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
