// Package simulator implements enough of the LG NetCast protocol to
// pair against and drive without a TV on the network. It backs the
// simulate CLI command and the end-to-end tests.
package simulator

import (
	"crypto/subtle"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/wokar/lgnetcast/internal/logger"
	"github.com/wokar/lgnetcast/internal/netcast"
)

const contentTypeXML = "application/atom+xml"

// ChannelChange records a HandleChannelChange command the simulator
// accepted.
type ChannelChange struct {
	Major       int
	Minor       int
	SourceIndex int
	PhysicalNum int
}

// Simulator is a mock NetCast TV. It serves the auth, command and data
// endpoints for both protocol generations and records what it was told
// to do so tests and demos can inspect it.
type Simulator struct {
	config   *Config
	sessions *sessionStore
	logger   zerolog.Logger
	server   *http.Server

	mu          sync.Mutex
	keyDisplays int
	keyPresses  []int
	channels    []ChannelChange
}

// New creates a simulator from the given configuration.
func New(config *Config) *Simulator {
	if config == nil {
		config = NewDefaultConfig()
	}

	return &Simulator{
		config:   config,
		sessions: newSessionStore(config.MaxSessions, config.SessionExpiry()),
		logger:   logger.Component("simulator"),
	}
}

// Router builds the HTTP routes. HDCP firmware multiplexes auth and
// data through dtv_wifirc, so those paths share handlers with the
// dedicated ROAP endpoints.
func (s *Simulator) Router() *mux.Router {
	router := mux.NewRouter()

	// Add middleware
	router.Use(s.loggingMiddleware)

	router.HandleFunc("/roap/api/auth", s.handleAuth).Methods("POST")
	router.HandleFunc("/roap/api/command", s.handleCommand).Methods("POST")
	router.HandleFunc("/roap/api/data", s.handleData).Methods("GET")

	router.HandleFunc("/hdcp/api/dtv_wifirc", s.handleAuth).Methods("POST")
	router.HandleFunc("/hdcp/api/dtv_wifirc", s.handleData).Methods("GET")
	router.HandleFunc("/hdcp/api/command", s.handleCommand).Methods("POST")

	return router
}

// Start starts the simulator HTTP server
func (s *Simulator) Start(address string) error {
	s.server = &http.Server{
		Addr:         address,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().
		Str("address", address).
		Str("pairing_key", s.config.PairingKey).
		Msg("Starting TV simulator")

	return s.server.ListenAndServe()
}

// Stop stops the simulator HTTP server
func (s *Simulator) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// Middleware
func (s *Simulator) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Simulator request")
	})
}

type authRequest struct {
	XMLName xml.Name `xml:"auth"`
	Type    string   `xml:"type"`
	Value   string   `xml:"value"`
}

type commandRequest struct {
	XMLName     xml.Name `xml:"command"`
	Session     string   `xml:"session"`
	Type        string   `xml:"type"`
	Value       string   `xml:"value"`
	Major       int      `xml:"major"`
	Minor       int      `xml:"minor"`
	SourceIndex int      `xml:"sourceIndex"`
	PhysicalNum int      `xml:"physicalNum"`
}

func (s *Simulator) handleAuth(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	var req authRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid auth request")
		return
	}

	switch req.Type {
	case "AuthKeyReq":
		s.mu.Lock()
		s.keyDisplays++
		s.mu.Unlock()

		s.logger.Info().
			Str("pairing_key", s.config.PairingKey).
			Msg("Pairing key displayed on screen")
		s.sendEnvelope(w, http.StatusOK, "")

	case "AuthReq":
		if subtle.ConstantTimeCompare([]byte(req.Value), []byte(s.config.PairingKey)) != 1 {
			s.logger.Warn().Msg("Pairing attempt with wrong key")
			s.sendError(w, http.StatusUnauthorized, "wrong pairing key")
			return
		}
		session := s.sessions.Mint()
		s.logger.Info().
			Str("session", session).
			Msg("Client paired")
		s.sendEnvelope(w, http.StatusOK, "<session>"+session+"</session>")

	default:
		s.sendError(w, http.StatusBadRequest, fmt.Sprintf("unknown auth type %q", req.Type))
	}
}

func (s *Simulator) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	var req commandRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid command request")
		return
	}

	if !s.sessions.Valid(req.Session) {
		s.sendError(w, http.StatusUnauthorized, "unknown session")
		return
	}

	switch req.Type {
	case "HandleKeyInput":
		code, err := strconv.Atoi(req.Value)
		if err != nil {
			s.sendError(w, http.StatusBadRequest, "key value is not numeric")
			return
		}
		s.mu.Lock()
		s.keyPresses = append(s.keyPresses, code)
		s.mu.Unlock()

		s.logger.Info().
			Int("code", code).
			Msg("Key press received")
		s.sendEnvelope(w, http.StatusOK, "")

	case "HandleChannelChange":
		change := ChannelChange{
			Major:       req.Major,
			Minor:       req.Minor,
			SourceIndex: req.SourceIndex,
			PhysicalNum: req.PhysicalNum,
		}
		s.mu.Lock()
		s.channels = append(s.channels, change)
		s.mu.Unlock()

		s.logger.Info().
			Int("major", change.Major).
			Int("minor", change.Minor).
			Msg("Channel change received")
		s.sendEnvelope(w, http.StatusOK, "")

	case "HandleTouchMove", "HandleTouchClick", "HandleTouchWheel":
		// Accepted but not modelled
		s.sendEnvelope(w, http.StatusOK, "")

	default:
		s.sendError(w, http.StatusBadRequest, fmt.Sprintf("unknown command type %q", req.Type))
	}
}

func (s *Simulator) handleData(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Valid(r.Header.Get(netcast.SessionHeader)) {
		s.sendError(w, http.StatusUnauthorized, "unknown session")
		return
	}

	target := r.URL.Query().Get("target")
	fixture, exists := s.config.GetFixture(target)
	if !exists {
		s.sendError(w, http.StatusNotFound, fmt.Sprintf("no data for target %q", target))
		return
	}

	s.sendEnvelope(w, http.StatusOK, fixture)
}

// Response helpers
func (s *Simulator) sendEnvelope(w http.ResponseWriter, status int, inner string) {
	w.Header().Set("Content-Type", contentTypeXML)
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="utf-8"?><envelope>%s</envelope>`, inner)
}

func (s *Simulator) sendError(w http.ResponseWriter, status int, detail string) {
	inner := fmt.Sprintf("<ROAPError>%d</ROAPError><ROAPErrorDetail>%s</ROAPErrorDetail>", status, detail)
	s.sendEnvelope(w, status, inner)
}

// KeyDisplays returns how often the TV was asked to show its pairing key.
func (s *Simulator) KeyDisplays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyDisplays
}

// KeyPresses returns the key codes received so far.
func (s *Simulator) KeyPresses() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	presses := make([]int, len(s.keyPresses))
	copy(presses, s.keyPresses)
	return presses
}

// ChannelChanges returns the channel switches received so far.
func (s *Simulator) ChannelChanges() []ChannelChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	changes := make([]ChannelChange, len(s.channels))
	copy(changes, s.channels)
	return changes
}

// ActiveSessions returns the number of live sessions.
func (s *Simulator) ActiveSessions() int {
	return s.sessions.Len()
}

// Reset drops all sessions and recorded activity.
func (s *Simulator) Reset() {
	s.sessions.Purge()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyDisplays = 0
	s.keyPresses = nil
	s.channels = nil
}
