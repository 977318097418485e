// Package stub is an in-memory stand-in for the FreshXpress backend API. It
// serves the farmer and login endpoints the dashboard consumes and is used for
// local development (cmd/serviceBackend) and tests.
package stub

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freshxpress/dashboard/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "freshxpress-stub"

// Claims are carried by tokens issued by the stub.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Server implements http.Handler.
type Server struct {
	mu       sync.RWMutex
	order    []string
	farmers  map[string]*models.Farmer
	accounts map[string][]byte

	secret      []byte
	tokenTTL    time.Duration
	failUpdates atomic.Bool
	requests    atomic.Int64

	logger *zap.Logger
	router *mux.Router
}

// New returns an empty stub signing tokens with secret.
func New(secret []byte, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		farmers:  make(map[string]*models.Farmer),
		accounts: make(map[string][]byte),
		secret:   secret,
		tokenTTL: 24 * time.Hour,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(s.countRequests)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/api/auth/login", s.loginHandler).Methods("POST")

	api := r.PathPrefix("/api/farmers").Subrouter()
	api.Use(s.requireToken)
	api.HandleFunc("", s.listHandler).Methods("GET")
	api.HandleFunc("/{id}", s.getHandler).Methods("GET")
	api.HandleFunc("/{id}", s.updateHandler).Methods("PUT")
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Requests returns how many requests reached the stub.
func (s *Server) Requests() int64 { return s.requests.Load() }

// SetTokenTTL sets the lifetime of tokens issued from now on. Call it before
// serving.
func (s *Server) SetTokenTTL(d time.Duration) {
	if d > 0 {
		s.tokenTTL = d
	}
}

// SetFailUpdates makes every PUT answer 500 while on.
func (s *Server) SetFailUpdates(fail bool) { s.failUpdates.Store(fail) }

// AddAccount registers login credentials.
func (s *Server) AddAccount(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.accounts[strings.ToLower(email)] = hash
	s.mu.Unlock()
	return nil
}

// AddFarmer stores f, assigning a uuid when f.ID is empty, and returns its id.
// Insertion order is the collection order.
func (s *Server) AddFarmer(f models.Farmer) string {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.farmers[f.ID]; !ok {
		s.order = append(s.order, f.ID)
	}
	s.farmers[f.ID] = &f
	return f.ID
}

// Farmer returns a copy of the stored record.
func (s *Server) Farmer(id string) (models.Farmer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.farmers[id]
	if !ok {
		return models.Farmer{}, false
	}
	return *f, true
}

// IssueToken signs a token for email.
func (s *Server) IssueToken(email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing_token", "Authorization header required")
			return
		}
		if _, err := s.parseToken(strings.TrimPrefix(authHeader, "Bearer ")); err != nil {
			s.logger.Debug("rejected token", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	s.mu.RLock()
	hash, ok := s.accounts[strings.ToLower(req.Email)]
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}
	token, err := s.IssueToken(req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, Message: "Login successful"})
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]models.FarmerSummary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.farmers[id].Summary())
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getHandler(w http.ResponseWriter, r *http.Request) {
	f, ok := s.Farmer(pathID(r))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "Farmer not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) updateHandler(w http.ResponseWriter, r *http.Request) {
	if s.failUpdates.Load() {
		writeError(w, http.StatusInternalServerError, "internal_error", "Update failed")
		return
	}
	var req models.VerificationUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	id := pathID(r)
	s.mu.Lock()
	f, ok := s.farmers[id]
	if ok {
		f.IsVerify = req.IsVerify
	}
	var out models.Farmer
	if ok {
		out = *f
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "Farmer not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// pathID decodes the escaped {id} segment; an undecodable one matches nothing.
func pathID(r *http.Request) string {
	id, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil {
		return ""
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
