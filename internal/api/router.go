package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter wires the dashboard routes. Everything except the login page,
// health and static assets sits behind the session gate.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(requestID, logRequests(h.logger))

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/", h.LoginPage).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.PathPrefix("/static/").Handler(staticFiles()).Methods("GET")

	protected := r.NewRoute().Subrouter()
	protected.Use(h.sessions.Gate)
	protected.HandleFunc("/logout", h.Logout).Methods("POST")
	protected.HandleFunc("/dashboard", h.List).Methods("GET")
	protected.HandleFunc("/farmers/{id}", h.Detail).Methods("GET")
	protected.HandleFunc("/farmers/{id}/verification", h.Verify).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h.logger.Debug("no route", zap.String("path", req.URL.Path))
		http.NotFound(w, req)
	})
	return r
}
