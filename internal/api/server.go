package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Server wraps an HTTP server with engine-specific routing.
type Server struct {
	httpServer *http.Server
}

// NewRouter builds the route table for a handler.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	v1.HandleFunc("/status/{clientID}", h.GetStatus).Methods(http.MethodGet)
	v1.HandleFunc("/report/{clientID}", h.GetReport).Methods(http.MethodGet)
	v1.HandleFunc("/phenotype/{clientID}", h.GetPhenotype).Methods(http.MethodGet)
	v1.HandleFunc("/thresholds/{clientID}", h.GetThresholds).Methods(http.MethodGet)

	v1.HandleFunc("/day/{clientID}/{date}", h.PutDay).Methods(http.MethodPut)
	v1.HandleFunc("/profile/{clientID}", h.PutProfile).Methods(http.MethodPut)
	v1.HandleFunc("/food/{ref}", h.PutFood).Methods(http.MethodPut)

	return r
}

// NewServer creates a Server that binds to the given address.
func NewServer(h *Handler, listenAddr string) *Server {
	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: c.Handler(NewRouter(h)),
	}

	return &Server{
		httpServer: srv,
	}
}

// Start begins listening for HTTP connections. Blocks until the server stops.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// FormatListenURL turns a listen address into a browsable URL.
func FormatListenURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
