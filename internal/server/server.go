package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/todotxt/internal/config"
	"github.com/kazz187/todotxt/internal/document"
	"github.com/kazz187/todotxt/internal/eventbus"
	"github.com/kazz187/todotxt/pkg/cerr"
	"github.com/kazz187/todotxt/pkg/clog"
)

// Server exposes the line and document operations as a JSON API for
// editor integrations.
type Server struct {
	server  *http.Server
	env     *config.BaseEnv
	service *document.Service
	bus     *eventbus.Bus
}

func NewServer(env *config.BaseEnv, service *document.Service, bus *eventbus.Bus) *Server {
	return &Server{env: env, service: service, bus: bus}
}

// Handler returns the complete HTTP handler, middleware included.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(clog.SlogChiMiddleware())
		// Streams write their own responses.
		r.Get("/events", s.streamEvents)
		r.Group(func(r chi.Router) {
			r.Use(cerr.NewJSONChiMiddleware())
			r.Route("/lines", func(r chi.Router) {
				r.Post("/tokenize", s.tokenizeLine)
				r.Post("/parse", s.parseLine)
				r.Post("/format", s.formatTask)
				r.Post("/priority", s.shiftLinePriority)
				r.Post("/toggle", s.toggleLine)
				r.Post("/sort", s.sortLines)
				r.Post("/search", s.searchLines)
				r.Get("/template", s.template)
			})
			r.Route("/documents", func(r chi.Router) {
				r.Get("/", s.listDocuments)
				r.Route("/{name}", func(r chi.Router) {
					r.Get("/", s.getDocument)
					r.Put("/", s.putDocument)
					r.Post("/sort", s.sortDocument)
					r.Get("/search", s.searchDocument)
					r.Post("/lines", s.appendLine)
					r.Post("/lines/{line}/toggle", s.toggleDocumentLine)
					r.Post("/lines/{line}/priority/{direction}", s.shiftDocumentLinePriority)
				})
			})
			r.NotFound(func(w http.ResponseWriter, r *http.Request) {
				cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
			})
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker()))

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(s.apiKeyMiddleware(mux)), &http2.Server{})
}

// ListenAndServe serves until Shutdown. ctx is the base context of every
// request, so cancelling it ends open event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.env.Addr()
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.env.APIKey == "" || r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/grpc.health.v1.Health/") {
			next.ServeHTTP(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.env.APIKey)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
