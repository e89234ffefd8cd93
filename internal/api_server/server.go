package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/appcloud-project/decision-service/internal/config"
	"github.com/appcloud-project/decision-service/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const gracefulShutdownTimeout = 5 * time.Second

type Server struct {
	cfg      *config.Config
	listener net.Listener
	handler  *handlers.Handler
	verifier handlers.RequestVerifier
}

func New(cfg *config.Config, listener net.Listener, handler *handlers.Handler, verifier handlers.RequestVerifier) *Server {
	return &Server{
		cfg:      cfg,
		listener: listener,
		handler:  handler,
		verifier: verifier,
	}
}

func (s *Server) Run(ctx context.Context) error {
	srv := http.Server{Handler: s.Router()}

	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()
		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
	}()

	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router builds the chi router. Lifecycle routes sit behind OAuth
// signature verification; health and the country rule admin API do
// not, since Eloqua never calls them.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", s.handler.GetHealth)

	router.Route("/eloqua/lifecycle", func(r chi.Router) {
		r.Use(handlers.VerifySignature(s.verifier))
		r.Post("/create", s.handler.Create)
		r.Get("/configure", s.handler.ConfigurePage)
		r.Post("/configure", s.handler.SaveConfiguration)
		r.Post("/notify", s.handler.Notify)
		r.Delete("/delete", s.handler.Delete)
	})

	router.Route("/admin/country-rules", func(r chi.Router) {
		r.Get("/", s.handler.ListCountryRules)
		r.Put("/", s.handler.UpsertCountryRule)
		r.Delete("/{country}", s.handler.DeleteCountryRule)
	})

	return router
}
