package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/himansu2198/Job-Listing-Portal/internal/application"
	"github.com/himansu2198/Job-Listing-Portal/internal/auth"
	"github.com/himansu2198/Job-Listing-Portal/internal/config"
	"github.com/himansu2198/Job-Listing-Portal/internal/database"
	"github.com/himansu2198/Job-Listing-Portal/internal/live"
	"github.com/himansu2198/Job-Listing-Portal/internal/metrics"
	"github.com/himansu2198/Job-Listing-Portal/internal/notification"
	"github.com/himansu2198/Job-Listing-Portal/internal/profile"
	"github.com/himansu2198/Job-Listing-Portal/internal/storage"
)

var logger = loggo.GetLogger("jobportal.server")

const blacklistCleanUpInterval = 10 * time.Minute

// MyServer hold every dependency the routes are built from
type MyServer struct {
	cfg   config.Config
	clock clock.Clock

	store     database.Backend
	resumes   storage.ResumeStore
	tokens    *auth.TokenIssuer
	blacklist *auth.InMemoryBlacklistStore
	hub       *live.Hub
	ledger    *notification.Ledger
	manager   *application.Manager
	profiles  *profile.Service

	registry  *prometheus.Registry
	collector *metrics.Collector
}

// Deps are the pieces NewServer cannot build from Config alone.
// Nil fields are built from Config.
type Deps struct {
	Store   database.Backend
	Resumes storage.ResumeStore
	Clock   clock.Clock
}

// NewServer wire the service described by cfg
func NewServer(ctx context.Context, cfg config.Config, deps Deps) (*MyServer, error) {
	if deps.Clock == nil {
		deps.Clock = clock.WallClock
	}
	if deps.Store == nil {
		store, err := openStore(cfg)
		if err != nil {
			return nil, errors.Trace(err)
		}
		deps.Store = store
	}
	if deps.Resumes == nil {
		resumes, err := openResumeStore(ctx, cfg)
		if err != nil {
			return nil, errors.Trace(err)
		}
		deps.Resumes = resumes
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(registry)

	hub := live.NewHub(collector)
	ledger := notification.NewLedger(deps.Store, deps.Clock, collector)
	manager, err := application.NewManager(application.ManagerConfig{
		Store:   deps.Store,
		Ledger:  ledger,
		Events:  hub,
		Clock:   deps.Clock,
		Metrics: collector,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	return &MyServer{
		cfg:       cfg,
		clock:     deps.Clock,
		store:     deps.Store,
		resumes:   deps.Resumes,
		tokens:    auth.NewTokenIssuer(cfg.SecretKey, cfg.JwtIssuer, cfg.TokenTTL, deps.Clock),
		blacklist: auth.NewInMemoryBlacklistStore(deps.Clock),
		hub:       hub,
		ledger:    ledger,
		manager:   manager,
		profiles:  profile.NewService(deps.Store, deps.Resumes),
		registry:  registry,
		collector: collector,
	}, nil
}

func openStore(cfg config.Config) (database.Backend, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		logger.Warningf("using in-memory store, data is lost on restart")
		return database.NewMemoryStore(nil), nil
	default:
		db, err := database.NewDBInstance(cfg.DB)
		if err != nil {
			return nil, errors.Annotate(err, "database failed to initialize")
		}
		return database.NewStore(db), nil
	}
}

func openResumeStore(ctx context.Context, cfg config.Config) (storage.ResumeStore, error) {
	switch cfg.ResumeBackend {
	case config.ResumeGCS:
		return storage.NewGCSResumeStore(ctx, cfg.ResumeBucket)
	default:
		return storage.NewLocalResumeStore(cfg.ResumeDir)
	}
}

// HTTPServer return http.Server serving every route on the configured port
func (s *MyServer) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run serve HTTP until ctx is done, then shut down gracefully
func (s *MyServer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.blacklist.RunCleanUp(ctx, blacklistCleanUpInterval)

	srv := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Annotate(err, "http server")
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Annotate(err, "shutdown")
	}
	return nil
}

// Close release the store and the resume store when it holds a client
func (s *MyServer) Close() error {
	if c, ok := s.resumes.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			logger.Warningf("closing resume store: %v", err)
		}
	}
	return s.store.Close()
}
