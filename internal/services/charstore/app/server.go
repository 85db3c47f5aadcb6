// Package app wires the character store runtime: SQLite storage, the HTTP
// document API, and an optional gRPC health listener.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	platformgrpc "github.com/louisbranch/charsheet/internal/platform/grpc"
	"github.com/louisbranch/charsheet/internal/platform/httpx"
	"github.com/louisbranch/charsheet/internal/platform/timeouts"
	"github.com/louisbranch/charsheet/internal/services/charstore/api"
	charsqlite "github.com/louisbranch/charsheet/internal/services/charstore/storage/sqlite"
	"github.com/louisbranch/charsheet/internal/services/sheet/domain"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// HealthService is the gRPC health service name reported for the store.
const HealthService = "charsheet.charstore"

// Config defines startup inputs for the character store.
type Config struct {
	HTTPAddr   string
	HealthAddr string
	DBPath     string
	// RulesetPath selects the ruleset whose fresh sheet is served before
	// anything is saved. Empty uses the built-in ruleset.
	RulesetPath string
	Logger      *log.Logger
}

// Server hosts the character store HTTP API and its lifecycle.
type Server struct {
	logger         *log.Logger
	httpListener   net.Listener
	httpServer     *http.Server
	healthListener net.Listener
	grpcServer     *grpc.Server
	health         *health.Server
	store          *charsqlite.Store
}

// NewServer opens storage and binds listeners. An empty HealthAddr skips
// the gRPC health listener.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	ruleset, err := domain.LoadRuleset(cfg.RulesetPath)
	if err != nil {
		return nil, fmt.Errorf("load ruleset: %w", err)
	}
	store, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	s := &Server{logger: logger, store: store}

	s.httpListener, err = net.Listen("tcp", httpAddr)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	handler := api.NewHandler(store,
		api.WithLogger(logger),
		api.WithInitialDocument(ruleset.NewSheet().Document()),
	).Routes()
	s.httpServer = &http.Server{
		Handler: httpx.Chain(handler,
			httpx.RecoverPanic(),
			httpx.RequestID(),
			httpx.RequestLogger(logger),
		),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	if healthAddr := strings.TrimSpace(cfg.HealthAddr); healthAddr != "" {
		s.healthListener, err = net.Listen("tcp", healthAddr)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("listen on %s: %w", healthAddr, err)
		}
		s.grpcServer, s.health = platformgrpc.NewHealthServer(HealthService)
	}
	return s, nil
}

// Addr returns the HTTP listener address.
func (s *Server) Addr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// HealthAddr returns the gRPC health listener address, if any.
func (s *Server) HealthAddr() string {
	if s == nil || s.healthListener == nil {
		return ""
	}
	return s.healthListener.Addr().String()
}

// Serve runs until ctx is canceled or a listener fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	s.logger.Printf("charstore listening at %v", s.httpListener.Addr())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.httpServer.Serve(s.httpListener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	})
	if s.grpcServer != nil {
		s.logger.Printf("charstore health listening at %v", s.healthListener.Addr())
		g.Go(func() error {
			err := s.grpcServer.Serve(s.healthListener)
			if err == nil || errors.Is(err, grpc.ErrServerStopped) {
				return nil
			}
			return fmt.Errorf("serve gRPC health: %w", err)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})
	return g.Wait()
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.healthListener != nil {
		_ = s.healthListener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Printf("close charstore store: %v", err)
		}
		s.store = nil
	}
}

func (s *Server) shutdown() error {
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown charstore http server: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, path string) (*charsqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := charsqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open charstore sqlite store: %w", err)
	}
	return store, nil
}
