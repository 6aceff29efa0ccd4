// Package mcp provides an MCP (Model Context Protocol) server for dopasim.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/config"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/logging"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/ratelimit"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simulation"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

// Server wraps the MCP SDK server and exposes the dopamine simulations as tools.
type Server struct {
	server      *sdk.Server
	store       store.RunStore
	settings    *config.Config
	runner      *simulation.Runner
	logger      *slog.Logger
	auditLogger *AuditLogger
	limiters    ratelimit.ToolLimiters
	dir         string
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "dopasim")
	Version string // Server version

	// Dir is the data directory holding the run database and audit log.
	Dir string

	// Settings supplies default scenarios. Nil means config.Default().
	Settings *config.Config

	// Store overrides the run database. Nil opens SQLite under Dir.
	Store store.RunStore

	// Limiters throttles tool calls. Nil means ratelimit.NewToolLimiters();
	// an empty map disables limiting.
	Limiters ratelimit.ToolLimiters

	Logger *slog.Logger
}

// NewServer creates a new MCP server with the simulation tools registered.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	limiters := cfg.Limiters
	if limiters == nil {
		limiters = ratelimit.NewToolLimiters()
	}

	runStore := cfg.Store
	if runStore == nil {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("data directory is required")
		}
		st, err := store.NewSQLiteRunStore(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open run store: %w", err)
		}
		runStore = st
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:   mcpServer,
		store:    runStore,
		settings: settings,
		runner:   simulation.NewRunner(logger, nil),
		logger:   logger,
		limiters: limiters,
		dir:      cfg.Dir,
	}
	if cfg.Dir != "" {
		s.auditLogger = NewAuditLogger(cfg.Dir)
	}

	if err := s.registerTools(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	if err := s.registerResources(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register resources: %w", err)
	}

	return s, nil
}

// Run starts the server on stdio and blocks until the client disconnects,
// ctx is cancelled, or the process receives an interrupt.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			s.logger.Info("shutting down mcp server")
			cancel()
		case <-ctx.Done():
		}
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.Close()
	return err
}

// Close releases the run store and the audit log.
func (s *Server) Close() error {
	var firstErr error
	if err := s.auditLogger.Close(); err != nil {
		firstErr = err
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
