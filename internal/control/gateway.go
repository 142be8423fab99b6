package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/umbracle/ethgo"

	"github.com/dimitribekale/ai-marketplace/internal/api"
	"github.com/dimitribekale/ai-marketplace/internal/core/config"
	"github.com/dimitribekale/ai-marketplace/internal/health"
	"github.com/dimitribekale/ai-marketplace/internal/infra/chain/evm"
	"github.com/dimitribekale/ai-marketplace/internal/platform/ratelimiter"
)

// ChainClient is everything the gateway needs from the contract client.
type ChainClient interface {
	api.ChainService
	health.NodeProber
	Address() ethgo.Address
	Contract() ethgo.Address
	ChainID() *big.Int
	Close() error
}

// Gateway is the main application struct that manages the service lifecycle.
type Gateway struct {
	cfg       Config
	chain     ChainClient
	healthMon *health.Monitor
	server    *api.Server
	log       *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
}

// Config holds the application configuration.
type Config struct {
	Server    config.ServerConfig
	Chain     config.ChainConfig
	RateLimit config.RateLimitConfig
}

// NewGateway loads the contract interface, connects to the node and wires
// the HTTP server.
func NewGateway(cfg Config) (*Gateway, error) {
	// 1. Load contract interface
	contractABI, err := evm.LoadABI(cfg.Chain.ABIPath)
	if err != nil {
		return nil, err
	}

	// 2. Connect to node
	client, err := evm.Dial(evm.Config{
		RPCURL:          cfg.Chain.RPCURL,
		ContractAddress: cfg.Chain.ContractAddress,
		PrivateKey:      cfg.Chain.PrivateKey,
		GasLimit:        cfg.Chain.GasLimit,
	}, contractABI)
	if err != nil {
		return nil, fmt.Errorf("failed to init chain client: %w", err)
	}

	return NewGatewayWithClient(cfg, client), nil
}

// NewGatewayWithClient wires the gateway around an existing chain client.
func NewGatewayWithClient(cfg Config, client ChainClient) *Gateway {
	log := slog.Default()

	log.Info("Connected to node", "url", cfg.Chain.RPCURL, "chain_id", client.ChainID().String())
	log.Info("Loaded contract", "address", client.Contract().String())
	log.Info("Loaded lister account", "address", client.Address().String())

	healthMon := health.NewMonitor(client, health.Identity{
		ChainID:         client.ChainID().String(),
		ListerAddress:   client.Address().String(),
		ContractAddress: client.Contract().String(),
	})

	limiter := ratelimiter.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
	if limiter != nil {
		log.Info("Rate limiting enabled", "rps", cfg.RateLimit.RPS, "burst", cfg.RateLimit.Burst)
	}

	server := api.NewServer(client, healthMon, limiter, api.Options{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	return &Gateway{
		cfg:       cfg,
		chain:     client,
		healthMon: healthMon,
		server:    server,
		log:       log,
	}
}

// Start binds the listen address and serves requests in the background.
func (g *Gateway) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", g.server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", g.server.Addr(), err)
	}

	g.mu.Lock()
	g.listener = l
	g.done = make(chan struct{})
	g.mu.Unlock()

	// Prime the health cache so the first probe reflects the node state.
	g.healthMon.Check(ctx)

	go func() {
		defer close(g.done)
		if err := g.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.log.Error("HTTP server failed", "error", err)
		}
	}()

	g.log.Info("HTTP server started", "addr", l.Addr().String())
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (g *Gateway) Addr() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// Stop drains in-flight requests and closes the node connection.
func (g *Gateway) Stop(ctx context.Context) error {
	g.log.Info("Stopping gateway...")

	var errs []error
	if err := g.server.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	g.mu.Lock()
	done := g.done
	g.mu.Unlock()
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}

	if err := g.chain.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close node connection: %w", err))
	}

	return errors.Join(errs...)
}
