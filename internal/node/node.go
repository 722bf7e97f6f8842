// Package node assembles the Frostgate daemon: storage, wallet, network
// registry, dApp pipeline, and the WebSocket transport, with lifecycle
// management so it can be embedded in any binary.
package node

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/frostlabs/frostgate/config"
	"github.com/frostlabs/frostgate/internal/contacts"
	"github.com/frostlabs/frostgate/internal/dapp"
	flog "github.com/frostlabs/frostgate/internal/log"
	"github.com/frostlabs/frostgate/internal/network"
	"github.com/frostlabs/frostgate/internal/storage"
	"github.com/frostlabs/frostgate/internal/transport"
	"github.com/frostlabs/frostgate/internal/wallet"
)

// Database key prefixes. Each store gets its own slice of the shared
// Badger database.
var (
	prefixContacts = []byte("contacts/")
	prefixSessions = []byte("sessions/")
	prefixAssets   = []byte("assets/")
)

// Node is a fully-initialized Frostgate daemon.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	// Core
	db       storage.DB
	wallet   *wallet.Service
	networks *network.Registry
	book     *contacts.Book

	// dApp surface
	server   *transport.Server
	pipeline *dapp.Pipeline
	httpSrv  *http.Server

	// Approval
	approver *ConsoleApprover

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes a daemon. It performs all setup steps
// (logger, storage, wallet unlock, pipeline, transport) but does NOT
// start listening. Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = logsDir + "/frostgate.log"
	}
	if err := flog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := flog.WithComponent("node")

	logger.Info().
		Str("network", string(cfg.Network)).
		Str("wallet", cfg.Wallet.Name).
		Msg("Starting Frostgate")

	// ── 2. Open storage ─────────────────────────────────────────────
	db, err := storage.NewBadger(cfg.DBDir())
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", cfg.DBDir(), err)
	}
	logger.Info().Str("path", cfg.DBDir()).Msg("Database opened")

	// ── 3. Wallet ───────────────────────────────────────────────────
	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open keystore: %w", err)
	}
	ws, err := openWallet(ks, cfg.Wallet.Name)
	if err != nil {
		db.Close()
		return nil, err
	}

	// ── 4. Network registry ─────────────────────────────────────────
	networks := network.NewRegistry()
	if cfg.IsTestnet() {
		if _, err := networks.SetActive(network.ChainIDFuji); err != nil {
			db.Close()
			return nil, fmt.Errorf("select testnet: %w", err)
		}
	}
	logger.Info().Str("active", networks.Active().Name).Msg("Network registry ready")

	// ── 5. Upstream clients ─────────────────────────────────────────
	timeout := time.Duration(cfg.Node.TimeoutSeconds) * time.Second
	avaxClient := network.NewAvaxClient(cfg.Node.AvaxAPI, timeout)

	connect := func(ctx context.Context) (dapp.EVMConn, error) {
		return network.DialEVM(ctx, networks.Active())
	}

	// ── 6. Stores ───────────────────────────────────────────────────
	book := contacts.NewBook(storage.NewPrefixDB(db, prefixContacts))
	sessions := transport.NewSessionStore(storage.NewPrefixDB(db, prefixSessions))
	assetDB := storage.NewPrefixDB(db, prefixAssets)

	// ── 7. Transport + pipeline ─────────────────────────────────────
	server := transport.NewServer(sessions)

	var custody common.Address
	if cfg.Bridge.CustodyAddress != "" {
		custody = common.HexToAddress(cfg.Bridge.CustodyAddress)
	}

	sessionHandler := dapp.NewSessionHandler(ws, func() uint64 { return networks.Active().ChainID }, server)
	registry, err := dapp.NewRegistry(
		sessionHandler,
		dapp.NewChainHandler(networks),
		dapp.NewEthHandler(ws, connect),
		dapp.NewAvaxHandler(ws, avaxClient),
		dapp.NewBridgeHandler(ws, connect, custody),
		dapp.NewAccountHandler(ws, cfg.IsTestnet),
		dapp.NewContactHandler(book),
		dapp.NewAssetHandler(assetDB),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build method registry: %w", err)
	}
	sessionHandler.SetMethods(registry.Methods)

	pipeline := dapp.NewPipeline(registry, networks, server)
	server.SetPipeline(pipeline)

	ctx, cancel := context.WithCancel(context.Background())

	approver := NewConsoleApprover(pipeline, os.Stdin, os.Stdout)
	pipeline.OnPending(approver.Notify)

	addr := net.JoinHostPort(cfg.Listen.Addr, strconv.Itoa(cfg.Listen.Port))
	n := &Node{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		wallet:   ws,
		networks: networks,
		book:     book,
		server:   server,
		pipeline: pipeline,
		httpSrv:  &http.Server{Addr: addr, Handler: server},
		approver: approver,
		ctx:      ctx,
		cancel:   cancel,
	}
	return n, nil
}

// Start begins accepting dApp connections and runs the console approval
// loop in the background.
func (n *Node) Start() error {
	ln, err := net.Listen("tcp", n.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", n.httpSrv.Addr, err)
	}

	n.logger.Info().Str("addr", n.httpSrv.Addr).Msg("dApp endpoint listening")

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			n.logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.approver.Run(n.ctx)
	}()

	return nil
}

// Stop gracefully shuts the daemon down.
func (n *Node) Stop() {
	n.logger.Info().Msg("Shutting down")
	n.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.httpSrv.Shutdown(shutdownCtx); err != nil {
		n.logger.Warn().Err(err).Msg("http shutdown")
	}
	n.server.Close()
	n.wg.Wait()

	if n.wallet != nil {
		n.wallet.Lock()
	}
	if err := n.db.Close(); err != nil {
		n.logger.Warn().Err(err).Msg("closing database")
	}
	n.logger.Info().Msg("Shutdown complete")
}

// Wallet returns the unlocked wallet service.
func (n *Node) Wallet() *wallet.Service {
	return n.wallet
}

// Pipeline returns the dApp request pipeline.
func (n *Node) Pipeline() *dapp.Pipeline {
	return n.pipeline
}
