package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/nftbridge/relayer/pkg/bridge"
	"github.com/nftbridge/relayer/pkg/chain/evmchain"
	"github.com/nftbridge/relayer/pkg/chain/solchain"
	"github.com/nftbridge/relayer/pkg/config"
	"github.com/nftbridge/relayer/pkg/kvdb"
	"github.com/nftbridge/relayer/pkg/server"
	"github.com/nftbridge/relayer/pkg/store"
)

// dialTimeout bounds the boot-time dial and health checks only. After boot,
// RPC calls run under the process context (or, for intake, the HTTP
// request's context) and carry no per-call timeout of their own.
const dialTimeout = 10 * time.Second

func main() {
	logger := log.New(os.Stdout, "[bridge] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	db, err := dbm.NewGoLevelDB("bridge", cfg.DBPath)
	if err != nil {
		logger.Fatalf("open kv store at %s: %v", cfg.DBPath, err)
	}
	defer db.Close()

	registry := store.NewRegistry(kvdb.NewKVAdapter(db))
	sm := bridge.NewStateMachine(registry)

	dialCtx, cancelDial := context.WithTimeout(context.Background(), dialTimeout)
	defer cancelDial()

	evmAdapter, err := evmchain.Dial(dialCtx, evmchain.Config{
		RPCURL:         cfg.EVMRPC,
		WSURL:          cfg.EVMWS,
		PrivateKeyHex:  cfg.EVMPrivateKey,
		BridgeContract: cfg.EVMBridgeContract,
		BlockExplorer:  cfg.EVMBlockExplorer,
		ChainID:        cfg.EVMChainID,
	})
	if err != nil {
		logger.Fatalf("dial evm chain: %v", err)
	}

	solanaAdapter, err := solchain.Dial(solchain.Config{
		RPCURL:        cfg.SolanaRPC,
		WSURL:         cfg.SolanaWS,
		WalletKeyPath: cfg.SolanaWallet,
		BridgeProgram: cfg.SolanaBridgeProgram,
		BridgeAccount: cfg.SolanaBridgeAccount,
		BlockExplorer: cfg.SolanaBlockExplorer,
	})
	if err != nil {
		logger.Fatalf("dial solana chain: %v", err)
	}

	if err := evmAdapter.Health(dialCtx); err != nil {
		logger.Fatalf("evm rpc unreachable: %v", err)
	}
	if err := solanaAdapter.Health(dialCtx); err != nil {
		logger.Fatalf("solana rpc unreachable: %v", err)
	}

	state := bridge.NewState(registry, sm, evmAdapter, solanaAdapter, logger)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		logger.Printf("running recovery orchestrator")
		if err := bridge.Recover(ctx, state); err != nil {
			logger.Printf("recovery pass did not finish cleanly: %v", err)
		}
	}()

	go bridge.RunEVMListener(ctx, state)
	go bridge.RunSolanaListener(ctx, state)
	go bridge.RunEVMTxWorker(ctx, state)
	go bridge.RunSolanaTxWorker(ctx, state)

	handlers := server.New(state, cfg.EVMBlockExplorer, cfg.SolanaBlockExplorer, logger)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.Router(),
	}

	go func() {
		logger.Printf("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Printf("shutting down")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http server shutdown: %v", err)
	}
}
