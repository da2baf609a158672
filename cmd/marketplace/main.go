package main

import (
	"context"

	"github.com/ABFX15/NFT-Auction-Marketplace/internal/assetregistry"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/application"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/domain"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/infra/httpapi"
	pgrepo "github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/infra/repository/postgres"
	wsinfra "github.com/ABFX15/NFT-Auction-Marketplace/internal/auction/infra/websocket"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/config"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/db"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/db/migrations"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/httpserver"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/logger"
	sharedws "github.com/ABFX15/NFT-Auction-Marketplace/internal/shared/websocket"
	"github.com/ABFX15/NFT-Auction-Marketplace/internal/treasury"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting NFT auction marketplace server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Settlement archive is optional: without a configured database the
	// engine runs on its in-memory state alone.
	var archive domain.SettlementArchive
	if cfg.ArchiveEnabled() {
		log.Info("Running settlement archive migrations...")
		if err := migrations.RunMigrations(cfg); err != nil {
			log.Fatal("Database migration failed", zap.Error(err))
		}
		pool, err := db.GetPostgresDBPool(ctx, cfg)
		if err != nil {
			log.Fatal("Database connection failed", zap.Error(err))
		}
		defer pool.Close()
		archive = pgrepo.NewArchiveRepository(pool)
	} else {
		log.Warn("No settlement archive database configured, running in-memory only")
	}

	hub := sharedws.NewHub()
	go hub.Run(ctx)

	engineAddr := domain.Address(cfg.EngineAddress)
	vault := treasury.New(engineAddr)
	engine := domain.NewEngine(vault, wsinfra.NewHubNotifier(hub), domain.EngineConfig{
		EngineAddress: engineAddr,
		MinDuration:   cfg.MinDuration,
		MaxDuration:   cfg.MaxDuration,
	})

	registry := assetregistry.New()
	registry.RegisterReceiver(engineAddr, engine)

	service := application.NewAuctionService(
		application.NewDepositAssetUseCase(engine, registry, archive),
		application.NewPlaceBidUseCase(engine, archive),
		application.NewEndAuctionUseCase(engine, archive),
		application.NewFinalizeAuctionUseCase(engine, archive),
		application.NewWithdrawUseCase(engine, archive),
		application.NewGetAuctionUseCase(engine),
	)

	server := httpserver.NewServer()
	httpapi.NewHandler(ctx, service, hub).Register(server.App())

	if err := server.Start(cfg.HTTPAddr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
