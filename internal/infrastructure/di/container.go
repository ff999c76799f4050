package di

import (
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/adapters/pricefeed"
	domainrepos "github.com/folio-service/folio_service/internal/domain/repositories"
	"github.com/folio-service/folio_service/internal/domain/services/holdings"
	"github.com/folio-service/folio_service/internal/domain/services/pricing"
	"github.com/folio-service/folio_service/internal/domain/services/valuation"
	"github.com/folio-service/folio_service/internal/infrastructure/config"
	"github.com/folio-service/folio_service/internal/infrastructure/repositories"
	"github.com/folio-service/folio_service/pkg/health"
	"github.com/folio-service/folio_service/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Logger *logger.Logger
	ZapLog *zap.Logger

	// Repositories
	UserRepo    domainrepos.UserRepository
	AssetRepo   domainrepos.AssetRepository
	HoldingRepo domainrepos.HoldingRepository
	PriceRepo   domainrepos.PriceRepository
	MetricsRepo domainrepos.MetricsRepository

	// Adapters
	PriceFeed pricefeed.Feed

	// Domain services
	HoldingsService  *holdings.Service
	PricingService   *pricing.Service
	ValuationService *valuation.Service

	HealthChecker *health.HealthChecker
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, db *sqlx.DB, log *logger.Logger) (*Container, error) {
	zapLog := log.Zap()

	userRepo := repositories.NewUserRepository(db, zapLog)
	assetRepo := repositories.NewAssetRepository(db, zapLog)
	holdingRepo := repositories.NewHoldingRepository(db, zapLog)
	priceRepo := repositories.NewPriceRepository(db, zapLog)
	metricsRepo := repositories.NewMetricsRepository(db, zapLog)

	feed := pricefeed.NewRandomFeed(cfg.Pricing.FeedSeed)

	holdingsService := holdings.NewService(assetRepo, holdingRepo, zapLog)
	pricingService := pricing.NewService(priceRepo, assetRepo, holdingRepo, feed, cfg.Pricing.BackfillMonths, zapLog)
	valuationService := valuation.NewService(holdingRepo, metricsRepo, zapLog)

	checker := health.NewHealthChecker(10 * time.Second)
	checker.Register(health.NewDatabaseChecker(db.DB, 5*time.Second))

	return &Container{
		Config: cfg,
		DB:     db,
		Logger: log,
		ZapLog: zapLog,

		UserRepo:    userRepo,
		AssetRepo:   assetRepo,
		HoldingRepo: holdingRepo,
		PriceRepo:   priceRepo,
		MetricsRepo: metricsRepo,

		PriceFeed: feed,

		HoldingsService:  holdingsService,
		PricingService:   pricingService,
		ValuationService: valuationService,

		HealthChecker: checker,
	}, nil
}
