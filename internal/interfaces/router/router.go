package router

import (
	authsvc "ledger-backend/internal/application/auth"
	holdingssvc "ledger-backend/internal/application/holdings"
	ledgersvc "ledger-backend/internal/application/ledger"
	"ledger-backend/internal/config"
	"ledger-backend/internal/infrastructure/database"
	authhandler "ledger-backend/internal/interfaces/handlers/auth"
	healthhandler "ledger-backend/internal/interfaces/handlers/health"
	holdingshandler "ledger-backend/internal/interfaces/handlers/holdings"
	ledgerhandler "ledger-backend/internal/interfaces/handlers/ledger"
	"ledger-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp wires the Fiber app: middleware chain, handler groups and their
// service dependencies. Returns the app together with the DB and Redis
// clients so main can run migrations and readiness pings.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	hh := &healthhandler.Handlers{Rdb: rdb, DB: &gormDBPinger{db: db}}
	app.Get("/health", hh.Check)

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		DB:         db,
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil {
		hs := &holdingssvc.Service{DB: db}
		holdh := &holdingshandler.Handlers{Service: hs}
		hg := app.Group("/api/v1/holdings", middleware.RequireAuth())
		hg.Post("/create-holding", holdh.CreateHolding)
		hg.Get("/view-holdings", holdh.ViewHoldings)
		hg.Get("/view-holding/:holding_id", holdh.ViewHolding)
		hg.Patch("/update-price/:holding_id", holdh.UpdatePrice)
		hg.Delete("/delete-holding/:holding_id", holdh.DeleteHolding)

		ls := &ledgersvc.Service{DB: db}
		ledgh := &ledgerhandler.Handlers{Service: ls}
		lg := app.Group("/api/v1/ledger", middleware.RequireAuth())
		lg.Post("/create-transaction", ledgh.CreateTransaction)
		lg.Delete("/delete-transaction/:tx_id", ledgh.DeleteTransaction)
		lg.Post("/recalculate/:holding_id", ledgh.Recalculate)
		lg.Get("/get-transactions/:holding_id", ledgh.GetTransactions)
		lg.Get("/get-lots/:holding_id", ledgh.GetLots)
	}

	return app, db, rdb, nil
}
