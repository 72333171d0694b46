// Package app assembles the storefront bot: storage repositories, domain
// services, dialog state, handlers, and the Telegram runtime options.
package app

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	corebootstrap "github.com/m3rciful/storebot/core/bootstrap"
	"github.com/m3rciful/storebot/core/logger"
	coretelegram "github.com/m3rciful/storebot/core/telegram"
	"github.com/m3rciful/storebot/core/telegram/middleware"
	"github.com/m3rciful/storebot/core/telegram/router"
	"github.com/m3rciful/storebot/core/telegram/state"
	"github.com/m3rciful/storebot/internal/files"
	"github.com/m3rciful/storebot/internal/handlers"
	"github.com/m3rciful/storebot/internal/models"
	"github.com/m3rciful/storebot/internal/services"
	"github.com/m3rciful/storebot/internal/storage"

	tele "gopkg.in/telebot.v4"
)

// App holds everything the runtime needs after bootstrap.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	fsm      state.Manager
	registry *coretelegram.Registry
	handlers *handlers.Handlers
	courier  *handlers.Courier
}

// Bootstrap initializes infrastructure and wires the application graph.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := corebootstrap.Run(corebootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	categories := storage.NewCategoryRepo(res.DB)
	products := storage.NewProductRepo(res.DB)
	sections := storage.NewSectionRepo(res.DB)
	orders := storage.NewOrderRepo(res.DB)
	payments := storage.NewPaymentRepo(res.DB)

	if err := corebootstrap.RunSeeders(context.Background(), sections, corebootstrap.Modules{
		Seeders: []corebootstrap.Seeder{sectionSeeder()},
	}); err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	store, err := files.New(cfg.Shop.ReceiptsDir, cfg.Shop.SectionsDir)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	courier := handlers.NewCourier(cfg.Shop.AdminIDs, cfg.Shop.Currency)
	fsm := state.NewMemoryManager()

	h := handlers.New(handlers.Deps{
		FSM:      fsm,
		Catalog:  services.NewCatalogService(categories, products),
		Sections: services.NewSectionService(sections, store),
		Orders:   services.NewOrderService(orders, products, store, courier),
		Payments: services.NewPaymentService(payments, products, courier),
		Files:    store,
		Courier:  courier,
		Options: handlers.Options{
			AdminIDs:       cfg.Shop.AdminIDs,
			SupportContact: cfg.Shop.SupportContact,
			PaymentDetails: cfg.Shop.PaymentDetails,
			RetentionDays:  cfg.Shop.RetentionDays,
			Currency:       cfg.Shop.Currency,
		},
	})

	registry := coretelegram.NewRegistry()
	h.Register(registry)

	return &App{
		cfg:      cfg,
		db:       res.DB,
		fsm:      fsm,
		registry: registry,
		handlers: h,
		courier:  courier,
	}, nil
}

// TelegramRunOptions builds the runtime options for core/cmd.Run.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		IsAdmin: a.cfg.IsAdmin,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.fsm, a.registry, router.TextOptions{
		UnknownText:  a.handlers.UnknownText,
		UnknownPhoto: a.handlers.UnknownPhoto,
	})...)
	routes = append(routes,
		coretelegram.Route{
			Endpoint: tele.OnCheckout,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(a.handlers.PreCheckout)),
		},
		coretelegram.Route{
			Endpoint: tele.OnPayment,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(a.handlers.PaymentSuccess)),
		},
	)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.courier.Attach(rt.Bot, rt.Dispatcher)
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}

// sectionSeeder makes sure the singleton sections exist before the first
// admin edit.
func sectionSeeder() corebootstrap.Seeder {
	return corebootstrap.SeederFunc(func(ctx context.Context, s corebootstrap.Storage) error {
		repo, ok := s.(*storage.SectionRepo)
		if !ok {
			return nil
		}
		for key, content := range map[string]string{
			models.SectionAbout:      "Tell your customers about the shop here.",
			models.SectionPromotions: "No promotions yet. Stay tuned!",
		} {
			if err := repo.Seed(ctx, key, content); err != nil {
				return err
			}
			logger.SEED.LogAttrs(ctx, slog.LevelDebug, "section.seeded",
				slog.String("section", key),
			)
		}
		return nil
	})
}
