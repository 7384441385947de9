package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/avatarbot/bot/avatar"
	"github.com/m3rciful/avatarbot/bot/history"
	"github.com/m3rciful/avatarbot/bot/wizard"
	"github.com/m3rciful/avatarbot/core/bootstrap"
	corecmd "github.com/m3rciful/avatarbot/core/cmd"
	"github.com/m3rciful/avatarbot/core/logger"
	tg "github.com/m3rciful/avatarbot/core/telegram"
	"github.com/m3rciful/avatarbot/core/telegram/commands"
	"github.com/m3rciful/avatarbot/core/telegram/router"

	"log/slog"
)

// App wires the avatar wizard onto the Telegram transport.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	catalog  *avatar.Catalog
	sessions *wizard.Store
	engine   *wizard.Engine
	delivery *telebotDelivery
	history  *history.Store
}

// LoadConfig adapts Load to the runner's carrier interface.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	return Load(path)
}

// Bootstrap initializes infrastructure and builds the application.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:          cfg.CoreConfig(),
		DatabaseEnabled: cfg.Database.Enabled,
		Database:        cfg.Database.Config,
	})
	if err != nil {
		return nil, err
	}

	catalog := avatar.NewCatalog(cfg.CatalogEntries())
	if catalog.Len() == 0 {
		return nil, fmt.Errorf("app: empty style catalog")
	}

	client := avatar.NewClient(cfg.Avatar.APIBaseURL, cfg.Avatar.DefaultStyle, cfg.FetchTimeout())
	sessions := wizard.NewStore(cfg.Wizard.TTL())
	delivery := newTelebotDelivery()

	a := &App{
		cfg:      cfg,
		db:       res.DB,
		catalog:  catalog,
		sessions: sessions,
		delivery: delivery,
	}

	var recorder wizard.Recorder
	if res.DB != nil {
		a.history = history.NewStore(res.DB)
		recorder = history.NewRecorder(a.history)
	}

	a.engine = wizard.NewEngine(wizard.EngineConfig{
		Catalog:  catalog,
		Fetcher:  client,
		Delivery: delivery,
		Sessions: sessions,
		Recorder: recorder,
	})

	return a, nil
}

// TelegramRunOptions assembles the transport wiring: commands, callbacks,
// routes, middlewares and lifecycle hooks.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Description: "Start the bot",
		Handler:     a.handleStart,
	})
	reg.RegisterCommand("/help", commands.Command{
		Description: "Show avatar styles",
		Handler:     a.handleHelp,
	})
	if a.history != nil {
		reg.RegisterCommand("/history", commands.Command{
			Description: "Recent avatar requests",
			Handler:     a.handleHistory,
			AdminOnly:   true,
			Hidden:      true,
		})
	}

	for _, entry := range a.catalog.Entries() {
		if err := reg.RegisterCallback(entry.Command, a.handleSelection); err != nil {
			return tg.RunOptions{}, err
		}
	}
	for _, key := range []string{"format", "bg"} {
		if err := reg.RegisterCallback(key, a.handleSelection); err != nil {
			return tg.RunOptions{}, err
		}
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{})...)

	opts := tg.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}
	return opts, nil
}

func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	a.delivery.Bind(rt.Bot)
	a.engine.BindLifetime(ctx)
	go a.sessions.Run(ctx)

	logger.TWire.Info("wizard wired",
		slog.String("event", "ready"),
		slog.Int("commands", len(rt.Registry.Commands())),
		slog.Int("kb", a.catalog.Len()),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, rt tg.Runtime) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ensure the app satisfies the text router's conversation contract.
var _ router.Conversation = (*App)(nil)
