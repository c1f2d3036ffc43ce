// Package bootstrap wires configuration, storage, spreadsheets and the
// conversation engine into a runnable bot.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/m3rciful/tracker/internal/config"
	"github.com/m3rciful/tracker/internal/database"
	"github.com/m3rciful/tracker/internal/directory"
	"github.com/m3rciful/tracker/internal/ledger"
	"github.com/m3rciful/tracker/internal/logger"
	"github.com/m3rciful/tracker/internal/metrics"
	"github.com/m3rciful/tracker/internal/sheets"
	"github.com/m3rciful/tracker/internal/telegram"
	"github.com/m3rciful/tracker/internal/telegram/router"
	"github.com/m3rciful/tracker/internal/wizard"
)

// Options control the bootstrap pipeline. Nil hooks fall back to the
// production implementations.
type Options struct {
	Config *config.Config

	LoggerInit func(*config.Config) error
	Connect    func(context.Context, config.DatabaseConfig) (*sqlx.DB, error)
	Migrate    func(config.DatabaseConfig) error
	Sheets     func(context.Context, config.GoogleConfig) (sheets.Values, error)

	// Clock replaces time.Now for the ledger.
	Clock func() time.Time
}

// App exposes the components initialized by Run.
type App struct {
	Config   *config.Config
	DB       *sqlx.DB
	Registry *prometheus.Registry
	Recorder *metrics.Recorder
	Engine   *wizard.Engine

	metricsSrv *metrics.Server
}

func migrateDirectory(cfg config.DatabaseConfig) error {
	return database.Migrate(cfg, directory.Migrations, directory.MigrationsDir)
}

func googleSheets(ctx context.Context, cfg config.GoogleConfig) (sheets.Values, error) {
	return sheets.NewGoogle(ctx, cfg.CredentialsFile)
}

// Run initializes the logger, the user directory and its schema, metrics and
// the spreadsheet client, then assembles the engine.
func Run(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	cfg := opts.Config

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	connect := opts.Connect
	if connect == nil {
		connect = database.Connect
	}
	db, err := connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = migrateDirectory
	}
	if err := migrate(cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewRecorder(reg)

	openSheets := opts.Sheets
	if openSheets == nil {
		openSheets = googleSheets
	}
	values, err := openSheets(ctx, cfg.Google)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: sheets client failed: %w", err)
	}
	book := sheets.NewWorkbook(sheets.Instrument(values, rec))

	ledgerOpts := []ledger.Option{ledger.WithRecorder(rec)}
	if opts.Clock != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithClock(opts.Clock))
	}
	engine := wizard.New(wizard.Deps{
		Directory: directory.New(db),
		Workbook:  book,
		Ledger:    ledger.New(book, cfg.Tracker.Location, ledgerOpts...),
		Recorder:  rec,
	}, wizard.Settings{
		TemplateURL:         cfg.Google.TemplateURL,
		ServiceAccountEmail: cfg.Google.ServiceAccountEmail,
	})

	app := &App{Config: cfg, DB: db, Registry: reg, Recorder: rec, Engine: engine}

	if cfg.Metrics.Listen != "" {
		srv, err := metrics.Listen(cfg.Metrics.Listen, cfg.Metrics.Path, reg)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: metrics listener failed: %w", err)
		}
		app.metricsSrv = srv
		go srv.Serve()
	}

	logger.LogEvent(ctx, logger.L, slog.LevelInfo, "bootstrap.ready",
		slog.String("status", "ok"),
		slog.String("db_driver", cfg.Database.Driver),
		slog.String("timezone", cfg.Tracker.Timezone),
		slog.Bool("metrics", app.metricsSrv != nil),
	)
	return app, nil
}

// MetricsAddr returns the bound metrics address, or "" when disabled.
func (a *App) MetricsAddr() string {
	if a.metricsSrv == nil {
		return ""
	}
	return a.metricsSrv.Addr()
}

// TelegramRunOptions returns the bot composition for telegram.Run.
func (a *App) TelegramRunOptions() telegram.RunOptions {
	reg := telegram.NewRegistry()
	router.RegisterCommands(reg, a.Engine)
	return telegram.RunOptions{
		Config:      a.Config,
		Registry:    reg,
		Middlewares: telegram.DefaultMiddlewares(a.Config, a.Recorder),
		Routes:      router.Routes(a.Engine),
	}
}

// Close stops the metrics endpoint and closes the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.metricsSrv != nil {
		errs = append(errs, a.metricsSrv.Shutdown(ctx))
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
