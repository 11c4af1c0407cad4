package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	authinadapter "vecino/internal/modules/auth/adapter/in"
	authoutadapter "vecino/internal/modules/auth/adapter/out"
	authout "vecino/internal/modules/auth/port/out"
	authservice "vecino/internal/modules/auth/service"
	authusecase "vecino/internal/modules/auth/usecase"
	cataloginadapter "vecino/internal/modules/catalog/adapter/in"
	catalogoutadapter "vecino/internal/modules/catalog/adapter/out"
	catalogusecase "vecino/internal/modules/catalog/usecase"
	feedinadapter "vecino/internal/modules/feed/adapter/in"
	feedoutadapter "vecino/internal/modules/feed/adapter/out"
	feedusecase "vecino/internal/modules/feed/usecase"
	locationinadapter "vecino/internal/modules/location/adapter/in"
	locationoutadapter "vecino/internal/modules/location/adapter/out"
	locationdomain "vecino/internal/modules/location/domain"
	locationout "vecino/internal/modules/location/port/out"
	locationservice "vecino/internal/modules/location/service"
	locationusecase "vecino/internal/modules/location/usecase"
	reportinadapter "vecino/internal/modules/report/adapter/in"
	reportoutadapter "vecino/internal/modules/report/adapter/out"
	reportservice "vecino/internal/modules/report/service"
	reportusecase "vecino/internal/modules/report/usecase"
	"vecino/internal/platform/clock"
	"vecino/internal/platform/config"
	"vecino/internal/platform/httpapi"
	"vecino/internal/platform/id"
	"vecino/internal/platform/logging"
	uiapp "vecino/internal/ui/app"
)

type App struct {
	AuthCLI     authinadapter.CLIHandler
	CatalogCLI  cataloginadapter.CLIHandler
	LocationCLI locationinadapter.CLIHandler
	ReportCLI   reportinadapter.CLIHandler
	FeedCLI     feedinadapter.CLIHandler

	Logger  hclog.Logger
	closers []io.Closer
}

// New wires every module from cfg. Logs go to logOut.
func New(cfg config.Config, logOut io.Writer) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}
	logger := logging.New(cfg.Log, logOut)
	app := &App{Logger: logger}

	client, err := httpapi.New(cfg.API.BaseURL, cfg.API.Timeout, httpapi.WithIDs(ids), httpapi.WithLogger(logger.Named("http")))
	if err != nil {
		return nil, fmt.Errorf("new api client: %w", err)
	}

	store, err := app.credentialStore(cfg)
	if err != nil {
		return nil, err
	}
	authUC := authusecase.NewInteractor(
		authservice.NewAuthService(authoutadapter.NewRUTChecker()),
		store,
		authoutadapter.NewHTTPTokenGateway(client),
		logger.Named("auth"),
	)

	catalogUC := catalogusecase.NewInteractor(catalogoutadapter.NewHTTPCategorySource(client, authUC), logger.Named("catalog"))

	sensor, err := app.sensor(cfg, clk, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	bounds := locationdomain.Bounds{
		MinLat: cfg.Location.Bounds.MinLat,
		MaxLat: cfg.Location.Bounds.MaxLat,
		MinLon: cfg.Location.Bounds.MinLon,
		MaxLon: cfg.Location.Bounds.MaxLon,
	}
	locationUC := locationusecase.NewInteractor(locationservice.NewResolver(
		sensor,
		locationservice.NewFallback(bounds, cfg.Location.Seed),
		clk,
		locationservice.ResolverConfig{Timeout: cfg.Location.Timeout, MaxAge: cfg.Location.MaxAge},
		logger.Named("location"),
	))

	reportOpts := []reportservice.Option{
		reportservice.WithConcurrency(cfg.Evidence.Concurrency),
		reportservice.WithLogger(logger.Named("report")),
	}
	if ledger, err := reportoutadapter.NewSQLiteLedger(cfg.DBPath); err != nil {
		logger.Warn("submission ledger unavailable, attempts will not be recorded", "path", cfg.DBPath, "error", err)
	} else {
		app.closers = append(app.closers, ledger)
		reportOpts = append(reportOpts, reportservice.WithLedger(ledger))
	}
	orchestrator := reportservice.NewOrchestrator(
		reportoutadapter.NewHTTPReportGateway(client),
		reportoutadapter.NewLocalFileSource(),
		ids,
		clk,
		reportOpts...,
	)
	reportUC := reportusecase.NewInteractor(orchestrator, authUC, catalogUC, locationUC)

	feedUC := feedusecase.NewInteractor(authUC, feedoutadapter.NewHTTPFeedSource(client))

	app.AuthCLI = authinadapter.NewCLIHandler(authUC)
	app.CatalogCLI = cataloginadapter.NewCLIHandler(catalogUC)
	app.LocationCLI = locationinadapter.NewCLIHandler(locationUC)
	app.ReportCLI = reportinadapter.NewCLIHandler(reportUC)
	app.FeedCLI = feedinadapter.NewCLIHandler(feedUC)
	return app, nil
}

func (a *App) credentialStore(cfg config.Config) (authout.CredentialStore, error) {
	if cfg.Store.Backend != config.StoreSQLite {
		return authoutadapter.NewFileCredentialStore(cfg.CredentialsPath), nil
	}
	store, err := authoutadapter.NewSQLiteCredentialStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new credential store: %w", err)
	}
	a.closers = append(a.closers, store)
	return store, nil
}

func (a *App) sensor(cfg config.Config, clk clock.Clock, logger hclog.Logger) (locationout.Sensor, error) {
	switch cfg.Location.Provider {
	case config.ProviderStatic:
		b := cfg.Location.Bounds
		coord := locationdomain.Bounds{MinLat: b.MinLat, MaxLat: b.MaxLat, MinLon: b.MinLon, MaxLon: b.MaxLon}.Center()
		if f := cfg.Location.Fixed; f != nil {
			coord = locationdomain.Coordinate{Latitude: f.Latitude, Longitude: f.Longitude}
		}
		return locationoutadapter.NewStaticSensor(coord, clk), nil
	case config.ProviderPlugin:
		sensor := locationoutadapter.NewPluginSensor(locationoutadapter.PluginConfig{
			Binary: cfg.Location.Plugin,
			SHA256: cfg.Location.PluginSHA256,
		}, logger.Named("plugin"))
		a.closers = append(a.closers, sensor)
		return sensor, nil
	case config.ProviderNone, "":
		return locationoutadapter.NewDeniedSensor(), nil
	}
	return nil, fmt.Errorf("unsupported location provider %q", cfg.Location.Provider)
}

// Logout clears the stored session without wiring the rest of the app.
// Storage failures are logged and never returned.
func Logout(ctx context.Context, cfg config.Config, logOut io.Writer) {
	logger := logging.New(cfg.Log, logOut)
	app := &App{Logger: logger}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("close credential store", "error", err)
		}
	}()
	store, err := app.credentialStore(cfg)
	if err != nil {
		logger.Warn("credential store unavailable, nothing cleared", "error", err)
		return
	}
	// logout never reaches the backend, so no token gateway is needed
	authusecase.NewInteractor(authservice.NewAuthService(nil), store, nil, logger.Named("auth")).Logout(ctx)
}

// Close releases database handles and stops the location plugin.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.FeedCLI, app.AuthCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
