package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketpulse/internal/refresher"
	"marketpulse/internal/server"
	"marketpulse/internal/server/handler"
	"marketpulse/internal/server/ws"
	"marketpulse/internal/service"
)

// shutdownGrace is how long in-flight HTTP requests get to finish.
const shutdownGrace = 10 * time.Second

// services bundles the service layer built on top of the wired dependencies.
type services struct {
	auth     *service.AuthService
	markets  *service.MarketService
	strength *service.StrengthService
}

// buildServices constructs the service layer shared by every mode.
func (a *App) buildServices(deps *Dependencies) *services {
	auth := service.NewAuthService(deps.Broker, service.Credentials{
		ClientCode: a.cfg.Angel.ClientCode,
		PIN:        a.cfg.Angel.PIN,
		TOTPSecret: a.cfg.Angel.TOTPSecret,
	}, a.logger)

	r := refresher.New(deps.Watchlist, deps.Broker, a.cfg.Angel.Exchange, a.logger)

	strength := service.NewStrengthService(
		r,
		deps.StrengthCache,
		deps.SignalBus,
		deps.HistoryStore,
		deps.Notifier,
		a.logger,
	)

	markets := service.NewMarketService(deps.Broker, deps.Watchlist, a.cfg.Angel.Exchange, a.logger)

	return &services{auth: auth, markets: markets, strength: strength}
}

// tryLogin attempts a brokerage login at startup. Failure is not fatal: the
// refresher degrades to synthetic data and login can be retried over the API.
func (a *App) tryLogin(ctx context.Context, svcs *services) {
	if _, err := svcs.auth.Login(ctx); err != nil {
		a.logger.WarnContext(ctx, "startup login failed, serving synthetic data",
			slog.String("error", err.Error()),
		)
	}
}

// ServerMode runs the HTTP + WebSocket API. The refresh loop only ticks while
// at least one WebSocket client is connected; REST consumers trigger cycles
// on demand through /api/market-strength.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.tryLogin(ctx, svcs)

	hub := a.startHTTPServer(ctx, g, deps, svcs)

	g.Go(func() error {
		return svcs.strength.Run(ctx, a.cfg.RefreshInterval(), func() bool {
			return hub.ClientCount() > 0
		})
	})

	return g.Wait()
}

// MonitorMode runs the refresh loop headlessly: cycles are cached, published,
// optionally persisted, and sentiment flips are pushed to the notifier. No
// HTTP server is started.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.tryLogin(ctx, svcs)

	g.Go(func() error {
		return svcs.strength.Run(ctx, a.cfg.RefreshInterval(), nil)
	})

	return g.Wait()
}

// FullMode runs the HTTP + WebSocket API and keeps the refresh loop ticking
// regardless of connected clients.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	svcs := a.buildServices(deps)
	a.tryLogin(ctx, svcs)

	a.startHTTPServer(ctx, g, deps, svcs)

	g.Go(func() error {
		return svcs.strength.Run(ctx, a.cfg.RefreshInterval(), nil)
	})

	return g.Wait()
}

// startHTTPServer adds the HTTP server and WebSocket hub goroutines to the
// given errgroup and returns the hub so callers can gate work on connected
// clients. The server is shut down gracefully when the context is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) *ws.Hub {
	hub := ws.NewHub(deps.SignalBus, deps.StrengthCache, service.StrengthChannel, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimitPerMin: a.cfg.Server.RateLimitPerMin,
	}, server.Handlers{
		Health:    handler.NewHealthHandler(svcs.auth, a.logger),
		Auth:      handler.NewAuthHandler(svcs.auth, a.logger),
		Strength:  handler.NewStrengthHandler(svcs.strength, a.logger),
		Markets:   handler.NewMarketHandler(svcs.markets, a.logger),
		Watchlist: handler.NewWatchlistHandler(deps.Watchlist, a.logger),
	}, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return hub
}
