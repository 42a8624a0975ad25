package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aregalado/plata/internal/closer"
	"github.com/aregalado/plata/internal/config"
)

type App struct {
	configPath      string
	serviceProvider *ServiceProvider
	httpServer      *http.Server
}

func NewApp(ctx context.Context, configPath string) (*App, error) {
	a := &App{configPath: configPath}

	err := a.initDeps(ctx)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Run starts the scheduler and the HTTP server and blocks until SIGINT or
// SIGTERM, then shuts both down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		closer.CloseAll()
		closer.Wait()
	}()

	return a.runHTTPServer(ctx)
}

// RunOnce executes a single batch pass of the recurring transaction and
// budget rollover processors, then exits.
func (a *App) RunOnce(ctx context.Context) error {
	defer func() {
		closer.CloseAll()
		closer.Wait()
	}()

	a.serviceProvider.Scheduler(ctx).RunOnce(ctx)
	return nil
}

// ServiceProvider exposes the dependency container for commands that need
// direct access, such as migrations.
func (a *App) ServiceProvider() *ServiceProvider {
	return a.serviceProvider
}

func (a *App) initDeps(ctx context.Context) error {
	inits := []func(context.Context) error{
		a.initConfig,
		a.initServiceProvider,
		a.initHTTPServer,
	}

	for _, f := range inits {
		err := f(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) initConfig(context.Context) error {
	err := config.Load(a.configPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (a *App) initServiceProvider(context.Context) error {
	a.serviceProvider = NewServiceProvider()
	return nil
}

func (a *App) initHTTPServer(ctx context.Context) error {
	a.httpServer = &http.Server{
		Addr:              a.serviceProvider.HTTPConfig().Address(),
		Handler:           a.serviceProvider.Router(ctx).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

func (a *App) runHTTPServer(ctx context.Context) error {
	log := a.serviceProvider.Logger()

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	go a.serviceProvider.Scheduler(schedulerCtx).Start(schedulerCtx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.httpServer.Addr).Msg("http server listening")
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.httpServer.Shutdown(shutdownCtx)
}
