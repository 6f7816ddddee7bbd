package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/raysh454/gesturepanel/internal/api"
	"github.com/raysh454/gesturepanel/internal/logging"
	"github.com/raysh454/gesturepanel/internal/routes"
	"github.com/raysh454/gesturepanel/internal/server"
	"github.com/raysh454/gesturepanel/internal/webclient"
)

// Application is the runtime state container. It owns the client core, the
// typed backend API, the route table and the development server. Pass it to
// the parts that need shared state rather than using package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger

	Registry  *prometheus.Registry
	Transport *webclient.NetHTTPTransport
	Client    *webclient.Client
	API       *api.API
	Routes    *routes.Table
	Server    *server.Server

	httpServer *http.Server
	serveErr   chan error

	// internal context for cancellation / lifecycle
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication wires every component from cfg. An invalid route table or
// client configuration is returned as an error; the process must not start.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop{}
	}

	tbl, err := routes.Standard(nil)
	if err != nil {
		return nil, fmt.Errorf("building route table: %w", err)
	}

	wcfg, err := cfg.WebClientConfig()
	if err != nil {
		return nil, fmt.Errorf("resolving client config: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	transport := webclient.NewNetHTTPTransport(nil, logger)
	client, err := webclient.New(wcfg, transport,
		webclient.WithLogger(logger),
		webclient.WithObserver(webclient.NewLogObserver(logger)),
		webclient.WithObserver(webclient.NewMetricsObserver(reg)),
	)
	if err != nil {
		return nil, err
	}
	client.RegisterOutboundHook(RequestIDHook(nil))
	client.RegisterInboundHook(nil, BackendErrorHook(logger))

	srvCfg := cfg.ServerConfig()
	srvCfg.Routes = tbl
	srvCfg.Gatherer = reg
	srvCfg.Logger = logger.With(logging.Field{Key: "component", Value: "server"})
	srv, err := server.NewServer(srvCfg)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		Config:    cfg,
		Logger:    logger,
		Registry:  reg,
		Transport: transport,
		Client:    client,
		API:       api.New(client),
		Routes:    tbl,
		Server:    srv,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start begins serving the development server in the background and probes
// the backend once. A failed probe is logged, not fatal.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}

	a.httpServer = a.Server.HTTPServer()
	a.serveErr = make(chan error, 1)
	go func() {
		err := a.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
		close(a.serveErr)
	}()

	a.Logger.Info("application starting",
		logging.Field{Key: "mode", Value: a.Config.Mode},
		logging.Field{Key: "addr", Value: a.Config.Server.ListenAddr},
		logging.Field{Key: "backend", Value: a.Config.Server.BackendURL},
		logging.Field{Key: "base_url", Value: a.Client.Config().BaseURL})

	go a.probeBackend()
	return nil
}

// Errors reports a fatal serve error, if any.
func (a *Application) Errors() <-chan error {
	return a.serveErr
}

func (a *Application) probeBackend() {
	hs, err := a.API.Health(a.ctx)
	if err != nil {
		a.Logger.Warn("backend health check failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	a.Logger.Info("backend healthy", logging.Field{Key: "message", Value: hs.Message})
}

// Shutdown stops the development server and releases idle connections.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var err error
	if a.httpServer != nil {
		if serr := a.httpServer.Shutdown(shutdownCtx); serr != nil {
			err = fmt.Errorf("shutting down server: %w", serr)
		}
	}
	if a.Transport != nil {
		_ = a.Transport.Close()
	}

	a.cancel()
	return err
}
