package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"transportadoras-server-go/internal/domain/carrier"
	domainsession "transportadoras-server-go/internal/domain/session"
	platformconfig "transportadoras-server-go/internal/platform/config"
	platformerrors "transportadoras-server-go/internal/platform/errors"
	platformlogging "transportadoras-server-go/internal/platform/logging"
	platformstorage "transportadoras-server-go/internal/platform/storage"
	httptransport "transportadoras-server-go/internal/transport/http"
	"transportadoras-server-go/internal/transport/http/accesslog"
	httpcarriers "transportadoras-server-go/internal/transport/http/carriers"
	httpevents "transportadoras-server-go/internal/transport/http/events"
	httphealth "transportadoras-server-go/internal/transport/http/health"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config     *platformconfig.Config
	configPath string
	logger     *platformlogging.Logger
	db         *gorm.DB
	verifier   domainsession.Verifier
	cacheClose func() error
}

// Run drives the whole service lifecycle: configuration, dependency
// initialisation, serving, and graceful shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	if state.db == nil || state.verifier == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"database/session verifier not initialised",
		)
	}

	logBootstrapGraph(steps, logger)

	if state.cacheClose != nil {
		defer func() {
			if err := state.cacheClose(); err != nil {
				logger.WarnTag("sessão", "cache de sessão não fechou corretamente: %v", err)
			}
		}()
	}

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return fmt.Errorf("starting HTTP service: %w", err)
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("bootstrap", "serviço encerrado")
	logger.Close()
	return nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	for _, step := range steps {
		logger.InfoTag("bootstrap", "%s concluído", step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "storage:init-database",
			Title:     "Initialise database",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   initDatabaseStep,
		},
		{
			ID:        "session:init-verifier",
			Title:     "Initialise session verifier",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindSession,
			Execute:   initSessionVerifierStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialize logging provider", err)
	}
	state.logger = logger

	logger.InfoTag("bootstrap", "log pronto [%s] %s", state.config.Log.Level, state.configPath)
	return nil
}

func initDatabaseStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindStorage,
			"storage:init-database",
			"config not loaded",
		)
	}

	db, err := platformstorage.InitDatabase(state.config.Database)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage:init-database", "failed to initialize database", err)
	}
	state.db = db
	state.logger.InfoTag("storage", "banco de dados pronto em %s/%s",
		state.config.Database.Dir, state.config.Database.File)
	return nil
}

func initSessionVerifierStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindSession,
			"session:init-verifier",
			"missing config/logger",
		)
	}

	portal, err := domainsession.NewPortalVerifier(domainsession.PortalOptions{
		PortalURL: state.config.Session.PortalURL,
		Timeout:   state.config.Session.VerifyTimeout,
		Logger:    state.logger,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindSession, "session:init-verifier", "failed to create portal verifier", err)
	}

	cacheCfg := state.config.Session.Cache
	if !cacheCfg.Enabled {
		state.verifier = portal
		return nil
	}

	cached, err := domainsession.NewCachedVerifier(domainsession.CacheOptions{
		Inner:    portal,
		Addr:     cacheCfg.Addr,
		Username: cacheCfg.Username,
		Password: cacheCfg.Password,
		DB:       cacheCfg.DB,
		Prefix:   cacheCfg.Prefix,
		TTL:      cacheCfg.TTL,
		Logger:   state.logger,
	})
	if err != nil {
		// The portal alone still works; the cache is an optimisation.
		state.logger.WarnTag("sessão", "cache de sessão indisponível, verificando direto no portal: %v", err)
		state.verifier = portal
		return nil
	}
	state.verifier = cached
	state.cacheClose = cached.Close
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	recorder, err := accesslog.NewRecorder(config.AccessLog.Path, logger)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:init-access-log", "failed to open access log", err)
	}

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
		SessionMiddleware: httptransport.SessionMiddleware(
			state.verifier,
			config.Session.UnreachablePolicy,
			logger,
		),
		AccessMiddleware: recorder.Middleware(),
	})
	if err != nil {
		return nil, err
	}

	repo := platformstorage.NewCarrierRepository(state.db)
	carrierService, err := carrier.NewService(carrier.Options{
		Repository:   repo,
		Logger:       logger,
		RequireEmail: config.Carriers.RequireEmail,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "carriers:new-service", "failed to create carrier service", err)
	}

	carriersService, err := httpcarriers.NewService(carrierService, logger)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "carriers:new-http-service", "failed to create carriers HTTP service", err)
	}
	healthService, err := httphealth.NewService(carrierService, logger)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "health:new-service", "failed to create health service", err)
	}
	eventsService, err := httpevents.NewService(logger)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "events:new-service", "failed to create events service", err)
	}

	if err := carriersService.Register(groupCtx, httpRouter.API, httpRouter.Secured); err != nil {
		return nil, err
	}
	if err := healthService.Register(groupCtx, httpRouter.Engine); err != nil {
		return nil, err
	}
	if err := eventsService.Register(groupCtx, httpRouter.Secured); err != nil {
		return nil, err
	}

	g.Go(func() error {
		recorder.Report(groupCtx, config.AccessLog.ReportInterval)
		recorder.Close()
		return nil
	})

	httpServer := &http.Server{
		Addr:    net.JoinHostPort(config.Server.IP, strconv.Itoa(config.Server.Port)),
		Handler: httpRouter.Engine,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "servidor disponível em http://localhost:%d", config.Server.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "falha ao encerrar servidor HTTP: %v", err)
			} else {
				logger.InfoTag("HTTP", "servidor HTTP encerrado")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "falha ao iniciar servidor HTTP: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("bootstrap", "sinal recebido (%v), encerrando serviços", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("bootstrap", "erro durante o encerramento: %v", err)
			return err
		}
		logger.InfoTag("bootstrap", "todos os serviços encerrados")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("bootstrap", "tempo de encerramento excedido")
		return errors.New("shutdown timed out")
	}
	return nil
}
