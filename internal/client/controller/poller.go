package controller

import (
	"context"
	"time"

	"transportadoras-server-go/internal/client/api"
	platformerrors "transportadoras-server-go/internal/platform/errors"
	"transportadoras-server-go/internal/platform/logging"
)

// Poller keeps the cache reconciled with the server and tracks connectivity
// through the unauthenticated HEAD probe.
type Poller struct {
	controller *Controller
	api        *api.Client
	logger     *logging.Logger

	pollInterval   time.Duration
	statusInterval time.Duration
	onStatus       func(online bool)
}

type PollerOptions struct {
	Controller     *Controller
	API            *api.Client
	Logger         *logging.Logger
	PollInterval   time.Duration
	StatusInterval time.Duration
	// OnStatus fires on every probe with the current connectivity verdict.
	OnStatus func(online bool)
}

func NewPoller(opts PollerOptions) (*Poller, error) {
	if opts.Controller == nil || opts.API == nil || opts.Logger == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "poller.new",
			"controller, api client and logger are required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 15 * time.Second
	}
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = 30 * time.Second
	}
	return &Poller{
		controller:     opts.Controller,
		api:            opts.API,
		logger:         opts.Logger,
		pollInterval:   opts.PollInterval,
		statusInterval: opts.StatusInterval,
		onStatus:       opts.OnStatus,
	}, nil
}

// Run blocks until ctx is done, refreshing the collection and probing
// connectivity on their own tickers.
func (p *Poller) Run(ctx context.Context) {
	poll := time.NewTicker(p.pollInterval)
	defer poll.Stop()
	status := time.NewTicker(p.statusInterval)
	defer status.Stop()

	p.probe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			if err := p.controller.Refresh(ctx); err != nil {
				p.logger.WarnTag("poller", "refresh failed: %v", err)
			}
		case <-status.C:
			p.probe(ctx)
		}
	}
}

func (p *Poller) probe(ctx context.Context) {
	err := p.api.Ping(ctx)
	if p.onStatus != nil {
		p.onStatus(err == nil)
	}
	if err != nil {
		p.logger.WarnTag("poller", "servidor inacessível: %v", err)
	}
}
