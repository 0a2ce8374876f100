package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"transportadoras-server-go/internal/client/api"
	"transportadoras-server-go/internal/client/cache"
	"transportadoras-server-go/internal/domain/carrier"
	platformerrors "transportadoras-server-go/internal/platform/errors"
	"transportadoras-server-go/internal/platform/logging"
)

// localIDPrefix marks shadow records. Server ids are UUIDs, so the prefix
// guarantees a placeholder never collides with a confirmed id.
const localIDPrefix = "local-"

// ErrMutationPending rejects a second mutation on an id whose previous
// operation has not settled yet.
var ErrMutationPending = errors.New("operação anterior ainda pendente")

// Hooks let the UI layer observe the controller without the controller
// knowing anything about rendering.
type Hooks struct {
	// OnChange fires after every cache mutation, optimistic or settled.
	OnChange func()
	// OnError surfaces a user-facing failure message (toast).
	OnError func(msg string)
	// OnSessionExpired fires when the server rejects the session. The cache
	// is not rolled back: the session owner must tear down the view and
	// send the user back to the portal.
	OnSessionExpired func()
}

// Controller applies mutations to the local cache immediately and reconciles
// them with the server response, rolling back on failure.
type Controller struct {
	api    *api.Client
	cache  *cache.Cache
	logger *logging.Logger
	hooks  Hooks

	mu       sync.Mutex
	inflight map[string]struct{}
}

type Options struct {
	API    *api.Client
	Cache  *cache.Cache
	Logger *logging.Logger
	Hooks  Hooks
}

func New(opts Options) (*Controller, error) {
	if opts.API == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "controller.new", "api client is required")
	}
	if opts.Cache == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "controller.new", "cache is required")
	}
	if opts.Logger == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "controller.new", "logger is required")
	}
	return &Controller{
		api:      opts.API,
		cache:    opts.Cache,
		logger:   opts.Logger,
		hooks:    opts.Hooks,
		inflight: make(map[string]struct{}),
	}, nil
}

// Refresh reloads the full collection from the server.
func (c *Controller) Refresh(ctx context.Context) error {
	records, err := c.api.List(ctx)
	if err != nil {
		c.sessionExpired(err)
		return err
	}
	c.cache.ReplaceAll(records)
	c.changed()
	return nil
}

// Create inserts a shadow record with a placeholder id, then submits the
// create. On success the shadow is replaced in place by the server-confirmed
// record; on failure it is removed without a trace.
func (c *Controller) Create(ctx context.Context, record carrier.Carrier) (carrier.Carrier, error) {
	placeholder := localIDPrefix + uuid.NewString()
	if err := c.acquire(placeholder); err != nil {
		return carrier.Carrier{}, err
	}
	defer c.release(placeholder)

	shadow := record.Clone()
	shadow.ID = placeholder
	shadow.Canonicalize()
	c.cache.Upsert(shadow)
	c.changed()

	confirmed, err := c.api.Create(ctx, record)
	if err != nil {
		if c.sessionExpired(err) {
			return carrier.Carrier{}, err
		}
		c.cache.Remove(placeholder)
		c.changed()
		c.failed("Erro ao criar transportadora", err)
		return carrier.Carrier{}, err
	}

	c.cache.ReplaceID(placeholder, confirmed)
	c.changed()
	c.logger.InfoTag("controller", "transportadora criada: %s (%s)", confirmed.Name, confirmed.ID)
	return confirmed, nil
}

// Update applies the edit locally, then submits it. On failure the pre-edit
// record is restored exactly as it was.
func (c *Controller) Update(ctx context.Context, id string, record carrier.Carrier) (carrier.Carrier, error) {
	if err := c.acquire(id); err != nil {
		return carrier.Carrier{}, err
	}
	defer c.release(id)

	original, found := c.cache.Find(id)

	optimistic := record.Clone()
	optimistic.ID = id
	optimistic.Canonicalize()
	if found {
		optimistic.UpdatedAt = original.UpdatedAt
	}
	c.cache.Upsert(optimistic)
	c.changed()

	confirmed, err := c.api.Update(ctx, id, record)
	if err != nil {
		if c.sessionExpired(err) {
			return carrier.Carrier{}, err
		}
		if found {
			c.cache.Upsert(original)
		} else {
			c.cache.Remove(id)
		}
		c.changed()
		c.failed("Erro ao atualizar transportadora", err)
		return carrier.Carrier{}, err
	}

	c.cache.Upsert(confirmed)
	c.changed()
	c.logger.InfoTag("controller", "transportadora atualizada: %s (%s)", confirmed.Name, confirmed.ID)
	return confirmed, nil
}

// Delete removes the record locally, then submits the delete. On failure the
// captured record is reinserted with every field intact.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.acquire(id); err != nil {
		return err
	}
	defer c.release(id)

	captured, found := c.cache.Remove(id)
	if found {
		c.changed()
	}

	if err := c.api.Delete(ctx, id); err != nil {
		if c.sessionExpired(err) {
			return err
		}
		if found {
			c.cache.Upsert(captured)
			c.changed()
		}
		c.failed("Erro ao excluir transportadora", err)
		return err
	}

	c.logger.InfoTag("controller", "transportadora excluída: %s", id)
	return nil
}

func (c *Controller) acquire(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[id]; busy {
		return ErrMutationPending
	}
	c.inflight[id] = struct{}{}
	return nil
}

func (c *Controller) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
}

func (c *Controller) changed() {
	if c.hooks.OnChange != nil {
		c.hooks.OnChange()
	}
}

func (c *Controller) failed(msg string, err error) {
	c.logger.WarnTag("controller", "%s: %v", msg, err)
	if c.hooks.OnError != nil {
		c.hooks.OnError(msg)
	}
}

func (c *Controller) sessionExpired(err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	c.logger.WarnTag("controller", "sessão expirada, redirecionando para o portal")
	if c.hooks.OnSessionExpired != nil {
		c.hooks.OnSessionExpired()
	}
	return true
}
