package carrier

import (
	"context"
	"time"

	"github.com/google/uuid"

	"transportadoras-server-go/internal/domain/eventbus"
	"transportadoras-server-go/internal/platform/errors"
	"transportadoras-server-go/internal/platform/logging"
)

// Service orchestrates carrier CRUD: canonicalization, validation, id and
// timestamp assignment, persistence, and record-change events.
type Service struct {
	repo         Repository
	logger       *logging.Logger
	requireEmail bool
}

// Options configures a carrier Service.
type Options struct {
	Repository   Repository
	Logger       *logging.Logger
	RequireEmail bool
}

func NewService(opts Options) (*Service, error) {
	if opts.Repository == nil {
		return nil, errors.New(errors.KindConfig, "carrier.new", "repository is required")
	}
	if opts.Logger == nil {
		return nil, errors.New(errors.KindConfig, "carrier.new", "logger is required")
	}
	return &Service{
		repo:         opts.Repository,
		logger:       opts.Logger,
		requireEmail: opts.RequireEmail,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]Carrier, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Carrier, error) {
	return s.repo.Get(ctx, id)
}

// Create assigns a fresh server id and timestamp; the caller-provided id, if
// any, is discarded.
func (s *Service) Create(ctx context.Context, c Carrier) (Carrier, error) {
	c.Canonicalize()
	if err := c.Validate(s.requireEmail); err != nil {
		return Carrier{}, err
	}

	c.ID = uuid.NewString()
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, c); err != nil {
		return Carrier{}, err
	}

	s.logger.InfoTag("transportadoras", "created %s (%s)", c.Name, c.ID)
	eventbus.Publish(eventbus.EventCarrierCreated, eventbus.CarrierEventData{ID: c.ID, Name: c.Name})
	return c, nil
}

// Update replaces every mutable field of an existing record. The id is
// immutable; the timestamp is refreshed.
func (s *Service) Update(ctx context.Context, id string, c Carrier) (Carrier, error) {
	c.Canonicalize()
	if err := c.Validate(s.requireEmail); err != nil {
		return Carrier{}, err
	}

	if _, err := s.repo.Get(ctx, id); err != nil {
		return Carrier{}, err
	}

	c.ID = id
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return Carrier{}, err
	}

	s.logger.InfoTag("transportadoras", "updated %s (%s)", c.Name, c.ID)
	eventbus.Publish(eventbus.EventCarrierUpdated, eventbus.CarrierEventData{ID: c.ID, Name: c.Name})
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoTag("transportadoras", "deleted %s (%s)", existing.Name, id)
	eventbus.Publish(eventbus.EventCarrierDeleted, eventbus.CarrierEventData{ID: id, Name: existing.Name})
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
