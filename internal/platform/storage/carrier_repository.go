package storage

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"transportadoras-server-go/internal/domain/carrier"
	"transportadoras-server-go/internal/platform/errors"
)

type carrierRepository struct {
	db *gorm.DB
}

// NewCarrierRepository creates the gorm-backed carrier repository.
func NewCarrierRepository(db *gorm.DB) carrier.Repository {
	return &carrierRepository{db: db}
}

func (r *carrierRepository) List(ctx context.Context) ([]carrier.Carrier, error) {
	var models []CarrierModel
	if err := r.db.WithContext(ctx).Order("nome ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "carrier.list", "failed to list carriers", err)
	}

	carriers := make([]carrier.Carrier, len(models))
	for i, model := range models {
		carriers[i] = fromModel(model)
	}
	return carriers, nil
}

func (r *carrierRepository) Get(ctx context.Context, id string) (carrier.Carrier, error) {
	var model CarrierModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return carrier.Carrier{}, carrier.ErrNotFound
		}
		return carrier.Carrier{}, errors.Wrap(errors.KindStorage, "carrier.get", "failed to find carrier", err)
	}
	return fromModel(model), nil
}

func (r *carrierRepository) Create(ctx context.Context, c carrier.Carrier) error {
	model := toModel(c)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "carrier.create", "failed to create carrier", err)
	}
	return nil
}

func (r *carrierRepository) Update(ctx context.Context, c carrier.Carrier) error {
	model := toModel(c)
	result := r.db.WithContext(ctx).Model(&CarrierModel{}).Where("id = ?", c.ID).Updates(map[string]any{
		"nome":      model.Name,
		"email":     model.Email,
		"telefones": model.Phones,
		"celulares": model.Mobiles,
		"regioes":   model.Regions,
		"estados":   model.States,
		"timestamp": model.UpdatedAt,
	})
	if result.Error != nil {
		return errors.Wrap(errors.KindStorage, "carrier.update", "failed to update carrier", result.Error)
	}
	if result.RowsAffected == 0 {
		return carrier.ErrNotFound
	}
	return nil
}

func (r *carrierRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CarrierModel{})
	if result.Error != nil {
		return errors.Wrap(errors.KindStorage, "carrier.delete", "failed to delete carrier", result.Error)
	}
	if result.RowsAffected == 0 {
		return carrier.ErrNotFound
	}
	return nil
}

func (r *carrierRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&CarrierModel{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "carrier.count", "failed to count carriers", err)
	}
	return count, nil
}
