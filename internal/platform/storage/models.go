package storage

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"transportadoras-server-go/internal/domain/carrier"
)

// CarrierModel is the gorm mapping of the transportadoras table. Contact and
// coverage collections are stored as JSON columns, matching the hosted-table
// layout of the original deployment.
type CarrierModel struct {
	ID        string         `gorm:"type:varchar(36);primaryKey"`
	Name      string         `gorm:"column:nome;index;not null"`
	Email     string         `gorm:"column:email"`
	Phones    datatypes.JSON `gorm:"column:telefones"`
	Mobiles   datatypes.JSON `gorm:"column:celulares"`
	Regions   datatypes.JSON `gorm:"column:regioes"`
	States    datatypes.JSON `gorm:"column:estados"`
	UpdatedAt time.Time      `gorm:"column:timestamp"`
}

func (CarrierModel) TableName() string {
	return "transportadoras"
}

func toJSON(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}

func fromJSON(data datatypes.JSON) []string {
	if len(data) == 0 {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil || values == nil {
		return []string{}
	}
	return values
}

func toModel(c carrier.Carrier) CarrierModel {
	return CarrierModel{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phones:    toJSON(c.Phones),
		Mobiles:   toJSON(c.Mobiles),
		Regions:   toJSON(c.Regions),
		States:    toJSON(c.States),
		UpdatedAt: c.UpdatedAt,
	}
}

func fromModel(m CarrierModel) carrier.Carrier {
	return carrier.Carrier{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phones:    fromJSON(m.Phones),
		Mobiles:   fromJSON(m.Mobiles),
		Regions:   fromJSON(m.Regions),
		States:    fromJSON(m.States),
		UpdatedAt: m.UpdatedAt,
	}
}
