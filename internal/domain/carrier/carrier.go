package carrier

import (
	"strings"
	"time"

	"transportadoras-server-go/internal/platform/errors"
)

// Carrier is the transportadora aggregate: a shipping company with its
// contact channels and served coverage area.
type Carrier struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Phones    []string  `json:"telefones"`
	Mobiles   []string  `json:"celulares"`
	Regions   []string  `json:"regioes"`
	States    []string  `json:"estados"`
	UpdatedAt time.Time `json:"timestamp"`
}

// Canonicalize normalizes the mutable fields in place: the name is trimmed
// and upper-cased, the e-mail trimmed and lower-cased, nil collections become
// empty ones so the wire format always carries arrays.
func (c *Carrier) Canonicalize() {
	c.Name = strings.ToUpper(strings.TrimSpace(c.Name))
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Phones == nil {
		c.Phones = []string{}
	}
	if c.Mobiles == nil {
		c.Mobiles = []string{}
	}
	if c.Regions == nil {
		c.Regions = []string{}
	}
	if c.States == nil {
		c.States = []string{}
	}
}

// Clone returns a deep copy; callers holding snapshots must not alias the
// original slices.
func (c Carrier) Clone() Carrier {
	out := c
	out.Phones = append([]string(nil), c.Phones...)
	out.Mobiles = append([]string(nil), c.Mobiles...)
	out.Regions = append([]string(nil), c.Regions...)
	out.States = append([]string(nil), c.States...)
	return out
}

// Validate checks presence and enumeration membership. It assumes
// Canonicalize has run.
func (c *Carrier) Validate(requireEmail bool) error {
	if c.Name == "" {
		return errors.New(errors.KindDomain, "carrier.validate", "nome é obrigatório")
	}
	if requireEmail && c.Email == "" {
		return errors.New(errors.KindDomain, "carrier.validate", "email é obrigatório")
	}
	for _, region := range c.Regions {
		if !IsRegion(region) {
			return errors.New(errors.KindDomain, "carrier.validate", "região inválida: "+region)
		}
	}
	for _, state := range c.States {
		if !IsState(state) {
			return errors.New(errors.KindDomain, "carrier.validate", "estado inválido: "+state)
		}
	}
	return nil
}
