// Package catalog holds the read-only reference data a summarization needs:
// cable types, per-device-type default cable profiles and the global
// consumable coefficients.
package catalog

import (
	"github.com/WessleyAI/installbom/engine/domain"
	"github.com/WessleyAI/installbom/pkg/textkey"
)

// CableType is a catalog cable entry.
type CableType struct {
	ID       int64
	Name     string
	Function domain.CableFunction
}

// DeviceProfile lists the default cables for one device type.
type DeviceProfile struct {
	DeviceTypeID   int64
	DeviceTypeName string
	CableTypeIDs   []int64
}

// Coefficients are per-meter multipliers for derived consumables. Zero
// disables the corresponding derivation.
type Coefficients struct {
	ClipsPerMeter float64 `json:"clipsPerMeter"`
	TiesPerMeter  float64 `json:"tiesPerMeter"`
}

// Catalog is an immutable, materialized lookup table.
type Catalog struct {
	cables       map[int64]CableType
	profileByID  map[int64][]CableType
	profileByKey map[string][]CableType
	coefficients Coefficients
}

// New indexes cables and profiles. Profile entries naming unknown cable ids
// are skipped.
func New(cables []CableType, profiles []DeviceProfile, coef Coefficients) *Catalog {
	c := &Catalog{
		cables:       make(map[int64]CableType, len(cables)),
		profileByID:  make(map[int64][]CableType),
		profileByKey: make(map[string][]CableType),
		coefficients: coef,
	}
	for _, ct := range cables {
		if ct.Function == "" {
			ct.Function = domain.CableUnknown
		}
		c.cables[ct.ID] = ct
	}
	for _, p := range profiles {
		var resolved []CableType
		for _, id := range p.CableTypeIDs {
			if ct, ok := c.cables[id]; ok {
				resolved = append(resolved, ct)
			}
		}
		if len(resolved) == 0 {
			continue
		}
		if p.DeviceTypeID > 0 {
			c.profileByID[p.DeviceTypeID] = append(c.profileByID[p.DeviceTypeID], resolved...)
		}
		if key := textkey.Key(p.DeviceTypeName); key != "" {
			c.profileByKey[key] = append(c.profileByKey[key], resolved...)
		}
	}
	return c
}

// Empty returns a catalog with no entries and zero coefficients.
func Empty() *Catalog { return New(nil, nil, Coefficients{}) }

// Cable resolves a cable type by id.
func (c *Catalog) Cable(id int64) (CableType, bool) {
	if c == nil {
		return CableType{}, false
	}
	ct, ok := c.cables[id]
	return ct, ok
}

// ProfilesFor returns the default cables for a device type, matched by id
// when positive, else by normalized name.
func (c *Catalog) ProfilesFor(typeID int64, typeName string) []CableType {
	if c == nil {
		return nil
	}
	if typeID > 0 {
		if p, ok := c.profileByID[typeID]; ok {
			return p
		}
	}
	return c.profileByKey[textkey.Key(typeName)]
}

// Coefficients returns the consumable multipliers.
func (c *Catalog) Coefficients() Coefficients {
	if c == nil {
		return Coefficients{}
	}
	return c.coefficients
}

// WithCoefficients returns a copy sharing the same tables with different
// coefficients.
func (c *Catalog) WithCoefficients(coef Coefficients) *Catalog {
	if c == nil {
		c = Empty()
	}
	cp := *c
	cp.coefficients = coef
	return &cp
}

// Stats reports table sizes.
func (c *Catalog) Stats() (cables, profiles int) {
	if c == nil {
		return 0, 0
	}
	return len(c.cables), len(c.profileByID) + len(c.profileByKey)
}
