package aggregate

import (
	"strings"

	"github.com/WessleyAI/installbom/engine/catalog"
	"github.com/WessleyAI/installbom/engine/domain"
	"github.com/WessleyAI/installbom/engine/snapshot"
	"github.com/WessleyAI/installbom/pkg/textkey"
)

// CableBucket is the accumulated length of one cable name.
type CableBucket struct {
	Name                  string               `json:"name"`
	Function              domain.CableFunction `json:"function"`
	Length                float64              `json:"length"`
	ClassificationMissing bool                 `json:"classificationMissing"`
}

// CableSummary is the output of SummarizeCables.
type CableSummary struct {
	ByName                         []CableBucket
	ByFunction                     map[domain.CableFunction]float64
	TotalLength                    float64
	StructureLengthWithoutMaterial float64
	DeclaredNodeNames              []string
}

type cableAcc struct {
	index   map[string]int
	buckets []CableBucket
	out     *CableSummary
}

// add attributes length to a cable name. A bucket stays unclassified only
// while every contribution to it lacks a known function.
func (c *cableAcc) add(name string, fn domain.CableFunction, length float64) {
	if length <= 0 {
		return
	}
	if textkey.Blank(name) {
		name = domain.Unclassified
	}
	if fn == "" {
		fn = domain.CableUnknown
	}
	key := textkey.Key(name)
	i, ok := c.index[key]
	if !ok {
		i = len(c.buckets)
		c.index[key] = i
		c.buckets = append(c.buckets, CableBucket{
			Name:                  strings.TrimSpace(name),
			Function:              fn,
			ClassificationMissing: true,
		})
	}
	b := &c.buckets[i]
	b.Length += length
	if fn.Known() {
		if b.ClassificationMissing {
			b.Function = fn
		}
		b.ClassificationMissing = false
	}
	c.out.ByFunction[fn] += length
	c.out.TotalLength += length
}

// selection is an explicit cable choice on a device group or node.
type selection struct {
	id   snapshot.ID
	name string
}

func (s selection) present() bool { return s.id.Valid || !textkey.Blank(s.name) }

// resolve returns the cable name and function for a selection. Catalog
// entries win; a free-text name takes fallback.
func (s selection) resolve(cat *catalog.Catalog, fallback domain.CableFunction) (string, domain.CableFunction) {
	if s.id.Valid {
		if ct, ok := cat.Cable(s.id.Value); ok {
			return ct.Name, ct.Function
		}
	}
	if !textkey.Blank(s.name) {
		return s.name, fallback
	}
	return domain.Unclassified, domain.CableUnknown
}

// SummarizeCables attributes device segment and node power-feed lengths
// to cable names and functions.
//
// Device segment length is distance times quantity. Explicit selections
// each take the full length. Without one, every catalog profile cable for
// the device type takes the full length, and with no profile the length
// is unclassified.
func SummarizeCables(s snapshot.Snapshot, cat *catalog.Catalog) CableSummary {
	out := CableSummary{ByFunction: make(map[domain.CableFunction]float64)}
	acc := &cableAcc{index: make(map[string]int), out: &out}

	for _, g := range s.DeviceGroups {
		length := max(float64(g.DistanceToConnectionPoint), 0) * float64(g.Units())
		if length <= 0 {
			continue
		}
		explicit := []selection{
			{id: g.SignalCableTypeID, name: g.SignalCableName},
			{id: g.LowVoltageCableTypeID, name: g.LowVoltageCableName},
		}
		var chosen bool
		for _, sel := range explicit {
			if !sel.present() {
				continue
			}
			chosen = true
			name, fn := sel.resolve(cat, domain.CableUnknown)
			acc.add(name, fn, length)
		}
		if chosen {
			continue
		}
		profiles := cat.ProfilesFor(g.DeviceTypeID.Or(0), g.DeviceTypeName)
		if len(profiles) == 0 {
			acc.add(domain.Unclassified, domain.CableUnknown, length)
			continue
		}
		for _, ct := range profiles {
			acc.add(ct.Name, ct.Function, length)
		}
	}

	var declared nameSet
	for _, n := range s.ConnectionPoints {
		declared.add(n.Name)
		length := float64(n.DistanceToPower)
		if length <= 0 {
			continue
		}
		name, fn := selection{id: n.PowerCableTypeID, name: n.PowerCableName}.resolve(cat, domain.CablePower)
		acc.add(name, fn, length)
		if !hasLayingMaterial(n) && domain.ParseSurface(n.LayingSurfaceCategory) == domain.SurfaceExistingStructures {
			out.StructureLengthWithoutMaterial += length
		}
	}

	out.ByName = acc.buckets
	out.DeclaredNodeNames = declared.names
	return out
}

func hasLayingMaterial(n snapshot.ConnectionPoint) bool {
	return n.LayingMaterialID.Valid || !textkey.Blank(n.LayingMaterialName)
}
