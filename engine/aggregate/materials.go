package aggregate

import (
	"strings"

	"github.com/WessleyAI/installbom/engine/catalog"
	"github.com/WessleyAI/installbom/engine/domain"
	"github.com/WessleyAI/installbom/engine/rules"
	"github.com/WessleyAI/installbom/engine/snapshot"
	"github.com/WessleyAI/installbom/pkg/qty"
	"github.com/WessleyAI/installbom/pkg/textkey"
)

// Derived item names.
const (
	SingleSocketItem  = "Розетка одинарная"
	DoubleSocketItem  = "Розетка двойная"
	BreakerItem       = "Автоматический выключатель"
	BreakerBoxItem    = "Бокс для автоматов"
	TerminalLugItem   = "Наконечник НШВИ"
	CorrugatedClip    = "Клипса для гофротрубы"
	CableTie          = "Стяжка кабельная"
	corrugatedMarker  = "гофр"
	fastenersPerUnit  = 4
	connectorsPerUnit = 2
)

// NodeSummary is the material total of one connection point.
type NodeSummary struct {
	Name           string   `json:"name"`
	Materials      []Line   `json:"materials"`
	MaterialGroups []string `json:"materialGroups,omitempty"`
}

// MaterialGroupSummary is one material group with its resolved node.
// Node is empty when the group could not be attributed.
type MaterialGroupSummary struct {
	Label     string `json:"label"`
	Node      string `json:"node,omitempty"`
	Materials []Line `json:"materials"`
}

// MaterialSummary is the output of SummarizeMaterials.
type MaterialSummary struct {
	Nodes               []NodeSummary
	Groups              []MaterialGroupSummary
	MaterialTotals      []Line
	MountingTotals      []Line
	AdditionalMaterials []Line
	CorrugatedLength    float64
}

type nodeContext struct {
	name      string
	materials *Accumulator
	groups    []string
}

// SummarizeMaterials builds per-node contexts, reconciles material groups
// to nodes, totals mounting requirements and derives consumables.
func SummarizeMaterials(s snapshot.Snapshot, dev DeviceSummary, cab CableSummary, coef catalog.Coefficients) MaterialSummary {
	var out MaterialSummary
	totals := NewAccumulator()

	contexts := make(map[string]*nodeContext)
	var order []*nodeContext
	for _, n := range s.ConnectionPoints {
		// Unnamed nodes get their own context and are never resolvable by label.
		key := textkey.Key(n.Name)
		ctx, ok := contexts[key]
		if !ok || key == "" {
			ctx = &nodeContext{name: strings.TrimSpace(n.Name), materials: NewAccumulator()}
			order = append(order, ctx)
			if key != "" {
				contexts[key] = ctx
			}
		}
		seedNode(ctx.materials, n)
		if feed, ok := powerFeed(n); ok {
			ctx.materials.Add(feed.Name, feed.Unit, feed.Quantity)
			if textkey.Contains(feed.Name, corrugatedMarker) {
				out.CorrugatedLength += feed.Quantity
			}
		}
	}
	for _, ctx := range order {
		totals.Merge(ctx.materials)
	}

	labels := reconcileLabels(s.DeviceGroups)
	for _, mg := range s.MaterialGroups {
		lines := NewAccumulator()
		for _, u := range mg.Materials {
			amt := qty.ParseAmount(string(u.Amount), u.Unit)
			name := materialName(u.MaterialName)
			lines.Add(name, amt.Unit, amt.Value)
			if textkey.Contains(name, corrugatedMarker) {
				out.CorrugatedLength += max(amt.Value, 0)
			}
		}
		totals.Merge(lines)

		summary := MaterialGroupSummary{Label: strings.TrimSpace(mg.GroupLabel), Materials: lines.Lines()}
		if ctx := resolveGroup(mg.GroupLabel, labels, contexts); ctx != nil {
			ctx.materials.Merge(lines)
			ctx.groups = append(ctx.groups, summary.Label)
			summary.Node = ctx.name
		}
		out.Groups = append(out.Groups, summary)
	}

	for _, ctx := range order {
		out.Nodes = append(out.Nodes, NodeSummary{
			Name:           ctx.name,
			Materials:      ctx.materials.Lines(),
			MaterialGroups: ctx.groups,
		})
	}
	out.MaterialTotals = totals.Lines()
	out.MountingTotals = mountingTotals(s.MountingRequirements).Lines()
	out.AdditionalMaterials = additional(dev, cab, out.CorrugatedLength, coef).Lines()
	return out
}

// seedNode adds the hardware implied by a node's accessory counts.
func seedNode(acc *Accumulator, n snapshot.ConnectionPoint) {
	single, double := n.Sockets()
	for _, item := range []struct {
		name  string
		count int
	}{
		{SingleSocketItem, single},
		{DoubleSocketItem, double},
		{BreakerItem, n.Breakers()},
		{BreakerBoxItem, n.BreakerBoxes()},
		{TerminalLugItem, n.TerminalLugs()},
	} {
		if item.count > 0 {
			acc.Add(item.name, domain.PieceUnit, float64(item.count))
		}
	}
}

// powerFeed returns the laying-material row for a node's power feed. A
// material selected by id only is reported as not specified.
func powerFeed(n snapshot.ConnectionPoint) (Line, bool) {
	length := float64(n.DistanceToPower)
	if length <= 0 || !hasLayingMaterial(n) {
		return Line{}, false
	}
	unit := strings.TrimSpace(n.LayingMaterialUnit)
	if unit == "" {
		unit = domain.DefaultLengthUnit
	}
	return Line{Name: materialName(strings.TrimSpace(n.LayingMaterialName)), Unit: unit, Quantity: length}, true
}

// reconcileLabels maps each device-group label to the single node key it
// references. Labels referencing more than one node are left out.
func reconcileLabels(groups []snapshot.DeviceGroup) map[string]string {
	targets := make(map[string]string)
	ambiguous := make(map[string]bool)
	for _, g := range groups {
		label, node := textkey.Key(g.GroupLabel), textkey.Key(g.ConnectionPoint)
		if label == "" || node == "" || ambiguous[label] {
			continue
		}
		if prev, ok := targets[label]; ok && prev != node {
			delete(targets, label)
			ambiguous[label] = true
			continue
		}
		targets[label] = node
	}
	return targets
}

// resolveGroup finds the node a material group belongs to: by label
// reconciliation first, then by the label naming a node directly.
func resolveGroup(label string, labels map[string]string, contexts map[string]*nodeContext) *nodeContext {
	key := textkey.Key(label)
	if key == "" {
		return nil
	}
	if node, ok := labels[key]; ok {
		if ctx, ok := contexts[node]; ok {
			return ctx
		}
	}
	return contexts[key]
}

func materialName(name string) string {
	if textkey.Blank(name) {
		return domain.NotSpecified
	}
	return name
}

// mountingTotals counts mounting elements and their materials. Material
// amounts are per element and multiplied by a positive element quantity.
func mountingTotals(reqs []snapshot.MountingRequirement) *Accumulator {
	acc := NewAccumulator()
	for _, r := range reqs {
		n := qty.NonNegative(qty.Value(string(r.Quantity)))
		acc.Add(materialName(r.ElementName), domain.PieceUnit, n)
		for _, m := range r.Materials {
			amt := qty.ParseAmount(string(m.Amount), m.Unit)
			v := amt.Value
			if n > 0 {
				v *= n
			}
			acc.Add(materialName(m.MaterialName), amt.Unit, v)
		}
	}
	return acc
}

// additional merges rule materials with camera and coefficient-derived
// consumables.
func additional(dev DeviceSummary, cab CableSummary, corrugated float64, coef catalog.Coefficients) *Accumulator {
	acc := NewAccumulator()
	acc.Merge(dev.RuleMaterials)

	if dev.TotalCameras > 0 {
		acc.Add(rules.RJ45Connector, domain.PieceUnit, float64(connectorsPerUnit*dev.TotalCameras))
		for _, surface := range surfaceOrder {
			if n := dev.CamerasBySurface[surface]; n > 0 {
				acc.Add(surface.Fastener(), domain.PieceUnit, float64(fastenersPerUnit*n))
			}
		}
		for _, a := range []domain.CameraAccessory{domain.AccessoryAdapter, domain.AccessoryPlasticBox} {
			if n := dev.CamerasByAccessory[a]; n > 0 {
				acc.Add(a.Label(), domain.PieceUnit, float64(n))
				acc.Add(a.Fastener(), domain.PieceUnit, float64(fastenersPerUnit*n))
			}
		}
	}

	if coef.ClipsPerMeter > 0 && corrugated > 0 {
		acc.Add(CorrugatedClip, domain.PieceUnit, qty.Ceil(corrugated*coef.ClipsPerMeter))
	}
	if coef.TiesPerMeter > 0 && cab.StructureLengthWithoutMaterial > 0 {
		acc.Add(CableTie, domain.PieceUnit, qty.Ceil(cab.StructureLengthWithoutMaterial*coef.TiesPerMeter))
	}
	return acc
}

// surfaceOrder fixes iteration order over surface buckets.
var surfaceOrder = []domain.SurfaceCategory{
	domain.SurfaceConcrete, domain.SurfaceBrick, domain.SurfaceDrywall, domain.SurfaceWood,
	domain.SurfaceMetal, domain.SurfaceExistingStructures, domain.SurfaceUnknown,
}
