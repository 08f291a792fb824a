// Package snapshot holds the primary-data document model of one managed
// object and the converters between its two schema versions. The flat
// Snapshot decodes directly from the legacy (V1) layout; the graph layout
// (V2) is resolved into it before any aggregation runs.
package snapshot

// Snapshot is the canonical in-memory document. Declared counts are
// advisory and may disagree with totals derived from the collections.
type Snapshot struct {
	TotalDeviceCount      Count  `json:"totalDeviceCount"`
	TotalNodeCount        Count  `json:"totalNodeCount"`
	TotalConnectionPoints Count  `json:"totalConnectionPoints"`
	NodeConnectionMethod  string `json:"nodeConnectionMethod,omitempty"`
	NodeConnectionDiagram string `json:"nodeConnectionDiagram,omitempty"`
	MainWorkspaceLocation string `json:"mainWorkspaceLocation,omitempty"`
	WorkspaceCount        Count  `json:"workspaceCount"`

	DeviceGroups         []DeviceGroup         `json:"deviceGroups"`
	ConnectionPoints     []ConnectionPoint     `json:"connectionPoints"`
	MaterialGroups       []MaterialGroup       `json:"materialGroups"`
	MountingRequirements []MountingRequirement `json:"mountingRequirements"`
	Workspaces           []Workspace           `json:"workspaces"`
}

// Empty reports whether the document carries no meaningful content.
func (s Snapshot) Empty() bool {
	return s.TotalDeviceCount == 0 && s.TotalNodeCount == 0 && s.TotalConnectionPoints == 0 &&
		s.WorkspaceCount == 0 && s.NodeConnectionMethod == "" && s.NodeConnectionDiagram == "" &&
		s.MainWorkspaceLocation == "" &&
		len(s.DeviceGroups) == 0 && len(s.ConnectionPoints) == 0 && len(s.MaterialGroups) == 0 &&
		len(s.MountingRequirements) == 0 && len(s.Workspaces) == 0
}

// DeviceGroup is a batch of identical devices sharing location and wiring.
// ConnectionPoint and GroupLabel are loose text keys, not references.
type DeviceGroup struct {
	DeviceTypeID              ID       `json:"deviceTypeId,omitzero"`
	DeviceTypeName            string   `json:"deviceTypeName,omitempty"`
	Quantity                  OptCount `json:"quantity,omitzero"`
	InstallLocation           string   `json:"installLocation,omitempty"`
	InstallSurfaceCategory    string   `json:"installSurfaceCategory,omitempty"`
	ConnectionPoint           string   `json:"connectionPoint,omitempty"`
	DistanceToConnectionPoint Length   `json:"distanceToConnectionPoint,omitempty"`
	GroupLabel                string   `json:"groupLabel,omitempty"`
	CameraAccessory           string   `json:"cameraAccessory,omitempty"`
	ViewingDepth              Text     `json:"viewingDepth,omitempty"`
	SignalCableTypeID         ID       `json:"signalCableTypeId,omitzero"`
	SignalCableName           string   `json:"signalCableName,omitempty"`
	LowVoltageCableTypeID     ID       `json:"lowVoltageCableTypeId,omitzero"`
	LowVoltageCableName       string   `json:"lowVoltageCableName,omitempty"`
}

// Units is the group quantity: 1 when absent or zero, never negative.
func (g DeviceGroup) Units() int {
	n := g.Quantity.Or(1)
	if n == 0 {
		return 1
	}
	return max(n, 0)
}

// ConnectionPoint is a named node (cabinet, panel) where devices, power
// and materials converge.
type ConnectionPoint struct {
	Name                  string   `json:"name"`
	MountingElementID     ID       `json:"mountingElementId,omitzero"`
	MountingElementName   string   `json:"mountingElementName,omitempty"`
	DistanceToPower       Length   `json:"distanceToPower,omitempty"`
	PowerCableTypeID      ID       `json:"powerCableTypeId,omitzero"`
	PowerCableName        string   `json:"powerCableName,omitempty"`
	LayingMaterialID      ID       `json:"layingMaterialId,omitzero"`
	LayingMaterialName    string   `json:"layingMaterialName,omitempty"`
	LayingMaterialUnit    string   `json:"layingMaterialUnit,omitempty"`
	LayingSurfaceCategory string   `json:"layingSurfaceCategory,omitempty"`
	SingleSocketCount     Count    `json:"singleSocketCount,omitempty"`
	DoubleSocketCount     Count    `json:"doubleSocketCount,omitempty"`
	BreakerCount          Count    `json:"breakerCount,omitempty"`
	BreakerBoxCount       OptCount `json:"breakerBoxCount,omitzero"`
	NshviCount            OptCount `json:"nshviCount,omitzero"`
}

// Breakers returns the breaker count; a nonzero count is at least one pair.
func (c ConnectionPoint) Breakers() int {
	n := max(int(c.BreakerCount), 0)
	if n > 0 && n < 2 {
		return 2
	}
	return n
}

// BreakerBoxes returns the declared box count or ceil(breakers/2).
func (c ConnectionPoint) BreakerBoxes() int {
	if c.BreakerBoxCount.Valid {
		return max(c.BreakerBoxCount.Value, 0)
	}
	return (c.Breakers() + 1) / 2
}

// Sockets returns the single and double socket counts.
func (c ConnectionPoint) Sockets() (single, double int) {
	return max(int(c.SingleSocketCount), 0), max(int(c.DoubleSocketCount), 0)
}

// TerminalLugs returns the declared NSHVI lug count or
// 4 per socket plus 2 per breaker.
func (c ConnectionPoint) TerminalLugs() int {
	if c.NshviCount.Valid {
		return max(c.NshviCount.Value, 0)
	}
	single, double := c.Sockets()
	return 4*(single+double) + 2*c.Breakers()
}

// MaterialGroup is a free-form bundle of material usages, tied to device
// groups only by a matching label.
type MaterialGroup struct {
	GroupLabel string          `json:"groupLabel,omitempty"`
	Materials  []MaterialUsage `json:"materials"`
}

// MaterialUsage is one material line; Amount may embed its unit.
type MaterialUsage struct {
	MaterialID            ID     `json:"materialId,omitzero"`
	MaterialName          string `json:"materialName,omitempty"`
	Amount                Text   `json:"amount,omitempty"`
	Unit                  string `json:"unit,omitempty"`
	LayingSurfaceCategory string `json:"layingSurfaceCategory,omitempty"`
}

// MountingRequirement is a mounting element and the materials it consumes
// per unit.
type MountingRequirement struct {
	ElementID   ID                 `json:"elementId,omitzero"`
	ElementName string             `json:"elementName,omitempty"`
	Quantity    Text               `json:"quantity,omitempty"`
	Materials   []MountingMaterial `json:"materials"`
}

// MountingMaterial is one material consumed by a mounting element.
type MountingMaterial struct {
	MaterialID   ID     `json:"materialId,omitzero"`
	MaterialName string `json:"materialName,omitempty"`
	Amount       Text   `json:"amount,omitempty"`
	Unit         string `json:"unit,omitempty"`
}

// Workspace is an operator workplace declared for the object.
type Workspace struct {
	Location  string `json:"location,omitempty"`
	Equipment string `json:"equipment,omitempty"`
}
