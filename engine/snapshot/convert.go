package snapshot

import (
	"fmt"
	"strings"

	"github.com/WessleyAI/installbom/pkg/textkey"
	"github.com/google/uuid"
)

// CurrentVersion is the schema version written by ToCanonical.
const CurrentVersion = 2

// idSpace namespaces all synthesized identifiers.
var idSpace = uuid.MustParse("5b7c3f0e-9f8a-4d7e-a3c1-2f6e8d4b9a10")

// StableID derives a deterministic identifier from a natural key, so that
// converting the same legacy document twice yields identical ids.
func StableID(namespace, value string) string {
	return uuid.NewSHA1(idSpace, []byte(namespace+":"+textkey.Key(value))).String()
}

// ToCanonical converts a flat snapshot into the graph layout.
func ToCanonical(s Snapshot) DocumentV2 {
	b := newGraphBuilder()

	nodes := make([]NodeV2, 0, len(s.ConnectionPoints))
	for i, cp := range s.ConnectionPoints {
		n := nodeFromPoint(cp)
		n.ID = b.declareNode(cp.Name, i)
		nodes = append(nodes, n)
	}

	devices := make([]DeviceV2, 0, len(s.DeviceGroups))
	for i, g := range s.DeviceGroups {
		d := DeviceV2{
			ID:              StableID("device", fmt.Sprintf("%d|%s|%s", i, g.DeviceTypeName, g.ConnectionPoint)),
			DeviceType:      ref(g.DeviceTypeID, g.DeviceTypeName),
			Quantity:        g.Quantity,
			LocationID:      b.location(g.InstallLocation),
			DistanceToNode:  g.DistanceToConnectionPoint,
			SurfaceCategory: g.InstallSurfaceCategory,
			GroupLabel:      g.GroupLabel,
			Cables: CablesV2{
				Signal:     ref(g.SignalCableTypeID, g.SignalCableName),
				LowVoltage: ref(g.LowVoltageCableTypeID, g.LowVoltageCableName),
			},
		}
		if g.CameraAccessory != "" || g.ViewingDepth != "" {
			d.Camera = &CameraV2{Accessory: g.CameraAccessory, ViewingDepth: g.ViewingDepth}
		}
		id, implicit := b.nodeRef(g.ConnectionPoint)
		if implicit {
			nodes = append(nodes, NodeV2{ID: id, Name: strings.TrimSpace(g.ConnectionPoint), Implicit: true})
		}
		d.NodeID = id
		devices = append(devices, d)
	}

	groups := make([]MaterialGroupV2, 0, len(s.MaterialGroups))
	for i, g := range s.MaterialGroups {
		groups = append(groups, MaterialGroupV2{
			ID:        StableID("material-group", fmt.Sprintf("%d|%s", i, g.GroupLabel)),
			Label:     g.GroupLabel,
			Materials: append([]MaterialUsage{}, g.Materials...),
		})
	}

	workspaces := make([]WorkspaceV2, 0, len(s.Workspaces))
	for i, w := range s.Workspaces {
		workspaces = append(workspaces, WorkspaceV2{
			ID:         StableID("workspace", fmt.Sprintf("%d|%s", i, w.Location)),
			LocationID: b.location(w.Location),
			Equipment:  w.Equipment,
		})
	}

	mainLocation := b.location(s.MainWorkspaceLocation)

	return DocumentV2{
		Version: CurrentVersion,
		Summary: SummaryV2{
			TotalDeviceCount:        s.TotalDeviceCount,
			TotalNodeCount:          s.TotalNodeCount,
			TotalConnectionPoints:   s.TotalConnectionPoints,
			NodeConnectionMethod:    s.NodeConnectionMethod,
			NodeConnectionDiagram:   s.NodeConnectionDiagram,
			MainWorkspaceLocationID: mainLocation,
			WorkspaceCount:          s.WorkspaceCount,
		},
		Locations:      b.locations,
		Nodes:          nodes,
		Devices:        devices,
		MaterialGroups: groups,
		Mounting:       copyMounting(s.MountingRequirements),
		Workspaces:     workspaces,
	}
}

// ToLegacy resolves the graph layout into the flat snapshot. References
// that do not resolve produce empty names rather than failures.
func ToLegacy(d DocumentV2) Snapshot {
	locations := make(map[string]string, len(d.Locations))
	for _, l := range d.Locations {
		locations[l.ID] = l.Name
	}
	nodeNames := make(map[string]string, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, dup := nodeNames[n.ID]; !dup {
			nodeNames[n.ID] = n.Name
		}
	}

	points := make([]ConnectionPoint, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		if !n.Implicit {
			points = append(points, pointFromNode(n))
		}
	}

	groups := make([]DeviceGroup, 0, len(d.Devices))
	for _, dv := range d.Devices {
		g := DeviceGroup{
			Quantity:                  dv.Quantity,
			InstallLocation:           locations[dv.LocationID],
			InstallSurfaceCategory:    dv.SurfaceCategory,
			ConnectionPoint:           nodeNames[dv.NodeID],
			DistanceToConnectionPoint: dv.DistanceToNode,
			GroupLabel:                dv.GroupLabel,
		}
		g.DeviceTypeID, g.DeviceTypeName = unref(dv.DeviceType)
		g.SignalCableTypeID, g.SignalCableName = unref(dv.Cables.Signal)
		g.LowVoltageCableTypeID, g.LowVoltageCableName = unref(dv.Cables.LowVoltage)
		if dv.Camera != nil {
			g.CameraAccessory = dv.Camera.Accessory
			g.ViewingDepth = dv.Camera.ViewingDepth
		}
		groups = append(groups, g)
	}

	materials := make([]MaterialGroup, 0, len(d.MaterialGroups))
	for _, mg := range d.MaterialGroups {
		materials = append(materials, MaterialGroup{
			GroupLabel: mg.Label,
			Materials:  append([]MaterialUsage{}, mg.Materials...),
		})
	}

	workspaces := make([]Workspace, 0, len(d.Workspaces))
	for _, w := range d.Workspaces {
		workspaces = append(workspaces, Workspace{Location: locations[w.LocationID], Equipment: w.Equipment})
	}

	return Snapshot{
		TotalDeviceCount:      d.Summary.TotalDeviceCount,
		TotalNodeCount:        d.Summary.TotalNodeCount,
		TotalConnectionPoints: d.Summary.TotalConnectionPoints,
		NodeConnectionMethod:  d.Summary.NodeConnectionMethod,
		NodeConnectionDiagram: d.Summary.NodeConnectionDiagram,
		MainWorkspaceLocation: locations[d.Summary.MainWorkspaceLocationID],
		WorkspaceCount:        d.Summary.WorkspaceCount,
		DeviceGroups:          groups,
		ConnectionPoints:      points,
		MaterialGroups:        materials,
		MountingRequirements:  copyMounting(d.Mounting),
		Workspaces:            workspaces,
	}
}

// graphBuilder assigns ids to locations and nodes while converting.
type graphBuilder struct {
	locations   []LocationV2
	locationIDs map[string]string
	nodeIDs     map[string]string // key -> first declared node id
	usedIDs     map[string]bool
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		locations:   []LocationV2{},
		locationIDs: make(map[string]string),
		nodeIDs:     make(map[string]string),
		usedIDs:     make(map[string]bool),
	}
}

// location returns the id for a location name, registering it on first use.
func (b *graphBuilder) location(name string) string {
	key := textkey.Key(name)
	if key == "" {
		return ""
	}
	if id, ok := b.locationIDs[key]; ok {
		return id
	}
	id := StableID("location", key)
	b.locationIDs[key] = id
	b.locations = append(b.locations, LocationV2{ID: id, Name: strings.TrimSpace(name)})
	return id
}

// declareNode assigns an id to a declared node. Blank names get a
// positional id; repeated names get a suffixed one.
func (b *graphBuilder) declareNode(name string, pos int) string {
	key := textkey.Key(name)
	value := key
	if key == "" {
		value = fmt.Sprintf("#%d", pos)
	}
	id := StableID("node", value)
	for n := 2; b.usedIDs[id]; n++ {
		id = StableID("node", fmt.Sprintf("%s#%d", value, n))
	}
	b.usedIDs[id] = true
	if _, ok := b.nodeIDs[key]; !ok && key != "" {
		b.nodeIDs[key] = id
	}
	return id
}

// nodeRef resolves a device's node name. A name with no declared node
// yields a new implicit node id, reported once.
func (b *graphBuilder) nodeRef(name string) (id string, implicit bool) {
	key := textkey.Key(name)
	if key == "" {
		return "", false
	}
	if id, ok := b.nodeIDs[key]; ok {
		return id, false
	}
	id = StableID("node", key)
	for n := 2; b.usedIDs[id]; n++ {
		id = StableID("node", fmt.Sprintf("%s#%d", key, n))
	}
	b.usedIDs[id] = true
	b.nodeIDs[key] = id
	return id, true
}

func nodeFromPoint(cp ConnectionPoint) NodeV2 {
	n := NodeV2{
		Name:            cp.Name,
		MountingElement: ref(cp.MountingElementID, cp.MountingElementName),
		DistanceToPower: cp.DistanceToPower,
		PowerCable:      ref(cp.PowerCableTypeID, cp.PowerCableName),
		Hardware: Hardware{
			SingleSockets: cp.SingleSocketCount,
			DoubleSockets: cp.DoubleSocketCount,
			Breakers:      cp.BreakerCount,
			BreakerBoxes:  cp.BreakerBoxCount,
			Nshvi:         cp.NshviCount,
		},
	}
	if r := ref(cp.LayingMaterialID, cp.LayingMaterialName); r != nil || cp.LayingMaterialUnit != "" || cp.LayingSurfaceCategory != "" {
		n.LayingMaterial = &Laying{Unit: cp.LayingMaterialUnit, SurfaceCategory: cp.LayingSurfaceCategory}
		if r != nil {
			n.LayingMaterial.RefV2 = *r
		}
	}
	return n
}

func pointFromNode(n NodeV2) ConnectionPoint {
	cp := ConnectionPoint{
		Name:              n.Name,
		DistanceToPower:   n.DistanceToPower,
		SingleSocketCount: n.Hardware.SingleSockets,
		DoubleSocketCount: n.Hardware.DoubleSockets,
		BreakerCount:      n.Hardware.Breakers,
		BreakerBoxCount:   n.Hardware.BreakerBoxes,
		NshviCount:        n.Hardware.Nshvi,
	}
	cp.MountingElementID, cp.MountingElementName = unref(n.MountingElement)
	cp.PowerCableTypeID, cp.PowerCableName = unref(n.PowerCable)
	if l := n.LayingMaterial; l != nil {
		cp.LayingMaterialID, cp.LayingMaterialName = l.ID, l.Name
		cp.LayingMaterialUnit = l.Unit
		cp.LayingSurfaceCategory = l.SurfaceCategory
	}
	return cp
}

func ref(id ID, name string) *RefV2 {
	if !id.Valid && name == "" {
		return nil
	}
	return &RefV2{ID: id, Name: name}
}

func unref(r *RefV2) (ID, string) {
	if r == nil {
		return ID{}, ""
	}
	return r.ID, r.Name
}

func copyMounting(in []MountingRequirement) []MountingRequirement {
	out := make([]MountingRequirement, 0, len(in))
	for _, m := range in {
		m.Materials = append([]MountingMaterial{}, m.Materials...)
		out = append(out, m)
	}
	return out
}
