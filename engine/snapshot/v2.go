package snapshot

// DocumentV2 is the graph layout: locations, nodes and devices are keyed by
// generated identifiers and reference each other by id.
type DocumentV2 struct {
	Version        Count                 `json:"version"`
	Summary        SummaryV2             `json:"summary"`
	Locations      []LocationV2          `json:"locations"`
	Nodes          []NodeV2              `json:"nodes"`
	Devices        []DeviceV2            `json:"devices"`
	MaterialGroups []MaterialGroupV2     `json:"materialGroups"`
	Mounting       []MountingRequirement `json:"mounting"`
	Workspaces     []WorkspaceV2         `json:"workspaces"`
}

// SummaryV2 holds the user-declared totals.
type SummaryV2 struct {
	TotalDeviceCount        Count  `json:"totalDeviceCount"`
	TotalNodeCount          Count  `json:"totalNodeCount"`
	TotalConnectionPoints   Count  `json:"totalConnectionPoints"`
	NodeConnectionMethod    string `json:"nodeConnectionMethod,omitempty"`
	NodeConnectionDiagram   string `json:"nodeConnectionDiagram,omitempty"`
	MainWorkspaceLocationID string `json:"mainWorkspaceLocationId,omitempty"`
	WorkspaceCount          Count  `json:"workspaceCount"`
}

// RefV2 is a catalog selection: an id, a free-text name, or both.
type RefV2 struct {
	ID   ID     `json:"id,omitzero"`
	Name string `json:"name,omitempty"`
}

// LocationV2 is a named place inside the object.
type LocationV2 struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NodeV2 is a connection node. Implicit nodes were referenced by devices
// without being declared.
type NodeV2 struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Implicit        bool     `json:"implicit,omitempty"`
	MountingElement *RefV2   `json:"mountingElement,omitempty"`
	DistanceToPower Length   `json:"distanceToPower,omitempty"`
	PowerCable      *RefV2   `json:"powerCable,omitempty"`
	LayingMaterial  *Laying  `json:"layingMaterial,omitempty"`
	Hardware        Hardware `json:"hardware"`
}

// Laying is the material and surface used for a node's power feed.
type Laying struct {
	RefV2
	Unit            string `json:"unit,omitempty"`
	SurfaceCategory string `json:"surfaceCategory,omitempty"`
}

// Hardware are the accessory counts installed at a node.
type Hardware struct {
	SingleSockets Count    `json:"singleSockets,omitempty"`
	DoubleSockets Count    `json:"doubleSockets,omitempty"`
	Breakers      Count    `json:"breakers,omitempty"`
	BreakerBoxes  OptCount `json:"breakerBoxes,omitzero"`
	Nshvi         OptCount `json:"nshvi,omitzero"`
}

// DeviceV2 is a device group referencing a location and a node by id.
type DeviceV2 struct {
	ID              string    `json:"id"`
	DeviceType      *RefV2    `json:"deviceType,omitempty"`
	Quantity        OptCount  `json:"quantity,omitzero"`
	LocationID      string    `json:"locationId,omitempty"`
	NodeID          string    `json:"nodeId,omitempty"`
	DistanceToNode  Length    `json:"distanceToNode,omitempty"`
	SurfaceCategory string    `json:"surfaceCategory,omitempty"`
	GroupLabel      string    `json:"groupLabel,omitempty"`
	Camera          *CameraV2 `json:"camera,omitempty"`
	Cables          CablesV2  `json:"cables"`
}

// CameraV2 holds camera-only attributes.
type CameraV2 struct {
	Accessory    string `json:"accessory,omitempty"`
	ViewingDepth Text   `json:"viewingDepth,omitempty"`
}

// CablesV2 are explicit cable selections for a device group.
type CablesV2 struct {
	Signal     *RefV2 `json:"signal,omitempty"`
	LowVoltage *RefV2 `json:"lowVoltage,omitempty"`
}

// MaterialGroupV2 is a labelled material bundle.
type MaterialGroupV2 struct {
	ID        string          `json:"id"`
	Label     string          `json:"label,omitempty"`
	Materials []MaterialUsage `json:"materials"`
}

// WorkspaceV2 is a workspace placed at a location.
type WorkspaceV2 struct {
	ID         string `json:"id"`
	LocationID string `json:"locationId,omitempty"`
	Equipment  string `json:"equipment,omitempty"`
}
