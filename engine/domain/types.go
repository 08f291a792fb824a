// Package domain defines the shared vocabulary of the installation-plan
// engine: surface taxonomy, cable functions, camera accessories, display
// labels and the error types crossing the parser boundary.
package domain

// Display labels used when user input leaves a name unresolved.
const (
	NotSpecified = "Not specified"
	Unclassified = "Unclassified"
)

// DefaultLengthUnit is applied to length-based rows that carry no unit.
const DefaultLengthUnit = "m"

// PieceUnit is the unit of counted hardware.
const PieceUnit = "шт"

// SurfaceCategory classifies the base a device or cable run is mounted on.
type SurfaceCategory string

const (
	SurfaceUnknown            SurfaceCategory = ""
	SurfaceConcrete           SurfaceCategory = "CONCRETE"
	SurfaceBrick              SurfaceCategory = "BRICK"
	SurfaceDrywall            SurfaceCategory = "DRYWALL"
	SurfaceWood               SurfaceCategory = "WOOD"
	SurfaceMetal              SurfaceCategory = "METAL"
	SurfaceExistingStructures SurfaceCategory = "EXISTING_STRUCTURES"
)

// ValidSurfaces is the set of recognised surface categories.
var ValidSurfaces = map[SurfaceCategory]bool{
	SurfaceConcrete: true, SurfaceBrick: true, SurfaceDrywall: true,
	SurfaceWood: true, SurfaceMetal: true, SurfaceExistingStructures: true,
}

var surfaceLabels = map[SurfaceCategory]string{
	SurfaceUnknown:            "Не указано",
	SurfaceConcrete:           "Бетон",
	SurfaceBrick:              "Кирпич",
	SurfaceDrywall:            "Гипсокартон",
	SurfaceWood:               "Дерево",
	SurfaceMetal:              "Металл",
	SurfaceExistingStructures: "Существующие конструкции",
}

// surfaceFasteners names the fastener set used to mount one unit on a surface.
var surfaceFasteners = map[SurfaceCategory]string{
	SurfaceUnknown:            "Крепёж универсальный",
	SurfaceConcrete:           "Дюбель с шурупом 6x40 (бетон)",
	SurfaceBrick:              "Дюбель с шурупом 6x40 (кирпич)",
	SurfaceDrywall:            "Дюбель-бабочка для гипсокартона",
	SurfaceWood:               "Саморез по дереву 4,2x40",
	SurfaceMetal:              "Саморез по металлу 4,2x25",
	SurfaceExistingStructures: "Хомут металлический",
}

// Label returns the human-readable surface name.
func (s SurfaceCategory) Label() string {
	if l, ok := surfaceLabels[s]; ok {
		return l
	}
	return surfaceLabels[SurfaceUnknown]
}

// Fastener returns the fastener item used for this surface.
func (s SurfaceCategory) Fastener() string {
	if f, ok := surfaceFasteners[s]; ok {
		return f
	}
	return surfaceFasteners[SurfaceUnknown]
}

// CableFunction is the role a cable plays in the installation.
type CableFunction string

const (
	CableSignal     CableFunction = "SIGNAL"
	CableLowVoltage CableFunction = "LOW_VOLTAGE"
	CablePower      CableFunction = "POWER"
	CableUnknown    CableFunction = "UNKNOWN"
)

// ValidCableFunctions is the set of classified cable functions.
var ValidCableFunctions = map[CableFunction]bool{
	CableSignal: true, CableLowVoltage: true, CablePower: true,
}

var cableFunctionLabels = map[CableFunction]string{
	CableSignal:     "Сигнальный",
	CableLowVoltage: "Слаботочный",
	CablePower:      "Силовой",
	CableUnknown:    "Не классифицирован",
}

// Label returns the human-readable function name.
func (f CableFunction) Label() string {
	if l, ok := cableFunctionLabels[f]; ok {
		return l
	}
	return cableFunctionLabels[CableUnknown]
}

// Known reports whether f is a classified function.
func (f CableFunction) Known() bool { return ValidCableFunctions[f] }

// CameraAccessory is the optional mounting accessory chosen for a camera.
type CameraAccessory string

const (
	AccessoryNone       CameraAccessory = "NONE"
	AccessoryAdapter    CameraAccessory = "ADAPTER"
	AccessoryPlasticBox CameraAccessory = "PLASTIC_BOX"
)

var accessoryLabels = map[CameraAccessory]string{
	AccessoryNone:       "Без аксессуара",
	AccessoryAdapter:    "Монтажный адаптер",
	AccessoryPlasticBox: "Монтажная коробка пластиковая",
}

var accessoryFasteners = map[CameraAccessory]string{
	AccessoryAdapter:    "Саморез 4,2x16 для адаптера",
	AccessoryPlasticBox: "Саморез 3,5x16 для монтажной коробки",
}

// Label returns the human-readable accessory name; it doubles as the item name.
func (a CameraAccessory) Label() string {
	if l, ok := accessoryLabels[a]; ok {
		return l
	}
	return accessoryLabels[AccessoryNone]
}

// Fastener returns the accessory's own fastener item, or "" for none.
func (a CameraAccessory) Fastener() string { return accessoryFasteners[a] }

// Mountable reports whether the accessory is a physical item to be counted.
func (a CameraAccessory) Mountable() bool {
	return a == AccessoryAdapter || a == AccessoryPlasticBox
}
