package aggregate

import (
	"strings"

	"github.com/WessleyAI/installbom/engine/domain"
	"github.com/WessleyAI/installbom/engine/rules"
	"github.com/WessleyAI/installbom/engine/snapshot"
	"github.com/WessleyAI/installbom/pkg/textkey"
)

// cameraMarker identifies camera types the registry does not know.
const cameraMarker = "камера"

// TypeCount is the number of devices of one type.
type TypeCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CameraDetail describes one camera group for reporting.
type CameraDetail struct {
	TypeName        string `json:"typeName"`
	Count           int    `json:"count"`
	Location        string `json:"location"`
	ConnectionPoint string `json:"connectionPoint"`
	Surface         string `json:"surface"`
	Accessory       string `json:"accessory"`
	ViewingDepth    string `json:"viewingDepth"`
}

// DeviceSummary is the output of SummarizeDevices.
type DeviceSummary struct {
	CountsByType       []TypeCount
	TotalDevices       int
	UnnamedAssignments int
	AssignedNodeNames  []string
	RuleMaterials      *Accumulator

	TotalCameras       int
	CamerasBySurface   map[domain.SurfaceCategory]int
	CamerasByAccessory map[domain.CameraAccessory]int
	CameraDetails      []CameraDetail
}

// IsCamera reports whether a device type is a camera: by registry rule
// first, then by the type name containing the camera marker.
func IsCamera(reg *rules.Registry, typeName string) bool {
	if req, ok := reg.Lookup(typeName); ok && req.IsCamera {
		return true
	}
	return textkey.Contains(typeName, cameraMarker)
}

// TypeName returns the display name of a group's device type.
func TypeName(g snapshot.DeviceGroup) string {
	if textkey.Blank(g.DeviceTypeName) {
		return domain.NotSpecified
	}
	return strings.TrimSpace(g.DeviceTypeName)
}

// SummarizeDevices counts devices per type, collects node assignments and
// camera buckets, and multiplies rule materials by group quantity.
func SummarizeDevices(s snapshot.Snapshot, reg *rules.Registry) DeviceSummary {
	out := DeviceSummary{
		RuleMaterials:      NewAccumulator(),
		CamerasBySurface:   make(map[domain.SurfaceCategory]int),
		CamerasByAccessory: make(map[domain.CameraAccessory]int),
	}
	typeIndex := make(map[string]int)
	var assigned nameSet

	for _, g := range s.DeviceGroups {
		units := g.Units()
		name := TypeName(g)
		out.TotalDevices += units

		if textkey.Blank(g.ConnectionPoint) {
			out.UnnamedAssignments++
		} else {
			assigned.add(g.ConnectionPoint)
		}

		if units == 0 {
			continue
		}

		key := textkey.Key(name)
		if i, ok := typeIndex[key]; ok {
			out.CountsByType[i].Count += units
		} else {
			typeIndex[key] = len(out.CountsByType)
			out.CountsByType = append(out.CountsByType, TypeCount{Name: name, Count: units})
		}

		if req, ok := reg.Lookup(name); ok {
			for _, m := range req.Materials {
				out.RuleMaterials.Add(m.Name, m.Unit, m.PerUnit*float64(units))
			}
		}

		if !IsCamera(reg, name) {
			continue
		}
		surface := domain.ParseSurface(g.InstallSurfaceCategory)
		accessory := domain.ParseAccessory(g.CameraAccessory)
		out.TotalCameras += units
		out.CamerasBySurface[surface] += units
		if accessory.Mountable() {
			out.CamerasByAccessory[accessory] += units
		}
		out.CameraDetails = append(out.CameraDetails, CameraDetail{
			TypeName:        name,
			Count:           units,
			Location:        strings.TrimSpace(g.InstallLocation),
			ConnectionPoint: strings.TrimSpace(g.ConnectionPoint),
			Surface:         surface.Label(),
			Accessory:       accessory.Label(),
			ViewingDepth:    strings.TrimSpace(string(g.ViewingDepth)),
		})
	}
	out.AssignedNodeNames = assigned.names
	return out
}
