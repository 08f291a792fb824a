// Package report merges aggregator outputs into the Summary consumed by
// PDF rendering and read views. The Summary field set is a stable contract.
package report

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/WessleyAI/installbom/engine/aggregate"
	"github.com/WessleyAI/installbom/engine/domain"
	"github.com/WessleyAI/installbom/engine/snapshot"
	"github.com/WessleyAI/installbom/pkg/textkey"
)

// FunctionLength is the total cable length of one function.
type FunctionLength struct {
	Function domain.CableFunction `json:"function"`
	Label    string               `json:"label"`
	Length   float64              `json:"length"`
}

// Count holds a user-declared number next to the derived one. Value is
// the declared number when positive, else the derived one.
type Count struct {
	Declared int `json:"declared"`
	Derived  int `json:"derived"`
	Value    int `json:"value"`
}

func resolveCount(declared snapshot.Count, derived int) Count {
	c := Count{Declared: int(declared), Derived: derived, Value: derived}
	if c.Declared > 0 {
		c.Value = c.Declared
	}
	return c
}

// Summary is the immutable result of one summarization.
type Summary struct {
	HasData    bool   `json:"hasData"`
	Empty      bool   `json:"empty"`
	ParseError string `json:"parseError,omitempty"`

	Devices             Count `json:"devices"`
	Nodes               Count `json:"nodes"`
	ConnectionsDeclared int   `json:"connectionsDeclared"`
	UnnamedAssignments  int   `json:"unnamedAssignments"`

	NodeConnectionMethod  string `json:"nodeConnectionMethod,omitempty"`
	NodeConnectionDiagram string `json:"nodeConnectionDiagram,omitempty"`
	MainWorkspaceLocation string `json:"mainWorkspaceLocation,omitempty"`
	WorkspaceCount        int    `json:"workspaceCount"`

	DeviceTypes   []aggregate.TypeCount    `json:"deviceTypes"`
	TotalCameras  int                      `json:"totalCameras"`
	CameraDetails []aggregate.CameraDetail `json:"cameraDetails"`

	CablesByType                   []aggregate.CableBucket `json:"cablesByType"`
	CablesByFunction               []FunctionLength        `json:"cablesByFunction"`
	TotalCableLength               float64                 `json:"totalCableLength"`
	StructureLengthWithoutMaterial float64                 `json:"structureLengthWithoutMaterial"`

	NodeSummaries       []aggregate.NodeSummary          `json:"nodeSummaries"`
	MaterialGroups      []aggregate.MaterialGroupSummary `json:"materialGroups"`
	MaterialTotals      []aggregate.Line                 `json:"materialTotals"`
	MountingTotals      []aggregate.Line                 `json:"mountingTotals"`
	AdditionalMaterials []aggregate.Line                 `json:"additionalMaterials"`
	OverallMaterials    string                           `json:"overallMaterials"`
}

// Failed returns the summary of a document that could not be parsed.
func Failed(err error) Summary {
	msg := "unknown parse error"
	var pe *domain.ParseError
	switch {
	case errors.As(err, &pe):
		msg = pe.Message
	case err != nil:
		msg = err.Error()
	}
	return Summary{ParseError: msg}.normalized()
}

// Build merges aggregator outputs for a parsed snapshot.
func Build(s snapshot.Snapshot, dev aggregate.DeviceSummary, cab aggregate.CableSummary, mat aggregate.MaterialSummary) Summary {
	empty := s.Empty()
	out := Summary{
		HasData:               !empty,
		Empty:                 empty,
		Devices:               resolveCount(s.TotalDeviceCount, dev.TotalDevices),
		Nodes:                 resolveCount(s.TotalNodeCount, len(mat.Nodes)),
		ConnectionsDeclared:   declaredConnections(s, dev, cab),
		UnnamedAssignments:    dev.UnnamedAssignments,
		NodeConnectionMethod:  strings.TrimSpace(s.NodeConnectionMethod),
		NodeConnectionDiagram: strings.TrimSpace(s.NodeConnectionDiagram),
		MainWorkspaceLocation: strings.TrimSpace(s.MainWorkspaceLocation),
		WorkspaceCount:        max(int(s.WorkspaceCount), len(s.Workspaces)),

		DeviceTypes:   slices.Clone(dev.CountsByType),
		TotalCameras:  dev.TotalCameras,
		CameraDetails: slices.Clone(dev.CameraDetails),

		CablesByType:                   slices.Clone(cab.ByName),
		TotalCableLength:               cab.TotalLength,
		StructureLengthWithoutMaterial: cab.StructureLengthWithoutMaterial,

		NodeSummaries:       slices.Clone(mat.Nodes),
		MaterialGroups:      slices.Clone(mat.Groups),
		MaterialTotals:      slices.Clone(mat.MaterialTotals),
		MountingTotals:      slices.Clone(mat.MountingTotals),
		AdditionalMaterials: slices.Clone(mat.AdditionalMaterials),
	}
	for fn, length := range cab.ByFunction {
		out.CablesByFunction = append(out.CablesByFunction, FunctionLength{Function: fn, Label: fn.Label(), Length: length})
	}
	out.sort()
	out.OverallMaterials = overall(out.MaterialTotals, out.MountingTotals, out.AdditionalMaterials)
	return out.normalized()
}

// declaredConnections prefers the declared count, then declared node
// names, then names assigned by device groups.
func declaredConnections(s snapshot.Snapshot, dev aggregate.DeviceSummary, cab aggregate.CableSummary) int {
	switch {
	case s.TotalConnectionPoints > 0:
		return int(s.TotalConnectionPoints)
	case len(cab.DeclaredNodeNames) > 0:
		return len(cab.DeclaredNodeNames)
	default:
		return len(dev.AssignedNodeNames)
	}
}

func byName(a, b string) int {
	return cmp.Or(cmp.Compare(textkey.Key(a), textkey.Key(b)), cmp.Compare(a, b))
}

func (s *Summary) sort() {
	slices.SortStableFunc(s.DeviceTypes, func(a, b aggregate.TypeCount) int { return byName(a.Name, b.Name) })
	slices.SortStableFunc(s.CablesByType, func(a, b aggregate.CableBucket) int { return byName(a.Name, b.Name) })
	slices.SortStableFunc(s.CablesByFunction, func(a, b FunctionLength) int { return byName(a.Label, b.Label) })
	slices.SortStableFunc(s.CameraDetails, func(a, b aggregate.CameraDetail) int {
		return cmp.Or(
			byName(a.TypeName, b.TypeName),
			byName(a.Location, b.Location),
			byName(a.ConnectionPoint, b.ConnectionPoint),
		)
	})
	slices.SortStableFunc(s.NodeSummaries, func(a, b aggregate.NodeSummary) int { return byName(a.Name, b.Name) })
	for _, lines := range [][]aggregate.Line{s.MaterialTotals, s.MountingTotals, s.AdditionalMaterials} {
		sortLines(lines)
	}
}

func sortLines(lines []aggregate.Line) {
	slices.SortStableFunc(lines, func(a, b aggregate.Line) int {
		return cmp.Or(byName(a.Name, b.Name), byName(a.Unit, b.Unit))
	})
}

// normalized replaces nil slices so the JSON form always carries arrays.
func (s Summary) normalized() Summary {
	s.DeviceTypes = nonNil(s.DeviceTypes)
	s.CameraDetails = nonNil(s.CameraDetails)
	s.CablesByType = nonNil(s.CablesByType)
	s.CablesByFunction = nonNil(s.CablesByFunction)
	s.NodeSummaries = nonNil(s.NodeSummaries)
	s.MaterialGroups = nonNil(s.MaterialGroups)
	s.MaterialTotals = nonNil(s.MaterialTotals)
	s.MountingTotals = nonNil(s.MountingTotals)
	s.AdditionalMaterials = nonNil(s.AdditionalMaterials)
	return s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// overall renders every positive object-wide total as "name qty unit",
// comma-joined and sorted by name.
func overall(groups ...[]aggregate.Line) string {
	merged := aggregate.NewAccumulator()
	for _, lines := range groups {
		for _, l := range lines {
			merged.Add(l.Name, l.Unit, l.Quantity)
		}
	}
	lines := merged.Lines()
	sortLines(lines)
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		part := l.Name + " " + FormatQuantity(l.Quantity)
		if l.Unit != "" {
			part += " " + l.Unit
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// FormatQuantity renders q rounded to two decimals without trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(math.Round(q*100)/100, 'f', -1, 64)
}
