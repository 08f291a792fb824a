package snapshot

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/WessleyAI/installbom/engine/domain"
)

const legacyDoc = `{
	"totalDeviceCount": "12",
	"totalNodeCount": 2,
	"nodeConnectionMethod": "оптика",
	"mainWorkspaceLocation": "Пост охраны",
	"workspaceCount": 1,
	"deviceGroups": [
		{"deviceTypeId": 7, "deviceTypeName": "Видеокамера", "quantity": 2, "installLocation": "Холл",
		 "installSurfaceCategory": "BRICK", "connectionPoint": "Узел-1", "distanceToConnectionPoint": "5",
		 "groupLabel": "Камеры холла", "cameraAccessory": "PLASTIC_BOX", "viewingDepth": 30},
		{"deviceTypeName": "Считыватель", "installLocation": "холл ", "connectionPoint": "Узел-3",
		 "distanceToConnectionPoint": 12.5, "signalCableTypeId": "3"},
		{"deviceTypeName": "Кнопка выхода", "quantity": 0}
	],
	"connectionPoints": [
		{"name": "Узел-1", "distanceToPower": "7,5", "powerCableName": "ВВГнг 3x1,5",
		 "layingSurfaceCategory": "EXISTING_STRUCTURES", "breakerCount": 3, "singleSocketCount": 1},
		{"name": "Узел-2", "layingMaterialName": "Гофротруба 20мм", "layingMaterialUnit": "м", "nshviCount": 0}
	],
	"materialGroups": [
		{"groupLabel": "Камеры холла", "materials": [{"materialName": "Гофротруба 16мм", "amount": "12,5 м"}]}
	],
	"mountingRequirements": [
		{"elementName": "Шкаф 6U", "quantity": "1 шт", "materials": [{"materialName": "Анкер", "amount": 4, "unit": "шт"}]}
	],
	"workspaces": [{"location": "Пост охраны", "equipment": "Монитор"}]
}`

func mustParse(t *testing.T, raw string) Snapshot {
	t.Helper()
	s, err := Parse(raw).Unwrap()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return s
}

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		raw  string
		want Version
	}{
		{`{}`, V1},
		{`{"version": 1}`, V1},
		{`{"version": 2}`, V2},
		{`{"version": "2"}`, V2},
		{`{"schemaVersion": 2}`, V2},
		{`{"version": null, "deviceGroups": []}`, V1},
	}
	for _, tt := range tests {
		got, err := DetectVersion([]byte(tt.raw))
		if err != nil || got != tt.want {
			t.Errorf("DetectVersion(%s) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
	}
}

func TestDetectVersion_HigherMarkersAreGraph(t *testing.T) {
	for _, raw := range []string{`{"version": 3}`, `{"version": "7"}`, `{"schemaVersion": 12}`} {
		got, err := DetectVersion([]byte(raw))
		if err != nil || got != V2 {
			t.Errorf("DetectVersion(%s) = %v, %v; want v2", raw, got, err)
		}
	}
	s := mustParse(t, `{"version": 3, "devices": [{"id": "d1", "deviceType": {"name": "Замок"}, "quantity": 2}]}`)
	if len(s.DeviceGroups) != 1 || s.DeviceGroups[0].Units() != 2 {
		t.Fatalf("version 3 document not read as graph layout: %+v", s)
	}
}

func TestParseVersion_UnknownLayout(t *testing.T) {
	_, err := ParseVersion([]byte(`{}`), Version(5)).Unwrap()
	if !errors.Is(err, domain.ErrUnsupportedVersion) {
		t.Fatalf("expected unsupported version, got %v", err)
	}
}

func TestParse_Legacy(t *testing.T) {
	s := mustParse(t, legacyDoc)

	if s.TotalDeviceCount != 12 || s.TotalNodeCount != 2 {
		t.Fatalf("declared counts not decoded: %+v", s)
	}
	if len(s.DeviceGroups) != 3 || len(s.ConnectionPoints) != 2 {
		t.Fatalf("unexpected collection sizes: %d groups, %d nodes", len(s.DeviceGroups), len(s.ConnectionPoints))
	}
	cam := s.DeviceGroups[0]
	if cam.Units() != 2 || cam.DistanceToConnectionPoint != 5 || cam.ViewingDepth != "30" {
		t.Fatalf("camera group decoded wrong: %+v", cam)
	}
	if !cam.DeviceTypeID.Valid || cam.DeviceTypeID.Value != 7 {
		t.Fatalf("device type id not decoded: %+v", cam.DeviceTypeID)
	}
	reader := s.DeviceGroups[1]
	if reader.Units() != 1 {
		t.Fatalf("absent quantity should default to 1, got %d", reader.Units())
	}
	if !reader.SignalCableTypeID.Valid || reader.SignalCableTypeID.Value != 3 {
		t.Fatalf("string id not decoded: %+v", reader.SignalCableTypeID)
	}
	if s.DeviceGroups[2].Units() != 1 {
		t.Fatalf("zero quantity should default to 1, got %d", s.DeviceGroups[2].Units())
	}
	if s.ConnectionPoints[0].DistanceToPower != 7.5 {
		t.Fatalf("decimal comma not parsed: %v", s.ConnectionPoints[0].DistanceToPower)
	}
	if got := s.MountingRequirements[0].Materials[0].Amount; got != "4" {
		t.Fatalf("numeric amount should become text, got %q", got)
	}
}

func TestParse_Blank(t *testing.T) {
	s := mustParse(t, "  \n")
	if !s.Empty() {
		t.Fatal("blank document should yield an empty snapshot")
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{`{"deviceGroups": [`, `[1,2]`, `"text"`, `{"deviceGroups": [{"quantity": true}]}`} {
		r := Parse(raw)
		if r.IsOk() {
			t.Errorf("Parse(%s) should fail", raw)
			continue
		}
		_, err := r.Unwrap()
		var pe *domain.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%s) error should be ParseError, got %T", raw, err)
			continue
		}
		if pe.Message == "" || !errors.Is(err, domain.ErrMalformedDocument) {
			t.Errorf("Parse(%s) error lacks message or sentinel: %v", raw, err)
		}
	}
}

func TestConnectionPointDefaults(t *testing.T) {
	cp := ConnectionPoint{BreakerCount: 3}
	if cp.BreakerBoxes() != 2 {
		t.Fatalf("ceil(3/2) should be 2, got %d", cp.BreakerBoxes())
	}

	cp = ConnectionPoint{BreakerCount: 1}
	if cp.Breakers() != 2 || cp.BreakerBoxes() != 1 {
		t.Fatalf("single breaker should floor to a pair: %d breakers, %d boxes", cp.Breakers(), cp.BreakerBoxes())
	}

	cp = ConnectionPoint{SingleSocketCount: 1, DoubleSocketCount: 1, BreakerCount: 2}
	if cp.TerminalLugs() != 12 {
		t.Fatalf("4*2 + 2*2 should be 12, got %d", cp.TerminalLugs())
	}

	cp = ConnectionPoint{BreakerCount: 4, BreakerBoxCount: Some(5), NshviCount: Some(0)}
	if cp.BreakerBoxes() != 5 || cp.TerminalLugs() != 0 {
		t.Fatal("explicit counts must win over defaults")
	}

	cp = ConnectionPoint{}
	if cp.Breakers() != 0 || cp.BreakerBoxes() != 0 || cp.TerminalLugs() != 0 {
		t.Fatal("empty node implies no hardware")
	}
}

func TestToCanonical_DeterministicIDs(t *testing.T) {
	s := mustParse(t, legacyDoc)
	a, b := ToCanonical(s), ToCanonical(s)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("converting the same snapshot twice must yield identical documents")
	}
	if a.Version != CurrentVersion {
		t.Fatalf("expected version %d, got %d", CurrentVersion, a.Version)
	}
	if len(a.Locations) != 2 {
		t.Fatalf("Холл and Пост охраны expected, got %+v", a.Locations)
	}
	if a.Devices[0].LocationID != a.Devices[1].LocationID {
		t.Fatal("locations differing only in case and spacing should share an id")
	}
}

func TestToCanonical_ImplicitNodes(t *testing.T) {
	s := mustParse(t, legacyDoc)
	d := ToCanonical(s)

	var implicit []NodeV2
	for _, n := range d.Nodes {
		if n.Implicit {
			implicit = append(implicit, n)
		}
	}
	if len(implicit) != 1 || implicit[0].Name != "Узел-3" {
		t.Fatalf("expected one implicit node Узел-3, got %+v", implicit)
	}

	back := ToLegacy(d)
	if len(back.ConnectionPoints) != 2 {
		t.Fatalf("implicit nodes must not become declared points, got %d", len(back.ConnectionPoints))
	}
	if back.DeviceGroups[1].ConnectionPoint != "Узел-3" {
		t.Fatalf("device should keep its node name, got %q", back.DeviceGroups[1].ConnectionPoint)
	}
}

func TestToLegacy_UnresolvedReferences(t *testing.T) {
	d := DocumentV2{
		Version: 2,
		Devices: []DeviceV2{{ID: "d1", LocationID: "missing", NodeID: "missing", Quantity: Some(3)}},
	}
	s := ToLegacy(d)
	g := s.DeviceGroups[0]
	if g.InstallLocation != "" || g.ConnectionPoint != "" {
		t.Fatalf("unresolved references should produce empty names: %+v", g)
	}
	if g.Units() != 3 {
		t.Fatalf("quantity lost: %d", g.Units())
	}
}

func TestParse_V2(t *testing.T) {
	raw := `{
		"version": 2,
		"summary": {"totalDeviceCount": 4, "mainWorkspaceLocationId": "l1"},
		"locations": [{"id": "l1", "name": "Пост"}],
		"nodes": [{"id": "n1", "name": "Шкаф А", "distanceToPower": 3,
		           "layingMaterial": {"name": "Кабель-канал", "unit": "м", "surfaceCategory": "WOOD"},
		           "hardware": {"breakers": 1}}],
		"devices": [{"id": "d1", "deviceType": {"name": "IP камера"}, "quantity": 4, "locationId": "l1",
		             "nodeId": "n1", "distanceToNode": 8, "camera": {"accessory": "ADAPTER"},
		             "cables": {"signal": {"id": 2, "name": "UTP 5e"}}}]
	}`
	s := mustParse(t, raw)
	if s.MainWorkspaceLocation != "Пост" || s.TotalDeviceCount != 4 {
		t.Fatalf("summary not resolved: %+v", s)
	}
	g := s.DeviceGroups[0]
	if g.ConnectionPoint != "Шкаф А" || g.InstallLocation != "Пост" || g.CameraAccessory != "ADAPTER" {
		t.Fatalf("device references not resolved: %+v", g)
	}
	if g.SignalCableTypeID.Value != 2 || g.SignalCableName != "UTP 5e" {
		t.Fatalf("cable selection lost: %+v", g)
	}
	cp := s.ConnectionPoints[0]
	if cp.LayingMaterialName != "Кабель-канал" || cp.LayingSurfaceCategory != "WOOD" || cp.Breakers() != 2 {
		t.Fatalf("node not resolved: %+v", cp)
	}
}

func TestLegacyRoundTrip_Idempotent(t *testing.T) {
	docs := []string{
		legacyDoc,
		`{}`,
		`{"connectionPoints": [{"name": ""}, {"name": " "}, {"name": "A"}, {"name": "a"}],
		  "deviceGroups": [{"connectionPoint": "a"}, {"connectionPoint": "B"}, {"connectionPoint": " b"}]}`,
	}
	for _, raw := range docs {
		d := mustParse(t, raw)
		once := ToLegacy(ToCanonical(d))
		twice := ToLegacy(ToCanonical(once))
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("round trip not idempotent for %s:\n once=%+v\ntwice=%+v", raw, once, twice)
		}
	}
}

func TestConvertersProduceParsableJSON(t *testing.T) {
	canonical, err := ConvertLegacyToCanonical(legacyDoc).Unwrap()
	if err != nil {
		t.Fatal(err)
	}
	if v, err := DetectVersion([]byte(canonical)); err != nil || v != V2 {
		t.Fatalf("canonical output should be V2, got %v %v", v, err)
	}

	legacy, err := ConvertCanonicalToLegacy(canonical).Unwrap()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(legacy, `"version"`) {
		t.Fatal("legacy output must not carry a version marker")
	}

	first := mustParse(t, legacy)
	again, err := ConvertCanonicalToLegacy(legacy).Unwrap()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, mustParse(t, again)) {
		t.Fatal("legacy conversion should be stable")
	}

	if ConvertLegacyToCanonical(`{"version": 9, "devices": "x"}`).IsOk() {
		t.Fatal("malformed input must not convert")
	}
}

func TestOptJSON(t *testing.T) {
	var g DeviceGroup
	if err := json.Unmarshal([]byte(`{"quantity": null}`), &g); err != nil {
		t.Fatal(err)
	}
	if g.Quantity.Valid {
		t.Fatal("null should leave the quantity absent")
	}
	out, _ := json.Marshal(DeviceGroup{Quantity: Some(0)})
	if !strings.Contains(string(out), `"quantity":0`) {
		t.Fatalf("explicit zero must be written, got %s", out)
	}
	out, _ = json.Marshal(DeviceGroup{})
	if strings.Contains(string(out), "quantity") {
		t.Fatalf("absent quantity must be omitted, got %s", out)
	}
}
