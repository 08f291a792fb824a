package domain

import (
	"strings"

	"github.com/WessleyAI/installbom/pkg/textkey"
)

// surfaceAliases maps normalized free-text labels to surface categories.
var surfaceAliases = map[string]SurfaceCategory{
	"бетон":                        SurfaceConcrete,
	"железобетон":                  SurfaceConcrete,
	"кирпич":                       SurfaceBrick,
	"кирпичная стена":              SurfaceBrick,
	"гипсокартон":                  SurfaceDrywall,
	"гкл":                          SurfaceDrywall,
	"дерево":                       SurfaceWood,
	"металл":                       SurfaceMetal,
	"существующие конструкции":     SurfaceExistingStructures,
	"по существующим конструкциям": SurfaceExistingStructures,
}

// ParseSurface resolves an enum code or a free-text label. Unknown input
// yields SurfaceUnknown.
func ParseSurface(s string) SurfaceCategory {
	code := SurfaceCategory(strings.ToUpper(strings.TrimSpace(s)))
	if ValidSurfaces[code] {
		return code
	}
	key := textkey.Key(s)
	if c, ok := surfaceAliases[key]; ok {
		return c
	}
	for c, label := range surfaceLabels {
		if c != SurfaceUnknown && textkey.Key(label) == key {
			return c
		}
	}
	return SurfaceUnknown
}

// ParseCableFunction resolves a catalog function code. Anything else is CableUnknown.
func ParseCableFunction(s string) CableFunction {
	f := CableFunction(strings.ToUpper(strings.TrimSpace(s)))
	if ValidCableFunctions[f] {
		return f
	}
	return CableUnknown
}

// ParseAccessory resolves an accessory code or label.
func ParseAccessory(s string) CameraAccessory {
	switch a := CameraAccessory(strings.ToUpper(strings.TrimSpace(s))); a {
	case AccessoryAdapter, AccessoryPlasticBox, AccessoryNone:
		return a
	}
	key := textkey.Key(s)
	switch {
	case key == "":
		return AccessoryNone
	case strings.Contains(key, "адаптер"), strings.Contains(key, "переходник"):
		return AccessoryAdapter
	case strings.Contains(key, "коробк"), strings.Contains(key, "бокс"):
		return AccessoryPlasticBox
	}
	return AccessoryNone
}
