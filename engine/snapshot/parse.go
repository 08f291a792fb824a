package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/WessleyAI/installbom/engine/domain"
	"github.com/WessleyAI/installbom/pkg/fn"
)

// Version tags the two document layouts.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return fmt.Sprintf("v%d", int(v))
	}
}

// versionProbe reads only the version marker.
type versionProbe struct {
	Version       OptCount `json:"version"`
	SchemaVersion OptCount `json:"schemaVersion"`
}

// DetectVersion inspects the version marker. A marker of 2 or higher selects
// the graph layout; an absent or lower marker means the legacy flat layout.
func DetectVersion(raw []byte) (Version, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return 0, domain.NewParseError(0, domain.ErrMalformedDocument, fmt.Errorf("document is not a JSON object"))
	}
	var probe versionProbe
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return 0, domain.NewParseError(0, domain.ErrMalformedDocument, err)
	}
	if max(probe.Version.Or(0), probe.SchemaVersion.Or(0)) >= int(V2) {
		return V2, nil
	}
	return V1, nil
}

// Parse decodes a raw document of either layout into a Snapshot. A blank
// document is a valid, empty snapshot. Failures are always *domain.ParseError.
func Parse(raw string) fn.Result[Snapshot] {
	if strings.TrimSpace(raw) == "" {
		return fn.Ok(Snapshot{})
	}
	v, err := DetectVersion([]byte(raw))
	if err != nil {
		return fn.Err[Snapshot](err)
	}
	return ParseVersion([]byte(raw), v)
}

// ParseVersion decodes raw as the given layout.
func ParseVersion(raw []byte, v Version) fn.Result[Snapshot] {
	switch v {
	case V1:
		var s Snapshot
		if err := json.Unmarshal(raw, &s); err != nil {
			return fn.Err[Snapshot](domain.NewParseError(int(V1), domain.ErrMalformedDocument, err))
		}
		return fn.Ok(s)
	case V2:
		var d DocumentV2
		if err := json.Unmarshal(raw, &d); err != nil {
			return fn.Err[Snapshot](domain.NewParseError(int(V2), domain.ErrMalformedDocument, err))
		}
		return fn.Ok(ToLegacy(d))
	default:
		return fn.Err[Snapshot](domain.NewParseError(int(v), domain.ErrUnsupportedVersion, nil))
	}
}

// ConvertLegacyToCanonical rewrites a document of either layout as V2 JSON.
func ConvertLegacyToCanonical(raw string) fn.Result[string] {
	return fn.AndThenResult(Parse(raw), func(s Snapshot) fn.Result[string] {
		return marshal(ToCanonical(s))
	})
}

// ConvertCanonicalToLegacy rewrites a document of either layout as V1 JSON.
func ConvertCanonicalToLegacy(raw string) fn.Result[string] {
	return fn.AndThenResult(Parse(raw), func(s Snapshot) fn.Result[string] {
		return marshal(ToLegacy(ToCanonical(s)))
	})
}

func marshal(v any) fn.Result[string] {
	b, err := json.Marshal(v)
	if err != nil {
		return fn.Errf[string]("snapshot: marshal: %w", err)
	}
	return fn.Ok(string(b))
}
