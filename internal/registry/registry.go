// Package registry is the single source of truth for rig → MMSI + type.
package registry

import (
	"sort"
	"strings"
)

// Rig types as reported by the registry.
const (
	TypeJackUp  = "JACK-UP"
	TypeSemiSub = "SEMISUB"
)

// Info holds the registry metadata for a rig.
type Info struct {
	MMSI int64
	Type string
}

// Normalized rig name (uppercased) → metadata.
var rigs = map[string]Info{
	"MÆRSK GUARDIAN":         {MMSI: 577494000, Type: TypeJackUp},
	"WEST LINUS":             {MMSI: 257095000, Type: TypeJackUp},
	"LINUS":                  {MMSI: 257095000, Type: TypeJackUp}, // alias
	"WEST ELARA":             {MMSI: 259783000, Type: TypeJackUp},
	"WEST EPSILON":           {MMSI: 351635000, Type: TypeJackUp},
	"VALARIS VIKING":         {MMSI: 538004075, Type: TypeJackUp},
	"SCARABEO 8":             {MMSI: 308928000, Type: TypeSemiSub},
	"DEEPSEA ABERDEEN":       {MMSI: 310713000, Type: TypeSemiSub},
	"ASKEPOTT":               {MMSI: 257459000, Type: TypeJackUp},
	"TRANSOCEAN ENDURANCE":   {MMSI: 538010768, Type: TypeSemiSub},
	"COSLPROMOTER":           {MMSI: 565798000, Type: TypeSemiSub},
	"TRANSOCEAN EQUINOX":     {MMSI: 538010767, Type: TypeSemiSub},
	"COSLINNOVATOR":          {MMSI: 566391000, Type: TypeSemiSub},
	"NOBLE INTEGRATOR":       {MMSI: 538010630, Type: TypeJackUp},
	"DEEPSEA NORDKAPP":       {MMSI: 310776000, Type: TypeSemiSub},
	"NOBLE INVINCIBLE":       {MMSI: 538010632, Type: TypeJackUp},
	"TRANSOCEAN ENABLER":     {MMSI: 258615000, Type: TypeSemiSub},
	"DEEPSEA YANTAI":         {MMSI: 311000483, Type: TypeSemiSub},
	"SHELF DRILLING BARSK":   {MMSI: 636016111, Type: TypeJackUp},
	"ASKELADDEN":             {MMSI: 257452000, Type: TypeJackUp},
	"COSLPIONEER":            {MMSI: 563050900, Type: TypeSemiSub},
	"TRANSOCEAN SPITSBERGEN": {MMSI: 538004905, Type: TypeSemiSub},
	"COSLPROSPECTOR":         {MMSI: 565369000, Type: TypeSemiSub},
	"DEEPSEA STAVANGER":      {MMSI: 310767000, Type: TypeSemiSub},
	"TRANSOCEAN ENCOURAGE":   {MMSI: 258627000, Type: TypeSemiSub},
	"DEEPSEA ATLANTIC":       {MMSI: 310766000, Type: TypeSemiSub},
	"DEEPSEA BOLLSTA":        {MMSI: 257440000, Type: TypeSemiSub},
}

// Normalize maps a rig name to its registry key form.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Lookup returns registry metadata for a rig name.
func Lookup(name string) (Info, bool) {
	info, ok := rigs[Normalize(name)]
	return info, ok
}

// TypeFor returns the rig type (JACK-UP / SEMISUB) or "" if unknown.
func TypeFor(name string) string {
	info, ok := Lookup(name)
	if !ok {
		return ""
	}
	return info.Type
}

// ByMMSI returns a reverse lookup table, MMSI → rig name. Aliases are
// shortened forms, so the longest name wins (lexical order breaks ties).
func ByMMSI() map[int64]string {
	out := make(map[int64]string, len(rigs))
	for name, info := range rigs {
		prev, ok := out[info.MMSI]
		if !ok || len(name) > len(prev) || (len(name) == len(prev) && name < prev) {
			out[info.MMSI] = name
		}
	}
	return out
}

// KnownRigs returns all registry rig names, sorted.
func KnownRigs() []string {
	names := make([]string, 0, len(rigs))
	for name := range rigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
