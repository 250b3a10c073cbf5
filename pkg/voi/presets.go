package voi

import (
	"strings"

	"medrender/pkg/imagedata"
)

// Preset is a named reusable window, typically tied to an acquisition
// modality.
type Preset struct {
	// Name identifies the preset for lookup (case-insensitive).
	Name string

	// Modality is the acquisition modality the window was tuned for.
	Modality string

	// Window holds the center/width pair.
	Window imagedata.Window
}

// builtinPresets are the common CT display windows.
var builtinPresets = []Preset{
	{Name: "ct-lung", Modality: "CT", Window: imagedata.Window{Center: -600, Width: 1500}},
	{Name: "ct-bone", Modality: "CT", Window: imagedata.Window{Center: 400, Width: 1800}},
	{Name: "ct-brain", Modality: "CT", Window: imagedata.Window{Center: 40, Width: 80}},
	{Name: "ct-abdomen", Modality: "CT", Window: imagedata.Window{Center: 60, Width: 400}},
	{Name: "ct-mediastinum", Modality: "CT", Window: imagedata.Window{Center: 50, Width: 350}},
}

// Presets returns the builtin window presets.
func Presets() []Preset {
	out := make([]Preset, len(builtinPresets))
	copy(out, builtinPresets)
	return out
}

// LookupPreset finds a builtin preset by name, ignoring case.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range builtinPresets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
