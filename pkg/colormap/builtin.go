package colormap

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"sync"
)

// Builtin colormaps. Grayscale is the identity display; the others are the
// classic nuclear-medicine and fusion-display ramps.
var (
	Grayscale = Map{Name: "grayscale", Stops: []Stop{
		{Offset: 0, Color: color.RGBA{0, 0, 0, 255}},
		{Offset: 1, Color: color.RGBA{255, 255, 255, 255}},
	}}

	HotIron = Map{Name: "hot-iron", Stops: []Stop{
		{Offset: 0, Color: color.RGBA{0, 0, 0, 255}},
		{Offset: 0.33, Color: color.RGBA{128, 0, 0, 255}},
		{Offset: 0.66, Color: color.RGBA{255, 128, 0, 255}},
		{Offset: 1, Color: color.RGBA{255, 255, 255, 255}},
	}}

	HotMetalBlue = Map{Name: "hot-metal-blue", Stops: []Stop{
		{Offset: 0, Color: color.RGBA{0, 0, 0, 255}},
		{Offset: 0.33, Color: color.RGBA{0, 0, 160, 255}},
		{Offset: 0.66, Color: color.RGBA{255, 100, 30, 255}},
		{Offset: 1, Color: color.RGBA{255, 255, 255, 255}},
	}}

	PET = Map{Name: "pet", Stops: []Stop{
		{Offset: 0, Color: color.RGBA{0, 0, 0, 255}},
		{Offset: 0.25, Color: color.RGBA{0, 0, 255, 255}},
		{Offset: 0.5, Color: color.RGBA{128, 0, 128, 255}},
		{Offset: 0.75, Color: color.RGBA{255, 128, 0, 255}},
		{Offset: 1, Color: color.RGBA{255, 255, 255, 255}},
	}}

	Rainbow = Map{Name: "rainbow", Stops: []Stop{
		{Offset: 0, Color: color.RGBA{0, 0, 128, 255}},
		{Offset: 0.25, Color: color.RGBA{0, 128, 255, 255}},
		{Offset: 0.5, Color: color.RGBA{0, 255, 0, 255}},
		{Offset: 0.75, Color: color.RGBA{255, 255, 0, 255}},
		{Offset: 1, Color: color.RGBA{255, 0, 0, 255}},
	}}
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Map{}
)

func init() {
	for _, m := range []Map{Grayscale, HotIron, HotMetalBlue, PET, Rainbow} {
		registry[m.Name] = m
	}
}

// ByName looks up a registered colormap by name, ignoring case.
func ByName(name string) (Map, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	m, ok := registry[strings.ToLower(name)]
	return m, ok
}

// Register adds a colormap to the registry, typically from configuration.
// Names are case-insensitive; empty names, stop-less maps and names already
// registered are rejected.
func Register(m Map) error {
	if m.Name == "" {
		return fmt.Errorf("colormap: name must not be empty")
	}
	if len(m.Stops) == 0 {
		return fmt.Errorf("colormap: %q has no stops", m.Name)
	}

	key := strings.ToLower(m.Name)

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[key]; exists {
		return fmt.Errorf("colormap: %q already registered", m.Name)
	}
	registry[key] = m
	return nil
}

// Names returns the registered colormap names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
