package config

import "sort"

// Presets are named initial observations for live rollouts.
var Presets = map[string]*ObservationConfig{
	"ahead":     {Wp1X: 0, Wp1Y: 0.8},
	"behind":    {Wp1X: 0, Wp1Y: -0.8},
	"left":      {Wp1X: -0.8, Wp1Y: 0},
	"right":     {Wp1X: 0.8, Wp1Y: 0},
	"overshoot": {Wp1X: 0.2, Wp1Y: 0.5, VelX: 0, VelY: -0.9},
	"drifting":  {Wp1X: -0.5, Wp1Y: 0.5, VelX: 0.6, VelY: 0.3},
	"random":    {Random: true},
}

func GetPreset(name string) *ObservationConfig {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
