package render

import (
	"image/color"

	"github.com/gogpu/gg"
)

type Palette struct {
	Waypoint color.Color
	Player   color.Color
	Flame    color.Color
	Steer    color.Color
	Radial   color.Color
	Border   color.Color
	Text     color.Color
}

func DefaultPalette() Palette {
	return Palette{
		Waypoint: gg.Hex("#ff0000").Color(),
		Player:   gg.Hex("#0000ff").Color(),
		Flame:    gg.Hex("#add8e6").Color(),
		Steer:    gg.Hex("#90ee90").Color(),
		Radial:   gg.Hex("#404040").Color(),
		Border:   gg.Hex("#606060").Color(),
		Text:     gg.Hex("#cccccc").Color(),
	}
}
