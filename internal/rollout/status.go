package rollout

import (
	"fmt"
	"strconv"

	"github.com/san-kum/obsview/internal/dynamo"
)

// Status is what the status line shows after a tick.
type Status struct {
	Steps  int
	Action dynamo.Action
	Obs    dynamo.Observation
	Done   dynamo.Done
}

func (s Status) String() string {
	return fmt.Sprintf("Steps: %4d  steer: %s   throttle: %.2f  wp1: (%s, %s)  vel: (%s, %s)   Done: %s",
		s.Steps,
		pad(s.Action.Steering, 2),
		s.Action.Throttle,
		pad(s.Obs.Wp1X, 4), pad(s.Obs.Wp1Y, 4),
		pad(s.Obs.VelX, 4), pad(s.Obs.VelY, 4),
		s.Done)
}

// pad leaves room for a sign so columns stay aligned.
func pad(v float64, digits int) string {
	s := strconv.FormatFloat(v, 'f', digits, 64)
	if v >= 0 {
		return " " + s
	}
	return s
}
