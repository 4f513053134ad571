package agents

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/obsview/internal/dynamo"
)

// Deps are the collaborators a policy constructor may need.
type Deps struct {
	Stepper dynamo.Stepper
	Arrows  ArrowSource
	Rng     *rand.Rand
	Dt      float64
	Params  map[string]float64
}

type Registry struct {
	policies map[string]func(Deps) (dynamo.Policy, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		policies: make(map[string]func(Deps) (dynamo.Policy, error)),
	}

	r.policies["agent0"] = func(d Deps) (dynamo.Policy, error) {
		return Agent0(d.Stepper)
	}
	r.policies["idle"] = func(Deps) (dynamo.Policy, error) {
		return Idle(), nil
	}
	r.policies["random"] = func(d Deps) (dynamo.Policy, error) {
		rng := d.Rng
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		return Random(rng), nil
	}
	r.policies["human"] = func(d Deps) (dynamo.Policy, error) {
		if d.Arrows == nil {
			return nil, fmt.Errorf("human policy needs keyboard input")
		}
		return Human(d.Arrows), nil
	}
	r.policies["pid"] = func(d Deps) (dynamo.Policy, error) {
		kp, ki, kd := 2.0, 0.0, 0.1
		if v, ok := d.Params["kp"]; ok {
			kp = v
		}
		if v, ok := d.Params["ki"]; ok {
			ki = v
		}
		if v, ok := d.Params["kd"]; ok {
			kd = v
		}
		dt := d.Dt
		if dt <= 0 {
			dt = 0.05
		}
		return Pursuit(NewPID(kp, ki, kd, 0), dt), nil
	}

	return r
}

func (r *Registry) Get(name string, deps Deps) (dynamo.Policy, error) {
	fn, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy: %s", name)
	}
	return fn(deps)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
