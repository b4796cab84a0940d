package plan

// Plan is the ordered step sequence for one run. It is owned exclusively by
// the controller for the duration of that run and never persisted.
type Plan struct {
	mode  Mode
	steps []Step
}

// NewPlan creates a plan for the given mode.
func NewPlan(mode Mode, steps []Step) *Plan {
	return &Plan{mode: mode, steps: steps}
}

// Mode returns the mode the plan was built for.
func (p *Plan) Mode() Mode {
	return p.mode
}

// Steps returns the ordered steps.
func (p *Plan) Steps() []Step {
	return p.steps
}

// Len returns the number of steps.
func (p *Plan) Len() int {
	return len(p.steps)
}

// TotalWeight returns the sum of all step weights.
func (p *Plan) TotalWeight() int {
	total := 0
	for _, s := range p.steps {
		total += s.Weight
	}
	return total
}

// PercentAfter maps the cumulative weight of steps[0..i] onto the [0,100]
// progress range. The last step always lands on 100.
func (p *Plan) PercentAfter(i int) int {
	total := p.TotalWeight()
	if total == 0 || i < 0 {
		return 0
	}
	if i >= len(p.steps)-1 {
		return 100
	}
	executed := 0
	for j := 0; j <= i; j++ {
		executed += p.steps[j].Weight
	}
	return executed * 100 / total
}
