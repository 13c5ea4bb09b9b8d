package migrate

// StepKind is the closed set of generated DDL kinds. Destructive kinds do
// not exist; adding them later means extending this enum behind an
// explicit opt-in, never inferring intent from a mismatch.
type StepKind int

const (
	CreateTable StepKind = iota
	AddColumn
)

func (k StepKind) String() string {
	switch k {
	case CreateTable:
		return "CREATE TABLE"
	case AddColumn:
		return "ADD COLUMN"
	default:
		return "UNKNOWN"
	}
}

type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// Step is one generated, additive DDL statement. SQL is authoritative;
// the advisory fields are a display-only overlay an Advisor may fill in
// later and are never executed in its place.
type Step struct {
	Kind   StepKind
	Schema string
	Table  string
	Column string // AddColumn only
	SQL    string
	Risk   RiskLevel

	AdvisorySQL    string
	AdvisoryReason string
}

// QualifiedTable renders schema.table for display.
func (s *Step) QualifiedTable() string {
	if s.Schema == "" {
		return s.Table
	}
	return s.Schema + "." + s.Table
}

// Plan is an append-only ordered sequence of steps.
type Plan struct {
	steps []*Step
}

func (p *Plan) Append(s *Step) {
	p.steps = append(p.steps, s)
}

// Steps returns the ordered steps. The slice is a copy; the steps are
// shared so advisory annotation stays visible.
func (p *Plan) Steps() []*Step {
	steps := make([]*Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

func (p *Plan) Len() int { return len(p.steps) }

func (p *Plan) Empty() bool { return len(p.steps) == 0 }
