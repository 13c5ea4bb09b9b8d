package migrate

import "context"

// Advisor may suggest an alternative SQL text plus reasoning for a step.
// Suggestions are display-only annotations; the step's authoritative SQL
// is never replaced. The zero default is no advice at all, which keeps
// plan generation fully deterministic.
type Advisor interface {
	Suggest(ctx context.Context, step *Step) (sqlText, reason string, ok bool)
}

type NopAdvisor struct{}

func (NopAdvisor) Suggest(ctx context.Context, step *Step) (string, string, bool) {
	return "", "", false
}

// StaticAdvisor applies fixed rules. It flags ADD COLUMN of a NOT NULL
// column: on a non-empty table that DDL fails outright on most engines
// unless a DEFAULT is attached.
type StaticAdvisor struct{}

func (StaticAdvisor) Suggest(ctx context.Context, step *Step) (string, string, bool) {
	if step.Kind != AddColumn {
		return "", "", false
	}
	if !containsNotNull(step.SQL) {
		return "", "", false
	}
	return step.SQL + " DEFAULT <value>",
		"adding a NOT NULL column fails on non-empty tables unless a DEFAULT is supplied; review before applying",
		true
}

func containsNotNull(sqlText string) bool {
	// Generated column DDL ends in either " NULL" or " NOT NULL".
	const marker = " NOT NULL"
	if len(sqlText) < len(marker) {
		return false
	}
	return sqlText[len(sqlText)-len(marker):] == marker
}

// Annotate invokes the advisor once per step, sequentially, and records
// any suggestion on the step's advisory overlay.
func Annotate(ctx context.Context, a Advisor, plan *Plan) {
	if a == nil {
		return
	}
	for _, step := range plan.Steps() {
		if sqlText, reason, ok := a.Suggest(ctx, step); ok {
			step.AdvisorySQL = sqlText
			step.AdvisoryReason = reason
		}
	}
}
