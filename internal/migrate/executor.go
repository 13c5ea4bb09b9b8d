package migrate

import (
	"context"
	"fmt"
)

// Executor is the slice of a target session plan application needs.
type Executor interface {
	ExecuteCommand(ctx context.Context, sqlText string) error
}

// Apply runs each step's SQL sequentially against the target. The first
// failing step aborts the whole apply; steps already applied stay applied,
// since DDL is frequently non-transactional. Cancellation is checked
// between steps, not mid-statement. Returns the number of applied steps.
func Apply(ctx context.Context, target Executor, plan *Plan) (int, error) {
	applied := 0
	for i, step := range plan.Steps() {
		if err := ctx.Err(); err != nil {
			return applied, fmt.Errorf("migration cancelled before step %d: %w", i+1, err)
		}
		if err := target.ExecuteCommand(ctx, step.SQL); err != nil {
			return applied, fmt.Errorf("migration step %d (%s %s) failed: %w",
				i+1, step.Kind, step.QualifiedTable(), err)
		}
		applied++
	}
	return applied, nil
}
