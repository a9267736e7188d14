package validate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/citybike/warehouse/internal/domain"
)

// Outcome is the result of one rule against one materialized table.
type Outcome struct {
	Rule       string   `json:"rule"`
	Severity   Severity `json:"severity"`
	Violations int      `json:"violations"`
	Passed     bool     `json:"passed"`
}

// ModelResult collects every rule outcome for one model's materialization.
type ModelResult struct {
	Model    string    `json:"model"`
	Outcomes []Outcome `json:"outcomes"`
}

// Failed reports whether any error-severity rule found violations.
// Warn-severity failures never fail the model.
func (r ModelResult) Failed() bool {
	for _, o := range r.Outcomes {
		if !o.Passed && o.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Run evaluates every rule against the table. Rules are independent of each
// other, so they run concurrently; outcomes land in declaration order
// regardless of completion order, and every outcome is recorded before the
// caller can act on the result; there is no early exit on the first failure.
//
// A non-nil error means a rule could not be evaluated at all; data-quality
// failures are reported through the outcomes, not through the error.
func Run(ctx context.Context, t *domain.Table, rules []Rule, parents ParentReader) (ModelResult, error) {
	result := ModelResult{
		Model:    t.Name,
		Outcomes: make([]Outcome, len(rules)),
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, rule := range rules {
		i, rule := i, rule
		g.Go(func() error {
			violations, err := rule.check(ctx, t, parents)
			if err != nil {
				return fmt.Errorf("rule %s: %w", rule.Name, err)
			}
			result.Outcomes[i] = Outcome{
				Rule:       rule.Name,
				Severity:   rule.Severity,
				Violations: violations,
				Passed:     violations == 0,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ModelResult{}, fmt.Errorf("validate.Run: %s: %w", t.Name, err)
	}
	return result, nil
}
