// Package validate is the generic data-quality rule engine. Rules are
// declared per model, compiled against a materialized table, and each rule
// reports the number of violating rows: zero violations is a pass.
//
// Severity controls what a failure means to the pipeline: an error-severity
// failure marks the model failed and halts everything downstream of it, a
// warn-severity failure is logged and processing continues. The engine itself
// only reports; the pipeline runner owns the halt decision.
package validate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/citybike/warehouse/internal/domain"
)

// Severity classifies a rule failure.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// ParentReader resolves a parent model's latest materialization for
// relationships rules. The warehouse store satisfies it.
type ParentReader interface {
	Read(ctx context.Context, model string) (*domain.Table, error)
}

// Rule is one declarative assertion over a materialized table.
type Rule struct {
	// Name identifies the rule in reports, e.g. "not_null(start_station_id)".
	Name     string
	Severity Severity

	// check returns the number of violating rows. A non-nil error means the
	// rule could not be evaluated at all (e.g. an unreadable parent model),
	// which is an infrastructure failure, not a data failure.
	check func(ctx context.Context, t *domain.Table, parents ParentReader) (int, error)
}

// NotNull asserts that no row has a null in the column.
func NotNull(column string, severity Severity) Rule {
	return Rule{
		Name:     fmt.Sprintf("not_null(%s)", column),
		Severity: severity,
		check: func(_ context.Context, t *domain.Table, _ ParentReader) (int, error) {
			var violations int
			for i := range t.Rows {
				if t.Value(i, column) == nil {
					violations++
				}
			}
			return violations, nil
		},
	}
}

// Unique asserts that no value combination of the columns appears more than
// once. Nulls participate in the combination: two rows that are null in the
// same key column and equal elsewhere are duplicates.
func Unique(severity Severity, columns ...string) Rule {
	return Rule{
		Name:     fmt.Sprintf("unique(%s)", joinColumns(columns)),
		Severity: severity,
		check: func(_ context.Context, t *domain.Table, _ ParentReader) (int, error) {
			counts := make(map[string]int, t.Len())
			for i := range t.Rows {
				key := ""
				for _, c := range columns {
					key += cellKey(t.Value(i, c)) + "\x1f"
				}
				counts[key]++
			}
			var violations int
			for _, n := range counts {
				if n > 1 {
					violations += n
				}
			}
			return violations, nil
		},
	}
}

// AcceptedValues asserts that every non-null value in the column is one of
// the allowed literals.
func AcceptedValues(column string, severity Severity, allowed ...string) Rule {
	set := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		set[v] = true
	}
	return Rule{
		Name:     fmt.Sprintf("accepted_values(%s)", column),
		Severity: severity,
		check: func(_ context.Context, t *domain.Table, _ ParentReader) (int, error) {
			var violations int
			for i := range t.Rows {
				v := t.Value(i, column)
				if v == nil {
					continue
				}
				s, ok := domain.CellString(v)
				if !ok || !set[s] {
					violations++
				}
			}
			return violations, nil
		},
	}
}

// Relationships asserts referential integrity: every non-null value in the
// child column exists among the parent column's values. The parent model is
// read through the store at evaluation time, so the rule always sees the
// parent's latest full materialization.
func Relationships(column, parentModel, parentColumn string, severity Severity) Rule {
	return Rule{
		Name:     fmt.Sprintf("relationships(%s -> %s.%s)", column, parentModel, parentColumn),
		Severity: severity,
		check: func(ctx context.Context, t *domain.Table, parents ParentReader) (int, error) {
			if parents == nil {
				return 0, fmt.Errorf("relationships rule requires a parent reader")
			}
			parent, err := parents.Read(ctx, parentModel)
			if err != nil {
				return 0, fmt.Errorf("read parent %s: %w", parentModel, err)
			}
			known := make(map[string]bool, parent.Len())
			for i := range parent.Rows {
				known[cellKey(parent.Value(i, parentColumn))] = true
			}
			var violations int
			for i := range t.Rows {
				v := t.Value(i, column)
				if v == nil {
					continue
				}
				if !known[cellKey(v)] {
					violations++
				}
			}
			return violations, nil
		},
	}
}

// Predicate asserts that no row satisfies the failure predicate. The
// predicate receives the table and a row index and returns true when the row
// violates the rule.
func Predicate(name string, severity Severity, fails func(t *domain.Table, row int) bool) Rule {
	return Rule{
		Name:     name,
		Severity: severity,
		check: func(_ context.Context, t *domain.Table, _ ParentReader) (int, error) {
			var violations int
			for i := range t.Rows {
				if fails(t, i) {
					violations++
				}
			}
			return violations, nil
		},
	}
}

// cellKey canonicalizes a cell value for equality comparison across tables,
// so an int in one table matches an int64 for the same value in another.
func cellKey(v any) string {
	if v == nil {
		return "\x00"
	}
	if n, ok := domain.CellInt(v); ok {
		// Integral floats land here too, which is exactly what key columns need.
		return "i" + strconv.Itoa(n)
	}
	switch x := v.(type) {
	case string:
		return "s" + x
	case bool:
		return "b" + strconv.FormatBool(x)
	case float64:
		return "f" + strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return "t" + x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("?%v", x)
	}
}

func joinColumns(columns []string) string {
	out := ""
	for i, c := range columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
