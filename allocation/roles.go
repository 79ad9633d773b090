/*
roles.go - Role-based weighting table

PURPOSE:
  Maps staff roles to the weighting multiplier used when converting hours
  worked into allocation points. The table is fixed: four known roles plus
  an explicit default for everything else.

RESOLUTION RULE:
  An explicit per-employee multiplier always wins over the role lookup.
  Only when no override is supplied does the role table apply. Unknown,
  empty, or misspelled roles resolve to the same multiplier as "waiter",
  so a bad label never zeroes out an employee's share.

SEE ALSO:
  - engine.go: Uses EffectiveMultiplier during point calculation
*/
package allocation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Role is a recognized staff role label. Matching is case-insensitive.
type Role string

const (
	RoleExperiencedWaiter Role = "experienced waiter"
	RoleWaiter            Role = "waiter"
	RoleKitchen           Role = "kitchen"
	RoleNew               Role = "new"
)

var roleMultipliers = map[Role]decimal.Decimal{
	RoleExperiencedWaiter: decimal.NewFromFloat(1.0),
	RoleWaiter:            decimal.NewFromFloat(0.8),
	RoleKitchen:           decimal.NewFromFloat(0.5),
	RoleNew:               decimal.NewFromFloat(0.6),
}

// defaultMultiplier applies to absent or unrecognized roles (same as waiter).
var defaultMultiplier = decimal.NewFromFloat(0.8)

// MultiplierForRole returns the weighting multiplier for a role label.
// Total over all inputs: unknown or empty labels get the default.
func MultiplierForRole(role string) decimal.Decimal {
	if m, ok := roleMultipliers[Role(strings.ToLower(role))]; ok {
		return m
	}
	return defaultMultiplier
}

// EffectiveMultiplier resolves the weighting for one employee.
// Explicit override first, role lookup second. The two branches are kept
// separate so the precedence rule stays visible.
func (e EmployeeInput) EffectiveMultiplier() decimal.Decimal {
	if e.Multiplier != nil {
		return decimal.NewFromFloat(*e.Multiplier)
	}
	return MultiplierForRole(e.Role)
}
