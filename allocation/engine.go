/*
Package allocation distributes a pooled tip amount among employees in
proportion to hours worked, weighted by role.

PURPOSE:
  This is the core of the system. Everything else (HTTP API, SQLite
  persistence) is plumbing around Allocate: a pure function that turns a
  tip total and a list of employees into one allocation row per employee
  plus a single house row.

KEY CONCEPTS:
  - Points: hours x effective multiplier; the basis for proportional split
  - House share: fixed fraction of the pool nominally kept by the business
  - Rounding overage: whatever employee rounding leaves over (or eats into)
    is absorbed by the house row, which never goes negative

NUMERIC MODEL:
  All money math runs on decimal.Decimal to keep rounding exact. Payouts
  are rounded to a fixed currency increment (default $5) with banker's
  rounding (half-to-even), so $12.50 at a $5 increment rounds to $10 and
  $17.50 rounds to $20. The float64 boundary exists only at the API edge.

GUARANTEES:
  - Pure and stateless: safe for concurrent callers, no I/O, no errors
  - Employee rows keep input order; the house row is always last
  - The house row's rounded amount is never negative
  - Zero points or a non-positive pool degenerates gracefully: employees
    get zero, the house row passes the total through unchanged

SEE ALSO:
  - roles.go: Role-to-multiplier resolution
  - projection.go: Employee-only view consumed by the API layer
*/
package allocation

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUTS
// =============================================================================

// EmployeeInput is one employee in an allocation request.
type EmployeeInput struct {
	Name       string
	Hours      float64
	Role       string   // optional; resolved via MultiplierForRole
	Multiplier *float64 // optional; overrides the role lookup when set
}

// Params tunes an allocation run.
type Params struct {
	// HouseShare is the fraction of the pool nominally kept by the house,
	// in [0, 1].
	HouseShare float64

	// RoundIncrement is the currency step employee payouts are rounded to.
	// A value <= 0 disables rounding.
	RoundIncrement float64
}

// DefaultParams returns the standard 2% house share with $5 rounding.
func DefaultParams() Params {
	return Params{HouseShare: 0.02, RoundIncrement: 5.0}
}

// =============================================================================
// OUTPUT
// =============================================================================

// HouseID is the sentinel identifier of the synthetic house row. Callers
// use it to filter the house out of employee-facing results.
const HouseID = "house"

// AllocationRow is the computed allocation for one employee, or for the
// house. Rows are never mutated after Allocate returns.
type AllocationRow struct {
	ID         string
	Name       string
	Hours      float64
	Role       string
	Multiplier decimal.Decimal
	Points     decimal.Decimal

	// RawProportion is the pre-rounding share of the pool.
	RawProportion decimal.Decimal

	// RawAmount is RawProportion applied to the pool, before rounding.
	RawAmount decimal.Decimal

	// RoundedAmount is the payable amount after increment rounding. For
	// the house row it is the remainder after employee rounding, clamped
	// at zero.
	RoundedAmount decimal.Decimal

	// PostProportion is RoundedAmount relative to the pool (0 when the
	// pool is not positive).
	PostProportion decimal.Decimal
}

// IsHouse reports whether this is the synthetic house row.
func (r AllocationRow) IsHouse() bool { return r.ID == HouseID }

// =============================================================================
// ENGINE
// =============================================================================

// Allocate distributes totalTips across employees with DefaultParams.
func Allocate(totalTips float64, employees []EmployeeInput) []AllocationRow {
	return AllocateWith(totalTips, employees, DefaultParams())
}

// AllocateWith distributes totalTips across employees in proportion to
// points (hours x effective multiplier), reserving p.HouseShare of the
// pool for the house and rounding employee payouts to p.RoundIncrement.
//
// The function is total: it never fails, and business-level validation
// (positive pool, non-empty list, positive hours) is the caller's job.
// Returns one row per employee in input order, then the house row.
func AllocateWith(totalTips float64, employees []EmployeeInput, p Params) []AllocationRow {
	tips := decimal.NewFromFloat(totalTips)
	houseShare := decimal.NewFromFloat(p.HouseShare)
	increment := decimal.NewFromFloat(p.RoundIncrement)

	rows := make([]AllocationRow, 0, len(employees)+1)
	totalPoints := decimal.Zero
	for _, emp := range employees {
		mult := emp.EffectiveMultiplier()
		points := decimal.NewFromFloat(emp.Hours).Mul(mult)
		totalPoints = totalPoints.Add(points)
		rows = append(rows, AllocationRow{
			ID:         emp.Name,
			Name:       emp.Name,
			Hours:      emp.Hours,
			Role:       emp.Role,
			Multiplier: mult,
			Points:     points,
		})
	}

	// Degenerate pool: nothing to distribute, or nobody earned points.
	// Employees get zero and the house passes the total through as-is,
	// including zero or negative values the caller chose not to reject.
	if totalPoints.Sign() <= 0 || tips.Sign() <= 0 {
		for i := range rows {
			rows[i].RawProportion = decimal.Zero
			rows[i].RawAmount = decimal.Zero
			rows[i].RoundedAmount = decimal.Zero
			rows[i].PostProportion = decimal.Zero
		}
		housePost := decimal.Zero
		if tips.Sign() > 0 {
			housePost = decimal.NewFromInt(1)
		}
		return append(rows, AllocationRow{
			ID:             HouseID,
			Name:           "House",
			Role:           HouseID,
			Multiplier:     decimal.Zero,
			Points:         decimal.Zero,
			RawProportion:  houseShare,
			RawAmount:      tips,
			RoundedAmount:  tips,
			PostProportion: housePost,
		})
	}

	// Scale employee proportions so the house nominally keeps its share,
	// then round each payout to the increment.
	keep := decimal.NewFromInt(1).Sub(houseShare)
	sumRounded := decimal.Zero
	for i := range rows {
		prop := rows[i].Points.Div(totalPoints).Mul(keep)
		raw := prop.Mul(tips)
		rounded := roundToIncrement(raw, increment)
		rows[i].RawProportion = prop
		rows[i].RawAmount = raw
		rows[i].RoundedAmount = rounded
		sumRounded = sumRounded.Add(rounded)
	}

	// The house absorbs the rounding overage. If employee rounding
	// overshot the pool, the house floor is zero rather than a negative
	// payout.
	houseAmount := decimal.Max(decimal.Zero, tips.Sub(sumRounded))
	rows = append(rows, AllocationRow{
		ID:            HouseID,
		Name:          "House",
		Role:          HouseID,
		Multiplier:    decimal.Zero,
		Points:        decimal.Zero,
		RawProportion: houseShare,
		RawAmount:     houseShare.Mul(tips),
		RoundedAmount: houseAmount,
	})

	for i := range rows {
		rows[i].PostProportion = rows[i].RoundedAmount.Div(tips)
	}
	return rows
}

// roundToIncrement rounds amount to the nearest multiple of increment
// using banker's rounding, so ties break toward the even multiple.
// A non-positive increment leaves the amount untouched.
func roundToIncrement(amount, increment decimal.Decimal) decimal.Decimal {
	if increment.Sign() <= 0 {
		return amount
	}
	return amount.Div(increment).RoundBank(0).Mul(increment)
}
