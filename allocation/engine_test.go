/*
engine_test.go - Behavior tests for the allocation engine

ORGANIZATION:
  1. Proportional split scenarios - realistic inputs, exact expectations
  2. Degenerate inputs - zero hours, zero or negative pools
  3. Rounding behavior - increment multiples, banker's ties, disabled rounding
  4. Structural invariants - row order, house row shape, conservation

Each test states the scenario with GIVEN/WHEN/THEN comments and asserts
with explanatory messages.
*/
package allocation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diomavro/tip-app/allocation"
)

func f(v float64) *float64 { return &v }

func sumRounded(rows []allocation.AllocationRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.RoundedAmount)
	}
	return total
}

// =============================================================================
// PROPORTIONAL SPLIT SCENARIOS
// =============================================================================

func TestAllocate_WaiterAndKitchen_RoundsToIncrementAndConserves(t *testing.T) {
	// GIVEN: Alice (30h waiter, 24 points) and Bob (20h kitchen, 10 points)
	//        splitting an odd $503 pool with the default 2% house share
	// WHEN: Allocating with the default $5 increment
	// THEN: Both payouts are $5 multiples and every dollar is accounted for

	rows := allocation.Allocate(503, []allocation.EmployeeInput{
		{Name: "Alice", Hours: 30, Role: "waiter"},
		{Name: "Bob", Hours: 20, Role: "kitchen"},
	})
	require.Len(t, rows, 3)

	alice, bob, house := rows[0], rows[1], rows[2]
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, "Bob", bob.Name)
	assert.True(t, house.IsHouse(), "last row must be the house")

	// 24/34 * 0.98 * 503 = 347.96 -> 350; 10/34 * 0.98 * 503 = 144.98 -> 145
	assert.True(t, alice.RoundedAmount.Equal(decimal.NewFromInt(350)),
		"Alice got %s", alice.RoundedAmount)
	assert.True(t, bob.RoundedAmount.Equal(decimal.NewFromInt(145)),
		"Bob got %s", bob.RoundedAmount)
	assert.True(t, house.RoundedAmount.Equal(decimal.NewFromInt(8)),
		"house absorbs the remainder, got %s", house.RoundedAmount)

	assert.True(t, sumRounded(rows).Equal(decimal.NewFromInt(503)),
		"rounded payouts must sum to the full pool")

	five := decimal.NewFromInt(5)
	for _, r := range rows[:2] {
		assert.True(t, r.RoundedAmount.Mod(five).IsZero(),
			"%s payout %s is not a $5 multiple", r.Name, r.RoundedAmount)
	}
}

func TestAllocate_Points_AreHoursTimesMultiplier(t *testing.T) {
	rows := allocation.Allocate(1000, []allocation.EmployeeInput{
		{Name: "Eva", Hours: 40, Role: "experienced waiter"},
		{Name: "Kim", Hours: 10, Role: "new"},
	})

	assert.True(t, rows[0].Points.Equal(decimal.NewFromInt(40)), "40h x 1.0")
	assert.True(t, rows[1].Points.Equal(decimal.NewFromInt(6)), "10h x 0.6")
}

func TestAllocate_ExplicitMultiplier_OverridesRole(t *testing.T) {
	// GIVEN: Two employees with identical hours; one carries an explicit
	//        multiplier that contradicts her kitchen role
	// THEN: The override wins regardless of the role label

	rows := allocation.Allocate(1000, []allocation.EmployeeInput{
		{Name: "Ana", Hours: 20, Role: "kitchen", Multiplier: f(1.0)},
		{Name: "Ben", Hours: 20, Role: "kitchen"},
	})

	assert.True(t, rows[0].Multiplier.Equal(decimal.NewFromInt(1)))
	assert.True(t, rows[0].Points.Equal(decimal.NewFromInt(20)))
	assert.True(t, rows[1].Points.Equal(decimal.NewFromInt(10)))
	assert.True(t, rows[0].RoundedAmount.GreaterThan(rows[1].RoundedAmount),
		"override should earn Ana a bigger share than role-weighted Ben")
}

func TestAllocate_EqualPoints_EqualShares(t *testing.T) {
	rows := allocation.Allocate(1000, []allocation.EmployeeInput{
		{Name: "A", Hours: 25, Role: "waiter"},
		{Name: "B", Hours: 25, Role: "waiter"},
	})

	assert.True(t, rows[0].RoundedAmount.Equal(rows[1].RoundedAmount),
		"identical inputs must produce identical payouts")
	// 0.49 * 1000 = 490 each, house keeps 20
	assert.True(t, rows[0].RoundedAmount.Equal(decimal.NewFromInt(490)))
	assert.True(t, rows[2].RoundedAmount.Equal(decimal.NewFromInt(20)))
}

// =============================================================================
// DEGENERATE INPUTS
// =============================================================================

func TestAllocate_ZeroHours_HouseTakesEverything(t *testing.T) {
	// GIVEN: A single employee with zero hours and a $100 pool
	// THEN: The employee gets nothing; the house row passes $100 through

	rows := allocation.Allocate(100, []allocation.EmployeeInput{
		{Name: "Idle", Hours: 0, Role: "waiter"},
	})
	require.Len(t, rows, 2)

	assert.True(t, rows[0].RoundedAmount.IsZero())
	assert.True(t, rows[0].PostProportion.IsZero())
	assert.True(t, rows[1].RoundedAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, rows[1].PostProportion.Equal(decimal.NewFromInt(1)),
		"house holds the whole positive pool")
}

func TestAllocate_NegativePool_PassesThroughToHouse(t *testing.T) {
	// Defensive behavior only: the HTTP layer rejects non-positive pools
	// before the engine ever sees them.

	rows := allocation.Allocate(-10, []allocation.EmployeeInput{
		{Name: "Alice", Hours: 30, Role: "waiter"},
	})
	require.Len(t, rows, 2)

	assert.True(t, rows[0].RoundedAmount.IsZero())
	assert.True(t, rows[1].RawAmount.Equal(decimal.NewFromInt(-10)))
	assert.True(t, rows[1].RoundedAmount.Equal(decimal.NewFromInt(-10)))
	assert.True(t, rows[1].PostProportion.IsZero(),
		"non-positive pool pins every proportion at zero")
}

func TestAllocate_ZeroPool_AllZero(t *testing.T) {
	rows := allocation.Allocate(0, []allocation.EmployeeInput{
		{Name: "Alice", Hours: 30, Role: "waiter"},
	})

	for _, r := range rows {
		assert.True(t, r.RoundedAmount.IsZero())
		assert.True(t, r.PostProportion.IsZero())
	}
}

func TestAllocate_NoEmployees_SingleHouseRow(t *testing.T) {
	rows := allocation.Allocate(250, nil)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsHouse())
	assert.True(t, rows[0].RoundedAmount.Equal(decimal.NewFromInt(250)))
}

// =============================================================================
// ROUNDING BEHAVIOR
// =============================================================================

func TestAllocateWith_BankersRounding_TieGoesToEven(t *testing.T) {
	// GIVEN: No house share, so a single employee's raw payout equals the
	//        pool exactly, landing on a $2.50 rounding tie
	// THEN: 12.5/5 = 2.5 rounds to the even multiple 2 -> $10, and
	//       17.5/5 = 3.5 rounds to the even multiple 4 -> $20

	params := allocation.Params{HouseShare: 0, RoundIncrement: 5}
	solo := []allocation.EmployeeInput{{Name: "Solo", Hours: 10, Role: "waiter"}}

	down := allocation.AllocateWith(12.5, solo, params)
	assert.True(t, down[0].RoundedAmount.Equal(decimal.NewFromInt(10)),
		"12.5 should round down to 10, got %s", down[0].RoundedAmount)
	assert.True(t, down[1].RoundedAmount.Equal(decimal.NewFromFloat(2.5)),
		"house picks up the 2.50 left behind")

	up := allocation.AllocateWith(17.5, solo, params)
	assert.True(t, up[0].RoundedAmount.Equal(decimal.NewFromInt(20)),
		"17.5 should round up to 20, got %s", up[0].RoundedAmount)
	assert.True(t, up[1].RoundedAmount.IsZero(),
		"house never goes negative when employee rounding overshoots")
}

func TestAllocateWith_ZeroIncrement_DisablesRounding(t *testing.T) {
	params := allocation.Params{HouseShare: 0.02, RoundIncrement: 0}
	rows := allocation.AllocateWith(503, []allocation.EmployeeInput{
		{Name: "Alice", Hours: 30, Role: "waiter"},
		{Name: "Bob", Hours: 20, Role: "kitchen"},
	}, params)

	for _, r := range rows[:2] {
		assert.True(t, r.RoundedAmount.Equal(r.RawAmount),
			"with rounding disabled the payable amount is the raw amount")
	}
}

func TestAllocateWith_CustomIncrement(t *testing.T) {
	params := allocation.Params{HouseShare: 0.02, RoundIncrement: 1}
	rows := allocation.AllocateWith(503, []allocation.EmployeeInput{
		{Name: "Alice", Hours: 30, Role: "waiter"},
		{Name: "Bob", Hours: 20, Role: "kitchen"},
	}, params)

	one := decimal.NewFromInt(1)
	for _, r := range rows[:2] {
		assert.True(t, r.RoundedAmount.Mod(one).IsZero(),
			"payout %s is not a whole dollar", r.RoundedAmount)
	}
}

// =============================================================================
// STRUCTURAL INVARIANTS
// =============================================================================

func TestAllocate_Invariants_AcrossScenarios(t *testing.T) {
	scenarios := []struct {
		name      string
		totalTips float64
		employees []allocation.EmployeeInput
	}{
		{
			name:      "odd pool with mixed roles",
			totalTips: 503,
			employees: []allocation.EmployeeInput{
				{Name: "Alice", Hours: 30, Role: "waiter"},
				{Name: "Bob", Hours: 20, Role: "kitchen"},
			},
		},
		{
			name:      "small pool many staff",
			totalTips: 37,
			employees: []allocation.EmployeeInput{
				{Name: "A", Hours: 12, Role: "new"},
				{Name: "B", Hours: 8, Role: "waiter"},
				{Name: "C", Hours: 41.5, Role: "experienced waiter"},
				{Name: "D", Hours: 3.25, Role: "kitchen"},
			},
		},
		{
			name:      "fractional hours and override",
			totalTips: 1234.56,
			employees: []allocation.EmployeeInput{
				{Name: "X", Hours: 17.75, Role: "kitchen", Multiplier: f(0.9)},
				{Name: "Y", Hours: 22.25},
			},
		},
		{
			name:      "all idle",
			totalTips: 75,
			employees: []allocation.EmployeeInput{
				{Name: "A", Hours: 0, Role: "waiter"},
				{Name: "B", Hours: 0, Role: "kitchen"},
			},
		},
	}

	for _, tc := range scenarios {
		t.Run(tc.name, func(t *testing.T) {
			rows := allocation.Allocate(tc.totalTips, tc.employees)
			require.Len(t, rows, len(tc.employees)+1)

			// Employee rows keep input order; house row is last.
			for i, emp := range tc.employees {
				assert.Equal(t, emp.Name, rows[i].Name)
				assert.False(t, rows[i].IsHouse())
			}
			assert.True(t, rows[len(rows)-1].IsHouse())

			tips := decimal.NewFromFloat(tc.totalTips)
			assert.True(t, sumRounded(rows).LessThanOrEqual(tips),
				"payouts must never exceed the pool")

			totalProp := decimal.Zero
			for _, r := range rows {
				assert.False(t, r.RoundedAmount.IsNegative(),
					"%s has a negative payout", r.Name)
				totalProp = totalProp.Add(r.PostProportion)
			}
			// Division carries 16 digits of precision, so allow a hair
			// of slack above 1.
			assert.True(t, totalProp.LessThanOrEqual(decimal.NewFromFloat(1.0000001)),
				"post-rounding proportions sum above 1: %s", totalProp)
		})
	}
}

func TestAllocate_HouseRawAmount_IsNominalShare(t *testing.T) {
	rows := allocation.Allocate(1000, []allocation.EmployeeInput{
		{Name: "Alice", Hours: 30, Role: "waiter"},
	})

	house := rows[len(rows)-1]
	assert.True(t, house.RawAmount.Equal(decimal.NewFromInt(20)),
		"house raw amount is the nominal 2%% of the pool")
	assert.True(t, house.RawProportion.Equal(decimal.NewFromFloat(0.02)))
}
