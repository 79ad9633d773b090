package allocation

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// EmployeeResult is the employee-facing view of an allocation row: the
// house row is filtered out and proportions become percentages.
type EmployeeResult struct {
	Name            string
	Hours           float64
	SharePercentage float64
	TipAmount       float64
}

// EmployeeResults projects allocation rows into employee-facing results,
// dropping the house row. Order follows the input rows.
func EmployeeResults(rows []AllocationRow) []EmployeeResult {
	results := make([]EmployeeResult, 0, len(rows))
	for _, row := range rows {
		if row.IsHouse() {
			continue
		}
		pct, _ := row.PostProportion.Mul(hundred).Float64()
		amount, _ := row.RoundedAmount.Float64()
		results = append(results, EmployeeResult{
			Name:            row.Name,
			Hours:           row.Hours,
			SharePercentage: pct,
			TipAmount:       amount,
		})
	}
	return results
}

// TotalHours sums the hours of all employees in a request.
func TotalHours(employees []EmployeeInput) float64 {
	total := 0.0
	for _, emp := range employees {
		total += emp.Hours
	}
	return total
}
