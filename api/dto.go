/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the allocation engine's internal types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - allocation: Engine input/output types these map to
*/
package api

import (
	"encoding/json"

	"github.com/diomavro/tip-app/allocation"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO is one employee in a calculation or save request.
type EmployeeDTO struct {
	Name       string   `json:"name"`
	Hours      float64  `json:"hours"`
	Role       string   `json:"role,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty"`
}

// CalculateRequest asks for a tip allocation.
type CalculateRequest struct {
	TotalTips float64       `json:"total_tips"`
	Employees []EmployeeDTO `json:"employees"`
}

// CalculationResultDTO is one employee's allocation in a response. The
// house row is never included.
type CalculationResultDTO struct {
	EmployeeName    string  `json:"employee_name"`
	Hours           float64 `json:"hours"`
	SharePercentage float64 `json:"share_percentage"`
	TipAmount       float64 `json:"tip_amount"`
}

// SaveDistributionRequest persists a computed distribution.
type SaveDistributionRequest struct {
	TotalTips float64                `json:"total_tips"`
	Employees []EmployeeDTO          `json:"employees"`
	Results   []CalculationResultDTO `json:"results"`
}

// SaveDistributionResponse acknowledges a save.
type SaveDistributionResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// DistributionDTO is a stored distribution in history responses. The
// employee_data field is the snapshot exactly as it was saved.
type DistributionDTO struct {
	ID           string          `json:"id"`
	WeekDate     string          `json:"week_date"`
	TotalTips    float64         `json:"total_tips"`
	TotalHours   float64         `json:"total_hours"`
	EmployeeData json.RawMessage `json:"employee_data"`
	CreatedAt    string          `json:"created_at"`
}

// KnownEmployeeDTO is a registry entry in employee listing responses.
type KnownEmployeeDTO struct {
	Name       string  `json:"name"`
	Role       string  `json:"role,omitempty"`
	Multiplier float64 `json:"multiplier"`
	LastSeen   string  `json:"last_seen"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeInputs(dtos []EmployeeDTO) []allocation.EmployeeInput {
	inputs := make([]allocation.EmployeeInput, len(dtos))
	for i, dto := range dtos {
		inputs[i] = allocation.EmployeeInput{
			Name:       dto.Name,
			Hours:      dto.Hours,
			Role:       dto.Role,
			Multiplier: dto.Multiplier,
		}
	}
	return inputs
}

func toResultDTOs(results []allocation.EmployeeResult) []CalculationResultDTO {
	dtos := make([]CalculationResultDTO, len(results))
	for i, res := range results {
		dtos[i] = CalculationResultDTO{
			EmployeeName:    res.Name,
			Hours:           res.Hours,
			SharePercentage: res.SharePercentage,
			TipAmount:       res.TipAmount,
		}
	}
	return dtos
}
