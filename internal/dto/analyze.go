package dto

import "github.com/costmatrix/analytics-engine/internal/models"

// AnalyzeResponse is the POST /analyze dashboard bundle: the core summary
// plus enough of the rest of the Aggregator's surface that the browser UI
// can render its landing dashboard from one round trip.
type AnalyzeResponse struct {
	Months          []string                   `json:"months"`
	Summary         models.Summary             `json:"summary"`
	BookingBehavior models.BookingBehavior     `json:"booking_behavior"`
	Hierarchy       models.DepartmentHierarchy `json:"department_hierarchy"`
}
