package service

import (
	"fmt"

	"github.com/costmatrix/analytics-engine/internal/models"
	"github.com/costmatrix/analytics-engine/pkg/export"
)

// ExportService renders already-computed Aggregator results to CSV or PDF.
// It never touches the Store or recomputes anything — it is offline-export
// tooling over results the caller already has in hand.
type ExportService struct {
	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewExportService builds the export service.
func NewExportService() *ExportService {
	return &ExportService{csv: export.NewCSVExporter(), pdf: export.NewPDFExporter()}
}

// AnomaliesCSV renders a list_anomalies result to CSV.
func (s *ExportService) AnomaliesCSV(items []models.AnomalyListItem) ([]byte, error) {
	return s.csv.Render(anomalyDataset(items))
}

// AnomaliesPDF renders a list_anomalies result to a tabular PDF.
func (s *ExportService) AnomaliesPDF(items []models.AnomalyListItem) ([]byte, error) {
	return s.pdf.Render(anomalyDataset(items), "Anomalies")
}

// ProjectsCSV renders a list_projects result to CSV.
func (s *ExportService) ProjectsCSV(items []models.ProjectSummary) ([]byte, error) {
	return s.csv.Render(projectDataset(items))
}

// ProjectsPDF renders a list_projects result to a tabular PDF.
func (s *ExportService) ProjectsPDF(items []models.ProjectSummary) ([]byte, error) {
	return s.pdf.Render(projectDataset(items), "Projects")
}

func anomalyDataset(items []models.AnomalyListItem) export.Dataset {
	headers := []string{"date", "employee_name", "department_path", "kind", "attendance_status", "detail"}
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]string{
			"date":              item.Date.String(),
			"employee_name":     item.EmployeeName,
			"department_path":   item.DepartmentPath.Join(),
			"kind":              string(item.Kind),
			"attendance_status": string(item.AttendanceStatus),
			"detail":            item.Detail,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func projectDataset(items []models.ProjectSummary) export.Dataset {
	headers := []string{"code", "name", "total_cost", "record_count", "person_count", "over_standard_count"}
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]string{
			"code":                item.Code,
			"name":                item.Name,
			"total_cost":          item.TotalCost.Decimal.String(),
			"record_count":        fmt.Sprintf("%d", item.RecordCount),
			"person_count":        fmt.Sprintf("%d", item.PersonCount),
			"over_standard_count": fmt.Sprintf("%d", item.OverStandardCount),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
