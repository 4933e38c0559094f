package dto

// UploadResponse is returned immediately by POST /upload: the workbook
// is queued; saving and normalising it happen afterwards on the worker.
type UploadResponse struct {
	TaskID   string `json:"task_id"`
	FileName string `json:"file_name"`
}

// ProgressResponse mirrors models.ProgressTask for GET /progress/{task_id}.
type ProgressResponse struct {
	TaskID      string   `json:"task_id"`
	FileName    string   `json:"file_name"`
	Status      string   `json:"status"`
	Progress    int      `json:"progress"`
	CurrentStep string   `json:"current_step"`
	Steps       []string `json:"steps"`
	Error       string   `json:"error,omitempty"`
}

// MonthsResponse is the payload for GET /months.
type MonthsResponse struct {
	Months []string `json:"months"`
}

// DeleteMonthResponse reports what a DELETE /months/{m} removed.
type DeleteMonthResponse struct {
	Month          string `json:"month"`
	UploadsUpdated int    `json:"uploads_updated"`
	UploadsRemoved int    `json:"uploads_removed"`
}
