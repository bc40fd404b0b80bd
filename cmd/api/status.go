package main

import (
	"encoding/json"
	"net/http"
	"time"

	"mailscope/internal/store"
)

type JobStatusResponse struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	TotalCount     int        `json:"total_count"`
	ProcessedCount int        `json:"processed_count"`
	Progress       float64    `json:"progress"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// statusHandler reports how far along a batch job is.
func statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "Missing 'id' parameter", http.StatusBadRequest)
		return
	}

	var job JobStatusResponse
	err := store.DB.QueryRow(r.Context(),
		`SELECT id, status, total_count, processed_count, created_at, completed_at FROM jobs WHERE id = $1`,
		jobID,
	).Scan(&job.ID, &job.Status, &job.TotalCount, &job.ProcessedCount, &job.CreatedAt, &job.CompletedAt)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	if job.TotalCount > 0 {
		job.Progress = float64(job.ProcessedCount) / float64(job.TotalCount) * 100
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}
