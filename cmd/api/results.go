package main

import (
	"encoding/json"
	"net/http"

	"mailscope/internal/models"
	"mailscope/internal/report"
	"mailscope/internal/store"
)

func resultsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "Missing 'id' parameter", http.StatusBadRequest)
		return
	}

	profiles, err := store.JobProfiles(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}

	// Return [] instead of null when the job has no results yet.
	if profiles == nil {
		profiles = []models.Profile{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		JobID    string              `json:"job_id"`
		Summary  report.BatchSummary `json:"summary"`
		Profiles []models.Profile    `json:"profiles"`
	}{
		JobID:    jobID,
		Summary:  report.Summarize(profiles),
		Profiles: profiles,
	})
}

// reportHandler renders the stored profiles of a job as the HTML report
// artifact.
func reportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "Missing 'id' parameter", http.StatusBadRequest)
		return
	}

	profiles, err := store.JobProfiles(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(report.RenderHTML(profiles)))
}
