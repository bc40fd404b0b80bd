package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"mailscope/internal/clean"
	"mailscope/internal/store"
)

type UploadResponse struct {
	JobID     string `json:"job_id"`
	TotalRows int    `json:"total_rows"`
	Message   string `json:"message"`
}

// uploadHandler accepts a CSV of email addresses, cleans the list,
// registers a job and enqueues one analysis task per address.
func (a *app) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "File too large or malformed", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing 'file' parameter in form data", http.StatusBadRequest)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	var emails []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, "Invalid CSV format", http.StatusBadRequest)
			return
		}
		if len(record) > 0 && record[0] != "" {
			emails = append(emails, record[0])
		}
	}

	emails = clean.Clean(emails)
	if len(emails) == 0 {
		http.Error(w, "No usable email addresses in CSV", http.StatusBadRequest)
		return
	}

	jobID := uuid.New().String()
	ctx := r.Context()

	if err := store.CreateJob(ctx, jobID, len(emails)); err != nil {
		log.Printf("DB error creating job: %v", err)
		http.Error(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	if err := a.queue.Enqueue(ctx, jobID, emails); err != nil {
		log.Printf("Queue error for job %s: %v", jobID, err)
		http.Error(w, "Failed to enqueue tasks", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(UploadResponse{
		JobID:     jobID,
		TotalRows: len(emails),
		Message:   "Job created successfully. Processing started.",
	})
}
