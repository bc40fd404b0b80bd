package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailscope/internal/models"
)

// DB is the shared connection pool. Init must be called before any other
// function in this package.
var DB *pgxpool.Pool

// Init connects to Postgres and applies migrations.
func Init(connString string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	DB, err = pgxpool.New(ctx, connString)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := DB.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return runMigrations(ctx)
}

func runMigrations(ctx context.Context) error {
	// jobs tracks batch uploads; profiles stores the full analysis result
	// as JSONB so reports can be regenerated without re-analyzing.
	queryJobs := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		total_count INT DEFAULT 0,
		processed_count INT DEFAULT 0,
		created_at TIMESTAMP DEFAULT NOW(),
		completed_at TIMESTAMP
	);`

	queryProfiles := `
	CREATE TABLE IF NOT EXISTS profiles (
		id SERIAL PRIMARY KEY,
		job_id TEXT NOT NULL REFERENCES jobs(id),
		email TEXT NOT NULL,
		quality_score INT NOT NULL,
		security_score INT,
		data JSONB NOT NULL
	);`

	if _, err := DB.Exec(ctx, queryJobs); err != nil {
		return fmt.Errorf("migration failed (jobs): %w", err)
	}
	if _, err := DB.Exec(ctx, queryProfiles); err != nil {
		return fmt.Errorf("migration failed (profiles): %w", err)
	}
	return nil
}

// CreateJob registers a new pending batch.
func CreateJob(ctx context.Context, jobID string, totalCount int) error {
	query := `INSERT INTO jobs (id, status, total_count, created_at) VALUES ($1, 'pending', $2, NOW())`
	if _, err := DB.Exec(ctx, query, jobID, totalCount); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// SaveProfile writes one completed profile and bumps the job's progress
// in a single transaction. When the last profile lands, the job flips to
// completed.
func SaveProfile(ctx context.Context, jobID string, profile models.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	var securityScore *int
	if profile.Security != nil {
		securityScore = &profile.Security.Score
	}

	tx, err := DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (job_id, email, quality_score, security_score, data)
		VALUES ($1, $2, $3, $4, $5)
	`, jobID, profile.Email, profile.Metrics.QualityScore, securityScore, data)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE jobs
		SET processed_count = processed_count + 1,
		    status = CASE
		        WHEN processed_count + 1 >= total_count THEN 'completed'
		        ELSE status
		    END,
		    completed_at = CASE
		        WHEN processed_count + 1 >= total_count THEN NOW()
		        ELSE completed_at
		    END
		WHERE id = $1
	`, jobID)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}

	return tx.Commit(ctx)
}

// JobProfiles loads every stored profile for a job in insertion order.
func JobProfiles(ctx context.Context, jobID string) ([]models.Profile, error) {
	rows, err := DB.Query(ctx, `SELECT data FROM profiles WHERE job_id = $1 ORDER BY id ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			continue
		}
		var p models.Profile
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
