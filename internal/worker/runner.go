package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"mailscope/internal/analyzer"
	"mailscope/internal/queue"
	"mailscope/internal/store"
)

// taskTimeout bounds one email's analysis; the collectors' own HTTP
// timeouts are shorter, so this only catches pathological stalls.
const taskTimeout = 60 * time.Second

// Run pulls tasks from the queue and analyzes them until ctx is
// cancelled. Analysis itself never fails; only queue and storage errors
// are retried with a backoff.
func Run(ctx context.Context, q *queue.Client, engine *analyzer.Engine) {
	log.Println("[WORKER] started, waiting for tasks")

	for {
		task, err := q.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				log.Println("[WORKER] shutting down")
				return
			}
			log.Printf("[WORKER] queue error: %v", err)
			time.Sleep(time.Second)
			continue
		}

		taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
		profile := engine.AnalyzeOne(taskCtx, task.Email)
		cancel()

		if err := store.SaveProfile(ctx, task.JobID, profile); err != nil {
			log.Printf("[WORKER] failed to save profile for %s: %v", task.Email, err)
			continue
		}

		log.Printf("[WORKER] processed %s (quality %d)", task.Email, profile.Metrics.QualityScore)
	}
}
