package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/templateflow/api/internal/model"
	"github.com/templateflow/api/internal/service"
	"github.com/templateflow/api/internal/websocket"
)

// ScriptWorker generates the population script for approved jobs and
// completes them
type ScriptWorker struct {
	jobService *service.JobService
	hub        *websocket.Hub
}

func NewScriptWorker(jobService *service.JobService, hub *websocket.Hub) *ScriptWorker {
	return &ScriptWorker{
		jobService: jobService,
		hub:        hub,
	}
}

// ProcessTask handles script generation
func (w *ScriptWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.ScriptJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal script payload: %w", err)
	}

	jobID := payload.JobID
	log.Printf("Generating script for job: %s", jobID)

	job, err := w.jobService.Get(ctx, jobID)
	if err != nil {
		return err
	}

	w.hub.BroadcastProgress(jobID, 30, model.JobStatusGenerating, "Assembling placeholder statements...")

	script, err := generateScript(job)
	if err != nil {
		w.failJob(ctx, jobID, err.Error())
		return err
	}

	w.hub.BroadcastProgress(jobID, 80, model.JobStatusGenerating, "Finalizing script...")

	job, err = w.jobService.CompleteScript(ctx, jobID, script)
	if err != nil {
		w.failJob(ctx, jobID, "Failed to store generated script")
		return err
	}

	w.hub.BroadcastStage(jobID, job.Stage.String(), job.Status)
	w.hub.BroadcastComplete(jobID, model.ScriptResponse{JobID: jobID, Script: script})

	log.Printf("Script for job %s generated (%d bytes)", jobID, len(script))
	return nil
}

func (w *ScriptWorker) failJob(ctx context.Context, jobID, errMsg string) {
	if _, err := w.jobService.FailScript(ctx, jobID, errMsg); err != nil {
		log.Printf("Failed to mark job as failed: %v", err)
	}
	w.hub.BroadcastError(jobID, "SCRIPT_FAILED", errMsg)
}
