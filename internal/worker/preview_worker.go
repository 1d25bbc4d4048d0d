package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/templateflow/api/internal/model"
	"github.com/templateflow/api/internal/service"
	"github.com/templateflow/api/internal/websocket"
)

// PreviewWorker produces the preview artifact reference a job needs
// before it can leave preview_approval. Actual rendering belongs to the
// render collaborator; this worker stands in for it and registers the
// artifact it would produce.
type PreviewWorker struct {
	jobService *service.JobService
	hub        *websocket.Hub
}

func NewPreviewWorker(jobService *service.JobService, hub *websocket.Hub) *PreviewWorker {
	return &PreviewWorker{
		jobService: jobService,
		hub:        hub,
	}
}

// ProcessTask handles preview task processing
func (w *PreviewWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.PreviewJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal preview payload: %w", err)
	}

	jobID := payload.JobID
	log.Printf("Generating preview for job: %s", jobID)

	steps := []struct {
		progress int
		step     string
	}{
		{25, "Staging matched content..."},
		{60, "Rendering preview frames..."},
		{90, "Encoding preview..."},
	}

	for _, step := range steps {
		select {
		case <-ctx.Done():
			log.Printf("Preview task for job %s cancelled", jobID)
			return ctx.Err()
		default:
		}

		w.hub.BroadcastProgress(jobID, step.progress, model.JobStatusAwaitingPreview, step.step)
		time.Sleep(200 * time.Millisecond)
	}

	ref := fmt.Sprintf("previews/%s.mp4", jobID)
	job, err := w.jobService.SetPreviewRef(ctx, jobID, ref)
	if err != nil {
		w.hub.BroadcastError(jobID, "PREVIEW_FAILED", err.Error())
		return err
	}

	w.hub.BroadcastStage(jobID, job.Stage.String(), job.Status)
	log.Printf("Preview for job %s ready: %s", jobID, ref)
	return nil
}
