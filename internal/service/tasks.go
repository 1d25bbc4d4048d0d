package service

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/templateflow/api/internal/model"
)

// TaskEnqueuer dispatches background tasks. Satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Task types handled by the worker mux
const (
	TaskTypePreview = "preview:generate"
	TaskTypeScript  = "script:generate"
)

// Queue names
const (
	QueuePreview = "preview"
	QueueScript  = "script"
)

func newPreviewTask(jobID string) *asynq.Task {
	payload, _ := json.Marshal(model.PreviewJobPayload{JobID: jobID})
	return asynq.NewTask(TaskTypePreview, payload)
}

func newScriptTask(jobID string) *asynq.Task {
	payload, _ := json.Marshal(model.ScriptJobPayload{JobID: jobID})
	return asynq.NewTask(TaskTypeScript, payload)
}
