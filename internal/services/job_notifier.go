package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/logger"
	"github.com/MacMoment/coding/internal/realtime"
	"github.com/MacMoment/coding/internal/realtime/bus"
)

type JobNotifier interface {
	JobCreated(userID uuid.UUID, job *types.JobRun)
	JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string)
	JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string)
	JobDone(userID uuid.UUID, job *types.JobRun)
	GenerationUpdated(job *types.GenerationJob)
}

type jobNotifier struct {
	log *logger.Logger
	bus bus.Bus
}

// NewJobNotifier publishes job events on b. A nil bus drops every event.
func NewJobNotifier(baseLog *logger.Logger, b bus.Bus) JobNotifier {
	return &jobNotifier{log: baseLog.With("service", "JobNotifier"), bus: b}
}

func (n *jobNotifier) publish(msg realtime.Message) {
	if n.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.bus.Publish(ctx, msg); err != nil {
		n.log.Warn("publish realtime event failed", "event", msg.Event, "error", err)
	}
}

func (n *jobNotifier) JobCreated(userID uuid.UUID, job *types.JobRun) {
	n.publish(realtime.Message{
		Channel: userID.String(),
		Event:   realtime.EventJobCreated,
		Data:    map[string]any{"job": job},
	})
}

func (n *jobNotifier) JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string) {
	n.publish(realtime.Message{
		Channel: userID.String(),
		Event:   realtime.EventJobProgress,
		Data: map[string]any{
			"job_id":   job.ID,
			"job_type": job.JobType,
			"stage":    stage,
			"progress": progress,
			"message":  message,
		},
	})
}

func (n *jobNotifier) JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string) {
	n.publish(realtime.Message{
		Channel: userID.String(),
		Event:   realtime.EventJobFailed,
		Data: map[string]any{
			"job_id":   job.ID,
			"job_type": job.JobType,
			"stage":    stage,
			"error":    errorMessage,
		},
	})
}

func (n *jobNotifier) JobDone(userID uuid.UUID, job *types.JobRun) {
	n.publish(realtime.Message{
		Channel: userID.String(),
		Event:   realtime.EventJobDone,
		Data: map[string]any{
			"job_id":   job.ID,
			"job_type": job.JobType,
		},
	})
}

func (n *jobNotifier) GenerationUpdated(job *types.GenerationJob) {
	if job == nil {
		return
	}
	var event realtime.EventType
	switch job.Status {
	case types.GenerationProcessing:
		event = realtime.EventGenerationProcessing
	case types.GenerationCompleted:
		event = realtime.EventGenerationCompleted
	case types.GenerationFailed:
		event = realtime.EventGenerationFailed
	default:
		return
	}
	data := map[string]any{
		"jobId":     job.ID,
		"projectId": job.ProjectID,
		"status":    job.Status,
	}
	if job.Error != nil {
		data["error"] = *job.Error
	}
	if job.TokensUsed != nil {
		data["tokensUsed"] = *job.TokensUsed
	}
	n.publish(realtime.Message{Channel: job.UserID.String(), Event: event, Data: data})
}
