package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoiceflow/internal/logger"
	"invoiceflow/internal/services"

	"github.com/hibiken/asynq"
)

// Task type definitions
const (
	TypePasswordResetEmail = "email:password_reset"
)

// Queue names
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// PasswordResetPayload defines the payload for password reset mails
type PasswordResetPayload struct {
	Email    string `json:"email"`
	ResetURL string `json:"reset_url"`
}

// NewPasswordResetTask creates a new password reset mail task
func NewPasswordResetTask(email, resetURL string) (*asynq.Task, error) {
	data, err := json.Marshal(PasswordResetPayload{Email: email, ResetURL: resetURL})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePasswordResetEmail, data,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
		asynq.Queue(QueueCritical),
	), nil
}

// Enqueuer is the part of *asynq.Client the mail queue needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// MailQueue hands mails to the worker through asynq.
type MailQueue struct {
	client Enqueuer
}

var _ services.MailQueue = (*MailQueue)(nil)

func NewMailQueue(client Enqueuer) *MailQueue {
	return &MailQueue{client: client}
}

// EnqueuePasswordReset queues a reset mail. The reset token lives in the URL,
// so a task is kept only as long as the token is valid.
func (q *MailQueue) EnqueuePasswordReset(ctx context.Context, email, resetURL string) error {
	task, err := NewPasswordResetTask(email, resetURL)
	if err != nil {
		return fmt.Errorf("build password reset task: %w", err)
	}
	info, err := q.client.EnqueueContext(ctx, task, asynq.Retention(time.Hour))
	if err != nil {
		return fmt.Errorf("enqueue password reset: %w", err)
	}
	log := logger.WithComponent("jobs")
	log.Debug().Str("task_id", info.ID).Str("queue", info.Queue).Msg("password reset mail queued")
	return nil
}

// EmailHandlers run mail tasks in the worker.
type EmailHandlers struct {
	notifier services.NotificationService
}

func NewEmailHandlers(notifier services.NotificationService) *EmailHandlers {
	return &EmailHandlers{notifier: notifier}
}

// HandlePasswordReset sends a reset mail. Malformed payloads are not retried.
func (h *EmailHandlers) HandlePasswordReset(ctx context.Context, t *asynq.Task) error {
	var payload PasswordResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal password reset payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Email == "" || payload.ResetURL == "" {
		return fmt.Errorf("password reset payload is incomplete: %w", asynq.SkipRetry)
	}

	log := logger.WithComponent("jobs")
	if err := h.notifier.SendPasswordReset(ctx, payload.Email, payload.ResetURL); err != nil {
		log.Error().Err(err).Str("task", t.Type()).Msg("password reset mail failed")
		return err
	}
	log.Info().Str("task", t.Type()).Msg("password reset mail sent")
	return nil
}

// NewServeMux routes every task type to its handler.
func NewServeMux(email *EmailHandlers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePasswordResetEmail, email.HandlePasswordReset)
	return mux
}

// WorkerConfig returns the asynq server settings used by the worker command.
func WorkerConfig(concurrency int) asynq.Config {
	if concurrency <= 0 {
		concurrency = 5
	}
	log := logger.WithComponent("worker")
	return asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("task", task.Type()).Msg("task failed")
		}),
	}
}
