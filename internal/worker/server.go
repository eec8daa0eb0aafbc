package worker

import (
	"context"
	"errors"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/service"
	"github.com/brainbattle-platform/brainbattle-clan/internal/tasks"
)

// WorkerServer wraps the asynq server lifecycle and the handler registry.
type WorkerServer struct {
	server        *asynq.Server
	log           *logrus.Entry
	notifications *service.NotificationService
}

// NewWorkerServer creates the worker server.
func NewWorkerServer(redisOpt asynq.RedisClientOpt, notifications *service.NotificationService, logger *logrus.Logger) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskID := ""
				if rw := task.ResultWriter(); rw != nil {
					taskID = rw.TaskID()
				}
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_id":   taskID,
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{
		server:        server,
		log:           logEntry,
		notifications: notifications,
	}
}

// Start runs the worker server. Call from its own goroutine.
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()

	sweepHandler := NewNotificationSweepHandler(ws.notifications)
	mux.HandleFunc(tasks.TypeNotificationSweep, sweepHandler.ProcessTask)

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		} else {
			ws.log.Info("Worker server stopped.")
		}
	}
}

// Shutdown gracefully stops the worker server.
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
