// Package usage appends one accounting row per external model call.
package usage

import (
	"context"
	"time"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/pkg/logger"
	"project-memory-be/internal/repository/unitofwork"
)

const logModule = "USAGE"

// Recorder writes usage rows outside any caller transaction. Accounting never
// fails the call it describes, so write errors are logged and dropped.
type Recorder struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	timeout    time.Duration
}

func NewRecorder(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) *Recorder {
	return &Recorder{
		uowFactory: uowFactory,
		logger:     logger,
		timeout:    5 * time.Second,
	}
}

func (r *Recorder) Record(ctx context.Context, record *entity.AiUsageRecord) {
	// The model call may have consumed the request deadline; the row still has to land.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	uow := r.uowFactory.NewUnitOfWork(writeCtx)
	if err := uow.AiUsageRepository().Create(writeCtx, record); err != nil {
		r.logger.Error(logModule, "Failed to record ai usage", map[string]interface{}{
			"function":   record.FunctionName,
			"project_id": record.ProjectId.String(),
			"error":      err.Error(),
		})
	}
}
