package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogScheduler stands in for the external calendaring system. The caller
// treats a failed dispatch as a warning, not a rollback, so this can stay a
// thin fire-and-forget adapter.
type LogScheduler struct {
	logger *zap.Logger
}

func NewLogScheduler(logger *zap.Logger) *LogScheduler {
	return &LogScheduler{logger: logger}
}

func (s *LogScheduler) Schedule(_ context.Context, applicationID uuid.UUID, date time.Time, location string) error {
	if s.logger != nil {
		s.logger.Info("interview scheduled",
			zap.String("application_id", applicationID.String()),
			zap.Time("date", date),
			zap.String("location", location),
		)
	}
	return nil
}
