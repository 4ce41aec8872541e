package repository

import (
	"context"

	"logsync-service/internal/domain/entity"
)

// SyncReportRepository archives the outcome of sync cycles for
// troubleshooting.
type SyncReportRepository interface {
	Save(ctx context.Context, report *entity.SyncReport) error
	FindLatest(ctx context.Context) (*entity.SyncReport, error)
}
