package usecase

import (
	"context"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"
	"logsync-service/pkg/logger"
	"logsync-service/pkg/utils"
)

// LegacyBatchHandler materializes whole-flight records from devices that
// still answer the sync RPC with the pre-event payload shape. There is
// no event store or watermark involved; dedupe alone keeps re-runs
// idempotent.
type LegacyBatchHandler struct {
	parser       *utils.RecordParser
	materializer *EntryMaterializer
	logger       logger.Logger
}

// NewLegacyBatchHandler creates a new legacy batch handler
func NewLegacyBatchHandler(parser *utils.RecordParser, materializer *EntryMaterializer, logger logger.Logger) *LegacyBatchHandler {
	return &LegacyBatchHandler{
		parser:       parser,
		materializer: materializer,
		logger:       logger,
	}
}

// CanHandle reports whether the batch carries legacy flight records
func (h *LegacyBatchHandler) CanHandle(batch []entity.RawRecord) bool {
	return len(batch) > 0 && !h.parser.IsEventRecord(batch[0])
}

// Handle materializes every parseable flight record in the batch
func (h *LegacyBatchHandler) Handle(ctx context.Context, repos repository.TxRepos, device *entity.Device, batch []entity.RawRecord) (*BatchResult, error) {
	result := &BatchResult{}

	for _, rec := range batch {
		record, err := h.parser.ParseLegacyFlight(rec)
		if err != nil {
			h.logger.Warn("Skipping malformed flight record",
				"deviceId", device.ID,
				"error", err)
			result.SkippedRecords++
			continue
		}

		entry, err := h.materializer.FromLegacyRecord(device, record)
		if err != nil {
			h.logger.Warn("Skipping flight record",
				"deviceId", device.ID,
				"error", err)
			result.SkippedRecords++
			continue
		}

		inserted, err := h.materializer.Persist(ctx, repos.Entries, entry)
		if err != nil {
			return nil, err
		}
		if inserted {
			result.NewEntries++
		} else {
			result.SkippedRecords++
		}
	}

	return result, nil
}
