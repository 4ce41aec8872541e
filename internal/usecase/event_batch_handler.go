package usecase

import (
	"context"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"
	"logsync-service/pkg/logger"
	"logsync-service/pkg/utils"
)

// EventBatchHandler ingests event-page batches: decode each record,
// append the new events, replay the lookback window through the state
// machine and materialize any completed flights.
type EventBatchHandler struct {
	parser       *utils.RecordParser
	builder      *SegmentBuilder
	materializer *EntryMaterializer
	minLookback  int
	logger       logger.Logger
}

// NewEventBatchHandler creates a new event batch handler
func NewEventBatchHandler(
	parser *utils.RecordParser,
	builder *SegmentBuilder,
	materializer *EntryMaterializer,
	minLookback int,
	logger logger.Logger,
) *EventBatchHandler {
	return &EventBatchHandler{
		parser:       parser,
		builder:      builder,
		materializer: materializer,
		minLookback:  minLookback,
		logger:       logger,
	}
}

// CanHandle reports whether the batch carries event page records
func (h *EventBatchHandler) CanHandle(batch []entity.RawRecord) bool {
	return len(batch) > 0 && h.parser.IsEventRecord(batch[0])
}

// Handle runs the event pipeline for one device inside its transaction
func (h *EventBatchHandler) Handle(ctx context.Context, repos repository.TxRepos, device *entity.Device, batch []entity.RawRecord) (*BatchResult, error) {
	result := &BatchResult{}
	watermark := device.Watermark()

	for _, rec := range batch {
		event, err := h.parser.ParseEvent(rec)
		if err != nil {
			h.logger.Warn("Skipping malformed record",
				"deviceId", device.ID,
				"error", err)
			result.SkippedRecords++
			continue
		}
		event.DeviceID = device.ID

		// Pages at or below the stored watermark were ingested in an
		// earlier cycle. They are skipped here but still reachable
		// through the lookback window below.
		if event.PageAddress <= watermark {
			result.SkippedRecords++
			continue
		}

		inserted, err := repos.Events.InsertIfNew(ctx, event)
		if err != nil {
			return nil, err
		}
		if inserted {
			result.NewEvents++
		} else {
			result.SkippedRecords++
		}
	}

	entries, err := h.replayWindow(ctx, repos, device, windowSize(h.minLookback, result.NewEvents))
	if err != nil {
		return nil, err
	}
	result.NewEntries = entries

	// Advance the watermark to the newest stored page. This is the only
	// place the cursor moves, once per transaction.
	newest, err := repos.Events.NewestForDevice(ctx, device.ID)
	if err != nil {
		return nil, err
	}
	if newest != nil && newest.PageAddress > watermark {
		if err := repos.Devices.UpdateWatermark(ctx, device.ID, newest.PageAddress); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Rebuild reruns reconstruction over the device's complete event history.
// Same state machine as the incremental path, only the window differs.
func (h *EventBatchHandler) Rebuild(ctx context.Context, repos repository.TxRepos, device *entity.Device) (int, error) {
	events, err := repos.Events.AllForDevice(ctx, device.ID)
	if err != nil {
		return 0, err
	}
	return h.materialize(ctx, repos, device, events)
}

// replayWindow loads the most recent window events and materializes the
// completed segments found in it.
func (h *EventBatchHandler) replayWindow(ctx context.Context, repos repository.TxRepos, device *entity.Device, window int) (int, error) {
	events, err := repos.Events.RecentForDevice(ctx, device.ID, window)
	if err != nil {
		return 0, err
	}
	return h.materialize(ctx, repos, device, events)
}

func (h *EventBatchHandler) materialize(ctx context.Context, repos repository.TxRepos, device *entity.Device, events []*entity.Event) (int, error) {
	created := 0
	for _, segment := range h.builder.Replay(events) {
		entry, err := h.materializer.FromSegment(device, segment)
		if err != nil {
			h.logger.Warn("Skipping segment",
				"deviceId", device.ID,
				"error", err)
			continue
		}

		inserted, err := h.materializer.Persist(ctx, repos.Entries, entry)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

// windowSize picks the reprocessing window: at least minLookback events,
// or twice the newly inserted count when that is larger. Doubling keeps
// a takeoff from the previous cycle inside the window when its landing
// arrives in this one.
func windowSize(minLookback, newCount int) int {
	if doubled := 2 * newCount; doubled > minLookback {
		return doubled
	}
	return minLookback
}
