package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"
	"logsync-service/pkg/logger"
	"logsync-service/pkg/metrics"
)

// SyncProcessor drives the per-device sync pipeline: authenticate,
// fetch, decode, store, reconstruct and materialize, all inside one
// transaction per device per cycle.
type SyncProcessor struct {
	devices   repository.DeviceRepository
	telemetry repository.TelemetryRepository
	uow       repository.UnitOfWork
	reports   repository.SyncReportRepository
	router    BatchRouter
	rebuilder *EventBatchHandler
	metrics   *metrics.Metrics
	logger    logger.Logger
	workers   int

	mu       sync.Mutex
	inFlight map[uint]bool
}

// NewSyncProcessor creates a new sync processor
func NewSyncProcessor(
	devices repository.DeviceRepository,
	telemetry repository.TelemetryRepository,
	uow repository.UnitOfWork,
	reports repository.SyncReportRepository,
	router BatchRouter,
	rebuilder *EventBatchHandler,
	metrics *metrics.Metrics,
	logger logger.Logger,
	workers int,
) *SyncProcessor {
	if workers < 1 {
		workers = 1
	}
	return &SyncProcessor{
		devices:   devices,
		telemetry: telemetry,
		uow:       uow,
		reports:   reports,
		router:    router,
		rebuilder: rebuilder,
		metrics:   metrics,
		logger:    logger,
		workers:   workers,
		inFlight:  make(map[uint]bool),
	}
}

// SyncAll runs one sync cycle across all syncable devices with bounded
// concurrency. One device's failure never touches another's pipeline.
func (p *SyncProcessor) SyncAll(ctx context.Context) (*entity.SyncReport, error) {
	report := &entity.SyncReport{StartedAt: time.Now().UTC()}

	devices, err := p.devices.FindSyncable(ctx)
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("list_devices").Inc()
		p.logger.Error("Failed to list syncable devices", "error", err)
		return nil, err
	}
	report.TotalDevices = len(devices)

	var (
		wg       sync.WaitGroup
		reportMu sync.Mutex
	)
	sem := make(chan struct{}, p.workers)

	for _, device := range devices {
		// Cancellation is honored between devices, never mid-transaction.
		if ctx.Err() != nil {
			p.logger.Warn("Sync cycle cancelled", "remaining", report.TotalDevices-len(report.Devices))
			break
		}

		if !p.tryAcquire(device.ID) {
			p.logger.Warn("Previous sync still running, skipping device",
				"deviceId", device.ID)
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(device *entity.Device) {
			defer wg.Done()
			defer func() { <-sem }()
			defer p.release(device.ID)

			result := p.SyncDevice(ctx, device)

			reportMu.Lock()
			report.Add(result)
			reportMu.Unlock()
		}(device)
	}

	wg.Wait()
	report.FinishedAt = time.Now().UTC()

	if err := p.reports.Save(ctx, report); err != nil {
		p.logger.Error("Failed to archive sync report", "error", err)
	}

	p.logger.Info("Sync cycle completed",
		"syncedDevices", report.SyncedDevices,
		"totalDevices", report.TotalDevices,
		"newEvents", report.NewEvents,
		"newEntries", report.NewEntries,
		"errors", len(report.Errors))

	return report, nil
}

// SyncDevice runs the fetch-decode-store-reconstruct pipeline for one
// device. All persistence happens in a single transaction; any failure
// rolls the device back to its pre-cycle state.
func (p *SyncProcessor) SyncDevice(ctx context.Context, device *entity.Device) *entity.DeviceSyncResult {
	started := time.Now()
	result := &entity.DeviceSyncResult{
		DeviceID:         device.ID,
		ExternalDeviceID: device.ExternalDeviceID,
	}

	batch, err := p.fetchWithRetry(ctx, device)
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("fetch").Inc()
		p.logger.Error("Failed to fetch events",
			"deviceId", device.ID,
			"externalDeviceId", device.ExternalDeviceID,
			"error", err)
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.FetchedRecords = len(batch)
	result.RawRecords = batch

	if len(batch) == 0 {
		p.logger.Info("No records returned for device", "deviceId", device.ID)
		p.metrics.DevicesSynced.Inc()
		return result
	}

	handler := p.router.GetHandler(batch)
	if handler == nil {
		p.metrics.ErrorsCount.WithLabelValues("route").Inc()
		result.Errors = append(result.Errors, "no handler for payload shape")
		return result
	}

	err = p.uow.WithinTransaction(ctx, func(repos repository.TxRepos) error {
		batchResult, err := handler.Handle(ctx, repos, device, batch)
		if err != nil {
			return err
		}
		result.NewEvents = batchResult.NewEvents
		result.SkippedRecords = batchResult.SkippedRecords
		result.NewEntries = batchResult.NewEntries
		return nil
	})
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("persist").Inc()
		p.logger.Error("Device sync rolled back",
			"deviceId", device.ID,
			"error", err)
		result.Errors = append(result.Errors, err.Error())
		result.NewEvents = 0
		result.SkippedRecords = 0
		result.NewEntries = 0
		return result
	}

	p.metrics.DevicesSynced.Inc()
	p.metrics.EventsStored.Add(float64(result.NewEvents))
	p.metrics.EntriesCreated.Add(float64(result.NewEntries))
	p.metrics.RecordsSkipped.Add(float64(result.SkippedRecords))
	p.metrics.SyncDuration.Observe(time.Since(started).Seconds())

	p.logger.Info("Device synced",
		"deviceId", device.ID,
		"fetched", result.FetchedRecords,
		"newEvents", result.NewEvents,
		"newEntries", result.NewEntries)

	return result
}

// ForceRebuild reruns segment reconstruction over the device's complete
// event history. Administrative entry point; the incremental path and
// this one share the same state machine.
func (p *SyncProcessor) ForceRebuild(ctx context.Context, deviceID uint) (int, error) {
	device, err := p.devices.FindByID(ctx, deviceID)
	if err != nil {
		return 0, err
	}

	if !p.tryAcquire(device.ID) {
		return 0, errors.New("a sync for this device is already running")
	}
	defer p.release(device.ID)

	created := 0
	err = p.uow.WithinTransaction(ctx, func(repos repository.TxRepos) error {
		created, err = p.rebuilder.Rebuild(ctx, repos, device)
		return err
	})
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("rebuild").Inc()
		return 0, err
	}

	p.metrics.EntriesCreated.Add(float64(created))
	p.logger.Info("Force rebuild completed",
		"deviceId", device.ID,
		"newEntries", created)
	return created, nil
}

// fetchWithRetry authenticates and fetches, re-authenticating exactly
// once when the gateway reports an expired token. A second failure
// aborts this device for the current cycle.
func (p *SyncProcessor) fetchWithRetry(ctx context.Context, device *entity.Device) ([]entity.RawRecord, error) {
	token, err := p.telemetry.Authenticate(ctx, device)
	if err != nil {
		p.metrics.ErrorsCount.WithLabelValues("auth").Inc()
		return nil, err
	}

	batch, err := p.telemetry.FetchEvents(ctx, device, token)
	if errors.Is(err, entity.ErrAuthExpired) {
		p.logger.Warn("Gateway token expired, re-authenticating",
			"deviceId", device.ID)
		token, err = p.telemetry.Refresh(ctx, device)
		if err != nil {
			p.metrics.ErrorsCount.WithLabelValues("auth").Inc()
			return nil, err
		}
		batch, err = p.telemetry.FetchEvents(ctx, device, token)
	}
	return batch, err
}

// tryAcquire marks the device as in flight unless a run is in progress
func (p *SyncProcessor) tryAcquire(deviceID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight[deviceID] {
		return false
	}
	p.inFlight[deviceID] = true
	return true
}

func (p *SyncProcessor) release(deviceID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, deviceID)
}
