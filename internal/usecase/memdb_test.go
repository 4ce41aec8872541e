package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"
)

// memStore is the in-memory database backing the pipeline tests. All
// repositories share it so the tests observe the same state the
// pipeline does.
type memStore struct {
	mu      sync.Mutex
	devices map[uint]*entity.Device
	events  map[uint][]*entity.Event
	entries []*entity.LogbookEntry
	nextID  uint
}

func newMemStore(devices ...*entity.Device) *memStore {
	s := &memStore{
		devices: make(map[uint]*entity.Device),
		events:  make(map[uint][]*entity.Event),
	}
	for _, d := range devices {
		s.devices[d.ID] = d
	}
	return s
}

func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := &memStore{
		devices: make(map[uint]*entity.Device, len(s.devices)),
		events:  make(map[uint][]*entity.Event, len(s.events)),
		entries: append([]*entity.LogbookEntry(nil), s.entries...),
		nextID:  s.nextID,
	}
	for id, d := range s.devices {
		copied := *d
		clone.devices[id] = &copied
	}
	for id, evts := range s.events {
		clone.events[id] = append([]*entity.Event(nil), evts...)
	}
	return clone
}

func (s *memStore) restore(snap *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = snap.devices
	s.events = snap.events
	s.entries = snap.entries
	s.nextID = snap.nextID
}

func (s *memStore) repos() repository.TxRepos {
	return repository.TxRepos{
		Devices: &memDeviceRepo{store: s},
		Events:  &memEventRepo{store: s},
		Entries: &memLogbookRepo{store: s},
	}
}

type memDeviceRepo struct {
	store *memStore
}

func (r *memDeviceRepo) FindByID(ctx context.Context, id uint) (*entity.Device, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.devices[id]
	if !ok {
		return nil, errors.New("device not found")
	}
	copied := *d
	return &copied, nil
}

func (r *memDeviceRepo) FindSyncable(ctx context.Context) ([]*entity.Device, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.Device
	for _, d := range r.store.devices {
		if d.Syncable() {
			copied := *d
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memDeviceRepo) UpdateWatermark(ctx context.Context, deviceID uint, pageAddress int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if d, ok := r.store.devices[deviceID]; ok {
		d.LastPageAddress = &pageAddress
	}
	return nil
}

type memEventRepo struct {
	store *memStore
}

func (r *memEventRepo) InsertIfNew(ctx context.Context, event *entity.Event) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.events[event.DeviceID] {
		if existing.PageAddress == event.PageAddress {
			return false, nil
		}
	}

	r.store.nextID++
	copied := *event
	copied.ID = r.store.nextID
	evts := append(r.store.events[event.DeviceID], &copied)
	sort.Slice(evts, func(i, j int) bool { return evts[i].PageAddress < evts[j].PageAddress })
	r.store.events[event.DeviceID] = evts
	return true, nil
}

func (r *memEventRepo) NewestForDevice(ctx context.Context, deviceID uint) (*entity.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	evts := r.store.events[deviceID]
	if len(evts) == 0 {
		return nil, nil
	}
	copied := *evts[len(evts)-1]
	return &copied, nil
}

func (r *memEventRepo) RecentForDevice(ctx context.Context, deviceID uint, limit int) ([]*entity.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	evts := r.store.events[deviceID]
	if len(evts) > limit {
		evts = evts[len(evts)-limit:]
	}
	return append([]*entity.Event(nil), evts...), nil
}

func (r *memEventRepo) AllForDevice(ctx context.Context, deviceID uint) ([]*entity.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]*entity.Event(nil), r.store.events[deviceID]...), nil
}

type memLogbookRepo struct {
	store *memStore
}

func (r *memLogbookRepo) ExistsForFlight(ctx context.Context, deviceID uint, takeoffAt, landingAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.entries {
		if e.DeviceID != nil && *e.DeviceID == deviceID &&
			e.TakeoffAt.Equal(takeoffAt) && e.LandingAt.Equal(landingAt) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLogbookRepo) Insert(ctx context.Context, entry *entity.LogbookEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextID++
	copied := *entry
	copied.ID = r.store.nextID
	r.store.entries = append(r.store.entries, &copied)
	return nil
}

// memUnitOfWork runs fn against the shared store, restoring the
// pre-transaction snapshot on error like a database rollback would.
type memUnitOfWork struct {
	store *memStore
}

func (u *memUnitOfWork) WithinTransaction(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	snap := u.store.snapshot()
	if err := fn(u.store.repos()); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}

// memReportRepo collects archived sync reports.
type memReportRepo struct {
	mu      sync.Mutex
	reports []*entity.SyncReport
}

func (r *memReportRepo) Save(ctx context.Context, report *entity.SyncReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

func (r *memReportRepo) FindLatest(ctx context.Context) (*entity.SyncReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reports) == 0 {
		return nil, nil
	}
	return r.reports[len(r.reports)-1], nil
}
