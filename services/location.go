package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const DefaultPingInterval = 300000 * time.Millisecond

// TrackerState is the state of a technician's location pinger.
type TrackerState string

const (
	TrackingIdle   TrackerState = "idle"
	TrackingActive TrackerState = "tracking"
)

const permissionDeniedNotice = "Location permission was denied. Tracking has been stopped."

// Position is one geolocation fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	At        time.Time
}

// Locator samples the current position of a technician. It returns
// ErrPermissionDenied when the device refuses access.
type Locator interface {
	CurrentPosition(ctx context.Context, technicianID uuid.UUID) (Position, error)
}

// Scheduler runs fn every period until the returned cancel is called.
type Scheduler interface {
	Every(period time.Duration, fn func()) (cancel func(), err error)
}

// LocationStore appends location samples.
type LocationStore interface {
	AppendLocation(ctx context.Context, sample *models.TechnicianLocation) error
}

// CronScheduler implements Scheduler on a robfig/cron instance.
type CronScheduler struct {
	cron *cron.Cron
}

func NewCronScheduler() *CronScheduler {
	c := cron.New()
	c.Start()
	return &CronScheduler{cron: c}
}

func (s *CronScheduler) Every(period time.Duration, fn func()) (func(), error) {
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", period), fn)
	if err != nil {
		return nil, err
	}
	return func() { s.cron.Remove(id) }, nil
}

// Stop halts the underlying cron and waits for running jobs.
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// GormLocationStore writes samples to technician_locations.
type GormLocationStore struct {
	DB *gorm.DB
}

func (s GormLocationStore) AppendLocation(ctx context.Context, sample *models.TechnicianLocation) error {
	return s.DB.WithContext(ctx).Create(sample).Error
}

// Pinger samples one technician's location on a fixed period while
// tracking. It moves Idle -> Tracking on Start and back on Stop, or on its
// own when the locator reports a permission denial.
type Pinger struct {
	companyID    uuid.UUID
	technicianID uuid.UUID
	locator      Locator
	scheduler    Scheduler
	store        LocationStore
	period       time.Duration
	timeout      time.Duration

	mu         sync.Mutex
	state      TrackerState
	cancel     func()
	generation int
	notice     string
}

func NewPinger(companyID, technicianID uuid.UUID, locator Locator, scheduler Scheduler, store LocationStore, period time.Duration) *Pinger {
	if period <= 0 {
		period = DefaultPingInterval
	}
	return &Pinger{
		companyID:    companyID,
		technicianID: technicianID,
		locator:      locator,
		scheduler:    scheduler,
		store:        store,
		period:       period,
		timeout:      15 * time.Second,
		state:        TrackingIdle,
	}
}

// Start begins tracking: one immediate sample, then one per period. It is a
// no-op while already tracking.
func (p *Pinger) Start() error {
	p.mu.Lock()
	if p.state == TrackingActive {
		p.mu.Unlock()
		return nil
	}
	p.state = TrackingActive
	p.notice = ""
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	p.sample()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != TrackingActive || p.generation != gen {
		// stopped while taking the first sample
		return nil
	}
	cancel, err := p.scheduler.Every(p.period, p.sample)
	if err != nil {
		p.state = TrackingIdle
		return fmt.Errorf("arm location schedule: %w", err)
	}
	p.cancel = cancel
	return nil
}

// Stop cancels the schedule and returns to Idle. Safe to call repeatedly.
func (p *Pinger) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Pinger) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state = TrackingIdle
	p.generation++
}

func (p *Pinger) State() TrackerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// TakeNotice returns the pending user notice once and clears it.
func (p *Pinger) TakeNotice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.notice
	p.notice = ""
	return n
}

func (p *Pinger) sample() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	pos, err := p.locator.CurrentPosition(ctx, p.technicianID)
	if errors.Is(err, ErrPermissionDenied) {
		log.Printf("[TRACKING] technician %s: permission denied, stopping", p.technicianID)
		p.mu.Lock()
		p.stopLocked()
		p.notice = permissionDeniedNotice
		p.mu.Unlock()
		return
	}
	if err != nil {
		log.Printf("[TRACKING] technician %s: sample failed: %v", p.technicianID, err)
		return
	}

	recorded := pos.At
	if recorded.IsZero() {
		recorded = time.Now()
	}
	sample := &models.TechnicianLocation{
		CompanyID:    p.companyID,
		TechnicianID: p.technicianID,
		Latitude:     pos.Latitude,
		Longitude:    pos.Longitude,
		Accuracy:     pos.Accuracy,
		RecordedAt:   recorded,
	}
	if err := p.store.AppendLocation(ctx, sample); err != nil {
		log.Printf("[TRACKING] technician %s: failed to store sample: %v", p.technicianID, err)
	}
}

type trackerKey struct {
	companyID    uuid.UUID
	technicianID uuid.UUID
}

// TrackingManager owns one Pinger per technician within a company.
type TrackingManager struct {
	locator   Locator
	scheduler Scheduler
	store     LocationStore
	period    time.Duration

	mu      sync.Mutex
	pingers map[trackerKey]*Pinger
}

func NewTrackingManager(locator Locator, scheduler Scheduler, store LocationStore, period time.Duration) *TrackingManager {
	return &TrackingManager{
		locator:   locator,
		scheduler: scheduler,
		store:     store,
		period:    period,
		pingers:   make(map[trackerKey]*Pinger),
	}
}

func (m *TrackingManager) pinger(companyID, technicianID uuid.UUID) *Pinger {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := trackerKey{companyID, technicianID}
	p, ok := m.pingers[key]
	if !ok {
		p = NewPinger(companyID, technicianID, m.locator, m.scheduler, m.store, m.period)
		m.pingers[key] = p
	}
	return p
}

// Start begins tracking technicianID and reports the resulting state.
func (m *TrackingManager) Start(companyID, technicianID uuid.UUID) (TrackerState, error) {
	p := m.pinger(companyID, technicianID)
	err := p.Start()
	return p.State(), err
}

func (m *TrackingManager) Stop(companyID, technicianID uuid.UUID) {
	m.mu.Lock()
	p, ok := m.pingers[trackerKey{companyID, technicianID}]
	m.mu.Unlock()
	if ok {
		p.Stop()
	}
}

// Status returns the tracking state and any pending one-time notice.
func (m *TrackingManager) Status(companyID, technicianID uuid.UUID) (TrackerState, string) {
	m.mu.Lock()
	p, ok := m.pingers[trackerKey{companyID, technicianID}]
	m.mu.Unlock()
	if !ok {
		return TrackingIdle, ""
	}
	return p.State(), p.TakeNotice()
}

// StopAll stops every pinger. Called on shutdown so no schedule outlives the
// server.
func (m *TrackingManager) StopAll() {
	m.mu.Lock()
	pingers := make([]*Pinger, 0, len(m.pingers))
	for _, p := range m.pingers {
		pingers = append(pingers, p)
	}
	m.mu.Unlock()

	for _, p := range pingers {
		p.Stop()
	}
}

type deviceReport struct {
	position Position
	denied   bool
}

// DeviceLocator serves the latest position each technician's device pushed.
// Reports older than maxAge count as unavailable.
type DeviceLocator struct {
	maxAge time.Duration
	now    func() time.Time

	mu      sync.Mutex
	reports map[uuid.UUID]deviceReport
}

func NewDeviceLocator(maxAge time.Duration) *DeviceLocator {
	return &DeviceLocator{maxAge: maxAge, now: time.Now, reports: make(map[uuid.UUID]deviceReport)}
}

// Report stores a fresh fix and clears any earlier denial.
func (l *DeviceLocator) Report(technicianID uuid.UUID, pos Position) {
	if pos.At.IsZero() {
		pos.At = l.now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reports[technicianID] = deviceReport{position: pos}
}

// ReportDenied records that the device refused location access.
func (l *DeviceLocator) ReportDenied(technicianID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reports[technicianID] = deviceReport{denied: true}
}

func (l *DeviceLocator) CurrentPosition(ctx context.Context, technicianID uuid.UUID) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.reports[technicianID]
	if !ok {
		return Position{}, ErrPositionUnavailable
	}
	if r.denied {
		return Position{}, ErrPermissionDenied
	}
	if l.maxAge > 0 && l.now().Sub(r.position.At) > l.maxAge {
		return Position{}, fmt.Errorf("%w: last report at %s", ErrPositionUnavailable, r.position.At.Format(time.RFC3339))
	}
	return r.position, nil
}
