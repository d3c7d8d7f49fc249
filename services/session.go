package services

import (
	"sync"
	"time"

	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JobSession is the edit state of one user: the job they have open, its
// running timer and the parts they have marked as used.
type JobSession struct {
	UserID      uuid.UUID
	CompanyID   uuid.UUID
	Job         *models.WorkOrder
	ActiveTimer *models.TimeEntry
	Parts       *PartsUsage
	OpenedAt    time.Time
}

// Open selects job. Opening a different job discards the previous parts
// usage; reopening the same job keeps it against fresh stock levels.
func (s *JobSession) Open(job *models.WorkOrder, timer *models.TimeEntry, stock []models.InventoryItem, now time.Time) {
	if s.Job == nil || s.Job.ID != job.ID || s.Parts == nil {
		s.Parts = NewPartsUsage(stock)
		s.OpenedAt = now
	} else {
		s.Parts.Refresh(stock)
	}
	s.Job = job
	s.ActiveTimer = timer
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	JobID         uuid.UUID         `json:"jobId"`
	JobTitle      string            `json:"jobTitle"`
	OpenedAt      time.Time         `json:"openedAt"`
	ActiveTimer   *models.TimeEntry `json:"activeTimer"`
	Elapsed       string            `json:"elapsed,omitempty"`
	Stock         []PartStock       `json:"stock"`
	PartsUsed     []PartLine        `json:"partsUsed"`
	PartsSubtotal decimal.Decimal   `json:"partsSubtotal"`
	Tracking      TrackerState      `json:"tracking"`
}

// SessionStore keeps one JobSession per user.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*JobSession
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]*JobSession), now: time.Now}
}

// Open records that userID opened job.
func (st *SessionStore) Open(userID, companyID uuid.UUID, job *models.WorkOrder, timer *models.TimeEntry, stock []models.InventoryItem) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[userID]
	if !ok {
		s = &JobSession{UserID: userID, CompanyID: companyID}
		st.sessions[userID] = s
	}
	s.Open(job, timer, stock, st.now())
}

// SetQuantityUsed updates the parts usage of the open job. known is false
// when the item was not in stock at open time.
func (st *SessionStore) SetQuantityUsed(userID, jobID, itemID uuid.UUID, qty int) (stored int, known bool, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[userID]
	if !ok || s.Job == nil || s.Job.ID != jobID {
		return 0, false, ErrNoSession
	}
	stored, known = s.Parts.SetQuantityUsed(itemID, qty)
	return stored, known, nil
}

// Usage returns the parts used on jobID, or nil when the job is not open.
func (st *SessionStore) Usage(userID, jobID uuid.UUID) map[uuid.UUID]int {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[userID]
	if !ok || s.Job == nil || s.Job.ID != jobID {
		return nil
	}
	return s.Parts.Used()
}

// PartLines returns the consumed parts of jobID with prices.
func (st *SessionStore) PartLines(userID, jobID uuid.UUID) []PartLine {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[userID]
	if !ok || s.Job == nil || s.Job.ID != jobID {
		return nil
	}
	return s.Parts.Lines()
}

// ClearParts empties the usage after it has been flushed to inventory.
func (st *SessionStore) ClearParts(userID, jobID uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[userID]; ok && s.Job != nil && s.Job.ID == jobID {
		s.Parts.Reset()
	}
}

// SetTimer records the running timer (nil once stopped) for the open job.
func (st *SessionStore) SetTimer(userID, jobID uuid.UUID, timer *models.TimeEntry) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[userID]; ok && s.Job != nil && s.Job.ID == jobID {
		s.ActiveTimer = timer
	}
}

// View renders the session of userID.
func (st *SessionStore) View(userID uuid.UUID, tracking TrackerState) (SessionView, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[userID]
	if !ok || s.Job == nil {
		return SessionView{}, false
	}
	view := SessionView{
		JobID:         s.Job.ID,
		JobTitle:      s.Job.Title,
		OpenedAt:      s.OpenedAt,
		ActiveTimer:   s.ActiveTimer,
		Stock:         s.Parts.Stock(),
		PartsUsed:     s.Parts.Lines(),
		PartsSubtotal: s.Parts.Subtotal(),
		Tracking:      tracking,
	}
	if s.ActiveTimer != nil {
		view.Elapsed = FormatElapsed(Elapsed(s.ActiveTimer.StartTime, st.now()))
	}
	return view, true
}

// Close drops the session of userID.
func (st *SessionStore) Close(userID uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}
