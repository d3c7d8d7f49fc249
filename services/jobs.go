package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldpro-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobService loads work orders and applies technician updates to them.
type JobService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{db: db, now: time.Now}
}

// LoadAssignedJobs lists the work orders assigned to userID with their
// customer and project.
func (s *JobService) LoadAssignedJobs(ctx context.Context, companyID, userID uuid.UUID, status string) ([]models.WorkOrder, error) {
	q := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Project").
		Where("company_id = ? AND assigned_to_user_id = ?", companyID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var jobs []models.WorkOrder
	err := q.Order("scheduled_date ASC").Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// LoadJob fetches one work order with its time entries and photos.
func (s *JobService) LoadJob(ctx context.Context, companyID, jobID uuid.UUID) (*models.WorkOrder, error) {
	var job models.WorkOrder
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Project").
		Preload("TimeEntries", func(db *gorm.DB) *gorm.DB { return db.Order("start_time ASC") }).
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("taken_at ASC") }).
		Where("company_id = ? AND id = ?", companyID, jobID).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob inserts a work order. Status and priority default to open and
// medium.
func (s *JobService) CreateJob(ctx context.Context, job *models.WorkOrder) error {
	if job.Status == "" {
		job.Status = models.StatusOpen
	}
	if job.Priority == "" {
		job.Priority = models.PriorityMedium
	}
	if job.Status == models.StatusCompleted && job.CompletedDate == nil {
		now := s.now()
		job.CompletedDate = &now
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(job).Error
}

// StatusUpdate is what a technician submits when saving a job.
type StatusUpdate struct {
	Status      string
	ActualHours float64
	Notes       string
	PartsUsed   map[uuid.UUID]int
}

// UpdateJobStatus consumes the parts used and writes status, hours and
// notes. Both happen in one transaction; completed_date is stamped when the
// job becomes completed.
func (s *JobService) UpdateJobStatus(ctx context.Context, job *models.WorkOrder, update StatusUpdate) error {
	if !models.ValidStatus(update.Status) {
		return fmt.Errorf("invalid status %q", update.Status)
	}
	if update.ActualHours < 0 {
		return ErrNegativeAmount
	}

	fields := map[string]interface{}{
		"status":       update.Status,
		"actual_hours": update.ActualHours,
		"notes":        update.Notes,
	}
	var completedAt *time.Time
	if update.Status == models.StatusCompleted {
		now := s.now()
		completedAt = &now
		fields["completed_date"] = now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := DecrementInventory(tx, job.CompanyID, update.PartsUsed); err != nil {
			return err
		}
		res := tx.Model(&models.WorkOrder{}).
			Where("company_id = ? AND id = ?", job.CompanyID, job.ID).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrJobNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	job.Status = update.Status
	job.ActualHours = update.ActualHours
	job.Notes = update.Notes
	if completedAt != nil {
		job.CompletedDate = completedAt
	}
	return nil
}

// Stock lists the company's inventory for the parts picker.
func (s *JobService) Stock(ctx context.Context, companyID uuid.UUID) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// AddPhoto appends a captioned photo reference to a job.
func (s *JobService) AddPhoto(ctx context.Context, job *models.WorkOrder, userID uuid.UUID, url, caption string, takenAt *time.Time) (*models.WorkOrderPhoto, error) {
	photo := &models.WorkOrderPhoto{
		CompanyID:        job.CompanyID,
		WorkOrderID:      job.ID,
		UploadedByUserID: userID,
		PhotoURL:         url,
		Caption:          caption,
		TakenAt:          s.now(),
	}
	if takenAt != nil {
		photo.TakenAt = *takenAt
	}
	if err := s.db.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, err
	}
	return photo, nil
}

// Photos lists a job's photo log in the order it was captured.
func (s *JobService) Photos(ctx context.Context, companyID, jobID uuid.UUID) ([]models.WorkOrderPhoto, error) {
	var photos []models.WorkOrderPhoto
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND work_order_id = ?", companyID, jobID).
		Order("taken_at ASC").
		Find(&photos).Error
	return photos, err
}
