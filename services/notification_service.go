// services/notification_service.go
package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type messageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// NotificationService texts every technician the jobs scheduled for them
// today.
type NotificationService struct {
	db     *gorm.DB
	sender messageSender
	from   string
	now    func() time.Time
}

func NewNotificationService(db *gorm.DB, accountSid, authToken, from string) *NotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return &NotificationService{
		db:     db,
		sender: client.Api,
		from:   from,
		now:    time.Now,
	}
}

// StartScheduler runs SendDailyDigests on spec (standard cron syntax).
func (s *NotificationService) StartScheduler(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, s.SendDailyDigests); err != nil {
		return nil, fmt.Errorf("schedule daily digest: %w", err)
	}
	c.Start()
	log.Printf("[DIGEST] scheduler started (%s)", spec)
	return c, nil
}

func (s *NotificationService) SendDailyDigests() {
	log.Println("[DIGEST] Starting daily digest processing...")

	var companies []models.Company
	if err := s.db.Find(&companies).Error; err != nil {
		log.Printf("[DIGEST] Failed to fetch companies: %v", err)
		return
	}

	for _, company := range companies {
		if !company.SettingBool("digest_enabled", true) {
			continue
		}
		s.ProcessCompanyDigests(company.ID)
	}

	log.Println("[DIGEST] Daily digest processing completed")
}

// ProcessCompanyDigests sends one message per technician of companyID that
// has open work scheduled today and returns how many were attempted.
func (s *NotificationService) ProcessCompanyDigests(companyID uuid.UUID) int {
	var technicians []models.User
	if err := s.db.Where("company_id = ? AND role = ? AND is_active = ?", companyID, models.RoleTechnician, true).
		Find(&technicians).Error; err != nil {
		log.Printf("[DIGEST] Company %s: Failed to fetch technicians: %v", companyID, err)
		return 0
	}

	now := s.now()
	dayStart, dayEnd := utils.BeginningOfDay(now), utils.EndOfDay(now)

	attempted := 0
	for _, tech := range technicians {
		if tech.Phone == "" {
			continue
		}
		var jobs []models.WorkOrder
		if err := s.db.Preload("Customer").
			Where("company_id = ? AND assigned_to_user_id = ? AND scheduled_date BETWEEN ? AND ? AND status NOT IN ?",
				companyID, tech.ID, dayStart, dayEnd, []string{models.StatusCompleted, models.StatusCancelled}).
			Order("scheduled_date ASC").
			Find(&jobs).Error; err != nil {
			log.Printf("[DIGEST] Company %s: Failed to fetch jobs for %s: %v", companyID, tech.ID, err)
			continue
		}
		if len(jobs) == 0 {
			continue
		}
		s.send(companyID, tech, BuildDigestMessage(tech.Name, jobs))
		attempted++
	}
	return attempted
}

func (s *NotificationService) send(companyID uuid.UUID, tech models.User, message string) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(tech.Phone)
	params.SetFrom(s.from)
	params.SetBody(message)

	resp, err := s.sender.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("[DIGEST] Failed to send message to %s: %v", tech.Phone, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp != nil && resp.Sid != nil {
		log.Printf("[DIGEST] Message sent to %s, SID: %s", tech.Phone, *resp.Sid)
	}

	entry := models.NotificationLog{
		CompanyID:    companyID,
		UserID:       tech.ID,
		Type:         "daily_digest",
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      "sms",
		SentAt:       s.now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("[DIGEST] Failed to log notification for %s: %v", tech.ID, err)
	}
}

// BuildDigestMessage renders the SMS body listing jobs.
func BuildDigestMessage(name string, jobs []models.WorkOrder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, you have %d job(s) today:", name, len(jobs))
	for _, job := range jobs {
		b.WriteString("\n- ")
		if job.ScheduledDate != nil {
			b.WriteString(job.ScheduledDate.Format("15:04"))
			b.WriteString(" ")
		}
		b.WriteString(job.Title)
		if job.Customer.Name != "" {
			b.WriteString(" @ ")
			b.WriteString(job.Customer.Name)
		}
		if job.Priority == models.PriorityUrgent {
			b.WriteString(" [URGENT]")
		}
	}
	return b.String()
}
