package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/controllers"
	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	token    string
	company  models.Company
	tech     models.User
	customer models.Customer
	job      models.WorkOrder
	item     models.InventoryItem
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	previous := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = previous
		_ = sqlDB.Close()
	})

	s := &testServer{t: t}
	s.company = models.Company{Name: "Acme Plumbing"}
	db.Create(&s.company)
	s.tech = models.User{CompanyID: s.company.ID, Name: "Dana", Email: "dana@example.com", Role: models.RoleTechnician, IsActive: true}
	db.Create(&s.tech)
	s.customer = models.Customer{CompanyID: s.company.ID, CreatedByUserID: s.tech.ID, Name: "Jordan Lee", IsActive: true}
	db.Create(&s.customer)
	techID := s.tech.ID
	scheduled := time.Now().Add(time.Hour)
	s.job = models.WorkOrder{
		CompanyID:        s.company.ID,
		CustomerID:       s.customer.ID,
		AssignedToUserID: &techID,
		Title:            "Replace water heater",
		Status:           models.StatusScheduled,
		Priority:         models.PriorityHigh,
		ScheduledDate:    &scheduled,
	}
	db.Omit("Customer", "Project", "TimeEntries", "Photos").Create(&s.job)
	s.item = models.InventoryItem{CompanyID: s.company.ID, Name: "Anode rod", SKU: "AR-1", Quantity: 4, UnitPrice: 30, ReorderLevel: 1}
	db.Create(&s.item)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	scheduler := services.NewCronScheduler()
	locator := services.NewDeviceLocator(time.Hour)
	tracking := services.NewTrackingManager(locator, scheduler, services.GormLocationStore{DB: db}, time.Hour)
	t.Cleanup(func() {
		tracking.StopAll()
		scheduler.Stop()
	})

	h := &controllers.Handlers{
		Jobs:     services.NewJobService(db),
		Timer:    services.NewTimeTracker(db),
		Sessions: services.NewSessionStore(),
		Invoices: services.NewInvoiceConverter(db, node, 30),
		Tracking: tracking,
		Locator:  locator,
	}
	s.router = SetupRouter(config.Settings{JWTSecret: testSecret, AllowedOrigins: []string{"http://localhost:3000"}}, h)
	s.token = s.tokenFor(s.tech.ID, s.company.ID)
	return s
}

func (s *testServer) tokenFor(userID, companyID uuid.UUID) string {
	token, err := utils.GenerateToken(testSecret, userID.String(), companyID.String(), time.Hour)
	if err != nil {
		s.t.Fatalf("token: %v", err)
	}
	return token
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	return s.doAs(s.token, method, path, body)
}

func (s *testServer) doAs(token, method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestJobWorkflow(t *testing.T) {
	s := newTestServer(t)
	jobPath := "/api/jobs/" + s.job.ID.String()

	rec := s.do(http.MethodGet, "/api/jobs", nil)
	expectStatus(t, rec, http.StatusOK)
	var jobs []models.WorkOrder
	decode(t, rec, &jobs)
	if len(jobs) != 1 || jobs[0].Customer.Name != "Jordan Lee" {
		t.Fatalf("unexpected jobs %+v", jobs)
	}

	expectStatus(t, s.do(http.MethodGet, jobPath+"/session", nil), http.StatusNotFound)
	expectStatus(t, s.do(http.MethodPut, jobPath+"/parts", gin.H{"itemId": s.item.ID, "quantity": 1}), http.StatusConflict)

	rec = s.do(http.MethodPost, jobPath+"/open", nil)
	expectStatus(t, rec, http.StatusOK)
	var view services.SessionView
	decode(t, rec, &view)
	if view.JobID != s.job.ID || len(view.Stock) != 1 || view.Tracking != services.TrackingIdle {
		t.Fatalf("unexpected session %+v", view)
	}

	rec = s.do(http.MethodPut, jobPath+"/parts", gin.H{"itemId": s.item.ID, "quantity": 10})
	expectStatus(t, rec, http.StatusOK)
	var part struct {
		Quantity int  `json:"quantity"`
		Known    bool `json:"known"`
	}
	decode(t, rec, &part)
	if part.Quantity != 4 || !part.Known {
		t.Fatalf("expected clamp to 4, got %+v", part)
	}
	s.do(http.MethodPut, jobPath+"/parts", gin.H{"itemId": s.item.ID, "quantity": 3})

	rec = s.do(http.MethodPost, jobPath+"/timer/start", nil)
	expectStatus(t, rec, http.StatusCreated)
	var entry models.TimeEntry
	decode(t, rec, &entry)
	expectStatus(t, s.do(http.MethodPost, jobPath+"/timer/start", nil), http.StatusConflict)

	rec = s.do(http.MethodGet, jobPath, nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"activeTimer"`) {
		t.Fatalf("expected active timer in job view: %s", rec.Body.String())
	}

	other := s.tokenFor(uuid.New(), s.company.ID)
	expectStatus(t, s.doAs(other, http.MethodPost, "/api/time-entries/"+entry.ID.String()+"/stop", nil), http.StatusForbidden)

	rec = s.do(http.MethodPost, "/api/time-entries/"+entry.ID.String()+"/stop", nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &entry)
	if entry.EndTime == nil || entry.DurationMinutes != 1 {
		t.Fatalf("expected closed one-minute entry, got %+v", entry)
	}
	expectStatus(t, s.do(http.MethodPost, "/api/time-entries/"+entry.ID.String()+"/stop", nil), http.StatusConflict)

	rec = s.do(http.MethodGet, jobPath+"/time-entries", nil)
	expectStatus(t, rec, http.StatusOK)
	var entries struct {
		Entries    []models.TimeEntry `json:"entries"`
		TotalHours float64            `json:"totalHours"`
	}
	decode(t, rec, &entries)
	if len(entries.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries.Entries))
	}

	// invoice before saving so the parts are still in the session
	rec = s.do(http.MethodPost, jobPath+"/invoice", gin.H{
		"laborHours":    8,
		"laborRate":     75,
		"serviceCharge": 50,
		"taxRate":       8.25,
	})
	expectStatus(t, rec, http.StatusCreated)
	var converted struct {
		Invoice models.Invoice `json:"invoice"`
	}
	decode(t, rec, &converted)
	if converted.Invoice.TotalAmount != 703.625 || len(converted.Invoice.Items) != 2 {
		t.Fatalf("unexpected invoice %+v", converted.Invoice)
	}

	rec = s.do(http.MethodPut, jobPath+"/status", gin.H{"status": "completed", "actualHours": 1.5, "notes": "done"})
	expectStatus(t, rec, http.StatusOK)

	var item models.InventoryItem
	config.DB.First(&item, "id = ?", s.item.ID)
	if item.Quantity != 1 {
		t.Fatalf("expected 1 left in stock, got %d", item.Quantity)
	}
	var job models.WorkOrder
	config.DB.First(&job, "id = ?", s.job.ID)
	if job.Status != models.StatusCompleted || job.CompletedDate == nil {
		t.Fatalf("expected completed job, got %+v", job)
	}

	rec = s.do(http.MethodGet, jobPath+"/session", nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &view)
	if len(view.PartsUsed) != 0 {
		t.Fatalf("expected parts cleared after save, got %+v", view.PartsUsed)
	}

	invoicePath := "/api/invoices/" + converted.Invoice.ID.String()
	rec = s.do(http.MethodGet, invoicePath+"/pdf", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("Content-Type") != "application/pdf" || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected a pdf response")
	}

	rec = s.do(http.MethodPut, invoicePath, gin.H{"status": "sent", "taxRate": 10})
	expectStatus(t, rec, http.StatusOK)
	var updated models.Invoice
	decode(t, rec, &updated)
	if updated.TaxAmount != 65 || updated.TotalAmount != 715 {
		t.Fatalf("expected tax recomputed, got %+v", updated)
	}
	expectStatus(t, s.do(http.MethodDelete, invoicePath, nil), http.StatusConflict)
}

func TestInvoiceFallsBackToCompanyRates(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPut, "/api/company", gin.H{"defaultLaborRate": 100, "defaultTaxRate": 5})
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodGet, "/api/company", nil)
	expectStatus(t, rec, http.StatusOK)
	var company struct {
		DefaultLaborRate float64 `json:"defaultLaborRate"`
		DefaultTaxRate   float64 `json:"defaultTaxRate"`
	}
	decode(t, rec, &company)
	if company.DefaultLaborRate != 100 || company.DefaultTaxRate != 5 {
		t.Fatalf("expected saved defaults, got %+v", company)
	}

	rec = s.do(http.MethodPost, "/api/jobs/"+s.job.ID.String()+"/invoice", gin.H{"laborHours": 2})
	expectStatus(t, rec, http.StatusCreated)
	var converted struct {
		Invoice models.Invoice `json:"invoice"`
	}
	decode(t, rec, &converted)
	if converted.Invoice.Subtotal != 200 || converted.Invoice.TotalAmount != 210 {
		t.Fatalf("unexpected invoice %+v", converted.Invoice)
	}
}

func TestTrackingPermissionDenied(t *testing.T) {
	s := newTestServer(t)

	expectStatus(t, s.do(http.MethodPost, "/api/locations/report", gin.H{"latitude": 120, "longitude": 0}), http.StatusBadRequest)
	expectStatus(t, s.do(http.MethodPost, "/api/locations/report", gin.H{"latitude": 40.7, "longitude": -74}), http.StatusAccepted)

	rec := s.do(http.MethodPost, "/api/tracking/start", nil)
	expectStatus(t, rec, http.StatusOK)
	var status struct {
		State  string `json:"state"`
		Notice string `json:"notice"`
	}
	decode(t, rec, &status)
	if status.State != string(services.TrackingActive) {
		t.Fatalf("expected tracking, got %+v", status)
	}

	rec = s.do(http.MethodGet, "/api/locations", nil)
	expectStatus(t, rec, http.StatusOK)
	var samples []models.TechnicianLocation
	decode(t, rec, &samples)
	if len(samples) != 1 {
		t.Fatalf("expected the first sample stored, got %d", len(samples))
	}

	expectStatus(t, s.do(http.MethodPost, "/api/tracking/stop", nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodPost, "/api/tracking/stop", nil), http.StatusOK)

	s.do(http.MethodPost, "/api/locations/report", gin.H{"permissionDenied": true})
	rec = s.do(http.MethodPost, "/api/tracking/start", nil)
	decode(t, rec, &status)
	if status.State != string(services.TrackingIdle) || status.Notice == "" {
		t.Fatalf("expected idle with notice, got %+v", status)
	}

	rec = s.do(http.MethodGet, "/api/tracking/status", nil)
	decode(t, rec, &status)
	if status.State != string(services.TrackingIdle) || status.Notice != "" {
		t.Fatalf("expected notice shown only once, got %+v", status)
	}
}

func TestCustomerAndInventoryCRUD(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/customers", gin.H{"name": "Kim Park", "phone": "+15550123"})
	expectStatus(t, rec, http.StatusCreated)
	var customer models.Customer
	decode(t, rec, &customer)
	expectStatus(t, s.do(http.MethodPost, "/api/customers", gin.H{"name": "Kim P", "phone": "+15550123"}), http.StatusConflict)
	expectStatus(t, s.do(http.MethodPost, "/api/customers", gin.H{"name": "Bad", "phone": "12ab"}), http.StatusBadRequest)

	rec = s.do(http.MethodPut, "/api/customers/"+customer.ID.String(), gin.H{"address": "5 Elm St"})
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &customer)
	if customer.Address != "5 Elm St" || customer.Name != "Kim Park" {
		t.Fatalf("unexpected customer %+v", customer)
	}

	rec = s.do(http.MethodPost, "/api/jobs", gin.H{"customerId": customer.ID, "title": "Inspect boiler"})
	expectStatus(t, rec, http.StatusCreated)
	var job models.WorkOrder
	decode(t, rec, &job)
	if job.Status != models.StatusOpen || job.Priority != models.PriorityMedium {
		t.Fatalf("expected defaults, got %s/%s", job.Status, job.Priority)
	}

	expectStatus(t, s.do(http.MethodDelete, "/api/customers/"+customer.ID.String(), nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodGet, "/api/customers/"+customer.ID.String(), nil), http.StatusNotFound)

	expectStatus(t, s.do(http.MethodPost, "/api/inventory", gin.H{"name": "Gasket", "sku": "AR-1"}), http.StatusConflict)
	rec = s.do(http.MethodPost, "/api/inventory", gin.H{"name": "Gasket", "sku": "GK-3", "quantity": 0, "reorderLevel": 5})
	expectStatus(t, rec, http.StatusCreated)

	rec = s.do(http.MethodGet, "/api/inventory?lowStock=true", nil)
	expectStatus(t, rec, http.StatusOK)
	var low []models.InventoryItem
	decode(t, rec, &low)
	if len(low) != 1 || low[0].SKU != "GK-3" {
		t.Fatalf("expected only the gasket low on stock, got %+v", low)
	}

	expectStatus(t, s.do(http.MethodDelete, "/api/inventory/"+low[0].ID.String(), nil), http.StatusOK)
	rec = s.do(http.MethodPost, "/api/inventory", gin.H{"name": "Gasket (new)", "sku": "GK-3", "quantity": 8})
	expectStatus(t, rec, http.StatusCreated)
}

func TestTenantIsolation(t *testing.T) {
	s := newTestServer(t)
	outsider := s.tokenFor(uuid.New(), uuid.New())

	expectStatus(t, s.doAs(outsider, http.MethodGet, "/api/jobs/"+s.job.ID.String(), nil), http.StatusNotFound)
	expectStatus(t, s.doAs(outsider, http.MethodGet, "/api/customers/"+s.customer.ID.String(), nil), http.StatusNotFound)
	expectStatus(t, s.doAs("", http.MethodGet, "/api/jobs", nil), http.StatusUnauthorized)
}

func TestDashboardAndReports(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/dashboard", nil)
	expectStatus(t, rec, http.StatusOK)
	var overview struct {
		OpenJobs       int `json:"openJobs"`
		TotalCustomers int `json:"totalCustomers"`
	}
	decode(t, rec, &overview)
	if overview.OpenJobs != 1 || overview.TotalCustomers != 1 {
		t.Fatalf("unexpected overview %s", rec.Body.String())
	}

	expectStatus(t, s.do(http.MethodGet, "/api/reports", nil), http.StatusOK)

	rec = s.do(http.MethodGet, "/api/reports/timesheet?from=2026-13-01", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".xlsx") {
		t.Fatalf("expected an xlsx attachment")
	}

	rec = s.do(http.MethodPut, "/api/company", gin.H{"defaultLaborRate": 90, "digestEnabled": false})
	expectStatus(t, rec, http.StatusOK)
	var company struct {
		DefaultLaborRate float64 `json:"defaultLaborRate"`
		DigestEnabled    bool    `json:"digestEnabled"`
	}
	decode(t, rec, &company)
	if company.DefaultLaborRate != 90 || company.DigestEnabled {
		t.Fatalf("unexpected company %+v", company)
	}

	expectStatus(t, s.do(http.MethodGet, "/api/notifications", nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodPost, "/api/notifications/digest", nil), http.StatusServiceUnavailable)
}

func TestPhotoLogAppendsInCaptureOrder(t *testing.T) {
	s := newTestServer(t)
	base := "/api/jobs/" + s.job.ID.String() + "/photos"

	if rec := s.do(http.MethodPost, base, map[string]interface{}{"caption": "no url"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without url, got %d", rec.Code)
	}

	first := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	second := first.Add(30 * time.Minute)
	for _, p := range []map[string]interface{}{
		{"photoUrl": "https://cdn.example.com/after.jpg", "caption": "After", "takenAt": second},
		{"photoUrl": "https://cdn.example.com/before.jpg", "caption": "Before", "takenAt": first},
	} {
		if rec := s.do(http.MethodPost, base, p); rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := s.do(http.MethodGet, base, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var photos []models.WorkOrderPhoto
	decode(t, rec, &photos)
	if len(photos) != 2 || photos[0].Caption != "Before" || photos[1].Caption != "After" {
		t.Fatalf("unexpected photo log %+v", photos)
	}
	if photos[0].UploadedByUserID != s.tech.ID {
		t.Fatalf("expected uploader %s, got %s", s.tech.ID, photos[0].UploadedByUserID)
	}

	other := s.tokenFor(uuid.New(), uuid.New())
	if rec := s.doAs(other, http.MethodPost, base, map[string]interface{}{"photoUrl": "https://cdn.example.com/x.jpg"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another company, got %d", rec.Code)
	}
}
