package services

import (
	"context"
	"sync"
	"time"

	"github.com/krishnaproperties/estate-service/internal/config"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// Fakes embed the repository interface so only the methods a test drives
// need bodies; anything else panics loudly.

func testConfig() *config.Config {
	return &config.Config{
		AppName:           "estate-service",
		PublicSiteURL:     "https://krishna.test",
		ChatRateLimit:     config.DefaultChatRateLimit,
		ChatRateWindow:    config.DefaultChatRateWindow,
		SyncRateLimit:     config.DefaultSyncRateLimit,
		SyncRateWindow:    config.DefaultSyncRateWindow,
		EventRetention:    30 * 24 * time.Hour,
		DashboardCacheTTL: config.DefaultDashboardCacheTTL,
	}
}

type sentEmail struct {
	To       string
	Template TemplateKey
	Values   map[string]string
}

type fakeNotifier struct {
	mu     sync.Mutex
	emails []sentEmail
	inApp  []models.Notification
	alerts []map[string]string
}

func (f *fakeNotifier) SendEmail(_ context.Context, to string, key TemplateKey, values map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, sentEmail{To: to, Template: key, Values: values})
}

func (f *fakeNotifier) NotifyUser(_ context.Context, n models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inApp = append(f.inApp, n)
}

func (f *fakeNotifier) AlertAdmins(_ context.Context, values map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, values)
}

func (f *fakeNotifier) Deliver(context.Context, Task) error { return nil }

type fakeUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakePropertyRepo struct {
	repositories.PropertyRepository
	props map[string]*models.Property
}

func (f *fakePropertyRepo) GetByID(_ context.Context, id string) (*models.Property, error) {
	return f.props[id], nil
}

func (f *fakePropertyRepo) GetByIDs(_ context.Context, ids []string) ([]*models.Property, error) {
	var out []*models.Property
	for _, id := range ids {
		if p, ok := f.props[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeRequestRepo struct {
	repositories.PropertyRequestRepository
	active []*models.PropertyRequest
	all    []*models.PropertyRequest
	counts map[string]int64
}

func (f *fakeRequestRepo) ListActive(context.Context) ([]*models.PropertyRequest, error) {
	return f.active, nil
}

func (f *fakeRequestRepo) ListAll(context.Context) ([]*models.PropertyRequest, error) {
	return f.all, nil
}

func (f *fakeRequestRepo) CountByLeadStatus(context.Context) (map[string]int64, error) {
	return f.counts, nil
}

type fakeInquiryRepo struct {
	repositories.InquiryRepository
	all    []*models.Inquiry
	counts map[string]int64
}

func (f *fakeInquiryRepo) ListAll(context.Context) ([]*models.Inquiry, error) {
	return f.all, nil
}

func (f *fakeInquiryRepo) GetByID(_ context.Context, id string) (*models.Inquiry, error) {
	for _, inq := range f.all {
		if inq.ID == id {
			return inq, nil
		}
	}
	return nil, nil
}

func (f *fakeInquiryRepo) CountByLeadStatus(context.Context) (map[string]int64, error) {
	return f.counts, nil
}

type fakeFavoriteRepo struct {
	repositories.FavoriteRepository
	watchers map[string][]string
}

func (f *fakeFavoriteRepo) WatchersOf(_ context.Context, propertyID string) ([]string, error) {
	return f.watchers[propertyID], nil
}

type fakeAppointmentRepo struct {
	repositories.AppointmentRepository
	createErr error
	byID      map[string]*models.Appointment
	updated   map[string]models.AppointmentStatus
}

func (f *fakeAppointmentRepo) CreatePending(_ context.Context, a *models.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byID == nil {
		f.byID = map[string]*models.Appointment{}
	}
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	return f.byID[id], nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id string, status models.AppointmentStatus) error {
	a, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	if f.updated == nil {
		f.updated = map[string]models.AppointmentStatus{}
	}
	f.updated[id] = status
	a.Status = status
	return nil
}

type fakeChatRepo struct {
	repositories.ChatRepository
	sent       []*models.ChatMessage
	recipients []string
}

func (f *fakeChatRepo) Send(_ context.Context, msg *models.ChatMessage, recipientID string) error {
	f.sent = append(f.sent, msg)
	f.recipients = append(f.recipients, recipientID)
	return nil
}

type fakeLimiter struct {
	err error
}

func (f fakeLimiter) CheckChatSend(context.Context, string) error { return f.err }
func (f fakeLimiter) CheckUserSync(context.Context, string) error { return f.err }
