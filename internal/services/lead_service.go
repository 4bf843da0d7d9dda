package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// LeadsCSVHeader is the fixed column layout of the lead export.
var LeadsCSVHeader = []string{"ID", "Type", "Name", "Email", "Phone", "Status", "Source", "Date", "Title/Property"}

const LeadsExportFilename = "leads_export.csv"

// LeadService presents inquiries and buyer requests as one CRM pipeline.
type LeadService interface {
	ListLeads(ctx context.Context, status string) ([]*models.Lead, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	GetLead(ctx context.Context, leadType, id string) (*models.Lead, error)
	UpdateLead(ctx context.Context, leadType, id string, patch repositories.LeadPatch) (*models.Lead, error)
	AppendNote(ctx context.Context, leadType, id, text, author string) (*models.Lead, error)
	// FunnelCounts buckets every lead; the buckets sum to the total.
	FunnelCounts(ctx context.Context) (map[models.LeadStatus]int64, int64, error)
}

type leadService struct {
	inquiryRepo repositories.InquiryRepository
	requestRepo repositories.PropertyRequestRepository
}

func NewLeadService(
	inquiryRepo repositories.InquiryRepository,
	requestRepo repositories.PropertyRequestRepository,
) LeadService {
	return &leadService{inquiryRepo: inquiryRepo, requestRepo: requestRepo}
}

// ----------------------------------------------------------------------
// Normalisation
// ----------------------------------------------------------------------

func LeadFromInquiry(inq *models.Inquiry) *models.Lead {
	title := strings.TrimSpace(inq.Subject)
	if title == "" {
		title = "Inquiry from " + firstNonEmpty(inq.Name, inq.Email, "Guest")
	}
	return &models.Lead{
		ID:            inq.ID,
		Type:          models.LeadTypeInquiry,
		Name:          firstNonEmpty(inq.Name, "Guest"),
		Email:         inq.Email,
		Phone:         inq.Phone,
		Title:         title,
		PropertyID:    inq.PropertyID,
		PropertyTitle: inq.PropertyTitle,
		Message:       inq.Message,
		UserID:        inq.UserID,
		Status:        leadStatusOrNew(inq.Status),
		Source:        firstNonEmpty(inq.Source, models.DefaultLeadSource),
		Notes:         inq.Notes,
		CreatedAt:     inq.Timestamp,
	}
}

func LeadFromRequest(pr *models.PropertyRequest) *models.Lead {
	name := strings.TrimSpace(pr.Name)
	switch {
	case name != "":
	case pr.UserID != "":
		uid := pr.UserID
		if len(uid) > 6 {
			uid = uid[:6]
		}
		name = "User " + uid
	default:
		name = "Guest"
	}

	kind := "Property"
	if t := strings.TrimSpace(pr.Criteria.Type); t != "" {
		kind = t
	}
	where := firstNonEmpty(strings.TrimSpace(pr.Criteria.Location), "Anywhere")

	criteria := pr.Criteria
	return &models.Lead{
		ID:        pr.ID,
		Type:      models.LeadTypeRequest,
		Name:      name,
		Email:     pr.Email,
		Phone:     pr.Phone,
		Title:     "Request: " + kind + " in " + where,
		UserID:    pr.UserID,
		Criteria:  &criteria,
		Status:    leadStatusOrNew(pr.LeadStatus),
		Source:    firstNonEmpty(pr.Source, models.DefaultLeadSource),
		Notes:     pr.Notes,
		CreatedAt: pr.CreatedAt,
	}
}

func leadStatusOrNew(s models.LeadStatus) models.LeadStatus {
	if strings.TrimSpace(string(s)) == "" {
		return models.LeadStatusNew
	}
	return s
}

// SortLeads orders newest first; leads without a timestamp go last. Equal
// timestamps fall back to (type, id) so repeated calls agree.
func SortLeads(leads []*models.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		a, b := leads[i], leads[j]
		switch {
		case a.CreatedAt == nil && b.CreatedAt != nil:
			return false
		case a.CreatedAt != nil && b.CreatedAt == nil:
			return true
		case a.CreatedAt != nil && !a.CreatedAt.Equal(*b.CreatedAt):
			return a.CreatedAt.After(*b.CreatedAt)
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.ID < b.ID
	})
}

// ----------------------------------------------------------------------
// Public API
// ----------------------------------------------------------------------

func (s *leadService) ListLeads(ctx context.Context, status string) ([]*models.Lead, error) {
	status = strings.TrimSpace(status)
	if status != "" && !models.LeadStatus(status).Valid() {
		return nil, utils.NewValidationError("Invalid status filter", nil)
	}

	leads, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return leads, nil
	}

	filtered := make([]*models.Lead, 0, len(leads))
	for _, l := range leads {
		if l.Status.Bucket() == models.LeadStatus(status) {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

func (s *leadService) loadAll(ctx context.Context) ([]*models.Lead, error) {
	inquiries, err := s.inquiryRepo.ListAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	requests, err := s.requestRepo.ListAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	leads := make([]*models.Lead, 0, len(inquiries)+len(requests))
	for _, inq := range inquiries {
		if inq == nil || inq.ID == "" {
			continue
		}
		leads = append(leads, LeadFromInquiry(inq))
	}
	for _, pr := range requests {
		if pr == nil || pr.ID == "" {
			continue
		}
		leads = append(leads, LeadFromRequest(pr))
	}
	SortLeads(leads)
	return leads, nil
}

func (s *leadService) ExportCSV(ctx context.Context, w io.Writer) error {
	leads, err := s.loadAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(LeadsCSVHeader); err != nil {
		return err
	}
	for _, l := range leads {
		date := ""
		if l.CreatedAt != nil {
			date = l.CreatedAt.UTC().Format(time.RFC3339)
		}
		if err := cw.Write([]string{
			l.ID,
			string(l.Type),
			l.Name,
			l.Email,
			l.Phone,
			string(l.Status),
			l.Source,
			date,
			firstNonEmpty(l.Title, l.PropertyTitle),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *leadService) GetLead(ctx context.Context, leadType, id string) (*models.Lead, error) {
	t, ok := models.ParseLeadType(leadType)
	if !ok {
		return nil, utils.NewValidationError("Invalid lead type", utils.ErrInvalidLeadType)
	}

	switch t {
	case models.LeadTypeInquiry:
		inq, err := s.inquiryRepo.GetByID(ctx, id)
		if err != nil {
			return nil, utils.NewInternalError(err)
		}
		if inq == nil {
			return nil, utils.NewNotFoundError("Lead not found")
		}
		return LeadFromInquiry(inq), nil
	default:
		pr, err := s.requestRepo.GetByID(ctx, id)
		if err != nil {
			return nil, utils.NewInternalError(err)
		}
		if pr == nil {
			return nil, utils.NewNotFoundError("Lead not found")
		}
		return LeadFromRequest(pr), nil
	}
}

func (s *leadService) UpdateLead(ctx context.Context, leadType, id string, patch repositories.LeadPatch) (*models.Lead, error) {
	store, err := s.store(leadType)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, utils.NewValidationError("Invalid status", nil)
	}
	if patch.Source != nil {
		patch.Source = utils.SanitizePtr(patch.Source)
	}

	if err := store.UpdateLead(ctx, id, patch); err != nil {
		return nil, mapLeadErr(err)
	}
	return s.GetLead(ctx, leadType, id)
}

func (s *leadService) AppendNote(ctx context.Context, leadType, id, text, author string) (*models.Lead, error) {
	store, err := s.store(leadType)
	if err != nil {
		return nil, err
	}
	text = utils.SanitizeText(text)
	if text == "" {
		return nil, utils.NewValidationError("Missing required field: text", nil)
	}

	note := models.LeadNote{
		Text:      text,
		Author:    firstNonEmpty(author, "admin"),
		Timestamp: time.Now().UTC(),
	}
	if err := store.AppendNote(ctx, id, note); err != nil {
		return nil, mapLeadErr(err)
	}
	return s.GetLead(ctx, leadType, id)
}

func (s *leadService) FunnelCounts(ctx context.Context) (map[models.LeadStatus]int64, int64, error) {
	funnel := make(map[models.LeadStatus]int64, len(models.FunnelStatuses))
	for _, st := range models.FunnelStatuses {
		funnel[st] = 0
	}

	var total int64
	for _, store := range []repositories.LeadStore{s.inquiryRepo, s.requestRepo} {
		counts, err := store.CountByLeadStatus(ctx)
		if err != nil {
			return nil, 0, err
		}
		for status, n := range counts {
			funnel[models.LeadStatus(status).Bucket()] += n
			total += n
		}
	}
	return funnel, total, nil
}

func (s *leadService) store(leadType string) (repositories.LeadStore, error) {
	t, ok := models.ParseLeadType(leadType)
	if !ok {
		return nil, utils.NewValidationError("Invalid lead type", utils.ErrInvalidLeadType)
	}
	if t == models.LeadTypeInquiry {
		return s.inquiryRepo, nil
	}
	return s.requestRepo, nil
}

func mapLeadErr(err error) error {
	if errors.Is(err, utils.ErrNotFound) {
		return utils.NewNotFoundError("Lead not found")
	}
	return utils.NewInternalError(err)
}
