package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestLeadFromRequestFallbacks(t *testing.T) {
	l := LeadFromRequest(&models.PropertyRequest{ID: "r1", UserID: "abcdefghij"})
	assert.Equal(t, "User abcdef", l.Name)
	assert.Equal(t, "Request: Property in Anywhere", l.Title)
	assert.Equal(t, models.LeadStatusNew, l.Status)
	assert.Equal(t, models.DefaultLeadSource, l.Source)

	l = LeadFromRequest(&models.PropertyRequest{ID: "r2", Criteria: models.RequestCriteria{Type: "Villa's", Location: "Noida"}})
	assert.Equal(t, "Guest", l.Name)
	assert.Equal(t, "Request: Villa's in Noida", l.Title)
}

func TestLeadFromInquiryFallbacks(t *testing.T) {
	l := LeadFromInquiry(&models.Inquiry{ID: "i1", Email: "a@example.test", Status: "replied"})
	assert.Equal(t, "Guest", l.Name)
	assert.Equal(t, "Inquiry from a@example.test", l.Title)
	assert.Equal(t, models.LeadStatus("replied"), l.Status, "stored status is shown as-is")
	assert.Equal(t, models.LeadStatusNew, l.Status.Bucket())
}

func TestSortLeads(t *testing.T) {
	leads := []*models.Lead{
		{ID: "b", Type: models.LeadTypeRequest},
		{ID: "old", Type: models.LeadTypeInquiry, CreatedAt: at("2024-01-01T00:00:00Z")},
		{ID: "a", Type: models.LeadTypeRequest},
		{ID: "tie-r", Type: models.LeadTypeRequest, CreatedAt: at("2024-06-01T00:00:00Z")},
		{ID: "tie-i", Type: models.LeadTypeInquiry, CreatedAt: at("2024-06-01T00:00:00Z")},
	}
	SortLeads(leads)

	var ids []string
	for _, l := range leads {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"tie-i", "tie-r", "old", "a", "b"}, ids)
}

func newLeadFixture() LeadService {
	inquiries := &fakeInquiryRepo{
		all: []*models.Inquiry{
			{ID: "i1", Name: "Asha", Email: "asha@example.test", Subject: "Villa, please", Status: models.LeadStatusContacted, Timestamp: at("2024-05-02T10:00:00Z")},
			{ID: "i2", Email: "x@example.test", Status: "read", Timestamp: at("2024-05-01T10:00:00Z")},
			{ID: ""},
		},
		counts: map[string]int64{"contacted": 1, "read": 1, "": 2},
	}
	requests := &fakeRequestRepo{
		all: []*models.PropertyRequest{
			{ID: "r1", Name: "Ravi", LeadStatus: models.LeadStatusQualified, CreatedAt: at("2024-05-03T10:00:00Z")},
		},
		counts: map[string]int64{"qualified": 1, "lost": 3},
	}
	return NewLeadService(inquiries, requests)
}

func TestListLeadsFiltersByBucket(t *testing.T) {
	svc := newLeadFixture()
	ctx := context.Background()

	all, err := svc.ListLeads(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3, "records without an id are skipped")
	assert.Equal(t, "r1", all[0].ID)

	fresh, err := svc.ListLeads(ctx, "new")
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "i2", fresh[0].ID)

	_, err = svc.ListLeads(ctx, "bogus")
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestFunnelCountsSumToTotal(t *testing.T) {
	funnel, total, err := newLeadFixture().FunnelCounts(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 8, total)
	assert.EqualValues(t, 3, funnel[models.LeadStatusNew])
	assert.EqualValues(t, 1, funnel[models.LeadStatusContacted])
	assert.EqualValues(t, 1, funnel[models.LeadStatusQualified])
	assert.EqualValues(t, 0, funnel[models.LeadStatusConverted])
	assert.EqualValues(t, 3, funnel[models.LeadStatusLost])

	var sum int64
	for _, n := range funnel {
		sum += n
	}
	assert.Equal(t, total, sum)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newLeadFixture().ExportCSV(context.Background(), &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, LeadsCSVHeader, rows[0])
	assert.Equal(t, []string{"r1", "request", "Ravi", "", "", "qualified", "Website", "2024-05-03T10:00:00Z", "Request: Property in Anywhere"}, rows[1])
	assert.Equal(t, "Villa, please", rows[2][8], "commas survive quoting")
}

func TestGetLeadRejectsUnknownType(t *testing.T) {
	_, err := newLeadFixture().GetLead(context.Background(), "order", "x")
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)

	_, err = newLeadFixture().GetLead(context.Background(), "inquiry", "missing")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}
