package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

func TestMatches(t *testing.T) {
	villa := &models.Property{Type: models.PropertyTypeVilla, Bedrooms: 3, Location: "Sec 16B, Greater Noida West"}

	cases := []struct {
		name    string
		price   int64
		priceOK bool
		c       models.RequestCriteria
		want    bool
	}{
		{"empty criteria", 9_000_000, true, models.RequestCriteria{}, true},
		{"unparseable price", 0, false, models.RequestCriteria{}, false},
		{"within range", 9_000_000, true, models.RequestCriteria{MinPrice: utils.Ptr(int64(5_000_000)), MaxPrice: utils.Ptr(int64(10_000_000))}, true},
		{"range is inclusive", 10_000_000, true, models.RequestCriteria{MaxPrice: utils.Ptr(int64(10_000_000))}, true},
		{"below min", 4_000_000, true, models.RequestCriteria{MinPrice: utils.Ptr(int64(5_000_000))}, false},
		{"above max", 11_000_000, true, models.RequestCriteria{MaxPrice: utils.Ptr(int64(10_000_000))}, false},
		{"too few bedrooms", 9_000_000, true, models.RequestCriteria{Bedrooms: 4}, false},
		{"any type", 9_000_000, true, models.RequestCriteria{Type: "Any"}, true},
		{"other type", 9_000_000, true, models.RequestCriteria{Type: models.PropertyTypeForRent}, false},
		{"location substring ignores case", 9_000_000, true, models.RequestCriteria{Location: "greater noida"}, true},
		{"location mismatch", 9_000_000, true, models.RequestCriteria{Location: "Gurgaon"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(tc.price, tc.priceOK, villa, &tc.c))
		})
	}
}

func TestSearchName(t *testing.T) {
	assert.Equal(t, "Property in Anywhere", SearchName(&models.RequestCriteria{}))
	assert.Equal(t, "Villa's in Noida", SearchName(&models.RequestCriteria{Type: models.PropertyTypeVilla, Location: " Noida "}))
}

func TestOnListingCreatedNotifiesEachBuyerOnce(t *testing.T) {
	notifier := &fakeNotifier{}
	requests := &fakeRequestRepo{active: []*models.PropertyRequest{
		{ID: "r1", UserID: "u1", Criteria: models.RequestCriteria{Location: "noida"}},
		{ID: "r2", UserID: "u1", Criteria: models.RequestCriteria{Bedrooms: 2}},
		{ID: "r3", UserID: "u2", Email: "u2@example.test", Criteria: models.RequestCriteria{}},
		{ID: "r4", UserID: "u3", Criteria: models.RequestCriteria{Bedrooms: 5}},
	}}
	users := &fakeUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "u1@example.test", Name: "Asha"},
		"u2": {ID: "u2", Email: "u2-account@example.test", Preferences: &models.NotificationPreferences{Email: false}},
	}}
	svc := NewMatchService(requests, &fakeFavoriteRepo{}, users, notifier, testConfig())

	svc.OnListingCreated(context.Background(), &models.Property{
		ID: "p1", Title: "Corner Flat", Price: "₹ 45,00,000", Bedrooms: 3, Location: "Greater Noida West",
	})

	require.Len(t, notifier.inApp, 2)
	assert.Equal(t, "u1", notifier.inApp[0].UserID)
	assert.Equal(t, "u2", notifier.inApp[1].UserID)
	assert.Equal(t, models.NotificationKindSavedSearch, notifier.inApp[0].Kind)

	// u2 opted out of email.
	require.Len(t, notifier.emails, 1)
	e := notifier.emails[0]
	assert.Equal(t, "u1@example.test", e.To)
	assert.Equal(t, TemplateSavedSearchMatch, e.Template)
	assert.Equal(t, "₹ 45,00,000", e.Values["price"])
	assert.Equal(t, "https://krishna.test/properties/p1", e.Values["link"])
}

func TestOnListingCreatedSkipsIncomparablePrice(t *testing.T) {
	notifier := &fakeNotifier{}
	requests := &fakeRequestRepo{active: []*models.PropertyRequest{{ID: "r1", UserID: "u1"}}}
	svc := NewMatchService(requests, &fakeFavoriteRepo{}, &fakeUserRepo{}, notifier, testConfig())

	svc.OnListingCreated(context.Background(), &models.Property{ID: "p1", Price: "Price on request"})

	assert.Empty(t, notifier.inApp)
	assert.Empty(t, notifier.emails)
}

func TestOnPriceChanged(t *testing.T) {
	p := &models.Property{ID: "p1", Title: "Lake View"}
	newSvc := func(n *fakeNotifier) MatchService {
		favs := &fakeFavoriteRepo{watchers: map[string][]string{"p1": {"u1", "u2"}}}
		users := &fakeUserRepo{users: map[string]*models.User{
			"u1": {ID: "u1", Email: "u1@example.test", Name: "Asha"},
		}}
		return NewMatchService(&fakeRequestRepo{}, favs, users, n, testConfig())
	}

	t.Run("drop notifies watchers", func(t *testing.T) {
		n := &fakeNotifier{}
		newSvc(n).OnPriceChanged(context.Background(), p, "₹ 1,50,00,000", "₹ 1,40,00,000")

		require.Len(t, n.inApp, 2)
		assert.Equal(t, "Now ₹ 1,40,00,000 (was ₹ 1,50,00,000).", n.inApp[0].Message)
		require.Len(t, n.emails, 1, "u2 has no account on file")
		assert.Equal(t, TemplatePriceDrop, n.emails[0].Template)
		assert.Equal(t, "₹ 1,50,00,000", n.emails[0].Values["old_price"])
	})

	for name, prices := range map[string][2]string{
		"increase":        {"₹ 1,40,00,000", "₹ 1,50,00,000"},
		"unchanged":       {"₹ 1,40,00,000", "1,40,00,000"},
		"old unparseable": {"on request", "₹ 1,40,00,000"},
		"new unparseable": {"₹ 1,40,00,000", "on request"},
	} {
		t.Run(name, func(t *testing.T) {
			n := &fakeNotifier{}
			newSvc(n).OnPriceChanged(context.Background(), p, prices[0], prices[1])
			assert.Empty(t, n.inApp)
			assert.Empty(t, n.emails)
		})
	}
}
