package services

import (
	"context"
	"strings"

	"github.com/krishnaproperties/estate-service/internal/config"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// MatchService notifies buyers about new listings that satisfy their
// saved criteria and watchers about price drops. Both hooks are
// best-effort: they log and return nothing.
type MatchService interface {
	OnListingCreated(ctx context.Context, p *models.Property)
	OnPriceChanged(ctx context.Context, p *models.Property, oldPrice, newPrice string)
}

type matchService struct {
	requestRepo  repositories.PropertyRequestRepository
	favoriteRepo repositories.FavoriteRepository
	userRepo     repositories.UserRepository
	notifier     NotificationDispatcher
	cfg          *config.Config
}

func NewMatchService(
	requestRepo repositories.PropertyRequestRepository,
	favoriteRepo repositories.FavoriteRepository,
	userRepo repositories.UserRepository,
	notifier NotificationDispatcher,
	cfg *config.Config,
) MatchService {
	return &matchService{
		requestRepo:  requestRepo,
		favoriteRepo: favoriteRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		cfg:          cfg,
	}
}

// Matches reports whether a listing satisfies c. priceOK is false for a
// listing whose price could not be parsed; such a listing matches nothing.
func Matches(price int64, priceOK bool, p *models.Property, c *models.RequestCriteria) bool {
	if !priceOK || p == nil || c == nil {
		return false
	}
	if price < utils.Val(c.MinPrice) {
		return false
	}
	if c.MaxPrice != nil && price > *c.MaxPrice {
		return false
	}
	if p.Bedrooms < c.Bedrooms {
		return false
	}
	if !c.AnyType() && strings.TrimSpace(c.Type) != strings.TrimSpace(p.Type) {
		return false
	}
	if loc := strings.TrimSpace(c.Location); loc != "" &&
		!strings.Contains(strings.ToLower(p.Location), strings.ToLower(loc)) {
		return false
	}
	return true
}

// SearchName is the human label of a saved search.
func SearchName(c *models.RequestCriteria) string {
	kind := "Property"
	if !c.AnyType() {
		kind = strings.TrimSpace(c.Type)
	}
	where := strings.TrimSpace(c.Location)
	if where == "" {
		where = "Anywhere"
	}
	return kind + " in " + where
}

func (s *matchService) OnListingCreated(ctx context.Context, p *models.Property) {
	price, err := utils.ParsePrice(p.Price)
	if err != nil {
		utils.Logger.WithField("property_id", p.ID).Warn("Listing price is not comparable; skipping saved-search matching")
		return
	}

	requests, err := s.requestRepo.ListActive(ctx)
	if err != nil {
		utils.Logger.WithError(err).WithField("property_id", p.ID).Error("Failed to load active requests for matching")
		return
	}

	// One notification per buyer, even when several of their searches match.
	matched := make(map[string]*models.PropertyRequest)
	var order []string
	for _, r := range requests {
		if r.UserID == "" || !Matches(price, true, p, &r.Criteria) {
			continue
		}
		if _, seen := matched[r.UserID]; !seen {
			matched[r.UserID] = r
			order = append(order, r.UserID)
		}
	}
	if len(order) == 0 {
		return
	}

	users := s.usersByID(ctx, order)
	link := s.cfg.PublicSiteURL + "/properties/" + p.ID

	for _, uid := range order {
		r := matched[uid]
		search := SearchName(&r.Criteria)

		s.notifier.NotifyUser(ctx, models.Notification{
			UserID:  uid,
			Kind:    models.NotificationKindSavedSearch,
			Title:   "New match: " + p.Title,
			Message: "A new listing matches your search " + search + ".",
			Link:    "/properties/" + p.ID,
		})

		u := users[uid]
		if !u.EffectivePreferences().Email {
			continue
		}
		email := r.Email
		if email == "" && u != nil {
			email = u.Email
		}
		if email == "" {
			utils.Logger.WithField("user_id", uid).Debug("No email on file for saved-search match")
			continue
		}
		s.notifier.SendEmail(ctx, email, TemplateSavedSearchMatch, map[string]string{
			"name":        firstNonEmpty(r.Name, nameOf(u)),
			"search_name": search,
			"title":       p.Title,
			"price":       rupees(price),
			"location":    p.Location,
			"link":        link,
		})
	}
	utils.Logger.WithField("property_id", p.ID).Infof("Saved-search matches notified: %d", len(order))
}

func (s *matchService) OnPriceChanged(ctx context.Context, p *models.Property, oldPrice, newPrice string) {
	oldV, errOld := utils.ParsePrice(oldPrice)
	newV, errNew := utils.ParsePrice(newPrice)
	if errOld != nil || errNew != nil || newV >= oldV {
		return
	}

	watchers, err := s.favoriteRepo.WatchersOf(ctx, p.ID)
	if err != nil {
		utils.Logger.WithError(err).WithField("property_id", p.ID).Error("Failed to load property watchers")
		return
	}
	if len(watchers) == 0 {
		return
	}

	users := s.usersByID(ctx, watchers)
	link := s.cfg.PublicSiteURL + "/properties/" + p.ID

	for _, uid := range watchers {
		s.notifier.NotifyUser(ctx, models.Notification{
			UserID:  uid,
			Kind:    models.NotificationKindPriceDrop,
			Title:   "Price drop: " + p.Title,
			Message: "Now " + rupees(newV) + " (was " + rupees(oldV) + ").",
			Link:    "/properties/" + p.ID,
		})

		u := users[uid]
		if u == nil || u.Email == "" || !u.EffectivePreferences().Email {
			continue
		}
		s.notifier.SendEmail(ctx, u.Email, TemplatePriceDrop, map[string]string{
			"name":      u.Name,
			"title":     p.Title,
			"old_price": rupees(oldV),
			"new_price": rupees(newV),
			"link":      link,
		})
	}
	utils.Logger.WithField("property_id", p.ID).Infof("Price drop notified to %d watchers", len(watchers))
}

// usersByID resolves accounts; a lookup failure yields an empty map so
// in-app notifications still go out.
func (s *matchService) usersByID(ctx context.Context, ids []string) map[string]*models.User {
	out := make(map[string]*models.User, len(ids))
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		utils.Logger.WithError(err).Warn("Failed to resolve users for notifications")
		return out
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out
}

func nameOf(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Name
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
