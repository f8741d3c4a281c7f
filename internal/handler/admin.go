package handler

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/internal/repository"
)

// AdminHandler handles admin stats and diagnostics endpoints.
type AdminHandler struct {
	users     *repository.UserRepository
	summaries *repository.SummaryRepository
	subs      *repository.SubscriptionRepository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users *repository.UserRepository, summaries *repository.SummaryRepository, subs *repository.SubscriptionRepository) *AdminHandler {
	return &AdminHandler{users: users, summaries: summaries, subs: subs}
}

// GetStats handles GET /api/admin/stats.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.users.ListAll(ctx)
	if err != nil {
		Error(w, err)
		return
	}

	totalSummaries, err := h.summaries.CountAll(ctx)
	if err != nil {
		Error(w, err)
		return
	}

	activeSubs, err := h.subs.CountActive(ctx)
	if err != nil {
		Error(w, err)
		return
	}

	planCounts := map[domain.Plan]int{}
	for _, u := range users {
		planCounts[u.Plan]++
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"totalUsers":          len(users),
		"totalSummaries":      totalSummaries,
		"activeSubscriptions": activeSubs,
		"usersByPlan":         planCounts,
	})
}

// QuotaDiagnostics handles GET /api/admin/diagnostics/quota. It compares
// each user's stored summary counter against the summaries actually
// recorded in the current period. Mismatches are reported, never
// corrected automatically.
func (h *AdminHandler) QuotaDiagnostics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()

	users, err := h.users.ListAll(ctx)
	if err != nil {
		Error(w, err)
		return
	}

	inconsistencies := []domain.QuotaInconsistency{}
	for _, u := range users {
		// Lazily-reset counters read as zero once the period lapses,
		// so an expired period has nothing to compare against.
		if u.Plan != domain.PlanLifetime && domain.PeriodExpired(u.QuotaPeriodStart, now) {
			continue
		}

		observed, err := h.summaries.CountByUserSince(ctx, u.ID, u.QuotaPeriodStart)
		if err != nil {
			log.WithError(err).WithField("user_id", u.ID).Warn("quota diagnostics: count failed")
			continue
		}

		if observed != u.SummaryCount {
			log.WithFields(log.Fields{
				"user_id":  u.ID,
				"stored":   u.SummaryCount,
				"observed": observed,
			}).Warn("quota counter mismatch")
			inconsistencies = append(inconsistencies, domain.QuotaInconsistency{
				UserID:        u.ID,
				Email:         u.Email,
				StoredCount:   u.SummaryCount,
				ObservedCount: observed,
			})
		}
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"checkedUsers":    len(users),
		"inconsistencies": inconsistencies,
	})
}
