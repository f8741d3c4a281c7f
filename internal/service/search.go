package service

import (
	"context"
	"strings"

	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/pkg/podcastindex"
	log "github.com/sirupsen/logrus"
)

// PodcastSearcher queries the external podcast directory.
type PodcastSearcher interface {
	Search(ctx context.Context, term string, limit int) ([]podcastindex.SearchResult, error)
}

// SearchService runs quota-gated podcast searches against the directory API.
type SearchService struct {
	quota     *QuotaService
	directory PodcastSearcher
}

// NewSearchService creates a SearchService.
func NewSearchService(quota *QuotaService, directory PodcastSearcher) *SearchService {
	return &SearchService{quota: quota, directory: directory}
}

// Search looks up podcasts by term. The quota check runs before the
// directory call; usage is charged only when the search succeeded.
func (s *SearchService) Search(ctx context.Context, userID, term string) ([]domain.Podcast, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.ErrBadRequest("search term is required")
	}

	if err := s.quota.Check(ctx, userID, domain.FeatureSearch); err != nil {
		return nil, err
	}

	results, err := s.directory.Search(ctx, term, 20)
	if err != nil {
		return nil, domain.ErrUpstream("podcast search failed", err)
	}

	podcasts := make([]domain.Podcast, len(results))
	for i, r := range results {
		podcasts[i] = domain.Podcast{
			ID:            r.ID,
			Title:         r.Title,
			Publisher:     r.Publisher,
			Description:   r.Description,
			ImageURL:      r.ImageURL,
			TotalEpisodes: r.TotalEpisodes,
		}
	}

	if err := s.quota.Consume(ctx, userID, domain.FeatureSearch); err != nil {
		log.WithError(err).WithField("user", userID).Error("failed to record search usage")
	}

	return podcasts, nil
}
