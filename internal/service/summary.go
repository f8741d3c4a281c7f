package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/podclip/backend/internal/domain"
	"github.com/podclip/backend/pkg/llm"
	log "github.com/sirupsen/logrus"
)

const summarySystemPrompt = `You are a podcast summarization assistant. Given an episode transcript,
write a concise summary paragraph, then a line reading exactly "Key takeaways:",
then 3-7 takeaways as lines starting with "- ".`

// The degraded response served when the model API stays unavailable after
// retries. Availability over accuracy: the user-visible request still
// succeeds, with the summary flagged as degraded.
const cannedSummaryText = "We couldn't generate a full summary for this episode right now. " +
	"The transcript was retrieved successfully; please try again in a few minutes for an AI-generated summary."

// TranscriptFetcher retrieves the plain-text transcript for an episode.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, audioURL string) (string, error)
}

// SummaryService generates episode summaries. The quota check runs before
// any external work; the usage counter is charged only after a summary was
// actually produced and stored.
type SummaryService struct {
	quota       *QuotaService
	summaries   SummaryStore
	transcripts TranscriptFetcher
	model       llm.Client
	retry       llm.RetryConfig
	validate    *validator.Validate
}

// NewSummaryService creates a SummaryService.
func NewSummaryService(quota *QuotaService, summaries SummaryStore, transcripts TranscriptFetcher, model llm.Client) *SummaryService {
	return &SummaryService{
		quota:       quota,
		summaries:   summaries,
		transcripts: transcripts,
		model:       model,
		retry:       llm.DefaultRetryConfig(),
		validate:    validator.New(),
	}
}

// Generate produces and persists a summary for an episode.
func (s *SummaryService) Generate(ctx context.Context, userID, episodeID string, req *domain.CreateSummaryRequest) (*domain.Summary, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	// Gate before any costly external call.
	if err := s.quota.Check(ctx, userID, domain.FeatureSummary); err != nil {
		return nil, err
	}

	transcriptText, err := s.transcripts.Fetch(ctx, req.AudioURL)
	if err != nil {
		return nil, domain.ErrUpstream("failed to fetch transcript", err)
	}

	prompt := fmt.Sprintf("Episode: %s (%s)\n\nTranscript:\n%s", req.EpisodeTitle, req.PodcastTitle, transcriptText)

	var reply string
	err = llm.WithRetry(ctx, s.retry, func() error {
		var completeErr error
		reply, completeErr = s.model.Complete(ctx, summarySystemPrompt, prompt)
		return completeErr
	})

	summary := &domain.Summary{
		ID:           domain.NewID(),
		UserID:       userID,
		EpisodeID:    episodeID,
		EpisodeTitle: req.EpisodeTitle,
		PodcastTitle: req.PodcastTitle,
		CreatedAt:    time.Now(),
	}
	if err != nil {
		log.WithError(err).WithField("episode", episodeID).Warn("model API unavailable, serving degraded summary")
		summary.Text = cannedSummaryText
		summary.Takeaways = []string{}
		summary.Degraded = true
	} else {
		summary.Text, summary.Takeaways = parseSummaryReply(reply)
	}

	if err := s.summaries.Create(ctx, summary); err != nil {
		return nil, domain.ErrInternal("failed to save summary", err)
	}

	// Charge quota only after the work produced a result. Failing to record
	// usage must not fail the user-visible request.
	if err := s.quota.Consume(ctx, userID, domain.FeatureSummary); err != nil {
		log.WithError(err).WithField("user", userID).Error("failed to record summary usage")
	}

	return summary, nil
}

// List returns a user's past summaries.
func (s *SummaryService) List(ctx context.Context, userID string) ([]*domain.Summary, error) {
	summaries, err := s.summaries.ListByUser(ctx, userID, 50)
	if err != nil {
		return nil, domain.ErrInternal("failed to list summaries", err)
	}
	if summaries == nil {
		summaries = []*domain.Summary{}
	}
	return summaries, nil
}

// parseSummaryReply splits the model reply into the summary paragraph and
// the takeaway bullet lines.
func parseSummaryReply(reply string) (string, []string) {
	takeaways := []string{}
	body, rest, found := strings.Cut(reply, "Key takeaways:")
	if found {
		for _, line := range strings.Split(rest, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "- ") {
				takeaways = append(takeaways, strings.TrimPrefix(line, "- "))
			}
		}
	}
	return strings.TrimSpace(body), takeaways
}
