package domain

import (
	"time"

	"github.com/google/uuid"
)

// Podcast is a show returned by the podcast search API.
type Podcast struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Publisher     string `json:"publisher"`
	Description   string `json:"description,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
	TotalEpisodes int    `json:"totalEpisodes"`
}

// Episode is a single podcast episode.
type Episode struct {
	ID              string    `json:"id"`
	PodcastID       string    `json:"podcastId"`
	PodcastTitle    string    `json:"podcastTitle"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	AudioURL        string    `json:"audioUrl"`
	DurationSeconds int       `json:"durationSeconds"`
	PublishedAt     time.Time `json:"publishedAt"`
}

// Summary is a generated episode summary with key takeaways.
type Summary struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	EpisodeID    string    `json:"episodeId"`
	EpisodeTitle string    `json:"episodeTitle"`
	PodcastTitle string    `json:"podcastTitle"`
	Text         string    `json:"text"`
	Takeaways    []string  `json:"takeaways"`
	Degraded     bool      `json:"degraded"` // canned fallback after model failures
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateSummaryRequest is the validated input for generating a summary.
type CreateSummaryRequest struct {
	EpisodeTitle string `json:"episodeTitle" validate:"required"`
	PodcastTitle string `json:"podcastTitle" validate:"required"`
	AudioURL     string `json:"audioUrl" validate:"required,url"`
}

// ChatMessage is one turn of an episode conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EpisodeID string    `json:"episodeId"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatRequest is the validated input for an episode chat turn.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// PlaybackProgress tracks a user's listening position in an episode.
type PlaybackProgress struct {
	UserID          string    `json:"userId"`
	EpisodeID       string    `json:"episodeId"`
	EpisodeTitle    string    `json:"episodeTitle"`
	PodcastTitle    string    `json:"podcastTitle"`
	PositionSeconds int       `json:"positionSeconds"`
	DurationSeconds int       `json:"durationSeconds"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ProgressRequest is the validated input for saving playback progress.
type ProgressRequest struct {
	EpisodeTitle    string `json:"episodeTitle" validate:"required"`
	PodcastTitle    string `json:"podcastTitle"`
	PositionSeconds int    `json:"positionSeconds" validate:"gte=0"`
	DurationSeconds int    `json:"durationSeconds" validate:"gte=0"`
	Completed       bool   `json:"completed"`
}

// CheckoutRequest is the validated input for starting a plan purchase.
type CheckoutRequest struct {
	Tier string `json:"tier" validate:"required,oneof=basic standard premium unlimited lifetime"`
}

// CheckoutResponse returns the URL to redirect the user to for payment.
type CheckoutResponse struct {
	PaymentURL string `json:"paymentUrl"`
	OrderID    string `json:"orderId"`
}

// NewID generates a new UUID string for summaries and chat messages.
func NewID() string {
	return uuid.New().String()
}
