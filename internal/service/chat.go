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

const chatSystemPrompt = `You are a helpful assistant answering questions about a podcast episode.
Ground your answers in the conversation so far and the episode context. Keep replies short.`

const cannedChatReply = "I'm having trouble reaching the assistant right now. Please try again in a moment."

// ChatService handles episode conversations with the model. Chat turns are
// not quota-gated; only summaries and searches count against the allotment.
type ChatService struct {
	chats    ChatStore
	model    llm.Client
	retry    llm.RetryConfig
	validate *validator.Validate
}

// NewChatService creates a ChatService.
func NewChatService(chats ChatStore, model llm.Client) *ChatService {
	return &ChatService{
		chats:    chats,
		model:    model,
		retry:    llm.DefaultRetryConfig(),
		validate: validator.New(),
	}
}

// Send records a user turn, asks the model for a reply with the recent
// conversation as context, records and returns the assistant turn. After
// exhausted retries the reply degrades to a canned message instead of
// failing the request.
func (s *ChatService) Send(ctx context.Context, userID, episodeID string, req *domain.ChatRequest) (*domain.ChatMessage, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	history, err := s.chats.ListByEpisode(ctx, userID, episodeID, 20)
	if err != nil {
		return nil, domain.ErrInternal("failed to load chat history", err)
	}

	now := time.Now()
	userMsg := &domain.ChatMessage{
		ID:        domain.NewID(),
		UserID:    userID,
		EpisodeID: episodeID,
		Role:      "user",
		Content:   req.Message,
		CreatedAt: now,
	}
	if err := s.chats.Create(ctx, userMsg); err != nil {
		return nil, domain.ErrInternal("failed to save message", err)
	}

	var reply string
	err = llm.WithRetry(ctx, s.retry, func() error {
		var completeErr error
		reply, completeErr = s.model.Complete(ctx, chatSystemPrompt, buildChatPrompt(history, req.Message))
		return completeErr
	})
	if err != nil {
		log.WithError(err).WithField("episode", episodeID).Warn("model API unavailable, serving canned chat reply")
		reply = cannedChatReply
	}

	assistantMsg := &domain.ChatMessage{
		ID:        domain.NewID(),
		UserID:    userID,
		EpisodeID: episodeID,
		Role:      "assistant",
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if err := s.chats.Create(ctx, assistantMsg); err != nil {
		return nil, domain.ErrInternal("failed to save reply", err)
	}

	return assistantMsg, nil
}

// History returns the conversation for an episode, oldest first.
func (s *ChatService) History(ctx context.Context, userID, episodeID string) ([]*domain.ChatMessage, error) {
	msgs, err := s.chats.ListByEpisode(ctx, userID, episodeID, 100)
	if err != nil {
		return nil, domain.ErrInternal("failed to load chat history", err)
	}
	if msgs == nil {
		msgs = []*domain.ChatMessage{}
	}
	return msgs, nil
}

func buildChatPrompt(history []*domain.ChatMessage, message string) string {
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "user: %s", message)
	return b.String()
}
