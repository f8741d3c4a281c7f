package service

import (
	"context"
	"sync"
	"time"

	"github.com/podclip/backend/internal/domain"
)

// In-memory stores backing the service tests. They implement the same
// narrow interfaces the pgx repositories do, with the same semantics the
// SQL carries (predicate-guarded updates, single-statement increments).

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserStore(users ...*domain.User) *memUserStore {
	s := &memUserStore{users: make(map[string]*domain.User)}
	for _, u := range users {
		cp := *u
		s.users[u.ID] = &cp
	}
	return s
}

func (s *memUserStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memUserStore) GetOrCreate(_ context.Context, id, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	u := &domain.User{ID: id, Email: email, Role: "user", Plan: domain.PlanFree, QuotaPeriodStart: time.Now()}
	s.users[id] = u
	cp := *u
	return &cp, nil
}

func (s *memUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memUserStore) Exists(_ context.Context, email string) (bool, error) {
	u, _ := s.FindByEmail(context.Background(), email)
	return u != nil, nil
}

func (s *memUserStore) ListAll(_ context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *memUserStore) IncrementUsage(_ context.Context, id string, feature domain.Feature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	if feature == domain.FeatureSearch {
		u.SearchCount++
	} else {
		u.SummaryCount++
	}
	return nil
}

func (s *memUserStore) ResetQuota(_ context.Context, id string, periodStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.SummaryCount = 0
		u.SearchCount = 0
		u.QuotaPeriodStart = periodStart
	}
	return nil
}

func (s *memUserStore) ListExpiredPeriods(_ context.Context, now time.Time) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.User
	for _, u := range s.users {
		if u.Plan != domain.PlanLifetime && domain.PeriodExpired(u.QuotaPeriodStart, now) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memUserStore) SetPlan(_ context.Context, id string, plan domain.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Plan = plan
	}
	return nil
}

func (s *memUserStore) SetExportToken(_ context.Context, id, encrypted string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.ExportToken = encrypted
	}
	return nil
}

type memSubscriptionStore struct {
	mu   sync.Mutex
	subs map[string]*domain.Subscription // keyed by user ID
}

func newMemSubscriptionStore(subs ...*domain.Subscription) *memSubscriptionStore {
	s := &memSubscriptionStore{subs: make(map[string]*domain.Subscription)}
	for _, sub := range subs {
		cp := *sub
		s.subs[sub.UserID] = &cp
	}
	return s
}

func (s *memSubscriptionStore) Upsert(_ context.Context, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.subs[sub.UserID] = &cp
	return nil
}

func (s *memSubscriptionStore) FindByUserID(_ context.Context, userID string) (*domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[userID]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (s *memSubscriptionStore) MarkCancelled(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[userID]
	if !ok || sub.Status == domain.StatusExpired {
		return domain.ErrNotFound("no active subscription")
	}
	sub.Status = domain.StatusCancelled
	sub.CancelAtPeriodEnd = true
	return nil
}

func (s *memSubscriptionStore) Renew(_ context.Context, userID string, periodStart, periodEnd time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[userID]
	if !ok {
		return domain.ErrNotFound("no subscription")
	}
	sub.Status = domain.StatusActive
	sub.CancelAtPeriodEnd = false
	sub.CurrentPeriodStart = periodStart
	sub.CurrentPeriodEnd = periodEnd
	return nil
}

func (s *memSubscriptionStore) ListExpirable(_ context.Context, now time.Time) ([]*domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Subscription
	for _, sub := range s.subs {
		if sub.CancelAtPeriodEnd && !sub.CurrentPeriodEnd.After(now) && sub.Status != domain.StatusExpired {
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memSubscriptionStore) MarkExpired(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.ID == id {
			sub.Status = domain.StatusExpired
			return nil
		}
	}
	return domain.ErrNotFound("no subscription")
}

type memSummaryStore struct {
	mu        sync.Mutex
	summaries []*domain.Summary
}

func (s *memSummaryStore) Create(_ context.Context, sum *domain.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sum
	s.summaries = append(s.summaries, &cp)
	return nil
}

func (s *memSummaryStore) ListByUser(_ context.Context, userID string, limit int) ([]*domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Summary
	for _, sum := range s.summaries {
		if sum.UserID == userID && len(out) < limit {
			cp := *sum
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memChatStore struct {
	mu       sync.Mutex
	messages []*domain.ChatMessage
}

func (s *memChatStore) Create(_ context.Context, m *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *memChatStore) ListByEpisode(_ context.Context, userID, episodeID string, limit int) ([]*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ChatMessage
	for _, m := range s.messages {
		if m.UserID == userID && m.EpisodeID == episodeID && len(out) < limit {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeLLM scripts model responses per call.
type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   int
}

func (f *fakeLLM) Complete(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	if len(f.replies) > 0 {
		return f.replies[len(f.replies)-1], nil
	}
	return "", nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeTranscripts returns a fixed transcript and records calls.
type fakeTranscripts struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (f *fakeTranscripts) Fetch(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeTranscripts) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
