package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clubmatch/internal/domain/conflicts"
	"clubmatch/internal/domain/eventreviews"
	"clubmatch/internal/domain/reviewtokens"
	"clubmatch/internal/domain/storage"
)

// fakeState is the shared in-memory database behind the fake repositories.
// txMu serializes whole units of work the way the real store's transactions
// do; mu guards individual operations.
type fakeState struct {
	mu   sync.Mutex
	txMu sync.Mutex

	tokens   map[int64]*reviewtokens.Token
	tokenIDs map[string]int64 // hash -> token id

	reviews      map[int64]*eventreviews.Review
	conflicts    map[int64]*conflicts.Conflict
	clubIDs      map[int64]bool
	eventIDs     map[int64]bool
	nextID       int64

	// failure injection for atomicity tests
	failReviewCreate   error
	failConflictCreate error
	failReviewUpdate   error
}

func newFakeState() *fakeState {
	return &fakeState{
		tokens:    make(map[int64]*reviewtokens.Token),
		tokenIDs:  make(map[string]int64),
		reviews:   make(map[int64]*eventreviews.Review),
		conflicts: make(map[int64]*conflicts.Conflict),
		clubIDs:   map[int64]bool{1: true, 2: true},
		eventIDs:  map[int64]bool{10: true},
	}
}

func (s *fakeState) id() int64 {
	s.nextID++
	return s.nextID
}

type snapshot struct {
	tokens    map[int64]*reviewtokens.Token
	tokenIDs  map[string]int64
	reviews   map[int64]*eventreviews.Review
	conflicts map[int64]*conflicts.Conflict
	nextID    int64
}

func (s *fakeState) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		tokens:    make(map[int64]*reviewtokens.Token, len(s.tokens)),
		tokenIDs:  make(map[string]int64, len(s.tokenIDs)),
		reviews:   make(map[int64]*eventreviews.Review, len(s.reviews)),
		conflicts: make(map[int64]*conflicts.Conflict, len(s.conflicts)),
		nextID:    s.nextID,
	}
	for id, t := range s.tokens {
		cp := *t
		snap.tokens[id] = &cp
	}
	for h, id := range s.tokenIDs {
		snap.tokenIDs[h] = id
	}
	for id, r := range s.reviews {
		cp := *r
		snap.reviews[id] = &cp
	}
	for id, c := range s.conflicts {
		cp := *c
		snap.conflicts[id] = &cp
	}
	return snap
}

func (s *fakeState) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = snap.tokens
	s.tokenIDs = snap.tokenIDs
	s.reviews = snap.reviews
	s.conflicts = snap.conflicts
	s.nextID = snap.nextID
}

// --- token store ---

type fakeTokens struct{ s *fakeState }

func (f *fakeTokens) Create(_ context.Context, tokenHash string, token *reviewtokens.Token) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	token.ID = f.s.id()
	token.IssuedAt = time.Now()
	cp := *token
	f.s.tokens[token.ID] = &cp
	f.s.tokenIDs[tokenHash] = token.ID
	return nil
}

func (f *fakeTokens) Redeem(_ context.Context, tokenHash string) (*reviewtokens.Token, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	id, ok := f.s.tokenIDs[tokenHash]
	if !ok {
		return nil, reviewtokens.ErrNotFound
	}
	token := f.s.tokens[id]
	if !token.ExpiresAt.After(time.Now()) {
		return nil, reviewtokens.ErrExpired
	}
	if token.RedeemedAt != nil {
		return nil, reviewtokens.ErrAlreadyUsed
	}
	now := time.Now()
	token.RedeemedAt = &now
	cp := *token
	return &cp, nil
}

func (f *fakeTokens) Validate(_ context.Context, tokenHash string) (*reviewtokens.Token, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	id, ok := f.s.tokenIDs[tokenHash]
	if !ok {
		return nil, reviewtokens.ErrNotFound
	}
	cp := *f.s.tokens[id]
	if !cp.ExpiresAt.After(time.Now()) {
		return &cp, reviewtokens.ErrExpired
	}
	if cp.RedeemedAt != nil {
		return &cp, reviewtokens.ErrAlreadyUsed
	}
	return &cp, nil
}

// --- review store ---

type fakeReviews struct{ s *fakeState }

func (f *fakeReviews) Create(_ context.Context, review *eventreviews.Review) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if f.s.failReviewCreate != nil {
		return f.s.failReviewCreate
	}
	review.ID = f.s.id()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	cp := *review
	f.s.reviews[review.ID] = &cp
	return nil
}

func (f *fakeReviews) GetByID(_ context.Context, reviewID int64) (*eventreviews.Review, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	review, ok := f.s.reviews[reviewID]
	if !ok {
		return nil, eventreviews.ErrNotFound
	}
	cp := *review
	return &cp, nil
}

func (f *fakeReviews) UpdateStatus(_ context.Context, reviewID int64, from, to eventreviews.Status, actor eventreviews.Role) error {
	if !eventreviews.CanTransition(from, to, actor) {
		return eventreviews.ErrInvalidTransition
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if f.s.failReviewUpdate != nil {
		return f.s.failReviewUpdate
	}
	review, ok := f.s.reviews[reviewID]
	if !ok {
		return eventreviews.ErrNotFound
	}
	if review.Status != from {
		return eventreviews.ErrInvalidTransition
	}
	review.Status = to
	review.LastActorRole = &actor
	review.UpdatedAt = time.Now()
	return nil
}

func (f *fakeReviews) ListByStatus(_ context.Context, status eventreviews.Status, limit, offset int) ([]eventreviews.Review, int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var out []eventreviews.Review
	for _, review := range f.s.reviews {
		if review.Status == status {
			out = append(out, *review)
		}
	}
	return out, len(out), nil
}

func (f *fakeReviews) ClubSummary(_ context.Context, clubID int64) (*eventreviews.ClubSummary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	summary := &eventreviews.ClubSummary{ClubID: clubID, RatingBreakdown: make(map[int]int)}
	var sum int
	for _, review := range f.s.reviews {
		if review.TargetClubID != clubID {
			continue
		}
		switch review.Status {
		case eventreviews.StatusApproved:
			summary.Total++
			sum += review.Rating
			summary.RatingBreakdown[review.Rating]++
		case eventreviews.StatusPending, eventreviews.StatusSuperAdminApproved:
			summary.PendingCount++
		case eventreviews.StatusConflictOpen:
			summary.ConflictCount++
		}
	}
	if summary.Total > 0 {
		summary.AverageRating = float64(sum) / float64(summary.Total)
	}
	return summary, nil
}

func (f *fakeReviews) ListApprovedByClub(_ context.Context, clubID int64, limit, offset int) ([]eventreviews.Review, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var out []eventreviews.Review
	for _, review := range f.s.reviews {
		if review.TargetClubID == clubID && review.Status == eventreviews.StatusApproved {
			out = append(out, *review)
		}
	}
	return out, nil
}

// --- conflict store ---

type fakeConflicts struct{ s *fakeState }

func (f *fakeConflicts) Create(_ context.Context, conflict *conflicts.Conflict) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if f.s.failConflictCreate != nil {
		return f.s.failConflictCreate
	}
	conflict.ID = f.s.id()
	conflict.CreatedAt = time.Now()
	conflict.UpdatedAt = conflict.CreatedAt
	cp := *conflict
	f.s.conflicts[conflict.ID] = &cp
	return nil
}

func (f *fakeConflicts) GetByID(_ context.Context, conflictID int64) (*conflicts.Conflict, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	conflict, ok := f.s.conflicts[conflictID]
	if !ok {
		return nil, conflicts.ErrNotFound
	}
	cp := *conflict
	return &cp, nil
}

func (f *fakeConflicts) Update(_ context.Context, conflictID int64, updates conflicts.UpdateFields) (*conflicts.Conflict, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	conflict, ok := f.s.conflicts[conflictID]
	if !ok {
		return nil, conflicts.ErrNotFound
	}
	if conflict.Status.Terminal() {
		return nil, conflicts.ErrAlreadyClosed
	}
	if updates.Status != nil {
		conflict.Status = *updates.Status
	}
	if updates.Priority != nil {
		conflict.Priority = *updates.Priority
	}
	if updates.AdminNotes != nil {
		conflict.AdminNotes = *updates.AdminNotes
	}
	conflict.UpdatedAt = time.Now()
	cp := *conflict
	return &cp, nil
}

func (f *fakeConflicts) Resolve(_ context.Context, conflictID int64, res conflicts.Resolution) (*conflicts.Conflict, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	conflict, ok := f.s.conflicts[conflictID]
	if !ok {
		return nil, conflicts.ErrNotFound
	}
	if conflict.Status.Terminal() {
		return nil, conflicts.ErrAlreadyClosed
	}
	if res.Type == conflicts.ResolutionDismissed {
		conflict.Status = conflicts.StatusDismissed
	} else {
		conflict.Status = conflicts.StatusResolved
	}
	now := time.Now()
	conflict.ResolutionType = &res.Type
	conflict.ResolutionNotes = &res.Notes
	conflict.ResolvedBy = &res.ResolvedBy
	conflict.ResolvedAt = &now
	conflict.UpdatedAt = now
	cp := *conflict
	return &cp, nil
}

func (f *fakeConflicts) ListOpen(_ context.Context, priority *conflicts.Priority, limit, offset int) ([]conflicts.Conflict, int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var out []conflicts.Conflict
	for _, conflict := range f.s.conflicts {
		if conflict.Status.Terminal() {
			continue
		}
		if priority != nil && conflict.Priority != *priority {
			continue
		}
		out = append(out, *conflict)
	}
	return out, len(out), nil
}

// --- clubs (external reference data) ---

type fakeClubs struct{ s *fakeState }

func (f *fakeClubs) ClubExists(_ context.Context, clubID int64) (bool, error) {
	return f.s.clubIDs[clubID], nil
}

func (f *fakeClubs) ClubName(_ context.Context, clubID int64) (string, error) {
	return fmt.Sprintf("Club %d", clubID), nil
}

func (f *fakeClubs) EventExists(_ context.Context, eventID int64) (bool, error) {
	return f.s.eventIDs[eventID], nil
}

func (f *fakeClubs) AdminEmails(_ context.Context, clubID int64) ([]string, error) {
	return nil, nil
}

// --- transaction runner ---

// fakeTx serializes units of work and rolls the whole state back when the
// unit fails, mirroring the all-or-nothing behavior of the real store.
type fakeTx struct {
	s         *fakeState
	tokens    *fakeTokens
	reviews   *fakeReviews
	conflicts *fakeConflicts
}

func (f *fakeTx) WithFeedbackTx(ctx context.Context, fn func(s *storage.FeedbackTx) error) error {
	f.s.txMu.Lock()
	defer f.s.txMu.Unlock()

	snap := f.s.snapshot()
	err := fn(&storage.FeedbackTx{
		Tokens:    f.tokens,
		Reviews:   f.reviews,
		Conflicts: f.conflicts,
	})
	if err != nil {
		f.s.restore(snap)
	}
	return err
}

// --- notifier ---

type fakeNotifier struct {
	mu        sync.Mutex
	invited   []int64 // token ids
	published []int64 // review ids
	disputes  []int64 // conflict ids
}

func (n *fakeNotifier) ReviewInvited(_ context.Context, token *reviewtokens.Token, plainToken string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invited = append(n.invited, token.ID)
}

func (n *fakeNotifier) ReviewPublished(_ context.Context, review *eventreviews.Review) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = append(n.published, review.ID)
}

func (n *fakeNotifier) DisputeOpened(_ context.Context, review *eventreviews.Review, conflict *conflicts.Conflict) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.disputes = append(n.disputes, conflict.ID)
}
