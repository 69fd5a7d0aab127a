package interest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zawajlabs/zawaj-backend/internal/profile"
)

// fakeRepository is an in-memory Repository with the same linearization
// guarantees the postgres implementation provides per interest.
type fakeRepository struct {
	mu        sync.Mutex
	interests map[uuid.UUID]*Interest
	byPair    map[[2]uuid.UUID]uuid.UUID
	answers   map[uuid.UUID]map[int]*QuestionResponse
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		interests: make(map[uuid.UUID]*Interest),
		byPair:    make(map[[2]uuid.UUID]uuid.UUID),
		answers:   make(map[uuid.UUID]map[int]*QuestionResponse),
	}
}

func (r *fakeRepository) CreateInterest(ctx context.Context, in *Interest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := [2]uuid.UUID{in.RequesterID, in.RecipientID}
	if existingID, ok := r.byPair[key]; ok {
		*in = *r.interests[existingID]
		return nil
	}

	copied := *in
	r.interests[in.ID] = &copied
	r.byPair[key] = in.ID
	return nil
}

func (r *fakeRepository) GetInterestByID(ctx context.Context, id uuid.UUID) (*Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.interests[id]
	if !ok {
		return nil, ErrInterestNotFound
	}
	copied := *in
	return &copied, nil
}

func (r *fakeRepository) GetInterestByPair(ctx context.Context, requesterID, recipientID uuid.UUID) (*Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byPair[[2]uuid.UUID{requesterID, recipientID}]
	if !ok {
		return nil, ErrInterestNotFound
	}
	copied := *r.interests[id]
	return &copied, nil
}

func (r *fakeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, to Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.interests[id]
	if !ok {
		return 0, nil
	}
	for _, s := range from {
		if in.Status == s {
			in.Status = to
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeRepository) ListSent(ctx context.Context, requesterID uuid.UUID) ([]*Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Interest
	for _, in := range r.interests {
		if in.RequesterID == requesterID {
			copied := *in
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepository) ListReceived(ctx context.Context, recipientID uuid.UUID) ([]*Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Interest
	for _, in := range r.interests {
		if in.RecipientID == recipientID && (in.Status == StatusPending || in.Status == StatusAccepted) {
			copied := *in
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepository) SaveAnswer(ctx context.Context, resp *QuestionResponse) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, ok := r.answers[resp.InterestID]
	if !ok {
		slots = make(map[int]*QuestionResponse)
		r.answers[resp.InterestID] = slots
	}

	copied := *resp
	slots[resp.QuestionNumber] = &copied

	count := len(slots)
	if in, ok := r.interests[resp.InterestID]; ok {
		in.QuestionsAnswered = count
		in.UnlockPercentage = count * PercentPerQuestion
	}
	return count, nil
}

func (r *fakeRepository) GetAnswers(ctx context.Context, interestID uuid.UUID) ([]*QuestionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*QuestionResponse
	for _, resp := range r.answers[interestID] {
		copied := *resp
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionNumber < out[j].QuestionNumber })
	return out, nil
}

type fakeProfiles struct {
	byID      map[uuid.UUID]*profile.Profile
	byAccount map[uuid.UUID]*profile.Profile
}

func newFakeProfiles(profiles ...*profile.Profile) *fakeProfiles {
	f := &fakeProfiles{
		byID:      make(map[uuid.UUID]*profile.Profile),
		byAccount: make(map[uuid.UUID]*profile.Profile),
	}
	for _, p := range profiles {
		f.byID[p.ID] = p
		f.byAccount[p.AccountID] = p
	}
	return f
}

func (f *fakeProfiles) GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) GetProfileByAccount(ctx context.Context, accountID uuid.UUID) (*profile.Profile, error) {
	p, ok := f.byAccount[accountID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) GetWaliContact(ctx context.Context, profileID uuid.UUID) (*profile.WaliContact, error) {
	p, ok := f.byID[profileID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return &p.Wali, nil
}

// recordingNotifier counts dispatched events and can be made to fail
type recordingNotifier struct {
	mu     sync.Mutex
	events map[string]int
	err    error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(map[string]int)}
}

func (n *recordingNotifier) record(event string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[event]++
	return n.err
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[event]
}

func (n *recordingNotifier) InterestExpressed(ctx context.Context, recipientAccountID, interestID, requesterProfileID uuid.UUID) error {
	return n.record("interest_expressed")
}

func (n *recordingNotifier) QuestionsProgress(ctx context.Context, recipientAccountID, interestID uuid.UUID, percentage int) error {
	return n.record("questions_progress")
}

func (n *recordingNotifier) QuestionsCompleted(ctx context.Context, recipientAccountID, interestID uuid.UUID) error {
	return n.record("questions_completed")
}

func (n *recordingNotifier) InterestAccepted(ctx context.Context, requesterAccountID, interestID uuid.UUID) error {
	return n.record("interest_accepted")
}

func (n *recordingNotifier) InterestRejected(ctx context.Context, requesterAccountID, interestID uuid.UUID) error {
	return n.record("interest_rejected")
}

func (n *recordingNotifier) WaliContactUnlocked(ctx context.Context, accountID, interestID uuid.UUID) error {
	return n.record("wali_contact_unlocked")
}

func newTestProfile(category profile.Category) *profile.Profile {
	return &profile.Profile{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Category:  category,
	}
}

type fixture struct {
	repo     *fakeRepository
	notifier *recordingNotifier
	service  Service
	brother  *profile.Profile
	sister   *profile.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeRepository()
	notifier := newRecordingNotifier()
	brother := newTestProfile(profile.CategoryBrother)
	sister := newTestProfile(profile.CategorySister)
	svc := NewService(repo, newFakeProfiles(brother, sister), notifier)

	return &fixture{
		repo:     repo,
		notifier: notifier,
		service:  svc,
		brother:  brother,
		sister:   sister,
	}
}

func (f *fixture) answer(t *testing.T, interestID uuid.UUID, slot int) *Interest {
	t.Helper()

	in, err := f.service.SubmitAnswer(context.Background(), f.brother.AccountID, interestID, &SubmitAnswerRequest{
		QuestionNumber: slot,
		QuestionText:   "What is your approach?",
		AnswerText:     "A considered answer.",
	})
	require.NoError(t, err)
	return in
}

func TestExpressInterestCreates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, in.Status)
	assert.Equal(t, f.brother.ID, in.RequesterID)
	assert.Equal(t, f.sister.ID, in.RecipientID)
	assert.Equal(t, 0, in.QuestionsAnswered)
	assert.Equal(t, 1, f.notifier.count("interest_expressed"))
}

func TestExpressInterestIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	second, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	// The repeat expression is a no-op and must not re-notify
	assert.Equal(t, 1, f.notifier.count("interest_expressed"))
}

func TestExpressInterestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.ExpressInterest(ctx, f.brother.AccountID, uuid.Nil)
	assert.True(t, IsValidation(err))

	_, err = f.service.ExpressInterest(ctx, f.brother.AccountID, f.brother.ID)
	assert.True(t, IsValidation(err), "self-interest must be rejected")

	other := newTestProfile(profile.CategoryBrother)
	f2 := newFixture(t)
	svc := NewService(f2.repo, newFakeProfiles(f2.brother, other), f2.notifier)
	_, err = svc.ExpressInterest(ctx, f2.brother.AccountID, other.ID)
	assert.True(t, IsValidation(err), "same-category interest must be rejected")
}

func TestReactivationKeepsIDAndAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	f.answer(t, in.ID, 1)
	f.answer(t, in.ID, 2)

	require.NoError(t, f.service.Withdraw(ctx, f.brother.AccountID, in.ID))

	revived, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	assert.Equal(t, in.ID, revived.ID)
	assert.Equal(t, StatusPending, revived.Status)
	assert.Equal(t, 2, revived.QuestionsAnswered)
	assert.Equal(t, 40, revived.UnlockPercentage)
	assert.Equal(t, 2, f.notifier.count("interest_expressed"))
}

func TestSubmitAnswerProgression(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	for slot := 1; slot <= MaxQuestions; slot++ {
		updated := f.answer(t, in.ID, slot)
		assert.Equal(t, slot, updated.QuestionsAnswered)
		assert.Equal(t, slot*PercentPerQuestion, updated.UnlockPercentage)
	}

	// Progress fires at 2, 3 and 4 answers; completion fires once at 5
	assert.Equal(t, 3, f.notifier.count("questions_progress"))
	assert.Equal(t, 1, f.notifier.count("questions_completed"))
}

func TestResubmitDoesNotRenotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	f.answer(t, in.ID, 1)
	f.answer(t, in.ID, 2)
	progressBefore := f.notifier.count("questions_progress")

	// Overwriting slot 2 leaves the count unchanged
	updated := f.answer(t, in.ID, 2)
	assert.Equal(t, 2, updated.QuestionsAnswered)
	assert.Equal(t, progressBefore, f.notifier.count("questions_progress"))
}

func TestSubmitAnswerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	_, err = f.service.SubmitAnswer(ctx, f.brother.AccountID, in.ID, &SubmitAnswerRequest{
		QuestionNumber: 6, QuestionText: "q", AnswerText: "a",
	})
	assert.True(t, IsValidation(err))

	_, err = f.service.SubmitAnswer(ctx, f.brother.AccountID, in.ID, &SubmitAnswerRequest{
		QuestionNumber: 1, QuestionText: "q", AnswerText: "",
	})
	assert.True(t, IsValidation(err))
}

func TestSubmitAnswerBlockedAfterRejection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.Reject(ctx, f.sister.AccountID, in.ID))

	_, err = f.service.SubmitAnswer(ctx, f.brother.AccountID, in.ID, &SubmitAnswerRequest{
		QuestionNumber: 1, QuestionText: "q", AnswerText: "a",
	})
	assert.True(t, IsPreconditionFailed(err))
}

func TestSubmitAnswerRequesterOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	_, err = f.service.SubmitAnswer(ctx, f.sister.AccountID, in.ID, &SubmitAnswerRequest{
		QuestionNumber: 1, QuestionText: "q", AnswerText: "a",
	})
	assert.ErrorIs(t, err, ErrNotRequester)
}

func TestConcurrentSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for slot := 1; slot <= MaxQuestions; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, err := f.service.SubmitAnswer(ctx, f.brother.AccountID, in.ID, &SubmitAnswerRequest{
				QuestionNumber: slot,
				QuestionText:   "q",
				AnswerText:     "a",
			})
			assert.NoError(t, err)
		}(slot)
	}
	wg.Wait()

	final, err := f.service.GetInterestByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, MaxQuestions, final.QuestionsAnswered)
	assert.Equal(t, 100, final.UnlockPercentage)
	assert.Equal(t, 1, f.notifier.count("questions_completed"))
}

func TestWithdrawBlockedAtFullUnlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	for slot := 1; slot <= MaxQuestions; slot++ {
		f.answer(t, in.ID, slot)
	}

	err = f.service.Withdraw(ctx, f.brother.AccountID, in.ID)
	assert.True(t, IsPreconditionFailed(err))

	final, err := f.service.GetInterestByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, final.Status)
}

func TestWithdrawSucceedsBelowFullUnlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	f.answer(t, in.ID, 1)

	require.NoError(t, f.service.Withdraw(ctx, f.brother.AccountID, in.ID))

	final, err := f.service.GetInterestByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusWithdrawn, final.Status)
}

func TestAcceptRecipientOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	err = f.service.Accept(ctx, f.brother.AccountID, in.ID)
	assert.ErrorIs(t, err, ErrNotRecipient)
}

func TestAcceptNonPendingFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.Accept(ctx, f.sister.AccountID, in.ID))
	assert.Equal(t, 1, f.notifier.count("interest_accepted"))

	// Second accept matches zero rows and must surface, not no-op
	err = f.service.Accept(ctx, f.sister.AccountID, in.ID)
	assert.True(t, IsPreconditionFailed(err))
}

func TestRejectNotifiesRequester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.Reject(ctx, f.sister.AccountID, in.ID))
	assert.Equal(t, 1, f.notifier.count("interest_rejected"))

	final, err := f.service.GetInterestByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, final.Status)
}

func TestNotifierFailureDoesNotPropagate(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("notification backend down")
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)
	require.NotNil(t, in)

	_, err = f.service.SubmitAnswer(ctx, f.brother.AccountID, in.ID, &SubmitAnswerRequest{
		QuestionNumber: 1, QuestionText: "q", AnswerText: "a",
	})
	assert.NoError(t, err)
}

// Full mutual flow: both directions complete and accept, wali contact
// unlocks for the brother only.
func TestMutualAcceptanceUnlocksWaliContact(t *testing.T) {
	repo := newFakeRepository()
	notifier := newRecordingNotifier()
	brother := newTestProfile(profile.CategoryBrother)
	sister := newTestProfile(profile.CategorySister)
	sister.Wali = profile.WaliContact{Name: strptr("Abu Yusuf"), Phone: strptr("+441234567890")}
	profiles := newFakeProfiles(brother, sister)
	svc := NewService(repo, profiles, notifier)
	ctx := context.Background()

	complete := func(requesterAccount uuid.UUID, recipientProfile uuid.UUID) uuid.UUID {
		in, err := svc.ExpressInterest(ctx, requesterAccount, recipientProfile)
		require.NoError(t, err)
		for slot := 1; slot <= MaxQuestions; slot++ {
			_, err := svc.SubmitAnswer(ctx, requesterAccount, in.ID, &SubmitAnswerRequest{
				QuestionNumber: slot, QuestionText: "q", AnswerText: "a",
			})
			require.NoError(t, err)
		}
		return in.ID
	}

	forward := complete(brother.AccountID, sister.ID)
	reverse := complete(sister.AccountID, brother.ID)

	require.NoError(t, svc.Accept(ctx, sister.AccountID, forward))
	assert.Equal(t, 0, notifier.count("wali_contact_unlocked"), "one-sided acceptance must not unlock")

	require.NoError(t, svc.Accept(ctx, brother.AccountID, reverse))
	assert.Equal(t, 1, notifier.count("wali_contact_unlocked"))

	// The brother may fetch the wali contact, the sister may not
	wali, err := svc.GetWaliContact(ctx, brother.AccountID, sister.ID)
	require.NoError(t, err)
	require.NotNil(t, wali)
	assert.Equal(t, "Abu Yusuf", *wali.Name)

	wali, err = svc.GetWaliContact(ctx, sister.AccountID, brother.ID)
	require.NoError(t, err)
	assert.Nil(t, wali)
}

func TestGetInterestAbsentReturnsNil(t *testing.T) {
	f := newFixture(t)

	in, err := f.service.GetInterest(context.Background(), f.brother.ID, f.sister.ID)
	require.NoError(t, err)
	assert.Nil(t, in)
}

func TestListReceivedExcludesInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in, err := f.service.ExpressInterest(ctx, f.brother.AccountID, f.sister.ID)
	require.NoError(t, err)

	received, err := f.service.ListReceived(ctx, f.sister.AccountID)
	require.NoError(t, err)
	assert.Len(t, received, 1)

	require.NoError(t, f.service.Reject(ctx, f.sister.AccountID, in.ID))

	received, err = f.service.ListReceived(ctx, f.sister.AccountID)
	require.NoError(t, err)
	assert.Empty(t, received)
}
