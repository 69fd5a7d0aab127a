package flags

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zawajlabs/zawaj-backend/internal/interest"
	"github.com/zawajlabs/zawaj-backend/internal/profile"
)

type fakeInterests struct {
	interest *interest.Interest
	answers  []*interest.QuestionResponse
}

func (f *fakeInterests) GetInterestByID(ctx context.Context, id uuid.UUID) (*interest.Interest, error) {
	if f.interest == nil || f.interest.ID != id {
		return nil, interest.ErrInterestNotFound
	}
	return f.interest, nil
}

func (f *fakeInterests) GetAnswers(ctx context.Context, accountID, interestID uuid.UUID) ([]*interest.QuestionResponse, error) {
	return f.answers, nil
}

type fakeProfiles struct {
	byID      map[uuid.UUID]*profile.Profile
	byAccount map[uuid.UUID]*profile.Profile
}

func newProfileDirectory(profiles ...*profile.Profile) *fakeProfiles {
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

func strptr(s string) *string { return &s }

type flagsFixture struct {
	judge     *MockJudge
	cache     Cache
	interests *fakeInterests
	profiles  *fakeProfiles
	service   Service

	requesterAccount uuid.UUID
	recipient        *profile.Profile
	interestID       uuid.UUID
}

// newFlagsFixture builds a completed interest from a brother to a sister
// whose profile has every section filled, so each answer has judge context.
func newFlagsFixture(t *testing.T) *flagsFixture {
	t.Helper()

	requester := &profile.Profile{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Category:  profile.CategoryBrother,
	}
	recipient := &profile.Profile{
		ID:                     uuid.New(),
		AccountID:              uuid.New(),
		Category:               profile.CategorySister,
		ReligiousPractice:      strptr("Practising, attends the mosque weekly"),
		LifestyleDescription:   strptr("Quiet home life, values family time"),
		PersonalityDescription: strptr("Patient and active"),
		SpousalExpectations:    strptr("Wants a partner who leads with kindness"),
		ChildrenVision:         strptr("Hopes to raise children near extended family"),
	}

	in := &interest.Interest{
		ID:                uuid.New(),
		RequesterID:       requester.ID,
		RecipientID:       recipient.ID,
		Status:            interest.StatusPending,
		QuestionsAnswered: interest.MaxQuestions,
		UnlockPercentage:  interest.MaxQuestions * interest.PercentPerQuestion,
	}

	answers := make([]*interest.QuestionResponse, 0, interest.MaxQuestions)
	for slot := 1; slot <= interest.MaxQuestions; slot++ {
		answers = append(answers, &interest.QuestionResponse{
			ID:             uuid.New(),
			InterestID:     in.ID,
			QuestionNumber: slot,
			QuestionText:   fmt.Sprintf("Question %d", slot),
			AnswerText:     fmt.Sprintf("Answer %d", slot),
			Category:       interest.CategoryForSlot(slot),
		})
	}

	judge := &MockJudge{}
	cache := NewMemoryCache()
	interests := &fakeInterests{interest: in, answers: answers}
	profiles := newProfileDirectory(requester, recipient)

	return &flagsFixture{
		judge:            judge,
		cache:            cache,
		interests:        interests,
		profiles:         profiles,
		service:          NewService(cache, judge, interests, profiles, 5*time.Second),
		requesterAccount: requester.AccountID,
		recipient:        recipient,
		interestID:       in.ID,
	}
}

func TestGetFlagAnalysisGeneratesOnce(t *testing.T) {
	f := newFlagsFixture(t)
	ctx := context.Background()

	first, err := f.service.GetFlagAnalysis(ctx, f.requesterAccount, f.interestID)
	require.NoError(t, err)
	assert.False(t, first.Degraded)
	callsAfterFirst := f.judge.CallCount()
	assert.Equal(t, interest.MaxQuestions, callsAfterFirst)

	second, err := f.service.GetFlagAnalysis(ctx, f.requesterAccount, f.interestID)
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, f.judge.CallCount(), "cached read must not re-judge")
	assert.Equal(t, first.InterestID, second.InterestID)
}

func TestGetFlagAnalysisBucketsVerdicts(t *testing.T) {
	f := newFlagsFixture(t)
	ctx := context.Background()

	f.judge.AssessFunc = func(ctx context.Context, req *JudgmentRequest) (*Judgment, error) {
		switch req.QuestionText {
		case "Question 1", "Question 2":
			return &Judgment{Verdict: VerdictAligned, Rationale: "The answer matches the stated practice."}, nil
		case "Question 3":
			return &Judgment{Verdict: VerdictContradictory, Rationale: "The answer contradicts the stated routine."}, nil
		default:
			return &Judgment{Verdict: VerdictNeutral, Rationale: "The answer neither confirms nor contradicts."}, nil
		}
	}

	analysis, err := f.service.GetFlagAnalysis(ctx, f.requesterAccount, f.interestID)
	require.NoError(t, err)

	assert.Len(t, analysis.GreenFlags, 2)
	assert.Len(t, analysis.RedFlags, 1)
	assert.Len(t, analysis.NeutralFlags, 2)
	assert.False(t, analysis.Degraded)
}

func TestGetFlagAnalysisNormalizesTerminology(t *testing.T) {
	f := newFlagsFixture(t)
	ctx := context.Background()

	f.judge.AssessFunc = func(ctx context.Context, req *JudgmentRequest) (*Judgment, error) {
		return &Judgment{Verdict: VerdictAligned, Rationale: "They want a partner who shares their values."}, nil
	}

	analysis, err := f.service.GetFlagAnalysis(ctx, f.requesterAccount, f.interestID)
	require.NoError(t, err)

	require.NotEmpty(t, analysis.GreenFlags)
	for _, sentence := range analysis.GreenFlags {
		assert.NotContains(t, sentence, "partner")
		assert.Contains(t, sentence, "spouse")
	}
}

func TestGetFlagAnalysisSkipsJudgeOnEmptyContext(t *testing.T) {
	f := newFlagsFixture(t)
	ctx := context.Background()

	// Blank out the recipient's sections so every category resolves to
	// an empty context block.
	*f.recipient = profile.Profile{
		ID:        f.recipient.ID,
		AccountID: f.recipient.AccountID,
		Category:  profile.CategorySister,
	}

	analysis, err := f.service.GetFlagAnalysis(ctx, f.requesterAccount, f.interestID)
	require.NoError(t, err)

	assert.Zero(t, f.judge.CallCount(), "empty context must not reach the judge")
	assert.Empty(t, analysis.GreenFlags)
	assert.Empty(t, analysis.RedFlags)
	assert.Len(t, analysis.NeutralFlags, interest.MaxQuestions)
	assert.False(t, analysis.Degraded)
}

func TestGetFlagAnalysisDegradedNotCached(t *testing.T) {
	f := newFlagsFixture(t)
	ctx := context.Background()

	f.judge.AssessFunc = func(ctx context.Context, req *JudgmentRequest) (*Judgment, error) {
		return nil, errors.New("model unavailable")
	}

	degraded, err := f.service.GetFlagAnalysis(ctx, f.requesterAccount, f.interestID)
	require.NoError(t, err)
	assert.True(t, degraded.Degraded)
	assert.Empty(t, degraded.GreenFlags)
	assert.Empty(t, degraded.RedFlags)
	assert.Len(t, degraded.NeutralFlags, 1)

	cached, err := f.cache.Get(ctx, f.interestID)
	require.NoError(t, err)
	assert.Nil(t, cached, "degraded result must not be cached")

	// Once the judge recovers, the next read produces a healthy analysis
	f.judge.AssessFunc = nil

	healthy, err := f.service.GetFlagAnalysis(ctx, f.requesterAccount, f.interestID)
	require.NoError(t, err)
	assert.False(t, healthy.Degraded)

	cached, err = f.cache.Get(ctx, f.interestID)
	require.NoError(t, err)
	assert.NotNil(t, cached)
}

func TestGetFlagAnalysisTimeoutDegrades(t *testing.T) {
	f := newFlagsFixture(t)
	ctx := context.Background()

	f.judge.AssessFunc = func(ctx context.Context, req *JudgmentRequest) (*Judgment, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	svc := NewService(f.cache, f.judge, f.interests, f.profiles, 50*time.Millisecond)

	analysis, err := svc.GetFlagAnalysis(ctx, f.requesterAccount, f.interestID)
	require.NoError(t, err)
	assert.True(t, analysis.Degraded)

	cached, err := f.cache.Get(ctx, f.interestID)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestGetFlagAnalysisRequiresCompletion(t *testing.T) {
	f := newFlagsFixture(t)
	f.interests.interest.QuestionsAnswered = 3
	f.interests.interest.UnlockPercentage = 60

	_, err := f.service.GetFlagAnalysis(context.Background(), f.requesterAccount, f.interestID)
	assert.True(t, interest.IsPreconditionFailed(err))
	assert.Zero(t, f.judge.CallCount())
}

func TestGetFlagAnalysisParticipantsOnly(t *testing.T) {
	f := newFlagsFixture(t)

	outsider := &profile.Profile{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Category:  profile.CategorySister,
	}
	svc := NewService(NewMemoryCache(), f.judge, f.interests, newProfileDirectory(outsider), 5*time.Second)

	_, err := svc.GetFlagAnalysis(context.Background(), outsider.AccountID, f.interestID)
	assert.ErrorIs(t, err, interest.ErrNotRecipient)
}

func TestInvalidateForcesRegeneration(t *testing.T) {
	f := newFlagsFixture(t)
	ctx := context.Background()

	_, err := f.service.GetFlagAnalysis(ctx, f.requesterAccount, f.interestID)
	require.NoError(t, err)
	callsAfterFirst := f.judge.CallCount()

	require.NoError(t, f.service.Invalidate(ctx, f.requesterAccount, f.interestID))

	_, err = f.service.GetFlagAnalysis(ctx, f.requesterAccount, f.interestID)
	require.NoError(t, err)
	assert.Equal(t, 2*callsAfterFirst, f.judge.CallCount())
}

func TestParseJudgmentDefaults(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		verdict  Verdict
		fallback bool
	}{
		{"aligned", "ALIGNED\nThe answer matches the profile.", VerdictAligned, false},
		{"contradictory lowercase", "contradictory\nThe answer conflicts.", VerdictContradictory, false},
		{"unknown verdict", "MAYBE\nSomething ambiguous.", VerdictNeutral, false},
		{"missing rationale", "ALIGNED", VerdictNeutral, true},
		{"empty response", "", VerdictNeutral, true},
		{"multiline rationale", "NEUTRAL\nFirst part.\nSecond part.", VerdictNeutral, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			j := parseJudgment(tc.content)
			assert.Equal(t, tc.verdict, j.Verdict)
			assert.NotEmpty(t, j.Rationale)
			if tc.fallback {
				assert.Equal(t, "This answer could not be assessed against the stated profile.", j.Rationale)
			}
		})
	}
}
