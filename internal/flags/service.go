// internal/flags/service.go

package flags

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zawajlabs/zawaj-backend/internal/interest"
	"github.com/zawajlabs/zawaj-backend/internal/profile"
)

// InterestSource is the slice of the interest service this package needs
type InterestSource interface {
	GetInterestByID(ctx context.Context, id uuid.UUID) (*interest.Interest, error)
	GetAnswers(ctx context.Context, accountID, interestID uuid.UUID) ([]*interest.QuestionResponse, error)
}

type ProfileDirectory interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	GetProfileByAccount(ctx context.Context, accountID uuid.UUID) (*profile.Profile, error)
}

type Service interface {
	GetFlagAnalysis(ctx context.Context, accountID, interestID uuid.UUID) (*FlagAnalysis, error)
	Invalidate(ctx context.Context, accountID, interestID uuid.UUID) error
}

type service struct {
	cache     Cache
	judge     Judge
	interests InterestSource
	profiles  ProfileDirectory
	timeout   time.Duration
}

func NewService(cache Cache, judge Judge, interests InterestSource, profiles ProfileDirectory, timeout time.Duration) Service {
	return &service{
		cache:     cache,
		judge:     judge,
		interests: interests,
		profiles:  profiles,
		timeout:   timeout,
	}
}

// GetFlagAnalysis returns the cached analysis for the interest, generating
// it on first request. Either participant may call it. A degraded result
// is returned on judge failure but never cached, so the next read retries.
func (s *service) GetFlagAnalysis(ctx context.Context, accountID, interestID uuid.UUID) (*FlagAnalysis, error) {
	in, err := s.interests.GetInterestByID(ctx, interestID)
	if err != nil {
		return nil, err
	}

	caller, err := s.profiles.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller profile: %w", err)
	}
	if caller.ID != in.RequesterID && caller.ID != in.RecipientID {
		return nil, interest.ErrNotRecipient
	}

	if !in.Complete() {
		return nil, &interest.PreconditionFailedError{Reason: "Flag analysis is available once all screening questions are answered"}
	}

	cached, err := s.cache.Get(ctx, interestID)
	if err != nil {
		log.Printf("flags: cache read failed, regenerating: %v", err)
	}
	if cached != nil {
		recordCacheHit()
		return cached, nil
	}

	answers, err := s.interests.GetAnswers(ctx, accountID, interestID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.profiles.GetProfile(ctx, in.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipient profile: %w", err)
	}

	analysis := s.generate(ctx, interestID, answers, recipient)

	if !analysis.Degraded {
		// Two callers racing the first generation may both write. The
		// write is an overwrite of an identical answer-bound result, so
		// the race is harmless.
		if err := s.cache.Set(ctx, analysis); err != nil {
			log.Printf("flags: cache write failed: %v", err)
		}
	}

	return analysis, nil
}

// Invalidate deletes the cached analysis so the next read regenerates it.
// Callers use it after overwriting an answer on a completed interest.
func (s *service) Invalidate(ctx context.Context, accountID, interestID uuid.UUID) error {
	in, err := s.interests.GetInterestByID(ctx, interestID)
	if err != nil {
		return err
	}

	caller, err := s.profiles.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to resolve caller profile: %w", err)
	}
	if caller.ID != in.RequesterID && caller.ID != in.RecipientID {
		return interest.ErrNotRecipient
	}

	return s.cache.Delete(ctx, interestID)
}

// generate fans the answers out to the judge under one wall-clock bound.
// All judgments must land before aggregation; any failure or timeout
// collapses the whole batch to the degraded fallback.
func (s *service) generate(ctx context.Context, interestID uuid.UUID, answers []*interest.QuestionResponse, recipient *profile.Profile) *FlagAnalysis {
	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	judgments := make([]*Judgment, len(answers))

	g, gctx := errgroup.WithContext(gctx)
	for i, ans := range answers {
		i, ans := i, ans
		g.Go(func() error {
			profileContext := contextForCategory(ans.Category, recipient)
			if profileContext == "" {
				// Nothing stated to compare against; no judge call needed
				judgments[i] = &Judgment{
					Verdict:   VerdictNeutral,
					Rationale: fmt.Sprintf("You have not shared anything on your profile that speaks to %q.", ans.QuestionText),
				}
				return nil
			}

			start := time.Now()
			judgment, err := s.judge.Assess(gctx, &JudgmentRequest{
				ProfileContext: profileContext,
				QuestionText:   ans.QuestionText,
				AnswerText:     ans.AnswerText,
			})
			observeJudgeLatency(time.Since(start))
			if err != nil {
				recordJudgeFailure()
				return err
			}

			judgments[i] = judgment
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("flags: analysis degraded for interest %s: %v", interestID, err)
		recordGenerated("degraded")
		return degradedAnalysis(interestID)
	}

	analysis := &FlagAnalysis{
		InterestID:   interestID,
		GreenFlags:   []string{},
		RedFlags:     []string{},
		NeutralFlags: []string{},
		GeneratedAt:  time.Now().UTC(),
	}

	for _, judgment := range judgments {
		sentence := normalizeTerminology(judgment.Rationale)
		recordVerdict(judgment.Verdict)

		switch judgment.Verdict {
		case VerdictAligned:
			analysis.GreenFlags = append(analysis.GreenFlags, sentence)
		case VerdictContradictory:
			analysis.RedFlags = append(analysis.RedFlags, sentence)
		default:
			analysis.NeutralFlags = append(analysis.NeutralFlags, sentence)
		}
	}

	recordGenerated("ok")
	return analysis
}

func degradedAnalysis(interestID uuid.UUID) *FlagAnalysis {
	return &FlagAnalysis{
		InterestID:   interestID,
		GreenFlags:   []string{},
		RedFlags:     []string{},
		NeutralFlags: []string{"Compatibility analysis is still pending. Please check back shortly."},
		GeneratedAt:  time.Now().UTC(),
		Degraded:     true,
	}
}

// contextForCategory maps an answer's category tag to the recipient
// profile fields it is judged against, joined into one context block.
// Returns "" when every mapped field is empty.
func contextForCategory(category interest.QuestionCategory, p *profile.Profile) string {
	var fields []*string

	switch category {
	case interest.CategoryDeen:
		fields = []*string{p.ReligiousPractice, p.PrayerHabits, p.QuranEngagement, p.IslamicEducation}
	case interest.CategoryLifestyle:
		fields = []*string{p.LifestyleDescription, p.HalalDietNotes, p.SocialHabits}
	case interest.CategoryFitness:
		fields = []*string{p.PersonalityDescription, p.FitnessRoutine, p.HealthNotes}
	case interest.CategoryMaritalLife:
		fields = []*string{p.SpousalExpectations, p.ConflictApproach, p.FamilyRoles}
	case interest.CategoryChildrenLegacy:
		fields = []*string{p.ChildrenVision, p.LegacyPlanning}
	}

	nonEmpty := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != nil && strings.TrimSpace(*f) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(*f))
		}
	}

	return strings.Join(nonEmpty, "\n")
}

// normalizeTerminology rewrites the colloquial "partner" to the preferred
// "spouse" in rationale text before aggregation
func normalizeTerminology(sentence string) string {
	sentence = strings.ReplaceAll(sentence, "partner", "spouse")
	sentence = strings.ReplaceAll(sentence, "Partner", "Spouse")
	return sentence
}
