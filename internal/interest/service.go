// internal/interest/service.go

package interest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/zawajlabs/zawaj-backend/internal/profile"
)

// ProfileDirectory is the slice of the profile service this package needs
type ProfileDirectory interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	GetProfileByAccount(ctx context.Context, accountID uuid.UUID) (*profile.Profile, error)
	GetWaliContact(ctx context.Context, profileID uuid.UUID) (*profile.WaliContact, error)
}

// Notifier posts notifications for interest transitions. Dispatch runs only
// after the durable mutation has committed and is best-effort: failures are
// logged, never propagated, and never roll back the transition.
type Notifier interface {
	InterestExpressed(ctx context.Context, recipientAccountID, interestID, requesterProfileID uuid.UUID) error
	QuestionsProgress(ctx context.Context, recipientAccountID, interestID uuid.UUID, percentage int) error
	QuestionsCompleted(ctx context.Context, recipientAccountID, interestID uuid.UUID) error
	InterestAccepted(ctx context.Context, requesterAccountID, interestID uuid.UUID) error
	InterestRejected(ctx context.Context, requesterAccountID, interestID uuid.UUID) error
	WaliContactUnlocked(ctx context.Context, accountID, interestID uuid.UUID) error
}

type Service interface {
	ExpressInterest(ctx context.Context, requesterAccountID, recipientProfileID uuid.UUID) (*Interest, error)
	SubmitAnswer(ctx context.Context, requesterAccountID, interestID uuid.UUID, req *SubmitAnswerRequest) (*Interest, error)
	Withdraw(ctx context.Context, requesterAccountID, interestID uuid.UUID) error
	Accept(ctx context.Context, recipientAccountID, interestID uuid.UUID) error
	Reject(ctx context.Context, recipientAccountID, interestID uuid.UUID) error

	GetInterest(ctx context.Context, requesterProfileID, recipientProfileID uuid.UUID) (*Interest, error)
	GetInterestByID(ctx context.Context, id uuid.UUID) (*Interest, error)
	GetAnswers(ctx context.Context, accountID, interestID uuid.UUID) ([]*QuestionResponse, error)
	ListSent(ctx context.Context, accountID uuid.UUID) ([]*Interest, error)
	ListReceived(ctx context.Context, accountID uuid.UUID) ([]*Interest, error)

	ViewProfile(ctx context.Context, viewerAccountID, targetProfileID uuid.UUID) (*ProfileView, error)
	GetWaliContact(ctx context.Context, viewerAccountID, targetProfileID uuid.UUID) (*profile.WaliContact, error)
}

type service struct {
	repo     Repository
	profiles ProfileDirectory
	notifier Notifier

	// Serializes mutations per interest id so the recount in SaveAnswer and
	// the status transitions never race each other for the same record
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(repo Repository, profiles ProfileDirectory, notifier Notifier) Service {
	return &service{
		repo:     repo,
		profiles: profiles,
		notifier: notifier,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *service) interestLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// dispatch runs a notification call and swallows its error. Notifications
// must never fail or block the primary state transition.
func (s *service) dispatch(event string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("interest: %s notification failed: %v", event, err)
	}
}

func (s *service) ExpressInterest(ctx context.Context, requesterAccountID, recipientProfileID uuid.UUID) (*Interest, error) {
	if recipientProfileID == uuid.Nil {
		return nil, &ValidationError{Field: "recipient_profile_id", Reason: "must not be empty"}
	}

	requester, err := s.profiles.GetProfileByAccount(ctx, requesterAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve requester profile: %w", err)
	}

	recipient, err := s.profiles.GetProfile(ctx, recipientProfileID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient profile: %w", err)
	}

	if requester.ID == recipient.ID {
		return nil, &ValidationError{Field: "recipient_profile_id", Reason: "cannot express interest in your own profile"}
	}
	if requester.Category == recipient.Category {
		return nil, &ValidationError{Field: "recipient_profile_id", Reason: "requester and recipient categories must differ"}
	}

	existing, err := s.repo.GetInterestByPair(ctx, requester.ID, recipient.ID)
	switch {
	case errors.Is(err, ErrInterestNotFound):
		created := &Interest{
			ID:                uuid.New(),
			RequesterID:       requester.ID,
			RequesterCategory: requester.Category,
			RecipientID:       recipient.ID,
			RecipientCategory: recipient.Category,
			Status:            StatusPending,
		}
		if err := s.repo.CreateInterest(ctx, created); err != nil {
			return nil, fmt.Errorf("failed to create interest: %w", err)
		}

		recordExpressed("created")
		s.dispatch("interest_expressed", func() error {
			return s.notifier.InterestExpressed(ctx, recipient.AccountID, created.ID, requester.ID)
		})
		return created, nil

	case err != nil:
		return nil, fmt.Errorf("failed to look up interest: %w", err)
	}

	if existing.Status != StatusWithdrawn {
		// Idempotent: an active (or rejected) interest already exists
		recordExpressed("existing")
		return existing, nil
	}

	// Revive the withdrawn record, keeping its id and answered questions
	rows, err := s.repo.UpdateStatus(ctx, existing.ID, []Status{StatusWithdrawn}, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to reactivate interest: %w", err)
	}
	if rows == 0 {
		// Lost a race with another re-expression; return the current record
		return s.repo.GetInterestByID(ctx, existing.ID)
	}

	existing.Status = StatusPending
	recordExpressed("reactivated")
	s.dispatch("interest_expressed", func() error {
		return s.notifier.InterestExpressed(ctx, recipient.AccountID, existing.ID, requester.ID)
	})

	return existing, nil
}

func (s *service) SubmitAnswer(ctx context.Context, requesterAccountID, interestID uuid.UUID, req *SubmitAnswerRequest) (*Interest, error) {
	if req.QuestionNumber < 1 || req.QuestionNumber > MaxQuestions {
		return nil, &ValidationError{Field: "question_number", Reason: fmt.Sprintf("must be between 1 and %d", MaxQuestions)}
	}
	if req.AnswerText == "" {
		return nil, &ValidationError{Field: "answer_text", Reason: "must not be empty"}
	}
	if req.QuestionText == "" {
		return nil, &ValidationError{Field: "question_text", Reason: "must not be empty"}
	}

	lock := s.interestLock(interestID)
	lock.Lock()
	defer lock.Unlock()

	in, err := s.repo.GetInterestByID(ctx, interestID)
	if err != nil {
		return nil, err
	}

	requester, err := s.profiles.GetProfileByAccount(ctx, requesterAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve requester profile: %w", err)
	}
	if in.RequesterID != requester.ID {
		return nil, ErrNotRequester
	}

	if !in.Active() {
		return nil, &PreconditionFailedError{Reason: "Answers cannot be submitted on a withdrawn or rejected interest"}
	}

	previousCount := in.QuestionsAnswered

	resp := &QuestionResponse{
		ID:             uuid.New(),
		InterestID:     in.ID,
		QuestionNumber: req.QuestionNumber,
		QuestionText:   req.QuestionText,
		AnswerText:     req.AnswerText,
		Category:       CategoryForSlot(req.QuestionNumber),
	}

	count, err := s.repo.SaveAnswer(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	in.QuestionsAnswered = count
	in.UnlockPercentage = count * PercentPerQuestion
	recordAnswer()

	// Notify only when the count actually advanced; overwriting an already
	// answered slot changes nothing the recipient needs to hear about
	if count != previousCount {
		recipient, perr := s.profiles.GetProfile(ctx, in.RecipientID)
		if perr != nil {
			log.Printf("interest: failed to resolve recipient for notification: %v", perr)
			return in, nil
		}

		switch {
		case count == MaxQuestions:
			recordCompletion()
			s.dispatch("questions_completed", func() error {
				return s.notifier.QuestionsCompleted(ctx, recipient.AccountID, in.ID)
			})
		case count >= 2:
			s.dispatch("questions_progress", func() error {
				return s.notifier.QuestionsProgress(ctx, recipient.AccountID, in.ID, in.UnlockPercentage)
			})
		}
	}

	return in, nil
}

func (s *service) Withdraw(ctx context.Context, requesterAccountID, interestID uuid.UUID) error {
	lock := s.interestLock(interestID)
	lock.Lock()
	defer lock.Unlock()

	in, err := s.repo.GetInterestByID(ctx, interestID)
	if err != nil {
		return err
	}

	requester, err := s.profiles.GetProfileByAccount(ctx, requesterAccountID)
	if err != nil {
		return fmt.Errorf("failed to resolve requester profile: %w", err)
	}
	if in.RequesterID != requester.ID {
		return ErrNotRequester
	}

	if in.UnlockPercentage == MaxQuestions*PercentPerQuestion {
		return &PreconditionFailedError{Reason: "Interest cannot be withdrawn after all screening questions are answered"}
	}

	rows, err := s.repo.UpdateStatus(ctx, in.ID, []Status{StatusPending, StatusAccepted}, StatusWithdrawn)
	if err != nil {
		return fmt.Errorf("failed to withdraw interest: %w", err)
	}
	if rows == 0 {
		return &PreconditionFailedError{Reason: "Interest is not active"}
	}

	recordTransition(StatusWithdrawn)
	return nil
}

func (s *service) Accept(ctx context.Context, recipientAccountID, interestID uuid.UUID) error {
	lock := s.interestLock(interestID)
	lock.Lock()
	defer lock.Unlock()

	in, err := s.repo.GetInterestByID(ctx, interestID)
	if err != nil {
		return err
	}

	recipient, err := s.profiles.GetProfileByAccount(ctx, recipientAccountID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient profile: %w", err)
	}
	if in.RecipientID != recipient.ID {
		return ErrNotRecipient
	}

	rows, err := s.repo.UpdateStatus(ctx, in.ID, []Status{StatusPending}, StatusAccepted)
	if err != nil {
		return fmt.Errorf("failed to accept interest: %w", err)
	}
	if rows == 0 {
		// The update matched nothing: either an authorization-layer denial
		// or the interest already left pending. Surface it, never no-op.
		return &PreconditionFailedError{Reason: "Interest is not pending"}
	}

	in.Status = StatusAccepted
	recordTransition(StatusAccepted)

	requester, perr := s.profiles.GetProfile(ctx, in.RequesterID)
	if perr != nil {
		log.Printf("interest: failed to resolve requester for notification: %v", perr)
		return nil
	}

	s.dispatch("interest_accepted", func() error {
		return s.notifier.InterestAccepted(ctx, requester.AccountID, in.ID)
	})

	// Acceptance may have completed mutuality; if so the permitted
	// initiator side learns the wali contact is now available
	theirs, terr := s.repo.GetInterestByPair(ctx, in.RecipientID, in.RequesterID)
	if terr == nil && mutuallyAccepted(in, theirs) {
		recordWaliUnlock()

		brotherAccount := requester.AccountID
		if in.RequesterCategory != profile.CategoryBrother {
			brotherAccount = recipient.AccountID
		}
		s.dispatch("wali_contact_unlocked", func() error {
			return s.notifier.WaliContactUnlocked(ctx, brotherAccount, in.ID)
		})
	}

	return nil
}

func (s *service) Reject(ctx context.Context, recipientAccountID, interestID uuid.UUID) error {
	lock := s.interestLock(interestID)
	lock.Lock()
	defer lock.Unlock()

	in, err := s.repo.GetInterestByID(ctx, interestID)
	if err != nil {
		return err
	}

	recipient, err := s.profiles.GetProfileByAccount(ctx, recipientAccountID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient profile: %w", err)
	}
	if in.RecipientID != recipient.ID {
		return ErrNotRecipient
	}

	rows, err := s.repo.UpdateStatus(ctx, in.ID, []Status{StatusPending, StatusAccepted}, StatusRejected)
	if err != nil {
		return fmt.Errorf("failed to reject interest: %w", err)
	}
	if rows == 0 {
		return &PreconditionFailedError{Reason: "Interest is not active"}
	}

	recordTransition(StatusRejected)

	requester, perr := s.profiles.GetProfile(ctx, in.RequesterID)
	if perr != nil {
		log.Printf("interest: failed to resolve requester for notification: %v", perr)
		return nil
	}

	s.dispatch("interest_rejected", func() error {
		return s.notifier.InterestRejected(ctx, requester.AccountID, in.ID)
	})

	return nil
}

// GetInterest returns the interest for the exact ordered pair, or nil when
// none exists. Lookup-style call: absence is not an error.
func (s *service) GetInterest(ctx context.Context, requesterProfileID, recipientProfileID uuid.UUID) (*Interest, error) {
	in, err := s.repo.GetInterestByPair(ctx, requesterProfileID, recipientProfileID)
	if errors.Is(err, ErrInterestNotFound) {
		return nil, nil
	}
	return in, err
}

func (s *service) GetInterestByID(ctx context.Context, id uuid.UUID) (*Interest, error) {
	return s.repo.GetInterestByID(ctx, id)
}

// GetAnswers returns the stored responses for an interest. Both
// participants may read them; the recipient needs them for flag analysis.
func (s *service) GetAnswers(ctx context.Context, accountID, interestID uuid.UUID) ([]*QuestionResponse, error) {
	in, err := s.repo.GetInterestByID(ctx, interestID)
	if err != nil {
		return nil, err
	}

	caller, err := s.profiles.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller profile: %w", err)
	}
	if caller.ID != in.RequesterID && caller.ID != in.RecipientID {
		return nil, ErrNotRecipient
	}

	return s.repo.GetAnswers(ctx, interestID)
}

func (s *service) ListSent(ctx context.Context, accountID uuid.UUID) ([]*Interest, error) {
	caller, err := s.profiles.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller profile: %w", err)
	}
	return s.repo.ListSent(ctx, caller.ID)
}

func (s *service) ListReceived(ctx context.Context, accountID uuid.UUID) ([]*Interest, error) {
	caller, err := s.profiles.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller profile: %w", err)
	}
	return s.repo.ListReceived(ctx, caller.ID)
}

// pairInterest loads one direction of the pair, mapping absence to nil and
// any other failure to an error so access resolution can fail closed
func (s *service) pairInterest(ctx context.Context, requesterID, recipientID uuid.UUID) (*Interest, error) {
	in, err := s.repo.GetInterestByPair(ctx, requesterID, recipientID)
	if errors.Is(err, ErrInterestNotFound) {
		return nil, nil
	}
	return in, err
}

// ViewProfile renders the target profile through the viewer's access grant.
// This is a read path backing UI rendering: it degrades to basic info on
// resolver failures instead of erroring.
func (s *service) ViewProfile(ctx context.Context, viewerAccountID, targetProfileID uuid.UUID) (*ProfileView, error) {
	viewer, err := s.profiles.GetProfileByAccount(ctx, viewerAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve viewer profile: %w", err)
	}

	target, err := s.profiles.GetProfile(ctx, targetProfileID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to resolve target profile: %w", err)
	}

	grant := s.resolveGrant(ctx, viewer, target)
	return RenderProfile(target, grant), nil
}

// resolveGrant computes the viewer's grant, failing closed to basic info
// when either interest lookup errors
func (s *service) resolveGrant(ctx context.Context, viewer, target *profile.Profile) *ProfileAccessGrant {
	mine, err := s.pairInterest(ctx, viewer.ID, target.ID)
	if err != nil {
		log.Printf("interest: access resolution failed, defaulting to basic: %v", err)
		return basicGrant("Profile access could not be resolved")
	}

	theirs, err := s.pairInterest(ctx, target.ID, viewer.ID)
	if err != nil {
		log.Printf("interest: access resolution failed, defaulting to basic: %v", err)
		return basicGrant("Profile access could not be resolved")
	}

	return ResolveAccess(mine, theirs, viewer.Category)
}

// GetWaliContact returns the target's guardian contact when, and only when,
// the disclosure policy grants it. Any resolution failure yields none.
func (s *service) GetWaliContact(ctx context.Context, viewerAccountID, targetProfileID uuid.UUID) (*profile.WaliContact, error) {
	viewer, err := s.profiles.GetProfileByAccount(ctx, viewerAccountID)
	if err != nil {
		return nil, nil
	}

	target, err := s.profiles.GetProfile(ctx, targetProfileID)
	if err != nil {
		return nil, nil
	}

	grant := s.resolveGrant(ctx, viewer, target)
	if !grant.CanViewWaliContact {
		return nil, nil
	}

	wali, err := s.profiles.GetWaliContact(ctx, target.ID)
	if err != nil {
		log.Printf("interest: wali contact fetch failed: %v", err)
		return nil, nil
	}

	return wali, nil
}
