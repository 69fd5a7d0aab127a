// internal/notifications/notifier.go

package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InterestNotifier translates interest lifecycle events into stored
// notifications. Method signatures take plain identifiers so the producer
// package does not depend on this one.
type InterestNotifier struct {
	service Service
}

func NewInterestNotifier(service Service) *InterestNotifier {
	return &InterestNotifier{service: service}
}

func (n *InterestNotifier) InterestExpressed(ctx context.Context, recipientAccountID, interestID, requesterProfileID uuid.UUID) error {
	return n.service.CreateNotification(ctx, &Notification{
		AccountID: recipientAccountID,
		Type:      TypeInterestExpressed,
		Title:     "Someone has expressed interest in you",
		Message:   "A member has expressed interest in your profile. Their answers will unlock their profile for you step by step.",
		Data:      InterestExpressedPayload{InterestID: interestID, RequesterProfileID: requesterProfileID}.Data(),
	})
}

func (n *InterestNotifier) QuestionsProgress(ctx context.Context, recipientAccountID, interestID uuid.UUID, percentage int) error {
	return n.service.CreateNotification(ctx, &Notification{
		AccountID: recipientAccountID,
		Type:      TypeQuestionsProgress,
		Title:     "Screening progress update",
		Message:   fmt.Sprintf("An interested member has now answered %d%% of your screening questions.", percentage),
		Data:      QuestionsProgressPayload{InterestID: interestID, UnlockPercentage: percentage}.Data(),
	})
}

func (n *InterestNotifier) QuestionsCompleted(ctx context.Context, recipientAccountID, interestID uuid.UUID) error {
	return n.service.CreateNotification(ctx, &Notification{
		AccountID: recipientAccountID,
		Type:      TypeQuestionsCompleted,
		Title:     "All screening questions answered",
		Message:   "An interested member has answered all of your screening questions. Review their answers and respond.",
		Data:      InterestEventPayload{InterestID: interestID}.Data(),
	})
}

func (n *InterestNotifier) InterestAccepted(ctx context.Context, requesterAccountID, interestID uuid.UUID) error {
	return n.service.CreateNotification(ctx, &Notification{
		AccountID: requesterAccountID,
		Type:      TypeInterestAccepted,
		Title:     "Your interest was accepted",
		Message:   "The member you expressed interest in has accepted. Keep going to complete the process.",
		Data:      InterestEventPayload{InterestID: interestID}.Data(),
	})
}

func (n *InterestNotifier) InterestRejected(ctx context.Context, requesterAccountID, interestID uuid.UUID) error {
	return n.service.CreateNotification(ctx, &Notification{
		AccountID: requesterAccountID,
		Type:      TypeInterestRejected,
		Title:     "An update on your interest",
		Message:   "The member you expressed interest in has decided not to proceed.",
		Data:      InterestEventPayload{InterestID: interestID}.Data(),
	})
}

func (n *InterestNotifier) WaliContactUnlocked(ctx context.Context, accountID, interestID uuid.UUID) error {
	return n.service.CreateNotification(ctx, &Notification{
		AccountID: accountID,
		Type:      TypeWaliContactUnlocked,
		Title:     "Wali contact unlocked",
		Message:   "Your match is mutual and fully screened. You may now view the wali contact details and reach out.",
		Data:      InterestEventPayload{InterestID: interestID}.Data(),
	})
}
