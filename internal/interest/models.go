// internal/interest/models.go

package interest

import (
	"time"

	"github.com/google/uuid"

	"github.com/zawajlabs/zawaj-backend/internal/profile"
)

// Status is the lifecycle state of an Interest
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// MaxQuestions is the fixed number of screening question slots.
// Each answered slot unlocks PercentPerQuestion of the recipient's profile.
const (
	MaxQuestions       = 5
	PercentPerQuestion = 20
)

// QuestionCategory tags an answer for the flag-analysis pipeline.
// Each slot has a fixed category; the tag is not a business-rule key.
type QuestionCategory string

const (
	CategoryDeen           QuestionCategory = "deen"
	CategoryLifestyle      QuestionCategory = "lifestyle"
	CategoryFitness        QuestionCategory = "fitness"
	CategoryMaritalLife    QuestionCategory = "marital_life"
	CategoryChildrenLegacy QuestionCategory = "children_legacy"
)

// slotCategories maps each question slot to its fixed category tag
var slotCategories = map[int]QuestionCategory{
	1: CategoryDeen,
	2: CategoryLifestyle,
	3: CategoryFitness,
	4: CategoryMaritalLife,
	5: CategoryChildrenLegacy,
}

// CategoryForSlot returns the fixed category tag for a question slot
func CategoryForSlot(questionNumber int) QuestionCategory {
	return slotCategories[questionNumber]
}

// Interest is a directed expression of interest from a requester profile to
// a recipient profile. At most one non-withdrawn record may exist per
// ordered pair; re-expressing after withdrawal reactivates the same record.
type Interest struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	RequesterID       uuid.UUID        `json:"requester_id" db:"requester_id"`
	RequesterCategory profile.Category `json:"requester_category" db:"requester_category"`
	RecipientID       uuid.UUID        `json:"recipient_id" db:"recipient_id"`
	RecipientCategory profile.Category `json:"recipient_category" db:"recipient_category"`
	Status            Status           `json:"status" db:"status"`
	QuestionsAnswered int              `json:"questions_answered" db:"questions_answered"`
	UnlockPercentage  int              `json:"unlock_percentage" db:"unlock_percentage"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

// Active reports whether the interest still represents a live relationship
func (i *Interest) Active() bool {
	return i.Status == StatusPending || i.Status == StatusAccepted
}

// Complete reports whether all screening questions have been answered
func (i *Interest) Complete() bool {
	return i.QuestionsAnswered == MaxQuestions
}

// QuestionResponse is one answer to a screening question slot, unique per
// (interest, question_number). The question text is captured at answer time.
type QuestionResponse struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	InterestID     uuid.UUID        `json:"interest_id" db:"interest_id"`
	QuestionNumber int              `json:"question_number" db:"question_number"`
	QuestionText   string           `json:"question_text" db:"question_text"`
	AnswerText     string           `json:"answer_text" db:"answer_text"`
	Category       QuestionCategory `json:"category" db:"category"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}
