// internal/interest/dto.go

package interest

type ExpressInterestRequest struct {
	RecipientProfileID string `json:"recipient_profile_id" validate:"required,uuid"`
}

type SubmitAnswerRequest struct {
	QuestionNumber int    `json:"question_number" validate:"required,min=1,max=5"`
	QuestionText   string `json:"question_text" validate:"required,min=1,max=500"`
	AnswerText     string `json:"answer_text" validate:"required,min=1,max=2000"`
}
