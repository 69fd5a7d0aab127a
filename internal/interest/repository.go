// internal/interest/repository.go

package interest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Interests
	CreateInterest(ctx context.Context, in *Interest) error
	GetInterestByID(ctx context.Context, id uuid.UUID) (*Interest, error)
	GetInterestByPair(ctx context.Context, requesterID, recipientID uuid.UUID) (*Interest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, to Status) (int64, error)
	ListSent(ctx context.Context, requesterID uuid.UUID) ([]*Interest, error)
	ListReceived(ctx context.Context, recipientID uuid.UUID) ([]*Interest, error)

	// Answers. SaveAnswer upserts the response and recounts the interest's
	// answered slots in one transaction so unlock_percentage never drifts
	// from the stored responses.
	SaveAnswer(ctx context.Context, resp *QuestionResponse) (int, error)
	GetAnswers(ctx context.Context, interestID uuid.UUID) ([]*QuestionResponse, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const interestColumns = `
	id, requester_id, requester_category, recipient_id, recipient_category,
	status, questions_answered, unlock_percentage, created_at, updated_at`

func (r *postgresRepository) CreateInterest(ctx context.Context, in *Interest) error {
	query := `
		INSERT INTO interests (
			id, requester_id, requester_category, recipient_id, recipient_category,
			status, questions_answered, unlock_percentage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (requester_id, recipient_id) DO NOTHING
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		in.ID, in.RequesterID, in.RequesterCategory,
		in.RecipientID, in.RecipientCategory,
		in.Status, in.QuestionsAnswered, in.UnlockPercentage,
	).Scan(&in.CreatedAt, &in.UpdatedAt)

	// A concurrent ExpressInterest won the insert; surface the existing row
	if errors.Is(err, sql.ErrNoRows) {
		existing, gerr := r.GetInterestByPair(ctx, in.RequesterID, in.RecipientID)
		if gerr != nil {
			return gerr
		}
		*in = *existing
		return nil
	}

	return err
}

func (r *postgresRepository) GetInterestByID(ctx context.Context, id uuid.UUID) (*Interest, error) {
	var in Interest
	query := `SELECT ` + interestColumns + ` FROM interests WHERE id = $1`

	err := r.db.GetContext(ctx, &in, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInterestNotFound
	}
	if err != nil {
		return nil, err
	}

	return &in, nil
}

func (r *postgresRepository) GetInterestByPair(ctx context.Context, requesterID, recipientID uuid.UUID) (*Interest, error) {
	var in Interest
	query := `SELECT ` + interestColumns + ` FROM interests WHERE requester_id = $1 AND recipient_id = $2`

	err := r.db.GetContext(ctx, &in, query, requesterID, recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInterestNotFound
	}
	if err != nil {
		return nil, err
	}

	return &in, nil
}

// UpdateStatus moves the interest to a new status only when its current
// status is one of from, and reports how many rows changed. Callers use the
// zero-rows case to surface precondition failures instead of silent no-ops.
func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, to Status) (int64, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	query, args, err := sqlx.In(`
		UPDATE interests
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN (?)`,
		string(to), id, statuses,
	)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *postgresRepository) ListSent(ctx context.Context, requesterID uuid.UUID) ([]*Interest, error) {
	var interests []*Interest
	query := `
		SELECT ` + interestColumns + `
		FROM interests
		WHERE requester_id = $1
		ORDER BY updated_at DESC`

	if err := r.db.SelectContext(ctx, &interests, query, requesterID); err != nil {
		return nil, err
	}

	return interests, nil
}

// ListReceived excludes withdrawn and rejected interests so the recipient's
// inbox only carries live relationships.
func (r *postgresRepository) ListReceived(ctx context.Context, recipientID uuid.UUID) ([]*Interest, error) {
	var interests []*Interest
	query := `
		SELECT ` + interestColumns + `
		FROM interests
		WHERE recipient_id = $1 AND status IN ('pending', 'accepted')
		ORDER BY updated_at DESC`

	if err := r.db.SelectContext(ctx, &interests, query, recipientID); err != nil {
		return nil, err
	}

	return interests, nil
}

func (r *postgresRepository) SaveAnswer(ctx context.Context, resp *QuestionResponse) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO question_responses (
			id, interest_id, question_number, question_text, answer_text, category
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (interest_id, question_number)
		DO UPDATE SET question_text = $4, answer_text = $5, category = $6,
		              updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowxContext(
		ctx, upsert,
		resp.ID, resp.InterestID, resp.QuestionNumber,
		resp.QuestionText, resp.AnswerText, resp.Category,
	).Scan(&resp.ID, &resp.CreatedAt, &resp.UpdatedAt)
	if err != nil {
		return 0, err
	}

	// Recount rather than increment: tolerates repeated and out-of-order
	// submissions, and keeps unlock_percentage a pure function of the count
	var count int
	if err := tx.GetContext(ctx, &count, `
		SELECT COUNT(DISTINCT question_number)
		FROM question_responses
		WHERE interest_id = $1`, resp.InterestID,
	); err != nil {
		return 0, err
	}

	update := `
		UPDATE interests
		SET questions_answered = $2, unlock_percentage = $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := tx.ExecContext(ctx, update, resp.InterestID, count, count*PercentPerQuestion)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, ErrInterestNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit answer: %w", err)
	}

	return count, nil
}

func (r *postgresRepository) GetAnswers(ctx context.Context, interestID uuid.UUID) ([]*QuestionResponse, error) {
	var answers []*QuestionResponse
	query := `
		SELECT id, interest_id, question_number, question_text, answer_text,
		       category, created_at, updated_at
		FROM question_responses
		WHERE interest_id = $1
		ORDER BY question_number`

	if err := r.db.SelectContext(ctx, &answers, query, interestID); err != nil {
		return nil, err
	}

	return answers, nil
}
