// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetProfileByAccount(ctx context.Context, accountID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, p *Profile) error
	UpdateScreeningQuestions(ctx context.Context, id uuid.UUID, questions []string) error
	UpdateWaliContact(ctx context.Context, id uuid.UUID, wali *WaliContact) error
	GetWaliContact(ctx context.Context, id uuid.UUID) (*WaliContact, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `
	id, account_id, category, display_name, age, city, country, ethnicity,
	marital_status, about_me,
	religious_practice, prayer_habits, quran_engagement, islamic_education,
	lifestyle_description, halal_diet_notes, social_habits,
	personality_description, fitness_routine, health_notes,
	spousal_expectations, conflict_approach, family_roles,
	children_vision, legacy_planning,
	screening_questions, created_at, updated_at`

func (r *postgresRepository) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *postgresRepository) GetProfileByAccount(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	var p Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE account_id = $1`

	err := r.db.GetContext(ctx, &p, query, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, p *Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $2, city = $3, country = $4, ethnicity = $5,
		    marital_status = $6, about_me = $7,
		    religious_practice = $8, prayer_habits = $9,
		    quran_engagement = $10, islamic_education = $11,
		    lifestyle_description = $12, halal_diet_notes = $13, social_habits = $14,
		    personality_description = $15, fitness_routine = $16, health_notes = $17,
		    spousal_expectations = $18, conflict_approach = $19, family_roles = $20,
		    children_vision = $21, legacy_planning = $22,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		p.ID, p.DisplayName, p.City, p.Country, p.Ethnicity,
		p.MaritalStatus, p.AboutMe,
		p.ReligiousPractice, p.PrayerHabits,
		p.QuranEngagement, p.IslamicEducation,
		p.LifestyleDescription, p.HalalDietNotes, p.SocialHabits,
		p.PersonalityDescription, p.FitnessRoutine, p.HealthNotes,
		p.SpousalExpectations, p.ConflictApproach, p.FamilyRoles,
		p.ChildrenVision, p.LegacyPlanning,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProfileNotFound
	}

	return err
}

func (r *postgresRepository) UpdateScreeningQuestions(ctx context.Context, id uuid.UUID, questions []string) error {
	query := `
		UPDATE profiles
		SET screening_questions = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, pq.StringArray(questions))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *postgresRepository) UpdateWaliContact(ctx context.Context, id uuid.UUID, wali *WaliContact) error {
	query := `
		UPDATE profiles
		SET wali_name = $2, wali_relationship = $3, wali_phone = $4,
		    wali_email = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, wali.Name, wali.Relationship, wali.Phone, wali.Email)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *postgresRepository) GetWaliContact(ctx context.Context, id uuid.UUID) (*WaliContact, error) {
	var wali WaliContact
	query := `
		SELECT wali_name, wali_relationship, wali_phone, wali_email
		FROM profiles
		WHERE id = $1`

	err := r.db.GetContext(ctx, &wali, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &wali, nil
}
