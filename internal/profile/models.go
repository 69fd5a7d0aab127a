// internal/profile/models.go

package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Category distinguishes the two participant kinds. Interest and disclosure
// logic is category-agnostic; only the wali-contact initiator rule and the
// profile field tables consume it.
type Category string

const (
	CategoryBrother Category = "brother"
	CategorySister  Category = "sister"
)

// Valid reports whether c is one of the two known categories
func (c Category) Valid() bool {
	return c == CategoryBrother || c == CategorySister
}

// Opposite returns the other participant category
func (c Category) Opposite() Category {
	if c == CategoryBrother {
		return CategorySister
	}
	return CategoryBrother
}

// Profile represents a matrimonial profile. Basic-info fields are
// discoverable by any authenticated viewer; the section fields below them
// are disclosed progressively through the interest flow.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	Category  Category  `json:"category" db:"category"`

	// Basic info (always discoverable)
	DisplayName   string  `json:"display_name" db:"display_name"`
	Age           int     `json:"age" db:"age"`
	City          *string `json:"city,omitempty" db:"city"`
	Country       *string `json:"country,omitempty" db:"country"`
	Ethnicity     *string `json:"ethnicity,omitempty" db:"ethnicity"`
	MaritalStatus *string `json:"marital_status,omitempty" db:"marital_status"`
	AboutMe       *string `json:"about_me,omitempty" db:"about_me"`

	// Religious practice / prayer life
	ReligiousPractice *string `json:"religious_practice,omitempty" db:"religious_practice"`
	PrayerHabits      *string `json:"prayer_habits,omitempty" db:"prayer_habits"`
	QuranEngagement   *string `json:"quran_engagement,omitempty" db:"quran_engagement"`
	IslamicEducation  *string `json:"islamic_education,omitempty" db:"islamic_education"`

	// Lifestyle / halal living
	LifestyleDescription *string `json:"lifestyle_description,omitempty" db:"lifestyle_description"`
	HalalDietNotes       *string `json:"halal_diet_notes,omitempty" db:"halal_diet_notes"`
	SocialHabits         *string `json:"social_habits,omitempty" db:"social_habits"`

	// Personality / fitness
	PersonalityDescription *string `json:"personality_description,omitempty" db:"personality_description"`
	FitnessRoutine         *string `json:"fitness_routine,omitempty" db:"fitness_routine"`
	HealthNotes            *string `json:"health_notes,omitempty" db:"health_notes"`

	// Marital expectations / conflict resolution
	SpousalExpectations *string `json:"spousal_expectations,omitempty" db:"spousal_expectations"`
	ConflictApproach    *string `json:"conflict_approach,omitempty" db:"conflict_approach"`
	FamilyRoles         *string `json:"family_roles,omitempty" db:"family_roles"`

	// Children / legacy planning
	ChildrenVision *string `json:"children_vision,omitempty" db:"children_vision"`
	LegacyPlanning *string `json:"legacy_planning,omitempty" db:"legacy_planning"`

	// The five screening questions this profile poses to interested parties
	ScreeningQuestions pq.StringArray `json:"screening_questions" db:"screening_questions"`

	// Sensitive wali (guardian) contact, disclosed only under the
	// mutual-acceptance policy. Never serialized with the profile itself.
	Wali WaliContact `json:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WaliContact is the guardian/representative contact sub-record
type WaliContact struct {
	Name         *string `json:"name,omitempty" db:"wali_name"`
	Relationship *string `json:"relationship,omitempty" db:"wali_relationship"`
	Phone        *string `json:"phone,omitempty" db:"wali_phone"`
	Email        *string `json:"email,omitempty" db:"wali_email"`
}

// Empty reports whether no contact details are present
func (w WaliContact) Empty() bool {
	return w.Name == nil && w.Relationship == nil && w.Phone == nil && w.Email == nil
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	DisplayName   *string `json:"display_name" validate:"omitempty,min=2,max=100"`
	City          *string `json:"city" validate:"omitempty,max=100"`
	Country       *string `json:"country" validate:"omitempty,max=100"`
	Ethnicity     *string `json:"ethnicity" validate:"omitempty,max=100"`
	MaritalStatus *string `json:"marital_status" validate:"omitempty,oneof=single divorced widowed"`
	AboutMe       *string `json:"about_me" validate:"omitempty,max=1000"`

	ReligiousPractice *string `json:"religious_practice" validate:"omitempty,max=1000"`
	PrayerHabits      *string `json:"prayer_habits" validate:"omitempty,max=1000"`
	QuranEngagement   *string `json:"quran_engagement" validate:"omitempty,max=1000"`
	IslamicEducation  *string `json:"islamic_education" validate:"omitempty,max=1000"`

	LifestyleDescription *string `json:"lifestyle_description" validate:"omitempty,max=1000"`
	HalalDietNotes       *string `json:"halal_diet_notes" validate:"omitempty,max=1000"`
	SocialHabits         *string `json:"social_habits" validate:"omitempty,max=1000"`

	PersonalityDescription *string `json:"personality_description" validate:"omitempty,max=1000"`
	FitnessRoutine         *string `json:"fitness_routine" validate:"omitempty,max=1000"`
	HealthNotes            *string `json:"health_notes" validate:"omitempty,max=1000"`

	SpousalExpectations *string `json:"spousal_expectations" validate:"omitempty,max=1000"`
	ConflictApproach    *string `json:"conflict_approach" validate:"omitempty,max=1000"`
	FamilyRoles         *string `json:"family_roles" validate:"omitempty,max=1000"`

	ChildrenVision *string `json:"children_vision" validate:"omitempty,max=1000"`
	LegacyPlanning *string `json:"legacy_planning" validate:"omitempty,max=1000"`
}

// UpdateQuestionsRequest replaces the profile's five screening questions
type UpdateQuestionsRequest struct {
	Questions []string `json:"questions" validate:"required,len=5,dive,min=5,max=300"`
}

// UpdateWaliRequest updates the guardian contact sub-record
type UpdateWaliRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=100"`
	Relationship *string `json:"relationship" validate:"omitempty,max=50"`
	Phone        *string `json:"phone" validate:"omitempty,max=30"`
	Email        *string `json:"email" validate:"omitempty,email,max=200"`
}
