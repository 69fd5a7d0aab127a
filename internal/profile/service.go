// internal/profile/service.go

package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotOwner        = errors.New("profile does not belong to this account")
)

type Service interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetProfileByAccount(ctx context.Context, accountID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, req *UpdateProfileRequest) (*Profile, error)
	UpdateScreeningQuestions(ctx context.Context, accountID uuid.UUID, questions []string) error
	UpdateWaliContact(ctx context.Context, accountID uuid.UUID, req *UpdateWaliRequest) error
	GetWaliContact(ctx context.Context, profileID uuid.UUID) (*WaliContact, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetProfile(ctx, id)
}

func (s *service) GetProfileByAccount(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	return s.repo.GetProfileByAccount(ctx, accountID)
}

func (s *service) UpdateProfile(ctx context.Context, accountID uuid.UUID, req *UpdateProfileRequest) (*Profile, error) {
	p, err := s.repo.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.City != nil {
		p.City = req.City
	}
	if req.Country != nil {
		p.Country = req.Country
	}
	if req.Ethnicity != nil {
		p.Ethnicity = req.Ethnicity
	}
	if req.MaritalStatus != nil {
		p.MaritalStatus = req.MaritalStatus
	}
	if req.AboutMe != nil {
		p.AboutMe = req.AboutMe
	}
	if req.ReligiousPractice != nil {
		p.ReligiousPractice = req.ReligiousPractice
	}
	if req.PrayerHabits != nil {
		p.PrayerHabits = req.PrayerHabits
	}
	if req.QuranEngagement != nil {
		p.QuranEngagement = req.QuranEngagement
	}
	if req.IslamicEducation != nil {
		p.IslamicEducation = req.IslamicEducation
	}
	if req.LifestyleDescription != nil {
		p.LifestyleDescription = req.LifestyleDescription
	}
	if req.HalalDietNotes != nil {
		p.HalalDietNotes = req.HalalDietNotes
	}
	if req.SocialHabits != nil {
		p.SocialHabits = req.SocialHabits
	}
	if req.PersonalityDescription != nil {
		p.PersonalityDescription = req.PersonalityDescription
	}
	if req.FitnessRoutine != nil {
		p.FitnessRoutine = req.FitnessRoutine
	}
	if req.HealthNotes != nil {
		p.HealthNotes = req.HealthNotes
	}
	if req.SpousalExpectations != nil {
		p.SpousalExpectations = req.SpousalExpectations
	}
	if req.ConflictApproach != nil {
		p.ConflictApproach = req.ConflictApproach
	}
	if req.FamilyRoles != nil {
		p.FamilyRoles = req.FamilyRoles
	}
	if req.ChildrenVision != nil {
		p.ChildrenVision = req.ChildrenVision
	}
	if req.LegacyPlanning != nil {
		p.LegacyPlanning = req.LegacyPlanning
	}

	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *service) UpdateScreeningQuestions(ctx context.Context, accountID uuid.UUID, questions []string) error {
	p, err := s.repo.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return err
	}

	return s.repo.UpdateScreeningQuestions(ctx, p.ID, questions)
}

func (s *service) UpdateWaliContact(ctx context.Context, accountID uuid.UUID, req *UpdateWaliRequest) error {
	p, err := s.repo.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return err
	}

	wali := &WaliContact{
		Name:         req.Name,
		Relationship: req.Relationship,
		Phone:        req.Phone,
		Email:        req.Email,
	}

	return s.repo.UpdateWaliContact(ctx, p.ID, wali)
}

func (s *service) GetWaliContact(ctx context.Context, profileID uuid.UUID) (*WaliContact, error) {
	return s.repo.GetWaliContact(ctx, profileID)
}
