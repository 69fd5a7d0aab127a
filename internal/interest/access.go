// internal/interest/access.go
// Disclosure policy: which profile sections and whether the wali contact
// may be shown to a viewer, derived purely from the two directed interests
// between viewer and target.

package interest

import (
	"github.com/zawajlabs/zawaj-backend/internal/profile"
)

// AccessLevel tags how much of the target's profile the viewer may see
type AccessLevel string

const (
	AccessBasic           AccessLevel = "basic"
	AccessFull            AccessLevel = "full"
	AccessFullWithContact AccessLevel = "full_with_sensitive_contact"
)

// ProfileAccessGrant is the derived (never persisted) output of the policy
type ProfileAccessGrant struct {
	CanViewProfile     bool        `json:"can_view_profile"`
	CanViewBasicInfo   bool        `json:"can_view_basic_info"`
	CanViewWaliContact bool        `json:"can_view_wali_contact"`
	AccessLevel        AccessLevel `json:"access_level"`
	UnlockedSections   []string    `json:"unlocked_sections"`
	Reason             string      `json:"reason,omitempty"`
}

// Section identifiers, in the fixed order question slots unlock them
const (
	SectionReligiousPractice   = "religious_practice"
	SectionPrayerLife          = "prayer_life"
	SectionLifestyle           = "lifestyle"
	SectionHalalLiving         = "halal_living"
	SectionPersonality         = "personality"
	SectionFitness             = "fitness"
	SectionMaritalExpectations = "marital_expectations"
	SectionConflictResolution  = "conflict_resolution"
	SectionChildren            = "children"
	SectionLegacyPlanning      = "legacy_planning"
)

// slotSections maps each answered question slot to the profile sections it
// unlocks. Disclosure is cumulative: answering slot n unlocks slots 1..n.
var slotSections = map[int][]string{
	1: {SectionReligiousPractice, SectionPrayerLife},
	2: {SectionLifestyle, SectionHalalLiving},
	3: {SectionPersonality, SectionFitness},
	4: {SectionMaritalExpectations, SectionConflictResolution},
	5: {SectionChildren, SectionLegacyPlanning},
}

// unlockedSections returns the cumulative union of sections for the first
// questionsAnswered slots
func unlockedSections(questionsAnswered int) []string {
	if questionsAnswered > MaxQuestions {
		questionsAnswered = MaxQuestions
	}

	var sections []string
	for slot := 1; slot <= questionsAnswered; slot++ {
		sections = append(sections, slotSections[slot]...)
	}
	return sections
}

// basicGrant is the floor every authenticated viewer gets: basic identity
// and demographic fields are discoverable regardless of interest state.
func basicGrant(reason string) *ProfileAccessGrant {
	return &ProfileAccessGrant{
		CanViewProfile:   false,
		CanViewBasicInfo: true,
		AccessLevel:      AccessBasic,
		UnlockedSections: []string{},
		Reason:           reason,
	}
}

// ResolveAccess computes the viewer's access to the target's profile.
// mine is the viewer→target interest, theirs the target→viewer interest;
// either may be nil. The function is pure and fails closed: nothing here
// can grant wali-contact access without full mutual acceptance.
func ResolveAccess(mine, theirs *Interest, viewerCategory profile.Category) *ProfileAccessGrant {
	if mine == nil {
		return basicGrant("Express interest to begin unlocking this profile")
	}

	// Withdrawn and rejected interests revoke progressive disclosure
	if !mine.Active() {
		return basicGrant("No active interest with this profile")
	}

	pct := mine.UnlockPercentage

	if pct >= PercentPerQuestion && pct < MaxQuestions*PercentPerQuestion {
		questionsAnswered := pct / PercentPerQuestion
		return &ProfileAccessGrant{
			CanViewProfile:   true,
			CanViewBasicInfo: true,
			AccessLevel:      AccessBasic,
			UnlockedSections: unlockedSections(questionsAnswered),
		}
	}

	if pct == MaxQuestions*PercentPerQuestion {
		grant := &ProfileAccessGrant{
			CanViewProfile:   true,
			CanViewBasicInfo: true,
			AccessLevel:      AccessFull,
			UnlockedSections: unlockedSections(MaxQuestions),
		}

		if mutuallyAccepted(mine, theirs) && viewerCategory == profile.CategoryBrother {
			grant.CanViewWaliContact = true
			grant.AccessLevel = AccessFullWithContact
		}

		return grant
	}

	// Interest exists but no questions answered yet
	return basicGrant("Answer the screening questions to unlock this profile")
}

// mutuallyAccepted reports whether both directions are accepted and fully
// completed. Only then may the wali contact be disclosed, and only to the
// category permitted to initiate contact with the guardian.
func mutuallyAccepted(mine, theirs *Interest) bool {
	if mine == nil || theirs == nil {
		return false
	}
	return mine.Status == StatusAccepted &&
		theirs.Status == StatusAccepted &&
		mine.UnlockPercentage == MaxQuestions*PercentPerQuestion &&
		theirs.UnlockPercentage == MaxQuestions*PercentPerQuestion
}

// ProfileView is a profile render filtered through an access grant
type ProfileView struct {
	ProfileID          string                       `json:"profile_id"`
	Category           profile.Category             `json:"category"`
	BasicInfo          map[string]interface{}       `json:"basic_info"`
	ScreeningQuestions []string                     `json:"screening_questions,omitempty"`
	Sections           map[string]map[string]string `json:"sections"`
	AccessGrant        *ProfileAccessGrant          `json:"access"`
}

// sectionFields maps a section identifier to the profile fields it exposes
var sectionFields = map[string]func(p *profile.Profile) map[string]string{
	SectionReligiousPractice: func(p *profile.Profile) map[string]string {
		return textFields(map[string]*string{
			"religious_practice": p.ReligiousPractice,
			"islamic_education":  p.IslamicEducation,
		})
	},
	SectionPrayerLife: func(p *profile.Profile) map[string]string {
		return textFields(map[string]*string{
			"prayer_habits":    p.PrayerHabits,
			"quran_engagement": p.QuranEngagement,
		})
	},
	SectionLifestyle: func(p *profile.Profile) map[string]string {
		return textFields(map[string]*string{
			"lifestyle_description": p.LifestyleDescription,
			"social_habits":         p.SocialHabits,
		})
	},
	SectionHalalLiving: func(p *profile.Profile) map[string]string {
		return textFields(map[string]*string{
			"halal_diet_notes": p.HalalDietNotes,
		})
	},
	SectionPersonality: func(p *profile.Profile) map[string]string {
		return textFields(map[string]*string{
			"personality_description": p.PersonalityDescription,
		})
	},
	SectionFitness: func(p *profile.Profile) map[string]string {
		return textFields(map[string]*string{
			"fitness_routine": p.FitnessRoutine,
			"health_notes":    p.HealthNotes,
		})
	},
	SectionMaritalExpectations: func(p *profile.Profile) map[string]string {
		return textFields(map[string]*string{
			"spousal_expectations": p.SpousalExpectations,
			"family_roles":         p.FamilyRoles,
		})
	},
	SectionConflictResolution: func(p *profile.Profile) map[string]string {
		return textFields(map[string]*string{
			"conflict_approach": p.ConflictApproach,
		})
	},
	SectionChildren: func(p *profile.Profile) map[string]string {
		return textFields(map[string]*string{
			"children_vision": p.ChildrenVision,
		})
	},
	SectionLegacyPlanning: func(p *profile.Profile) map[string]string {
		return textFields(map[string]*string{
			"legacy_planning": p.LegacyPlanning,
		})
	},
}

func textFields(fields map[string]*string) map[string]string {
	out := make(map[string]string)
	for name, value := range fields {
		if value != nil && *value != "" {
			out[name] = *value
		}
	}
	return out
}

// RenderProfile applies a grant to a profile, stripping locked sections.
// The wali contact is never part of the render; it has its own gated call.
func RenderProfile(p *profile.Profile, grant *ProfileAccessGrant) *ProfileView {
	view := &ProfileView{
		ProfileID:   p.ID.String(),
		Category:    p.Category,
		BasicInfo:   map[string]interface{}{},
		Sections:    map[string]map[string]string{},
		AccessGrant: grant,
	}

	if grant.CanViewBasicInfo {
		view.BasicInfo["display_name"] = p.DisplayName
		view.BasicInfo["age"] = p.Age
		if p.City != nil {
			view.BasicInfo["city"] = *p.City
		}
		if p.Country != nil {
			view.BasicInfo["country"] = *p.Country
		}
		if p.Ethnicity != nil {
			view.BasicInfo["ethnicity"] = *p.Ethnicity
		}
		if p.MaritalStatus != nil {
			view.BasicInfo["marital_status"] = *p.MaritalStatus
		}
		if p.AboutMe != nil {
			view.BasicInfo["about_me"] = *p.AboutMe
		}
		// The target's authored questions are discoverable alongside basic
		// info so a suitor knows what answering will involve
		view.ScreeningQuestions = append(view.ScreeningQuestions, p.ScreeningQuestions...)
	}

	for _, section := range grant.UnlockedSections {
		extract, ok := sectionFields[section]
		if !ok {
			continue
		}
		if fields := extract(p); len(fields) > 0 {
			view.Sections[section] = fields
		}
	}

	return view
}
