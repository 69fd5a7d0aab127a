// internal/flags/models.go

package flags

import (
	"time"

	"github.com/google/uuid"
)

// FlagAnalysis is the aggregated compatibility assessment for one interest.
// Each of the five answers contributes exactly one sentence to exactly one
// bucket. Generated once per interest and cached; a degraded result is
// returned but never cached.
type FlagAnalysis struct {
	InterestID   uuid.UUID `json:"interest_id"`
	GreenFlags   []string  `json:"green_flags"`
	RedFlags     []string  `json:"red_flags"`
	NeutralFlags []string  `json:"neutral_flags"`
	GeneratedAt  time.Time `json:"generated_at"`
	Degraded     bool      `json:"degraded,omitempty"`
}
