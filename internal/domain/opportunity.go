package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// OpportunityType classifies what kind of opportunity a listing is.
type OpportunityType string

const (
	TypeJob       OpportunityType = "job"
	TypeFreelance OpportunityType = "freelance"
	TypeGrant     OpportunityType = "grant"
	TypeVCFunding OpportunityType = "vc_funding"
	TypeAngel     OpportunityType = "angel"
	TypeContract  OpportunityType = "contract"
	TypeEquity    OpportunityType = "equity"
	TypeBounty    OpportunityType = "bounty"
)

// ParseOpportunityType converts a raw string to an OpportunityType,
// returning an error for unknown values.
func ParseOpportunityType(s string) (OpportunityType, error) {
	t := OpportunityType(s)
	switch t {
	case TypeJob, TypeFreelance, TypeGrant, TypeVCFunding, TypeAngel, TypeContract, TypeEquity, TypeBounty:
		return t, nil
	}
	return "", fmt.Errorf("unknown opportunity type %q", s)
}

// EffortLevel buckets expected weekly time commitment when exact hours
// are unknown.
type EffortLevel string

const (
	EffortMinimal  EffortLevel = "minimal"  // < 10 hrs/week
	EffortLight    EffortLevel = "light"    // 10-20 hrs/week
	EffortModerate EffortLevel = "moderate" // 20-30 hrs/week
	EffortFull     EffortLevel = "full"     // 40+ hrs/week
	EffortVariable EffortLevel = "variable" // project-based
)

// ParseEffortLevel converts a raw string to an EffortLevel, returning an
// error for unknown values.
func ParseEffortLevel(s string) (EffortLevel, error) {
	e := EffortLevel(s)
	switch e {
	case EffortMinimal, EffortLight, EffortModerate, EffortFull, EffortVariable:
		return e, nil
	}
	return "", fmt.Errorf("unknown effort level %q", s)
}

// Hours returns the assumed weekly hours for an effort level bucket.
func (e EffortLevel) Hours() int {
	switch e {
	case EffortMinimal:
		return 10
	case EffortLight:
		return 20
	case EffortModerate:
		return 30
	case EffortFull:
		return 45
	case EffortVariable:
		return 25
	}
	return 40
}

// IncomeType describes how money flows.
type IncomeType string

const (
	IncomeSalary       IncomeType = "salary"
	IncomeHourly       IncomeType = "hourly"
	IncomeProject      IncomeType = "project"
	IncomeEquity       IncomeType = "equity"
	IncomeGrant        IncomeType = "grant"
	IncomeRevenueShare IncomeType = "revenue_share"
)

// Opportunity is a discovered job/grant/funding/contract listing,
// normalized to a common schema. Category and URL never change after
// creation; only enrichment fields and scores do.
type Opportunity struct {
	ID          string          `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Company     *string         `json:"company,omitempty" db:"company"`
	Description string          `json:"description" db:"description"`
	Type        OpportunityType `json:"opportunity_type" db:"opportunity_type"`
	URL         string          `json:"url" db:"url"`

	// Compensation
	IncomeLow     *int        `json:"income_low,omitempty" db:"income_low"`
	IncomeHigh    *int        `json:"income_high,omitempty" db:"income_high"`
	IncomeType    *IncomeType `json:"income_type,omitempty" db:"income_type"`
	EquityOffered bool        `json:"equity_offered" db:"equity_offered"`

	// Requirements
	EffortLevel  *EffortLevel `json:"effort_level,omitempty" db:"effort_level"`
	HoursPerWeek *int         `json:"hours_per_week,omitempty" db:"hours_per_week"`
	Remote       bool         `json:"remote" db:"remote"`
	Location     *string      `json:"location,omitempty" db:"location"`

	// Metadata
	SkillsRequired []string   `json:"skills_required" db:"-"`
	Deadline       *time.Time `json:"deadline,omitempty" db:"deadline"`
	PostedAt       *time.Time `json:"posted_at,omitempty" db:"posted_at"`
	Source         string     `json:"source" db:"source"`

	// Scoring (filled by the ranking engine, each in [0,1])
	RelevanceScore float64 `json:"relevance_score" db:"relevance_score"`
	EffortScore    float64 `json:"effort_score" db:"effort_score"`
	IncomeScore    float64 `json:"income_score" db:"income_score"`
	OverallScore   float64 `json:"overall_score" db:"overall_score"`
}

// OpportunityID derives the stable identifier from (url, title), so
// re-discovery of the same posting reuses the same id.
func OpportunityID(url, title string) string {
	sum := sha256.Sum256([]byte(url + ":" + title))
	return hex.EncodeToString(sum[:])[:16]
}

// StableID returns the opportunity's deterministic id, computing it from
// URL and title when unset.
func (o *Opportunity) StableID() string {
	if o.ID != "" {
		return o.ID
	}
	return OpportunityID(o.URL, o.Title)
}

// InteractionAction is what the user did with an opportunity.
type InteractionAction string

const (
	ActionSeen    InteractionAction = "seen"
	ActionApplied InteractionAction = "applied"
	ActionLiked   InteractionAction = "liked"
	ActionPassed  InteractionAction = "passed"
)

// Interaction records one (opportunity, action) pair. Re-recording the
// same action overwrites rather than duplicates.
type Interaction struct {
	OpportunityID string            `json:"opportunity_id"`
	Action        InteractionAction `json:"action"`
	Reason        string            `json:"reason,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}
