package domain

// UserProfile holds the searching user's stated preferences and
// constraints. It is created by the caller and read-only to the engine
// for the duration of a search session.
type UserProfile struct {
	// Core preferences
	MinIncome      int  `json:"min_income"`       // minimum annual income target
	MaxHoursWeekly int  `json:"max_hours_weekly"` // max hours willing to work per week
	RemoteOnly     bool `json:"remote_only"`

	// Skills and experience
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
	Industries      []string `json:"industries"`

	// Opportunity preferences
	OpportunityTypes []OpportunityType `json:"opportunity_types"`
	EffortLevels     []EffortLevel     `json:"effort_levels"`

	// Deal breakers
	ExcludedCompanies  []string `json:"excluded_companies"`
	ExcludedIndustries []string `json:"excluded_industries"`
	MinCompanySize     *int     `json:"min_company_size,omitempty"`
	MaxCompanySize     *int     `json:"max_company_size,omitempty"`

	// Special interests
	InterestedInEquity   bool `json:"interested_in_equity"`
	InterestedInFounding bool `json:"interested_in_founding"`
	InterestedInGrants   bool `json:"interested_in_grants"`
}

// DefaultProfile returns a profile with the stock preference defaults.
func DefaultProfile() *UserProfile {
	return &UserProfile{
		MinIncome:       100000,
		MaxHoursWeekly:  20,
		RemoteOnly:      true,
		ExperienceYears: 5,
		OpportunityTypes: []OpportunityType{
			TypeJob, TypeFreelance, TypeContract,
		},
		EffortLevels: []EffortLevel{
			EffortMinimal, EffortLight,
		},
		InterestedInEquity:   true,
		InterestedInFounding: true,
		InterestedInGrants:   true,
	}
}

// AcceptsType reports whether the profile lists the given opportunity
// type among its preferences.
func (p *UserProfile) AcceptsType(t OpportunityType) bool {
	for _, ot := range p.OpportunityTypes {
		if ot == t {
			return true
		}
	}
	return false
}
