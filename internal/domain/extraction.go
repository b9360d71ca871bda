package domain

// Extraction is the structured output of the LLM extraction port. Enum
// fields arrive as raw strings; the aggregator validates them against the
// closed sets and drops invalid values rather than failing the item.
type Extraction struct {
	Company         *string  `json:"company"`
	IncomeLow       *int     `json:"income_low"`
	IncomeHigh      *int     `json:"income_high"`
	EffortLevel     *string  `json:"effort_level"`
	HoursPerWeek    *int     `json:"hours_per_week"`
	Remote          *bool    `json:"remote"`
	SkillsRequired  []string `json:"skills_required"`
	OpportunityType *string  `json:"opportunity_type"`
}
