package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/repository"
)

type opportunityRepository struct {
	db *sqlx.DB
}

func NewOpportunityRepository(db *sqlx.DB) repository.OpportunityRepository {
	return &opportunityRepository{db: db}
}

// opportunityRow maps the opportunities table; skills are a text[].
type opportunityRow struct {
	domain.Opportunity
	Skills pq.StringArray `db:"skills_required"`
}

const selectColumns = `
	SELECT id, title, company, description, opportunity_type, url,
	       income_low, income_high, income_type, equity_offered,
	       effort_level, hours_per_week, remote, location,
	       skills_required, deadline, posted_at, source,
	       relevance_score, effort_score, income_score, overall_score
	FROM opportunities`

func (r *opportunityRepository) Upsert(ctx context.Context, opp *domain.Opportunity) error {
	query := `
		INSERT INTO opportunities (
			id, title, company, description, opportunity_type, url,
			income_low, income_high, income_type, equity_offered,
			effort_level, hours_per_week, remote, location,
			skills_required, deadline, posted_at, source,
			relevance_score, effort_score, income_score, overall_score
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
		ON CONFLICT (id) DO UPDATE SET
			company = EXCLUDED.company,
			description = EXCLUDED.description,
			income_low = EXCLUDED.income_low,
			income_high = EXCLUDED.income_high,
			income_type = EXCLUDED.income_type,
			equity_offered = EXCLUDED.equity_offered,
			effort_level = EXCLUDED.effort_level,
			hours_per_week = EXCLUDED.hours_per_week,
			remote = EXCLUDED.remote,
			location = EXCLUDED.location,
			skills_required = EXCLUDED.skills_required,
			relevance_score = EXCLUDED.relevance_score,
			effort_score = EXCLUDED.effort_score,
			income_score = EXCLUDED.income_score,
			overall_score = EXCLUDED.overall_score,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		opp.StableID(), opp.Title, opp.Company, opp.Description, opp.Type, opp.URL,
		opp.IncomeLow, opp.IncomeHigh, opp.IncomeType, opp.EquityOffered,
		opp.EffortLevel, opp.HoursPerWeek, opp.Remote, opp.Location,
		pq.Array(opp.SkillsRequired), opp.Deadline, opp.PostedAt, opp.Source,
		opp.RelevanceScore, opp.EffortScore, opp.IncomeScore, opp.OverallScore,
	)
	return err
}

func (r *opportunityRepository) GetByID(ctx context.Context, id string) (*domain.Opportunity, error) {
	var row opportunityRow
	query := selectColumns + ` WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOpportunityNotFound
		}
		return nil, err
	}
	opp := row.Opportunity
	opp.SkillsRequired = []string(row.Skills)
	return &opp, nil
}

func (r *opportunityRepository) ListTop(ctx context.Context, limit int) ([]*domain.Opportunity, error) {
	var rows []opportunityRow
	query := selectColumns + ` ORDER BY overall_score DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}
	opps := make([]*domain.Opportunity, 0, len(rows))
	for i := range rows {
		opp := rows[i].Opportunity
		opp.SkillsRequired = []string(rows[i].Skills)
		opps = append(opps, &opp)
	}
	return opps, nil
}

func (r *opportunityRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM opportunities`); err != nil {
		return 0, err
	}
	return n, nil
}
