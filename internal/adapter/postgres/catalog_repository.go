package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"podads/internal/core/domain"
)

// CatalogRepository implements port.CatalogRepository using pgxpool for
// PostgreSQL. It serves a read-only campaign/creative snapshot; budget and
// pacing figures are whatever the table holds, never decremented here.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a new repository instance.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// LoadCandidates returns every (campaign, creative) pair whose campaign
// category targeting is empty or includes the requested category. Status,
// schedule, approval and budget checks are deliberately absent from the
// query; the filter chain owns those and needs the failing candidates in
// hand to explain the drops.
func (r *CatalogRepository) LoadCandidates(ctx context.Context, category string) ([]domain.Candidate, error) {
	query := `
        SELECT
            c.id,
            c.advertiser_id,
            c.name,
            c.status,
            c.budget_total,
            c.budget_remaining,
            c.bid_cpm,
            c.start_date,
            c.end_date,
            c.targeting,
            c.pacing,
            c.frequency_cap,
            cr.id,
            cr.campaign_id,
            cr.duration_seconds,
            cr.asset_url,
            cr.approval_status,
            cr.eligible_slot_types
        FROM creatives cr
        JOIN campaigns c ON cr.campaign_id = c.id
        ORDER BY c.id, cr.id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	type rawCandidate struct {
		Camp            domain.Campaign
		Cr              domain.Creative
		TargetingRaw    []byte
		PacingRaw       []byte
		FrequencyCapRaw []byte
	}
	raw, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rawCandidate, error) {
		var rc rawCandidate
		err := row.Scan(
			&rc.Camp.ID,
			&rc.Camp.AdvertiserID,
			&rc.Camp.Name,
			&rc.Camp.Status,
			&rc.Camp.Budget.Total,
			&rc.Camp.Budget.Remaining,
			&rc.Camp.BidCPM,
			&rc.Camp.StartDate,
			&rc.Camp.EndDate,
			&rc.TargetingRaw,
			&rc.PacingRaw,
			&rc.FrequencyCapRaw,
			&rc.Cr.ID,
			&rc.Cr.CampaignID,
			&rc.Cr.DurationSeconds,
			&rc.Cr.AssetURL,
			&rc.Cr.ApprovalStatus,
			&rc.Cr.EligibleSlotTypes,
		)
		return rc, err
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(raw))
	for _, rc := range raw {
		if len(rc.TargetingRaw) > 0 {
			if err := json.Unmarshal(rc.TargetingRaw, &rc.Camp.Targeting); err != nil {
				return nil, fmt.Errorf("campaign %s targeting: %w", rc.Camp.ID, err)
			}
		}
		if len(rc.PacingRaw) > 0 {
			if err := json.Unmarshal(rc.PacingRaw, &rc.Camp.Pacing); err != nil {
				return nil, fmt.Errorf("campaign %s pacing: %w", rc.Camp.ID, err)
			}
		}
		if len(rc.FrequencyCapRaw) > 0 {
			var fc domain.FrequencyCap
			if err := json.Unmarshal(rc.FrequencyCapRaw, &fc); err != nil {
				return nil, fmt.Errorf("campaign %s frequency cap: %w", rc.Camp.ID, err)
			}
			rc.Camp.FrequencyCap = &fc
		}

		cats := rc.Camp.Targeting.Categories
		if len(cats) > 0 && !slices.Contains(cats, category) {
			continue
		}
		slotTypes := rc.Cr.EligibleSlotTypes
		if len(slotTypes) == 0 {
			slotTypes = domain.AllSlotTypes
		}
		candidates = append(candidates, domain.Candidate{
			Campaign:          rc.Camp,
			Creative:          rc.Cr,
			EligibleSlotTypes: slotTypes,
		})
	}
	return candidates, nil
}
