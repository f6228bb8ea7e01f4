package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"podads/internal/adapter/catalog/fixture"
)

// Seed loads the embedded fixture catalog into the campaigns and creatives
// tables. Inserts are idempotent so re-running against a seeded database
// is a no-op.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	campaigns, creatives, err := fixture.Load()
	if err != nil {
		return fmt.Errorf("load fixture catalog: %w", err)
	}

	for _, c := range campaigns {
		targeting, err := json.Marshal(c.Targeting)
		if err != nil {
			return err
		}
		pacing, err := json.Marshal(c.Pacing)
		if err != nil {
			return err
		}
		var frequencyCap []byte
		if c.FrequencyCap != nil {
			if frequencyCap, err = json.Marshal(c.FrequencyCap); err != nil {
				return err
			}
		}
		_, err = pool.Exec(ctx, `INSERT INTO campaigns
    (id, advertiser_id, name, status, budget_total, budget_remaining, bid_cpm,
     start_date, end_date, targeting, pacing, frequency_cap, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now()) ON CONFLICT DO NOTHING`,
			c.ID, c.AdvertiserID, c.Name, c.Status, c.Budget.Total, c.Budget.Remaining,
			c.BidCPM, c.StartDate, c.EndDate, targeting, pacing, frequencyCap)
		if err != nil {
			return fmt.Errorf("seed campaign %s: %w", c.ID, err)
		}
	}

	for _, cr := range creatives {
		var slotTypes any
		if len(cr.EligibleSlotTypes) > 0 {
			slotTypes = cr.EligibleSlotTypes
		}
		_, err = pool.Exec(ctx, `INSERT INTO creatives
    (id, campaign_id, duration_seconds, asset_url, approval_status, eligible_slot_types,
     created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,now(),now()) ON CONFLICT DO NOTHING`,
			cr.ID, cr.CampaignID, cr.DurationSeconds, cr.AssetURL, cr.ApprovalStatus, slotTypes)
		if err != nil {
			return fmt.Errorf("seed creative %s: %w", cr.ID, err)
		}
	}
	return nil
}
