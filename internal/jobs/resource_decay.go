package jobs

import (
	"context"
	"log"

	"dayflow/internal/store"
)

// ResourceDecayJob lowers the relevance score of saved resources that have
// not been touched recently, so stale links sink on the dashboard instead
// of pinning the top spots forever.
type ResourceDecayJob struct {
	resources store.ResourceStore

	olderThanDays int
	amount        int
	floor         int
}

// NewResourceDecayJob creates the decay job with the configured policy.
func NewResourceDecayJob(resources store.ResourceStore, olderThanDays, amount, floor int) *ResourceDecayJob {
	return &ResourceDecayJob{
		resources:     resources,
		olderThanDays: olderThanDays,
		amount:        amount,
		floor:         floor,
	}
}

// Run applies one decay step across all users' stale resources.
func (j *ResourceDecayJob) Run(ctx context.Context) error {
	if j.resources == nil {
		return nil
	}
	updated, err := j.resources.DecayRelevance(ctx, j.olderThanDays, j.amount, j.floor)
	if err != nil {
		return err
	}
	if updated > 0 {
		log.Printf("📉 [DECAY] Decayed relevance on %d resources (older than %dd, -%d, floor %d)",
			updated, j.olderThanDays, j.amount, j.floor)
	}
	return nil
}
