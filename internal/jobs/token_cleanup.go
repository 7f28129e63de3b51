package jobs

import (
	"context"
	"log"

	"dayflow/internal/database"
)

// TokenCleanupJob prunes expired refresh tokens from MySQL. Revocation
// checks only care about live tokens, so old rows are pure dead weight.
type TokenCleanupJob struct {
	db *database.DB
}

// NewTokenCleanupJob creates the cleanup job.
func NewTokenCleanupJob(db *database.DB) *TokenCleanupJob {
	return &TokenCleanupJob{db: db}
}

// Run deletes all refresh tokens past their expiry.
func (j *TokenCleanupJob) Run(ctx context.Context) error {
	if j.db == nil {
		return nil
	}
	deleted, err := j.db.CleanupExpiredTokens(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("🧹 [TOKENS] Removed %d expired refresh tokens", deleted)
	}
	return nil
}
