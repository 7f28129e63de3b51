package store

import (
	"context"
	"errors"
	"fmt"

	"dayflow/internal/models"
)

// ErrNotFound is returned when an id does not exist for the given owner.
// A cross-owner access and a missing id are indistinguishable on purpose.
var ErrNotFound = errors.New("not found")

// StoreError wraps a backend failure with the operation and collection that
// produced it, so agent observations and API errors can name what failed
// without leaking driver internals.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func wrapErr(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Collection: collection, Err: err}
}

// Sort keys accepted by List. The values are the stored field names, so
// both backends interpret them identically.
const (
	OrderByStartTime = "startTime"
	OrderByCreatedAt = "createdAt"
	OrderByUpdatedAt = "updatedAt"
	OrderByTitle     = "title"
	OrderByRelevance = "relevanceScore"
)

// ScheduleStore persists schedule items. Every operation is scoped to an
// owner; no call can read or mutate another user's rows. List orders by the
// given key and direction; an empty orderBy selects the kind's default.
type ScheduleStore interface {
	List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.ScheduleItem, error)
	Get(ctx context.Context, id, ownerID string) (*models.ScheduleItem, error)
	Create(ctx context.Context, item *models.ScheduleItem) error
	Update(ctx context.Context, id, ownerID string, patch *models.ScheduleItemPatch) (*models.ScheduleItem, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

// IdeaStore persists ideas.
type IdeaStore interface {
	List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.Idea, error)
	Create(ctx context.Context, idea *models.Idea) error
	Update(ctx context.Context, id, ownerID string, patch *models.IdeaPatch) (*models.Idea, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

// GoalStore persists goals.
type GoalStore interface {
	List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.Goal, error)
	Create(ctx context.Context, goal *models.Goal) error
	Update(ctx context.Context, id, ownerID string, patch *models.GoalPatch) (*models.Goal, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

// ResourceStore persists saved resources.
type ResourceStore interface {
	List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.Resource, error)
	Create(ctx context.Context, res *models.Resource) error
	Update(ctx context.Context, id, ownerID string, patch *models.ResourcePatch) (*models.Resource, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
	DecayRelevance(ctx context.Context, olderThanDays, amount, floor int) (int64, error)
}

// BioStore holds the single biography document per user. Get on a user with
// no bio returns the empty string, not an error.
type BioStore interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, bio string) error
}

// Stores bundles the per-kind stores so services take one dependency.
type Stores struct {
	Schedule  ScheduleStore
	Ideas     IdeaStore
	Goals     GoalStore
	Resources ResourceStore
	Bio       BioStore
}
