package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dayflow/internal/models"
)

// NewMemoryStores builds an in-memory store bundle with the same ownership
// and ordering semantics as the Mongo bundle. Used in tests and when the
// server runs without a configured MongoDB.
func NewMemoryStores() *Stores {
	return &Stores{
		Schedule:  &memScheduleStore{items: make(map[string]models.ScheduleItem)},
		Ideas:     &memIdeaStore{items: make(map[string]models.Idea)},
		Goals:     &memGoalStore{items: make(map[string]models.Goal)},
		Resources: &memResourceStore{items: make(map[string]models.Resource)},
		Bio:       &memBioStore{bios: make(map[string]string)},
	}
}

// NewID returns a fresh row id. Both store backends use UUID strings so the
// agent can pass ids between tool calls verbatim.
func NewID() string {
	return uuid.NewString()
}

// sortDirected orders rows by less, reversed when ascending is false.
func sortDirected[T any](rows []T, less func(a, b T) bool, ascending bool) {
	sort.Slice(rows, func(i, j int) bool {
		if ascending {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
}

type memScheduleStore struct {
	mu    sync.RWMutex
	items map[string]models.ScheduleItem
}

func (s *memScheduleStore) List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.ScheduleItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ScheduleItem{}
	for _, it := range s.items {
		if it.UserID == ownerID {
			out = append(out, it)
		}
	}
	if orderBy == "" {
		orderBy, ascending = OrderByStartTime, true
	}
	less := func(a, b models.ScheduleItem) bool {
		switch orderBy {
		case OrderByTitle:
			return a.Title < b.Title
		case OrderByCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		case OrderByUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.StartTime.Before(b.StartTime)
		}
	}
	sortDirected(out, less, ascending)
	return out, nil
}

func (s *memScheduleStore) Get(ctx context.Context, id, ownerID string) (*models.ScheduleItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok || it.UserID != ownerID {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (s *memScheduleStore) Create(ctx context.Context, item *models.ScheduleItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		item.ID = NewID()
	}
	s.items[item.ID] = *item
	return nil
}

func (s *memScheduleStore) Update(ctx context.Context, id, ownerID string, patch *models.ScheduleItemPatch) (*models.ScheduleItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.UserID != ownerID {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		it.Title = *patch.Title
	}
	if patch.Description != nil {
		it.Description = *patch.Description
	}
	if patch.Priority != nil {
		it.Priority = patch.Priority
	}
	if patch.StartTime != nil {
		it.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		it.EndTime = *patch.EndTime
	}
	if patch.AllDay != nil {
		it.AllDay = *patch.AllDay
	}
	if patch.RecurrenceRule != nil {
		it.RecurrenceRule = *patch.RecurrenceRule
	}
	it.UpdatedAt = time.Now()
	s.items[id] = it
	return &it, nil
}

func (s *memScheduleStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.UserID != ownerID {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

type memIdeaStore struct {
	mu    sync.RWMutex
	items map[string]models.Idea
}

func (s *memIdeaStore) List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.Idea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Idea{}
	for _, it := range s.items {
		if it.UserID == ownerID {
			out = append(out, it)
		}
	}
	if orderBy == "" {
		orderBy, ascending = OrderByCreatedAt, false
	}
	less := func(a, b models.Idea) bool {
		switch orderBy {
		case OrderByTitle:
			return a.Title < b.Title
		case OrderByUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sortDirected(out, less, ascending)
	return out, nil
}

func (s *memIdeaStore) Create(ctx context.Context, idea *models.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idea.ID == "" {
		idea.ID = NewID()
	}
	s.items[idea.ID] = *idea
	return nil
}

func (s *memIdeaStore) Update(ctx context.Context, id, ownerID string, patch *models.IdeaPatch) (*models.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.UserID != ownerID {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		it.Title = *patch.Title
	}
	if patch.Content != nil {
		it.Content = *patch.Content
	}
	it.UpdatedAt = time.Now()
	s.items[id] = it
	return &it, nil
}

func (s *memIdeaStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.UserID != ownerID {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

type memGoalStore struct {
	mu    sync.RWMutex
	items map[string]models.Goal
}

func (s *memGoalStore) List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Goal{}
	for _, it := range s.items {
		if it.UserID == ownerID {
			out = append(out, it)
		}
	}
	if orderBy == "" {
		orderBy, ascending = OrderByCreatedAt, false
	}
	less := func(a, b models.Goal) bool {
		switch orderBy {
		case OrderByTitle:
			return a.Title < b.Title
		case OrderByUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sortDirected(out, less, ascending)
	return out, nil
}

func (s *memGoalStore) Create(ctx context.Context, goal *models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if goal.ID == "" {
		goal.ID = NewID()
	}
	goal.Progress = models.ClampProgress(goal.Progress)
	s.items[goal.ID] = *goal
	return nil
}

func (s *memGoalStore) Update(ctx context.Context, id, ownerID string, patch *models.GoalPatch) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.UserID != ownerID {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		it.Title = *patch.Title
	}
	if patch.Description != nil {
		it.Description = *patch.Description
	}
	if patch.Category != nil {
		it.Category = *patch.Category
	}
	if patch.TargetDate != nil {
		it.TargetDate = patch.TargetDate
	}
	if patch.Progress != nil {
		it.Progress = models.ClampProgress(*patch.Progress)
	}
	it.UpdatedAt = time.Now()
	s.items[id] = it
	return &it, nil
}

func (s *memGoalStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.UserID != ownerID {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

type memResourceStore struct {
	mu    sync.RWMutex
	items map[string]models.Resource
}

func (s *memResourceStore) List(ctx context.Context, ownerID, orderBy string, ascending bool) ([]models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Resource{}
	for _, it := range s.items {
		if it.UserID == ownerID {
			out = append(out, it)
		}
	}
	if orderBy == "" {
		orderBy, ascending = OrderByCreatedAt, false
	}
	less := func(a, b models.Resource) bool {
		switch orderBy {
		case OrderByTitle:
			return a.Title < b.Title
		case OrderByUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		case OrderByRelevance:
			return a.RelevanceScore < b.RelevanceScore
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sortDirected(out, less, ascending)
	return out, nil
}

func (s *memResourceStore) Create(ctx context.Context, res *models.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.ID == "" {
		res.ID = NewID()
	}
	res.RelevanceScore = models.ClampProgress(res.RelevanceScore)
	s.items[res.ID] = *res
	return nil
}

func (s *memResourceStore) Update(ctx context.Context, id, ownerID string, patch *models.ResourcePatch) (*models.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.UserID != ownerID {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		it.Title = *patch.Title
	}
	if patch.URL != nil {
		it.URL = *patch.URL
	}
	if patch.Description != nil {
		it.Description = *patch.Description
	}
	if patch.Category != nil {
		it.Category = *patch.Category
	}
	if patch.RelevanceScore != nil {
		it.RelevanceScore = models.ClampProgress(*patch.RelevanceScore)
	}
	it.UpdatedAt = time.Now()
	s.items[id] = it
	return &it, nil
}

func (s *memResourceStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.UserID != ownerID {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *memResourceStore) DecayRelevance(ctx context.Context, olderThanDays, amount, floor int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	var touched int64
	for id, it := range s.items {
		if it.UpdatedAt.Before(cutoff) && it.RelevanceScore > floor {
			it.RelevanceScore -= amount
			if it.RelevanceScore < floor {
				it.RelevanceScore = floor
			}
			s.items[id] = it
			touched++
		}
	}
	return touched, nil
}

type memBioStore struct {
	mu   sync.RWMutex
	bios map[string]string
}

func (s *memBioStore) Get(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bios[userID], nil
}

func (s *memBioStore) Set(ctx context.Context, userID, bio string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bios[userID] = bio
	return nil
}
