package agent

import (
	"dayflow/internal/models"
)

// Aggregator collects the side effects of one agent run so the final
// response can report exactly what changed. One aggregator belongs to one
// run and is threaded through dispatch; it is not safe for concurrent use
// and never shared across requests.
type Aggregator struct {
	schedule  map[string]models.ScheduleItem
	ideas     map[string]models.Idea
	goals     map[string]models.Goal
	resources map[string]models.Resource

	scheduleOrder  []string
	ideasOrder     []string
	goalsOrder     []string
	resourcesOrder []string

	scheduleDeleted  []string
	ideasDeleted     []string
	goalsDeleted     []string
	resourcesDeleted []string

	bio      *string
	warnings []string
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		schedule:  make(map[string]models.ScheduleItem),
		ideas:     make(map[string]models.Idea),
		goals:     make(map[string]models.Goal),
		resources: make(map[string]models.Resource),
	}
}

// UpsertSchedule records a created or updated schedule item. A later write
// for the same id replaces the earlier one.
func (a *Aggregator) UpsertSchedule(item models.ScheduleItem) {
	if _, seen := a.schedule[item.ID]; !seen {
		a.scheduleOrder = append(a.scheduleOrder, item.ID)
	}
	a.schedule[item.ID] = item
}

// DeleteSchedule records a schedule deletion. A delete after an upsert in
// the same run removes the upsert; the item no longer exists, so reporting
// it as updated would be a lie.
func (a *Aggregator) DeleteSchedule(id string) {
	if _, seen := a.schedule[id]; seen {
		delete(a.schedule, id)
		a.scheduleOrder = removeID(a.scheduleOrder, id)
	}
	a.scheduleDeleted = appendOnce(a.scheduleDeleted, id)
}

// UpsertIdea records a created or updated idea.
func (a *Aggregator) UpsertIdea(idea models.Idea) {
	if _, seen := a.ideas[idea.ID]; !seen {
		a.ideasOrder = append(a.ideasOrder, idea.ID)
	}
	a.ideas[idea.ID] = idea
}

// DeleteIdea records an idea deletion.
func (a *Aggregator) DeleteIdea(id string) {
	if _, seen := a.ideas[id]; seen {
		delete(a.ideas, id)
		a.ideasOrder = removeID(a.ideasOrder, id)
	}
	a.ideasDeleted = appendOnce(a.ideasDeleted, id)
}

// UpsertGoal records a created or updated goal.
func (a *Aggregator) UpsertGoal(goal models.Goal) {
	if _, seen := a.goals[goal.ID]; !seen {
		a.goalsOrder = append(a.goalsOrder, goal.ID)
	}
	a.goals[goal.ID] = goal
}

// DeleteGoal records a goal deletion.
func (a *Aggregator) DeleteGoal(id string) {
	if _, seen := a.goals[id]; seen {
		delete(a.goals, id)
		a.goalsOrder = removeID(a.goalsOrder, id)
	}
	a.goalsDeleted = appendOnce(a.goalsDeleted, id)
}

// UpsertResource records a created or updated resource.
func (a *Aggregator) UpsertResource(res models.Resource) {
	if _, seen := a.resources[res.ID]; !seen {
		a.resourcesOrder = append(a.resourcesOrder, res.ID)
	}
	a.resources[res.ID] = res
}

// DeleteResource records a resource deletion.
func (a *Aggregator) DeleteResource(id string) {
	if _, seen := a.resources[id]; seen {
		delete(a.resources, id)
		a.resourcesOrder = removeID(a.resourcesOrder, id)
	}
	a.resourcesDeleted = appendOnce(a.resourcesDeleted, id)
}

// SetBio records a bio replacement. Last write wins.
func (a *Aggregator) SetBio(bio string) {
	a.bio = &bio
}

// Warn appends a user-visible warning.
func (a *Aggregator) Warn(msg string) {
	a.warnings = append(a.warnings, msg)
}

// WarnAll appends several warnings.
func (a *Aggregator) WarnAll(msgs []string) {
	a.warnings = append(a.warnings, msgs...)
}

// Finalize builds the response. Slices are always non-nil so the JSON
// shape is stable for clients.
func (a *Aggregator) Finalize(message, thoughts, sessionID string) *models.AssistantResponse {
	resp := &models.AssistantResponse{
		Message:            message,
		Thoughts:           thoughts,
		SessionID:          sessionID,
		ScheduleUpdates:    make([]models.ScheduleItem, 0, len(a.scheduleOrder)),
		IdeasUpdates:       make([]models.Idea, 0, len(a.ideasOrder)),
		GoalsUpdates:       make([]models.Goal, 0, len(a.goalsOrder)),
		ResourcesUpdates:   make([]models.Resource, 0, len(a.resourcesOrder)),
		ScheduleDeletions:  orEmpty(a.scheduleDeleted),
		IdeasDeletions:     orEmpty(a.ideasDeleted),
		GoalsDeletions:     orEmpty(a.goalsDeleted),
		ResourcesDeletions: orEmpty(a.resourcesDeleted),
		BioUpdate:          a.bio,
		Warnings:           a.warnings,
	}
	for _, id := range a.scheduleOrder {
		resp.ScheduleUpdates = append(resp.ScheduleUpdates, a.schedule[id])
	}
	for _, id := range a.ideasOrder {
		resp.IdeasUpdates = append(resp.IdeasUpdates, a.ideas[id])
	}
	for _, id := range a.goalsOrder {
		resp.GoalsUpdates = append(resp.GoalsUpdates, a.goals[id])
	}
	for _, id := range a.resourcesOrder {
		resp.ResourcesUpdates = append(resp.ResourcesUpdates, a.resources[id])
	}
	return resp
}

func appendOnce(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
