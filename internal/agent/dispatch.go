package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"dayflow/internal/models"
	"dayflow/internal/services"
	"dayflow/internal/store"
	"dayflow/internal/timeparse"
	"dayflow/internal/tools"
)

// Searcher finds web resource candidates for search_web_resources.
type Searcher interface {
	SearchResources(ctx context.Context, query string, maxResults int) ([]models.ResourceCandidate, error)
}

// Dispatcher executes catalog tool calls against the stores. Arguments are
// decoded into per-tool structs so every field access is typed; the switch
// below is the single place a tool name maps to behavior.
type Dispatcher struct {
	stores   *store.Stores
	registry *tools.Registry
	search   Searcher
	now      func() time.Time
}

// NewDispatcher wires the tool executor. search may be nil when the
// deployment has no search backend; the registry must then be built with
// searchEnabled=false so the model never sees the tool.
func NewDispatcher(stores *store.Stores, registry *tools.Registry, search Searcher) *Dispatcher {
	return &Dispatcher{
		stores:   stores,
		registry: registry,
		search:   search,
		now:      time.Now,
	}
}

// Execute runs one tool call for userID and returns the observation string
// fed back to the model. Failures become observations, never panics or
// aborts; the model is expected to read the error and adjust. today anchors
// relative date handling for the whole run.
func (d *Dispatcher) Execute(ctx context.Context, userID string, call models.ToolCall, agg *Aggregator, today time.Time) string {
	name := call.Function.Name
	if !d.registry.Has(name) {
		log.Printf("⚠️ [AGENT] unknown tool requested: %s", name)
		return failObs(fmt.Sprintf("unknown tool %q; available tools: %v", name, d.registry.Names()))
	}

	raw := map[string]interface{}{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &raw); err != nil {
			return failObs(fmt.Sprintf("arguments for %s are not valid JSON: %v", name, err))
		}
	}
	if err := d.registry.ValidateArgs(name, raw); err != nil {
		return failObs(err.Error())
	}

	obs, err := d.dispatch(ctx, userID, name, call.Function.Arguments, agg, today)
	if err != nil {
		log.Printf("❌ [AGENT] tool %s failed: %v", name, err)
		if m := services.GetMetrics(); m != nil {
			m.RecordToolExecution(name, "error")
		}
		var se *store.StoreError
		if errors.As(err, &se) {
			return failObs(fmt.Sprintf("storage operation failed: %s %s", se.Op, se.Collection))
		}
		return failObs(err.Error())
	}
	if m := services.GetMetrics(); m != nil {
		m.RecordToolExecution(name, "ok")
	}
	return obs
}

func (d *Dispatcher) dispatch(ctx context.Context, userID, name, args string, agg *Aggregator, today time.Time) (string, error) {
	switch name {
	case tools.GetScheduleItems:
		return d.getScheduleItems(ctx, userID)
	case tools.CreateScheduleItem:
		return d.createScheduleItem(ctx, userID, args, agg, today)
	case tools.UpdateScheduleItem:
		return d.updateScheduleItem(ctx, userID, args, agg, today)
	case tools.DeleteScheduleItem:
		return d.deleteItem(ctx, userID, args, "schedule item", func(ctx context.Context, id string) (bool, error) {
			deleted, err := d.stores.Schedule.Delete(ctx, id, userID)
			if deleted {
				agg.DeleteSchedule(id)
			}
			return deleted, err
		})
	case tools.GetIdeas:
		return d.getIdeas(ctx, userID)
	case tools.CreateIdea:
		return d.createIdea(ctx, userID, args, agg)
	case tools.UpdateIdea:
		return d.updateIdea(ctx, userID, args, agg)
	case tools.DeleteIdea:
		return d.deleteItem(ctx, userID, args, "idea", func(ctx context.Context, id string) (bool, error) {
			deleted, err := d.stores.Ideas.Delete(ctx, id, userID)
			if deleted {
				agg.DeleteIdea(id)
			}
			return deleted, err
		})
	case tools.GetGoals:
		return d.getGoals(ctx, userID)
	case tools.CreateGoal:
		return d.createGoal(ctx, userID, args, agg, today)
	case tools.UpdateGoal:
		return d.updateGoal(ctx, userID, args, agg, today)
	case tools.DeleteGoal:
		return d.deleteItem(ctx, userID, args, "goal", func(ctx context.Context, id string) (bool, error) {
			deleted, err := d.stores.Goals.Delete(ctx, id, userID)
			if deleted {
				agg.DeleteGoal(id)
			}
			return deleted, err
		})
	case tools.GetResources:
		return d.getResources(ctx, userID)
	case tools.CreateResource:
		return d.createResource(ctx, userID, args, agg)
	case tools.UpdateResource:
		return d.updateResource(ctx, userID, args, agg)
	case tools.DeleteResource:
		return d.deleteItem(ctx, userID, args, "resource", func(ctx context.Context, id string) (bool, error) {
			deleted, err := d.stores.Resources.Delete(ctx, id, userID)
			if deleted {
				agg.DeleteResource(id)
			}
			return deleted, err
		})
	case tools.GetUserBio:
		return d.getUserBio(ctx, userID)
	case tools.UpdateUserBio:
		return d.updateUserBio(ctx, userID, args, agg)
	case tools.SearchWebResources:
		return d.searchWebResources(ctx, args)
	}
	return "", fmt.Errorf("unknown tool %q", name)
}

// --- schedule ---

type createScheduleArgs struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	AllDay      bool     `json:"all_day"`
	Frequency   string   `json:"frequency"`
	Interval    int      `json:"interval"`
	RepeatDays  []string `json:"repeat_days"`
}

type updateScheduleArgs struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Date        *string `json:"date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	AllDay      *bool   `json:"all_day"`
}

func (d *Dispatcher) getScheduleItems(ctx context.Context, userID string) (string, error) {
	items, err := d.stores.Schedule.List(ctx, userID, store.OrderByStartTime, true)
	if err != nil {
		return "", err
	}
	return listObs("schedule_items", len(items), items), nil
}

func (d *Dispatcher) createScheduleItem(ctx context.Context, userID, rawArgs string, agg *Aggregator, today time.Time) (string, error) {
	var args createScheduleArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	day := timeparse.ParseDate(args.Date, today.Location(), today)
	var start, end time.Time
	if args.AllDay {
		start = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		end = time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 0, 0, day.Location())
	} else {
		var warnings []string
		start, end, warnings = timeparse.NormalizeRange(day, args.StartTime, args.EndTime)
		agg.WarnAll(warnings)
	}

	now := d.now()
	item := &models.ScheduleItem{
		ID:             store.NewID(),
		UserID:         userID,
		Title:          args.Title,
		Description:    args.Description,
		StartTime:      start,
		EndTime:        end,
		AllDay:         args.AllDay,
		RecurrenceRule: timeparse.BuildRule(args.Frequency, args.Interval, args.RepeatDays),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if args.Priority != "" {
		p := models.Priority(args.Priority)
		if models.ValidPriority(p) {
			item.Priority = &p
		} else {
			agg.Warn(fmt.Sprintf("ignored invalid priority %q", args.Priority))
		}
	}

	if err := d.stores.Schedule.Create(ctx, item); err != nil {
		return "", err
	}
	agg.UpsertSchedule(*item)
	log.Printf("✅ [AGENT] created schedule item %s for user %s", item.ID, userID)
	return itemObs("schedule_item", item), nil
}

func (d *Dispatcher) updateScheduleItem(ctx context.Context, userID, rawArgs string, agg *Aggregator, today time.Time) (string, error) {
	var args updateScheduleArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	patch := &models.ScheduleItemPatch{
		Title:       args.Title,
		Description: args.Description,
		AllDay:      args.AllDay,
	}
	if args.Priority != nil {
		p := models.Priority(*args.Priority)
		if models.ValidPriority(p) {
			patch.Priority = &p
		} else {
			agg.Warn(fmt.Sprintf("ignored invalid priority %q", *args.Priority))
		}
	}

	// Date or clock changes re-normalize against the existing item so a
	// lone "move it to 4 PM" keeps the original day and duration intent.
	if args.Date != nil || args.StartTime != nil || args.EndTime != nil {
		existing, err := d.stores.Schedule.Get(ctx, args.ID, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return failObs("no schedule item with that id"), nil
			}
			return "", err
		}
		day := existing.StartTime
		if args.Date != nil {
			day = timeparse.ParseDate(*args.Date, today.Location(), existing.StartTime)
		}
		startStr := existing.StartTime.Format("15:04")
		if args.StartTime != nil {
			startStr = *args.StartTime
		}
		endStr := existing.EndTime.Format("15:04")
		if args.EndTime != nil {
			endStr = *args.EndTime
		}
		start, end, warnings := timeparse.NormalizeRange(day, startStr, endStr)
		agg.WarnAll(warnings)
		patch.StartTime = &start
		patch.EndTime = &end
	}

	updated, err := d.stores.Schedule.Update(ctx, args.ID, userID, patch)
	if errors.Is(err, store.ErrNotFound) {
		return failObs("no schedule item with that id"), nil
	}
	if err != nil {
		return "", err
	}
	agg.UpsertSchedule(*updated)
	return itemObs("schedule_item", updated), nil
}

// --- ideas ---

type createIdeaArgs struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updateIdeaArgs struct {
	ID      string  `json:"id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (d *Dispatcher) getIdeas(ctx context.Context, userID string) (string, error) {
	ideas, err := d.stores.Ideas.List(ctx, userID, store.OrderByCreatedAt, false)
	if err != nil {
		return "", err
	}
	return listObs("ideas", len(ideas), ideas), nil
}

func (d *Dispatcher) createIdea(ctx context.Context, userID, rawArgs string, agg *Aggregator) (string, error) {
	var args createIdeaArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	now := d.now()
	idea := &models.Idea{
		ID:        store.NewID(),
		UserID:    userID,
		Title:     args.Title,
		Content:   args.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.stores.Ideas.Create(ctx, idea); err != nil {
		return "", err
	}
	agg.UpsertIdea(*idea)
	return itemObs("idea", idea), nil
}

func (d *Dispatcher) updateIdea(ctx context.Context, userID, rawArgs string, agg *Aggregator) (string, error) {
	var args updateIdeaArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	updated, err := d.stores.Ideas.Update(ctx, args.ID, userID, &models.IdeaPatch{Title: args.Title, Content: args.Content})
	if errors.Is(err, store.ErrNotFound) {
		return failObs("no idea with that id"), nil
	}
	if err != nil {
		return "", err
	}
	agg.UpsertIdea(*updated)
	return itemObs("idea", updated), nil
}

// --- goals ---

type createGoalArgs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	TargetDate  string `json:"target_date"`
	Progress    int    `json:"progress"`
}

type updateGoalArgs struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	TargetDate  *string `json:"target_date"`
	Progress    *int    `json:"progress"`
}

func (d *Dispatcher) getGoals(ctx context.Context, userID string) (string, error) {
	goals, err := d.stores.Goals.List(ctx, userID, store.OrderByCreatedAt, false)
	if err != nil {
		return "", err
	}
	return listObs("goals", len(goals), goals), nil
}

func (d *Dispatcher) createGoal(ctx context.Context, userID, rawArgs string, agg *Aggregator, today time.Time) (string, error) {
	var args createGoalArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	now := d.now()
	goal := &models.Goal{
		ID:          store.NewID(),
		UserID:      userID,
		Title:       args.Title,
		Description: args.Description,
		Category:    args.Category,
		Progress:    models.ClampProgress(args.Progress),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if args.TargetDate != "" {
		td := timeparse.ParseDate(args.TargetDate, today.Location(), time.Time{})
		if td.IsZero() {
			agg.Warn(fmt.Sprintf("ignored unparsable target date %q", args.TargetDate))
		} else {
			goal.TargetDate = &td
		}
	}
	if err := d.stores.Goals.Create(ctx, goal); err != nil {
		return "", err
	}
	agg.UpsertGoal(*goal)
	return itemObs("goal", goal), nil
}

func (d *Dispatcher) updateGoal(ctx context.Context, userID, rawArgs string, agg *Aggregator, today time.Time) (string, error) {
	var args updateGoalArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	patch := &models.GoalPatch{
		Title:       args.Title,
		Description: args.Description,
		Category:    args.Category,
		Progress:    args.Progress,
	}
	if args.TargetDate != nil {
		td := timeparse.ParseDate(*args.TargetDate, today.Location(), time.Time{})
		if td.IsZero() {
			agg.Warn(fmt.Sprintf("ignored unparsable target date %q", *args.TargetDate))
		} else {
			patch.TargetDate = &td
		}
	}
	updated, err := d.stores.Goals.Update(ctx, args.ID, userID, patch)
	if errors.Is(err, store.ErrNotFound) {
		return failObs("no goal with that id"), nil
	}
	if err != nil {
		return "", err
	}
	agg.UpsertGoal(*updated)
	return itemObs("goal", updated), nil
}

// --- resources ---

type createResourceArgs struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	RelevanceScore int    `json:"relevance_score"`
}

type updateResourceArgs struct {
	ID             string  `json:"id"`
	Title          *string `json:"title"`
	URL            *string `json:"url"`
	Description    *string `json:"description"`
	Category       *string `json:"category"`
	RelevanceScore *int    `json:"relevance_score"`
}

func (d *Dispatcher) getResources(ctx context.Context, userID string) (string, error) {
	resources, err := d.stores.Resources.List(ctx, userID, store.OrderByCreatedAt, false)
	if err != nil {
		return "", err
	}
	return listObs("resources", len(resources), resources), nil
}

func (d *Dispatcher) createResource(ctx context.Context, userID, rawArgs string, agg *Aggregator) (string, error) {
	var args createResourceArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	category := args.Category
	if !models.ValidResourceCategory(category) {
		if category != "" {
			agg.Warn(fmt.Sprintf("unknown resource category %q, stored as Article", category))
		}
		category = models.ResourceCategoryArticle
	}
	score := args.RelevanceScore
	if score == 0 {
		score = 50
	}
	now := d.now()
	res := &models.Resource{
		ID:             store.NewID(),
		UserID:         userID,
		Title:          args.Title,
		URL:            args.URL,
		Description:    args.Description,
		Category:       category,
		RelevanceScore: models.ClampProgress(score),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := d.stores.Resources.Create(ctx, res); err != nil {
		return "", err
	}
	agg.UpsertResource(*res)
	return itemObs("resource", res), nil
}

func (d *Dispatcher) updateResource(ctx context.Context, userID, rawArgs string, agg *Aggregator) (string, error) {
	var args updateResourceArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	patch := &models.ResourcePatch{
		Title:          args.Title,
		URL:            args.URL,
		Description:    args.Description,
		RelevanceScore: args.RelevanceScore,
	}
	if args.Category != nil {
		if models.ValidResourceCategory(*args.Category) {
			patch.Category = args.Category
		} else {
			agg.Warn(fmt.Sprintf("ignored unknown resource category %q", *args.Category))
		}
	}
	updated, err := d.stores.Resources.Update(ctx, args.ID, userID, patch)
	if errors.Is(err, store.ErrNotFound) {
		return failObs("no resource with that id"), nil
	}
	if err != nil {
		return "", err
	}
	agg.UpsertResource(*updated)
	return itemObs("resource", updated), nil
}

// --- bio ---

type updateBioArgs struct {
	Bio string `json:"bio"`
}

func (d *Dispatcher) getUserBio(ctx context.Context, userID string) (string, error) {
	bio, err := d.stores.Bio.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	out, _ := json.Marshal(map[string]interface{}{"success": true, "bio": bio})
	return string(out), nil
}

func (d *Dispatcher) updateUserBio(ctx context.Context, userID, rawArgs string, agg *Aggregator) (string, error) {
	var args updateBioArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if err := d.stores.Bio.Set(ctx, userID, args.Bio); err != nil {
		return "", err
	}
	agg.SetBio(args.Bio)
	out, _ := json.Marshal(map[string]interface{}{"success": true, "bio": args.Bio})
	return string(out), nil
}

// --- search ---

type searchArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

func (d *Dispatcher) searchWebResources(ctx context.Context, rawArgs string) (string, error) {
	if d.search == nil {
		return "", fmt.Errorf("web search is not configured on this server")
	}
	var args searchArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	max := args.MaxResults
	if max <= 0 || max > 10 {
		max = 5
	}
	candidates, err := d.search.SearchResources(ctx, args.Query, max)
	if err != nil {
		return "", fmt.Errorf("web search failed: %w", err)
	}
	out, _ := json.Marshal(map[string]interface{}{
		"success":    true,
		"count":      len(candidates),
		"candidates": candidates,
	})
	return string(out), nil
}

// --- observation helpers ---

type deleteFunc func(ctx context.Context, id string) (bool, error)

type idArgs struct {
	ID string `json:"id"`
}

func (d *Dispatcher) deleteItem(ctx context.Context, userID, rawArgs, kind string, del deleteFunc) (string, error) {
	var args idArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	deleted, err := del(ctx, args.ID)
	if err != nil {
		return "", err
	}
	if !deleted {
		return failObs(fmt.Sprintf("no %s with that id", kind)), nil
	}
	out, _ := json.Marshal(map[string]interface{}{"success": true, "deleted": args.ID})
	return string(out), nil
}

func failObs(msg string) string {
	out, _ := json.Marshal(map[string]interface{}{"success": false, "error": msg})
	return string(out)
}

func itemObs(kind string, item interface{}) string {
	out, _ := json.Marshal(map[string]interface{}{"success": true, kind: item})
	return string(out)
}

func listObs(kind string, count int, items interface{}) string {
	out, _ := json.Marshal(map[string]interface{}{"success": true, "count": count, kind: items})
	return string(out)
}
