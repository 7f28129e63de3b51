package tools

import (
	"fmt"
	"sort"
)

// Tool names. The handlers that implement them live in internal/agent;
// this package only owns the catalog the model sees.
const (
	GetScheduleItems   = "get_schedule_items"
	CreateScheduleItem = "create_schedule_item"
	UpdateScheduleItem = "update_schedule_item"
	DeleteScheduleItem = "delete_schedule_item"

	GetIdeas   = "get_ideas"
	CreateIdea = "create_idea"
	UpdateIdea = "update_idea"
	DeleteIdea = "delete_idea"

	GetGoals   = "get_goals"
	CreateGoal = "create_goal"
	UpdateGoal = "update_goal"
	DeleteGoal = "delete_goal"

	GetResources   = "get_resources"
	CreateResource = "create_resource"
	UpdateResource = "update_resource"
	DeleteResource = "delete_resource"

	GetUserBio    = "get_user_bio"
	UpdateUserBio = "update_user_bio"

	SearchWebResources = "search_web_resources"
)

// Tool describes one catalog entry in the shape the chat-completions API
// expects for a function tool.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
	Required    []string
}

// Registry is the fixed tool catalog. It is immutable after construction
// and safe for concurrent reads.
type Registry struct {
	tools map[string]*Tool
	order []string
}

// NewRegistry builds the full catalog. searchEnabled controls whether
// search_web_resources is advertised; a deployment without a search backend
// must not offer the tool at all.
func NewRegistry(searchEnabled bool) *Registry {
	r := &Registry{tools: make(map[string]*Tool)}
	for _, t := range catalog() {
		if t.Name == SearchWebResources && !searchEnabled {
			continue
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Has reports whether name is in the catalog.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Names returns the catalog tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of tools in the catalog.
func (r *Registry) Count() int {
	return len(r.tools)
}

// Definitions returns the catalog in OpenAI tool format, ready to send on a
// chat-completions request.
func (r *Registry) Definitions() []map[string]interface{} {
	defs := make([]map[string]interface{}, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		params := map[string]interface{}{
			"type":       "object",
			"properties": t.Parameters,
		}
		if len(t.Required) > 0 {
			params["required"] = t.Required
		}
		defs = append(defs, map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  params,
			},
		})
	}
	return defs
}

// ValidateArgs checks that every required parameter is present and non-empty
// in the decoded arguments. Returns the sorted list of missing parameters in
// the error so the model can repair its call on the next iteration.
func (r *Registry) ValidateArgs(name string, args map[string]interface{}) error {
	t, ok := r.tools[name]
	if !ok {
		return fmt.Errorf("unknown tool %q", name)
	}
	var missing []string
	for _, req := range t.Required {
		v, present := args[req]
		if !present || v == nil {
			missing = append(missing, req)
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("tool %s missing required parameters: %v", name, missing)
	}
	return nil
}

func strParam(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func intParam(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": desc}
}

func boolParam(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": desc}
}

func enumParam(desc string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc, "enum": values}
}

func catalog() []*Tool {
	idDesc := "Item id from a previous get call"
	return []*Tool{
		{
			Name:        GetScheduleItems,
			Description: "List the user's schedule items. Call this before updating or deleting so you have real ids.",
			Parameters:  map[string]interface{}{},
		},
		{
			Name:        CreateScheduleItem,
			Description: "Create a schedule item. Times are clock strings like '3:00 PM' or '15:00'; date is YYYY-MM-DD and defaults to today.",
			Parameters: map[string]interface{}{
				"title":       strParam("Short title of the event"),
				"description": strParam("Optional details"),
				"priority":    enumParam("Priority level", "low", "medium", "high"),
				"date":        strParam("Event date, YYYY-MM-DD"),
				"start_time":  strParam("Start time, e.g. '3:00 PM' or '15:00'"),
				"end_time":    strParam("End time; defaults to one hour after start"),
				"all_day":     boolParam("True for all-day events"),
				"frequency":   enumParam("Repeat cadence for recurring events", "daily", "weekly", "monthly"),
				"interval":    intParam("Repeat every N periods, default 1"),
				"repeat_days": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Weekday names for weekly repeats, e.g. [\"Monday\", \"Wednesday\"]",
				},
			},
			Required: []string{"title"},
		},
		{
			Name:        UpdateScheduleItem,
			Description: "Update fields of an existing schedule item. Only the fields you pass change.",
			Parameters: map[string]interface{}{
				"id":          strParam(idDesc),
				"title":       strParam("New title"),
				"description": strParam("New details"),
				"priority":    enumParam("New priority", "low", "medium", "high"),
				"date":        strParam("New date, YYYY-MM-DD"),
				"start_time":  strParam("New start time"),
				"end_time":    strParam("New end time"),
				"all_day":     boolParam("All-day flag"),
			},
			Required: []string{"id"},
		},
		{
			Name:        DeleteScheduleItem,
			Description: "Delete a schedule item by id.",
			Parameters:  map[string]interface{}{"id": strParam(idDesc)},
			Required:    []string{"id"},
		},
		{
			Name:        GetIdeas,
			Description: "List the user's saved ideas, newest first.",
			Parameters:  map[string]interface{}{},
		},
		{
			Name:        CreateIdea,
			Description: "Save a new idea or note for the user.",
			Parameters: map[string]interface{}{
				"title":   strParam("Optional short title"),
				"content": strParam("The idea text"),
			},
			Required: []string{"content"},
		},
		{
			Name:        UpdateIdea,
			Description: "Update an existing idea.",
			Parameters: map[string]interface{}{
				"id":      strParam(idDesc),
				"title":   strParam("New title"),
				"content": strParam("New text"),
			},
			Required: []string{"id"},
		},
		{
			Name:        DeleteIdea,
			Description: "Delete an idea by id.",
			Parameters:  map[string]interface{}{"id": strParam(idDesc)},
			Required:    []string{"id"},
		},
		{
			Name:        GetGoals,
			Description: "List the user's goals with progress, newest first.",
			Parameters:  map[string]interface{}{},
		},
		{
			Name:        CreateGoal,
			Description: "Create a goal. Progress starts at 0 unless given.",
			Parameters: map[string]interface{}{
				"title":       strParam("Goal title"),
				"description": strParam("Optional details"),
				"category":    strParam("Free-form category, e.g. 'health'"),
				"target_date": strParam("Target completion date, YYYY-MM-DD"),
				"progress":    intParam("Progress percent, 0-100"),
			},
			Required: []string{"title"},
		},
		{
			Name:        UpdateGoal,
			Description: "Update a goal, typically its progress percent.",
			Parameters: map[string]interface{}{
				"id":          strParam(idDesc),
				"title":       strParam("New title"),
				"description": strParam("New details"),
				"category":    strParam("New category"),
				"target_date": strParam("New target date, YYYY-MM-DD"),
				"progress":    intParam("New progress percent, 0-100"),
			},
			Required: []string{"id"},
		},
		{
			Name:        DeleteGoal,
			Description: "Delete a goal by id.",
			Parameters:  map[string]interface{}{"id": strParam(idDesc)},
			Required:    []string{"id"},
		},
		{
			Name:        GetResources,
			Description: "List the user's saved learning resources, newest first.",
			Parameters:  map[string]interface{}{},
		},
		{
			Name:        CreateResource,
			Description: "Save a learning resource (link) for the user.",
			Parameters: map[string]interface{}{
				"title":           strParam("Resource title"),
				"url":             strParam("Resource URL"),
				"description":     strParam("Why this resource is relevant"),
				"category":        enumParam("Resource type", "Article", "Video", "Course", "Tool"),
				"relevance_score": intParam("Relevance to the user's goals, 0-100"),
			},
			Required: []string{"title", "url"},
		},
		{
			Name:        UpdateResource,
			Description: "Update a saved resource.",
			Parameters: map[string]interface{}{
				"id":              strParam(idDesc),
				"title":           strParam("New title"),
				"url":             strParam("New URL"),
				"description":     strParam("New description"),
				"category":        enumParam("New type", "Article", "Video", "Course", "Tool"),
				"relevance_score": intParam("New relevance, 0-100"),
			},
			Required: []string{"id"},
		},
		{
			Name:        DeleteResource,
			Description: "Delete a saved resource by id.",
			Parameters:  map[string]interface{}{"id": strParam(idDesc)},
			Required:    []string{"id"},
		},
		{
			Name:        GetUserBio,
			Description: "Read the user's biography: standing facts about who they are and what they want.",
			Parameters:  map[string]interface{}{},
		},
		{
			Name:        UpdateUserBio,
			Description: "Replace the user's biography. Pass the complete new text; it is not merged.",
			Parameters:  map[string]interface{}{"bio": strParam("The full replacement biography text")},
			Required:    []string{"bio"},
		},
		{
			Name:        SearchWebResources,
			Description: "Search the web for learning resources on a topic. Returns candidates; use create_resource to save the good ones.",
			Parameters: map[string]interface{}{
				"query":       strParam("What to search for"),
				"max_results": intParam("Maximum candidates to return, default 5"),
			},
			Required: []string{"query"},
		},
	}
}
