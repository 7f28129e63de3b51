package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"dayflow/internal/models"
	"dayflow/internal/store"
	"dayflow/internal/tools"
)

// scriptedCompleter replays a fixed sequence of model turns and records
// everything it was asked.
type scriptedCompleter struct {
	turns []scriptedTurn
	calls [][]models.ChatMessage
	defs  [][]map[string]interface{}
}

type scriptedTurn struct {
	content   string
	toolCalls []models.ToolCall
}

func (s *scriptedCompleter) Complete(ctx context.Context, messages []models.ChatMessage, toolDefs []map[string]interface{}) (string, []models.ToolCall, error) {
	s.calls = append(s.calls, append([]models.ChatMessage(nil), messages...))
	s.defs = append(s.defs, toolDefs)
	if len(s.turns) == 0 {
		return "out of script", nil, nil
	}
	turn := s.turns[0]
	s.turns = s.turns[1:]
	return turn.content, turn.toolCalls, nil
}

func toolCall(id, name, args string) models.ToolCall {
	return models.ToolCall{
		ID:   id,
		Type: "function",
		Function: models.FunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}

func newTestLoop(completer Completer, stores *store.Stores) *Loop {
	reg := tools.NewRegistry(false)
	return NewLoop(completer, NewDispatcher(stores, reg, nil), reg, stores.Bio, 0)
}

func TestRunNoToolsSingleIteration(t *testing.T) {
	stores := store.NewMemoryStores()
	completer := &scriptedCompleter{turns: []scriptedTurn{
		{content: "You have nothing scheduled today."},
	}}
	loop := newTestLoop(completer, stores)

	resp, err := loop.Run(context.Background(), "alice", &models.AssistantRequest{Query: "what's on today?"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if resp.Message != "You have nothing scheduled today." {
		t.Errorf("message = %q", resp.Message)
	}
	if len(completer.calls) != 1 {
		t.Errorf("model calls = %d, want 1", len(completer.calls))
	}
	if len(resp.ScheduleUpdates) != 0 || len(resp.ScheduleDeletions) != 0 {
		t.Error("no tools ran, diff must be empty")
	}
	if resp.ScheduleDeletions == nil || resp.IdeasUpdates == nil {
		t.Error("diff slices must be non-nil")
	}
}

func TestRunCreateScheduleScenario(t *testing.T) {
	stores := store.NewMemoryStores()
	completer := &scriptedCompleter{turns: []scriptedTurn{
		{toolCalls: []models.ToolCall{toolCall("c1", tools.GetScheduleItems, "{}")}},
		{toolCalls: []models.ToolCall{toolCall("c2", tools.CreateScheduleItem,
			`{"title":"Dentist","date":"2026-03-10","start_time":"3:00 PM","end_time":"4:00 PM","priority":"high"}`)}},
		{content: "Booked your dentist appointment for 3 PM."},
	}}
	loop := newTestLoop(completer, stores)

	resp, err := loop.Run(context.Background(), "alice", &models.AssistantRequest{
		Query:       "add a dentist appointment tomorrow at 3pm",
		CurrentDate: "2026-03-09",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(resp.ScheduleUpdates) != 1 {
		t.Fatalf("schedule updates = %d, want 1", len(resp.ScheduleUpdates))
	}
	item := resp.ScheduleUpdates[0]
	if item.Title != "Dentist" || item.StartTime.Hour() != 15 {
		t.Errorf("item = %+v", item)
	}
	if item.Priority == nil || *item.Priority != models.PriorityHigh {
		t.Errorf("priority = %v, want high", item.Priority)
	}

	stored, err := stores.Schedule.List(context.Background(), "alice", store.OrderByStartTime, true)
	if err != nil || len(stored) != 1 {
		t.Fatalf("stored items = %v, %v", stored, err)
	}
	if stored[0].ID != item.ID {
		t.Error("response diff and store disagree on id")
	}

	// Conversation shape: every executed call has a matching tool message.
	final := completer.calls[2]
	var toolMsgs int
	for _, m := range final {
		if m.Role == "tool" {
			toolMsgs++
			if m.ToolCallID == "" || m.Name == "" {
				t.Error("tool message missing call id or name")
			}
		}
	}
	if toolMsgs != 2 {
		t.Errorf("tool messages seen by final turn = %d, want 2", toolMsgs)
	}
}

func TestRunIterationBoundForcesSummary(t *testing.T) {
	stores := store.NewMemoryStores()
	turns := make([]scriptedTurn, 0, DefaultMaxIterations+1)
	for i := 0; i < DefaultMaxIterations; i++ {
		turns = append(turns, scriptedTurn{toolCalls: []models.ToolCall{toolCall("", tools.GetIdeas, "{}")}})
	}
	turns = append(turns, scriptedTurn{content: "I listed your ideas several times but could not finish."})
	completer := &scriptedCompleter{turns: turns}
	loop := newTestLoop(completer, stores)

	resp, err := loop.Run(context.Background(), "alice", &models.AssistantRequest{Query: "loop forever"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(completer.calls) != DefaultMaxIterations+1 {
		t.Fatalf("model calls = %d, want %d", len(completer.calls), DefaultMaxIterations+1)
	}
	// Forced summary turn must not offer tools.
	if last := completer.defs[len(completer.defs)-1]; last != nil {
		t.Error("summary turn must be tool-free")
	}
	if resp.Message == "" {
		t.Error("budget exhaustion must still produce an answer")
	}
	found := false
	for _, w := range resp.Warnings {
		if strings.Contains(w, "stopped after") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want step-limit warning", resp.Warnings)
	}
}

func TestRunThoughtsAccumulateAcrossIterations(t *testing.T) {
	stores := store.NewMemoryStores()
	completer := &scriptedCompleter{turns: []scriptedTurn{
		{content: "Checking the calendar first.", toolCalls: []models.ToolCall{toolCall("c1", tools.GetScheduleItems, "{}")}},
		{content: "Nothing booked, adding the slot.", toolCalls: []models.ToolCall{toolCall("c2", tools.CreateScheduleItem,
			`{"title":"Focus block","date":"2026-03-10","start_time":"09:00","end_time":"10:00"}`)}},
		{content: "Your focus block is booked."},
	}}
	loop := newTestLoop(completer, stores)

	resp, err := loop.Run(context.Background(), "alice", &models.AssistantRequest{
		Query:       "block an hour tomorrow morning",
		CurrentDate: "2026-03-09",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "Checking the calendar first.\nNothing booked, adding the slot."
	if resp.Thoughts != want {
		t.Errorf("thoughts = %q, want both turns kept in order", resp.Thoughts)
	}
}

func TestRunEmptyResponseForcesSummary(t *testing.T) {
	stores := store.NewMemoryStores()
	completer := &scriptedCompleter{turns: []scriptedTurn{
		{toolCalls: []models.ToolCall{toolCall("c1", tools.CreateIdea, `{"content":"ship it"}`)}},
		{}, // no text, no tool calls
		{content: "I saved your idea."},
	}}
	loop := newTestLoop(completer, stores)

	resp, err := loop.Run(context.Background(), "alice", &models.AssistantRequest{Query: "note: ship it"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(completer.calls) != 3 {
		t.Fatalf("model calls = %d, want a third summary turn", len(completer.calls))
	}
	// Summary turn must not offer tools.
	if last := completer.defs[len(completer.defs)-1]; last != nil {
		t.Error("summary turn must be tool-free")
	}
	if resp.Message != "I saved your idea." {
		t.Errorf("message = %q, want the summary, never empty", resp.Message)
	}
	if len(resp.IdeasUpdates) != 1 {
		t.Errorf("ideas updates = %d, tool work before the stall must survive", len(resp.IdeasUpdates))
	}
}

func TestRunUnknownToolBecomesObservation(t *testing.T) {
	stores := store.NewMemoryStores()
	completer := &scriptedCompleter{turns: []scriptedTurn{
		{toolCalls: []models.ToolCall{toolCall("c1", "send_email", `{"to":"x"}`)}},
		{content: "Sorry, I cannot send email."},
	}}
	loop := newTestLoop(completer, stores)

	resp, err := loop.Run(context.Background(), "alice", &models.AssistantRequest{Query: "email my dentist"})
	if err != nil {
		t.Fatalf("unknown tool must not abort the run: %v", err)
	}
	if resp.Message != "Sorry, I cannot send email." {
		t.Errorf("message = %q", resp.Message)
	}

	second := completer.calls[1]
	obs := second[len(second)-1]
	if obs.Role != "tool" {
		t.Fatalf("last message role = %s, want tool", obs.Role)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(obs.Content), &parsed); err != nil {
		t.Fatalf("observation not JSON: %v", err)
	}
	if parsed["success"] != false || !strings.Contains(obs.Content, "unknown tool") {
		t.Errorf("observation = %s", obs.Content)
	}
}

func TestRunCrossOwnerDeleteFails(t *testing.T) {
	ctx := context.Background()
	stores := store.NewMemoryStores()
	idea := &models.Idea{UserID: "bob", Content: "bob's secret", CreatedAt: time.Now()}
	if err := stores.Ideas.Create(ctx, idea); err != nil {
		t.Fatalf("seed: %v", err)
	}

	completer := &scriptedCompleter{turns: []scriptedTurn{
		{toolCalls: []models.ToolCall{toolCall("c1", tools.DeleteIdea, `{"id":"`+idea.ID+`"}`)}},
		{content: "That idea does not exist."},
	}}
	loop := newTestLoop(completer, stores)

	resp, err := loop.Run(ctx, "alice", &models.AssistantRequest{Query: "delete that idea"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(resp.IdeasDeletions) != 0 {
		t.Error("cross-owner delete must not appear in the diff")
	}

	second := completer.calls[1]
	obs := second[len(second)-1].Content
	if !strings.Contains(obs, `"success":false`) {
		t.Errorf("observation = %s, want failure", obs)
	}
	if ideas, _ := stores.Ideas.List(ctx, "bob", store.OrderByCreatedAt, false); len(ideas) != 1 {
		t.Error("bob's idea must survive")
	}
}

func TestRunMultipleToolCallsExecutesFirstOnly(t *testing.T) {
	stores := store.NewMemoryStores()
	completer := &scriptedCompleter{turns: []scriptedTurn{
		{toolCalls: []models.ToolCall{
			toolCall("c1", tools.CreateIdea, `{"content":"first"}`),
			toolCall("c2", tools.CreateIdea, `{"content":"second"}`),
		}},
		{content: "Saved your idea."},
	}}
	loop := newTestLoop(completer, stores)

	resp, err := loop.Run(context.Background(), "alice", &models.AssistantRequest{Query: "save two ideas"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	ideas, _ := stores.Ideas.List(context.Background(), "alice", store.OrderByCreatedAt, false)
	if len(ideas) != 1 || ideas[0].Content != "first" {
		t.Errorf("stored ideas = %v, want only the first call applied", ideas)
	}
	found := false
	for _, w := range resp.Warnings {
		if strings.Contains(w, "executed only") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want dropped-calls warning", resp.Warnings)
	}
}

func TestRunTimeFallbackSurfacesWarning(t *testing.T) {
	stores := store.NewMemoryStores()
	completer := &scriptedCompleter{turns: []scriptedTurn{
		{toolCalls: []models.ToolCall{toolCall("c1", tools.CreateScheduleItem,
			`{"title":"Standup","start_time":"whenever works"}`)}},
		{content: "Added your standup."},
	}}
	loop := newTestLoop(completer, stores)

	resp, err := loop.Run(context.Background(), "alice", &models.AssistantRequest{
		Query:       "add standup",
		CurrentDate: "2026-03-09",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(resp.ScheduleUpdates) != 1 {
		t.Fatalf("updates = %d, want 1", len(resp.ScheduleUpdates))
	}
	if got := resp.ScheduleUpdates[0].StartTime.Hour(); got != 12 {
		t.Errorf("fallback start hour = %d, want 12", got)
	}
	if len(resp.Warnings) == 0 {
		t.Error("time fallback must surface a warning")
	}
}

func TestRunOverlappingItemsAllowed(t *testing.T) {
	ctx := context.Background()
	stores := store.NewMemoryStores()

	completer := &scriptedCompleter{turns: []scriptedTurn{
		{toolCalls: []models.ToolCall{toolCall("c1", tools.CreateScheduleItem,
			`{"title":"Call A","date":"2026-03-10","start_time":"10:00","end_time":"11:00"}`)}},
		{toolCalls: []models.ToolCall{toolCall("c2", tools.CreateScheduleItem,
			`{"title":"Call B","date":"2026-03-10","start_time":"10:30","end_time":"11:30"}`)}},
		{content: "Both calls are on your calendar."},
	}}
	loop := newTestLoop(completer, stores)

	resp, err := loop.Run(ctx, "alice", &models.AssistantRequest{Query: "book both calls"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(resp.ScheduleUpdates) != 2 {
		t.Errorf("updates = %d, overlap must not block creation", len(resp.ScheduleUpdates))
	}
}

func TestRunBioInSystemPrompt(t *testing.T) {
	ctx := context.Background()
	stores := store.NewMemoryStores()
	if err := stores.Bio.Set(ctx, "alice", "Marathon runner, trains at dawn."); err != nil {
		t.Fatalf("seed bio: %v", err)
	}

	completer := &scriptedCompleter{turns: []scriptedTurn{{content: "Good luck with training!"}}}
	loop := newTestLoop(completer, stores)

	if _, err := loop.Run(ctx, "alice", &models.AssistantRequest{Query: "hi"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	system := completer.calls[0][0]
	if system.Role != "system" || !strings.Contains(system.Content, "Marathon runner") {
		t.Error("bio must be embedded in the system prompt")
	}
}
