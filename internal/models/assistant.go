package models

// ChatMessage is one entry in the model conversation, in OpenAI wire shape.
// A request owns its message history exclusively; histories are never shared
// across requests except as caller-supplied prior context.
type ChatMessage struct {
	Role       string     `json:"role"` // system, user, assistant, tool
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a structured tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"` // always "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the tool name and its raw JSON arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// AssistantRequest is the body of POST /api/assistant/chat. The user id
// comes from the auth middleware, never from the body.
type AssistantRequest struct {
	Query       string        `json:"query"`
	ChatHistory []ChatMessage `json:"chatHistory,omitempty"`
	SessionID   string        `json:"sessionId,omitempty"`
	CurrentDate string        `json:"currentDate,omitempty"` // YYYY-MM-DD
	CurrentTime string        `json:"currentTime,omitempty"` // HH:MM
}

// AssistantResponse is the structured result of one agent loop run: the
// final natural-language message plus a diff of everything that changed.
type AssistantResponse struct {
	Message            string         `json:"message"`
	ScheduleUpdates    []ScheduleItem `json:"scheduleUpdates"`
	IdeasUpdates       []Idea         `json:"ideasUpdates"`
	GoalsUpdates       []Goal         `json:"goalsUpdates"`
	ResourcesUpdates   []Resource     `json:"resourcesUpdates"`
	ScheduleDeletions  []string       `json:"scheduleDeletions"`
	IdeasDeletions     []string       `json:"ideasDeletions"`
	GoalsDeletions     []string       `json:"goalsDeletions"`
	ResourcesDeletions []string       `json:"resourcesDeletions"`
	BioUpdate          *string        `json:"bioUpdate"`
	Thoughts           string         `json:"thoughts,omitempty"`
	Warnings           []string       `json:"warnings,omitempty"`
	SessionID          string         `json:"sessionId"`
}
