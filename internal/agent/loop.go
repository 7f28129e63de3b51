package agent

import (
	"context"
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

// Completer is one chat-completion call against an OpenAI-compatible
// endpoint. Implementations return the assistant text and any tool calls
// the model requested.
type Completer interface {
	Complete(ctx context.Context, messages []models.ChatMessage, toolDefs []map[string]interface{}) (string, []models.ToolCall, error)
}

// DefaultMaxIterations bounds the reasoning loop. Each iteration is one
// model call and at most one tool execution.
const DefaultMaxIterations = 6

// ErrCapability marks failures of the model backend itself, as opposed to
// tool failures, which are fed back to the model as observations.
var ErrCapability = errors.New("model backend unavailable")

const budgetExhaustedNudge = "You have no tool calls left. Summarize for the user what you accomplished and what remains undone. Do not call any tools."

// Loop runs bounded tool-calling conversations. One Loop is shared across
// requests; all per-run state lives in Run's locals.
type Loop struct {
	completer     Completer
	dispatcher    *Dispatcher
	registry      *tools.Registry
	bios          store.BioStore
	maxIterations int
	now           func() time.Time
}

// NewLoop wires the orchestration loop. maxIterations <= 0 selects the
// default bound.
func NewLoop(completer Completer, dispatcher *Dispatcher, registry *tools.Registry, bios store.BioStore, maxIterations int) *Loop {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Loop{
		completer:     completer,
		dispatcher:    dispatcher,
		registry:      registry,
		bios:          bios,
		maxIterations: maxIterations,
		now:           time.Now,
	}
}

// Run executes one full agent conversation for userID and returns the
// aggregated response. Transport failures on the model call surface as
// errors; tool failures never do, they become observations the model sees.
func (l *Loop) Run(ctx context.Context, userID string, req *models.AssistantRequest) (*models.AssistantResponse, error) {
	today := timeparse.ParseDate(req.CurrentDate, time.Local, l.now())

	bio, err := l.bios.Get(ctx, userID)
	if err != nil {
		log.Printf("⚠️ [AGENT] bio lookup failed for user %s: %v", userID, err)
		bio = ""
	}

	messages := make([]models.ChatMessage, 0, len(req.ChatHistory)+2)
	messages = append(messages, models.ChatMessage{
		Role:    "system",
		Content: buildSystemPrompt(today, req.CurrentTime, bio, l.registry.Has(tools.SearchWebResources)),
	})
	messages = append(messages, req.ChatHistory...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: req.Query})

	agg := NewAggregator()
	toolDefs := l.registry.Definitions()
	var thoughts string

	for i := 0; i < l.maxIterations; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		content, toolCalls, err := l.completer.Complete(ctx, messages, toolDefs)
		if err != nil {
			return nil, fmt.Errorf("%w: iteration %d: %v", ErrCapability, i+1, err)
		}

		if len(toolCalls) == 0 {
			if content == "" {
				// Neither text nor an action. Nudge the model for a
				// summary rather than returning an empty reply.
				log.Printf("⚠️ [AGENT] user %s got empty response at iteration %d, forcing summary", userID, i+1)
				if m := services.GetMetrics(); m != nil {
					m.RecordLoopIterations(i + 1)
				}
				return l.forceSummary(ctx, userID, messages, agg, thoughts, req.SessionID)
			}
			log.Printf("✅ [AGENT] user %s done after %d iteration(s)", userID, i+1)
			if m := services.GetMetrics(); m != nil {
				m.RecordLoopIterations(i + 1)
			}
			return agg.Finalize(content, thoughts, req.SessionID), nil
		}

		// One action per step. Extra calls in the same response are
		// dropped so every observation is attributable to one decision.
		call := toolCalls[0]
		if len(toolCalls) > 1 {
			agg.Warn(fmt.Sprintf("model requested %d tool calls at once, executed only %s", len(toolCalls), call.Function.Name))
		}
		if call.ID == "" {
			call.ID = fmt.Sprintf("call_%d", i+1)
		}
		if content != "" {
			if thoughts != "" {
				thoughts += "\n"
			}
			thoughts += content
		}

		messages = append(messages, models.ChatMessage{
			Role:      "assistant",
			Content:   content,
			ToolCalls: []models.ToolCall{call},
		})

		log.Printf("🔧 [AGENT] iteration %d/%d user %s tool %s", i+1, l.maxIterations, userID, call.Function.Name)
		observation := l.dispatcher.Execute(ctx, userID, call, agg, today)

		messages = append(messages, models.ChatMessage{
			Role:       "tool",
			ToolCallID: call.ID,
			Name:       call.Function.Name,
			Content:    observation,
		})
	}

	// Budget exhausted: force a tool-free summary so the user always gets
	// an answer that reflects the work actually done.
	log.Printf("⚠️ [AGENT] user %s hit the %d-iteration bound, forcing summary", userID, l.maxIterations)
	agg.Warn(fmt.Sprintf("stopped after %d steps; the reply summarizes partial progress", l.maxIterations))
	if m := services.GetMetrics(); m != nil {
		m.RecordLoopIterations(l.maxIterations + 1)
	}

	return l.forceSummary(ctx, userID, messages, agg, thoughts, req.SessionID)
}

// forceSummary asks the model for one last tool-free reply. It never fails
// the run; if the model misbehaves again the response falls back to the
// last assistant text or a canned apology.
func (l *Loop) forceSummary(ctx context.Context, userID string, messages []models.ChatMessage, agg *Aggregator, thoughts, sessionID string) (*models.AssistantResponse, error) {
	messages = append(messages, models.ChatMessage{Role: "user", Content: budgetExhaustedNudge})
	content, _, err := l.completer.Complete(ctx, messages, nil)
	if err != nil || content == "" {
		if err != nil {
			log.Printf("❌ [AGENT] forced summary failed for user %s: %v", userID, err)
		}
		content = lastAssistantContent(messages)
		if content == "" {
			content = "I ran out of steps before finishing. Some of your request may be incomplete, please check your dashboard."
		}
	}
	return agg.Finalize(content, thoughts, sessionID), nil
}

func lastAssistantContent(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "assistant" && messages[i].Content != "" {
			return messages[i].Content
		}
	}
	return ""
}
