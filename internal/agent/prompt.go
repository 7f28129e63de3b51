package agent

import (
	"fmt"
	"strings"
	"time"
)

// buildSystemPrompt assembles the per-request system message. It embeds the
// current date and time so relative phrases like "tomorrow" resolve, and the
// user's bio so the assistant can personalize without spending a tool call.
func buildSystemPrompt(today time.Time, currentTime, bio string, searchEnabled bool) string {
	var b strings.Builder

	b.WriteString("You are Dayflow, a personal productivity assistant. ")
	b.WriteString("You help the user manage their schedule, capture ideas, track goals, and collect learning resources through the tools provided.\n\n")

	fmt.Fprintf(&b, "Today is %s (%s).", today.Format("2006-01-02"), today.Format("Monday, January 2"))
	if currentTime != "" {
		fmt.Fprintf(&b, " The current time is %s.", currentTime)
	}
	b.WriteString(" Resolve relative dates like \"tomorrow\" or \"next Friday\" against today before calling a tool.\n\n")

	if bio != "" {
		b.WriteString("What you know about the user:\n")
		b.WriteString(bio)
		b.WriteString("\n\n")
	}

	b.WriteString(`Rules:
- Make at most one tool call per step. Read the result before deciding the next step.
- Before updating or deleting anything, call the matching get tool first and use the real id from its result. Never invent ids.
- If a tool call fails, read the error and correct your next call instead of repeating it.
- When the user states a lasting fact about themselves (habits, preferences, situation), fold it into their bio with update_user_bio. Pass the complete new bio text; it replaces the old one.
- When you are done, reply with a short, friendly summary of what you did. Do not mention tools or internal ids in your reply.
`)

	if searchEnabled {
		b.WriteString("- Use search_web_resources when the user asks for learning material, then save only the best candidates with create_resource.\n")
	}

	return b.String()
}
