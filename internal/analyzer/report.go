package analyzer

import (
	"fmt"
	"strings"
)

// Format renders the report as a Telegram-ready plain text message.
func (r *Report) Format() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 Repository Analysis: %s\n\n", r.FullName)

	if r.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", r.Description)
	}

	language := r.Language
	if language == "" {
		language = "unknown"
	}
	fmt.Fprintf(&sb, "⭐ Stars: %d\n", r.Stars)
	fmt.Fprintf(&sb, "🍴 Forks: %d\n", r.Forks)
	fmt.Fprintf(&sb, "🐛 Open issues: %d\n", r.OpenIssues)
	fmt.Fprintf(&sb, "💻 Language: %s\n", language)

	if len(r.Suggestions) > 0 {
		sb.WriteString("\n💡 Suggestions:\n")
		for _, s := range r.Suggestions {
			fmt.Fprintf(&sb, "• %s\n", s)
		}
	}

	if r.Summary != "" {
		fmt.Fprintf(&sb, "\n🤖 Summary:\n%s\n", r.Summary)
	}

	return strings.TrimRight(sb.String(), "\n")
}
