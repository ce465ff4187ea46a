package graph

import (
	"fmt"
	"strings"
)

const noContextSentinel = "No document context available."

// buildPrompt composes the answering prompt. hits, when present, are the
// web results appended for the augmented second call.
func buildPrompt(summary, context, query string, hits []SearchHit) string {
	if strings.TrimSpace(context) == "" {
		context = noContextSentinel
	}

	var b strings.Builder
	b.WriteString("You are a helpful assistant that answers questions about the user's documents.\n\n")
	b.WriteString("Conversation history:\n")
	b.WriteString(summary)
	b.WriteString("\n\nDocument context:\n")
	b.WriteString(context)
	b.WriteString("\n\n")

	if len(hits) > 0 {
		b.WriteString("Web search results:\n")
		for i, h := range hits {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, hitText(h)))
		}
		b.WriteString("\n")
	}

	b.WriteString("User question:\n")
	b.WriteString(query)
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("- Ground your answer in the document context when it is relevant to the question.\n")
	if len(hits) > 0 {
		b.WriteString("- Use the web search results where the documents fall short.\n")
	}
	b.WriteString("- If the context does not cover the question, answer from general knowledge.\n")
	b.WriteString("- Say explicitly when the provided context is insufficient to answer.\n")
	return b.String()
}

func hitText(h SearchHit) string {
	switch {
	case h.Snippet != "" && h.Title != "":
		return h.Title + ": " + h.Snippet
	case h.Snippet != "":
		return h.Snippet
	default:
		return h.Title
	}
}
