package graph

import "context"

const (
	contextPreamble = "Based on the retrieved documents:\n\n"
	noProcessing    = "\n\n(No processing applied)"
)

// outputProcessor formats the terminal answer.
type outputProcessor struct{}

func (outputProcessor) Process(_ context.Context, _ Node, rec Record, _ string) (Record, error) {
	switch {
	case rec.LLMResponse != "":
		rec.Output = rec.LLMResponse
	case rec.Context != "":
		rec.Output = contextPreamble + rec.Context
	default:
		rec.Output = rec.Query + noProcessing
	}
	return rec, nil
}

func (outputProcessor) Render(rec Record) string { return rec.Output }
