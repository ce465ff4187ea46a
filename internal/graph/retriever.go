package graph

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/log"
)

const (
	NoDocumentsFound = "No relevant documents found"
	passageSeparator = "\n\n"
)

type knowledgeBaseProcessor struct {
	retriever Retriever
	settings  Settings
}

func (p *knowledgeBaseProcessor) Process(ctx context.Context, node Node, rec Record, _ string) (Record, error) {
	if rec.Query == "" {
		return rec, nil
	}
	if p.retriever == nil {
		rec.Context = ""
		rec.Output = NoDocumentsFound
		return rec, nil
	}

	k := p.settings.TopK
	if k <= 0 {
		k = 3
	}

	callCtx, cancel := withTimeout(ctx, p.settings.RetrievalTimeout)
	defer cancel()
	passages, err := p.retriever.QuerySimilar(callCtx, rec.Query, k)
	if err != nil {
		log.Component("knowledge-base").Warn("retrieval failed",
			zap.String("nodeID", node.ID), zap.Error(err))
		rec.Context = ""
		rec.Output = fmt.Sprintf("Error retrieving documents: %v", err)
		return rec, nil
	}

	texts := make([]string, 0, len(passages))
	for _, ps := range passages {
		if t := strings.TrimSpace(ps.Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		rec.Context = ""
		rec.Output = NoDocumentsFound
		return rec, nil
	}

	rec.Context = strings.Join(texts, passageSeparator)
	rec.Output = rec.Context
	return rec, nil
}

// Render shows the retrieved context, or the sentinel/error text when
// nothing was retrieved.
func (p *knowledgeBaseProcessor) Render(rec Record) string {
	if rec.Context != "" {
		return rec.Context
	}
	return rec.Output
}
