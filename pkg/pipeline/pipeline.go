// Package pipeline implements the conversational text-to-SQL workflow: a
// state machine that classifies intent, resolves schema context, plans,
// generates, and executes SQL with a single bounded correction attempt, or
// answers out-of-scope questions from the knowledge base.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/apperrors"
	"github.com/datachat-io/datachat-engine/pkg/datasource"
	"github.com/datachat-io/datachat-engine/pkg/llm"
	"github.com/datachat-io/datachat-engine/pkg/models"
	"github.com/datachat-io/datachat-engine/pkg/schema"
)

// SchemaRetriever supplies schema fragments relevant to a question.
type SchemaRetriever interface {
	RetrieveSchema(ctx context.Context, question string, topK int) ([]models.SchemaFragment, error)
}

// KnowledgeRetriever supplies knowledge-base passages relevant to a question.
type KnowledgeRetriever interface {
	RetrieveKnowledge(ctx context.Context, question string, topK int) ([]models.KnowledgePassage, error)
}

const (
	defaultSchemaTopK    = 5
	defaultKnowledgeTopK = 4

	// maxSteps bounds the run loop. The longest legal path is eight node
	// visits; anything beyond that indicates a routing bug.
	maxSteps = 12
)

// Deps are the collaborators a Pipeline needs. Executor may be nil when no
// datasource is configured; the execute node reports that as a non-retriable
// error instead of crashing.
type Deps struct {
	Chat               llm.ChatClient
	SchemaRetriever    SchemaRetriever
	KnowledgeRetriever KnowledgeRetriever
	Resolver           *schema.ContextResolver
	Executor           datasource.QueryExecutor
	Logger             *zap.Logger

	SchemaTopK    int
	KnowledgeTopK int
	QueryLimit    int
}

// Pipeline runs the workflow. It is safe for concurrent use: each Run
// operates on its own RunState and the collaborators are read-only here.
type Pipeline struct {
	chat               llm.ChatClient
	schemaRetriever    SchemaRetriever
	knowledgeRetriever KnowledgeRetriever
	resolver           *schema.ContextResolver
	executor           datasource.QueryExecutor
	logger             *zap.Logger

	schemaTopK    int
	knowledgeTopK int
	queryLimit    int
}

func New(deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	schemaTopK := deps.SchemaTopK
	if schemaTopK <= 0 {
		schemaTopK = defaultSchemaTopK
	}
	knowledgeTopK := deps.KnowledgeTopK
	if knowledgeTopK <= 0 {
		knowledgeTopK = defaultKnowledgeTopK
	}
	return &Pipeline{
		chat:               deps.Chat,
		schemaRetriever:    deps.SchemaRetriever,
		knowledgeRetriever: deps.KnowledgeRetriever,
		resolver:           deps.Resolver,
		executor:           deps.Executor,
		logger:             logger.Named("pipeline"),
		schemaTopK:         schemaTopK,
		knowledgeTopK:      knowledgeTopK,
		queryLimit:         deps.QueryLimit,
	}
}

// Run executes one full pipeline pass for a user question and returns the
// terminal state. The returned state always carries a FinalResponse unless
// the error is non-nil.
func (p *Pipeline) Run(ctx context.Context, question string) (*RunState, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.ErrEmptyQuestion
	}

	st := &RunState{Query: question}
	current := nodeClassifyIntent

	for steps := 0; current != nodeEnd; steps++ {
		if steps >= maxSteps {
			return nil, fmt.Errorf("pipeline exceeded %d steps at node %q", maxSteps, current)
		}

		p.logger.Debug("entering node", zap.String("node", string(current)))
		upd := p.runNode(ctx, current, st)
		upd.apply(st)

		route, ok := transitions[current]
		if !ok {
			return nil, fmt.Errorf("no transition defined for node %q", current)
		}
		current = route(st)
	}

	return st, nil
}

func (p *Pipeline) runNode(ctx context.Context, n node, st *RunState) update {
	switch n {
	case nodeClassifyIntent:
		return p.classifyIntent(ctx, st)
	case nodeCreateQuery:
		return p.createQuery(ctx, st)
	case nodePlanSQL:
		return p.planSQL(ctx, st)
	case nodeGenerateSQL:
		return p.generateSQL(ctx, st)
	case nodeExecuteSQL:
		return p.executeSQL(ctx, st)
	case nodeSQLCorrection:
		return p.correctSQL(ctx, st)
	case nodeHandleOutOfScope:
		return p.handleOutOfScope(ctx, st)
	case nodeFormatResponse:
		return p.formatResponse(st)
	}
	// Unreachable with a well-formed transition table.
	return update{}
}
