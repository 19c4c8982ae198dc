package command

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/game/actions"
)

// DefaultLLMTimeout bounds one router call when no override is configured.
const DefaultLLMTimeout = 10 * time.Second

// Processor runs the full pipeline over raw player text. A nil router skips
// the LLM stage and degrades straight to suggestions.
type Processor struct {
	logger     *zap.Logger
	tagger     *EntityTagger
	exec       *Executor
	router     Router
	llmTimeout time.Duration
}

// NewProcessor wires the pipeline stages together.
//
// Precondition: logger, tagger, and exec must not be nil. router may be nil.
func NewProcessor(logger *zap.Logger, tagger *EntityTagger, exec *Executor, router Router, llmTimeout time.Duration) *Processor {
	if llmTimeout <= 0 {
		llmTimeout = DefaultLLMTimeout
	}
	return &Processor{
		logger:     logger,
		tagger:     tagger,
		exec:       exec,
		router:     router,
		llmTimeout: llmTimeout,
	}
}

// Process routes one input line for an entity through the stages in order,
// executing the resolved command.
//
// Postcondition: always returns a non-nil Parsed carrying the confidence of
// the stage that resolved it; unresolved input yields action "unknown" with
// verb suggestions. The Result's Data includes the parsed command.
func (p *Processor) Process(ctx context.Context, entityID, text string) (*Parsed, actions.Result) {
	if parsed := prescan(text); parsed != nil {
		return p.finish(entityID, parsed, p.exec.Execute(entityID, parsed))
	}

	entities := p.tagger.Tag(text)
	parsed := matchPatterns(text)
	if parsed == nil {
		parsed = matchVerb(text)
	}
	if parsed != nil {
		parsed.Entities = entities
		if matchesTarget(entities, parsed.Target) {
			parsed.boost()
		}
		if parsed.Confidence >= LLMThreshold {
			return p.finish(entityID, parsed, p.exec.Execute(entityID, parsed))
		}
	}

	if p.router != nil {
		llmCtx, cancel := context.WithTimeout(ctx, p.llmTimeout)
		defer cancel()
		routed, res, err := p.router.Route(llmCtx, entityID, text)
		if err == nil {
			routed.Entities = entities
			return p.finish(entityID, routed, res)
		}
		p.logger.Warn("llm routing failed, degrading",
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}

	// A low-confidence deterministic parse beats guessing: execute it but
	// annotate the result so callers can surface the uncertainty.
	if parsed != nil {
		res := p.exec.Execute(entityID, parsed)
		if res.Data == nil {
			res.Data = map[string]any{}
		}
		res.Data["low_confidence"] = true
		return p.finish(entityID, parsed, res)
	}

	unknown := &Parsed{
		Action:      ActionUnknown,
		Confidence:  ConfidenceUnknown,
		Raw:         text,
		Entities:    entities,
		Suggestions: suggestVerbs(text),
	}
	res := actions.Result{
		Message: "You are not sure how to do that.",
		Data: map[string]any{
			"reason":      "unknown_command",
			"suggestions": unknown.Suggestions,
		},
	}
	return p.finish(entityID, unknown, res)
}

// finish attaches the parsed command to the result and logs the outcome.
func (p *Processor) finish(entityID string, parsed *Parsed, res actions.Result) (*Parsed, actions.Result) {
	if res.Data == nil {
		res.Data = map[string]any{}
	}
	res.Data["command"] = parsed
	p.logger.Debug("command processed",
		zap.String("entity_id", entityID),
		zap.String("action", string(parsed.Action)),
		zap.Float64("confidence", parsed.Confidence),
		zap.Bool("success", res.Success),
	)
	return parsed, res
}
