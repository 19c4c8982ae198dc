package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fablemud/internal/game/actions"
)

// Router resolves input the deterministic stages could not place. The routed
// command is executed as a side effect, so Route yields both the structured
// command and its result.
type Router interface {
	Route(ctx context.Context, entityID, input string) (*Parsed, actions.Result, error)
}

// routerSystemPrompt constrains the model to tool selection only. The
// take-off rule mirrors the pre-scan stage: phrasings like "take off the
// ring" describe removing worn equipment, not picking an item up.
const routerSystemPrompt = `You route player commands in a fantasy text adventure to exactly one tool.
Pick the single tool that best matches the player's intent and pass the
relevant object of the command as the argument string.

Disambiguation rules:
- "take off X", "take X off", "remove X" always mean unequip, never take.
- Bare compass directions mean move.
- Unnamed observation ("where am I") means look.`

// llmTool pairs a canonical action with its tool description.
type llmTool struct {
	action Action
	desc   string
}

var llmTools = []llmTool{
	{ActionMove, "Move the player toward a direction, exit, or named place."},
	{ActionLook, "Describe the player's surroundings or a named thing."},
	{ActionTake, "Pick an item up from the ground or a container."},
	{ActionDrop, "Drop an item from the player's inventory."},
	{ActionUse, "Use, drink, eat, or apply an inventory item."},
	{ActionTalk, "Talk to a character, optionally about a topic."},
	{ActionAttack, "Attack a creature or character."},
	{ActionCastMagic, "Cast a named spell."},
	{ActionInventory, "Show the player's inventory."},
	{ActionSearch, "Search the current location for hidden things."},
	{ActionUnlock, "Unlock or open a locked container or door."},
	{ActionEquip, "Equip, wield, or wear an item."},
	{ActionUnequip, "Unequip or take off a worn or wielded item."},
}

// AnthropicRouter routes unresolved input through the Anthropic Messages API
// with one tool per canonical action, then executes the selected tool call.
type AnthropicRouter struct {
	logger *zap.Logger
	client anthropic.Client
	model  anthropic.Model
	exec   *Executor
	tools  []anthropic.ToolUnionParam
}

// NewAnthropicRouter builds a router against the given API key and model.
//
// Precondition: logger and exec must not be nil; apiKey must be a valid key.
func NewAnthropicRouter(logger *zap.Logger, apiKey, model string, exec *Executor) *AnthropicRouter {
	tools := make([]anthropic.ToolUnionParam, 0, len(llmTools))
	for _, t := range llmTools {
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        string(t.action),
				Description: anthropic.String(t.desc),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"argument": map[string]any{
							"type":        "string",
							"description": "The object of the command: a direction, item, container, character, spell, or topic. Empty when the command has no object.",
						},
					},
					Required: []string{"argument"},
				},
			},
		})
	}
	return &AnthropicRouter{
		logger: logger,
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
		exec:   exec,
		tools:  tools,
	}
}

// Route sends the input to the model, converts the selected tool call into a
// Parsed command, and executes it through the facade.
//
// Postcondition: honors ctx's deadline; a response without a tool call is an
// error so the caller can degrade to the suggestions path.
func (r *AnthropicRouter) Route(ctx context.Context, entityID, input string) (*Parsed, actions.Result, error) {
	msg, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     r.model,
		MaxTokens: 256,
		System:    []anthropic.TextBlockParam{{Text: routerSystemPrompt}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(input))},
		Tools:     r.tools,
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfAny: &anthropic.ToolChoiceAnyParam{},
		},
	})
	if err != nil {
		return nil, actions.Result{}, fmt.Errorf("command: AnthropicRouter.Route: %w", err)
	}

	for _, block := range msg.Content {
		use, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}
		var args struct {
			Argument string `json:"argument"`
		}
		if err := json.Unmarshal(use.Input, &args); err != nil {
			return nil, actions.Result{}, fmt.Errorf("command: AnthropicRouter.Route: decoding tool input: %w", err)
		}

		parsed := &Parsed{
			Action:     Action(use.Name),
			Target:     args.Argument,
			Confidence: ConfidenceLLMNoRun,
			Raw:        input,
		}
		res := r.exec.Execute(entityID, parsed)
		if res.Success {
			parsed.Confidence = ConfidenceLLMOk
		}
		r.logger.Debug("llm routed command",
			zap.String("entity_id", entityID),
			zap.String("action", use.Name),
			zap.String("target", args.Argument),
			zap.Bool("success", res.Success),
		)
		return parsed, res, nil
	}
	return nil, actions.Result{}, fmt.Errorf("command: AnthropicRouter.Route: model returned no tool call")
}
