package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// ToolCaller dispatches one named tool call and returns its textual
// result.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

type loopState int

const (
	stateAwaitingModel loopState = iota
	stateDispatchingTool
	stateDone
	stateFailed
)

// Loop runs the multi-turn tool-calling conversation: it sends the
// history to the model, dispatches any function call the model makes,
// threads the result back as a new turn, and repeats until the model
// answers with text only.
type Loop struct {
	model    ModelClient
	tools    ToolCaller
	maxTurns int
	logger   *slog.Logger
}

// NewLoop creates a loop. maxTurns caps the number of model rounds; 0
// means unbounded.
func NewLoop(model ModelClient, tools ToolCaller, maxTurns int, logger *slog.Logger) *Loop {
	return &Loop{
		model:    model,
		tools:    tools,
		maxTurns: maxTurns,
		logger:   logger,
	}
}

// Run executes one user query to completion and returns the model's
// final text answer. Text the model produces alongside or between tool
// calls is accumulated in order and joined into the answer.
func (l *Loop) Run(ctx context.Context, query string, decls []*genai.FunctionDeclaration) (string, error) {
	history := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{genai.NewPartFromText(query)}},
	}

	var (
		texts   []string
		failMsg string
	)

	state := stateAwaitingModel
	turns := 0

	for state == stateAwaitingModel {
		turns++
		if l.maxTurns > 0 && turns > l.maxTurns {
			return "", fmt.Errorf("tool loop exceeded %d turns without a final answer", l.maxTurns)
		}

		resp, err := l.model.Generate(ctx, history, decls)
		if err != nil {
			return "", err
		}

		call := l.collectParts(resp, &texts)
		if call == nil {
			state = stateDone
			break
		}

		state = stateDispatchingTool

		l.logger.Info("dispatching tool call",
			slog.String("tool", call.Name),
			slog.Int("turn", turns),
		)

		result, err := l.tools.CallTool(ctx, call.Name, call.Args)
		if err != nil {
			// Transport-level failure: surface it as the answer rather
			// than aborting the conversation.
			failMsg = fmt.Sprintf("Error executing tool %s: %v", call.Name, err)
			state = stateFailed

			break
		}

		history = append(history,
			&genai.Content{Role: "model", Parts: []*genai.Part{{FunctionCall: call}}},
			&genai.Content{Role: "user", Parts: []*genai.Part{{
				FunctionResponse: &genai.FunctionResponse{
					Name:     call.Name,
					Response: map[string]any{"content": result},
				},
			}}},
		)

		state = stateAwaitingModel
	}

	if state == stateFailed {
		return failMsg, nil
	}

	return strings.Join(texts, "\n"), nil
}

// collectParts walks the response parts in order, appending text parts
// to texts and returning the first function call, or nil when the model
// produced none.
func (l *Loop) collectParts(resp *genai.GenerateContentResponse, texts *[]string) *genai.FunctionCall {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			*texts = append(*texts, part.Text)
		}

		if part.FunctionCall != nil {
			return part.FunctionCall
		}
	}

	return nil
}
