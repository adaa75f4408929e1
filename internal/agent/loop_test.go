package agent

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// scriptedModel returns pre-built responses in order and records the
// history it was given on each turn.
type scriptedModel struct {
	responses []*genai.GenerateContentResponse
	err       error
	histories [][]*genai.Content
}

func (m *scriptedModel) Generate(ctx context.Context, history []*genai.Content, decls []*genai.FunctionDeclaration) (*genai.GenerateContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}

	snapshot := make([]*genai.Content, len(history))
	copy(snapshot, history)
	m.histories = append(m.histories, snapshot)

	resp := m.responses[0]
	m.responses = m.responses[1:]

	return resp, nil
}

type recordedCall struct {
	name string
	args map[string]any
}

// fakeTools returns canned results per tool name and records calls.
type fakeTools struct {
	results map[string]string
	err     error
	calls   []recordedCall
}

func (f *fakeTools) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	f.calls = append(f.calls, recordedCall{name: name, args: args})

	if f.err != nil {
		return "", f.err
	}

	return f.results[name], nil
}

func modelResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: parts}},
		},
	}
}

func textPart(s string) *genai.Part {
	return genai.NewPartFromText(s)
}

func callPart(name string, args map[string]any) *genai.Part {
	return &genai.Part{FunctionCall: &genai.FunctionCall{Name: name, Args: args}}
}

func newTestLoop(model ModelClient, tools ToolCaller, maxTurns int) *Loop {
	return NewLoop(model, tools, maxTurns, slog.New(slog.DiscardHandler))
}

func TestLoop_TextOnlyAnswer(t *testing.T) {
	model := &scriptedModel{responses: []*genai.GenerateContentResponse{
		modelResponse(textPart("You have three spreadsheets.")),
	}}
	tools := &fakeTools{}

	answer, err := newTestLoop(model, tools, 0).Run(context.Background(), "list my spreadsheets", nil)
	require.NoError(t, err)
	assert.Equal(t, "You have three spreadsheets.", answer)
	assert.Empty(t, tools.calls)
}

func TestLoop_SingleToolCall(t *testing.T) {
	model := &scriptedModel{responses: []*genai.GenerateContentResponse{
		modelResponse(callPart("search_drive_files", map[string]any{"query": "name contains 'report'"})),
		modelResponse(textPart("Found one report.")),
	}}
	tools := &fakeTools{results: map[string]string{"search_drive_files": "Files found:\n- Q3 Report (application/pdf)"}}

	answer, err := newTestLoop(model, tools, 0).Run(context.Background(), "find my reports", nil)
	require.NoError(t, err)
	assert.Equal(t, "Found one report.", answer)

	require.Len(t, tools.calls, 1)
	assert.Equal(t, "search_drive_files", tools.calls[0].name)
	assert.Equal(t, map[string]any{"query": "name contains 'report'"}, tools.calls[0].args)
}

func TestLoop_ThreadsHistoryThroughTurns(t *testing.T) {
	model := &scriptedModel{responses: []*genai.GenerateContentResponse{
		modelResponse(callPart("search_drive_files", map[string]any{"query": "q"})),
		modelResponse(textPart("done")),
	}}
	tools := &fakeTools{results: map[string]string{"search_drive_files": "the result"}}

	_, err := newTestLoop(model, tools, 0).Run(context.Background(), "query", nil)
	require.NoError(t, err)

	require.Len(t, model.histories, 2)

	// First turn: just the user query.
	require.Len(t, model.histories[0], 1)
	assert.Equal(t, "user", model.histories[0][0].Role)

	// Second turn: query, the model's call echoed back, and the
	// function response as a user turn.
	second := model.histories[1]
	require.Len(t, second, 3)
	assert.Equal(t, "model", second[1].Role)
	require.NotNil(t, second[1].Parts[0].FunctionCall)
	assert.Equal(t, "search_drive_files", second[1].Parts[0].FunctionCall.Name)

	assert.Equal(t, "user", second[2].Role)
	fr := second[2].Parts[0].FunctionResponse
	require.NotNil(t, fr)
	assert.Equal(t, "search_drive_files", fr.Name)
	assert.Equal(t, map[string]any{"content": "the result"}, fr.Response)
}

func TestLoop_AccumulatesTextAcrossTurns(t *testing.T) {
	model := &scriptedModel{responses: []*genai.GenerateContentResponse{
		modelResponse(textPart("Let me check."), callPart("search_drive_files", map[string]any{"query": "q"})),
		modelResponse(textPart("No reports found.")),
	}}
	tools := &fakeTools{results: map[string]string{"search_drive_files": "No files found matching your query."}}

	answer, err := newTestLoop(model, tools, 0).Run(context.Background(), "find reports", nil)
	require.NoError(t, err)
	assert.Equal(t, "Let me check.\nNo reports found.", answer)
}

func TestLoop_MultipleToolCalls(t *testing.T) {
	model := &scriptedModel{responses: []*genai.GenerateContentResponse{
		modelResponse(callPart("check_authentication_status", map[string]any{})),
		modelResponse(callPart("search_drive_files", map[string]any{"query": "q"})),
		modelResponse(textPart("all done")),
	}}
	tools := &fakeTools{results: map[string]string{
		"check_authentication_status": "authenticated",
		"search_drive_files":          "Files found:\n- doc (text/plain)",
	}}

	answer, err := newTestLoop(model, tools, 0).Run(context.Background(), "search", nil)
	require.NoError(t, err)
	assert.Equal(t, "all done", answer)
	require.Len(t, tools.calls, 2)
	assert.Equal(t, "check_authentication_status", tools.calls[0].name)
	assert.Equal(t, "search_drive_files", tools.calls[1].name)
}

func TestLoop_ToolTransportFailure(t *testing.T) {
	model := &scriptedModel{responses: []*genai.GenerateContentResponse{
		modelResponse(callPart("search_drive_files", map[string]any{"query": "q"})),
	}}
	tools := &fakeTools{err: errors.New("connection reset")}

	answer, err := newTestLoop(model, tools, 0).Run(context.Background(), "search", nil)
	require.NoError(t, err, "transport failures become the answer, not an error")
	assert.Equal(t, "Error executing tool search_drive_files: connection reset", answer)
}

func TestLoop_ModelFailure(t *testing.T) {
	model := &scriptedModel{err: errors.New("quota exceeded")}

	_, err := newTestLoop(model, &fakeTools{}, 0).Run(context.Background(), "query", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestLoop_TurnCap(t *testing.T) {
	// The model asks for a tool forever; the cap must stop it.
	looping := modelResponse(callPart("search_drive_files", map[string]any{"query": "q"}))
	model := &scriptedModel{responses: []*genai.GenerateContentResponse{looping, looping, looping}}
	tools := &fakeTools{results: map[string]string{"search_drive_files": "x"}}

	_, err := newTestLoop(model, tools, 2).Run(context.Background(), "query", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 2 turns")
}

func TestLoop_EmptyCandidates(t *testing.T) {
	model := &scriptedModel{responses: []*genai.GenerateContentResponse{
		{Candidates: nil},
	}}

	answer, err := newTestLoop(model, &fakeTools{}, 0).Run(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Empty(t, answer)
}
