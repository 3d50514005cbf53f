package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/pipeline"
)

// CheckInput is the input schema for the check_originality tool.
type CheckInput struct {
	Text         string `json:"text" jsonschema:"the document text to check"`
	FullSentence *bool  `json:"full_sentence,omitempty" jsonschema:"split on sentences (true) or fixed 10-word windows (false); defaults to the server configuration"`
}

// CheckOutput is the output schema for the check_originality tool.
type CheckOutput struct {
	RunID       string       `json:"run_id"`
	Outcome     string       `json:"outcome"`
	Message     string       `json:"message"`
	Originality float64      `json:"originality"`
	Total       int          `json:"total"`
	Processed   int          `json:"processed"`
	Plagiarised int          `json:"plagiarised"`
	Original    int          `json:"original"`
	Error       string       `json:"error,omitempty"`
	Units       []UnitOutput `json:"units"`
}

// UnitOutput is one checked unit.
type UnitOutput struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Verdict   string `json:"verdict"`
	SearchURL string `json:"search_url,omitempty"`
}

// SegmentInput is the input schema for the segment_text tool.
type SegmentInput struct {
	Text         string `json:"text" jsonschema:"the document text to segment"`
	FullSentence *bool  `json:"full_sentence,omitempty" jsonschema:"split on sentences (true) or fixed 10-word windows (false)"`
}

// SegmentOutput is the output schema for the segment_text tool.
type SegmentOutput struct {
	Strategy string       `json:"strategy"`
	Count    int          `json:"count"`
	Units    []model.Unit `json:"units"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_originality",
		Description: "Check each sentence (or 10-word window) of a text against web search and report how much of it is original",
	}, s.handleCheck)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "segment_text",
		Description: "Show the units a text would be split into without querying the search provider",
	}, s.handleSegment)
}

func (s *Server) strategy(fullSentence *bool) model.Strategy {
	if fullSentence != nil {
		return model.StrategyFromFlag(*fullSentence)
	}
	return s.checker.Config().Segment.Strategy()
}

// handleCheck runs a check to completion. A failed run is reported in the output,
// a busy runner is a tool error.
func (s *Server) handleCheck(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckInput,
) (*mcp.CallToolResult, CheckOutput, error) {
	report, err := s.checker.Check(ctx, input.Text, s.strategy(input.FullSentence), nil)
	if report == nil {
		return nil, CheckOutput{}, fmt.Errorf("check: %w", err)
	}

	sum := report.Summary
	output := CheckOutput{
		RunID:       report.RunID,
		Outcome:     string(sum.Outcome),
		Message:     pipeline.CompletionMessage(sum),
		Originality: sum.Originality,
		Total:       sum.Total,
		Processed:   sum.Processed,
		Plagiarised: sum.Plagiarised,
		Original:    sum.Original,
		Error:       sum.Error,
		Units:       make([]UnitOutput, len(report.Units)),
	}

	for i, u := range report.Units {
		output.Units[i] = UnitOutput{
			Index:     u.Unit.Index,
			Text:      u.Unit.Text,
			Verdict:   u.Verdict.String(),
			SearchURL: u.SearchURL,
		}
	}

	return nil, output, nil
}

// handleSegment handles the segment_text tool invocation.
func (s *Server) handleSegment(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SegmentInput,
) (*mcp.CallToolResult, SegmentOutput, error) {
	strategy := s.strategy(input.FullSentence)

	units, err := s.checker.SegmentWith(input.Text, strategy)
	if err != nil {
		return nil, SegmentOutput{}, err
	}

	return nil, SegmentOutput{
		Strategy: string(strategy),
		Count:    len(units),
		Units:    units,
	}, nil
}
