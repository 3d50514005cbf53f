// Package mcp exposes originality checks as MCP (Model Context Protocol) tools so
// an assistant can check a draft before presenting it.
package mcp

import "errors"

// ErrMissingChecker is returned when no checker is provided.
var ErrMissingChecker = errors.New("mcp: checker is required")
