package mcp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/worker"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Checker is the pipeline surface the tools need.
type Checker interface {
	Config() *model.Config
	Check(ctx context.Context, doc string, strategy model.Strategy, sink worker.Sink) (*model.Report, error)
	SegmentWith(doc string, strategy model.Strategy) ([]model.Unit, error)
}

// Server is the MCP server for originality checks.
type Server struct {
	checker Checker
	server  *mcp.Server
}

// NewServer creates a new MCP server backed by checker.
func NewServer(checker Checker) (*Server, error) {
	if checker == nil {
		return nil, ErrMissingChecker
	}

	impl := &mcp.Implementation{
		Name:    "originality",
		Version: Version,
	}

	s := &Server{
		checker: checker,
		server:  mcp.NewServer(impl, nil),
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over streamable HTTP on addr.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
