package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server speaks newline-delimited JSON-RPC 2.0 over a reader/writer pair and
// routes MCP methods to a Dispatcher. Requests are handled one at a time.
type Server struct {
	info       *sdk.Implementation
	dispatcher *Dispatcher
	logger     *slog.Logger

	// I/O
	reader *bufio.Reader
	writer io.Writer
	mu     sync.Mutex
}

// NewServer creates a server reading requests from in and writing responses
// to out. A nil logger discards output.
func NewServer(info *sdk.Implementation, dispatcher *Dispatcher, in io.Reader, out io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		info:       info,
		dispatcher: dispatcher,
		logger:     logger,
		reader:     bufio.NewReader(in),
		writer:     out,
	}
}

// Run serves until the input reaches EOF (nil) or ctx is cancelled (ctx.Err()).
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("server_started",
		slog.String("name", s.info.Name),
		slog.String("version", s.info.Version),
		slog.String("transport", "stdio"))

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for {
			line, err := s.reader.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- fmt.Errorf("read request: %w", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
				}
				s.logger.Info("server_stopped", slog.String("reason", "eof"))
				return nil
			}
			s.handleLine(ctx, line)
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line []byte) {
	msg, err := jsonrpc.DecodeMessage(bytes.TrimSpace(line))
	if err != nil {
		s.logger.Debug("parse_error", slog.Any("error", err))
		s.sendError(nil, CodeParseError, "Parse error", err.Error())
		return
	}

	req, ok := msg.(*jsonrpc.Request)
	if !ok {
		// 클라이언트 응답은 무시
		s.logger.Debug("ignored_response")
		return
	}

	if req.ID == (jsonrpc.ID{}) {
		s.logger.Debug("mcp_notification", slog.String("method", req.Method))
		return
	}

	id := req.ID.Raw()
	start := time.Now()
	result, err := s.handleRequest(ctx, req.Method, req.Params)
	s.logger.Debug("mcp_request",
		slog.String("method", req.Method),
		slog.Any("id", id),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("ok", err == nil))

	if err != nil {
		var pe *ProtocolError
		if errors.As(err, &pe) {
			s.sendError(id, pe.Code, pe.Message, pe.Data)
			return
		}
		s.sendError(id, CodeInternalError, "Internal error", err.Error())
		return
	}
	s.sendResult(id, result)
}

func (s *Server) handleRequest(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "initialize":
		return s.handleInitialize(params)
	case "ping":
		return emptyResult{}, nil
	case "tools/list":
		return s.dispatcher.ListTools(), nil
	case "tools/call":
		var p callToolParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.dispatcher.CallTool(ctx, p.Name, p.Arguments)
	case "resources/list":
		return s.dispatcher.ListResources(), nil
	case "resources/read":
		var p readResourceParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.dispatcher.ReadResource(ctx, p.URI)
	default:
		return nil, &ProtocolError{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", method),
		}
	}
}

func (s *Server) handleInitialize(params json.RawMessage) (interface{}, error) {
	var p initializeParams
	if len(params) > 0 {
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
	}
	version := negotiateVersion(p.ProtocolVersion)
	s.logger.Info("client_initialized",
		slog.String("requested_version", p.ProtocolVersion),
		slog.String("version", version))

	return initializeResult{
		ProtocolVersion: version,
		Capabilities: ServerCapabilities{
			Tools:     &ToolsCapability{},
			Resources: &ResourcesCapability{},
		},
		ServerInfo: s.info,
	}, nil
}

func decodeParams(params json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(params)) == 0 {
		return &ProtocolError{Code: CodeInvalidParams, Message: "Invalid params", Data: "missing params"}
	}
	if err := json.Unmarshal(params, v); err != nil {
		return &ProtocolError{Code: CodeInvalidParams, Message: "Invalid params", Data: err.Error()}
	}
	return nil
}

func (s *Server) sendResult(id interface{}, result interface{}) {
	s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(id interface{}, code int, message string, data interface{}) {
	s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

func (s *Server) send(resp JSONRPCResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encode_response", slog.Any("error", err))
		data, _ = json.Marshal(JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      resp.ID,
			Error:   &RPCError{Code: CodeInternalError, Message: "Internal error"},
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.writer, "%s\n", data); err != nil {
		s.logger.Error("write_response", slog.Any("error", err))
	}
}
