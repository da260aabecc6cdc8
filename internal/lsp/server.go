package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"lintls/internal/config"
	"lintls/internal/fix"
	"lintls/internal/lint"
	"lintls/internal/session"
	"lintls/internal/trace"
	"lintls/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Debounce time.Duration
	// Check runs the linter; lint.Check when nil.
	Check fix.CheckFunc
	// Configs resolves lintls.toml for open documents. Nil disables project
	// configuration.
	Configs *config.Store
	Tracer  trace.Tracer
	// Log receives operational messages; os.Stderr when nil.
	Log io.Writer
}

// Server handles stdio JSON-RPC for the lintls language server.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	mu     sync.Mutex

	index    *session.Index
	resolver *Resolver
	check    fix.CheckFunc
	tracer   trace.Tracer
	logw     io.Writer
	logMu    sync.Mutex

	// caps is written once by initialize and read-only afterwards.
	caps        session.ResolvedClientCapabilities
	initialized bool

	published         map[string]struct{}
	dirty             map[string]struct{}
	shutdownRequested bool
	debounce          time.Duration
	debounceTimer     *time.Timer
	diagCancel        context.CancelFunc
	analysisSeq       uint64
	latestSeq         uint64
	baseCtx           context.Context
	traceLSP          bool
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	check := opts.Check
	if check == nil {
		check = lint.Check
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stderr
	}
	s := &Server{
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		index:     session.NewIndex(opts.Configs),
		check:     check,
		tracer:    tracer,
		logw:      logw,
		published: make(map[string]struct{}),
		dirty:     make(map[string]struct{}),
		debounce:  debounce,
		baseCtx:   context.Background(),
	}
	s.resolver = &Resolver{Snapshot: s.index.Snapshot, Check: check, Logf: s.logf}
	return s
}

// Run serves LSP requests until exit or end of input.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = trace.WithTracer(ctx, s.tracer)
	span := trace.Begin(s.tracer, trace.ScopeServer, "lsp", 0)
	defer span.End("")
	defer s.stopDiagnostics()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			span.Fail(err)
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	}
	if !s.initialized {
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeServerNotInitialized, "server not initialized")
		}
		return nil
	}
	switch msg.Method {
	case "initialized", "$/cancelRequest", "$/setTrace":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	case "codeAction/resolve":
		return s.handleCodeActionResolve(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	if s.initialized {
		return s.sendError(msg.ID, codeInvalidRequest, "server already initialized")
	}
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	s.caps = session.NewResolvedClientCapabilities(params.Capabilities)
	s.index.SetEncoding(s.caps.PositionEncoding)
	s.applyClientSettings(params.InitializationOptions)
	s.initialized = true
	trace.Point(s.tracer, trace.ScopeServer, "initialize",
		fmt.Sprintf("encoding=%s deferred=%t", s.caps.PositionEncoding, s.caps.CodeActionDeferredEditResolution), 0)

	result := initializeResult{
		Capabilities: serverCapabilities{
			PositionEncoding: s.caps.PositionEncoding.String(),
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
			},
			CodeActionProvider: &codeActionOptions{
				CodeActionKinds: []string{kindQuickFix, kindFixAllLintls, kindOrganizeImportsLintls},
				ResolveProvider: true,
			},
		},
		ServerInfo: &serverInfo{Name: serverName, Version: version.Version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) applyClientSettings(raw json.RawMessage) {
	settings, err := session.ParseClientSettings(raw)
	if err != nil {
		s.logf("ignoring client settings: %v", err)
		return
	}
	s.index.SetSettings(settings.Resolve(s.index.Settings(), s.logf))
	if settings.Trace != nil {
		s.mu.Lock()
		s.traceLSP = *settings.Trace
		s.mu.Unlock()
	}
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.stopDiagnostics()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logf("didChangeConfiguration: %v", err)
		return nil
	}
	s.applyClientSettings(params.Settings)
	s.scheduleDiagnostics(s.index.URIs()...)
	return nil
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.index.Open(uri, params.TextDocument.Version, params.TextDocument.Text)
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	changes := make([]session.TextChange, 0, len(params.ContentChanges))
	for _, c := range params.ContentChanges {
		change := session.TextChange{Text: c.Text}
		if c.Range != nil {
			r := c.Range.toSource()
			change.Range = &r
		}
		changes = append(changes, change)
	}
	if err := s.index.Update(uri, params.TextDocument.Version, changes); err != nil {
		s.logf("didChange: %v", err)
		return nil
	}
	s.mu.Lock()
	traceLSP := s.traceLSP
	s.mu.Unlock()
	if traceLSP {
		s.logf("didChange: uri=%s version=%d changes=%d", uri, params.TextDocument.Version, len(changes))
	}
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if !s.index.Close(uri) {
		return nil
	}
	s.mu.Lock()
	delete(s.dirty, uri)
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	if hadDiagnostics {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	return nil
}

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	ctx, span := trace.Start(s.baseCtx, trace.ScopeRequest, "textDocument/codeAction")
	actions, err := s.codeActions(ctx, params)
	span.Fail(err).End(params.TextDocument.URI)
	if err != nil {
		return s.sendResponseError(msg.ID, err)
	}
	return s.sendResponse(msg.ID, actions)
}

func (s *Server) handleCodeActionResolve(msg *rpcMessage) error {
	var action CodeAction
	if err := json.Unmarshal(msg.Params, &action); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	resolved, err := s.resolver.Resolve(s.baseCtx, action)
	if err != nil {
		return s.sendResponseError(msg.ID, err)
	}
	return s.sendResponse(msg.ID, resolved)
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

// sendResponseError replies with the classified form of err. Causes stay in
// the server log.
func (s *Server) sendResponseError(id json.RawMessage, err error) error {
	respErr := asResponseError(err)
	return s.sendError(id, respErr.Code, respErr.Message)
}

func (s *Server) sendPublish(uri string, version *int32, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Version:     version,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	fmt.Fprintf(s.logw, "lintls: "+format+"\n", args...)
}

func (s *Server) isLatestSeq(seq uint64) bool {
	if seq == 0 {
		return false
	}
	return seq == atomic.LoadUint64(&s.latestSeq)
}
