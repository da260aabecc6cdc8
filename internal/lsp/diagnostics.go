package lsp

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"lintls/internal/diag"
	"lintls/internal/session"
	"lintls/internal/source"
	"lintls/internal/trace"
)

// scheduleDiagnostics marks uris dirty and restarts the debounce timer.
// Pending analysis of an older sequence is canceled.
func (s *Server) scheduleDiagnostics(uris ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdownRequested {
		return
	}
	for _, uri := range uris {
		s.dirty[uri] = struct{}{}
	}
	seq := atomic.AddUint64(&s.analysisSeq, 1)
	atomic.StoreUint64(&s.latestSeq, seq)
	if s.diagCancel != nil {
		s.diagCancel()
		s.diagCancel = nil
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
}

func (s *Server) runDiagnostics(seq uint64) {
	if !s.isLatestSeq(seq) {
		return
	}
	s.mu.Lock()
	if s.shutdownRequested || len(s.dirty) == 0 {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.diagCancel = cancel
	uris := make([]string, 0, len(s.dirty))
	for uri := range s.dirty {
		uris = append(uris, uri)
	}
	s.dirty = make(map[string]struct{})
	s.mu.Unlock()
	defer cancel()

	ctx, span := trace.Start(ctx, trace.ScopeRequest, "diagnostics")
	span.WithExtra("seq", strconv.FormatUint(seq, 10))
	defer span.End(strconv.Itoa(len(uris)) + " documents")
	for _, uri := range uris {
		if ctx.Err() != nil {
			s.requeue(uris)
			return
		}
		if err := s.publishDocument(ctx, uri); err != nil {
			if errors.Is(err, context.Canceled) {
				s.requeue(uris)
				return
			}
			span.Fail(err)
			s.logf("diagnostics for %s failed: %v", uri, err)
		}
	}
}

// requeue restores documents whose analysis was interrupted; the run that
// canceled this one picks them up.
func (s *Server) requeue(uris []string) {
	s.mu.Lock()
	for _, uri := range uris {
		s.dirty[uri] = struct{}{}
	}
	s.mu.Unlock()
}

func (s *Server) publishDocument(ctx context.Context, uri string) error {
	snap, err := s.index.Snapshot(uri)
	if errors.Is(err, session.ErrDocumentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if snap.ConfigErr != nil {
		s.logf("%s: using client settings: %v", uri, snap.ConfigErr)
	}
	ctx, span := trace.Start(ctx, trace.ScopeAnalysis, "check")
	diagnostics, err := s.check(ctx, snap.File, snap.Settings.Linter)
	span.Fail(err).End(uri)
	if err != nil {
		return err
	}
	list := make([]lspDiagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		list = append(list, toLSPDiagnostic(snap.File, d, snap.Encoding))
	}
	s.mu.Lock()
	if len(list) > 0 {
		s.published[uri] = struct{}{}
	} else {
		delete(s.published, uri)
	}
	s.mu.Unlock()
	version := snap.Version
	return s.sendPublish(uri, &version, list)
}

func (s *Server) stopDiagnostics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.StoreUint64(&s.latestSeq, 0)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	if s.diagCancel != nil {
		s.diagCancel()
		s.diagCancel = nil
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func toLSPDiagnostic(file *source.File, d diag.Diagnostic, enc source.PositionEncoding) lspDiagnostic {
	return lspDiagnostic{
		Range:    toLSPRange(file.RangeOf(d.Primary, enc)),
		Severity: d.Severity.LSP(),
		Code:     d.Rule,
		Source:   serverName,
		Message:  d.Message,
	}
}
