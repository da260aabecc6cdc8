// Package session holds per-connection state of the language server: the
// negotiated client capabilities, client settings and the open documents.
package session

import (
	"slices"

	"lintls/internal/source"
)

// ClientCapabilities is the subset of the LSP client capabilities the server
// reads. Every field is optional on the wire; absent means unsupported.
type ClientCapabilities struct {
	General      *GeneralClientCapabilities      `json:"general,omitempty"`
	TextDocument *TextDocumentClientCapabilities `json:"textDocument,omitempty"`
}

type GeneralClientCapabilities struct {
	PositionEncodings []string `json:"positionEncodings,omitempty"`
}

type TextDocumentClientCapabilities struct {
	CodeAction *CodeActionClientCapabilities `json:"codeAction,omitempty"`
}

type CodeActionClientCapabilities struct {
	DataSupport    *bool                     `json:"dataSupport,omitempty"`
	ResolveSupport *CodeActionResolveSupport `json:"resolveSupport,omitempty"`
}

type CodeActionResolveSupport struct {
	Properties []string `json:"properties"`
}

// ResolvedClientCapabilities is computed once per session at initialize.
type ResolvedClientCapabilities struct {
	// CodeActionDeferredEditResolution is set when the client round-trips
	// opaque action data and lets the server fill in "edit" on resolve.
	CodeActionDeferredEditResolution bool
	PositionEncoding                 source.PositionEncoding
}

// NewResolvedClientCapabilities derives the session flags from raw capabilities.
func NewResolvedClientCapabilities(caps ClientCapabilities) ResolvedClientCapabilities {
	resolved := ResolvedClientCapabilities{PositionEncoding: source.EncodingUTF16}
	if td := caps.TextDocument; td != nil && td.CodeAction != nil {
		ca := td.CodeAction
		dataSupport := ca.DataSupport != nil && *ca.DataSupport
		resolveEdit := ca.ResolveSupport != nil && slices.Contains(ca.ResolveSupport.Properties, "edit")
		resolved.CodeActionDeferredEditResolution = dataSupport && resolveEdit
	}
	if caps.General != nil {
		resolved.PositionEncoding = negotiateEncoding(caps.General.PositionEncodings)
	}
	return resolved
}

// negotiateEncoding prefers utf-8, then utf-32; utf-16 is mandatory for
// clients. Kinds the server does not know are skipped.
func negotiateEncoding(offered []string) source.PositionEncoding {
	supported := make([]source.PositionEncoding, 0, len(offered))
	for _, kind := range offered {
		if enc, err := source.ParsePositionEncoding(kind); err == nil {
			supported = append(supported, enc)
		}
	}
	for _, want := range []source.PositionEncoding{source.EncodingUTF8, source.EncodingUTF32} {
		if slices.Contains(supported, want) {
			return want
		}
	}
	return source.EncodingUTF16
}
