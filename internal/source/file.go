package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewFile builds a file with ID 0. Content is kept as is so offsets match
// the caller's buffer; a CRLF line ending is detected and recorded in Flags.
// Document snapshots use it so that every snapshot owns its buffer and line
// index.
func NewFile(path string, content []byte, flags FileFlags) *File {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s is too large: %w", path, err))
	}
	if usesCRLF(content) {
		flags |= FileCRLF
	}
	return &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}
}

// ReadFile loads path from disk. A UTF-8 BOM is stripped and remembered
// with FileHadBOM; Encode restores it.
func ReadFile(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content, hadBOM := removeBOM(content)
	var flags FileFlags
	if hadBOM {
		flags |= FileHadBOM
	}
	return NewFile(path, content, flags), nil
}

// Encode returns the bytes to write back to disk for f.
func (f *File) Encode() []byte {
	if f.Flags&FileHadBOM == 0 {
		return f.Content
	}
	out := make([]byte, 0, len(utf8BOM)+len(f.Content))
	out = append(out, utf8BOM...)
	return append(out, f.Content...)
}

// Newline is the line terminator new text in f should use.
func (f *File) Newline() string {
	if f.Flags&FileCRLF != 0 {
		return "\r\n"
	}
	return "\n"
}

// Size returns the content length in bytes.
func (f *File) Size() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return ^uint32(0)
	}
	return n
}

// LineCount returns the number of lines; a trailing newline opens an empty last line.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// lineEnd is the offset where the text of line stops, before "\n" or "\r\n".
func (f *File) lineEnd(line int) uint32 {
	if line >= len(f.LineIdx) {
		return f.Size()
	}
	end := f.LineIdx[line]
	if end > lineStart(f.LineIdx, line) && f.Content[end-1] == '\r' {
		end--
	}
	return end
}

// Line returns the text of a zero-based line without its line terminator.
func (f *File) Line(line int) string {
	if line < 0 || line >= f.LineCount() {
		return ""
	}
	return string(f.Content[lineStart(f.LineIdx, line):f.lineEnd(line)])
}

// LineSpan returns the span of a zero-based line, excluding its line terminator.
func (f *File) LineSpan(line int) Span {
	if line < 0 || line >= f.LineCount() {
		return Span{File: f.ID, Start: f.Size(), End: f.Size()}
	}
	return Span{File: f.ID, Start: lineStart(f.LineIdx, line), End: f.lineEnd(line)}
}

// LineCol converts a byte offset to a 1-based line and byte column.
func (f *File) LineCol(off uint32) LineCol {
	if off > f.Size() {
		off = f.Size()
	}
	return toLineCol(f.LineIdx, off)
}

// Text returns the content covered by span.
func (f *File) Text(span Span) string {
	if span.Start > span.End || span.End > f.Size() {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

// usesCRLF reports whether the first line of content ends with "\r\n".
func usesCRLF(content []byte) bool {
	i := bytes.IndexByte(content, '\n')
	return i > 0 && content[i-1] == '\r'
}
