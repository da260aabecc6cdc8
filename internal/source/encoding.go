package source

import (
	"fmt"
	"unicode/utf8"
)

// PositionEncoding selects the unit used by Position.Character.
type PositionEncoding uint8

const (
	// EncodingUTF16 counts UTF-16 code units. It is the LSP default.
	EncodingUTF16 PositionEncoding = iota
	EncodingUTF8
	EncodingUTF32
)

func (e PositionEncoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF32:
		return "utf-32"
	default:
		return "utf-16"
	}
}

// ParsePositionEncoding maps an LSP positionEncoding kind to PositionEncoding.
func ParsePositionEncoding(kind string) (PositionEncoding, error) {
	switch kind {
	case "utf-8":
		return EncodingUTF8, nil
	case "utf-16":
		return EncodingUTF16, nil
	case "utf-32":
		return EncodingUTF32, nil
	default:
		return EncodingUTF16, fmt.Errorf("unknown position encoding %q", kind)
	}
}

func (e PositionEncoding) units(r rune, size int) int {
	switch e {
	case EncodingUTF8:
		return size
	case EncodingUTF32:
		return 1
	default:
		if r > 0xFFFF {
			return 2
		}
		return 1
	}
}

// PositionAt converts a byte offset into a Position. Offsets past the end
// clamp to the end; offsets inside a multi-byte rune round down.
func (f *File) PositionAt(offset uint32, enc PositionEncoding) Position {
	if offset > f.Size() {
		offset = f.Size()
	}
	line := lineOf(f.LineIdx, offset)
	start := lineStart(f.LineIdx, line)
	units := 0
	for off := start; off < offset; {
		r, size := utf8.DecodeRune(f.Content[off:])
		if off+uint32(size) > offset { // #nosec G115 -- rune size is at most 4
			break
		}
		units += enc.units(r, size)
		off += uint32(size) // #nosec G115 -- rune size is at most 4
	}
	return Position{Line: line, Character: units}
}

// OffsetAt converts a Position into a byte offset. Lines past the end map to
// the end of the file; characters past the end of a line map to the line end.
func (f *File) OffsetAt(pos Position, enc PositionEncoding) uint32 {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	if pos.Line >= f.LineCount() {
		return f.Size()
	}
	span := f.LineSpan(pos.Line)
	units := 0
	off := span.Start
	for off < span.End && units < pos.Character {
		r, size := utf8.DecodeRune(f.Content[off:span.End])
		need := enc.units(r, size)
		if units+need > pos.Character {
			break
		}
		units += need
		off += uint32(size) // #nosec G115 -- rune size is at most 4
	}
	return off
}

// RangeOf converts a span of this file into a Range.
func (f *File) RangeOf(span Span, enc PositionEncoding) Range {
	return Range{
		Start: f.PositionAt(span.Start, enc),
		End:   f.PositionAt(span.End, enc),
	}
}
