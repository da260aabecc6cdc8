package source

type (
	// FileID identifies the file a span belongs to.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (editor buffer, stdin, test).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM marks content read from disk with its UTF-8 BOM stripped.
	FileHadBOM
	// FileCRLF marks content whose first line ends with "\r\n".
	FileCRLF
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}

// Position is a zero-based line and a column counted in the units of a PositionEncoding.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open pair of positions.
type Range struct {
	Start Position
	End   Position
}

// Less reports whether p comes before other.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}
