package diag

import "fmt"

// Applicability classifies how safe it is to apply a fix without review.
type Applicability uint8

const (
	// Safe fixes never change program semantics.
	Safe Applicability = iota
	// Unsafe fixes may change semantics and require explicit opt-in.
	Unsafe
	// DisplayOnly fixes are shown to the user but never applied automatically.
	DisplayOnly
)

func (a Applicability) String() string {
	switch a {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	case DisplayOnly:
		return "display-only"
	}
	return "unknown"
}

// IsSafe reports whether a is Safe.
func (a Applicability) IsSafe() bool {
	return a == Safe
}

// ParseApplicability is the inverse of String.
func ParseApplicability(s string) (Applicability, error) {
	switch s {
	case "safe":
		return Safe, nil
	case "unsafe":
		return Unsafe, nil
	case "display-only":
		return DisplayOnly, nil
	}
	return Safe, fmt.Errorf("unknown applicability %q", s)
}
