package marq

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound reports an include target that cannot be opened.
	ErrFileNotFound = errors.New("file not found")
	// ErrCyclicInclusion reports an include target that is already being
	// resolved further up the include chain.
	ErrCyclicInclusion = errors.New("cyclic inclusion")
)

// DiagKind classifies a diagnostic.
type DiagKind uint8

const (
	// DiagStructuralDegradation marks malformed markup that fell back to
	// literal content.
	DiagStructuralDegradation DiagKind = iota
	DiagFileNotFound
	DiagCyclicInclusion
)

func (k DiagKind) String() string {
	switch k {
	case DiagStructuralDegradation:
		return "structural-degradation"
	case DiagFileNotFound:
		return "file-not-found"
	case DiagCyclicInclusion:
		return "cyclic-inclusion"
	default:
		return fmt.Sprintf("DiagKind(%d)", uint8(k))
	}
}

// Diagnostic is a non-fatal problem found while building the tree.
type Diagnostic struct {
	Kind  DiagKind
	Range Range
	Msg   string
	// Err is set for I/O-class diagnostics and wraps ErrFileNotFound or
	// ErrCyclicInclusion.
	Err error
	// Path is the document the range refers to; empty for the root buffer.
	Path string
}

func (d Diagnostic) String() string {
	loc := d.Range.Begin.String()
	if d.Path != "" {
		loc = d.Path + ":" + loc
	}
	return loc + ": " + d.Kind.String() + ": " + d.Msg
}

// Diagnostics is the ordered list of diagnostics of one parse.
type Diagnostics []Diagnostic

// Err joins the I/O-class errors. It is nil when only structural
// degradations were recorded.
func (ds Diagnostics) Err() error {
	var errs []error
	for _, d := range ds {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}
	return errors.Join(errs...)
}

// Count returns the number of diagnostics of kind k.
func (ds Diagnostics) Count(k DiagKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == k {
			n++
		}
	}
	return n
}

func (ds *Diagnostics) degrade(r Range, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Kind:  DiagStructuralDegradation,
		Range: r,
		Msg:   fmt.Sprintf(format, args...),
	})
}

func (ds *Diagnostics) fail(kind DiagKind, r Range, target string, err error) {
	*ds = append(*ds, Diagnostic{
		Kind:  kind,
		Range: r,
		Msg:   target + ": " + err.Error(),
		Err:   fmt.Errorf("include %s: %w", target, err),
	})
}
