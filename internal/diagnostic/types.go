package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Codes reported by the conversion engine.
const (
	CodeDanglingLink      = "DanglingLink"
	CodeArraySizeMismatch = "ArraySizeMismatch"
	CodeUnregisteredType  = "UnregisteredType"
	CodeMissingCloneOwner = "MissingCloneOwner"
	CodeUnusedField       = "UnusedField"
	CodeInfluenceDropped  = "InfluenceTruncated"
	CodeUnhandledBlock    = "UnhandledBlock"
	CodeUnknownStructure  = "UnknownStructure"
	CodeConflict          = "ConflictingMapping"
	CodeRuleFailed        = "RuleFailed"
	CodeUnmappedEnum      = "UnmappedEnum"
	CodeUnsupported       = "UnsupportedValue"
	CodeFileTypeMismatch  = "FileTypeMismatch"
	CodeDuplicateSlot     = "DuplicateLinkSlot"
)

// Diagnostics holds everything reported during one conversion.
type Diagnostics struct {
	Errors   []Diagnostic `yaml:"errors,omitempty"`
	Warnings []Diagnostic `yaml:"warnings,omitempty"`
	Infos    []Diagnostic `yaml:"infos,omitempty"`
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity `yaml:"severity"`
	// Code is a unique identifier for this type of diagnostic.
	Code    string `yaml:"code"`
	Message string `yaml:"message"`
	// Block is the source block the diagnostic is about, -1 for none.
	Block int `yaml:"block"`
	// BlockType is the type tag of Block.
	BlockType string `yaml:"type,omitempty"`
	// FieldPath identifies which field this relates to (if any).
	FieldPath string `yaml:"field,omitempty"`
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalYAML renders the severity by name.
func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Subject locates a diagnostic inside a document.
type Subject struct {
	Block int
	Type  string
	Field string
}

// At builds a Subject for a block.
func At(block int, typ string) Subject {
	return Subject{Block: block, Type: typ}
}

// On returns a copy of s narrowed to a field path.
func (s Subject) On(path string) Subject {
	s.Field = path
	return s
}

// None is the subject of document-wide diagnostics.
var None = Subject{Block: -1}

func (d *Diagnostics) add(sev Severity, code string, at Subject, format string, args ...any) Diagnostic {
	diag := Diagnostic{
		Severity:  sev,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Block:     at.Block,
		BlockType: at.Type,
		FieldPath: at.Field,
	}
	switch sev {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
	return diag
}

// AddError adds an error diagnostic. Errors clear the success flag.
func (d *Diagnostics) AddError(code string, at Subject, format string, args ...any) Diagnostic {
	return d.add(SeverityError, code, at, format, args...)
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code string, at Subject, format string, args ...any) Diagnostic {
	return d.add(SeverityWarning, code, at, format, args...)
}

// AddInfo adds an advisory diagnostic.
func (d *Diagnostics) AddInfo(code string, at Subject, format string, args ...any) Diagnostic {
	return d.add(SeverityInfo, code, at, format, args...)
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Success reports whether the conversion these diagnostics describe
// succeeded.
func (d *Diagnostics) Success() bool {
	return !d.HasErrors()
}

// Len returns the number of diagnostics of every severity.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// ByCode returns every diagnostic carrying code, in severity order.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, list := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range list {
			if diag.Code == code {
				out = append(out, diag)
			}
		}
	}
	return out
}

// Err returns a combined error from all error diagnostics, or nil.
func (d *Diagnostics) Err() error {
	if !d.HasErrors() {
		return nil
	}
	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}
	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.BlockType != "" {
		prefix = append(prefix, fmt.Sprintf("[%d %s]", d.Block, d.BlockType))
	} else if d.Block >= 0 {
		prefix = append(prefix, fmt.Sprintf("[%d]", d.Block))
	}
	if d.FieldPath != "" {
		prefix = append(prefix, d.FieldPath)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}
	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}
	return msg
}
