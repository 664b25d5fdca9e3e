package condition

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Raw is the loosely typed form of a condition as written in a story file.
type Raw struct {
	Kind     string   `yaml:"kind" json:"kind,omitempty"`
	Pattern  string   `yaml:"pattern" json:"pattern,omitempty"`
	Commands []string `yaml:"commands" json:"commands,omitempty"`
	Expected *int     `yaml:"expected" json:"expected,omitempty"`
	Path     string   `yaml:"path" json:"path,omitempty"`
	To       string   `yaml:"to" json:"to,omitempty"`
	Of       []Raw    `yaml:"of" json:"of,omitempty"`
}

// Compile turns a Raw condition into a Spec. Every problem is reported as a
// *ConfigurationError so that bad story files fail at load time.
func Compile(r Raw) (Spec, error) {
	return compile(r, "condition")
}

func compile(r Raw, where string) (Spec, error) {
	kind := r.Kind
	if kind == "" && len(r.Commands) > 0 {
		kind = KindAnyOf
	}

	switch kind {
	case KindCommand:
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, cfgErr(where, "command condition needs a non-empty pattern")
		}
		return CommandMatch{Pattern: r.Pattern}, nil

	case KindExitStatus:
		if r.Expected == nil {
			return nil, cfgErr(where, "exit-status condition needs an expected value")
		}
		return ExitStatus{Expected: *r.Expected}, nil

	case KindFileExists:
		if err := checkPath(r.Path); err != nil {
			return nil, cfgErr(where, "file-exists: "+err.Error())
		}
		return FileExists{Path: r.Path}, nil

	case KindFileContains:
		if err := checkPath(r.Path); err != nil {
			return nil, cfgErr(where, "file-contains: "+err.Error())
		}
		if r.Pattern == "" {
			return nil, cfgErr(where, "file-contains condition needs a pattern")
		}
		return FileContains{Path: r.Path, Pattern: r.Pattern}, nil

	case KindDirectory:
		if err := checkPath(r.To); err != nil {
			return nil, cfgErr(where, "directory: "+err.Error())
		}
		return DirectoryChanged{To: r.To}, nil

	case KindAllOf, KindAnyOf:
		mode := AllOf
		if kind == KindAnyOf {
			mode = AnyOf
		}
		of := make([]Spec, 0, len(r.Of)+len(r.Commands))
		for i, cmd := range r.Commands {
			if strings.TrimSpace(cmd) == "" {
				return nil, cfgErr(where, fmt.Sprintf("commands[%d] is empty", i))
			}
			of = append(of, CommandMatch{Pattern: cmd})
		}
		for i, child := range r.Of {
			s, err := compile(child, fmt.Sprintf("%s.of[%d]", where, i))
			if err != nil {
				return nil, err
			}
			of = append(of, s)
		}
		return Composite{Mode: mode, Of: of}, nil

	case "":
		return nil, cfgErr(where, "missing condition kind")

	default:
		return nil, cfgErr(where, fmt.Sprintf("unknown condition kind %q (want one of %s)",
			kind, strings.Join(AllKinds(), ", ")))
	}
}

// checkPath rejects empty paths and malformed glob patterns.
func checkPath(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("path is required")
	}
	if _, err := doublestar.Match(p, p); err != nil {
		return fmt.Errorf("bad path pattern %q: %w", p, err)
	}
	return nil
}

func cfgErr(where, detail string) error {
	return &ConfigurationError{Source: where, Detail: detail}
}
