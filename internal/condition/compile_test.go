package condition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestCompile(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want Spec
	}{
		{"command", Raw{Kind: KindCommand, Pattern: "ls"}, CommandMatch{Pattern: "ls"}},
		{"exit status zero", Raw{Kind: KindExitStatus, Expected: intPtr(0)}, ExitStatus{Expected: 0}},
		{"file exists", Raw{Kind: KindFileExists, Path: "notes.txt"}, FileExists{Path: "notes.txt"}},
		{"file contains", Raw{Kind: KindFileContains, Path: "a", Pattern: "b"}, FileContains{Path: "a", Pattern: "b"}},
		{"directory", Raw{Kind: KindDirectory, To: "town"}, DirectoryChanged{To: "town"}},
		{"commands shorthand", Raw{Commands: []string{"cat Edward", "cat ./Edward"}},
			Composite{Mode: AnyOf, Of: []Spec{CommandMatch{Pattern: "cat Edward"}, CommandMatch{Pattern: "cat ./Edward"}}}},
		{"empty all-of", Raw{Kind: KindAllOf}, Composite{Mode: AllOf, Of: []Spec{}}},
		{"nested", Raw{Kind: KindAllOf, Of: []Raw{{Kind: KindCommand, Pattern: "ls"}, {Kind: KindExitStatus, Expected: intPtr(0)}}},
			Composite{Mode: AllOf, Of: []Spec{CommandMatch{Pattern: "ls"}, ExitStatus{Expected: 0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     Raw
		wantMsg string
	}{
		{"missing kind", Raw{}, "missing condition kind"},
		{"unknown kind", Raw{Kind: "regex", Pattern: ".*"}, "unknown condition kind"},
		{"empty command", Raw{Kind: KindCommand, Pattern: "   "}, "non-empty pattern"},
		{"exit status without expected", Raw{Kind: KindExitStatus}, "expected value"},
		{"file exists without path", Raw{Kind: KindFileExists}, "path is required"},
		{"bad glob", Raw{Kind: KindFileExists, Path: "[abc"}, "bad path pattern"},
		{"file contains without pattern", Raw{Kind: KindFileContains, Path: "a"}, "needs a pattern"},
		{"directory without target", Raw{Kind: KindDirectory}, "path is required"},
		{"bad nested child", Raw{Kind: KindAnyOf, Of: []Raw{{Kind: KindCommand, Pattern: "ls"}, {Kind: "nope"}}}, "of[1]"},
		{"empty shorthand command", Raw{Commands: []string{"ls", ""}}, "commands[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.raw)
			require.Error(t, err)
			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce), "want *ConfigurationError, got %T", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
