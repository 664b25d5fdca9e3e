package story

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/linuxstory/internal/condition"
	"github.com/abhisek/linuxstory/internal/world"
)

// SupportedFormat is the major story file format this build understands.
const SupportedFormat = "v1"

// DefaultMaxAttemptsBeforeHint applies when neither the step nor the story
// defaults set a threshold.
const DefaultMaxAttemptsBeforeHint = 1

//go:embed stories/schema.json
var schemaJSON []byte

//go:embed stories/default.yaml
var defaultStory []byte

const schemaURL = "schema://linuxstory/story.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// rawStory mirrors the story file layout.
type rawStory struct {
	Format     string            `yaml:"format"`
	Title      string            `yaml:"title"`
	Defaults   rawDefaults       `yaml:"defaults"`
	Strings    map[string]string `yaml:"strings"`
	Challenges []rawChallenge    `yaml:"challenges"`
}

type rawDefaults struct {
	MaxAttemptsBeforeHint *int `yaml:"max_attempts_before_hint"`
}

type rawChallenge struct {
	ID           string    `yaml:"id"`
	Title        string    `yaml:"title"`
	Prerequisite string    `yaml:"prerequisite"`
	Steps        []rawStep `yaml:"steps"`
}

type rawStep struct {
	Prompt                string         `yaml:"prompt"`
	Condition             condition.Raw  `yaml:"condition"`
	Hints                 []string       `yaml:"hints"`
	MaxAttemptsBeforeHint *int           `yaml:"max_attempts_before_hint"`
	StartDir              string         `yaml:"start_dir"`
	Blocked               []string       `yaml:"blocked"`
	Allowed               []string       `yaml:"allowed"`
	Setup                 []world.Action `yaml:"setup"`
	Teardown              []world.Action `yaml:"teardown"`
}

// Default returns the story bundled with the binary.
func Default() (*Graph, error) {
	return Load(bytes.NewReader(defaultStory))
}

// LoadFile reads a story definition from a YAML file.
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open story file: %w", err)
	}
	defer f.Close()

	g, err := Load(f)
	if err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) && ce.Source == "" {
			ce.Source = path
		}
		return nil, err
	}
	return g, nil
}

// Load parses, validates and builds a story graph. Malformed definitions
// fail with *ConfigurationError; structural problems with *GraphLoadError.
func Load(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read story: %w", err)
	}

	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var raw rawStory
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{Detail: fmt.Sprintf("decode story: %v", err)}
	}

	if err := checkFormat(raw.Format); err != nil {
		return nil, err
	}

	challenges, err := buildChallenges(raw)
	if err != nil {
		return nil, err
	}

	if err := validateChallenges(challenges); err != nil {
		return nil, err
	}

	return buildGraph(raw.Title, challenges, raw.Strings), nil
}

// validateDocument checks the raw YAML document against the story schema.
func validateDocument(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &ConfigurationError{Detail: fmt.Sprintf("parse story YAML: %v", err)}
	}
	if doc == nil {
		return &ConfigurationError{Detail: "story file is empty"}
	}

	// The validator wants JSON-shaped values, so round-trip through JSON.
	b, err := json.Marshal(doc)
	if err != nil {
		return &ConfigurationError{Detail: fmt.Sprintf("story is not JSON-compatible: %v", err)}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return &ConfigurationError{Detail: fmt.Sprintf("re-read story: %v", err)}
	}

	sch, err := storySchema()
	if err != nil {
		return fmt.Errorf("compile story schema: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return &ConfigurationError{Detail: fmt.Sprintf("schema validation failed: %v", err)}
	}
	return nil
}

func storySchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// checkFormat accepts any version whose major matches SupportedFormat.
func checkFormat(format string) error {
	if !semver.IsValid(format) {
		return &ConfigurationError{Source: "format", Detail: fmt.Sprintf("invalid format version %q (want e.g. %q)", format, SupportedFormat)}
	}
	if semver.Major(format) != SupportedFormat {
		return &ConfigurationError{Source: "format", Detail: fmt.Sprintf("unsupported format %s (this build reads %s)", format, SupportedFormat)}
	}
	return nil
}

func buildChallenges(raw rawStory) ([]Challenge, error) {
	defaultMax := DefaultMaxAttemptsBeforeHint
	if raw.Defaults.MaxAttemptsBeforeHint != nil {
		defaultMax = *raw.Defaults.MaxAttemptsBeforeHint
	}

	challenges := make([]Challenge, 0, len(raw.Challenges))
	for _, rc := range raw.Challenges {
		c := Challenge{
			ID:           rc.ID,
			TitleKey:     rc.Title,
			Prerequisite: rc.Prerequisite,
			Steps:        make([]Step, 0, len(rc.Steps)),
		}
		for i, rs := range rc.Steps {
			id := StepID{Challenge: rc.ID, Index: i}
			loc := fmt.Sprintf("challenge %q step %d", rc.ID, i)

			spec, err := condition.Compile(rs.Condition)
			if err != nil {
				var ce *ConfigurationError
				if errors.As(err, &ce) {
					ce.Source = loc + " " + ce.Source
				}
				return nil, err
			}
			for j, p := range rs.Blocked {
				if condition.NormalizeCommand(p) == "" {
					return nil, &ConfigurationError{Source: loc, Detail: fmt.Sprintf("blocked[%d] is empty", j)}
				}
			}
			for j, p := range rs.Allowed {
				if condition.NormalizeCommand(p) == "" {
					return nil, &ConfigurationError{Source: loc, Detail: fmt.Sprintf("allowed[%d] is empty", j)}
				}
			}
			for _, a := range slices.Concat(rs.Setup, rs.Teardown) {
				if err := a.Validate(); err != nil {
					return nil, &ConfigurationError{Source: loc, Detail: err.Error()}
				}
			}

			maxAttempts := defaultMax
			if rs.MaxAttemptsBeforeHint != nil {
				maxAttempts = *rs.MaxAttemptsBeforeHint
			}
			if maxAttempts < 0 {
				return nil, &ConfigurationError{Source: loc, Detail: "max_attempts_before_hint must be >= 0"}
			}

			c.Steps = append(c.Steps, Step{
				ID:                    id,
				PromptKey:             rs.Prompt,
				Condition:             spec,
				HintKeys:              rs.Hints,
				MaxAttemptsBeforeHint: maxAttempts,
				StartDir:              rs.StartDir,
				BlockedCommands:       rs.Blocked,
				AllowedCommands:       rs.Allowed,
				Setup:                 rs.Setup,
				Teardown:              rs.Teardown,
			})
		}
		challenges = append(challenges, c)
	}
	return challenges, nil
}
