// Package problemform turns an authoring manifest and an optional test
// bundle into a problem record ready to create or update.
package problemform

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codecoach/client/internal/gateway"
	"github.com/codecoach/client/types"
	"github.com/pelletier/go-toml/v2"
)

// Manifest is the authoring format of a problem, written as JSON or TOML.
type Manifest struct {
	ProblemID   string         `json:"problem_id" toml:"problem_id"`
	Title       string         `json:"title" toml:"title"`
	Description string         `json:"description" toml:"description"`
	Difficulty  string         `json:"difficulty" toml:"difficulty"`
	Tags        []string       `json:"tags" toml:"tags"`
	CodeStub    string         `json:"code_stub" toml:"code_stub"`
	TestCases   []manifestTest `json:"test_cases" toml:"test_cases"`
}

type manifestTest struct {
	Input          string `json:"input" toml:"input"`
	ExpectedOutput string `json:"expected_output" toml:"expected_output"`
}

// Form is a validated problem plus the warnings raised while building it.
type Form struct {
	Problem  types.ProblemDetail
	Warnings []string
}

// ParseManifest decodes data as TOML when name ends in .toml and as JSON
// otherwise.
func ParseManifest(name string, data []byte) (Manifest, error) {
	var m Manifest
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		if err := toml.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("failed to unmarshal manifest: %w", err)
		}
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return m, nil
}

// Load reads the manifest at manifestPath and, when bundlePath is set, the
// test bundle, and builds the form.
func Load(manifestPath, bundlePath string) (Form, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return Form{}, err
	}
	m, err := ParseManifest(manifestPath, data)
	if err != nil {
		return Form{}, err
	}

	var bundle []types.TestCase
	if bundlePath != "" {
		raw, err := os.ReadFile(bundlePath)
		if err != nil {
			return Form{}, err
		}
		bundle, err = ReadBundle(raw)
		if err != nil {
			return Form{}, fmt.Errorf("%s: %w", filepath.Base(bundlePath), err)
		}
	}
	return Build(m, bundle)
}

// Build validates m and appends bundle test cases after the manifest's own.
// A problem without test cases is accepted with a warning.
func Build(m Manifest, bundle []types.TestCase) (Form, error) {
	id := strings.TrimSpace(m.ProblemID)
	if id == "" {
		return Form{}, gateway.Invalid("problem_id", "must not be empty")
	}
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return Form{}, gateway.Invalid("title", "must not be empty")
	}
	difficulty, ok := types.ParseDifficulty(m.Difficulty)
	if !ok {
		return Form{}, gateway.Invalid("difficulty", fmt.Sprintf("unknown level %q, want Easy, Medium or Hard", m.Difficulty))
	}

	cases := make([]types.TestCase, 0, len(m.TestCases)+len(bundle))
	for _, tc := range m.TestCases {
		cases = append(cases, types.TestCase{Input: tc.Input, ExpectedOutput: tc.ExpectedOutput})
	}
	cases = append(cases, bundle...)

	form := Form{
		Problem: types.ProblemDetail{
			ProblemID:   id,
			Title:       title,
			Description: m.Description,
			Difficulty:  difficulty,
			Tags:        normalizeTags(m.Tags),
			CodeStub:    m.CodeStub,
			TestCases:   cases,
		},
	}
	if len(cases) == 0 {
		form.Warnings = append(form.Warnings, "problem has no test cases; submissions cannot be evaluated")
	}
	return form, nil
}

// SplitTags splits a comma separated tag list.
func SplitTags(raw string) []string {
	return normalizeTags(strings.Split(raw, ","))
}

// normalizeTags trims, drops empties and removes case-insensitive duplicates.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
