// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/incomecast/internal/testutil"
)

// ModelJSON is a logistic artifact over five columns with
// z = 0.05*age + 0.05*hours + 2*doctorate - 5.
const ModelJSON = `{
  "name": "test-income",
  "version": "7",
  "kind": "logistic_regression",
  "columns": ["age", "hours.per.week", "education_Doctorate", "sex_Female", "sex_Male"],
  "logistic": {"coef": [0.05, 0.05, 2, 0, 0], "intercept": -5}
}`

// SetupTestProject creates a temporary project holding model.json and an
// incomecast.yaml that points at it, with history under state/.
func SetupTestProject(t *testing.T, outputFormat string) string {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteFile(t, dir, "model.json", ModelJSON)
	testutil.WriteFile(t, dir, "incomecast.yaml", `artifact: model.json
state_path: state/history.db
output: `+outputFormat+`
ui:
  port: 9100
`)
	return dir
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
