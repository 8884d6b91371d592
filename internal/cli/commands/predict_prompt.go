package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/leapstack-labs/incomecast/pkg/features"
)

// errPromptCancelled is returned when the user interrupts the prompt.
var errPromptCancelled = errors.New("prediction cancelled")

type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// newLineReader configures readline over in/out with completion of every
// category label and value. History is kept next to the state database.
func newLineReader(schema *features.Schema, in io.Reader, out io.Writer, statePath string) (*readline.Instance, error) {
	var items []readline.PrefixCompleterInterface
	for _, f := range schema.Fields {
		for _, ch := range f.Choices {
			items = append(items, readline.PcItem(ch.Label), readline.PcItem(ch.Value))
		}
	}

	cfg := &readline.Config{
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		Stdin:           io.NopCloser(in),
		Stdout:          out,
	}
	if statePath != "" && !strings.Contains(statePath, "://") && statePath != ":memory:" {
		cfg.HistoryFile = filepath.Join(filepath.Dir(statePath), "predict_history")
	}
	return readline.NewEx(cfg)
}

func promptFor(f features.Field) string {
	if f.Kind == features.KindNumeric {
		return fmt.Sprintf("%s [%v] (%v-%v): ", f.Label, f.Default, f.Min, f.Max)
	}
	labels := make([]string, len(f.Choices))
	for i, ch := range f.Choices {
		labels[i] = ch.Label
	}
	return fmt.Sprintf("%s [%s] (%s): ", f.Label, f.Choices[0].Label, strings.Join(labels, ", "))
}

// promptValues asks for each field missing from values. An empty answer
// keeps the field default; an invalid one is asked again. End of input
// keeps defaults for the remaining fields.
func promptValues(rl lineReader, out io.Writer, schema *features.Schema, values map[string]string) (map[string]string, error) {
	merged := make(map[string]string, len(schema.Fields))
	for k, v := range values {
		merged[k] = v
	}

	for _, f := range schema.Fields {
		if _, ok := merged[f.Name]; ok {
			continue
		}
		rl.SetPrompt(promptFor(f))
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				return nil, errPromptCancelled
			}
			if errors.Is(err, io.EOF) {
				return merged, nil
			}
			if err != nil {
				return nil, err
			}

			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			if msg := fieldError(schema, f.Name, line); msg != "" {
				_, _ = fmt.Fprintf(out, "  %s\n", msg)
				continue
			}
			merged[f.Name] = line
			break
		}
	}
	return merged, nil
}

// fieldError validates a single answer.
func fieldError(schema *features.Schema, name, value string) string {
	_, err := schema.Parse(map[string]string{name: value})
	var verr *features.ValidationError
	if errors.As(err, &verr) {
		return verr.For(name)
	}
	return ""
}
