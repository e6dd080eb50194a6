package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Dhanuzh/dreview/internal/provider"
	"github.com/Dhanuzh/dreview/internal/review"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var errNoInput = errors.New("no code given: pass a file or pipe code on stdin")

// reviewResult is what `dreview review` prints.
type reviewResult struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Outcome  string `json:"outcome" yaml:"outcome"`
	Model    string `json:"model" yaml:"model"`
	Review   string `json:"review" yaml:"review"`
	KeyError string `json:"key_error,omitempty" yaml:"key_error,omitempty"`
	Notice   string `json:"notice,omitempty" yaml:"notice,omitempty"`
	Hint     string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

func validFormat(f string) bool {
	return f == formatText || f == formatJSON || f == formatYAML
}

// runReview submits the form once and collects everything worth printing.
func runReview(ctx context.Context, form *review.Form) reviewResult {
	sub, outcome := form.Begin()
	var res reviewResult
	if sub != nil {
		res.ID = sub.ID()
		outcome = sub.Run(ctx)
		res.Hint = provider.Hint(sub.Err())
	}

	st := form.Snapshot()
	res.Outcome = outcome.String()
	res.Model = st.Model
	res.Review = st.Review
	res.KeyError = st.KeyError
	res.Notice = outcome.Notice()
	return res
}

// writeResult prints res in the requested format. Text output carries only
// a successful review; failures are reported by the caller.
func writeResult(w io.Writer, format string, res reviewResult) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case formatText, "":
		if res.Outcome == review.OutcomeReviewed.String() {
			_, err := fmt.Fprintln(w, res.Review)
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// readCode loads code from the named file, or from stdin when it is not a
// terminal. "-" forces stdin.
func readCode(args []string, stdin *os.File) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return string(data), nil
	}
	if len(args) == 0 && term.IsTerminal(int(stdin.Fd())) {
		return "", errNoInput
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
