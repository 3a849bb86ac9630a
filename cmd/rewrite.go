/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/unfriction/internal/highlight"
	"github.com/valpere/unfriction/internal/orchestrator"
	"github.com/valpere/unfriction/internal/report"
	"github.com/valpere/unfriction/internal/store"
)

var (
	inputFile     string
	outputFile    string
	highlightFile string
	reportFile    string
	jsonOutput    bool
	showReport    bool
	noHistory     bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite",
	Short: "Rewrite friction language in a text file",
	Long: `Rewrite contrastive, modal-obligation and negation phrasing in a text file.

The input is processed paragraph by paragraph. Every sentence with a friction
marker is sent to the configured backend once per category; rewrites that
drift too far from the original are discarded and the sentence is kept.

Reads stdin when --input is "-" or omitted, writes stdout when --output is
"-" or omitted.

Example:
  unfriction rewrite -i draft.txt -o clean.txt --highlight draft.html
  unfriction rewrite -i draft.txt --report report.html -b azure,openrouter`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile != "" && inputFile != "-" && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		text, err := readInput(inputFile)
		if err != nil {
			return err
		}

		ctx := context.Background()

		var db *store.Store
		if cfg.DB != "" {
			db, err = openStore()
			if err != nil {
				return err
			}
			defer db.Close()
		}

		orch, rw, err := buildOrchestrator(ctx, db)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Rewriting with %s...\n", rw.Name())
		res := orch.Process(ctx, text, highlightFile != "" || reportFile != "")

		if db != nil && !noHistory {
			id, err := saveRun(ctx, db, rw.Name(), text, res)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save run: %v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "Run ID: %s\n", id)
			}
		}

		if jsonOutput {
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			if err := writeResult(outputFile, append(data, '\n')); err != nil {
				return err
			}
		} else if err := writeResult(outputFile, []byte(res.Text)); err != nil {
			return err
		}

		if highlightFile != "" {
			title := "unfriction"
			if inputFile != "" && inputFile != "-" {
				title = filepath.Base(inputFile)
			}
			page := highlightPage(title, res.Highlighted)
			if err := writeOutput(highlightFile, []byte(page)); err != nil {
				return err
			}
		}
		if reportFile != "" {
			if err := writeReport(reportFile, "Rewrite report", res); err != nil {
				return err
			}
		}
		if showReport {
			out, err := report.Terminal("Rewrite report", res, 0)
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stderr, out)
		}

		d := res.Diagnostics
		fmt.Fprintf(os.Stderr, "Changes: %d, units: %d, rewriter failures: %d, drift rejections: %d, residual: %d\n",
			len(res.Changes), d.Units, d.RewriterFailures, d.DriftRejections, d.ResidualFlags)
		return nil
	},
}

func readInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func writeResult(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return writeOutput(path, data)
}

// writeReport writes the change report as HTML, or as Markdown when path
// ends in .md.
func writeReport(path, title string, res *orchestrator.Result) error {
	var data string
	if strings.EqualFold(filepath.Ext(path), ".md") {
		data = report.Markdown(title, res)
	} else {
		data = report.HTML(title, res)
	}
	return writeOutput(path, []byte(data))
}

func highlightPage(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; white-space: pre-wrap; line-height: 1.6; }
%s
</style>
</head>
<body>%s</body>
</html>
`, highlight.HTML{}.Plain(title), highlightStyle, body)
}

const highlightStyle = `.highlight-change { background: #fff3b0; }
.highlight-add { background: #c8f7c5; }`

func saveRun(ctx context.Context, db *store.Store, backend, input string, res *orchestrator.Result) (string, error) {
	diag, err := json.Marshal(res.Diagnostics)
	if err != nil {
		return "", err
	}
	run := store.Run{
		Backend:     backend,
		Input:       input,
		Output:      res.Text,
		Diagnostics: string(diag),
	}
	for _, c := range res.Changes {
		run.Changes = append(run.Changes, store.ChangeRecord{
			Category:    string(c.Category),
			Original:    c.Original,
			Rewritten:   c.Rewritten,
			Explanation: c.Explanation,
		})
	}
	return db.SaveRun(ctx, run)
}

func init() {
	rootCmd.AddCommand(rewriteCmd)

	rewriteCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input text file (default stdin)")
	rewriteCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output text file (default stdout)")
	rewriteCmd.Flags().StringVar(&highlightFile, "highlight", "", "Write an HTML page with the changes highlighted")
	rewriteCmd.Flags().StringVar(&reportFile, "report", "", "Write a change report (HTML, or Markdown for .md)")
	rewriteCmd.Flags().BoolVar(&showReport, "show-report", false, "Print the change report to stderr")
	rewriteCmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the full result as JSON instead of the rewritten text")
	rewriteCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the run in history")
}
