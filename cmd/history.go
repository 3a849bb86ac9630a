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
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/unfriction/internal/friction"
	"github.com/valpere/unfriction/internal/highlight"
	"github.com/valpere/unfriction/internal/orchestrator"
	"github.com/valpere/unfriction/internal/report"
	"github.com/valpere/unfriction/internal/store"
)

var (
	historyLimit  int
	historyReport string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past rewrite runs",
	Long:  `List and show rewrite runs recorded in the database.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tBACKEND\tCHANGES\tTEXT")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Backend, r.ChangeCount, snippet(r.Input, 40))
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the changes of a run",
	Long: `Show the changes of a recorded run as a terminal report.

Example:
  unfriction history show 6f1c0c3e-... --report run.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}

		res := resultFromRun(run)
		title := fmt.Sprintf("Run %s (%s, %s)", run.ID, run.Backend, run.CreatedAt.Format("2006-01-02 15:04"))

		if historyReport != "" {
			if err := writeReport(historyReport, title, res); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Report written to %s\n", historyReport)
			return nil
		}

		out, err := report.Terminal(title, res, 0)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

// resultFromRun rebuilds a reportable result from a stored run.
func resultFromRun(run *store.Run) *orchestrator.Result {
	res := &orchestrator.Result{Text: run.Output}
	if run.Diagnostics != "" {
		if err := json.Unmarshal([]byte(run.Diagnostics), &res.Diagnostics); err != nil {
			logger.Sugar().Warnf("run %s has unreadable diagnostics: %v", run.ID, err)
		}
	}
	for _, c := range run.Changes {
		ch := orchestrator.Change{
			Category:    friction.Category(c.Category),
			Original:    c.Original,
			Rewritten:   c.Rewritten,
			Explanation: c.Explanation,
		}
		res.Changes = append(res.Changes, ch)
		res.Transformations = append(res.Transformations, orchestrator.Derive(ch)...)
	}
	res.Highlighted = highlight.Document(run.Input, run.Output, highlight.HTML{})
	res.HasHighlight = true
	return res
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list (0 = all)")
	historyShowCmd.Flags().StringVar(&historyReport, "report", "", "Write the report to a file (HTML, or Markdown for .md) instead of printing it")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}
