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
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var protectCmd = &cobra.Command{
	Use:   "protect",
	Short: "Manage protected phrases",
	Long: `Add, list, and delete protected phrases.

Protected phrases are replaced by placeholders before a sentence is sent to
the backend and restored afterwards, so they are never rewritten. Use them
for product names, quotes and fixed terminology that happen to contain
friction markers, e.g. "No Code Studio" or "Never Settle".`,
}

var protectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all protected phrases",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		phrases, err := db.ListPhrases(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list phrases: %w", err)
		}

		if len(phrases) == 0 {
			fmt.Println("No protected phrases.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPHRASE\tADDED")
		for _, p := range phrases {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Phrase, p.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var protectAddCmd = &cobra.Command{
	Use:   "add <phrase>...",
	Short: "Add protected phrases",
	Long: `Add one or more protected phrases. Adding an existing phrase is a no-op.

Example:
  unfriction protect add "Never Settle" "No Code Studio"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		for _, phrase := range args {
			if err := db.AddPhrase(context.Background(), phrase); err != nil {
				return fmt.Errorf("failed to add phrase %q: %w", phrase, err)
			}
			fmt.Printf("Protected: %q\n", phrase)
		}
		return nil
	},
}

var protectDeleteCmd = &cobra.Command{
	Use:   "delete <id|phrase>",
	Short: "Delete a protected phrase by ID or text",
	Long: `Delete a protected phrase by its ID (shown in "unfriction protect list")
or by its exact text.

Example:
  unfriction protect delete pp_1734567890123456789
  unfriction protect delete "Never Settle"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeletePhrase(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete phrase: %w", err)
		}
		fmt.Printf("Deleted protected phrase: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(protectCmd)

	protectCmd.AddCommand(protectListCmd)
	protectCmd.AddCommand(protectAddCmd)
	protectCmd.AddCommand(protectDeleteCmd)
}
