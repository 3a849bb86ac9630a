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
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/unfriction/internal/friction"
)

var (
	scanInput string
	scanJSON  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List friction markers without rewriting",
	Long: `Scan a text file for friction markers and print each one with its position,
surrounding context and a suggestion. No backend is called.

Example:
  unfriction scan -i draft.txt
  unfriction scan -i draft.txt --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(scanInput)
		if err != nil {
			return err
		}

		points := friction.Scan(text)

		if scanJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if points == nil {
				points = []friction.Point{}
			}
			return enc.Encode(points)
		}

		if len(points) == 0 {
			fmt.Println("No friction language found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "POS\tCATEGORY\tMARKER\tCONTEXT\tSUGGESTION")
		for _, p := range points {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.Start, p.Category, p.Original, p.Context, p.Suggestion)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		counts := make(map[friction.Category]int)
		for _, p := range points {
			counts[p.Category]++
		}
		fmt.Fprintf(os.Stderr, "Found %d markers: %d contrastive, %d modal, %d negation\n",
			len(points), counts[friction.Contrastive], counts[friction.Modal], counts[friction.Negation])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanInput, "input", "i", "", "Input text file (default stdin)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print friction points as JSON")
}
