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
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valpere/unfriction/internal/highlight"
)

var (
	hlOriginal     string
	hlProcessed    string
	hlOutput       string
	hlFormat       string
	hlShowOriginal bool
)

var highlightCmd = &cobra.Command{
	Use:   "highlight",
	Short: "Highlight the differences between an original and a rewritten text",
	Long: `Align an original text with its rewritten version and mark replaced and
inserted words. Deletions are not shown.

Formats:
  html       HTML spans (default), wrapped in a page when writing to a file
  terminal   colored terminal output

Example:
  unfriction highlight --original draft.txt --processed clean.txt -o diff.html
  unfriction highlight --original draft.txt --processed clean.txt --format terminal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		original, err := os.ReadFile(hlOriginal)
		if err != nil {
			return fmt.Errorf("failed to read original: %w", err)
		}
		processed, err := os.ReadFile(hlProcessed)
		if err != nil {
			return fmt.Errorf("failed to read processed: %w", err)
		}

		switch hlFormat {
		case "html":
			out := highlight.Document(string(original), string(processed), highlight.HTML{})
			if hlOutput == "" || hlOutput == "-" {
				fmt.Println(out)
				return nil
			}
			return writeOutput(hlOutput, []byte(highlightPage(filepath.Base(hlProcessed), out)))
		case "terminal":
			out := highlight.Document(string(original), string(processed), highlight.NewTerminal(hlShowOriginal))
			fmt.Println(out)
			return nil
		default:
			return fmt.Errorf("unknown format %q (want html or terminal)", hlFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(highlightCmd)

	highlightCmd.Flags().StringVar(&hlOriginal, "original", "", "Original text file (required)")
	highlightCmd.Flags().StringVar(&hlProcessed, "processed", "", "Rewritten text file (required)")
	highlightCmd.Flags().StringVarP(&hlOutput, "output", "o", "", "Output file for html format (default stdout)")
	highlightCmd.Flags().StringVarP(&hlFormat, "format", "f", "html", "Output format: html or terminal")
	highlightCmd.Flags().BoolVar(&hlShowOriginal, "show-original", false, "Show the replaced words next to replacements (terminal format)")

	highlightCmd.MarkFlagRequired("original")
	highlightCmd.MarkFlagRequired("processed")
}
