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
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/unfriction/internal/friction"
	"github.com/valpere/unfriction/internal/store"
)

var (
	csvInputFile  string
	csvOutputFile string
	csvColumns    []int
	csvSkipHeader bool
	csvResume     string
)

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Rewrite friction language in columns of a CSV file",
	Long: `Rewrite one or more columns in a CSV file.

By default all columns are processed. Use -l to select specific columns
(0-indexed). The flag may be repeated to select multiple columns. Cells
without friction markers are copied without calling the backend.

A checkpoint ID is printed at the start of each run. If the job is interrupted,
use --resume with that ID to skip already-processed cells.

Example:
  unfriction csv -i feedback.csv -o out.csv --columns 2,3
  unfriction csv -i feedback.csv -o out.csv --resume 6f1c0c3e-...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if csvInputFile == csvOutputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		f, err := os.Open(csvInputFile)
		if err != nil {
			return fmt.Errorf("failed to open input CSV: %w", err)
		}
		defer f.Close()

		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			return fmt.Errorf("failed to read CSV: %w", err)
		}

		if len(records) == 0 {
			return fmt.Errorf("CSV file is empty")
		}

		ctx := context.Background()

		// Open store for cache and checkpoint support.
		var db *store.Store
		if cfg.DB != "" {
			db, err = openStore()
			if err != nil {
				return err
			}
			defer db.Close()
		}

		// Load or create checkpoint.
		var checkpointID string
		completedCells := make(map[string]string)

		if csvResume != "" {
			if db == nil {
				return fmt.Errorf("--resume requires --db to be set")
			}
			cp, cpErr := db.GetCSVCheckpoint(ctx, csvResume)
			if cpErr != nil {
				return fmt.Errorf("failed to load checkpoint: %w", cpErr)
			}
			if cp.InputFile != csvInputFile {
				fmt.Fprintf(os.Stderr, "Warning: checkpoint was created for %s\n", cp.InputFile)
			}
			checkpointID = csvResume
			cells, cpErr := db.GetCSVCells(ctx, checkpointID)
			if cpErr != nil {
				return fmt.Errorf("failed to load checkpoint cells: %w", cpErr)
			}
			completedCells = cells
			fmt.Fprintf(os.Stderr, "Resuming checkpoint %s (%d cells already done)\n", checkpointID, len(completedCells))
		} else if db != nil {
			checkpointID, err = db.CreateCSVCheckpoint(ctx, csvInputFile, csvOutputFile, columnList(csvColumns))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to create checkpoint: %v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "Checkpoint ID: %s (use --resume %s to resume if interrupted)\n", checkpointID, checkpointID)
			}
		}

		orch, _, err := buildOrchestrator(ctx, db)
		if err != nil {
			return err
		}

		// Determine which columns to process.
		colSet := make(map[int]bool, len(csvColumns))
		for _, c := range csvColumns {
			colSet[c] = true
		}
		processAll := len(csvColumns) == 0

		var changed, failed int

		// Build output records.
		out := make([][]string, len(records))
		for rowIdx, row := range records {
			out[rowIdx] = make([]string, len(row))
			copy(out[rowIdx], row)

			if rowIdx == 0 && csvSkipHeader {
				continue
			}

			for colIdx, cell := range row {
				if !processAll && !colSet[colIdx] {
					continue
				}
				if strings.TrimSpace(cell) == "" || !hasFriction(cell) {
					continue
				}

				cellKey := store.CellKey(rowIdx, colIdx)

				// Use checkpoint data when resuming.
				if rewritten, done := completedCells[cellKey]; done {
					out[rowIdx][colIdx] = rewritten
					continue
				}

				res := orch.Process(ctx, cell, false)
				if res.Diagnostics.RewriterFailures > 0 && len(res.Changes) == 0 {
					failed++
					fmt.Fprintf(os.Stderr, "Row %d col %d: backend failed, keeping original\n", rowIdx, colIdx)
				}
				if len(res.Changes) > 0 {
					changed++
				}

				out[rowIdx][colIdx] = res.Text

				if db != nil && checkpointID != "" {
					_ = db.SaveCSVCell(ctx, checkpointID, rowIdx, colIdx, res.Text)
				}
			}
		}

		outFile, err := os.Create(csvOutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output CSV: %w", err)
		}
		defer outFile.Close()

		writer := csv.NewWriter(outFile)
		if err := writer.WriteAll(out); err != nil {
			return fmt.Errorf("failed to write output CSV: %w", err)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return fmt.Errorf("failed to flush output CSV: %w", err)
		}

		// Mark checkpoint complete.
		if db != nil && checkpointID != "" {
			_ = db.CompleteCSVCheckpoint(ctx, checkpointID)
		}

		fmt.Printf("CSV rewritten successfully: %s\n", csvOutputFile)
		fmt.Printf("Cells changed: %d, failed: %d\n", changed, failed)
		return nil
	},
}

func hasFriction(text string) bool {
	for _, cat := range friction.Categories {
		if friction.Has(text, cat) {
			return true
		}
	}
	return false
}

func columnList(cols []int) string {
	if len(cols) == 0 {
		return "all"
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

func init() {
	rootCmd.AddCommand(csvCmd)

	csvCmd.Flags().StringVarP(&csvInputFile, "input", "i", "", "Input CSV file (required)")
	csvCmd.Flags().StringVarP(&csvOutputFile, "output", "o", "", "Output CSV file (required)")
	csvCmd.Flags().IntSliceVarP(&csvColumns, "columns", "l", nil, "Column indexes to rewrite (0-indexed, comma-separated or repeated; default: all columns)")
	csvCmd.Flags().BoolVar(&csvSkipHeader, "header", true, "Treat the first row as a header and copy it unchanged")
	csvCmd.Flags().StringVar(&csvResume, "resume", "", "Resume from checkpoint ID (printed at start of original run)")

	csvCmd.MarkFlagRequired("input")
	csvCmd.MarkFlagRequired("output")
}
