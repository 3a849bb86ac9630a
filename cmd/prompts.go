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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/unfriction/internal/friction"
	"github.com/valpere/unfriction/internal/policy"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and export the rewrite prompts",
	Long: `List, show and export the prompt policy: one instruction per friction
category and context, plus an escalation instruction per category.

The effective policy is the built-in one overlaid with --policy. Export it,
edit the YAML and pass it back with --policy to customise the prompts.`,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories and their contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		pol, err := policy.Load(cfg.PolicyFile)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tCONTEXT\tEXAMPLE")
		for _, cat := range friction.Categories {
			for _, ctx := range pol.Contexts(cat) {
				tmpl, _ := pol.Template(cat, ctx)
				fmt.Fprintf(w, "%s\t%s\t%s\n", cat, ctx, snippet(tmpl.Example.From, 50))
			}
		}
		return w.Flush()
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <category> [context]",
	Short: "Show the rendered prompt for a category and context",
	Long: `Show the instruction sent to the backend for a category and context,
rendered for a sample sentence.

Example:
  unfriction prompts show negation complex
  unfriction prompts show modal --text "We should fix this."`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := friction.Category(args[0])
		if !cat.Valid() {
			return fmt.Errorf("unknown category %q (want contrastive, modal or negation)", args[0])
		}
		ctx := friction.ContextDefault
		if len(args) == 2 {
			ctx = args[1]
		}

		pol, err := policy.Load(cfg.PolicyFile)
		if err != nil {
			return err
		}

		text := promptsText
		if text == "" {
			text = "{text}"
		}
		out, err := pol.Render(policy.Prompt{Category: cat, Context: ctx, Text: text, Escalate: promptsEscalate})
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var promptsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the effective policy as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pol, err := policy.Load(cfg.PolicyFile)
		if err != nil {
			return err
		}
		if err := pol.Save(args[0]); err != nil {
			return err
		}
		fmt.Printf("Policy exported to %s\n", args[0])
		return nil
	},
}

var (
	promptsText     string
	promptsEscalate bool
)

func init() {
	rootCmd.AddCommand(promptsCmd)

	promptsShowCmd.Flags().StringVar(&promptsText, "text", "", "Sample sentence to render into the prompt")
	promptsShowCmd.Flags().BoolVar(&promptsEscalate, "escalate", false, "Show the escalation prompt used on retries")

	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsExportCmd)
}
