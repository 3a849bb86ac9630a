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
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/unfriction/internal/config"
	"github.com/valpere/unfriction/internal/logging"
)

var version = "0.1.0"

var (
	configFile string
	verbose    bool
	quiet      bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "unfriction",
	Short: "Rewrite friction language in English text",
	Long: `A CLI application that finds contrastive ("but", "yet"), modal-obligation
("should", "could", "we need to") and negation ("not", "never", "can't")
phrasing in English text and rewrites it with an LLM, keeping everything
else verbatim.

Every proposed rewrite is checked against a drift budget; rewrites that
change too much of the sentence are discarded.

Supported backends: Azure OpenAI, OpenRouter, Ollama, Gemini

Use "unfriction rewrite --help" for rewrite options.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verbose, quiet)
		if err != nil {
			return err
		}
		logger = l

		cfg, err = config.Load(config.New(), configFile, cmd.Flags())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default ./unfriction.yaml or $HOME/.config/unfriction/unfriction.yaml)")
	pf.StringP("db", "d", "./data/unfriction.db", "Database path for run history, rewrite cache and protected phrases")
	pf.StringP("backend", "b", config.OpenRouter, "Rewriter backends in fallback order (azure, openrouter, ollama, gemini; comma-separated)")
	pf.String("policy", "", "YAML prompt policy file overlaid on the built-in prompts")
	pf.String("language", "en", "Expected input language; empty disables the language guard")
	pf.Bool("no-cache", false, "Disable the rewrite cache")
	pf.Bool("ensure-terminal", true, "Terminate unpunctuated lines before segmenting")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
}
