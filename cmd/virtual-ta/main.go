// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the virtual-ta CLI. It answers
// course questions once from the command line, serves them over HTTP, and
// manages the knowledge files and index the answers are drawn from.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/virtual-ta/internal/answer"
	"github.com/pdiddy/virtual-ta/internal/config"
	"github.com/pdiddy/virtual-ta/internal/knowledge"
	"github.com/pdiddy/virtual-ta/internal/question"
	"github.com/pdiddy/virtual-ta/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile string
	cfg     *types.Config
	logger  *zap.Logger
)

// rootCmd is the base command for the virtual-ta CLI.
var rootCmd = &cobra.Command{
	Use:   "virtual-ta",
	Short: "Virtual teaching assistant for the Tools in Data Science course",
	Long: `virtual-ta answers student questions about the Tools in Data Science
course. Questions are matched against hand-written answers first, then
against course content and forum discussions, with a generic pointer to
the course site and forum when nothing matches.

Use ask for a single question, serve to run the HTTP API, and knowledge to
import, index, and inspect the entries answers are drawn from.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		l, err := config.InitLogger(c.Log)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

// newAnswerer loads the knowledge base and builds the processor and
// generator shared by ask and serve.
func newAnswerer(ctx context.Context) (*question.Processor, *answer.Generator) {
	kb := knowledge.Load(ctx, cfg.Knowledge, logger)
	return question.NewProcessor(nil, logger), answer.NewGenerator(answer.DefaultRules(), kb)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./virtual-ta.yaml or ~/.config/virtual-ta/virtual-ta.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
