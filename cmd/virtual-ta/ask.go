// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question",
	Long: `Ask processes one question and prints the answer followed by its
reference links. Use --image to attach a screenshot; it is sent to the
processor base64-encoded, exactly as the HTTP API receives it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	imagePath, _ := cmd.Flags().GetString("image")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var image string
	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return eris.Wrapf(err, "ask: read image %s", imagePath)
		}
		image = base64.StdEncoding.EncodeToString(data)
	}

	processor, generator := newAnswerer(cmd.Context())

	pq, err := processor.Process(strings.Join(args, " "), image)
	if err != nil {
		return err
	}
	result := generator.Generate(pq)

	return formatAnswer(cmd.OutOrStdout(), result, jsonOutput)
}

func formatAnswer(w io.Writer, result types.AnswerResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(w, result.Answer)
	if len(result.Links) > 0 {
		fmt.Fprintln(w)
		for i, l := range result.Links {
			fmt.Fprintf(w, "[%d] %s\n    %s\n", i+1, l.Text, l.URL)
		}
	}
	return nil
}

func init() {
	askCmd.Flags().String("image", "", "path to an image to attach to the question")
	askCmd.Flags().Bool("json", false, "output the answer as JSON")

	rootCmd.AddCommand(askCmd)
}
