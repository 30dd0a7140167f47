package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/factlens/factlens/internal/genchain"
	"github.com/factlens/factlens/internal/model"
)

var (
	verifyFile       string
	verifyContextURL string
	verifyJSON       bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [text]",
	Short: "Fact-check a piece of text",
	Long:  "Extracts claims and citations from the given text (or --file), verifies each against web search, and prints the scored report.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text := ""
		if len(args) > 0 {
			text = args[0]
		}
		if verifyFile != "" {
			data, err := os.ReadFile(verifyFile)
			if err != nil {
				return eris.Wrap(err, "read input file")
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			return eris.New("no input text: pass it as an argument or via --file")
		}

		env, err := initService(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Service.Verify(ctx, text, verifyContextURL)
		if err != nil {
			if eris.Is(err, genchain.ErrNotConfigured) {
				return eris.New("no generation provider configured: set FACTLENS_GEMINI_KEYS or a fallback provider key")
			}
			return eris.Wrap(err, "verify")
		}

		if verifyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		formatReport(os.Stdout, report)
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFile, "file", "", "read input text from a file")
	verifyCmd.Flags().StringVar(&verifyContextURL, "context-url", "", "URL whose content grounds the extraction")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "print the raw report JSON")
	rootCmd.AddCommand(verifyCmd)
}

// formatReport prints a human-readable summary of a verification report.
func formatReport(out io.Writer, report *model.Report) {
	fmt.Fprintf(out, "Overall score: %d/100\n", report.OverallScore)

	if len(report.Claims) > 0 {
		fmt.Fprintf(out, "\nClaims (%d):\n", len(report.Claims))
		for i, c := range report.Claims {
			fmt.Fprintf(out, "  %d. [%s %.0f%%] %s\n", i+1, c.Status, c.Confidence, c.Text)
			if c.Explanation != "" {
				fmt.Fprintf(out, "     %s\n", c.Explanation)
			}
			if c.SourceURL != "" {
				fmt.Fprintf(out, "     source: %s\n", c.SourceURL)
			}
		}
	}

	if len(report.Citations) > 0 {
		fmt.Fprintf(out, "\nCitations (%d):\n", len(report.Citations))
		for i, c := range report.Citations {
			exists := "unknown"
			if c.Exists != nil {
				if *c.Exists {
					exists = "real"
				} else {
					exists = "not found"
				}
			}
			fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, exists, c.Text)
		}
	}
}
