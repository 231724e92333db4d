package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aqlanhadi/mt940kit/extractor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	processTimeout int
	processSummary bool
)

var processCmd = &cobra.Command{
	Use:   "process <file-or-directory>",
	Short: "Process statement file(s) into MT940",
	Long: `Processes a statement file, or every statement file directly inside a directory.

Bank configs come from the "banks" key of the config file, and results are kept
under the upload folder. When a database URL is set, PostgreSQL is used for both.`,
	Args: cobra.ExactArgs(1),
	Run:  runProcess,
}

func runProcess(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(processTimeout)*time.Second)
	defer cancel()

	b, err := openBackend(ctx)
	if err != nil {
		logger.Fatalf("error: %v", err)
	}
	defer b.Close()

	p, err := newPipeline(b)
	if err != nil {
		logger.Fatalf("error: %v", err)
	}

	uploads, err := extractor.CollectUploads(args[0], allowedExtensions(), extractor.Upload{
		CompanyID: viper.GetInt64("company_id"),
		UserID:    viper.GetInt64("user_id"),
	})
	if err != nil {
		logger.Fatalf("error: %v", err)
	}

	result := p.ProcessBatch(ctx, uploads)
	if processSummary {
		printSummary(result)
		return
	}
	printJSON(result.Files)
	if result.Processed != result.Succeeded {
		os.Exit(2)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Fatalf("error: failed to encode output: %v", err)
	}
}

func printSummary(r extractor.BatchResult) {
	fmt.Printf("\nComplete: %d processed, %d succeeded, %d invalid, %d unknown, %d failed\n",
		r.Processed, r.Succeeded, r.Invalid, r.Unknown, r.Failed)

	if errs := r.Errors(); len(errs) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range errs {
			fmt.Printf("  - %s\n", e)
		}
	}
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().IntVar(&processTimeout, "timeout", 300, "Operation timeout in seconds")
	processCmd.Flags().BoolVar(&processSummary, "summary", false, "Print a summary instead of JSON results")
}
