package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/aqlanhadi/mt940kit/extractor/detect"
	"github.com/aqlanhadi/mt940kit/extractor/fields"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check bank configs for mistakes",
	Long: `Lints the bank identity configs and field mappings visible to the configured
company: malformed ranges and columns, unknown field identities, missing
detail windows and keywords shared by more than one bank.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		b, err := openBackend(ctx)
		if err != nil {
			logger.Fatalf("error: %v", err)
		}
		defer b.Close()

		companyID := viper.GetInt64("company_id")
		banks, err := b.configs.BankConfigs(ctx, companyID)
		if err != nil {
			logger.Fatalf("error: %v", err)
		}
		var mappings []common.FieldMappingConfig
		for _, bank := range banks {
			m, err := b.configs.FieldMappings(ctx, companyID, bank.BankCode)
			if err != nil {
				logger.Fatalf("error: %v", err)
			}
			mappings = append(mappings, m...)
		}

		problems := fields.Lint(banks, mappings)
		conflicts := detect.Conflicts(banks)

		for _, p := range problems {
			fmt.Println(p)
		}
		for _, c := range conflicts {
			fmt.Printf("keyword %q is shared by %s\n", c.Keyword, strings.Join(c.BankCodes, ", "))
		}
		fmt.Printf("\nChecked %d bank(s), %d mapping(s): %d problem(s), %d conflict(s)\n",
			len(banks), len(mappings), len(problems), len(conflicts))

		if len(problems) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
