package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account <statement-id> <account-number>",
	Short: "Set a statement's account number and regenerate its MT940",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		b, err := openBackend(ctx)
		if err != nil {
			logger.Fatalf("error: %v", err)
		}
		defer b.Close()

		p, err := newPipeline(b)
		if err != nil {
			logger.Fatalf("error: %v", err)
		}
		stmt, err := p.UpdateAccount(ctx, args[0], args[1])
		if err != nil {
			logger.Fatalf("error: %v", err)
		}
		fmt.Printf("%s: %s (%s)\n", stmt.ID, stmt.Message, stmt.MT940Filename)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <statement-id>",
	Short: "Delete a statement and its MT940 file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		b, err := openBackend(ctx)
		if err != nil {
			logger.Fatalf("error: %v", err)
		}
		defer b.Close()

		p, err := newPipeline(b)
		if err != nil {
			logger.Fatalf("error: %v", err)
		}
		if err := p.DeleteStatement(ctx, args[0]); err != nil {
			logger.Fatalf("error: %v", err)
		}
		fmt.Printf("Deleted %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(deleteCmd)
}
