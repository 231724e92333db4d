package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/aqlanhadi/mt940kit/api"
	"github.com/aqlanhadi/mt940kit/extractor"
	"github.com/aqlanhadi/mt940kit/extractor/detect"
	"github.com/aqlanhadi/mt940kit/extractor/fields"
	"github.com/aqlanhadi/mt940kit/extractor/sheet"
	"github.com/aqlanhadi/mt940kit/integrations/postgres"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration (used when no .mt940kit.yaml is found)
const defaultConfigYAML = `
upload_folder: uploads
tolerance: "0.01"
csv_encoding: windows-1258
allowed_extensions: [xls, xlsx, csv, txt, pdf]
company_id: 0
user_id: 0
banks:
  - bank_code: VCB
    bank_name: Vietcombank
    keywords: [vietcombank, "ngân hàng tmcp ngoại thương"]
    scan_ranges:
      - name: title
        range: A1:H5
    mappings:
      - identify_info: accountno
        keywords: ["số tài khoản", "account number"]
        col_keyword: A
        col_value: C
      - identify_info: currency
        keywords: ["loại tiền", "currency"]
        col_keyword: A
        col_value: C
      - identify_info: openingbalance
        keywords: ["số dư đầu kỳ", "opening balance"]
        col_keyword: A
        col_value: C
      - identify_info: closingbalance
        keywords: ["số dư cuối kỳ", "closing balance"]
        col_keyword: A
        col_value: C
      - identify_info: transactiondate
        col_value: A
        row_start: 13
        cell_format: "%d/%m/%Y"
      - identify_info: reference_number
        col_value: B
        row_start: 13
      - identify_info: debit
        col_value: C
        row_start: 13
      - identify_info: credit
        col_value: D
        row_start: 13
      - identify_info: narrative
        col_value: E
        row_start: 13`

var (
	cfgFile string
	verbose bool
	logger  = logrus.New()
	rootCmd = &cobra.Command{
		Use:   "mt940kit [filename]",
		Short: "Turn bank statement spreadsheets into MT940 files",
		Long: `mt940kit detects the bank behind a statement spreadsheet, extracts its header and
transactions, checks that the balances add up and writes an MT940 file.`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				runProcess(cmd, args)
				return
			}
			cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.mt940kit.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().String("db-url", "", "PostgreSQL connection URL (or set DATABASE_URL env)")
	viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("db-url"))
}

func initLogging() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	sheet.SetLogger(logger)
	detect.SetLogger(logger)
	fields.SetLogger(logger)
	extractor.SetLogger(logger)
	postgres.SetLogger(logger)
	api.SetLogger(logger)
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".mt940kit")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found, use embedded default configuration
			viper.SetConfigType("yaml")
			if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading embedded configuration: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
