package cmd

import (
	"context"

	"github.com/aqlanhadi/mt940kit/api"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long:  `Starts the HTTP API server that processes uploaded statements and serves the stored results and MT940 files.`,
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBackend(context.Background())
		if err != nil {
			logger.Fatalf("error: %v", err)
		}
		defer b.Close()

		p, err := newPipeline(b)
		if err != nil {
			logger.Fatalf("error: %v", err)
		}

		cfg := api.DefaultConfig()
		if servePort != "" {
			cfg.Port = ":" + servePort
		}
		cfg.UploadFolder = uploadFolder()
		cfg.AllowedExtensions = allowedExtensions()
		cfg.CompanyID = viper.GetInt64("company_id")
		cfg.UserID = viper.GetInt64("user_id")

		server := api.New(cfg, p)
		if err := server.Start(); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "8080", "Port to run the API server on")
}
