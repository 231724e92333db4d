package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor"
	"github.com/aqlanhadi/mt940kit/integrations/filestore"
	"github.com/aqlanhadi/mt940kit/integrations/postgres"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// backend is where bank configs come from and where results go.
type backend struct {
	configs extractor.ConfigSource
	store   extractor.Store
	db      *postgres.DB
}

func (b *backend) Close() {
	if b.db != nil {
		b.db.Close()
	}
}

// openBackend uses PostgreSQL when a database URL is configured and the
// YAML catalogue with the file store otherwise.
func openBackend(ctx context.Context) (*backend, error) {
	if url := viper.GetString("database_url"); url != "" {
		return openDatabase(ctx, url)
	}

	catalog, err := filestore.LoadCatalog(viper.GetViper(), "banks")
	if err != nil {
		return nil, err
	}
	logger.WithField("upload_folder", viper.GetString("upload_folder")).Debug("Using file store")
	return &backend{configs: catalog, store: filestore.New(uploadFolder())}, nil
}

func openDatabase(ctx context.Context, url string) (*backend, error) {
	logger.Debug("Connecting to database")
	db, err := postgres.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}
	return &backend{configs: db, store: db, db: db}, nil
}

func uploadFolder() string {
	if f := viper.GetString("upload_folder"); f != "" {
		return f
	}
	return "uploads"
}

func allowedExtensions() []string {
	exts := viper.GetStringSlice("allowed_extensions")
	if len(exts) == 0 {
		return []string{"xls", "xlsx", "csv", "txt", "pdf"}
	}
	return exts
}

// pipelineOptions turns the viper settings into extractor.Options.
func pipelineOptions() (extractor.Options, error) {
	opts := extractor.DefaultOptions()
	opts.UploadFolder = uploadFolder()
	if enc := viper.GetString("csv_encoding"); enc != "" {
		opts.Sheet.CSVEncoding = enc
	}
	if t := strings.TrimSpace(viper.GetString("tolerance")); t != "" {
		tol, err := decimal.NewFromString(t)
		if err != nil {
			return opts, fmt.Errorf("invalid tolerance %q: %w", t, err)
		}
		opts.Tolerance = tol.Abs()
	}
	return opts, nil
}

func newPipeline(b *backend) (*extractor.Pipeline, error) {
	opts, err := pipelineOptions()
	if err != nil {
		return nil, err
	}
	return extractor.New(b.configs, b.store, opts), nil
}
