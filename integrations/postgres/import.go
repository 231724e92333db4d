package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// ImportResult tracks the outcome of a catalogue import
type ImportResult struct {
	Processed int
	Skipped   int
	Failed    int
	Errors    []string
}

// ImportOptions configures the import behavior
type ImportOptions struct {
	// Replace drops a bank's existing field mappings before inserting the new ones.
	Replace bool
	Verbose bool
}

type bankKey struct {
	companyID int64
	bankCode  string
}

// ImportCatalog upserts bank configs and their field mappings. Each bank is
// written in its own transaction so one bad bank does not block the rest.
func (db *DB) ImportCatalog(ctx context.Context, banks []common.BankIdentityConfig, mappings []common.FieldMappingConfig, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	byBank := make(map[bankKey][]common.FieldMappingConfig)
	for _, m := range mappings {
		k := bankKey{m.CompanyID, strings.ToUpper(m.BankCode)}
		byBank[k] = append(byBank[k], m)
	}

	for _, b := range banks {
		code := strings.ToUpper(strings.TrimSpace(b.BankCode))
		if code == "" {
			result.Skipped++
			continue
		}
		b.BankCode = code

		n, err := db.importBank(ctx, b, byBank[bankKey{b.CompanyID, code}], opts.Replace)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", code, err))
			continue
		}
		if opts.Verbose {
			log.WithFields(logrus.Fields{"bank_code": code, "company_id": b.CompanyID}).Infof("Imported bank with %d mapping(s)", n)
		}
		result.Processed++
	}

	return result, nil
}

func (db *DB) importBank(ctx context.Context, b common.BankIdentityConfig, mappings []common.FieldMappingConfig, replace bool) (int, error) {
	ranges := b.ScanRanges
	if ranges == nil {
		ranges = []common.ScanRange{}
	}
	rangesJSON, err := json.Marshal(ranges)
	if err != nil {
		return 0, fmt.Errorf("failed to encode scan ranges: %w", err)
	}
	keywords := b.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO bank_config (company_id, bank_code, bank_name, keywords, scan_ranges, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, bank_code) DO UPDATE
		SET bank_name = EXCLUDED.bank_name,
		    keywords = EXCLUDED.keywords,
		    scan_ranges = EXCLUDED.scan_ranges,
		    is_active = EXCLUDED.is_active,
		    updated_at = NOW()
	`, b.CompanyID, b.BankCode, b.BankName, keywords, rangesJSON, b.IsActive)

	if replace {
		batch.Queue(`DELETE FROM bank_statement_config WHERE company_id = $1 AND UPPER(bank_code) = $2`, b.CompanyID, b.BankCode)
	}
	for i, m := range mappings {
		mk := m.Keywords
		if mk == nil {
			mk = []string{}
		}
		batch.Queue(`
			INSERT INTO bank_statement_config (
				company_id, bank_code, sequence, identify_info, keywords,
				col_keyword, col_value, row_start, row_end, cell_format
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, b.CompanyID, b.BankCode, i, strings.ToLower(strings.TrimSpace(m.IdentifyInfo)), mk,
			m.ColKeyword, m.ColValue, m.RowStart, m.RowEnd, m.CellFormat)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("failed to write catalogue row %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to write catalogue: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit catalogue: %w", err)
	}
	return len(mappings), nil
}
