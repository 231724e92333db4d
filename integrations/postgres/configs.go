package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aqlanhadi/mt940kit/extractor/common"
)

// BankConfigs returns the bank identity configs visible to a company,
// shared rows (company 0) included, in registration order.
func (db *DB) BankConfigs(ctx context.Context, companyID int64) ([]common.BankIdentityConfig, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT company_id, bank_code, COALESCE(bank_name, ''), keywords, scan_ranges, is_active
		FROM bank_config
		WHERE company_id = $1 OR company_id = 0
		ORDER BY id
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank configs: %w", err)
	}
	defer rows.Close()

	var out []common.BankIdentityConfig
	for rows.Next() {
		var (
			cfg    common.BankIdentityConfig
			ranges []byte
		)
		if err := rows.Scan(&cfg.CompanyID, &cfg.BankCode, &cfg.BankName, &cfg.Keywords, &ranges, &cfg.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan bank config: %w", err)
		}
		if err := json.Unmarshal(ranges, &cfg.ScanRanges); err != nil {
			return nil, fmt.Errorf("failed to decode scan ranges of %s: %w", cfg.BankCode, err)
		}
		out = append(out, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bank configs: %w", err)
	}
	return out, nil
}

// FieldMappings returns the field mappings of one bank in configured order.
func (db *DB) FieldMappings(ctx context.Context, companyID int64, bankCode string) ([]common.FieldMappingConfig, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT company_id, bank_code, identify_info, keywords,
		       COALESCE(col_keyword, ''), COALESCE(col_value, ''),
		       row_start, row_end, COALESCE(cell_format, '')
		FROM bank_statement_config
		WHERE (company_id = $1 OR company_id = 0) AND UPPER(bank_code) = UPPER($2)
		ORDER BY sequence, id
	`, companyID, bankCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query field mappings: %w", err)
	}
	defer rows.Close()

	var out []common.FieldMappingConfig
	for rows.Next() {
		var m common.FieldMappingConfig
		if err := rows.Scan(&m.CompanyID, &m.BankCode, &m.IdentifyInfo, &m.Keywords,
			&m.ColKeyword, &m.ColValue, &m.RowStart, &m.RowEnd, &m.CellFormat); err != nil {
			return nil, fmt.Errorf("failed to scan field mapping: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read field mappings: %w", err)
	}
	return out, nil
}
