package postgres

import (
	"context"
	"fmt"

	"github.com/aqlanhadi/mt940kit/extractor/common"
)

// CreateBankLog records a detection attempt and sets its ID
func (db *DB) CreateBankLog(ctx context.Context, l *common.BankLog) error {
	keywords := l.DetectedKeywords
	if keywords == nil {
		keywords = []string{}
	}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO bank_log (
			company_id, user_id, bank_code, filename, original_filename,
			status, message, detected_keywords, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id::text
	`,
		l.CompanyID, l.UserID, nullIfEmpty(l.BankCode), l.Filename, l.OriginalFilename,
		string(l.Status), l.Message, keywords, l.ProcessedAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("failed to create bank log: %w", err)
	}
	return nil
}

// DeleteBankLogs removes every bank log of a file
func (db *DB) DeleteBankLogs(ctx context.Context, filename string) (int, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM bank_log WHERE filename = $1`, filename)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bank logs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
