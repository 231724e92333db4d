package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/jackc/pgx/v5"
)

// nullIfEmpty maps "" to SQL NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func encodeDetails(details []common.Transaction) ([]byte, error) {
	if details == nil {
		details = []common.Transaction{}
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode details: %w", err)
	}
	return data, nil
}

// CreateStatement inserts a statement log row and sets its ID
func (db *DB) CreateStatement(ctx context.Context, stmt *common.Statement) error {
	details, err := encodeDetails(stmt.Details)
	if err != nil {
		return err
	}

	err = db.Pool.QueryRow(ctx, `
		INSERT INTO statement_log (
			company_id, user_id, bank_code, filename, original_filename,
			status, message, accountno, currency, opening_balance, closing_balance,
			details, mt940_filename, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id::text
	`,
		stmt.CompanyID, stmt.UserID, stmt.BankCode, stmt.Filename, stmt.OriginalFilename,
		string(stmt.Status), stmt.Message, nullIfEmpty(stmt.AccountNo), nullIfEmpty(stmt.Currency),
		nullIfEmpty(stmt.OpeningBalance), nullIfEmpty(stmt.ClosingBalance),
		details, stmt.MT940Filename, stmt.ProcessedAt,
	).Scan(&stmt.ID)

	if err != nil {
		return fmt.Errorf("failed to create statement: %w", err)
	}
	return nil
}

// UpdateStatement overwrites the mutable columns of a statement log row
func (db *DB) UpdateStatement(ctx context.Context, stmt common.Statement) error {
	details, err := encodeDetails(stmt.Details)
	if err != nil {
		return err
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE statement_log
		SET status = $2, message = $3, accountno = $4, currency = $5,
		    opening_balance = $6, closing_balance = $7, details = $8,
		    mt940_filename = $9, processed_at = $10
		WHERE id::text = $1
	`,
		stmt.ID, string(stmt.Status), stmt.Message, nullIfEmpty(stmt.AccountNo), nullIfEmpty(stmt.Currency),
		nullIfEmpty(stmt.OpeningBalance), nullIfEmpty(stmt.ClosingBalance),
		details, stmt.MT940Filename, stmt.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update statement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("statement %s: %w", stmt.ID, common.ErrNotFound)
	}
	return nil
}

// GetStatement loads one statement log row
func (db *DB) GetStatement(ctx context.Context, id string) (common.Statement, error) {
	var (
		stmt                                common.Statement
		status                              string
		account, currency, opening, closing *string
		details                             []byte
	)
	err := db.Pool.QueryRow(ctx, `
		SELECT id::text, company_id, user_id, COALESCE(bank_code, ''), filename, COALESCE(original_filename, ''),
		       status, COALESCE(message, ''), accountno, currency, opening_balance, closing_balance,
		       details, COALESCE(mt940_filename, ''), processed_at
		FROM statement_log
		WHERE id::text = $1
	`, id).Scan(
		&stmt.ID, &stmt.CompanyID, &stmt.UserID, &stmt.BankCode, &stmt.Filename, &stmt.OriginalFilename,
		&status, &stmt.Message, &account, &currency, &opening, &closing,
		&details, &stmt.MT940Filename, &stmt.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.Statement{}, fmt.Errorf("statement %s: %w", id, common.ErrNotFound)
		}
		return common.Statement{}, fmt.Errorf("failed to load statement: %w", err)
	}

	stmt.Status = common.Status(status)
	stmt.AccountNo = deref(account)
	stmt.Currency = deref(currency)
	stmt.OpeningBalance = deref(opening)
	stmt.ClosingBalance = deref(closing)
	if err := json.Unmarshal(details, &stmt.Details); err != nil {
		return common.Statement{}, fmt.Errorf("failed to decode details: %w", err)
	}
	return stmt, nil
}

// DeleteStatement removes a statement log row
func (db *DB) DeleteStatement(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM statement_log WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("statement %s: %w", id, common.ErrNotFound)
	}
	return nil
}
