package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- Bank identity configs used for detection
CREATE TABLE IF NOT EXISTS bank_config (
    id BIGSERIAL PRIMARY KEY,
    company_id BIGINT NOT NULL DEFAULT 0,
    bank_code VARCHAR(50) NOT NULL,
    bank_name VARCHAR(255) DEFAULT '',
    keywords TEXT[] NOT NULL DEFAULT '{}',
    scan_ranges JSONB NOT NULL DEFAULT '[]',
    is_active BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(company_id, bank_code)
);

-- Field mappings per bank
CREATE TABLE IF NOT EXISTS bank_statement_config (
    id BIGSERIAL PRIMARY KEY,
    company_id BIGINT NOT NULL DEFAULT 0,
    bank_code VARCHAR(50) NOT NULL,
    sequence INTEGER NOT NULL DEFAULT 0,
    identify_info VARCHAR(50) NOT NULL,
    keywords TEXT[] NOT NULL DEFAULT '{}',
    col_keyword VARCHAR(100) DEFAULT '',
    col_value VARCHAR(100) DEFAULT '',
    row_start INTEGER NOT NULL DEFAULT 0,
    row_end INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

-- One row per detection attempt
CREATE TABLE IF NOT EXISTS bank_log (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    company_id BIGINT NOT NULL DEFAULT 0,
    user_id BIGINT NOT NULL DEFAULT 0,
    bank_code VARCHAR(50),
    filename TEXT NOT NULL,
    original_filename TEXT DEFAULT '',
    status VARCHAR(20) NOT NULL,
    message TEXT DEFAULT '',
    detected_keywords TEXT[] NOT NULL DEFAULT '{}',
    processed_at TIMESTAMPTZ DEFAULT NOW()
);

-- Parsed statements
CREATE TABLE IF NOT EXISTS statement_log (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    company_id BIGINT NOT NULL DEFAULT 0,
    user_id BIGINT NOT NULL DEFAULT 0,
    bank_code VARCHAR(50) DEFAULT '',
    filename TEXT NOT NULL,
    original_filename TEXT DEFAULT '',
    status VARCHAR(20) NOT NULL,
    message TEXT DEFAULT '',
    accountno VARCHAR(50),
    currency VARCHAR(10),
    opening_balance VARCHAR(50),
    closing_balance VARCHAR(50),
    details JSONB NOT NULL DEFAULT '[]',
    mt940_filename TEXT DEFAULT '',
    processed_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_bank_statement_config_bank ON bank_statement_config(company_id, bank_code);
CREATE INDEX IF NOT EXISTS idx_bank_log_filename ON bank_log(filename);
CREATE INDEX IF NOT EXISTS idx_statement_log_company ON statement_log(company_id);
`

// migrateDDL adds new columns to existing tables
const migrateDDL = `
-- Add cell_format column if not exists
DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM information_schema.columns
                   WHERE table_name = 'bank_statement_config' AND column_name = 'cell_format') THEN
        ALTER TABLE bank_statement_config ADD COLUMN cell_format VARCHAR(50) DEFAULT '';
    END IF;
END $$;

-- Unknown detections have no bank code
DO $$ BEGIN
    ALTER TABLE bank_log ALTER COLUMN bank_code DROP NOT NULL;
EXCEPTION
    WHEN others THEN
        NULL;
END $$;

-- Statements rejected before an account is known keep accountno NULL
DO $$ BEGIN
    ALTER TABLE statement_log ALTER COLUMN accountno DROP NOT NULL;
EXCEPTION
    WHEN others THEN
        NULL;
END $$;
`

// EnsureSchema creates tables if they don't exist and runs migrations
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Run migrations for existing tables
	_, err = db.Pool.Exec(ctx, migrateDDL)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
