package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/sirupsen/logrus"
)

var ErrAccountRequired = errors.New("account number is required")

// Statement returns a stored statement.
func (p *Pipeline) Statement(ctx context.Context, id string) (common.Statement, error) {
	return p.store.GetStatement(ctx, id)
}

// UpdateAccount sets the account number of a stored statement, writes a fresh
// MT940 file and removes the one it replaces.
func (p *Pipeline) UpdateAccount(ctx context.Context, id, accountNo string) (common.Statement, error) {
	accountNo = strings.TrimSpace(accountNo)
	if accountNo == "" {
		return common.Statement{}, ErrAccountRequired
	}
	stmt, err := p.store.GetStatement(ctx, id)
	if err != nil {
		return common.Statement{}, fmt.Errorf("failed to load statement: %w", err)
	}

	previous := stmt.MT940Filename
	stmt.AccountNo = accountNo

	now := p.opts.Now()
	rel, err := p.writeMT940(stmt, now)
	if err != nil {
		return common.Statement{}, err
	}
	if previous != "" && previous != rel {
		p.removeOutput(previous)
	}

	stmt.MT940Filename = rel
	stmt.Status = common.StatusSuccess
	stmt.Message = msgAccountUpdated
	stmt.ProcessedAt = now.UTC()
	if err := p.store.UpdateStatement(ctx, stmt); err != nil {
		return common.Statement{}, fmt.Errorf("failed to update statement: %w", err)
	}

	log.WithFields(logrus.Fields{"statement_id": id, "bank_code": stmt.BankCode}).Info("Account number updated")
	return stmt, nil
}

// DeleteStatement removes a stored statement and its MT940 file.
func (p *Pipeline) DeleteStatement(ctx context.Context, id string) error {
	stmt, err := p.store.GetStatement(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load statement: %w", err)
	}
	if err := p.store.DeleteStatement(ctx, id); err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	if stmt.MT940Filename != "" {
		p.removeOutput(stmt.MT940Filename)
	}
	return nil
}

// MT940 reads the MT940 file of a stored statement.
func (p *Pipeline) MT940(ctx context.Context, id string) (string, []byte, error) {
	stmt, err := p.store.GetStatement(ctx, id)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load statement: %w", err)
	}
	if stmt.MT940Filename == "" {
		return "", nil, fmt.Errorf("statement %s has no mt940 file: %w", id, common.ErrNotFound)
	}
	data, err := os.ReadFile(p.outputPath(stmt.MT940Filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("mt940 file %s: %w", stmt.MT940Filename, common.ErrNotFound)
		}
		return "", nil, fmt.Errorf("failed to read mt940 file: %w", err)
	}
	return filepath.Base(stmt.MT940Filename), data, nil
}

func (p *Pipeline) outputPath(rel string) string {
	return filepath.Join(p.opts.UploadFolder, filepath.FromSlash(rel))
}

func (p *Pipeline) removeOutput(rel string) {
	if err := os.Remove(p.outputPath(rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).WithField("file", rel).Warn("Failed to remove mt940 file")
	}
}
