package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/google/uuid"
)

const (
	statementDir = "statements"
	bankLogFile  = "bank_log.csv"
)

var idRegex = regexp.MustCompile(`^[0-9a-fA-F-]{1,64}$`)

// Store writes each statement as statements/<id>.json and appends bank logs
// to bank_log.csv, both under Root.
type Store struct {
	Root string
	mu   sync.Mutex
}

func New(root string) *Store {
	return &Store{Root: root}
}

func (s *Store) statementPath(id string) (string, error) {
	if !idRegex.MatchString(id) {
		return "", fmt.Errorf("statement %q: %w", id, common.ErrNotFound)
	}
	return filepath.Join(s.Root, statementDir, id+".json"), nil
}

func (s *Store) CreateStatement(_ context.Context, stmt *common.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt.ID = uuid.NewString()
	return s.writeStatement(*stmt)
}

func (s *Store) UpdateStatement(_ context.Context, stmt common.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.statementPath(stmt.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("statement %s: %w", stmt.ID, common.ErrNotFound)
		}
		return fmt.Errorf("failed to stat statement: %w", err)
	}
	return s.writeStatement(stmt)
}

func (s *Store) writeStatement(stmt common.Statement) error {
	path, err := s.statementPath(stmt.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create statement folder: %w", err)
	}
	data, err := json.MarshalIndent(stmt, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode statement: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write statement: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write statement: %w", err)
	}
	return nil
}

func (s *Store) GetStatement(_ context.Context, id string) (common.Statement, error) {
	path, err := s.statementPath(id)
	if err != nil {
		return common.Statement{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return common.Statement{}, fmt.Errorf("statement %s: %w", id, common.ErrNotFound)
		}
		return common.Statement{}, fmt.Errorf("failed to read statement: %w", err)
	}
	var stmt common.Statement
	if err := json.Unmarshal(data, &stmt); err != nil {
		return common.Statement{}, fmt.Errorf("failed to decode statement %s: %w", id, err)
	}
	return stmt, nil
}

func (s *Store) DeleteStatement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.statementPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("statement %s: %w", id, common.ErrNotFound)
		}
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	return nil
}
