package filestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/google/uuid"
)

// bankLogHeader is the CSV header of bank_log.csv.
const bankLogHeader = "id,company_id,user_id,bank_code,filename,original_filename,status,message,detected_keywords,processed_at"

const (
	numBankLogFields = 10
	keywordSep       = "|"
)

func marshalBankLog(l common.BankLog) []string {
	return []string{
		l.ID,
		strconv.FormatInt(l.CompanyID, 10),
		strconv.FormatInt(l.UserID, 10),
		l.BankCode,
		l.Filename,
		l.OriginalFilename,
		string(l.Status),
		l.Message,
		strings.Join(l.DetectedKeywords, keywordSep),
		l.ProcessedAt.UTC().Format(time.RFC3339),
	}
}

func unmarshalBankLog(rec []string) (common.BankLog, error) {
	if len(rec) != numBankLogFields {
		return common.BankLog{}, fmt.Errorf("expected %d fields, got %d", numBankLogFields, len(rec))
	}
	companyID, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return common.BankLog{}, fmt.Errorf("parsing company_id %q: %w", rec[1], err)
	}
	userID, err := strconv.ParseInt(rec[2], 10, 64)
	if err != nil {
		return common.BankLog{}, fmt.Errorf("parsing user_id %q: %w", rec[2], err)
	}
	ts, err := time.Parse(time.RFC3339, rec[9])
	if err != nil {
		return common.BankLog{}, fmt.Errorf("parsing processed_at %q: %w", rec[9], err)
	}
	var keywords []string
	if rec[8] != "" {
		keywords = strings.Split(rec[8], keywordSep)
	}
	return common.BankLog{
		ID:               rec[0],
		CompanyID:        companyID,
		UserID:           userID,
		BankCode:         rec[3],
		Filename:         rec[4],
		OriginalFilename: rec[5],
		Status:           common.Status(rec[6]),
		Message:          rec[7],
		DetectedKeywords: keywords,
		ProcessedAt:      ts,
	}, nil
}

func (s *Store) bankLogPath() string {
	return filepath.Join(s.Root, bankLogFile)
}

// CreateBankLog appends l to bank_log.csv, writing the header first when the
// file is new.
func (s *Store) CreateBankLog(_ context.Context, l *common.BankLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return fmt.Errorf("failed to create store folder: %w", err)
	}
	path := s.bankLogPath()
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open bank log: %w", err)
	}
	defer f.Close()

	l.ID = uuid.NewString()
	if l.ProcessedAt.IsZero() {
		l.ProcessedAt = time.Now().UTC()
	}

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(bankLogHeader, ",")); err != nil {
			return fmt.Errorf("failed to write bank log header: %w", err)
		}
	}
	if err := cw.Write(marshalBankLog(*l)); err != nil {
		return fmt.Errorf("failed to write bank log: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// BankLogs returns every bank log, oldest first.
func (s *Store) BankLogs(_ context.Context) ([]common.BankLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readBankLogs()
}

func (s *Store) readBankLogs() ([]common.BankLog, error) {
	f, err := os.Open(s.bankLogPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open bank log: %w", err)
	}
	defer f.Close()
	return readBankLogs(f)
}

func readBankLogs(r io.Reader) ([]common.BankLog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numBankLogFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read bank log: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	logs := make([]common.BankLog, 0, len(records)-1)
	for i, rec := range records[1:] {
		l, err := unmarshalBankLog(rec)
		if err != nil {
			return nil, fmt.Errorf("bank log row %d: %w", i+2, err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// DeleteBankLogs rewrites bank_log.csv without the rows for filename.
func (s *Store) DeleteBankLogs(_ context.Context, filename string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.readBankLogs()
	if err != nil {
		return 0, err
	}
	kept := logs[:0]
	for _, l := range logs {
		if l.Filename != filename {
			kept = append(kept, l)
		}
	}
	removed := len(logs) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	tmp := s.bankLogPath() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("failed to rewrite bank log: %w", err)
	}
	cw := csv.NewWriter(f)
	_ = cw.Write(strings.Split(bankLogHeader, ","))
	for _, l := range kept {
		_ = cw.Write(marshalBankLog(l))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return 0, fmt.Errorf("failed to rewrite bank log: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to rewrite bank log: %w", err)
	}
	if err := os.Rename(tmp, s.bankLogPath()); err != nil {
		return 0, fmt.Errorf("failed to rewrite bank log: %w", err)
	}
	return removed, nil
}
