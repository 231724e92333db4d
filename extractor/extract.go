// Package extractor runs uploaded statement files through detection,
// extraction, validation and MT940 encoding, and persists the outcome.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/aqlanhadi/mt940kit/extractor/detect"
	"github.com/aqlanhadi/mt940kit/extractor/fields"
	"github.com/aqlanhadi/mt940kit/extractor/mt940"
	"github.com/aqlanhadi/mt940kit/extractor/sheet"
	"github.com/aqlanhadi/mt940kit/extractor/validate"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

const (
	msgParsed         = "Parsed statement"
	msgNoBank         = "No matching bank"
	msgInvalid        = "Statement is invalid"
	msgAccountUpdated = "MT940 generated after account update"
)

// ConfigSource supplies the bank catalogue of a company.
type ConfigSource interface {
	BankConfigs(ctx context.Context, companyID int64) ([]common.BankIdentityConfig, error)
	FieldMappings(ctx context.Context, companyID int64, bankCode string) ([]common.FieldMappingConfig, error)
}

// Store persists bank logs and statements. Create methods assign the ID.
type Store interface {
	CreateBankLog(ctx context.Context, l *common.BankLog) error
	DeleteBankLogs(ctx context.Context, filename string) (int, error)
	CreateStatement(ctx context.Context, s *common.Statement) error
	UpdateStatement(ctx context.Context, s common.Statement) error
	GetStatement(ctx context.Context, id string) (common.Statement, error)
	DeleteStatement(ctx context.Context, id string) error
}

// Upload is one file handed to the pipeline.
type Upload struct {
	Path             string `json:"path"`
	Ext              string `json:"ext,omitempty"`
	OriginalFilename string `json:"original_filename"`
	CompanyID        int64  `json:"company_id"`
	UserID           int64  `json:"user_id"`
}

// Result is the terminal state of one Process call.
type Result struct {
	Status      common.Status `json:"status"`
	Message     string        `json:"message"`
	BankCode    string        `json:"bank_code,omitempty"`
	StatementID string        `json:"statement_log_id,omitempty"`
	MT940       string        `json:"mt940,omitempty"`
	Errors      []string      `json:"errors,omitempty"`
	Keywords    []string      `json:"detected_keywords,omitempty"`
}

type Options struct {
	// UploadFolder roots the mt940/ output folder. Uploads inside it are
	// removed when their statement is rejected.
	UploadFolder string
	Tolerance    decimal.Decimal
	Sheet        sheet.Options
	Now          func() time.Time
}

func DefaultOptions() Options {
	return Options{
		UploadFolder: "uploads",
		Tolerance:    validate.DefaultTolerance,
		Sheet:        sheet.DefaultOptions(),
		Now:          time.Now,
	}
}

type Pipeline struct {
	configs ConfigSource
	store   Store
	opts    Options
}

func New(configs ConfigSource, store Store, opts Options) *Pipeline {
	def := DefaultOptions()
	if opts.UploadFolder == "" {
		opts.UploadFolder = def.UploadFolder
	}
	if !opts.Tolerance.IsPositive() {
		opts.Tolerance = def.Tolerance
	}
	if opts.Sheet.CSVEncoding == "" {
		opts.Sheet = def.Sheet
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &Pipeline{configs: configs, store: store, opts: opts}
}

// Process takes one upload from load to MT940. It never returns an error:
// every failure, panics included, ends up in the Result.
func (p *Pipeline) Process(ctx context.Context, up Upload) (res Result) {
	if up.Ext == "" {
		up.Ext = filepath.Ext(up.Path)
	}
	if up.OriginalFilename == "" {
		up.OriginalFilename = filepath.Base(up.Path)
	}
	logger := log.WithFields(logrus.Fields{"file": up.OriginalFilename, "company_id": up.CompanyID})

	bankCode := ""
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Pipeline panicked")
			res = p.fail(ctx, up, bankCode, fmt.Errorf("unexpected error: %v", r))
		}
	}()

	banks, err := p.configs.BankConfigs(ctx, up.CompanyID)
	if err != nil {
		return p.fail(ctx, up, "", fmt.Errorf("failed to load bank configs: %w", err))
	}

	wb, err := sheet.Load(up.Path, up.Ext, p.opts.Sheet)
	if err != nil {
		p.logDetection(ctx, up, "", common.StatusFailed, err.Error(), nil)
		return p.fail(ctx, up, "", err)
	}

	match, ok := detect.Detect(wb, banks)
	if !ok {
		logger.Info("No bank matched")
		p.logDetection(ctx, up, "", common.StatusUnknown, msgNoBank, nil)
		p.discardUpload(up.Path)
		return Result{Status: common.StatusUnknown, Message: msgNoBank}
	}
	bankCode = match.Config.BankCode
	logger = logger.WithField("bank_code", bankCode)
	for _, d := range match.Data {
		logger.WithFields(logrus.Fields{"range": d.Range.Range, "sheet": d.Sheet}).Debugf("Scan range text: %s", d.Text)
	}
	p.logDetection(ctx, up, bankCode, common.StatusSuccess,
		fmt.Sprintf("Detected %s in range %s", bankCode, match.Range.Range), []string{match.Keyword})

	mappings, err := p.configs.FieldMappings(ctx, up.CompanyID, bankCode)
	if err != nil {
		return p.fail(ctx, up, bankCode, fmt.Errorf("failed to load field mappings: %w", err))
	}
	if len(mappings) == 0 {
		return p.fail(ctx, up, bankCode, fmt.Errorf("%w for bank %s", common.ErrNoMappings, bankCode))
	}

	ex := fields.Extract(wb, mappings)
	stmt := common.Statement{
		CompanyID:        up.CompanyID,
		UserID:           up.UserID,
		BankCode:         bankCode,
		Filename:         up.Path,
		OriginalFilename: up.OriginalFilename,
		Details:          ex.Details,
	}
	stmt.ApplyHeader(ex.Header)

	check := validate.Statement(stmt)
	if !check.Valid() && !check.OnlyMissingAccount() {
		logger.WithField("errors", check.Errors()).Warn("Statement failed validation")
		p.reject(ctx, up)
		return Result{Status: common.StatusInvalid, Message: msgInvalid, BankCode: bankCode, Errors: check.Errors()}
	}

	if _, err := validate.CheckBalance(stmt, p.opts.Tolerance); err != nil {
		logger.WithError(err).Warn("Statement failed balance check")
		p.reject(ctx, up)
		return Result{Status: common.StatusInvalid, Message: err.Error(), BankCode: bankCode, Errors: []string{err.Error()}}
	}

	now := p.opts.Now()
	stmt.Status = common.StatusSuccess
	stmt.Message = msgParsed
	stmt.ProcessedAt = now.UTC()
	if err := p.store.CreateStatement(ctx, &stmt); err != nil {
		return p.fail(ctx, up, bankCode, fmt.Errorf("failed to save statement: %w", err))
	}
	logger = logger.WithField("statement_id", stmt.ID)

	rel, err := p.writeMT940(stmt, now)
	if err != nil {
		stmt.Status = common.StatusFailed
		stmt.Message = err.Error()
		if uerr := p.store.UpdateStatement(ctx, stmt); uerr != nil {
			logger.WithError(uerr).Error("Failed to mark statement as failed")
		}
		return Result{Status: common.StatusFailed, Message: err.Error(), BankCode: bankCode, StatementID: stmt.ID}
	}
	stmt.MT940Filename = rel
	if err := p.store.UpdateStatement(ctx, stmt); err != nil {
		return Result{Status: common.StatusFailed, Message: fmt.Sprintf("failed to save mt940 path: %v", err), BankCode: bankCode, StatementID: stmt.ID}
	}

	logger.WithField("transactions", len(stmt.Details)).Info("Statement parsed")
	res = Result{
		Status:      common.StatusSuccess,
		Message:     msgParsed,
		BankCode:    bankCode,
		StatementID: stmt.ID,
		MT940:       rel,
		Keywords:    []string{match.Keyword},
	}
	if !check.Valid() {
		res.Errors = check.Errors()
	}
	return res
}

func (p *Pipeline) writeMT940(stmt common.Statement, now time.Time) (string, error) {
	text := mt940.Build(stmt, now)
	return mt940.WriteFile(p.opts.UploadFolder, stmt.OriginalFilename, stmt.BankCode, text, now)
}

// fail records a FAILED statement carrying err's text.
func (p *Pipeline) fail(ctx context.Context, up Upload, bankCode string, err error) Result {
	log.WithError(err).WithField("file", up.OriginalFilename).Error("Statement processing failed")
	stmt := common.Statement{
		CompanyID:        up.CompanyID,
		UserID:           up.UserID,
		BankCode:         bankCode,
		Filename:         up.Path,
		OriginalFilename: up.OriginalFilename,
		Status:           common.StatusFailed,
		Message:          err.Error(),
		ProcessedAt:      p.opts.Now().UTC(),
	}
	res := Result{Status: common.StatusFailed, Message: err.Error(), BankCode: bankCode}
	if serr := p.store.CreateStatement(ctx, &stmt); serr != nil {
		log.WithError(serr).Error("Failed to record failed statement")
		return res
	}
	res.StatementID = stmt.ID
	return res
}

func (p *Pipeline) logDetection(ctx context.Context, up Upload, bankCode string, status common.Status, msg string, keywords []string) {
	entry := common.BankLog{
		CompanyID:        up.CompanyID,
		UserID:           up.UserID,
		BankCode:         bankCode,
		Filename:         up.Path,
		OriginalFilename: up.OriginalFilename,
		Status:           status,
		Message:          msg,
		DetectedKeywords: keywords,
		ProcessedAt:      p.opts.Now().UTC(),
	}
	if err := p.store.CreateBankLog(ctx, &entry); err != nil {
		log.WithError(err).WithField("file", up.OriginalFilename).Error("Failed to write bank log")
	}
}

// reject removes everything a rejected upload left behind.
func (p *Pipeline) reject(ctx context.Context, up Upload) {
	p.discardUpload(up.Path)
	n, err := p.store.DeleteBankLogs(ctx, up.Path)
	if err != nil {
		log.WithError(err).WithField("file", up.OriginalFilename).Error("Failed to delete bank logs")
		return
	}
	log.WithField("file", up.OriginalFilename).Debugf("Deleted %d bank log(s)", n)
}

// discardUpload deletes path when it lives under the upload folder. Files
// elsewhere belong to the caller and are left alone.
func (p *Pipeline) discardUpload(path string) {
	if !within(p.opts.UploadFolder, path) {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).WithField("file", path).Warn("Failed to remove upload")
	}
}

func within(root, path string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
