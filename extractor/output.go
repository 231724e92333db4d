package extractor

import "github.com/aqlanhadi/mt940kit/extractor/common"

// CreateFinalOutput shapes a statement for JSON output. detailsOnly returns
// just the transactions; headerOnly drops them.
func CreateFinalOutput(stmt common.Statement, detailsOnly, headerOnly bool) any {
	if detailsOnly {
		if stmt.Details == nil {
			return []common.Transaction{}
		}
		return stmt.Details
	}

	out := map[string]any{
		"id":                stmt.ID,
		"bank_code":         stmt.BankCode,
		"original_filename": stmt.OriginalFilename,
		"status":            stmt.Status,
		"message":           stmt.Message,
		"accountno":         stmt.AccountNo,
		"currency":          stmt.Currency,
		"opening_balance":   stmt.OpeningBalance,
		"closing_balance":   stmt.ClosingBalance,
		"mt940_filename":    stmt.MT940Filename,
		"processed_at":      stmt.ProcessedAt,
	}
	if !headerOnly {
		out["details"] = stmt.Details
	}
	return out
}
