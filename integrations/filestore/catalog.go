// Package filestore keeps the bank catalogue in the YAML config file and
// persists statements and bank logs on the local filesystem.
package filestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/aqlanhadi/mt940kit/extractor/common"
	"github.com/spf13/viper"
)

// BankEntry is one bank of the `banks` config key, field mappings included.
type BankEntry struct {
	CompanyID  int64              `mapstructure:"company_id"`
	BankCode   string             `mapstructure:"bank_code"`
	BankName   string             `mapstructure:"bank_name"`
	Keywords   []string           `mapstructure:"keywords"`
	ScanRanges []common.ScanRange `mapstructure:"scan_ranges"`
	// IsActive defaults to true when the key is absent.
	IsActive *bool          `mapstructure:"is_active"`
	Mappings []MappingEntry `mapstructure:"mappings"`
}

type MappingEntry struct {
	IdentifyInfo string   `mapstructure:"identify_info"`
	Keywords     []string `mapstructure:"keywords"`
	ColKeyword   string   `mapstructure:"col_keyword"`
	ColValue     string   `mapstructure:"col_value"`
	RowStart     int      `mapstructure:"row_start"`
	RowEnd       int      `mapstructure:"row_end"`
	CellFormat   string   `mapstructure:"cell_format"`
}

// Catalog serves bank configs from memory. Entries with company 0 are
// shared by every company.
type Catalog struct {
	banks    []common.BankIdentityConfig
	mappings []common.FieldMappingConfig
}

func NewCatalog(entries []BankEntry) *Catalog {
	c := &Catalog{}
	for _, e := range entries {
		active := true
		if e.IsActive != nil {
			active = *e.IsActive
		}
		code := strings.ToUpper(strings.TrimSpace(e.BankCode))
		c.banks = append(c.banks, common.BankIdentityConfig{
			CompanyID:  e.CompanyID,
			BankCode:   code,
			BankName:   e.BankName,
			Keywords:   e.Keywords,
			ScanRanges: e.ScanRanges,
			IsActive:   active,
		})
		for _, m := range e.Mappings {
			c.mappings = append(c.mappings, common.FieldMappingConfig{
				CompanyID:    e.CompanyID,
				BankCode:     code,
				IdentifyInfo: m.IdentifyInfo,
				Keywords:     m.Keywords,
				ColKeyword:   m.ColKeyword,
				ColValue:     m.ColValue,
				RowStart:     m.RowStart,
				RowEnd:       m.RowEnd,
				CellFormat:   m.CellFormat,
			})
		}
	}
	return c
}

// LoadCatalog decodes the bank list stored under key.
func LoadCatalog(v *viper.Viper, key string) (*Catalog, error) {
	var entries []BankEntry
	if err := v.UnmarshalKey(key, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return NewCatalog(entries), nil
}

// All returns every bank and mapping regardless of company.
func (c *Catalog) All() ([]common.BankIdentityConfig, []common.FieldMappingConfig) {
	return c.banks, c.mappings
}

func (c *Catalog) BankConfigs(_ context.Context, companyID int64) ([]common.BankIdentityConfig, error) {
	var out []common.BankIdentityConfig
	for _, b := range c.banks {
		if b.CompanyID == 0 || b.CompanyID == companyID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (c *Catalog) FieldMappings(_ context.Context, companyID int64, bankCode string) ([]common.FieldMappingConfig, error) {
	var out []common.FieldMappingConfig
	for _, m := range c.mappings {
		if (m.CompanyID == 0 || m.CompanyID == companyID) && strings.EqualFold(m.BankCode, bankCode) {
			out = append(out, m)
		}
	}
	return out, nil
}
