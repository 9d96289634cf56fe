package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BankDetails holds the settlement coordinates a supplier shares with
// restaurants. Display-only; the platform never moves money itself.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BranchCode    string `json:"branch_code,omitempty"`
}

// Value implements driver.Valuer so gorm can persist the struct as jsonb.
func (b BankDetails) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner.
func (b *BankDetails) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*b = BankDetails{}
		return nil
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	default:
		return fmt.Errorf("unsupported bank details source %T", src)
	}
}
