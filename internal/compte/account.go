// internal/compte/account.go
//
// Package compte 定義帳戶領域模型 (Account) 與其欄位規則。
// 同一個結構同時用於 client（Repository、Adapter）與參考伺服器（bank、storage），
// 因此 JSON / XML 的欄位名稱直接沿用遠端 REST 資源：id、solde、type、dateCreation。
package compte

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout 為 dateCreation 的格式 (YYYY-MM-DD)。
const DateLayout = "2006-01-02"

func init() {
	// 伺服器端以數字表示 solde（例如 1500.0），不可輸出為字串。
	decimal.MarshalJSONWithoutQuotes = true
}

// Type 為帳戶類型，只允許 COURANT（支票 / checking）與 EPARGNE（儲蓄 / savings）。
type Type string

const (
	Courant Type = "COURANT"
	Epargne Type = "EPARGNE"
)

// Valid 回報 t 是否屬於封閉集合 {COURANT, EPARGNE}。
func (t Type) Valid() bool {
	return t == Courant || t == Epargne
}

// ParseType 不分大小寫解析帳戶類型。
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown account type %q", ErrInvalid, s)
	}
	return t, nil
}

// Account represents a bank account as exposed by /comptes.
// ID 為 nil 表示尚未持久化；建立成功後由伺服器指派。
type Account struct {
	XMLName     xml.Name        `json:"-" xml:"compte"`
	ID          *int64          `json:"id,omitempty" xml:"id,omitempty"`
	Balance     decimal.Decimal `json:"solde" xml:"solde"`
	Type        Type            `json:"type" xml:"type"`
	CreatedDate string          `json:"dateCreation" xml:"dateCreation"`
}

// New 建立一個尚未持久化的帳戶，dateCreation 以本地時鐘蓋章。
func New(balance decimal.Decimal, t Type, now time.Time) Account {
	return Account{Balance: balance, Type: t, CreatedDate: Today(now)}
}

// IDPtr 回傳指向 id 的指標，方便建構已持久化的帳戶。
func IDPtr(id int64) *int64 { return &id }

// HasID 回報帳戶是否已有伺服器指派的 id。
func (a Account) HasID() bool { return a.ID != nil }

// IDValue 回傳 id；尚未持久化時回傳 0。
func (a Account) IDValue() int64 {
	if a.ID == nil {
		return 0
	}
	return *a.ID
}

// IDString 供畫面與日誌顯示使用。
func (a Account) IDString() string {
	if a.ID == nil {
		return ""
	}
	return strconv.FormatInt(*a.ID, 10)
}

// WithID 回傳帶有指定 id 的拷貝，不修改原值。
func (a Account) WithID(id int64) Account {
	a.ID = IDPtr(id)
	return a
}

// Validate 檢查類型與日期格式；日期可為空（由伺服器補上）。
func (a Account) Validate() error {
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", ErrInvalid, a.Type)
	}
	if a.CreatedDate != "" {
		if _, err := time.Parse(DateLayout, a.CreatedDate); err != nil {
			return fmt.Errorf("%w: dateCreation %q is not YYYY-MM-DD", ErrInvalid, a.CreatedDate)
		}
	}
	return nil
}

// Equal 以語意比較兩個帳戶：solde 以數值比較（200 與 200.0 相等）。
func (a Account) Equal(b Account) bool {
	if a.HasID() != b.HasID() || a.IDValue() != b.IDValue() {
		return false
	}
	return a.Balance.Equal(b.Balance) && a.Type == b.Type && a.CreatedDate == b.CreatedDate
}

// Today 以 YYYY-MM-DD 格式化本地日期。
func Today(now time.Time) string {
	return now.Local().Format(DateLayout)
}

// ParseBalance 解析表單輸入的餘額；空字串或非數字皆視為 ErrInvalid。
// 同時接受小數點與逗號 (1500,50)。
func ParseBalance(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: balance is required", ErrInvalid)
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: balance %q is not a number", ErrInvalid, input)
	}
	return d, nil
}
