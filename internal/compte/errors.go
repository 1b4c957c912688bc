// internal/compte/errors.go
//
// 領域錯誤：由 store 與 server 共用，server 會將其轉換為 HTTP 狀態碼。

package compte

import "errors"

var (
	// ErrNotFound 代表帳戶不存在。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrNotFound = errors.New("account not found")

	// ErrInvalid 代表帳戶內容非法（類型、日期或餘額格式錯誤）。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrInvalid = errors.New("invalid account")
)
