// internal/repository/errors.go
//
// Repository 邊界的失敗分類。所有失敗都包成 *Error 回傳，不會越過邊界 panic。

package repository

import (
	"errors"
	"fmt"
)

// Kind 為失敗類別。
type Kind int

const (
	// NetworkFailure 傳輸層失敗：無法連線、逾時、連線重設或已取消。
	NetworkFailure Kind = iota + 1
	// ServerError 非 2xx 且無 id 上下文，或回應主體無法解碼。
	ServerError
	// NotFound 更新或刪除時伺服器回 404。
	NotFound
	// ValidationError 送出前的檢查失敗，或伺服器回 400/422。
	ValidationError
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case ServerError:
		return "server error"
	case NotFound:
		return "not found"
	case ValidationError:
		return "validation error"
	}
	return "unknown"
}

// Error 為 Repository 回傳的唯一錯誤型別。
type Error struct {
	Kind   Kind
	Op     string // list, create, update, delete
	Status int    // HTTP 狀態碼；傳輸失敗或送出前失敗時為 0
	Cause  error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %v", e.Op, e.Kind, e.Status, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is 讓 errors.Is(err, ErrNotFound) 之類的比對以 Kind 判斷。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Status == 0 && t.Cause == nil && t.Kind == e.Kind
}

// 供 errors.Is 使用的類別哨兵。
var (
	ErrNetwork    = &Error{Kind: NetworkFailure}
	ErrServer     = &Error{Kind: ServerError}
	ErrNotFound   = &Error{Kind: NotFound}
	ErrValidation = &Error{Kind: ValidationError}
)

// KindOf 回傳 err 的失敗類別；非 *Error 時回傳 0。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, op string, status int, cause error) *Error {
	return &Error{Kind: kind, Op: op, Status: status, Cause: cause}
}
