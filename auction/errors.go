package auction

import (
	"context"
	"errors"
	"fmt"
)

// Kind 是錯誤的分類，API 層依照分類決定回應的狀態碼
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindClosed
	KindInvalidAmount
	KindConflict
	KindInvalidInput
	KindUnauthorized
	KindRateLimited
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindClosed:
		return "closed"
	case KindInvalidAmount:
		return "invalid amount"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid input"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate limited"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// Error 是核心邏輯回傳的業務錯誤，Message 會直接顯示給使用者
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is 讓 errors.Is 可以用不帶訊息的哨兵錯誤比對分類
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrForbidden     = &Error{Kind: KindForbidden}
	ErrClosed        = &Error{Kind: KindClosed}
	ErrInvalidAmount = &Error{Kind: KindInvalidAmount}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrInvalidInput  = &Error{Kind: KindInvalidInput}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrRateLimited   = &Error{Kind: KindRateLimited}
	ErrTransient     = &Error{Kind: KindTransient}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf 建立 NotFound 錯誤，供 adapter 轉換儲存層的錯誤
func NotFoundf(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

// Conflictf 建立 Conflict 錯誤，供 adapter 轉換唯一鍵衝突
func Conflictf(format string, args ...any) error {
	return newError(KindConflict, format, args...)
}

// KindOf 取得錯誤的分類；逾時與取消視為可重試的暫時性錯誤
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}
	return KindInternal
}

// MessageOf 取得可以顯示給使用者的錯誤訊息
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return KindOf(err).String()
}
