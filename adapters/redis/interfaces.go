package redis

import (
	"context"
)

// IAutoRenewMutex 定義了 AutoRenewMutex 的操作介面
type IAutoRenewMutex interface {
	Lock(ctx context.Context) (context.Context, error)
	Unlock() (bool, error)
	Valid() bool
}

var _ IAutoRenewMutex = (*AutoRenewMutex)(nil)
