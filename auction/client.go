package auction

import (
	"github.com/google/uuid"
)

// Client 代表目前請求的操作者，只會是 AuthenticatedUser、GuestUser、Anonymous 三者之一
type Client interface {
	isClient()
}

// AuthenticatedUser 是持有有效 access token 的使用者
type AuthenticatedUser struct {
	ID              uuid.UUID
	Email           string
	IsEmailVerified bool
}

// GuestUser 是帶著已存在訪客 ID 的匿名訪客
type GuestUser struct {
	ID string
}

// Anonymous 是沒有任何可識別身分的訪客
// Session 是客戶端提供但伺服器不認得的識別字串，只在本次請求有意義
type Anonymous struct {
	Session string
}

func (AuthenticatedUser) isClient() {}
func (GuestUser) isClient()         {}
func (Anonymous) isClient()         {}

// Owner 是關注清單的擁有者，UserID 與 SessionKey 只會有一個有值
type Owner struct {
	UserID     *uuid.UUID
	SessionKey string
}

func UserOwner(id uuid.UUID) Owner {
	return Owner{UserID: &id}
}

func GuestOwner(id string) Owner {
	return Owner{SessionKey: id}
}

func (o Owner) String() string {
	if o.UserID != nil {
		return "user:" + o.UserID.String()
	}
	return "guest:" + o.SessionKey
}

// OwnerOf 取得 client 對應的關注清單擁有者；Anonymous 沒有擁有者
func OwnerOf(c Client) (Owner, bool) {
	switch v := c.(type) {
	case AuthenticatedUser:
		return UserOwner(v.ID), true
	case GuestUser:
		return GuestOwner(v.ID), true
	case Anonymous:
		return Owner{}, false
	default:
		return Owner{}, false
	}
}
