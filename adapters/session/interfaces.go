//go:generate mockgen -package=session -destination=mock.go -source=interfaces.go

package session

import (
	"context"

	"auctionhouse/auction"
	"auctionhouse/auth"
	"auctionhouse/models"
)

type IResolver interface {
	ResolveUser(ctx context.Context, creds auth.Credentials) (models.User, error)
	ResolveClient(ctx context.Context, creds auth.Credentials) auction.Client
}

var _ IResolver = (*auth.Resolver)(nil)
