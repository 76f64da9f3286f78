package auth

import "auctionhouse/auction"

var (
	ErrUnauthorized       = &auction.Error{Kind: auction.KindUnauthorized, Message: "Unauthorized User!"}
	ErrInvalidToken       = &auction.Error{Kind: auction.KindUnauthorized, Message: "Token is Invalid or Expired"}
	ErrInvalidCredentials = &auction.Error{Kind: auction.KindUnauthorized, Message: "Invalid credentials"}
	ErrEmailNotVerified   = &auction.Error{Kind: auction.KindUnauthorized, Message: "Verify your email first"}
	ErrRefreshNotFound    = &auction.Error{Kind: auction.KindNotFound, Message: "Refresh token does not exist"}
	ErrRefreshInvalid     = &auction.Error{Kind: auction.KindUnauthorized, Message: "Refresh token is invalid or expired"}
	ErrEmailTaken         = &auction.Error{Kind: auction.KindConflict, Message: "Email already registered!"}
	ErrIncorrectEmail     = &auction.Error{Kind: auction.KindNotFound, Message: "Incorrect Email"}
	ErrIncorrectOTP       = &auction.Error{Kind: auction.KindNotFound, Message: "Incorrect Otp"}
	ErrExpiredOTP         = &auction.Error{Kind: auction.KindInvalidInput, Message: "Expired Otp"}
)
