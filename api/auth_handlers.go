package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionhouse/adapters/session"
	"auctionhouse/auth"
)

type registerRequest struct {
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8"`
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Register a new user
// (POST /api/v1/auth/register)
func (impl *ServerImpl) Register(c *gin.Context) {
	const op = "Register"
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := impl.accounts.Register(c.Request.Context(), auth.RegisterCommand{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusCreated, "Registration successful", gin.H{"email": user.Email})
}

// Verify a user's email
// (POST /api/v1/auth/verify-email)
func (impl *ServerImpl) VerifyEmail(c *gin.Context) {
	const op = "VerifyEmail"
	var req verifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	alreadyVerified, err := impl.accounts.VerifyEmail(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		handleError(c, op, err)
		return
	}
	if alreadyVerified {
		success(c, http.StatusOK, "Email already verified", nil)
		return
	}
	success(c, http.StatusOK, "Account verification successful", nil)
}

// Resend verification email
// (POST /api/v1/auth/resend-verification-email)
func (impl *ServerImpl) ResendVerificationEmail(c *gin.Context) {
	const op = "ResendVerificationEmail"
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	alreadyVerified, err := impl.accounts.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		handleError(c, op, err)
		return
	}
	if alreadyVerified {
		success(c, http.StatusOK, "Email already verified", nil)
		return
	}
	success(c, http.StatusOK, "Verification email sent", nil)
}

// Login a user
// (POST /api/v1/auth/login)
func (impl *ServerImpl) Login(c *gin.Context) {
	const op = "Login"
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	user, err := impl.accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		handleError(c, op, err)
		return
	}
	pair, err := impl.sessions.Login(ctx, user)
	if err != nil {
		handleError(c, op, err)
		return
	}
	// 合併失敗不影響登入，訪客的關注清單保留到過期為止
	if guestID := c.GetHeader(impl.guestHeader()); guestID != "" {
		if err := impl.watchlist.MergeOnLogin(ctx, guestID, auth.AuthenticatedUserOf(user)); err != nil {
			slog.Error("Fail to merge guest watchlist", slog.String("op", op), slog.String("guest", guestID), slog.Any("error", err))
		}
	}
	success(c, http.StatusCreated, "Login successful", tokensData{Access: pair.Access, Refresh: pair.Refresh})
}

// Refresh tokens
// (POST /api/v1/auth/refresh)
func (impl *ServerImpl) Refresh(c *gin.Context) {
	const op = "Refresh"
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	pair, err := impl.sessions.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusCreated, "Tokens refresh successful", tokensData{Access: pair.Access, Refresh: pair.Refresh})
}

// Logout a user
// (GET /api/v1/auth/logout)
func (impl *ServerImpl) Logout(c *gin.Context) {
	const op = "Logout"
	user, _ := session.GetUser(c)
	if err := impl.sessions.Logout(c.Request.Context(), user.ID); err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusOK, "Logout successful", nil)
}
