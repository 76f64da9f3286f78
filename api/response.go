package api

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"auctionhouse/auction"
)

// Response 是所有 API 回應共用的外層格式
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{Status: "success", Message: message, Data: data})
}

func failure(c *gin.Context, code int, message string, data any) {
	c.AbortWithStatusJSON(code, Response{Status: "failure", Message: message, Data: data})
}

// statusOf 將錯誤分類轉為 HTTP 狀態碼
func statusOf(kind auction.Kind) int {
	switch kind {
	case auction.KindNotFound:
		return http.StatusNotFound
	case auction.KindForbidden:
		return http.StatusForbidden
	case auction.KindClosed:
		return http.StatusGone
	case auction.KindInvalidAmount:
		return http.StatusBadRequest
	case auction.KindInvalidInput:
		return http.StatusUnprocessableEntity
	case auction.KindConflict:
		return http.StatusConflict
	case auction.KindUnauthorized:
		return http.StatusUnauthorized
	case auction.KindRateLimited:
		return http.StatusTooManyRequests
	case auction.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError 回應錯誤，非預期的錯誤只記錄在日誌中，不回傳細節給客戶端
func handleError(c *gin.Context, op string, err error) {
	kind := auction.KindOf(err)
	switch kind {
	case auction.KindInternal:
		slog.Error("Unexpected error", slog.String("op", op), slog.String("path", c.FullPath()), slog.Any("error", err))
		failure(c, http.StatusInternalServerError, "Internal server error", nil)
	case auction.KindTransient:
		slog.Warn("Request timed out", slog.String("op", op), slog.String("path", c.FullPath()), slog.Any("error", err))
		failure(c, http.StatusServiceUnavailable, "Service temporarily unavailable, try again later", nil)
	default:
		failure(c, statusOf(kind), auction.MessageOf(err), nil)
	}
}

// bindJSON 解析請求內容，格式錯誤時以 422 回應各欄位的錯誤
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[jsonFieldName(fe)] = validationMessage(fe)
			}
			failure(c, http.StatusUnprocessableEntity, "Invalid entry", fields)
			return false
		}
		failure(c, http.StatusUnprocessableEntity, "Invalid entry", map[string]string{"body": err.Error()})
		return false
	}
	return true
}

func jsonFieldName(fe validator.FieldError) string {
	if fe.Field() == "" {
		return fe.StructField()
	}
	return fe.Field()
}

// 欄位錯誤使用 json tag 的名稱，與請求內容一致
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return "ensure this value has at least " + fe.Param() + " characters"
	case "max":
		return "ensure this value has at most " + fe.Param() + " characters"
	case "len":
		return "ensure this value has " + fe.Param() + " characters"
	case "numeric":
		return "value is not a valid number"
	default:
		return "invalid value"
	}
}
