package handlers

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"church_backend/internal/models"
	"church_backend/internal/notify"
	"church_backend/internal/response"
	"church_backend/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	otpTTL          = 5 * time.Minute
	otpRateWindow   = 10 * time.Minute
	otpMaxPerWindow = 5
)

type OTPRequest struct {
	// Телефон или email — должен быть указан ровно один
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type OTPVerifyRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
	Code  string `json:"code" binding:"required"`
}

func otpDestination(phone, email string) (string, bool) {
	if (phone == "") == (email == "") {
		return "", false
	}
	if phone != "" {
		return phone, true
	}
	return email, true
}

// @Summary		Запрос OTP-кода
// @Description	Генерирует одноразовый код и отправляет его на телефон или email. Код живёт 5 минут, не больше 5 запросов за 10 минут
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			request	body		OTPRequest					true	"Телефон или email"
// @Success		200		{object}	response.SuccessResponse	"Код отправлен"
// @Failure		400		{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		429		{object}	response.ErrorResponse		"Превышен лимит запросов (OTP_RATE_LIMIT)"
// @Failure		500		{object}	response.ErrorResponse		"Ошибка сервера (OTP_STORE_ERROR, OTP_SEND_ERROR)"
// @Router			/auth/otp/request [post]
func RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	dest, ok := otpDestination(req.Phone, req.Email)
	if !ok {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Укажите телефон или email (ровно одно из двух)",
		})
		return
	}

	ctx := c.Request.Context()
	rateKey := "otp_rl:" + dest
	attempts, err := storage.RedisClient.Incr(ctx, rateKey).Result()
	if err == nil && attempts == 1 {
		storage.RedisClient.Expire(ctx, rateKey, otpRateWindow)
	}
	if err == nil && attempts > otpMaxPerWindow {
		c.JSON(http.StatusTooManyRequests, response.ErrorResponse{
			Code:    "OTP_RATE_LIMIT",
			Message: "Слишком много запросов кода, попробуйте позже",
		})
		return
	}

	code := fmt.Sprintf("%06d", rand.Intn(1000000))
	if err := storage.RedisClient.Set(ctx, "otp:"+dest, code, otpTTL).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "OTP_STORE_ERROR",
			Message: "Ошибка сохранения кода",
			Details: err.Error(),
		})
		return
	}

	if err := notify.Default.SendOTP(ctx, dest, code); err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "OTP_SEND_ERROR",
			Message: "Ошибка отправки кода",
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Код отправлен"})
}

// @Summary		Вход по OTP-коду
// @Description	Проверяет код и выдаёт пару токенов; для нового телефона/email создаётся пользователь без пароля
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			request	body		OTPVerifyRequest		true	"Телефон/email и код"
// @Success		200		{object}	response.TokenResponse	"Успешная авторизация"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		401		{object}	response.ErrorResponse	"Неверный или просроченный код (INVALID_OTP)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR, TOKEN_GENERATION_ERROR)"
// @Router			/auth/otp/verify [post]
func VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	dest, ok := otpDestination(req.Phone, req.Email)
	if !ok {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Укажите телефон или email (ровно одно из двух)",
		})
		return
	}

	ctx := c.Request.Context()
	stored, err := storage.RedisClient.Get(ctx, "otp:"+dest).Result()
	if err != nil || stored == "" || stored != req.Code {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:    "INVALID_OTP",
			Message: "Неверный или просроченный код",
		})
		return
	}
	// Код одноразовый
	storage.RedisClient.Del(ctx, "otp:"+dest)

	var user models.User
	query := storage.DB.Where("is_active = true")
	if req.Phone != "" {
		query = query.Where("phone = ?", req.Phone)
	} else {
		query = query.Where("email = ?", req.Email)
	}
	if err := query.First(&user).Error; err != nil {
		// Первый вход по этому телефону/email — создаём пользователя без пароля
		user = models.User{
			Name:     dest,
			Role:     models.RoleMember,
			Username: dest,
			Phone:    req.Phone,
			Email:    req.Email,
			IsActive: true,
		}
		if err := storage.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Message: "Ошибка при создании пользователя",
			})
			return
		}
	}

	issueTokenPair(c, &user)
}
