package auth

import (
	"net/http"
	"strings"

	"church_backend/internal/handlers"
	"church_backend/internal/models"
	"church_backend/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware проверяет валидность access токена
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "NO_AUTH_HEADER",
				Message: "Требуется авторизация",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return handlers.AccessSecret, nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: "Неверный или просроченный токен",
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_TOKEN_CLAIMS",
				Message: "Невозможно прочитать claims токена",
			})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_USER_ID",
				Message: "Невозможно извлечь user_id",
			})
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)

		c.Set("userID", uint(userID))
		c.Set("userRole", role)
		c.Next()
	}
}

// PastorOnly пропускает только пасторов; вешается после AuthMiddleware.
func PastorOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userRole") != models.RolePastor {
			c.JSON(http.StatusForbidden, response.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "Операция доступна только пастору",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
