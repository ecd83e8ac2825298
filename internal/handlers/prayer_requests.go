package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"church_backend/internal/models"
	"church_backend/internal/notify"
	"church_backend/internal/response"
	"church_backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type PrayerRequestCreate struct {
	RequestText string `json:"request_text" binding:"required"`
	RequestType string `json:"request_type"` // public (по умолчанию) или private
}

type PrayerRequestItem struct {
	ID             uint       `json:"id"`
	MemberName     string     `json:"member_name"`
	MemberUsername string     `json:"member_username,omitempty"`
	RequestText    string     `json:"request_text"`
	RequestType    string     `json:"request_type"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	PrayedAt       *time.Time `json:"prayed_at,omitempty"`
}

// SubmitPrayerRequestHandler принимает молитвенную просьбу участника
// @Summary		Отправка молитвенной просьбы
// @Description	Имя и username участника фиксируются на момент отправки; пастор всегда видит автора
// @Tags			prayer-requests
// @Accept			json
// @Produce		json
// @Param			request	body		PrayerRequestCreate	true	"Текст и тип просьбы"
// @Security		BearerAuth
// @Success		201	{object}	PrayerRequestItem		"Просьба принята"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/prayer-requests [post]
func SubmitPrayerRequestHandler(c *gin.Context) {
	var req PrayerRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}
	if req.RequestType == "" {
		req.RequestType = models.RequestTypePublic
	}
	if req.RequestType != models.RequestTypePublic && req.RequestType != models.RequestTypePrivate {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Тип просьбы должен быть public или private",
		})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, c.GetUint("userID")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки пользователя",
		})
		return
	}

	request := models.PrayerRequest{
		UserID:         user.ID,
		MemberName:     user.Name,
		MemberUsername: user.Username,
		RequestText:    req.RequestText,
		RequestType:    req.RequestType,
		Status:         models.RequestStatusSubmitted,
	}
	if err := storage.DB.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка сохранения просьбы",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, toPrayerRequestItem(request, false))
}

// toPrayerRequestItem собирает ответ; masked скрывает автора приватной просьбы.
func toPrayerRequestItem(r models.PrayerRequest, masked bool) PrayerRequestItem {
	item := PrayerRequestItem{
		ID:             r.ID,
		MemberName:     r.MemberName,
		MemberUsername: r.MemberUsername,
		RequestText:    r.RequestText,
		RequestType:    r.RequestType,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		PrayedAt:       r.PrayedAt,
	}
	if masked && r.RequestType == models.RequestTypePrivate {
		item.MemberName = "Аноним"
		item.MemberUsername = ""
	}
	return item
}

// ListPrayerRequestsHandler возвращает молитвенные просьбы
// @Summary		Список молитвенных просьб
// @Description	Пастор видит все просьбы с авторами; участник — неархивные просьбы, причём авторы чужих приватных просьб скрыты
// @Tags			prayer-requests
// @Accept			json
// @Produce		json
// @Param			status	query		string	false	"Фильтр по статусу: submitted, prayed, archived (только для пастора)"
// @Security		BearerAuth
// @Success		200	{array}		PrayerRequestItem		"Просьбы"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/prayer-requests [get]
func ListPrayerRequestsHandler(c *gin.Context) {
	userID := c.GetUint("userID")
	isPastor := c.GetString("userRole") == models.RolePastor

	query := storage.DB.Order("created_at DESC")
	if isPastor {
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
	} else {
		query = query.Where("status <> ?", models.RequestStatusArchived)
	}

	var requests []models.PrayerRequest
	if err := query.Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки просьб",
			Details: err.Error(),
		})
		return
	}

	items := make([]PrayerRequestItem, 0, len(requests))
	for _, r := range requests {
		// Для пастора и для собственных просьб автор не скрывается
		masked := !isPastor && r.UserID != userID
		items = append(items, toPrayerRequestItem(r, masked))
	}
	c.JSON(http.StatusOK, items)
}

func prayerRequestIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_REQUEST_ID",
			Message: "Неверный идентификатор просьбы",
		})
		return 0, false
	}
	return uint(id), true
}

// MarkPrayerRequestPrayedHandler отмечает просьбу как отмоленную
// @Summary		Отметка "помолились"
// @Description	Ставит статус prayed и уведомляет автора просьбы
// @Tags			prayer-requests
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"ID просьбы"
// @Security		BearerAuth
// @Success		200	{object}	PrayerRequestItem		"Обновлённая просьба"
// @Failure		404	{object}	response.ErrorResponse	"Просьба не найдена (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/prayer-requests/{id}/prayed [put]
func MarkPrayerRequestPrayedHandler(c *gin.Context) {
	id, ok := prayerRequestIDParam(c)
	if !ok {
		return
	}

	var request models.PrayerRequest
	if err := storage.DB.First(&request, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Просьба не найдена",
		})
		return
	}

	now := time.Now()
	request.Status = models.RequestStatusPrayed
	request.PrayedAt = &now
	if err := storage.DB.Save(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка обновления просьбы",
			Details: err.Error(),
		})
		return
	}

	// Доставка не критична: просьба уже обновлена
	if err := notify.Default.Notify(c.Request.Context(), request.UserID,
		"Ваша просьба отмолена", "Пастор помолился о вашей просьбе"); err != nil {
		log.Println("Ошибка уведомления автора просьбы:", err)
	}

	c.JSON(http.StatusOK, toPrayerRequestItem(request, false))
}

// ArchivePrayerRequestHandler архивирует просьбу
// @Summary		Архивирование просьбы
// @Tags			prayer-requests
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"ID просьбы"
// @Security		BearerAuth
// @Success		200	{object}	PrayerRequestItem		"Обновлённая просьба"
// @Failure		404	{object}	response.ErrorResponse	"Просьба не найдена (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/prayer-requests/{id}/archive [put]
func ArchivePrayerRequestHandler(c *gin.Context) {
	id, ok := prayerRequestIDParam(c)
	if !ok {
		return
	}

	var request models.PrayerRequest
	if err := storage.DB.First(&request, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Просьба не найдена",
		})
		return
	}

	now := time.Now()
	request.Status = models.RequestStatusArchived
	request.ArchivedAt = &now
	if err := storage.DB.Save(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка архивирования просьбы",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, toPrayerRequestItem(request, false))
}
