package handlers

import (
	"net/http"
	"strconv"
	"time"

	"church_backend/internal/models"
	"church_backend/internal/response"
	"church_backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// JoinOccurrenceHandler тихо фиксирует участие по нажатию "JOIN NOW"
// @Summary		Отметка участия
// @Description	Записывает участие пользователя во вхождении; повторное нажатие не создаёт дубликата
// @Tags			engagement
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"ID вхождения"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Участие зафиксировано"
// @Failure		400	{object}	response.ErrorResponse		"Неверный идентификатор (INVALID_OCCURRENCE_ID)"
// @Failure		404	{object}	response.ErrorResponse		"Вхождение не найдено (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/occurrences/{id}/join [post]
func JoinOccurrenceHandler(c *gin.Context) {
	id, ok := occurrenceIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	var occ models.Occurrence
	if err := storage.DB.First(&occ, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Вхождение не найдено",
		})
		return
	}

	var existing models.Attendance
	if err := storage.DB.Where("user_id = ? AND occurrence_id = ?", userID, id).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, response.SuccessResponse{Message: "Участие уже зафиксировано"})
		return
	}

	attendance := models.Attendance{
		UserID:       userID,
		OccurrenceID: id,
		JoinedAt:     time.Now(),
	}
	if err := storage.DB.Create(&attendance).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка записи участия",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Участие зафиксировано"})
}

func seriesIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_SERIES_ID",
			Message: "Неверный идентификатор серии",
		})
		return 0, false
	}
	return uint(id), true
}

func loadSeries(c *gin.Context, id uint) (*models.Series, bool) {
	var series models.Series
	if err := storage.DB.First(&series, id).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Серия не найдена",
		})
		return nil, false
	}
	return &series, true
}

// AddFavoriteHandler добавляет серию в избранное
// @Summary		Добавление в избранное
// @Tags			engagement
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"ID серии"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Серия в избранном"
// @Failure		404	{object}	response.ErrorResponse		"Серия не найдена (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/series/{id}/favorite [post]
func AddFavoriteHandler(c *gin.Context) {
	id, ok := seriesIDParam(c)
	if !ok {
		return
	}
	if _, ok := loadSeries(c, id); !ok {
		return
	}
	userID := c.GetUint("userID")

	var existing models.Favorite
	if err := storage.DB.Where("user_id = ? AND series_id = ?", userID, id).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, response.SuccessResponse{Message: "Серия уже в избранном"})
		return
	}

	if err := storage.DB.Create(&models.Favorite{UserID: userID, SeriesID: id}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка добавления в избранное",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Серия добавлена в избранное"})
}

// RemoveFavoriteHandler убирает серию из избранного
// @Summary		Удаление из избранного
// @Tags			engagement
// @Accept			json
// @Produce		json
// @Param			id	path	string	true	"ID серии"
// @Security		BearerAuth
// @Success		204	"Убрано из избранного"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/series/{id}/favorite [delete]
func RemoveFavoriteHandler(c *gin.Context) {
	id, ok := seriesIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	if err := storage.DB.Where("user_id = ? AND series_id = ?", userID, id).Delete(&models.Favorite{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка удаления из избранного",
			Details: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

type FavoriteItem struct {
	SeriesID       uint   `json:"series_id"`
	Domain         string `json:"domain"`
	Title          string `json:"title"`
	RecurrenceType string `json:"recurrence_type"`
}

// ListFavoritesHandler возвращает избранные серии пользователя
// @Summary		Список избранного
// @Tags			engagement
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		FavoriteItem			"Избранные серии"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/profile/favorites [get]
func ListFavoritesHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	var favorites []models.Favorite
	if err := storage.DB.Preload("Series").Where("user_id = ?", userID).Find(&favorites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки избранного",
			Details: err.Error(),
		})
		return
	}

	items := make([]FavoriteItem, 0, len(favorites))
	for _, favorite := range favorites {
		items = append(items, FavoriteItem{
			SeriesID:       favorite.SeriesID,
			Domain:         favorite.Series.Domain,
			Title:          favorite.Series.Title,
			RecurrenceType: favorite.Series.RecurrenceType,
		})
	}
	c.JSON(http.StatusOK, items)
}

type ReminderRequest struct {
	RemindBeforeMinutes int  `json:"remind_before_minutes" binding:"required"` // 15 или 5
	IsEnabled           bool `json:"is_enabled"`
}

// SetReminderHandler включает или выключает напоминание по серии
// @Summary		Настройка напоминания
// @Description	Переключатель напоминания за 15 или 5 минут до начала; доставка выполняется на клиенте
// @Tags			engagement
// @Accept			json
// @Produce		json
// @Param			id			path		string			true	"ID серии"
// @Param			reminder	body		ReminderRequest	true	"Настройка"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Настройка сохранена"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		404	{object}	response.ErrorResponse		"Серия не найдена (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/series/{id}/reminders [put]
func SetReminderHandler(c *gin.Context) {
	id, ok := seriesIDParam(c)
	if !ok {
		return
	}
	if _, ok := loadSeries(c, id); !ok {
		return
	}

	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}
	if req.RemindBeforeMinutes != 15 && req.RemindBeforeMinutes != 5 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Напоминание возможно только за 15 или 5 минут",
		})
		return
	}

	userID := c.GetUint("userID")
	var setting models.ReminderSetting
	err := storage.DB.Where("user_id = ? AND series_id = ? AND remind_before_minutes = ?",
		userID, id, req.RemindBeforeMinutes).First(&setting).Error
	if err != nil {
		setting = models.ReminderSetting{
			UserID:              userID,
			SeriesID:            id,
			RemindBeforeMinutes: req.RemindBeforeMinutes,
		}
	}
	setting.IsEnabled = req.IsEnabled

	if err := storage.DB.Save(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка сохранения настройки напоминания",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Настройка напоминания сохранена"})
}
