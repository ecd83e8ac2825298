package handlers

import (
	"church_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// CreatePrayerSeriesHandler создаёт серию молитв и генерирует вхождения
// @Summary		Создание серии молитв
// @Description	Проверяет определение серии, сохраняет её и генерирует вхождения на 3 месяца вперёд
// @Tags			prayers
// @Accept			json
// @Produce		json
// @Param			series	body		SeriesRequest	true	"Определение серии"
// @Security		BearerAuth
// @Success		201	{object}	SeriesResponse			"Серия создана"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/prayers/series [post]
func CreatePrayerSeriesHandler(c *gin.Context) {
	createSeries(c, models.DomainPrayer)
}

// PreviewPrayerSeriesHandler показывает первые окна серии без сохранения
// @Summary		Предпросмотр серии молитв
// @Description	Та же проверка и генерация, что и при создании, но ничего не сохраняется; не больше 5 окон
// @Tags			prayers
// @Accept			json
// @Produce		json
// @Param			series	body		SeriesRequest	true	"Определение серии"
// @Security		BearerAuth
// @Success		200	{object}	PreviewResponse			"Окна предпросмотра"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Router			/prayers/preview [post]
func PreviewPrayerSeriesHandler(c *gin.Context) {
	previewSeries(c, models.DomainPrayer)
}

// ListPrayerOccurrencesHandler возвращает вхождения молитв по вкладке
// @Summary		Список вхождений молитв
// @Description	Вкладки: today (пересекается с сегодняшним днём и не закончилось), upcoming, past. Статус каждой строки пересчитывается при чтении
// @Tags			prayers
// @Accept			json
// @Produce		json
// @Param			tab	query		string	false	"Вкладка: today, upcoming или past"	default(today)
// @Security		BearerAuth
// @Success		200	{array}		OccurrenceResponse		"Вхождения со свежими статусами"
// @Failure		400	{object}	response.ErrorResponse	"Неизвестная вкладка (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/prayers/occurrences [get]
func ListPrayerOccurrencesHandler(c *gin.Context) {
	listOccurrences(c, models.DomainPrayer)
}

// EditPrayerOccurrenceHandler правит вхождение молитвы
// @Summary		Правка вхождения молитвы
// @Description	Правит снимок и окно вхождения; при apply_to_future=true новое время суток переносится на все будущие вхождения серии с сохранением их дат. Начавшееся вхождение неизменяемо
// @Tags			prayers
// @Accept			json
// @Produce		json
// @Param			id				path		string					true	"ID вхождения"
// @Param			apply_to_future	query		bool					false	"Применить к будущим вхождениям"
// @Param			occurrence		body		OccurrenceEditRequest	true	"Новые поля вхождения"
// @Security		BearerAuth
// @Success		200	{object}	OccurrenceResponse		"Обновлённое вхождение"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR) или вхождение началось (OCCURRENCE_STARTED)"
// @Failure		404	{object}	response.ErrorResponse	"Вхождение не найдено (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/prayers/occurrences/{id} [put]
func EditPrayerOccurrenceHandler(c *gin.Context) {
	editOccurrence(c, models.DomainPrayer)
}

// DeletePrayerOccurrenceHandler удаляет вхождение молитвы
// @Summary		Удаление вхождения молитвы
// @Description	Удаляет вхождение; при delete_future=true также все будущие вхождения серии. Начавшиеся вхождения не удаляются никогда
// @Tags			prayers
// @Accept			json
// @Produce		json
// @Param			id				path	string	true	"ID вхождения"
// @Param			delete_future	query	bool	false	"Удалить и будущие вхождения"
// @Security		BearerAuth
// @Success		204	"Удалено"
// @Failure		400	{object}	response.ErrorResponse	"Вхождение началось (OCCURRENCE_STARTED)"
// @Failure		404	{object}	response.ErrorResponse	"Вхождение не найдено (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/prayers/occurrences/{id} [delete]
func DeletePrayerOccurrenceHandler(c *gin.Context) {
	deleteOccurrence(c, models.DomainPrayer)
}
