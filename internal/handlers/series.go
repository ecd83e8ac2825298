package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"church_backend/internal/models"
	"church_backend/internal/occurrences"
	"church_backend/internal/recurrence"
	"church_backend/internal/response"
	"church_backend/internal/ws"

	"github.com/gin-gonic/gin"
)

// Один движок обслуживает оба домена (молитвы и события): серии и вхождения
// идентичны по форме, различается только значение поля domain и маршруты.
var engine *occurrences.Manager

// InitEngine подключает менеджер жизненного цикла; вызывается из main.
func InitEngine(m *occurrences.Manager) {
	engine = m
}

type SeriesRequest struct {
	Title             string    `json:"title" binding:"required"`
	Description       string    `json:"description"`
	MeetingType       string    `json:"meeting_type" binding:"required"` // online или offline
	Location          string    `json:"location"`
	JoinInfo          string    `json:"join_info"`
	RecurrenceType    string    `json:"recurrence_type"`     // none, daily, weekly, monthly
	RecurrenceDays    string    `json:"recurrence_days"`     // "0,4" (0=Пн, 6=Вс)
	RecurrenceEndDate string    `json:"recurrence_end_date"` // "2006-01-02"
	RecurrenceCount   *int      `json:"recurrence_count"`
	StartDatetime     time.Time `json:"start_datetime" binding:"required"`
	EndDatetime       time.Time `json:"end_datetime" binding:"required"`
}

type OccurrenceEditRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description"`
	MeetingType   string    `json:"meeting_type" binding:"required"`
	Location      string    `json:"location"`
	JoinInfo      string    `json:"join_info"`
	StartDatetime time.Time `json:"start_datetime" binding:"required"`
	EndDatetime   time.Time `json:"end_datetime" binding:"required"`
}

type SeriesResponse struct {
	ID               uint      `json:"id"`
	Domain           string    `json:"domain"`
	Title            string    `json:"title"`
	RecurrenceType   string    `json:"recurrence_type"`
	StartDatetime    time.Time `json:"start_datetime"`
	EndDatetime      time.Time `json:"end_datetime"`
	OccurrenceCount  int       `json:"occurrence_count"`
}

type OccurrenceResponse struct {
	ID              uint      `json:"id"`
	SeriesID        uint      `json:"series_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	MeetingType     string    `json:"meeting_type"`
	Location        string    `json:"location,omitempty"`
	JoinInfo        string    `json:"join_info,omitempty"`
	StartDatetime   time.Time `json:"start_datetime"`
	EndDatetime     time.Time `json:"end_datetime"`
	Status          string    `json:"status"`
	RecurrenceLabel string    `json:"recurrence_label,omitempty"`
}

type PreviewResponse struct {
	Items []occurrences.PreviewItem `json:"items"`
}

func toOccurrenceResponse(o models.Occurrence) OccurrenceResponse {
	return OccurrenceResponse{
		ID:              o.ID,
		SeriesID:        o.SeriesID,
		Title:           o.Title,
		Description:     o.Description,
		MeetingType:     o.MeetingType,
		Location:        o.Location,
		JoinInfo:        o.JoinInfo,
		StartDatetime:   o.StartDatetime,
		EndDatetime:     o.EndDatetime,
		Status:          o.Status,
		RecurrenceLabel: recurrence.Label(o.RecurrenceType),
	}
}

// writeEngineError переводит ошибки движка в HTTP-ответы.
func writeEngineError(c *gin.Context, err error) {
	var validationErr *occurrences.ValidationError
	var preconditionErr *occurrences.PreconditionError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: validationErr.Reason,
		})
	case errors.As(err, &preconditionErr):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "OCCURRENCE_STARTED",
			Message: preconditionErr.Reason,
		})
	case errors.Is(err, occurrences.ErrNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Запись не найдена",
		})
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка сохранения данных",
			Details: err.Error(),
		})
	}
}

func seriesInputFromRequest(c *gin.Context, domain string) (occurrences.SeriesInput, bool) {
	var req SeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return occurrences.SeriesInput{}, false
	}

	var endDate *time.Time
	if req.RecurrenceEndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.RecurrenceEndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Неверный формат recurrence_end_date, ожидается YYYY-MM-DD",
			})
			return occurrences.SeriesInput{}, false
		}
		endDate = &parsed
	}

	return occurrences.SeriesInput{
		Domain:            domain,
		Title:             req.Title,
		Description:       req.Description,
		MeetingType:       req.MeetingType,
		Location:          req.Location,
		JoinInfo:          req.JoinInfo,
		RecurrenceType:    req.RecurrenceType,
		RecurrenceDays:    req.RecurrenceDays,
		RecurrenceEndDate: endDate,
		RecurrenceCount:   req.RecurrenceCount,
		Start:             req.StartDatetime,
		End:               req.EndDatetime,
	}, true
}

func createSeries(c *gin.Context, domain string) {
	input, ok := seriesInputFromRequest(c, domain)
	if !ok {
		return
	}

	series, err := engine.CreateSeries(c.Request.Context(), input, c.GetUint("userID"), time.Now())
	if err != nil {
		writeEngineError(c, err)
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "occurrences_created",
		Domain:    domain,
		Data: map[string]interface{}{
			"series_id":        series.ID,
			"occurrence_count": len(series.Occurrences),
		},
	})

	c.JSON(http.StatusCreated, SeriesResponse{
		ID:              series.ID,
		Domain:          series.Domain,
		Title:           series.Title,
		RecurrenceType:  series.RecurrenceType,
		StartDatetime:   series.StartDatetime,
		EndDatetime:     series.EndDatetime,
		OccurrenceCount: len(series.Occurrences),
	})
}

func previewSeries(c *gin.Context, domain string) {
	input, ok := seriesInputFromRequest(c, domain)
	if !ok {
		return
	}

	items, err := engine.PreviewSeries(input, time.Now())
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, PreviewResponse{Items: items})
}

func listOccurrences(c *gin.Context, domain string) {
	tab := c.DefaultQuery("tab", occurrences.TabToday)

	rows, err := engine.ListOccurrences(c.Request.Context(), domain, tab, time.Now())
	if err != nil {
		writeEngineError(c, err)
		return
	}

	items := make([]OccurrenceResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toOccurrenceResponse(row))
	}
	c.JSON(http.StatusOK, items)
}

func occurrenceIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_OCCURRENCE_ID",
			Message: "Неверный идентификатор вхождения",
		})
		return 0, false
	}
	return uint(id), true
}

func editOccurrence(c *gin.Context, domain string) {
	id, ok := occurrenceIDParam(c)
	if !ok {
		return
	}

	var req OccurrenceEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	applyToFuture := c.Query("apply_to_future") == "true"
	edit := occurrences.OccurrenceEdit{
		Title:       req.Title,
		Description: req.Description,
		MeetingType: req.MeetingType,
		Location:    req.Location,
		JoinInfo:    req.JoinInfo,
		Start:       req.StartDatetime,
		End:         req.EndDatetime,
	}

	occ, err := engine.EditOccurrence(c.Request.Context(), domain, id, edit, applyToFuture, time.Now())
	if err != nil {
		writeEngineError(c, err)
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "occurrence_updated",
		Domain:    domain,
		Data: map[string]interface{}{
			"occurrence_id":   occ.ID,
			"apply_to_future": applyToFuture,
		},
	})

	c.JSON(http.StatusOK, toOccurrenceResponse(*occ))
}

func deleteOccurrence(c *gin.Context, domain string) {
	id, ok := occurrenceIDParam(c)
	if !ok {
		return
	}

	deleteFuture := c.Query("delete_future") == "true"
	if err := engine.DeleteOccurrence(c.Request.Context(), domain, id, deleteFuture, time.Now()); err != nil {
		writeEngineError(c, err)
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "occurrence_deleted",
		Domain:    domain,
		Data: map[string]interface{}{
			"occurrence_id": id,
			"delete_future": deleteFuture,
		},
	})

	c.Status(http.StatusNoContent)
}
