package occurrences

import (
	"context"
	"time"

	"church_backend/internal/models"
)

// Вкладки списка вхождений.
const (
	TabToday    = "today"
	TabUpcoming = "upcoming"
	TabPast     = "past"
)

// ListQuery — границы выборки, вычисленные менеджером по текущему времени.
type ListQuery struct {
	Domain string
	Tab    string
	Now    time.Time // Уже усечено до минуты
	DayEnd time.Time // Конец текущего календарного дня в зоне now
}

// Store — узкий интерфейс хранилища серий и вхождений.
// Контракт транзакционности: CreateSeries сохраняет серию вместе со всей
// пачкой вхождений как одно целое (ошибка не оставляет частичной пачки);
// SaveOccurrences и DeleteOccurrences применяют все строки одним целым.
type Store interface {
	// CreateSeries сохраняет серию и прикреплённые series.Occurrences.
	CreateSeries(ctx context.Context, series *models.Series) error
	GetOccurrence(ctx context.Context, id uint) (*models.Occurrence, error)
	// SiblingsAfter возвращает вхождения той же серии, начинающиеся строго
	// после after, по возрастанию начала.
	SiblingsAfter(ctx context.Context, seriesID uint, after time.Time) ([]models.Occurrence, error)
	SaveOccurrences(ctx context.Context, occurrences []*models.Occurrence) error
	// UpdateOccurrenceStatus точечно обновляет кэшированный статус.
	UpdateOccurrenceStatus(ctx context.Context, id uint, status string) error
	DeleteOccurrences(ctx context.Context, ids []uint) error
	ListOccurrences(ctx context.Context, q ListQuery) ([]models.Occurrence, error)
}
