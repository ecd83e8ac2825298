package storage

import (
	"context"
	"errors"
	"time"

	"church_backend/internal/models"
	"church_backend/internal/occurrences"

	"gorm.io/gorm"
)

// SeriesStore — реализация occurrences.Store поверх GORM/Postgres.
type SeriesStore struct {
	db *gorm.DB
}

func NewSeriesStore(db *gorm.DB) *SeriesStore {
	return &SeriesStore{db: db}
}

// CreateSeries сохраняет серию вместе с пачкой вхождений: GORM создаёт
// родителя и ассоциации в одной транзакции, частичной пачки не остаётся.
func (s *SeriesStore) CreateSeries(ctx context.Context, series *models.Series) error {
	return s.db.WithContext(ctx).Create(series).Error
}

func (s *SeriesStore) GetOccurrence(ctx context.Context, id uint) (*models.Occurrence, error) {
	var occ models.Occurrence
	if err := s.db.WithContext(ctx).First(&occ, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, occurrences.ErrNotFound
		}
		return nil, err
	}
	return &occ, nil
}

func (s *SeriesStore) SiblingsAfter(ctx context.Context, seriesID uint, after time.Time) ([]models.Occurrence, error) {
	var rows []models.Occurrence
	err := s.db.WithContext(ctx).
		Where("series_id = ? AND start_datetime > ?", seriesID, after).
		Order("start_datetime ASC").
		Find(&rows).Error
	return rows, err
}

func (s *SeriesStore) SaveOccurrences(ctx context.Context, occs []*models.Occurrence) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, occ := range occs {
			if err := tx.Save(occ).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SeriesStore) UpdateOccurrenceStatus(ctx context.Context, id uint, status string) error {
	return s.db.WithContext(ctx).
		Model(&models.Occurrence{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *SeriesStore) DeleteOccurrences(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Occurrence{}).Error
}

func (s *SeriesStore) ListOccurrences(ctx context.Context, q occurrences.ListQuery) ([]models.Occurrence, error) {
	query := s.db.WithContext(ctx).
		Where("domain = ?", q.Domain).
		Order("start_datetime ASC")

	switch q.Tab {
	case occurrences.TabToday:
		// Пересекается с текущим календарным днём и ещё не закончилось
		query = query.Where("start_datetime < ? AND end_datetime > ?", q.DayEnd, q.Now)
	case occurrences.TabUpcoming:
		// Начинается строго после конца сегодняшнего дня
		query = query.Where("start_datetime >= ?", q.DayEnd)
	case occurrences.TabPast:
		query = query.Where("end_datetime <= ?", q.Now)
	}

	var rows []models.Occurrence
	err := query.Find(&rows).Error
	return rows, err
}
