package tasks

import (
	"database/sql"
	"log"
	"time"

	"church_backend/internal/models"
	"church_backend/internal/recurrence"
	"church_backend/internal/storage"
	"church_backend/internal/ws"

	"github.com/robfig/cron/v3"
)

// Горизонт скользящей генерации — те же 3 месяца по 30 дней, что и при создании серии
const horizonDays = 3 * 30

// RefreshOccurrenceStatuses пересчитывает кэшированные статусы незавершённых
// вхождений. Чтения и так пересчитывают статус на лету, задача лишь держит
// кэш свежим для выборок по колонке status и рассылает WS-события о смене.
func RefreshOccurrenceStatuses() {
	now := time.Now()

	var occurrences []models.Occurrence
	if err := storage.DB.Where("status <> ?", string(recurrence.StatusCompleted)).Find(&occurrences).Error; err != nil {
		log.Println("Ошибка выборки вхождений для пересчёта статусов:", err)
		return
	}

	changed := 0
	for _, occ := range occurrences {
		fresh := string(recurrence.Classify(occ.StartDatetime, occ.EndDatetime, now))
		if fresh == occ.Status {
			continue
		}
		if err := storage.DB.Model(&models.Occurrence{}).Where("id = ?", occ.ID).Update("status", fresh).Error; err != nil {
			log.Println("Ошибка обновления статуса вхождения", occ.ID, ":", err)
			continue
		}
		changed++
		ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
			EventType: "occurrence_status_changed",
			Domain:    occ.Domain,
			Data: map[string]interface{}{
				"occurrence_id": occ.ID,
				"status":        fresh,
			},
		})
	}

	if changed > 0 {
		log.Printf("Пересчёт статусов: обновлено %d вхождений\n", changed)
	}
}

// ExtendSeriesHorizons дозаполняет вхождения активных повторяющихся серий,
// чтобы горизонт всегда покрывал 3 месяца от сегодняшнего дня. Уже
// существующие и удалённые вхождения не трогаются и не воскрешаются.
func ExtendSeriesHorizons() {
	now := time.Now()
	horizonEnd := now.AddDate(0, 0, horizonDays)

	var seriesList []models.Series
	if err := storage.DB.Where("is_active = true AND recurrence_type <> ?", recurrence.TypeNone).Find(&seriesList).Error; err != nil {
		log.Println("Ошибка выборки серий для продления горизонта:", err)
		return
	}

	for _, series := range seriesList {
		// Сколько месяцев генерации нужно, чтобы дотянуться от якоря до горизонта
		months := int(horizonEnd.Sub(series.StartDatetime).Hours()/(24*30)) + 1
		if months < 3 {
			months = 3
		}

		windows := recurrence.Generate(
			recurrence.Window{Start: series.StartDatetime, End: series.EndDatetime},
			recurrence.Rule{
				Type:    series.RecurrenceType,
				Days:    series.RecurrenceDays,
				EndDate: series.RecurrenceEndDate,
				Count:   series.RecurrenceCount,
			},
			months,
		)

		// Последняя уже созданная граница, включая мягко удалённые строки:
		// удалённое пастором вхождение не должно воскресать
		var latest sql.NullTime
		row := storage.DB.Model(&models.Occurrence{}).Unscoped().
			Where("series_id = ?", series.ID).
			Select("MAX(start_datetime)").Row()
		if err := row.Scan(&latest); err != nil {
			log.Println("Ошибка чтения границы генерации серии", series.ID, ":", err)
			continue
		}

		label := series.RecurrenceType
		created := 0
		for _, w := range windows {
			if latest.Valid && !w.Start.After(latest.Time) {
				continue
			}
			if w.Start.After(horizonEnd) {
				break
			}
			occ := models.Occurrence{
				SeriesID:       series.ID,
				Domain:         series.Domain,
				Title:          series.Title,
				Description:    series.Description,
				MeetingType:    series.MeetingType,
				Location:       series.Location,
				JoinInfo:       series.JoinInfo,
				StartDatetime:  w.Start,
				EndDatetime:    w.End,
				Status:         string(recurrence.Classify(w.Start, w.End, now)),
				RecurrenceType: label,
			}
			if err := storage.DB.Create(&occ).Error; err != nil {
				log.Println("Ошибка создания вхождения для серии", series.ID, ":", err)
				continue
			}
			created++
		}

		if created > 0 {
			log.Printf("Серия %d ('%s'): горизонт продлён на %d вхождений\n", series.ID, series.Title, created)
		}
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Пересчёт статусов каждые 5 минут.
	_, err := c.AddFunc("0 */5 * * * *", RefreshOccurrenceStatuses)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи RefreshOccurrenceStatuses:", err)
	}

	// Продление горизонта генерации каждый день в 03:00.
	_, err = c.AddFunc("0 0 3 * * *", ExtendSeriesHorizons)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи ExtendSeriesHorizons:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
