package occurrences

import (
	"context"
	"fmt"
	"log"
	"time"

	"church_backend/internal/models"
	"church_backend/internal/recurrence"
)

const (
	// Горизонт генерации: на сколько месяцев вперёд материализуются вхождения
	generationHorizonMonths = 3
	// Предпросмотр показывает не больше пяти окон
	previewLimit = 5

	MeetingTypeOnline  = "online"
	MeetingTypeOffline = "offline"
)

// SeriesInput — определение серии от вызывающей стороны.
type SeriesInput struct {
	Domain            string
	Title             string
	Description       string
	MeetingType       string // online или offline
	Location          string
	JoinInfo          string
	RecurrenceType    string
	RecurrenceDays    string
	RecurrenceEndDate *time.Time
	RecurrenceCount   *int
	Start             time.Time
	End               time.Time
}

// OccurrenceEdit — правка одного вхождения.
type OccurrenceEdit struct {
	Title       string
	Description string
	MeetingType string
	Location    string
	JoinInfo    string
	Start       time.Time
	End         time.Time
}

// PreviewItem — одно окно предпросмотра с готовой меткой.
type PreviewItem struct {
	Start time.Time `json:"start_datetime"`
	End   time.Time `json:"end_datetime"`
	Label string    `json:"label"`
}

// Manager — менеджер жизненного цикла вхождений. Не хранит состояния между
// вызовами: каждая операция читает из Store, считает и пишет обратно.
// Текущее время всегда передаётся параметром, чтобы тесты могли подставить
// фиксированный момент.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// CreateSeries проверяет определение серии, сохраняет её и пачку вхождений,
// сгенерированных на три месяца вперёд, одним целым.
func (m *Manager) CreateSeries(ctx context.Context, in SeriesInput, userID uint, now time.Time) (*models.Series, error) {
	if err := validateSeriesInput(&in, now); err != nil {
		return nil, err
	}

	series := &models.Series{
		Domain:            in.Domain,
		Title:             in.Title,
		Description:       in.Description,
		MeetingType:       in.MeetingType,
		Location:          in.Location,
		JoinInfo:          in.JoinInfo,
		RecurrenceType:    in.RecurrenceType,
		RecurrenceDays:    in.RecurrenceDays,
		RecurrenceEndDate: in.RecurrenceEndDate,
		RecurrenceCount:   in.RecurrenceCount,
		StartDatetime:     in.Start,
		EndDatetime:       in.End,
		CreatedBy:         userID,
		IsActive:          true,
	}

	windows := recurrence.Generate(
		recurrence.Window{Start: in.Start, End: in.End},
		seriesRule(in),
		generationHorizonMonths,
	)

	label := ""
	if in.RecurrenceType != recurrence.TypeNone {
		label = in.RecurrenceType
	}
	for _, w := range windows {
		series.Occurrences = append(series.Occurrences, models.Occurrence{
			Domain:         in.Domain,
			Title:          in.Title,
			Description:    in.Description,
			MeetingType:    in.MeetingType,
			Location:       in.Location,
			JoinInfo:       in.JoinInfo,
			StartDatetime:  w.Start,
			EndDatetime:    w.End,
			Status:         string(recurrence.Classify(w.Start, w.End, now)),
			RecurrenceType: label,
		})
	}

	if err := m.store.CreateSeries(ctx, series); err != nil {
		return nil, err
	}
	return series, nil
}

// PreviewSeries выполняет ту же проверку и генерацию, что и CreateSeries,
// но ничего не сохраняет и возвращает не больше пяти окон с метками.
func (m *Manager) PreviewSeries(in SeriesInput, now time.Time) ([]PreviewItem, error) {
	if err := validateSeriesInput(&in, now); err != nil {
		return nil, err
	}

	windows := recurrence.Generate(
		recurrence.Window{Start: in.Start, End: in.End},
		seriesRule(in),
		generationHorizonMonths,
	)
	if len(windows) > previewLimit {
		windows = windows[:previewLimit]
	}

	items := make([]PreviewItem, 0, len(windows))
	for _, w := range windows {
		items = append(items, PreviewItem{
			Start: w.Start,
			End:   w.End,
			Label: FormatWindowLabel(w.Start, w.End),
		})
	}
	return items, nil
}

// EditOccurrence обновляет снимок и окно вхождения. Уже начавшееся или
// завершённое вхождение неизменяемо. При applyToFuture правка переносится и
// на ещё не начавшиеся вхождения той же серии, начинающиеся строго позже
// исходного начала цели: каждое сохраняет собственную дату, но получает новое
// время суток — так "сдвинуть молитву с 21:00 на 21:30 для всех будущих"
// не сводит все вхождения к одной дате.
//
// domain ограничивает область видимости: вхождение чужого домена для
// вызывающей стороны не существует.
func (m *Manager) EditOccurrence(ctx context.Context, domain string, id uint, edit OccurrenceEdit, applyToFuture bool, now time.Time) (*models.Occurrence, error) {
	occ, err := m.store.GetOccurrence(ctx, id)
	if err != nil {
		return nil, err
	}
	if occ.Domain != domain {
		return nil, ErrNotFound
	}
	if hasStarted(occ.StartDatetime, now) {
		return nil, &PreconditionError{Reason: "Вхождение уже началось и не может быть изменено"}
	}
	if err := validateEdit(&edit, now, applyToFuture); err != nil {
		return nil, err
	}

	// Исходное начало фиксируется до правки: от него отбираются будущие соседи
	originalStart := occ.StartDatetime

	applySnapshot(occ, edit)
	occ.StartDatetime = edit.Start
	occ.EndDatetime = edit.End
	occ.Status = string(recurrence.Classify(occ.StartDatetime, occ.EndDatetime, now))

	touched := []*models.Occurrence{occ}

	if applyToFuture {
		siblings, err := m.store.SiblingsAfter(ctx, occ.SeriesID, originalStart)
		if err != nil {
			return nil, err
		}
		newDuration := edit.End.Sub(edit.Start)
		for i := range siblings {
			sibling := &siblings[i]
			if sibling.ID == occ.ID || hasStarted(sibling.StartDatetime, now) {
				continue
			}

			// Своя дата соседа + новое время суток из правки
			newStart := combineDateAndClock(sibling.StartDatetime, edit.Start)
			var newEnd time.Time
			if sameCivilDate(sibling.StartDatetime, sibling.EndDatetime) {
				newEnd = newStart.Add(newDuration)
			} else {
				// Многодневный сосед: своя исходная дата окончания + новое
				// время окончания; если окно схлопнулось — начало плюс длительность
				newEnd = combineDateAndClock(sibling.EndDatetime, edit.End)
				if !newEnd.After(newStart) {
					newEnd = newStart.Add(newDuration)
				}
			}

			applySnapshot(sibling, edit)
			sibling.StartDatetime = newStart
			sibling.EndDatetime = newEnd
			sibling.Status = string(recurrence.Classify(newStart, newEnd, now))
			touched = append(touched, sibling)
		}
	}

	if err := m.store.SaveOccurrences(ctx, touched); err != nil {
		return nil, err
	}
	return occ, nil
}

// DeleteOccurrence удаляет вхождение; уже начавшееся удалить нельзя.
// При deleteFuture дополнительно удаляются ещё не начавшиеся вхождения той же
// серии с началом строго позже начала цели — начавшиеся никогда не удаляются.
// Как и при правке, вхождение чужого домена не существует для вызывающего.
func (m *Manager) DeleteOccurrence(ctx context.Context, domain string, id uint, deleteFuture bool, now time.Time) error {
	occ, err := m.store.GetOccurrence(ctx, id)
	if err != nil {
		return err
	}
	if occ.Domain != domain {
		return ErrNotFound
	}
	if hasStarted(occ.StartDatetime, now) {
		return &PreconditionError{Reason: "Вхождение уже началось и не может быть удалено"}
	}

	ids := []uint{occ.ID}
	if deleteFuture {
		siblings, err := m.store.SiblingsAfter(ctx, occ.SeriesID, occ.StartDatetime)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if sibling.ID == occ.ID || hasStarted(sibling.StartDatetime, now) {
				continue
			}
			ids = append(ids, sibling.ID)
		}
	}

	return m.store.DeleteOccurrences(ctx, ids)
}

// ListOccurrences выбирает вхождения по вкладке и для каждой строки заново
// считает статус. Разошедшийся с кэшем статус дописывается в хранилище, но
// свежее значение отдаётся независимо от успеха записи — чтение идемпотентно
// и безопасно при гонках: худший исход гонки — лишняя запись того же значения.
func (m *Manager) ListOccurrences(ctx context.Context, domain, tab string, now time.Time) ([]models.Occurrence, error) {
	switch tab {
	case TabToday, TabUpcoming, TabPast:
	default:
		return nil, validationf("Неизвестная вкладка %q: ожидается today, upcoming или past", tab)
	}

	now = recurrence.TruncateToMinute(now)
	dayEnd := dateStart(now).AddDate(0, 0, 1)

	rows, err := m.store.ListOccurrences(ctx, ListQuery{
		Domain: domain,
		Tab:    tab,
		Now:    now,
		DayEnd: dayEnd,
	})
	if err != nil {
		return nil, err
	}

	for i := range rows {
		fresh := string(recurrence.Classify(rows[i].StartDatetime, rows[i].EndDatetime, now))
		if fresh == rows[i].Status {
			continue
		}
		rows[i].Status = fresh
		if err := m.store.UpdateOccurrenceStatus(ctx, rows[i].ID, fresh); err != nil {
			log.Println("Ошибка записи пересчитанного статуса вхождения", rows[i].ID, ":", err)
		}
	}
	return rows, nil
}

// FormatWindowLabel форматирует окно для предпросмотра: однодневные окна
// показываются одной датой, многодневные — двумя.
func FormatWindowLabel(start, end time.Time) string {
	if sameCivilDate(start, end) {
		return fmt.Sprintf("%s %s–%s",
			start.Format("02.01.2006"), start.Format("15:04"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s %s – %s %s",
		start.Format("02.01.2006"), start.Format("15:04"),
		end.Format("02.01.2006"), end.Format("15:04"))
}

func seriesRule(in SeriesInput) recurrence.Rule {
	return recurrence.Rule{
		Type:    in.RecurrenceType,
		Days:    in.RecurrenceDays,
		EndDate: in.RecurrenceEndDate,
		Count:   in.RecurrenceCount,
	}
}

// validateSeriesInput проверяет определение серии и нормализует поля,
// зависящие от типа встречи: противоположное поле молча очищается.
func validateSeriesInput(in *SeriesInput, now time.Time) error {
	if in.RecurrenceType == "" {
		in.RecurrenceType = recurrence.TypeNone
	}
	if !recurrence.ValidType(in.RecurrenceType) {
		return validationf("Неизвестный тип повторения %q", in.RecurrenceType)
	}
	if !in.End.After(in.Start) {
		return validationf("Окончание должно быть позже начала")
	}
	if !recurrence.TruncateToMinute(in.End).After(recurrence.TruncateToMinute(now)) {
		return validationf("Окно серии целиком в прошлом")
	}
	return validateMeetingFields(in.MeetingType, &in.Location, &in.JoinInfo)
}

func validateEdit(edit *OccurrenceEdit, now time.Time, applyToFuture bool) error {
	if !edit.End.After(edit.Start) {
		return validationf("Окончание должно быть позже начала")
	}
	// Для одиночной правки новое начало обязано оставаться в будущем;
	// при applyToFuture окна соседей выводятся из их собственных дат
	if !applyToFuture && !recurrence.TruncateToMinute(edit.Start).After(recurrence.TruncateToMinute(now)) {
		return validationf("Новое начало должно быть в будущем")
	}
	return validateMeetingFields(edit.MeetingType, &edit.Location, &edit.JoinInfo)
}

func validateMeetingFields(meetingType string, location, joinInfo *string) error {
	switch meetingType {
	case MeetingTypeOffline:
		if *location == "" {
			return validationf("Для офлайн-встречи требуется место проведения")
		}
		*joinInfo = ""
	case MeetingTypeOnline:
		if *joinInfo == "" {
			return validationf("Для онлайн-встречи требуется ссылка для подключения")
		}
		*location = ""
	default:
		return validationf("Неизвестный тип встречи %q: ожидается online или offline", meetingType)
	}
	return nil
}

func applySnapshot(occ *models.Occurrence, edit OccurrenceEdit) {
	occ.Title = edit.Title
	occ.Description = edit.Description
	occ.MeetingType = edit.MeetingType
	occ.Location = edit.Location
	occ.JoinInfo = edit.JoinInfo
}

// hasStarted сообщает, началось ли вхождение к моменту now (по минутам).
func hasStarted(start, now time.Time) bool {
	return !recurrence.TruncateToMinute(start).After(recurrence.TruncateToMinute(now))
}

func sameCivilDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// combineDateAndClock собирает момент из даты первого аргумента и времени
// суток второго, в зоне первого.
func combineDateAndClock(datePart, clockPart time.Time) time.Time {
	return time.Date(
		datePart.Year(), datePart.Month(), datePart.Day(),
		clockPart.Hour(), clockPart.Minute(), clockPart.Second(), clockPart.Nanosecond(),
		datePart.Location(),
	)
}

func dateStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
