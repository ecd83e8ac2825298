package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"church_backend/internal/handlers"
	"church_backend/internal/models"
	"church_backend/internal/occurrences"
	"church_backend/internal/storage"
	"church_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func AuthMiddlewareTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.Request.Header.Get("X-Test-UserID")
		if userIDStr == "" {
			// Значение по умолчанию
			c.Set("userID", uint(1))
		} else {
			id, err := strconv.Atoi(userIDStr)
			if err != nil {
				c.Set("userID", uint(1))
			} else {
				c.Set("userID", uint(id))
			}
		}
		role := c.Request.Header.Get("X-Test-Role")
		if role == "" {
			role = models.RoleMember
		}
		c.Set("userRole", role)
		c.Next()
	}
}

func PastorOnlyTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userRole") != models.RolePastor {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func setupTestServer() *httptest.Server {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load("../.env")
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectTestingDatabase()
	storage.DB.Exec("TRUNCATE TABLE users, series, occurrences, attendances, favorites, reminder_settings, prayer_requests RESTART IDENTITY CASCADE;")

	if err := storage.DB.AutoMigrate(
		&models.User{},
		&models.Series{},
		&models.Occurrence{},
		&models.Attendance{},
		&models.Favorite{},
		&models.ReminderSetting{},
		&models.PrayerRequest{},
	); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	handlers.InitEngine(occurrences.NewManager(storage.NewSeriesStore(storage.DB)))

	go ws.HubInstance.Run()

	r := gin.Default()

	api := r.Group("", AuthMiddlewareTest())
	{
		prayers := api.Group("/prayers")
		{
			prayers.GET("/occurrences", handlers.ListPrayerOccurrencesHandler)

			pastor := prayers.Group("", PastorOnlyTest())
			{
				pastor.POST("/series", handlers.CreatePrayerSeriesHandler)
				pastor.POST("/preview", handlers.PreviewPrayerSeriesHandler)
				pastor.PUT("/occurrences/:id", handlers.EditPrayerOccurrenceHandler)
				pastor.DELETE("/occurrences/:id", handlers.DeletePrayerOccurrenceHandler)
			}
		}

		api.POST("/occurrences/:id/join", handlers.JoinOccurrenceHandler)
	}

	r.GET("/ws/:domain", ws.OccurrenceWebSocketHandler)

	return httptest.NewServer(r)
}

func doJSON(t *testing.T, method, url string, body interface{}, userID uint, role string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-UserID", fmt.Sprintf("%d", userID))
	req.Header.Set("X-Test-Role", role)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func TestSeriesFlow(t *testing.T) {
	ts := setupTestServer()
	defer ts.Close()

	// 1. Создаём пастора и участника напрямую в базе.
	pastor := models.User{Name: "Павел", Username: fmt.Sprintf("pastor_%d", time.Now().UnixNano()), Role: models.RolePastor, IsActive: true}
	member := models.User{Name: "Мария", Username: fmt.Sprintf("member_%d", time.Now().UnixNano()), Role: models.RoleMember, IsActive: true}
	require.NoError(t, storage.DB.Create(&pastor).Error, "Ошибка создания пастора")
	require.NoError(t, storage.DB.Create(&member).Error, "Ошибка создания участника")
	log.Println("Тестовые пользователи созданы, ID пастора:", pastor.ID, "ID участника:", member.ID)

	// 2. Подключаемся к WS домена молитв до операций, чтобы ловить события.
	wsURL := "ws" + ts.URL[4:] + "/ws/prayer"
	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "Ошибка подключения к WS")
	defer wsConn.Close()

	// 3. Пастор создаёт еженедельную серию на три вхождения.
	start := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	count := 3
	createBody := map[string]interface{}{
		"title":            "Вечерняя молитва",
		"description":      "Общая молитва общины",
		"meeting_type":     "offline",
		"location":         "Малый зал",
		"recurrence_type":  "weekly",
		"recurrence_count": count,
		"start_datetime":   start.Format(time.RFC3339),
		"end_datetime":     start.Add(time.Hour).Format(time.RFC3339),
	}
	res := doJSON(t, "POST", ts.URL+"/prayers/series", createBody, pastor.ID, models.RolePastor)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode, "Пастор не смог создать серию")

	var created struct {
		ID              uint   `json:"id"`
		Domain          string `json:"domain"`
		OccurrenceCount int    `json:"occurrence_count"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.Equal(t, "prayer", created.Domain)
	assert.Equal(t, 3, created.OccurrenceCount, "Еженедельная серия с лимитом 3 даёт три вхождения")
	log.Println("Серия создана, ID:", created.ID)

	// WS: событие о создании пачки вхождений
	wsConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, wsRaw, err := wsConn.ReadMessage()
	require.NoError(t, err, "Ошибка чтения WS сообщения")
	var wsMsg map[string]interface{}
	require.NoError(t, json.Unmarshal(wsRaw, &wsMsg))
	assert.Equal(t, "occurrences_created", wsMsg["event_type"])
	assert.Equal(t, "prayer", wsMsg["domain"])

	// 4. Участник не может создать серию.
	forbidden := doJSON(t, "POST", ts.URL+"/prayers/series", createBody, member.ID, models.RoleMember)
	defer forbidden.Body.Close()
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode, "Создание серии доступно только пастору")

	// 5. Предпросмотр не создаёт новых вхождений.
	preview := doJSON(t, "POST", ts.URL+"/prayers/preview", createBody, pastor.ID, models.RolePastor)
	defer preview.Body.Close()
	require.Equal(t, http.StatusOK, preview.StatusCode)
	var previewResp struct {
		Items []map[string]interface{} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(preview.Body).Decode(&previewResp))
	assert.Len(t, previewResp.Items, 3)
	var total int64
	storage.DB.Model(&models.Occurrence{}).Count(&total)
	assert.Equal(t, int64(3), total, "Предпросмотр ничего не сохраняет")

	// 6. Список будущих вхождений виден участнику.
	list := doJSON(t, "GET", ts.URL+"/prayers/occurrences?tab=upcoming", nil, member.ID, models.RoleMember)
	defer list.Body.Close()
	require.Equal(t, http.StatusOK, list.StatusCode)
	var rows []struct {
		ID            uint      `json:"id"`
		Status        string    `json:"status"`
		StartDatetime time.Time `json:"start_datetime"`
	}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&rows))
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, "upcoming", row.Status)
	}

	// 7. Участник отмечает участие в первом вхождении; повтор идемпотентен.
	joinURL := ts.URL + "/occurrences/" + strconv.Itoa(int(rows[0].ID)) + "/join"
	join := doJSON(t, "POST", joinURL, nil, member.ID, models.RoleMember)
	defer join.Body.Close()
	assert.Equal(t, http.StatusOK, join.StatusCode, "Участник не смог отметить участие")
	joinAgain := doJSON(t, "POST", joinURL, nil, member.ID, models.RoleMember)
	defer joinAgain.Body.Close()
	assert.Equal(t, http.StatusOK, joinAgain.StatusCode, "Повторная отметка участия не ошибка")
	var attendances int64
	storage.DB.Model(&models.Attendance{}).Count(&attendances)
	assert.Equal(t, int64(1), attendances, "Повторная отметка не создаёт дубликата")

	// 8. Пастор сдвигает все будущие вхождения на полчаса позже.
	newStart := rows[0].StartDatetime.Add(30 * time.Minute)
	editBody := map[string]interface{}{
		"title":          "Вечерняя молитва",
		"description":    "Общая молитва общины",
		"meeting_type":   "offline",
		"location":       "Большой зал",
		"start_datetime": newStart.Format(time.RFC3339),
		"end_datetime":   newStart.Add(time.Hour).Format(time.RFC3339),
	}
	editURL := ts.URL + "/prayers/occurrences/" + strconv.Itoa(int(rows[0].ID)) + "?apply_to_future=true"
	edit := doJSON(t, "PUT", editURL, editBody, pastor.ID, models.RolePastor)
	defer edit.Body.Close()
	require.Equal(t, http.StatusOK, edit.StatusCode, "Пастор не смог изменить вхождение")

	wsConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, wsRaw, err = wsConn.ReadMessage()
	require.NoError(t, err, "Ошибка чтения WS сообщения об изменении")
	require.NoError(t, json.Unmarshal(wsRaw, &wsMsg))
	assert.Equal(t, "occurrence_updated", wsMsg["event_type"])

	// Все три вхождения получили новое время суток на своих датах.
	var shifted []models.Occurrence
	storage.DB.Order("start_datetime ASC").Find(&shifted)
	require.Len(t, shifted, 3)
	for _, occ := range shifted {
		assert.Equal(t, newStart.Hour(), occ.StartDatetime.Local().Hour(), "Час начала сдвинут у всех будущих")
		assert.Equal(t, newStart.Minute(), occ.StartDatetime.Local().Minute())
		assert.Equal(t, "Большой зал", occ.Location)
	}

	// 9. Удаление последнего вхождения с будущими не трогает более ранние.
	last := shifted[len(shifted)-1]
	deleteURL := ts.URL + "/prayers/occurrences/" + strconv.Itoa(int(last.ID)) + "?delete_future=true"
	del := doJSON(t, "DELETE", deleteURL, nil, pastor.ID, models.RolePastor)
	defer del.Body.Close()
	require.Equal(t, http.StatusNoContent, del.StatusCode, "Пастор не смог удалить вхождение")

	storage.DB.Model(&models.Occurrence{}).Count(&total)
	assert.Equal(t, int64(2), total, "Удалено только последнее вхождение")
}
