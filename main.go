package main

import (
	"fmt"
	"log"
	"os"

	_ "church_backend/docs"
	"church_backend/internal/auth"
	"church_backend/internal/handlers"
	"church_backend/internal/models"
	"church_backend/internal/occurrences"
	"church_backend/internal/storage"
	"church_backend/internal/tasks"
	"church_backend/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Бэкенд церковной общины
// @Description				Повторяющиеся молитвы и события, участие, избранное, молитвенные просьбы
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

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

	storage.InitRedis()

	handlers.InitEngine(occurrences.NewManager(storage.NewSeriesStore(storage.DB)))

	tasks.InitScheduler()

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/refresh", handlers.RefreshToken)
		authGroup.POST("/otp/request", handlers.RequestOTP)
		authGroup.POST("/otp/verify", handlers.VerifyOTP)
	}

	api := r.Group("", auth.AuthMiddleware())
	{
		prayers := api.Group("/prayers")
		{
			prayers.GET("/occurrences", handlers.ListPrayerOccurrencesHandler)

			pastor := prayers.Group("", auth.PastorOnly())
			{
				pastor.POST("/series", handlers.CreatePrayerSeriesHandler)
				pastor.POST("/preview", handlers.PreviewPrayerSeriesHandler)
				pastor.PUT("/occurrences/:id", handlers.EditPrayerOccurrenceHandler)
				pastor.DELETE("/occurrences/:id", handlers.DeletePrayerOccurrenceHandler)
			}
		}

		events := api.Group("/events")
		{
			events.GET("/occurrences", handlers.ListEventOccurrencesHandler)

			pastor := events.Group("", auth.PastorOnly())
			{
				pastor.POST("/series", handlers.CreateEventSeriesHandler)
				pastor.POST("/preview", handlers.PreviewEventSeriesHandler)
				pastor.PUT("/occurrences/:id", handlers.EditEventOccurrenceHandler)
				pastor.DELETE("/occurrences/:id", handlers.DeleteEventOccurrenceHandler)
			}
		}

		api.POST("/occurrences/:id/join", handlers.JoinOccurrenceHandler)
		api.POST("/series/:id/favorite", handlers.AddFavoriteHandler)
		api.DELETE("/series/:id/favorite", handlers.RemoveFavoriteHandler)
		api.GET("/profile/favorites", handlers.ListFavoritesHandler)
		api.PUT("/series/:id/reminders", handlers.SetReminderHandler)

		api.POST("/prayer-requests", handlers.SubmitPrayerRequestHandler)
		api.GET("/prayer-requests", handlers.ListPrayerRequestsHandler)

		pastorRequests := api.Group("/prayer-requests", auth.PastorOnly())
		{
			pastorRequests.PUT("/:id/prayed", handlers.MarkPrayerRequestPrayedHandler)
			pastorRequests.PUT("/:id/archive", handlers.ArchivePrayerRequestHandler)
		}
	}

	r.GET("/ws/:domain", ws.OccurrenceWebSocketHandler)

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
