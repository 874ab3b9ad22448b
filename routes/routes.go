package routes

import (
	"bookline-backend/config"
	"bookline-backend/controllers"
	"bookline-backend/logger"
	"bookline-backend/metrics"
	"bookline-backend/services"
	"bookline-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries everything the HTTP layer needs; main builds one and
// hands it over.
type Deps struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Appointments *services.AppointmentService
	Availability *services.AvailabilityService
	Notifier     *services.NotificationService
	Metrics      *metrics.HTTPMetrics
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", d.Metrics.Handler())
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authController := controllers.AuthController{DB: d.DB, Cfg: d.Cfg}
	tenantController := controllers.TenantController{DB: d.DB, Cfg: d.Cfg}
	serviceController := controllers.ServiceController{DB: d.DB, Cfg: d.Cfg}
	clientController := controllers.ClientController{DB: d.DB}
	appointmentController := controllers.AppointmentController{DB: d.DB, Cfg: d.Cfg, Appointments: d.Appointments}
	availabilityController := controllers.AvailabilityController{DB: d.DB, Cfg: d.Cfg, Availability: d.Availability}
	commsController := controllers.CommunicationsController{DB: d.DB, Notifier: d.Notifier}
	userController := controllers.UserController{DB: d.DB}
	dashboardController := controllers.DashboardController{DB: d.DB}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public portal routes, scoped by the request's subdomain.
	portal := r.Group("/portal")
	{
		portal.GET("/widget-config", tenantController.GetWidgetConfig)
		portal.GET("/services", serviceController.ListPublic)
		portal.GET("/availability", availabilityController.GetSlots)
		portal.POST("/appointments", appointmentController.BookPublic)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)

		auth.Use(utils.AuthMiddleware(d.DB, d.Cfg.JWTSecret))
		auth.GET("/me", authController.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware(d.DB, d.Cfg.JWTSecret))
	{
		// Tenant routes
		api.GET("/tenants", tenantController.List)
		api.GET("/tenant/profile", tenantController.GetProfile)
		api.PUT("/tenant/profile", tenantController.UpdateProfile)

		// Service routes
		apiServices := api.Group("/services")
		{
			apiServices.POST("", serviceController.Create)
			apiServices.GET("", serviceController.List)
			apiServices.GET("/:id", serviceController.Get)
			apiServices.PUT("/:id", serviceController.Update)
			apiServices.DELETE("/:id", serviceController.Delete)
		}

		// Client routes
		clients := api.Group("/clients")
		{
			clients.POST("", clientController.Create)
			clients.GET("", clientController.List)
			clients.GET("/:id", clientController.Get)
			clients.PUT("/:id", clientController.Update)
			clients.DELETE("/:id", clientController.Delete)
		}

		// Appointment routes
		appointments := api.Group("/appointments")
		{
			appointments.GET("", appointmentController.List)
			appointments.GET("/:id", appointmentController.Get)
			appointments.PATCH("/:id", appointmentController.Update)
			appointments.DELETE("/:id", appointmentController.Delete)
		}

		// User routes
		users := api.Group("/users")
		{
			users.POST("", userController.Create)
			users.GET("", userController.List)
			users.PATCH("/:id", userController.Update)
			users.DELETE("/:id", userController.Delete)
		}

		// Dashboard route
		api.GET("/dashboard", dashboardController.GetStats)

		// Communications routes
		comms := api.Group("/communications")
		{
			comms.GET("", commsController.List)
			comms.POST("/sms", commsController.SendSMS)
		}
	}

	return r
}
