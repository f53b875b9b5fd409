// Package server wire the service together and register its HTTP routes
package server

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/himansu2198/Job-Listing-Portal/internal/auth"
	applicationctl "github.com/himansu2198/Job-Listing-Portal/internal/controller/application"
	jobctl "github.com/himansu2198/Job-Listing-Portal/internal/controller/job"
	notificationctl "github.com/himansu2198/Job-Listing-Portal/internal/controller/notification"
	profilectl "github.com/himansu2198/Job-Listing-Portal/internal/controller/profile"
	"github.com/himansu2198/Job-Listing-Portal/internal/live"
	"github.com/himansu2198/Job-Listing-Portal/internal/metrics"
	"github.com/himansu2198/Job-Listing-Portal/internal/middleware"
	"github.com/himansu2198/Job-Listing-Portal/internal/model"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}), middleware.SafeHeader())

	lAuth := auth.NewLocalAuthHandler(s.store, s.tokens)
	logout := auth.NewLogoutController(s.blacklist)
	jobs := jobctl.NewJobController(s.store)
	applications := applicationctl.NewApplicationController(s.manager, s.resumes)
	notifications := notificationctl.NewNotificationController(s.ledger)
	profiles := profilectl.NewProfileController(s.profiles)

	requireAuth := []gin.HandlerFunc{
		middleware.RequireAuth(s.tokens, s.store),
		middleware.JwtBlacklistCheck(s.blacklist),
	}

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler(s.registry)))
	r.GET("/ws", append(requireAuth, live.Handler(s.hub, live.HandlerConfig{AllowedOrigins: s.cfg.AllowOrigins}))...)

	api := r.Group("/api", middleware.RequestTimeout(s.cfg.RequestTimeout))
	{
		authRoute := api.Group("/auth", middleware.RateLimiterMiddleware(s.cfg.RateLimit))
		{
			authRoute.POST("register", lAuth.RegisterHandler)
			authRoute.POST("login", lAuth.LoginHandler)
			authRoute.POST("logout", append(requireAuth, logout.LogoutHandler)...)
		}

		// Public job board
		api.GET("/jobs", jobs.GetJobs)
		api.GET("/jobs/:id", jobs.GetJobByID)

		needAuth := api.Group("")
		{
			needAuth.Use(requireAuth...)
			needAuth.Use(middleware.RateLimiterMiddleware(s.cfg.RateLimit))

			jobRoute := needAuth.Group("/jobs")
			{
				jobRoute.Use(middleware.CheckRole(model.RoleEmployer))
				jobRoute.POST("", jobs.CreateJobHandler)
				jobRoute.GET("/mine", jobs.GetEmployerJobs)
				jobRoute.PATCH("/:id", jobs.EditJob)
			}

			profileRoute := needAuth.Group("/profile")
			{
				profileRoute.GET("", profiles.GetProfile)
				profileRoute.PUT("", profiles.UpdateProfile)
				profileRoute.POST("/resume", middleware.SizeLimit(s.cfg.MaxResumeBytes), profiles.UploadResume)
			}

			applicationRoute := needAuth.Group("/applications")
			{
				applicationRoute.POST("/apply", applications.ApplyHandler)
				applicationRoute.GET("/jobseeker", middleware.CheckRole(model.RoleJobSeeker), applications.GetJobSeekerApplications)
				applicationRoute.GET("/:id/resume", applications.GetResume)

				needEmployer := applicationRoute.Group("", middleware.CheckRole(model.RoleEmployer))
				needEmployer.GET("/employer", applications.GetEmployerApplications)
				needEmployer.PUT("/:id/shortlist", applications.ShortlistHandler)
				needEmployer.PUT("/:id/reject", applications.RejectHandler)
			}

			notificationRoute := needAuth.Group("/notifications")
			{
				notificationRoute.GET("", notifications.GetNotifications)
				notificationRoute.GET("/unread-count", notifications.UnreadCount)
				notificationRoute.PUT("/:id/read", notifications.MarkRead)
			}
		}
	}

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	stats := s.store.Health()
	stats["live_sessions"] = strconv.Itoa(s.hub.SessionCount())
	c.JSON(http.StatusOK, stats)
}
