package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/krishnaproperties/estate-service/internal/app"
	"github.com/krishnaproperties/estate-service/internal/config"
	"github.com/krishnaproperties/estate-service/internal/controllers"
	internalrepos "github.com/krishnaproperties/estate-service/internal/repositories"
	"github.com/krishnaproperties/estate-service/internal/routes"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-seeding"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	flushTelemetry, err := utils.InitTelemetry(cfg.SentryDSN, cfg.Env, cfg.AppName)
	if err != nil {
		utils.Logger.WithError(err).Warn("Sentry disabled")
	}
	defer flushTelemetry()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize estate-service:", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(reg)

	propertyRepo := repositories.NewPropertyRepository(application.DB)
	userRepo := repositories.NewUserRepository(application.DB)
	favoriteRepo := repositories.NewFavoriteRepository(application.DB)
	appointmentRepo := repositories.NewAppointmentRepository(application.DB)
	requestRepo := repositories.NewPropertyRequestRepository(application.DB)
	inquiryRepo := repositories.NewInquiryRepository(application.DB)
	eventRepo := repositories.NewEventRepository(application.DB)
	blogRepo := repositories.NewBlogRepository(application.DB)
	categoryRepo := repositories.NewBlogCategoryRepository(application.DB)
	chatRepo := repositories.NewChatRepository(application.DB)
	notifRepo := repositories.NewNotificationRepository(application.DB)
	settingsRepo := repositories.NewSettingsRepository(application.DB)

	var (
		rateLimitRepo internalrepos.RateLimitRepository
		cache         redis.Cmdable
	)
	if application.Redis != nil {
		rateLimitRepo = internalrepos.NewRedisRateLimitRepository(application.Redis, clock.WallClock)
		cache = application.Redis
	} else {
		utils.Logger.Warn("REDIS_URL not set; rate limits are per-process and the dashboard is uncached")
		rateLimitRepo = internalrepos.NewMemoryRateLimitRepository(clock.WallClock)
	}

	//----------------------------------------------------------------------
	// Notification delivery
	//----------------------------------------------------------------------
	queueOpts := services.QueueOptions{
		Workers:     cfg.NotifyWorkers,
		MaxAttempts: cfg.NotifyMaxAttempts,
		BufferSize:  cfg.NotifyQueueSize,
		Clock:       clock.WallClock,
		Metrics:     metrics,
	}
	var queue services.TaskQueue
	if cfg.RabbitMQURL != "" {
		queue, err = services.NewRabbitMQTaskQueue(cfg.RabbitMQURL, queueOpts)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
	} else {
		queue = services.NewMemoryTaskQueue(queueOpts)
	}

	alerter, err := services.NewTelegramAlerter(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to initialize Telegram alerter")
	}
	dispatcher := services.NewNotificationDispatcher(
		queue,
		services.NewEmailSender(cfg),
		alerter,
		notifRepo,
		cfg.AdminNotificationEmail,
	)
	if err := queue.Start(ctx, dispatcher.Deliver); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to start notification workers")
	}

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	limiter := services.NewRateLimiterService(rateLimitRepo, cfg, metrics)
	limiterCleanup := services.NewRateLimitCleanupService(rateLimitRepo)
	matchService := services.NewMatchService(requestRepo, favoriteRepo, userRepo, dispatcher, cfg)
	propertyService := services.NewPropertyService(propertyRepo, favoriteRepo, matchService)
	userService := services.NewUserService(userRepo, limiter, cfg)
	favoriteService := services.NewFavoriteService(favoriteRepo, propertyRepo)
	appointmentService := services.NewAppointmentService(appointmentRepo, propertyRepo, userRepo, dispatcher, cfg)
	requestService := services.NewRequestService(requestRepo, userRepo, dispatcher)
	inquiryService := services.NewInquiryService(inquiryRepo, dispatcher)
	leadService := services.NewLeadService(inquiryRepo, requestRepo)
	analyticsService := services.NewAnalyticsService(eventRepo, propertyRepo, userRepo, leadService, cache, cfg)
	cleanupService := services.NewCleanupService(eventRepo, notifRepo, cfg, metrics, clock.WallClock)
	blogService := services.NewBlogService(blogRepo, categoryRepo)
	chatService := services.NewChatService(chatRepo, limiter)
	notificationService := services.NewNotificationService(notifRepo, userRepo)
	settingsService := services.NewSettingsService(settingsRepo)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := seeding.SeedAll(ctx, propertyRepo, blogRepo, categoryRepo); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		} else {
			utils.Logger.Info("Seeded test data successfully")
		}
	}

	healthController := controllers.NewHealthController(application)
	propertiesController := controllers.NewPropertiesController(propertyService)
	usersController := controllers.NewUsersController(userService, favoriteService)
	appointmentsController := controllers.NewAppointmentsController(appointmentService)
	requestsController := controllers.NewRequestsController(requestService)
	inquiriesController := controllers.NewInquiriesController(inquiryService)
	leadsController := controllers.NewLeadsController(leadService)
	analyticsController := controllers.NewAnalyticsController(analyticsService, cleanupService)
	blogsController := controllers.NewBlogsController(blogService)
	chatController := controllers.NewChatController(chatService)
	notificationsController := controllers.NewNotificationsController(notificationService)
	settingsController := controllers.NewSettingsController(settingsService)

	router := mux.NewRouter()
	router.Use(
		middleware.RecoverMiddleware,
		middleware.SecurityHeadersMiddleware(cfg.LDFlag_ForceHTTPS),
		middleware.NewHTTPMetrics(reg).Middleware,
	)

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	router.HandleFunc(routes.Properties, propertiesController.ListPropertiesHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertyTypes, propertiesController.PropertyTypesHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Property, propertiesController.GetPropertyHandler).Methods(http.MethodGet)

	router.HandleFunc(routes.Blogs, blogsController.ListBlogsHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Blog, blogsController.GetBlogHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.BlogCategories, blogsController.ListCategoriesHandler).Methods(http.MethodGet)

	router.HandleFunc(routes.SettingsPublic, settingsController.PublicSettingsHandler).Methods(http.MethodGet)

	// Anonymous or signed in
	optional := router.NewRoute().Subrouter()
	optional.Use(middleware.OptionalAuthMiddleware(cfg.JWTPublicKey, cfg.JWTIssuer))

	optional.HandleFunc(routes.Inquiries, inquiriesController.CreateInquiryHandler).Methods(http.MethodPost)
	optional.HandleFunc(routes.AnalyticsTrack, analyticsController.TrackEventHandler).Methods(http.MethodPost)

	// Signed in
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.JWTPublicKey, cfg.JWTIssuer))

	secured.HandleFunc(routes.UsersSync, usersController.SyncUserHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.UsersMe, usersController.MeHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UserFavorites, usersController.ListFavoritesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UserFavorites, usersController.AddFavoriteHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.UserFavorite, usersController.RemoveFavoriteHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.UserAppointments, appointmentsController.ListUserAppointmentsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UserRequests, requestsController.ListUserRequestsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UserInquiries, inquiriesController.ListUserInquiriesHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.Appointments, appointmentsController.CreateAppointmentHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AppointmentCancel, appointmentsController.CancelAppointmentHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.Requests, requestsController.CreateRequestHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Request, requestsController.UpdateRequestStatusHandler).Methods(http.MethodPatch)

	secured.HandleFunc(routes.ChatSend, chatController.SendMessageHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ChatRead, chatController.MarkReadHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ChatMessages, chatController.ListMessagesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.ChatConversations, chatController.ListConversationsHandler).Methods(http.MethodGet)

	// Fixed segments first so "read-all" and "preferences" never bind {id}.
	secured.HandleFunc(routes.Notifications, notificationsController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NotificationsReadAll, notificationsController.MarkAllReadHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.NotificationsPreference, notificationsController.GetPreferencesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NotificationsPreference, notificationsController.UpdatePreferencesHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.NotificationRead, notificationsController.MarkReadHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.Notification, notificationsController.DeleteHandler).Methods(http.MethodDelete)

	// Admin
	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AdminAuthMiddleware(cfg.JWTPublicKey, cfg.JWTIssuer))

	admin.HandleFunc(routes.Properties, propertiesController.CreatePropertyHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.Property, propertiesController.UpdatePropertyHandler).Methods(http.MethodPut)
	admin.HandleFunc(routes.Property, propertiesController.DeletePropertyHandler).Methods(http.MethodDelete)
	admin.HandleFunc(routes.PropertyHistory, propertiesController.PropertyHistoryHandler).Methods(http.MethodGet)

	admin.HandleFunc(routes.AdminUsers, usersController.ListUsersHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminUserRole, usersController.UpdateRoleHandler).Methods(http.MethodPatch)

	admin.HandleFunc(routes.AdminAppointments, appointmentsController.ListAllAppointmentsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminAppointment, appointmentsController.UpdateAppointmentStatusHandler).Methods(http.MethodPatch)
	admin.HandleFunc(routes.AdminRequests, requestsController.ListAllRequestsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminInquiries, inquiriesController.ListAllInquiriesHandler).Methods(http.MethodGet)

	admin.HandleFunc(routes.AdminLeads, leadsController.ListLeadsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminLeadsExport, leadsController.ExportLeadsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminLead, leadsController.GetLeadHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminLead, leadsController.UpdateLeadHandler).Methods(http.MethodPatch)
	admin.HandleFunc(routes.AdminLeadNotes, leadsController.AddLeadNoteHandler).Methods(http.MethodPost)

	admin.HandleFunc(routes.AnalyticsDashboard, analyticsController.DashboardHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AnalyticsMonthly, analyticsController.MonthlyStatsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminCleanup, analyticsController.CleanupHandler).Methods(http.MethodDelete)

	admin.HandleFunc(routes.AdminBlogs, blogsController.AdminListBlogsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminBlogs, blogsController.CreateBlogHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminBlog, blogsController.UpdateBlogHandler).Methods(http.MethodPut)
	admin.HandleFunc(routes.AdminBlog, blogsController.DeleteBlogHandler).Methods(http.MethodDelete)
	admin.HandleFunc(routes.AdminBlogCategories, blogsController.CreateCategoryHandler).Methods(http.MethodPost)

	admin.HandleFunc(routes.AdminSettings, settingsController.GetSettingsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminSettings, settingsController.UpdateSettingsHandler).Methods(http.MethodPut)

	//----------------------------------------------------------------------
	// Scheduled jobs
	//----------------------------------------------------------------------
	c := cron.New()
	_, cleanupErr := c.AddFunc(cfg.CleanupSchedule, func() {
		if e := cleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled cleanup failed")
		}
	})
	if cleanupErr != nil {
		utils.Logger.WithError(cleanupErr).Fatal("Failed to schedule cleanup cron")
	}

	_, pruneErr := c.AddFunc("@hourly", func() {
		if e := limiterCleanup.CleanupHourly(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Rate limit pruning failed")
		}
	})
	if pruneErr != nil {
		utils.Logger.WithError(pruneErr).Fatal("Failed to schedule rate limit pruning cron")
	}
	c.Start()

	allowedOrigins := append([]string{cfg.PublicSiteURL}, cfg.AllowedOrigins...)
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           co.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("estate-service failed to start:", err)
		}
	}()

	<-ctx.Done()
	utils.Logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	<-c.Stop().Done()
	queue.Close()
}
