package routes

const (
	// Health
	Health  = "/health"
	Metrics = "/metrics"

	// Properties
	Properties      = "/api/properties"
	Property        = "/api/properties/{id}"
	PropertyHistory = "/api/properties/{id}/history"
	PropertyTypes   = "/api/property-types"

	// Users
	UsersSync        = "/api/users/sync"
	UsersMe          = "/api/users/me"
	UserFavorites    = "/api/users/{user_id}/favorites"
	UserFavorite     = "/api/users/{user_id}/favorites/{property_id}"
	UserAppointments = "/api/users/{user_id}/appointments"
	UserRequests     = "/api/users/{user_id}/requests"
	UserInquiries    = "/api/users/{user_id}/inquiries"

	// Appointments
	Appointments      = "/api/appointments"
	AppointmentCancel = "/api/appointments/{id}/cancel"

	// Buyer requests
	Requests = "/api/requests"
	Request  = "/api/requests/{id}"

	// Inquiries
	Inquiries = "/api/inquiries"

	// Analytics
	AnalyticsTrack     = "/api/analytics/track"
	AnalyticsDashboard = "/api/analytics/dashboard"
	AnalyticsMonthly   = "/api/analytics/monthly"

	// Blogs
	Blogs          = "/api/blogs"
	Blog           = "/api/blogs/{slug}"
	BlogCategories = "/api/blog-categories"

	// Chat
	ChatSend          = "/api/chat/send"
	ChatRead          = "/api/chat/read"
	ChatConversations = "/api/chat/conversations/{user_id}"
	ChatMessages      = "/api/chat/conversations/{conversation_id}/messages"

	// Notifications
	Notifications           = "/api/notifications"
	NotificationsReadAll    = "/api/notifications/read-all"
	NotificationsPreference = "/api/notifications/preferences"
	NotificationRead        = "/api/notifications/{id}/read"
	Notification            = "/api/notifications/{id}"

	// Settings
	SettingsPublic = "/api/settings/public"

	// Admin
	AdminUsers          = "/api/admin/users"
	AdminUserRole       = "/api/admin/users/{user_id}/role"
	AdminAppointments   = "/api/admin/appointments"
	AdminAppointment    = "/api/admin/appointments/{id}"
	AdminRequests       = "/api/admin/requests"
	AdminInquiries      = "/api/admin/inquiries"
	AdminLeads          = "/api/admin/leads"
	AdminLeadsExport    = "/api/admin/leads/export"
	AdminLead           = "/api/admin/leads/{type}/{id}"
	AdminLeadNotes      = "/api/admin/leads/{type}/{id}/notes"
	AdminCleanup        = "/api/admin/cleanup"
	AdminBlogs          = "/api/admin/blogs"
	AdminBlog           = "/api/admin/blogs/{id}"
	AdminBlogCategories = "/api/admin/blog-categories"
	AdminSettings       = "/api/admin/settings/{type}"
)
