package repositories

const (
	CollProperties       = "properties"
	CollPropertyRequests = "property_requests"
	CollInquiries        = "inquiries"
	CollAppointments     = "appointments"
	CollAdmissionGuards  = "appointment_guards"
	CollFavorites        = "favorites"
	CollPropertyWatchers = "property_watchers"
	CollEvents           = "events"
	CollStats            = "stats"
	CollMonthlyStats     = "monthly_stats"
	CollUsers            = "users"
	CollNotifications    = "notifications"
	CollBlogs            = "blogs"
	CollBlogCategories   = "blog_categories"
	CollConversations    = "conversations"
	CollMessages         = "messages"
	CollSettings         = "settings"
)
