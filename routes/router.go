package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/terragrow/storefront/cache"
	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/controllers"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/metrics"
	"github.com/terragrow/storefront/middleware"
	"github.com/terragrow/storefront/models"
)

// Account covers both the auth flows and the signed-in profile.
type Account interface {
	controllers.AuthService
	controllers.ProfileService
}

type Catalog interface {
	controllers.CategoryService
	controllers.ProductService
}

// Services is everything the HTTP layer calls into.
type Services struct {
	Account       Account
	Users         controllers.UserAdmin
	Catalog       Catalog
	Reviews       controllers.ReviewService
	Blogs         controllers.BlogService
	Search        controllers.Searcher
	Newsletter    controllers.NewsletterService
	Wishlist      controllers.WishlistService
	Cart          controllers.CartService
	Orders        controllers.OrderService
	Returns       controllers.ReturnService
	Notifications controllers.NotificationService
	Dashboard     controllers.Dashboard
}

// Deps are the infrastructure pieces the middleware needs.
type Deps struct {
	Metrics *metrics.Metrics
	Limiter cache.RateLimiter
	Ping    func(context.Context) error
}

func NewRouter(cfg *config.Config, log *logger.Logger, svc Services, deps Deps) *gin.Engine {
	if !cfg.App.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Limiter == nil {
		deps.Limiter = cache.Disabled{}
	}

	r := gin.New()
	r.Use(middleware.Recoverer(log), middleware.RequestID(log), middleware.Logging(log))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	allowed := cfg.CORS.Origins()
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowed[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	if deps.Ping != nil {
		r.GET("/healthz", controllers.Health(deps.Ping, cfg.Mongo.OpTimeout, log))
	}
	r.NoRoute(middleware.NoRoute)

	q := cfg.Query
	authed := middleware.Auth(cfg.JWT.Secret, log)
	api := r.Group("/api")

	auth := api.Group("/auth", middleware.RateLimit("auth", deps.Limiter, cfg.RateLimit.AuthIPLimit, cfg.RateLimit.AuthIPWindow, log))
	{
		auth.POST("/signup", controllers.Signup(svc.Account, log))
		auth.POST("/login", controllers.Login(svc.Account, cfg.Cookie, log))
		auth.POST("/refresh", controllers.Refresh(svc.Account, cfg.Cookie, log))
		auth.POST("/logout", controllers.Logout(svc.Account, cfg.Cookie, log))
		auth.POST("/forgot-password", controllers.ForgotPassword(svc.Account, log))
		auth.POST("/reset-password", controllers.ResetPassword(svc.Account, log))
		auth.POST("/verify", controllers.VerifyEmail(svc.Account, log))
		auth.POST("/resend-verification", authed, controllers.ResendVerification(svc.Account, log))
	}

	// public catalog and content
	api.GET("/products", controllers.GetProducts(svc.Catalog, q, log))
	api.GET("/products/:slug", controllers.GetProductBySlug(svc.Catalog, log))
	api.GET("/products/:slug/reviews", controllers.GetReviews(svc.Reviews, q, log))
	api.POST("/products/:slug/reviews", authed, controllers.AddReview(svc.Reviews, log))
	api.GET("/categories", controllers.GetCategories(svc.Catalog, q, log))
	api.GET("/categories/:id", controllers.GetCategory(svc.Catalog, log))
	api.GET("/categories/slug/:slug", controllers.GetCategoryBySlug(svc.Catalog, log))
	api.GET("/blogs", controllers.GetBlogs(svc.Blogs, log))
	api.GET("/blogs/:slug", controllers.GetBlogBySlug(svc.Blogs, log))
	api.GET("/search", controllers.Search(svc.Search))
	api.POST("/newsletter/subscribe", controllers.Subscribe(svc.Newsletter, log))
	api.POST("/newsletter/unsubscribe", controllers.Unsubscribe(svc.Newsletter, log))

	me := api.Group("", authed)
	{
		me.GET("/me", controllers.GetMe(svc.Account, log))
		me.PATCH("/me", controllers.UpdateMe(svc.Account, log))
		me.POST("/me/password", controllers.ChangeMyPassword(svc.Account, log))

		me.GET("/wishlist", controllers.GetWishlist(svc.Wishlist, log))
		me.GET("/wishlist/view", controllers.ViewWishlist(svc.Wishlist, log))
		me.POST("/wishlist", controllers.AddToWishlist(svc.Wishlist, log))
		me.DELETE("/wishlist/:productId", controllers.RemoveFromWishlist(svc.Wishlist, log))
		me.DELETE("/wishlist", controllers.ClearWishlist(svc.Wishlist, log))

		me.GET("/cart", controllers.GetCart(svc.Cart, log))
		me.POST("/cart", controllers.AddToCart(svc.Cart, log))
		me.PATCH("/cart/:productId", controllers.UpdateCartItem(svc.Cart, log))
		me.DELETE("/cart/:productId", controllers.RemoveFromCart(svc.Cart, log))
		me.DELETE("/cart", controllers.ClearCart(svc.Cart, log))

		me.POST("/orders", controllers.PlaceOrder(svc.Orders, log))
		me.GET("/orders", controllers.GetMyOrders(svc.Orders, q, log))
		me.GET("/orders/:id", controllers.GetMyOrder(svc.Orders, log))

		me.POST("/returns", controllers.CreateReturnRequest(svc.Returns, log))
		me.GET("/returns", controllers.GetMyReturnRequests(svc.Returns, q, log))
		me.GET("/returns/:id", controllers.GetMyReturnRequest(svc.Returns, log))

		me.GET("/notifications", controllers.GetNotifications(svc.Notifications, q, log))
		me.POST("/notifications/read-all", controllers.MarkAllNotificationsRead(svc.Notifications, log))
		me.POST("/notifications/:id/read", controllers.MarkNotificationRead(svc.Notifications, log))
	}

	// moderators can read the dashboard and orders, everything else is admin only
	staff := api.Group("/admin", authed, middleware.RequireRoles(log, models.RoleAdmin, models.RoleModerator))
	{
		staff.GET("/stats", controllers.GetDashboardStats(svc.Dashboard, log))
		staff.GET("/orders", controllers.GetOrders(svc.Orders, q, log))
		staff.GET("/orders/:id", controllers.GetOrder(svc.Orders, log))
	}

	admin := api.Group("/admin", authed, middleware.RequireRoles(log, models.RoleAdmin))
	{
		admin.PATCH("/orders/:id/status", controllers.UpdateOrderStatus(svc.Orders, log))
		admin.POST("/orders/:id/notes", controllers.AddOrderNote(svc.Orders, log))

		admin.GET("/products", controllers.AdminGetProducts(svc.Catalog, q, log))
		admin.GET("/products/:id", controllers.GetProduct(svc.Catalog, log))
		admin.POST("/products", controllers.AddProduct(svc.Catalog, log))
		admin.PATCH("/products/:id", controllers.UpdateProduct(svc.Catalog, log))
		admin.DELETE("/products/:id", controllers.DeleteProduct(svc.Catalog, log))

		admin.POST("/categories", controllers.AddCategory(svc.Catalog, log))
		admin.PATCH("/categories/:id", controllers.UpdateCategory(svc.Catalog, log))
		admin.DELETE("/categories/:id", controllers.DeleteCategory(svc.Catalog, log))

		admin.GET("/blogs", controllers.AdminGetBlogs(svc.Blogs, q, log))
		admin.POST("/blogs", controllers.AddBlog(svc.Blogs, log))
		admin.PATCH("/blogs/:id", controllers.UpdateBlog(svc.Blogs, log))
		admin.DELETE("/blogs/:id", controllers.DeleteBlog(svc.Blogs, log))

		admin.GET("/newsletter", controllers.GetSubscribers(svc.Newsletter, q, log))

		admin.GET("/returns", controllers.GetReturnRequests(svc.Returns, q, log))
		admin.GET("/returns/:id", controllers.GetReturnRequest(svc.Returns, log))
		admin.GET("/returns/:id/notes", controllers.GetReturnNotes(svc.Returns, log))
		admin.PATCH("/returns/:id/status", controllers.UpdateReturnStatus(svc.Returns, log))
		admin.POST("/returns/:id/notes", controllers.AddReturnNote(svc.Returns, log))
		admin.POST("/returns/:id/refunds", controllers.IssueRefund(svc.Returns, log))
		admin.GET("/returns/:id/refunds", controllers.GetRefunds(svc.Returns, log))

		admin.GET("/users", controllers.ListUsers(svc.Users, q, log))
		admin.POST("/users", controllers.CreateUser(svc.Users, log))
		admin.PATCH("/users/:id/role", controllers.UpdateUserRole(svc.Users, log))
		admin.PATCH("/users/:id/active", controllers.SetUserActive(svc.Users, log))
		admin.DELETE("/users/:id", controllers.DeleteUser(svc.Users, log))
		admin.POST("/users/:id/achievements", controllers.AddAchievement(svc.Users, log))
	}

	return r
}
