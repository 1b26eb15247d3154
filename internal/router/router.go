package router

import (
	"github.com/gin-gonic/gin"
	"github.com/valorin/storefront-backend/config"
	"github.com/valorin/storefront-backend/internal/app/controller"
	"github.com/valorin/storefront-backend/internal/app/store"
	"github.com/valorin/storefront-backend/internal/middleware"
	"github.com/valorin/storefront-backend/internal/ws"
)

type Router struct {
	cartController     *controller.CartController
	wishlistController *controller.WishlistController
	catalogController  *controller.CatalogController
	hub                *ws.Hub
	cartStore          *store.CartStore
	config             *config.Config
}

func NewRouter(
	cartController *controller.CartController,
	wishlistController *controller.WishlistController,
	catalogController *controller.CatalogController,
	hub *ws.Hub,
	cartStore *store.CartStore,
	cfg *config.Config,
) *Router {
	return &Router{
		cartController:     cartController,
		wishlistController: wishlistController,
		catalogController:  catalogController,
		hub:                hub,
		cartStore:          cartStore,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	router.GET("/ws", ws.Serve(r.hub, r.cartStore, r.config.CORS.AllowedOrigins))

	v1 := router.Group("/api/v1")
	{
		cart := v1.Group("/cart")
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items", r.cartController.UpdateQuantity)
			cart.DELETE("/items", r.cartController.RemoveItem)
			cart.PUT("/open", r.cartController.SetOpen)
			cart.POST("/sync", r.cartController.SyncCart)
			cart.GET("/checkout-url", r.cartController.GetCheckoutURL)
		}

		wishlist := v1.Group("/wishlist")
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("", r.wishlistController.AddToWishlist)
			wishlist.DELETE("", r.wishlistController.RemoveFromWishlist)
			wishlist.DELETE("/all", r.wishlistController.ClearWishlist)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.catalogController.GetProducts)
			products.GET("/:handle", r.catalogController.GetProductByHandle)
		}

		collections := v1.Group("/collections")
		{
			collections.GET("", r.catalogController.GetCollections)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
