package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/middleware"
)

// CORSMiddleware allows the storefront frontend to call the API with
// credentials (the session cookie).
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SetupRouter wires every endpoint. Catalog routes are public; cart routes
// go through the identity middleware so each request carries exactly one of
// a user id or a session key.
func SetupRouter(h *handlers.Handlers, jwtSecret []byte) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware("http://localhost:5173"))

	v1 := router.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Public Catalog Routes ---
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:slug", h.GetProduct)
		v1.GET("/categories", h.GetAllCategories)
		v1.GET("/categories/:slug/products", h.CategoryProducts)
		v1.GET("/brands", h.GetAllBrands)

		// --- Cart Routes (user or anonymous session) ---
		cartRoutes := v1.Group("/cart")
		cartRoutes.Use(middleware.Identity(jwtSecret))
		{
			cartRoutes.GET("", h.GetCart)
			cartRoutes.GET("/count", h.GetCartCount)
			cartRoutes.POST("/items", h.AddToCart)
			cartRoutes.PUT("/items/:id", h.UpdateCartItem)
			cartRoutes.DELETE("/items/:id", h.DeleteCartItem)
			cartRoutes.DELETE("", h.ClearCart)
		}
	}

	return router
}
