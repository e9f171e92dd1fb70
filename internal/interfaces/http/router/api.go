package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopcart/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoint handlers mounted under the API prefix
type Handlers struct {
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Cart     *handler.CartHandler
	Auth     *handler.AuthHandler
	System   *handler.SystemHandler
}

// Guards are the access checks placed in front of protected routes.
// Authenticate resolves the caller from the bearer token; ManageCatalog
// additionally requires the catalog management permission. Throttle, when
// set, runs in front of the credential endpoints.
type Guards struct {
	Authenticate  gin.HandlerFunc
	ManageCatalog gin.HandlerFunc
	Throttle      gin.HandlerFunc
}

// RegisterAPI registers the storefront routes on r
func RegisterAPI(r *Router, h Handlers, g Guards) *Router {
	admin := []gin.HandlerFunc{g.Authenticate, g.ManageCatalog}
	throttled := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if g.Throttle == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{g.Throttle, h}
	}

	products := NewDomainGroup("/products")
	products.
		GET("", h.Product.List).
		GET("/featured", h.Product.Featured).
		GET("/search", h.Product.Search).
		GET("/:id", h.Product.GetByID).
		POST("", append(admin, h.Product.Create)...).
		PUT("/:id", append(admin, h.Product.Update)...).
		PATCH("/:id", append(admin, h.Product.Patch)...).
		DELETE("/:id", append(admin, h.Product.Delete)...)

	categories := NewDomainGroup("/categories")
	categories.
		GET("", h.Category.List).
		GET("/:id", h.Category.GetByID).
		POST("", append(admin, h.Category.Create)...).
		PUT("/:id", append(admin, h.Category.Update)...).
		PATCH("/:id", append(admin, h.Category.Patch)...).
		DELETE("/:id", append(admin, h.Category.Delete)...)

	cart := NewDomainGroup("/cart").Use(g.Authenticate)
	cart.
		GET("", h.Cart.Get).
		POST("/add", h.Cart.Add).
		PUT("/items/:id", h.Cart.UpdateItem).
		DELETE("/items/:id", h.Cart.RemoveItem).
		DELETE("/clear", h.Cart.Clear)

	authGroup := NewDomainGroup("/auth")
	authGroup.
		POST("/register", throttled(h.Auth.Register)...).
		POST("/login", throttled(h.Auth.Login)...).
		POST("/token/refresh", throttled(h.Auth.RefreshToken)...).
		POST("/logout", g.Authenticate, h.Auth.Logout).
		GET("/profile", g.Authenticate, h.Auth.GetProfile).
		PUT("/profile", g.Authenticate, h.Auth.UpdateProfile).
		PUT("/password", g.Authenticate, h.Auth.ChangePassword)

	system := NewDomainGroup("/system")
	system.
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping).
		GET("/health", h.System.Health)

	return r.Register(products).
		Register(categories).
		Register(cart).
		Register(authGroup).
		Register(system)
}
