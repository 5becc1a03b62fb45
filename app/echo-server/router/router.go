package router

import (
	"smartPricing/internal/middleware"
	"smartPricing/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetPricingRoutes(api *echo.Group, handler *rest.PricingHandler) {
	pricing := api.Group("/pricing")
	pricing.POST("/quote", handler.Quote)
	pricing.POST("/outcomes/add-to-cart", handler.AddToCart)
	pricing.POST("/outcomes/begin-checkout", handler.BeginCheckout)
	pricing.POST("/outcomes/purchase", handler.Purchase)
}

func SetOfferRoutes(api *echo.Group, handler *rest.OfferHandler) {
	offers := api.Group("/offers")
	offers.POST("/cart", handler.CartOffer)
	offers.POST("/outcomes/purchase", handler.Purchase)
}

func SetReportRoutes(api *echo.Group, handler *rest.ReportHandler) {
	reports := api.Group("/reports")
	reports.GET("/sales", handler.Sales)
	reports.GET("/offers", handler.Offers)
}

func SetBanditAdminRoutes(api *echo.Group, handler *rest.BanditAdminHandler, jwtSecret string) {
	admin := api.Group("/admin/bandit", middleware.AuthMiddleware(jwtSecret), middleware.AdminOnly())

	admin.GET("/stats", handler.GetStats)
	admin.GET("/config", handler.GetConfig)
	admin.PUT("/config", handler.UpdateConfig)
	admin.POST("/simulate", handler.Simulate)
}
