package router

import (
	"campus_canteen/constants"
	"campus_canteen/handler"
	"campus_canteen/middleware"
	"campus_canteen/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	shop := v1.Group("/shops", logger.New())
	shop.Get("/", handler.GetShops)
	shop.Get("/me", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), handler.GetMyShop)
	shop.Post("/", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), validate.CreateShop(), handler.CreateShop)
	shop.Put("/me", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), validate.UpdateShop(), handler.UpdateShop)
	shop.Delete("/me", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), handler.DeactivateShop)
	shop.Get("/:shopId/menu", validate.UUIDParam("shopId"), handler.GetMenuItems)

	menu := v1.Group("/menu", logger.New())
	menu.Post("/", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), validate.MenuItem(), handler.CreateMenuItem)
	menu.Put("/:itemId", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), validate.UUIDParam("itemId"), validate.MenuItem(), handler.UpdateMenuItem)
	menu.Patch("/:itemId/stock", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), validate.UUIDParam("itemId"), handler.ToggleMenuItemStock)
	menu.Delete("/:itemId", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), validate.UUIDParam("itemId"), handler.DeleteMenuItem)

	order := v1.Group("/orders", logger.New())
	order.Get("/", middleware.Protected(), handler.GetMyOrders)
	order.Get("/shop", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), handler.GetShopOrders)
	order.Post("/", middleware.Protected(), middleware.RequireRole(constants.ROLE_STUDENT), validate.CreateOrder(), handler.CreateOrder)
	order.Patch("/:orderId/status", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), validate.UUIDParam("orderId"), handler.UpdateOrderStatus)
	order.Post("/:orderId/cancel", middleware.Protected(), middleware.RequireRole(constants.ROLE_STUDENT), validate.UUIDParam("orderId"), handler.CancelOrder)
	order.Patch("/:orderId/payment", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), validate.UUIDParam("orderId"), handler.UpdatePaymentStatus)
	order.Post("/:orderId/payment-proof", middleware.Protected(), middleware.RequireRole(constants.ROLE_STUDENT), validate.UUIDParam("orderId"), handler.SubmitPaymentProof)

	order.Get("/:orderId/qr", middleware.Protected(), validate.UUIDParam("orderId"), handler.GetPaymentQR)
	order.Post("/:orderId/screenshot", middleware.Protected(), validate.UUIDParam("orderId"), handler.UploadPaymentScreenshot)
	v1.Post("/cloudinary-signature", middleware.Protected(), handler.GenerateUploadSignature)

	chat := v1.Group("/chat", logger.New())
	chat.Get("/:orderId", middleware.Protected(), validate.UUIDParam("orderId"), handler.GetOrderMessages)
	chat.Post("/:orderId", middleware.Protected(), validate.UUIDParam("orderId"), handler.SendOrderMessage)
	chat.Post("/:orderId/read", middleware.Protected(), validate.UUIDParam("orderId"), handler.MarkMessagesRead)

	notification := v1.Group("/notifications", logger.New())
	notification.Get("/", middleware.Protected(), handler.GetNotifications)
	notification.Patch("/read-all", middleware.Protected(), handler.MarkAllNotificationsRead)
	notification.Patch("/:notificationId/read", middleware.Protected(), validate.UUIDParam("notificationId"), handler.MarkNotificationRead)
	notification.Delete("/:notificationId", middleware.Protected(), validate.UUIDParam("notificationId"), handler.DeleteNotification)

	favourite := v1.Group("/favourites", logger.New())
	favourite.Get("/shops", middleware.Protected(), handler.GetFavouriteShops)
	favourite.Post("/shops/:shopId", middleware.Protected(), validate.UUIDParam("shopId"), handler.ToggleFavouriteShop)
	favourite.Get("/items", middleware.Protected(), handler.GetFavouriteItems)
	favourite.Post("/items/:itemId", middleware.Protected(), validate.UUIDParam("itemId"), handler.ToggleFavouriteItem)

	vetting := v1.Group("/shopkeeper-verification", logger.New())
	vetting.Post("/send", middleware.Protected(), handler.SendShopkeeperVerification)
	vetting.Post("/verify", middleware.Protected(), handler.VerifyShopkeeperCode)

	ws := v1.Group("/ws")
	ws.Get("/orders/user", middleware.Protected(), websocket.New(handler.OrderUserSocket))
	ws.Get("/orders/shop", middleware.Protected(), middleware.RequireRole(constants.ROLE_SHOPKEEPER), websocket.New(handler.OrderShopSocket))
	ws.Get("/chat/:orderId", middleware.Protected(), websocket.New(handler.ChatSocket))
	ws.Get("/notifications", middleware.Protected(), websocket.New(handler.NotificationSocket))
	ws.Get("/shops", websocket.New(handler.ShopsSocket))
}
