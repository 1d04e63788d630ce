package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/fathima-sithara/chat-backend/internal/handlers"
	"github.com/fathima-sithara/chat-backend/internal/metrics"
)

// NewServer builds the fiber app and mounts all routes.
func NewServer(conv *handlers.ConversationHandler, prof *handlers.ProfileHandler, img *handlers.ImageHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "chat-backend",
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	conversations := api.Group("/conversations")
	conversations.Post("/", conv.AddConversation)
	conversations.Get("/", conv.ListConversations)
	conversations.Post("/:conversationId/messages", conv.SendMessage)
	conversations.Get("/:conversationId/messages", conv.ListMessages)

	profile := api.Group("/profile")
	profile.Post("/", prof.AddProfile)
	profile.Get("/:username", prof.GetProfile)
	profile.Delete("/:username", prof.DeleteProfile)

	images := api.Group("/images")
	images.Post("/", img.UploadImage)
	images.Get("/:id", img.DownloadImage)
	images.Delete("/:id", img.DeleteImage)

	return app
}
