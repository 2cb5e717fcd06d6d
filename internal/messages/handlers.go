package messages

import (
	"backend-numeneon/internal/auth"
	"backend-numeneon/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, writeLimit fiber.Handler) {
	r.Get("/conversations", authMiddleware, func(c *fiber.Ctx) error {
		convs, err := svc.Conversations(c.Context(), auth.UserID(c))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(convs)
	})

	r.Get("/conversations/:userID", authMiddleware, func(c *fiber.Ctx) error {
		msgs, err := svc.Conversation(c.Context(), auth.UserID(c), c.Params("userID"))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(msgs)
	})

	r.Get("/unread_count", authMiddleware, func(c *fiber.Ctx) error {
		n, err := svc.UnreadCount(c.Context(), auth.UserID(c))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(fiber.Map{"unread_count": n})
	})

	r.Post("/", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var req SendInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		msg, err := svc.Send(c.Context(), auth.UserID(c), req)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	})

	r.Patch("/:id/read", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.MarkRead(c.Context(), c.Params("id"), auth.UserID(c)); err != nil {
			return apperr.HTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/read_all", authMiddleware, func(c *fiber.Ctx) error {
		otherID := c.Query("user_id")
		if otherID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		n, err := svc.MarkAllRead(c.Context(), auth.UserID(c), otherID)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(fiber.Map{"updated": n})
	})
}
