package friends

import (
	"backend-numeneon/internal/auth"
	"backend-numeneon/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, writeLimit fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		friends, err := svc.List(c.Context(), auth.UserID(c))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(friends)
	})

	r.Get("/requests", authMiddleware, func(c *fiber.Ctx) error {
		requests, err := svc.Pending(c.Context(), auth.UserID(c))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(requests)
	})

	r.Post("/requests/:userID", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		req, err := svc.SendRequest(c.Context(), auth.UserID(c), c.Params("userID"))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	})

	r.Post("/requests/:id/accept", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		if err := svc.Accept(c.Context(), c.Params("id"), auth.UserID(c)); err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(fiber.Map{"status": statusAccepted})
	})

	r.Post("/requests/:id/decline", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		if err := svc.Decline(c.Context(), c.Params("id"), auth.UserID(c)); err != nil {
			return apperr.HTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/:userID", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		if err := svc.Remove(c.Context(), auth.UserID(c), c.Params("userID")); err != nil {
			return apperr.HTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
