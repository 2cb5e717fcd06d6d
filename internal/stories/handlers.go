package stories

import (
	"backend-numeneon/internal/auth"
	"backend-numeneon/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, writeLimit fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		groups, err := svc.Active(c.Context(), auth.UserID(c))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(groups)
	})

	r.Get("/user/:userID", authMiddleware, func(c *fiber.Ctx) error {
		stories, err := svc.ByUser(c.Context(), auth.UserID(c), c.Params("userID"))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(stories)
	})

	r.Post("/", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var req CreateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		story, err := svc.Create(c.Context(), auth.UserID(c), req)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(story)
	})

	r.Delete("/:id", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id"), auth.UserID(c)); err != nil {
			return apperr.HTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/view", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.MarkViewed(c.Context(), c.Params("id"), auth.UserID(c)); err != nil {
			return apperr.HTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/react", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var body struct {
			Emoji string `json:"emoji"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		reaction, err := svc.React(c.Context(), c.Params("id"), auth.UserID(c), body.Emoji)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(reaction)
	})

	r.Delete("/:id/react", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		if err := svc.RemoveReaction(c.Context(), c.Params("id"), auth.UserID(c)); err != nil {
			return apperr.HTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
