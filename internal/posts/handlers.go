package posts

import (
	"backend-numeneon/internal/auth"
	"backend-numeneon/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the post endpoints. writeLimit guards every route
// that creates or changes data.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, writeLimit fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		posts, err := svc.List(c.Context(), auth.UserID(c), c.Query("username"))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(posts)
	})

	r.Get("/river", authMiddleware, func(c *fiber.Ctx) error {
		userID := auth.UserID(c)
		if username := c.Query("username"); username != "" {
			rivers, err := svc.ProfileRiver(c.Context(), userID, username)
			if err != nil {
				return apperr.HTTP(err)
			}
			return c.JSON(rivers)
		}
		rivers, err := svc.River(c.Context(), userID)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(rivers)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		post, err := svc.Get(c.Context(), c.Params("id"), auth.UserID(c))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(post)
	})

	r.Get("/:id/replies", authMiddleware, func(c *fiber.Ctx) error {
		replies, err := svc.Replies(c.Context(), c.Params("id"), auth.UserID(c))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(replies)
	})

	r.Post("/", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var req CreateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		post, err := svc.Create(c.Context(), auth.UserID(c), req)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	})

	r.Post("/:id/replies", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var req CreateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		reply, err := svc.CreateReply(c.Context(), c.Params("id"), auth.UserID(c), req)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(reply)
	})

	r.Patch("/:id", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var req UpdateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		post, err := svc.Update(c.Context(), c.Params("id"), auth.UserID(c), req)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(post)
	})

	r.Delete("/:id", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id"), auth.UserID(c)); err != nil {
			return apperr.HTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/like", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		res, err := svc.ToggleLike(c.Context(), c.Params("id"), auth.UserID(c))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(res)
	})

	r.Post("/:id/share", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		shares, err := svc.Share(c.Context(), c.Params("id"))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(fiber.Map{"shares_count": shares})
	})
}
