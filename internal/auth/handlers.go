package auth

import (
	"backend-numeneon/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, writeLimit fiber.Handler) {
	r.Get("/jwt/verify", func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		userID, err := svc.ValidateAccessToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})

	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		user, err := svc.Me(c.Context(), UserID(c))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(user)
	})

	r.Get("/search", authMiddleware, func(c *fiber.Ctx) error {
		users, err := svc.Search(c.Context(), UserID(c), c.Query("q"))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(users)
	})

	r.Get("/users/:username", authMiddleware, func(c *fiber.Ctx) error {
		user, err := svc.ByUsername(c.Context(), c.Params("username"))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(user)
	})

	r.Patch("/profile", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var req ProfileInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.UpdateProfile(c.Context(), UserID(c), req)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(user)
	})
}
