package media

import (
	"backend-numeneon/internal/auth"
	"backend-numeneon/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, writeLimit fiber.Handler) {
	r.Post("/upload", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var body struct {
			FileName string `json:"file_name"`
			Kind     string `json:"kind"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		obj, err := svc.SaveObject(c.Context(), auth.UserID(c), body.FileName, body.Kind)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(obj)
	})

	r.Patch("/avatar", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var body struct {
			URL string `json:"url"`
		}
		if err := c.BodyParser(&body); err != nil || body.URL == "" {
			return fiber.NewError(fiber.StatusBadRequest, "url required")
		}
		if err := svc.SetAvatar(c.Context(), auth.UserID(c), body.URL); err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(fiber.Map{"avatar": body.URL})
	})
}
