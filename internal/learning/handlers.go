package learning

import (
	"backend-numeneon/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/today", func(c *fiber.Ctx) error {
		return c.JSON(svc.Today())
	})

	r.Get("/categories", func(c *fiber.Ctx) error {
		return c.JSON(svc.Categories())
	})

	r.Get("/categories/:id", func(c *fiber.Ctx) error {
		category, err := svc.Category(c.Params("id"))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(category)
	})
}
