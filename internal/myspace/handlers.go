package myspace

import (
	"backend-numeneon/internal/auth"
	"backend-numeneon/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, writeLimit fiber.Handler) {
	r.Get("/:username", authMiddleware, func(c *fiber.Ctx) error {
		profile, err := svc.Get(c.Context(), c.Params("username"))
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(profile)
	})

	r.Put("/", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var req UpdateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		profile, err := svc.Update(c.Context(), auth.UserID(c), req)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(profile)
	})

	r.Post("/playlist", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var req SongInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		song, err := svc.AddSong(c.Context(), auth.UserID(c), req)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.Status(fiber.StatusCreated).JSON(song)
	})

	r.Put("/playlist/reorder", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		var req ReorderInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		songs, err := svc.Reorder(c.Context(), auth.UserID(c), req.SongIDs)
		if err != nil {
			return apperr.HTTP(err)
		}
		return c.JSON(songs)
	})

	r.Delete("/playlist/:id", authMiddleware, writeLimit, func(c *fiber.Ctx) error {
		if err := svc.RemoveSong(c.Context(), auth.UserID(c), c.Params("id")); err != nil {
			return apperr.HTTP(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
