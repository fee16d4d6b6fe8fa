package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EventDesk/internal/pkg/payment"
)

var errorStatus = map[string]int{
	"validation_error":   fiber.StatusBadRequest,
	"not_found":          fiber.StatusNotFound,
	"signature_mismatch": fiber.StatusBadRequest,
	"invalid_status":     fiber.StatusBadRequest,
	"upstream_error":     fiber.StatusBadGateway,
}

// StatusForError maps a service error to its HTTP status code.
func StatusForError(err error) int {
	if status, ok := errorStatus[payment.Code(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// respondError writes the JSON error body for err. Internal errors are
// logged and their details kept out of the response.
func respondError(c *fiber.Ctx, err error) error {
	code := payment.Code(err)
	status := StatusForError(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Errorf("[Controller] %s %s failed: %v", c.Method(), c.Path(), err)
		message = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "validation_error",
		"message": message,
	})
}

// GetClientIP returns the client address, preferring proxy headers.
func GetClientIP(c *fiber.Ctx) string {
	if cfIP := strings.TrimSpace(c.Get("CF-Connecting-IP")); cfIP != "" {
		return cfIP
	}
	// X-Forwarded-For can contain a list of IPs - the first one is the original client IP
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return c.IP()
}

// queryInt reads a non-negative integer query parameter with a default.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be a non-negative integer")
	}
	return v, nil
}

// formatTimePtr renders t as RFC3339 in UTC, nil stays nil.
func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
