package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// missingFieldsMessage returns a "Please provide ..." message naming the
// blank fields, or "" when everything is present. Map iteration order is not
// stable, so the names are sorted by a fixed field order.
var fieldOrder = []string{"name", "email", "password", "schedule", "duration", "capacity", "instructor", "title", "assignedTo", "file"}

func missingFieldsMessage(fields map[string]string) string {
	missing := make([]string, 0, len(fields))
	for _, name := range fieldOrder {
		value, tracked := fields[name]
		if tracked && strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return "Please provide " + strings.Join(missing, ", ")
}

func actorID(c *fiber.Ctx) (int64, error) {
	id, ok := c.Locals("user_id").(int64)
	if !ok || id <= 0 {
		return 0, errors.New("missing user id")
	}
	return id, nil
}
