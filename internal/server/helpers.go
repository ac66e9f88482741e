package server

import (
	"errors"
	"strconv"
	"time"

	"fluss/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		label := "ID"
		if param != "id" {
			label = param
		}
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(param, "Invalid "+label))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseCursor reads the optional cursor query parameter, a unix-nanoseconds
// timestamp string as emitted in FeedPage.NextCursor. On a malformed cursor
// it writes a 400 response and returns errResponseWritten.
func (s *Server) parseCursor(c *fiber.Ctx) (*time.Time, error) {
	raw := c.Query("cursor")
	if raw == "" {
		return nil, nil
	}

	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || nanos < 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("cursor", "Cursor must be a unix-nanoseconds timestamp"))
		return nil, errResponseWritten
	}

	t := time.Unix(0, nanos).UTC()
	return &t, nil
}
