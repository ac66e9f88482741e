package server

import (
	"fluss/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/me.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUser(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(user.PublicView(userID))
}

// GetUserProfile handles GET /api/users/:id. Email shows only on the
// caller's own profile.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID, _ := s.optionalUserID(c)

	user, err := s.userService.GetUser(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(user.PublicView(viewerID))
}

// GetAllUsers handles GET /api/users.
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	viewerID := c.Locals("userID").(uint)
	p := parsePagination(c, 50)

	users, err := s.userService.ListUsers(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	views := make([]models.User, 0, len(users))
	for _, u := range users {
		views = append(views, u.PublicView(viewerID))
	}
	return c.JSON(views)
}

// GetUserPosts handles GET /api/users/:id/posts.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	ownerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(c.Context(), ownerID, p.Limit, p.Offset, viewerID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(posts)
}

// ChangeUsername handles PUT /api/me/username.
func (s *Server) ChangeUsername(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("body", "Invalid request body"))
	}

	user, err := s.userService.ChangeUsername(c.Context(), userID, req.Username)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(user.PublicView(userID))
}

// GetFeatureFlags handles GET /api/flags, returning the flags evaluated for
// the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	return c.JSON(s.featureFlags.Snapshot(userID))
}
