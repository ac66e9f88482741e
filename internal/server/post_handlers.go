package server

import (
	"fluss/internal/models"
	"fluss/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed. Query parameters: limit (clamped to 50) and
// cursor (unix-nanoseconds; the page contains posts strictly older than it).
func (s *Server) GetFeed(c *fiber.Ctx) error {
	cursor, err := s.parseCursor(c)
	if err != nil {
		return nil
	}

	viewerID, _ := s.optionalUserID(c)

	page, err := s.postService.Feed(c.Context(), service.FeedInput{
		Limit:    c.QueryInt("limit", 20),
		Cursor:   cursor,
		ViewerID: viewerID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(c.Context(), postID, viewerID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post.Owner = post.Owner.PublicView(viewerID)
	return c.JSON(post)
}

// CreatePost handles POST /api/posts.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("body", "Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		OwnerID: userID,
		Title:   req.Title,
		Text:    req.Text,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("body", "Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID: userID,
		PostID: postID,
		Title:  req.Title,
		Text:   req.Text,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		UserID: userID,
		PostID: postID,
	}); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// CastFame handles POST /api/posts/:id/fame. Body: {"value": 1} or
// {"value": -1}; any other value counts as an upvote.
func (s *Server) CastFame(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Value int `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("body", "Invalid request body"))
	}

	result, err := s.fameService.CastFame(c.Context(), service.CastFameInput{
		UserID: userID,
		PostID: postID,
		Value:  req.Value,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}
