package handlers

import (
	"strconv"

	"github.com/fitassist/fitassist/internal/middleware"
	"github.com/fitassist/fitassist/internal/services"
	"github.com/fitassist/fitassist/internal/storage"
	"github.com/fitassist/fitassist/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SocialHandler handles the posts, likes, and comments routes
type SocialHandler struct {
	DB    *gorm.DB
	Store storage.ObjectStore
}

// CreatePostRequest is the POST /posts body.
type CreatePostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// CreateCommentRequest is the POST /posts/:postId/comments body.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// ListPosts handles GET /api/posts
// @Summary List all posts, newest first
// @Tags Social
// @Produce json
// @Success 200 {array} services.PostView
// @Security CookieAuth
// @Router /posts [get]
func (h *SocialHandler) ListPosts(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "social.posts")
	}

	posts, err := services.ListPosts(h.DB, userID)
	if err != nil {
		return serviceError(c, err, "social.posts")
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags Social
// @Accept json
// @Produce json
// @Param body body CreatePostRequest true "Post"
// @Success 201 {object} services.PostView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /posts [post]
func (h *SocialHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "social.createPost")
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "social.createPost")
	}

	post, err := services.CreatePost(h.DB, userID, req.Content, req.ImageURL)
	if err != nil {
		return serviceError(c, err, "social.createPost")
	}
	return c.Status(fiber.StatusCreated).JSON(services.PostView{
		ID:        post.ID,
		UserID:    post.UserID,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		CreatedAt: post.CreatedAt,
	})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post and its stored image
// @Tags Social
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /posts/{id} [delete]
func (h *SocialHandler) DeletePost(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "social.deletePost")
	}

	postID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "Invalid post id", fiber.StatusBadRequest, "social.deletePost")
	}

	if err := services.DeletePost(c.Context(), h.DB, h.Store, postID, userID); err != nil {
		return serviceError(c, err, "social.deletePost")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post deleted successfully",
	})
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like a post
// @Tags Social
// @Produce json
// @Param id path int true "Post ID"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /posts/{id}/like [post]
func (h *SocialHandler) LikePost(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "social.like")
	}

	postID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "Invalid post id", fiber.StatusBadRequest, "social.like")
	}

	if err := services.LikePost(h.DB, postID, userID); err != nil {
		return serviceError(c, err, "social.like")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post liked",
	})
}

// UnlikePost handles DELETE /api/posts/:id/like
// @Summary Unlike a post
// @Tags Social
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /posts/{id}/like [delete]
func (h *SocialHandler) UnlikePost(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "social.unlike")
	}

	postID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "Invalid post id", fiber.StatusBadRequest, "social.unlike")
	}

	if err := services.UnlikePost(h.DB, postID, userID); err != nil {
		return serviceError(c, err, "social.unlike")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post unliked",
	})
}

// ListComments handles GET /api/posts/:postId/comments
// @Summary List a post's comments, oldest first
// @Tags Social
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {array} services.CommentView
// @Security CookieAuth
// @Router /posts/{postId}/comments [get]
func (h *SocialHandler) ListComments(c *fiber.Ctx) error {
	postID, err := strconv.ParseUint(c.Params("postId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "Invalid post id", fiber.StatusBadRequest, "social.comments")
	}

	comments, err := services.ListComments(h.DB, postID)
	if err != nil {
		return serviceError(c, err, "social.comments")
	}
	return c.Status(fiber.StatusOK).JSON(comments)
}

// CreateComment handles POST /api/posts/:postId/comments
// @Summary Comment on a post
// @Tags Social
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param body body CreateCommentRequest true "Comment"
// @Success 201 {object} services.CommentView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /posts/{postId}/comments [post]
func (h *SocialHandler) CreateComment(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "social.createComment")
	}

	postID, err := strconv.ParseUint(c.Params("postId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "Invalid post id", fiber.StatusBadRequest, "social.createComment")
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "social.createComment")
	}

	comment, err := services.CreateComment(h.DB, userID, postID, req.Content)
	if err != nil {
		return serviceError(c, err, "social.createComment")
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete one's own comment
// @Tags Social
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /comments/{id} [delete]
func (h *SocialHandler) DeleteComment(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "social.deleteComment")
	}

	commentID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, "Invalid comment id", fiber.StatusBadRequest, "social.deleteComment")
	}

	if err := services.DeleteComment(h.DB, commentID, userID); err != nil {
		return serviceError(c, err, "social.deleteComment")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Comment deleted",
	})
}
