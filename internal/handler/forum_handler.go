package handler

import (
	"context"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ForumHandler struct {
	forum *service.ForumService
}

func NewForumHandler(forum *service.ForumService) *ForumHandler {
	return &ForumHandler{forum: forum}
}

// Register mounts the thread routes on an authenticated router. Moderation is limited to
// staff roles.
func (h *ForumHandler) Register(r fiber.Router) {
	staff := middleware.Roles(middleware.Staff...)

	r.Get("/threads", h.ListThreads)
	r.Post("/threads", h.CreateThread)
	r.Get("/threads/:id", h.GetThread)
	r.Put("/threads/:id", h.UpdateThread)
	r.Delete("/threads/:id", h.DeleteThread)
	r.Patch("/threads/:id/pin", staff, h.Pin)
	r.Patch("/threads/:id/lock", staff, h.Lock)
	r.Patch("/threads/:id/private", staff, h.SetPrivate)
	r.Post("/threads/:id/replies", h.AddReply)
	r.Delete("/threads/:id/replies/:replyId", h.DeleteReply)
}

func (h *ForumHandler) ListThreads(c *fiber.Ctx) error {
	filter := dto.ThreadFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 0),
		Limit:    c.QueryInt("limit", 0),
	}
	if raw := c.Query("is_private"); raw != "" {
		private := c.QueryBool("is_private")
		filter.Private = &private
	}

	threads, err := h.forum.ListThreads(c.UserContext(), middleware.GetUpstreamToken(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(threads, ""))
}

func (h *ForumHandler) GetThread(c *fiber.Ctx) error {
	thread, err := h.forum.GetThread(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(thread, ""))
}

func (h *ForumHandler) CreateThread(c *fiber.Ctx) error {
	var req dto.CreateThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	thread, err := h.forum.CreateThread(c.UserContext(), middleware.GetUpstreamToken(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(thread, "Diskusi berhasil dibuat"))
}

func (h *ForumHandler) UpdateThread(c *fiber.Ctx) error {
	var req dto.UpdateThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	thread, err := h.forum.UpdateThread(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(thread, "Diskusi berhasil diperbarui"))
}

func (h *ForumHandler) DeleteThread(c *fiber.Ctx) error {
	if err := h.forum.DeleteThread(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "Diskusi berhasil dihapus"))
}

func (h *ForumHandler) Pin(c *fiber.Ctx) error {
	return h.moderate(c, h.forum.SetPinned)
}

func (h *ForumHandler) Lock(c *fiber.Ctx) error {
	return h.moderate(c, h.forum.SetLocked)
}

func (h *ForumHandler) SetPrivate(c *fiber.Ctx) error {
	return h.moderate(c, h.forum.SetPrivate)
}

type moderationFunc func(ctx context.Context, token, threadID string, value bool) (*dto.Thread, error)

func (h *ForumHandler) moderate(c *fiber.Ctx, apply moderationFunc) error {
	var req dto.ModerationRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	thread, err := apply(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id"), req.Value)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(thread, ""))
}

func (h *ForumHandler) AddReply(c *fiber.Ctx) error {
	var req dto.CreateReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	author := dto.Author{ID: dto.ID(middleware.GetUserID(c)), Role: string(middleware.GetUserRole(c))}
	if session := middleware.GetSession(c); session != nil {
		if name, ok := session.Profile["name"].(string); ok {
			author.Nama = name
		}
	}

	reply, err := h.forum.AddReply(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id"), req.Content, author)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(reply, "Balasan terkirim"))
}

// DeleteReply answers with the re-fetched thread.
func (h *ForumHandler) DeleteReply(c *fiber.Ctx) error {
	thread, err := h.forum.DeleteReply(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id"), c.Params("replyId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(thread, "Balasan dihapus"))
}
