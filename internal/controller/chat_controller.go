package controller

import (
	"smartfusion-dashboard/internal/dto"
	"smartfusion-dashboard/internal/pkg/serverutils"
	"smartfusion-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Pending(ctx *fiber.Ctx) error
}

type chatController struct {
	conversation service.IConversationService
}

func NewChatController(conversation service.IConversationService) IChatController {
	return &chatController{conversation: conversation}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("ask", c.Ask)
	h.Get("history", c.History)
	h.Get("pending", c.Pending)
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	exchange, err := c.conversation.Ask(ctx.Context(), req.Question)
	if err != nil {
		return err
	}
	if exchange == nil {
		// Whitespace-only input: nothing sent, nothing recorded.
		return ctx.JSON(serverutils.SuccessResponse("Empty question ignored", nil))
	}
	return ctx.JSON(serverutils.SuccessResponse("Answer received", exchange))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Chat history", c.conversation.History()))
}

// Pending exposes the staged question text, which voice capture may
// have filled in behind the view's back.
func (c *chatController) Pending(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Pending input", c.conversation.PendingInput()))
}
