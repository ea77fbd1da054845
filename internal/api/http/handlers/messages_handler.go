package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inboxpilot/supportdesk/internal/api/dto"
	"github.com/inboxpilot/supportdesk/internal/auth"
	"github.com/inboxpilot/supportdesk/internal/service"
	apperrors "github.com/inboxpilot/supportdesk/pkg/util"
)

// MessagesHandler manages ticket conversation endpoints.
type MessagesHandler struct {
	service *service.TicketService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(ticketService *service.TicketService) *MessagesHandler {
	return &MessagesHandler{service: ticketService}
}

// AddMessage POST /tickets/:id/messages.
func (h *MessagesHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.service.AddMessage(c.UserContext(), principal.Actor, id, service.MessageCreateInput{
		Body:       req.Body,
		SenderType: req.SenderType,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromMessage(msg)})
}

// ListMessages GET /tickets/:id/messages.
func (h *MessagesHandler) ListMessages(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	msgs, err := h.service.ListMessages(c.UserContext(), id)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, dto.FromMessage(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
