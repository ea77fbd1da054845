package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/inboxpilot/supportdesk/internal/api/dto"
	"github.com/inboxpilot/supportdesk/internal/auth"
	"github.com/inboxpilot/supportdesk/internal/domain"
	"github.com/inboxpilot/supportdesk/internal/repository"
	"github.com/inboxpilot/supportdesk/internal/service"
	apperrors "github.com/inboxpilot/supportdesk/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), principal.Actor, service.TicketCreateInput{
		Subject:  req.Subject,
		Priority: req.Priority,
		Category: req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, _, err := h.service.UpdateTicket(c.UserContext(), principal.Actor, id, service.TicketPatch{
		Status:   req.Status,
		Priority: req.Priority,
		Category: req.Category,
		Assignee: req.Assignee,
		DueAt:    req.DueAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("ticket id must be a positive integer", nil)
	}
	return id, nil
}

func parseTicketQuery(c *fiber.Ctx) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{Limit: 50}

	if raw := c.Query("status"); raw != "" {
		status := domain.TicketStatus(raw)
		if !status.Valid() {
			return filter, apperrors.NewInvalidField("status", domain.AllowedStatuses())
		}
		filter.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := domain.TicketPriority(raw)
		if !priority.Valid() {
			return filter, apperrors.NewInvalidField("priority", domain.AllowedPriorities())
		}
		filter.Priority = &priority
	}
	if raw := c.Query("category"); raw != "" {
		category := domain.TicketCategory(raw)
		if !category.Valid() {
			return filter, apperrors.NewInvalidField("category", domain.AllowedCategories())
		}
		filter.Category = &category
	}
	if raw := c.Query("assignee"); raw != "" {
		filter.Assignee = &raw
	}
	if c.Query("overdue") == "true" {
		filter.Overdue = true
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 200 {
			return filter, apperrors.NewValidationError("limit must be between 1 and 200", nil)
		}
		filter.Limit = limit
	}
	return filter, nil
}
