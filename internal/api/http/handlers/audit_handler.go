package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inboxpilot/supportdesk/internal/api/dto"
	"github.com/inboxpilot/supportdesk/internal/auth"
	"github.com/inboxpilot/supportdesk/internal/service"
	apperrors "github.com/inboxpilot/supportdesk/pkg/util"
)

// AuditHandler exposes the per-ticket audit trail.
type AuditHandler struct {
	service *service.TicketService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(ticketService *service.TicketService) *AuditHandler {
	return &AuditHandler{service: ticketService}
}

// ListAudit GET /tickets/:id/audit. Entries come back newest first.
func (h *AuditHandler) ListAudit(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	entries, err := h.service.ListAudit(c.UserContext(), id)
	if err != nil {
		return err
	}
	items := make([]dto.AuditLogResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromAuditLogEntry(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
