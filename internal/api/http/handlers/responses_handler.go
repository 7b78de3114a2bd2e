package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supportkit/case-service/internal/api/dto"
	"github.com/supportkit/case-service/internal/service"
	apperrors "github.com/supportkit/case-service/pkg/errorutil"
)

// ResponsesHandler manages the response-sending endpoints.
type ResponsesHandler struct {
	service *service.CaseService
}

// NewResponsesHandler constructs handler.
func NewResponsesHandler(caseService *service.CaseService) *ResponsesHandler {
	return &ResponsesHandler{service: caseService}
}

// SendResponse POST /tickets/:id/respond.
func (h *ResponsesHandler) SendResponse(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.SendResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	resp, err := h.service.SendResponse(c.UserContext(), id, service.SendResponseInput{
		ResponseText:  req.Response,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		TicketTitle:   req.TicketTitle,
		SentBy:        req.SentBy,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromResponse(resp)})
}

// ListResponses GET /tickets/:id/responses.
func (h *ResponsesHandler) ListResponses(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	responses, err := h.service.ListResponses(c.UserContext(), id)
	if err != nil {
		return err
	}
	items := make([]dto.ResponseRecord, 0, len(responses))
	for i := range responses {
		items = append(items, dto.FromResponse(&responses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
