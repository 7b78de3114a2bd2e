package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/supportkit/case-service/internal/api/dto"
	"github.com/supportkit/case-service/internal/domain"
	"github.com/supportkit/case-service/internal/service"
	apperrors "github.com/supportkit/case-service/pkg/errorutil"
)

// TicketsHandler manages ticket CRUD endpoints.
type TicketsHandler struct {
	service *service.CaseService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(caseService *service.CaseService) *TicketsHandler {
	return &TicketsHandler{service: caseService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Priority:      req.Priority,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CustomerID:    req.CustomerID,
		Department:    req.Department,
		DueDate:       req.DueDate,
		Tags:          req.Tags,
		Notes:         req.Notes,
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := service.TicketListFilter{}
	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		filter.Status = &status
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter.Category = &category
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
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketUpdateInput{
		Title:              req.Title,
		Description:        req.Description,
		Status:             req.Status,
		Category:           req.Category,
		Priority:           req.Priority,
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		CustomerID:         req.CustomerID,
		AssignedTo:         req.AssignedTo,
		Department:         req.Department,
		DueDate:            req.DueDate,
		Tags:               req.Tags,
		SatisfactionRating: req.SatisfactionRating,
		ReopenedCount:      req.ReopenedCount,
		Escalated:          req.Escalated,
		Notes:              req.Notes,
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}
