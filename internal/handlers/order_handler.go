package handlers

import (
	"strconv"

	"storefront/internal/apperror"
	"storefront/internal/dto"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/order")
	orderRoutes.Post("/placeOrder", h.HandlePlaceOrder)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderDetails)
}

// HandlePlaceOrder places an order and responds with its id.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req dto.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Wrap(fiber.StatusBadRequest, msgOrderInvalid, err)
	}
	if err := validate.Struct(req); err != nil {
		log.Ctx(c.UserContext()).Warn().Str("reason", describeValidation(err)).Msg("order rejected")
		return apperror.Wrap(fiber.StatusBadRequest, msgOrderInvalid, err)
	}

	orderID, err := h.service.PlaceOrder(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PlaceOrderResponse{OrderID: orderID})
}

// HandleGetOrders lists all orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// HandleGetOrderDetails returns one order with product and payment details.
func (h *OrderHandler) HandleGetOrderDetails(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return apperror.Wrap(fiber.StatusBadRequest, msgOrderIDInvalid, err)
	}
	order, err := h.service.GetOrderDetails(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(order)
}
