package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/service"
)

// ProductsHandler exposes catalog operations. Role enforcement lives
// in the service layer; handlers only parse transport payloads and
// forward the resolved identity.
type ProductsHandler struct {
	inventory *service.InventoryService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(inventory *service.InventoryService) *ProductsHandler {
	return &ProductsHandler{inventory: inventory}
}

// List handles GET /products with optional limit/offset query params.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	identity := auth.IdentityFromContext(c)

	limit := intQuery(c, "limit")
	offset := intQuery(c, "offset")

	products, err := h.inventory.ListProducts(c.UserContext(), identity, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": products})
}

// Get handles GET /products/:id. An absent product yields a null
// result, not an error.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	identity := auth.IdentityFromContext(c)

	product, err := h.inventory.GetProduct(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

// Create handles POST /products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	identity := auth.IdentityFromContext(c)

	var req dto.AddProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name required")
	}

	product, err := h.inventory.AddProduct(c.UserContext(), identity, req.Name, req.Quantity)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": product})
}

// UpdateStock handles PATCH /products/:id/stock.
func (h *ProductsHandler) UpdateStock(c *fiber.Ctx) error {
	identity := auth.IdentityFromContext(c)

	var req dto.UpdateStockRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	product, err := h.inventory.UpdateStock(c.UserContext(), identity, c.Params("id"), req.Delta)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

// Delete handles DELETE /products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	identity := auth.IdentityFromContext(c)

	deleted, err := h.inventory.RemoveProduct(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": deleted}})
}

// StockChanges handles GET /stock-changes.
func (h *ProductsHandler) StockChanges(c *fiber.Ctx) error {
	identity := auth.IdentityFromContext(c)

	changes, err := h.inventory.StockChanges(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": changes})
}

// Protected handles GET /protected.
func (h *ProductsHandler) Protected(c *fiber.Ctx) error {
	identity := auth.IdentityFromContext(c)

	payload, err := h.inventory.ProtectedResource(identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": payload})
}

func intQuery(c *fiber.Ctx, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &val
}
