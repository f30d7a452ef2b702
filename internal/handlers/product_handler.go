package handlers

import (
	"bytes"
	"strconv"

	"storefront/internal/apperror"
	"storefront/internal/dto"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service     *services.ProductService
	authService *services.AuthService
}

// NewProductHandler creates a new ProductHandler. When authService is not
// nil, write endpoints require a valid token and deleting every product
// requires the admin role.
func NewProductHandler(service *services.ProductService, authService *services.AuthService) *ProductHandler {
	return &ProductHandler{
		service:     service,
		authService: authService,
	}
}

// guarded prepends the auth middleware to handler when auth is enabled.
func (h *ProductHandler) guarded(handler fiber.Handler, roles ...string) []fiber.Handler {
	if h.authService == nil {
		return []fiber.Handler{handler}
	}
	chain := []fiber.Handler{middleware.AuthRequired(h.authService)}
	for _, role := range roles {
		chain = append(chain, middleware.RequireRole(role))
	}
	return append(chain, handler)
}

// RegisterRoutes registers the product routes under router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/product", h.HandleGetProducts)
	router.Get("/product/:id", h.HandleGetProductByID)
	router.Get("/products", h.HandleGetProductsByName)
	router.Get("/productPage", h.HandleGetProductPage)
	router.Get("/productByType", h.HandleGetProductsByType)
	router.Get("/productByPriceBetween", h.HandleGetProductsByPriceBetween)
	router.Get("/productByPriceLessThan", h.HandleGetProductsByPriceLessThan)
	router.Get("/productByPriceGreaterThan", h.HandleGetProductsByPriceGreaterThan)
	router.Get("/productCount", h.HandleCountProducts)
	router.Get("/productTotal", h.HandleTotal)
	router.Get("/productExists/:id", h.HandleProductExistsByID)
	router.Get("/productExists", h.HandleProductExistsByName)

	router.Post("/product", h.guarded(h.HandleAddProduct)...)
	router.Post("/products", h.guarded(h.HandleAddProducts)...)
	router.Put("/product/reduceQuantity/:id", h.guarded(h.HandleReduceQuantity)...)
	router.Put("/product/:id", h.guarded(h.HandleEditProduct)...)
	router.Put("/product", h.guarded(h.HandleEditProduct)...)
	router.Delete("/product/:id", h.guarded(h.HandleDeleteProduct)...)
	router.Delete("/productByIds", h.guarded(h.HandleDeleteProductsByIDs)...)
	router.Delete("/products", h.guarded(h.HandleDeleteAllProducts, models.RoleAdmin)...)
}

// HandleGetProducts lists every product, optionally sorted by field and direction.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetProducts(c.UserContext(), c.Query("field"), c.Query("direction"))
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleGetProductsByName(c *fiber.Ctx) error {
	name := c.Query("productName")
	if name == "" {
		return apperror.BadRequest(msgProductNameInvalid)
	}
	products, err := h.service.GetProductsByName(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGetProductPage returns one page of products.
func (h *ProductHandler) HandleGetProductPage(c *fiber.Ctx) error {
	limit, ok := parseIntParam(c.Query("limit"), defaultPageLimit, 1, maxPageLimit)
	if !ok {
		return apperror.BadRequest(msgPageInvalid)
	}
	// offset*limit must stay representable.
	offset, ok := parseIntParam(c.Query("offset"), 0, 0, services.MaxPageOffset(limit))
	if !ok {
		return apperror.BadRequest(msgPageInvalid)
	}
	page, err := h.service.GetProductsWithPagination(c.UserContext(), offset, limit, c.Query("field"), c.Query("direction"))
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *ProductHandler) HandleGetProductsByType(c *fiber.Ctx) error {
	productType := c.Query("productType")
	if productType == "" {
		return apperror.BadRequest(msgProductTypeInvalid)
	}
	products, err := h.service.GetProductsByType(c.UserContext(), productType)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGetProductsByPriceBetween lists products priced in [minPrice, maxPrice].
func (h *ProductHandler) HandleGetProductsByPriceBetween(c *fiber.Ctx) error {
	minPrice, err := parsePrice(c.Query("minPrice"))
	if err != nil {
		return err
	}
	maxPrice, err := parsePrice(c.Query("maxPrice"))
	if err != nil {
		return err
	}
	if minPrice > maxPrice {
		return apperror.BadRequest(msgPriceInvalid)
	}
	products, err := h.service.GetProductsByPriceBetween(c.UserContext(), minPrice, maxPrice)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProductsByPriceLessThan(c *fiber.Ctx) error {
	price, err := parsePrice(c.Query("price"))
	if err != nil {
		return err
	}
	products, err := h.service.GetProductsByPriceLessThan(c.UserContext(), price)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProductsByPriceGreaterThan(c *fiber.Ctx) error {
	price, err := parsePrice(c.Query("price"))
	if err != nil {
		return err
	}
	products, err := h.service.GetProductsByPriceGreaterThan(c.UserContext(), price)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleCountProducts(c *fiber.Ctx) error {
	n, err := h.service.CountProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": n})
}

func (h *ProductHandler) HandleTotal(c *fiber.Ctx) error {
	total, err := h.service.Total(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"total": total})
}

func (h *ProductHandler) HandleProductExistsByID(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	exists, err := h.service.CheckProductByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(exists)
}

func (h *ProductHandler) HandleProductExistsByName(c *fiber.Ctx) error {
	name := c.Query("productName")
	if name == "" {
		return apperror.BadRequest(msgProductNameInvalid)
	}
	exists, err := h.service.CheckProductByName(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(exists)
}

func (h *ProductHandler) parseProduct(c *fiber.Ctx) (dto.ProductRequest, error) {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperror.Wrap(fiber.StatusBadRequest, msgProductInvalid, err)
	}
	if err := validate.Struct(req); err != nil {
		log.Ctx(c.UserContext()).Warn().Str("reason", describeValidation(err)).Msg("product rejected")
		return req, apperror.Wrap(fiber.StatusBadRequest, msgProductInvalid, err)
	}
	return req, nil
}

// HandleAddProduct creates a product and responds with its id.
func (h *ProductHandler) HandleAddProduct(c *fiber.Ctx) error {
	req, err := h.parseProduct(c)
	if err != nil {
		return err
	}
	id, err := h.service.AddProduct(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(id)
}

// HandleAddProducts creates every product of a JSON array body.
func (h *ProductHandler) HandleAddProducts(c *fiber.Ctx) error {
	if len(bytes.TrimSpace(c.Body())) == 0 {
		return apperror.BadRequest(msgListProductNull)
	}
	var reqs []dto.ProductRequest
	if err := c.BodyParser(&reqs); err != nil {
		return apperror.Wrap(fiber.StatusBadRequest, msgProductInvalid, err)
	}
	if reqs == nil {
		return apperror.BadRequest(msgListProductNull)
	}
	for _, req := range reqs {
		if err := validate.Struct(req); err != nil {
			log.Ctx(c.UserContext()).Warn().Str("reason", describeValidation(err)).Msg("product list rejected")
			return apperror.Wrap(fiber.StatusBadRequest, msgProductInvalid, err)
		}
	}

	created, err := h.service.AddProducts(c.UserContext(), reqs)
	if err != nil {
		return err
	}
	if len(created) == 0 {
		return apperror.BadRequest(msgInsertedFailed)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleEditProduct replaces a product. The id comes from the path or, on
// PUT /product, from the productId query parameter.
func (h *ProductHandler) HandleEditProduct(c *fiber.Ctx) error {
	raw := c.Params("id")
	if raw == "" {
		raw = c.Query("productId")
	}
	id, err := parseID(raw)
	if err != nil {
		return err
	}
	req, err := h.parseProduct(c)
	if err != nil {
		return err
	}
	product, err := h.service.EditProduct(c.UserContext(), req, id)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	msg, err := h.service.DeleteProductByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.SendString(msg)
}

// HandleDeleteProductsByIDs deletes the products whose ids form the JSON
// array body.
func (h *ProductHandler) HandleDeleteProductsByIDs(c *fiber.Ctx) error {
	var raw []int64
	if err := c.BodyParser(&raw); err != nil || len(raw) == 0 {
		return apperror.BadRequest(msgListIDsInvalid)
	}
	ids := make([]uint64, 0, len(raw))
	for _, id := range raw {
		if id < 0 {
			return apperror.BadRequest(msgListIDsInvalid)
		}
		ids = append(ids, uint64(id))
	}
	msg, err := h.service.DeleteListProducts(c.UserContext(), ids)
	if err != nil {
		return err
	}
	return c.SendString(msg)
}

func (h *ProductHandler) HandleDeleteAllProducts(c *fiber.Ctx) error {
	msg, err := h.service.DeleteAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.SendString(msg)
}

// HandleReduceQuantity takes the quantity query parameter out of stock.
func (h *ProductHandler) HandleReduceQuantity(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	quantity, err := strconv.ParseInt(c.Query("quantity"), 10, 64)
	if err != nil || quantity <= 0 {
		return apperror.BadRequest(msgQuantityInvalid)
	}
	if err := h.service.ReduceQuantity(c.UserContext(), id, quantity); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
