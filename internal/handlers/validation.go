package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every handler; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = validator.New()

// Client-facing validation messages.
const (
	msgProductInvalid     = "Product data is invalid."
	msgProductNameInvalid = "Product name is invalid."
	msgProductTypeInvalid = "Product type is invalid."
	msgPriceInvalid       = "Product Price is invalid."
	msgListProductNull    = "List product is null."
	msgInsertedFailed     = "Inserted product failed."
	msgListIDsInvalid     = "List product id is invalid."
	msgQuantityInvalid    = "Product quantity is invalid."
	msgPageInvalid        = services.MsgPageInvalid
	msgOrderInvalid       = "Order data is invalid."
	msgOrderIDInvalid     = "Order id is invalid."
)

// describeValidation flattens validator errors into one line.
func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return strings.Join(parts, "; ")
}

// parseID parses a product id. Ids are parsed as signed integers so that
// negative values are rejected with the same message as malformed ones.
func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, apperror.BadRequest(msgProductInvalid)
	}
	return uint64(id), nil
}

// parsePrice parses a non-negative price query parameter.
func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, apperror.BadRequest(msgPriceInvalid)
	}
	return price, nil
}

// parseIntParam parses an optional integer query parameter within [lo, hi].
func parseIntParam(raw string, def, lo, hi int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}
