package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"storefront/internal/app"
	"storefront/internal/apperror"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test_jwt_secret"

// TestMain silences request logging during tests.
func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testConfig(authEnabled bool) *config.Config {
	return &config.Config{
		JWTSecret:       testJWTSecret,
		AuthEnabled:     authEnabled,
		OrderStaleAfter: 15 * time.Minute,
	}
}

// newTestDB opens a private in-memory SQLite database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

var catalog = []dto.ProductRequest{
	{Name: "iPhone X", Description: "Manufactured by Apple", Type: "phone", Price: 1499.99, Quantity: 6},
	{Name: "Galaxy S10", Description: "Manufactured by Samsung", Type: "phone", Price: 1299.99, Quantity: 3},
	{Name: "Pixel 5", Description: "Manufactured by Google", Type: "phone", Price: 1099.99, Quantity: 4},
	{Name: "Dell XPS 15", Description: "Manufactured by Dell", Type: "laptop", Price: 1799.99, Quantity: 6},
	{Name: "HP Envy 13", Description: "Manufactured by HP", Type: "laptop", Price: 1299.99, Quantity: 2},
	{Name: "Lenovo IdeaCentre 5i Gaming Desktop", Description: "Manufactured by Lenovo", Type: "desktop", Price: 999.99, Quantity: 6},
}

// setupProductApp builds the product service with the six catalog products
// stored under ids 1 to 6.
func setupProductApp(t *testing.T, authEnabled bool) *app.ProductApp {
	t.Helper()
	papp := app.NewProductApp(testConfig(authEnabled), newTestDB(t))
	_, err := papp.Products.AddProducts(context.Background(), catalog)
	require.NoError(t, err)
	return papp
}

type result struct {
	status int
	body   string
}

func (r result) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(r.body), v), r.body)
}

func (r result) errorBody(t *testing.T) apperror.ErrorResponse {
	t.Helper()
	var body apperror.ErrorResponse
	r.decode(t, &body)
	return body
}

func send(t *testing.T, fapp *fiber.App, method, path, body, token string) result {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := fapp.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{status: resp.StatusCode, body: string(raw)}
}

func productNames(t *testing.T, r result) []string {
	t.Helper()
	var products []dto.ProductResponse
	r.decode(t, &products)
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ProductName)
	}
	return out
}
