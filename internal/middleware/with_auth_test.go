package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edusphere-api/internal/middleware"
)

func TestWithAuthRoles(t *testing.T) {
	cases := []struct {
		name     string
		userID   interface{}
		role     string
		required string
		status   int
	}{
		{name: "student allowed", userID: uint(10), role: "Student", required: middleware.AuthRoleStudent, status: fiber.StatusNoContent},
		{name: "guest denied student route", userID: uint(10), role: "guest", required: middleware.AuthRoleStudent, status: fiber.StatusForbidden},
		{name: "teacher is staff", userID: uint(1), role: "teacher", required: middleware.AuthRoleStaff, status: fiber.StatusNoContent},
		{name: "admin is staff", userID: uint(1), role: "admin", required: middleware.AuthRoleStaff, status: fiber.StatusNoContent},
		{name: "student is not staff", userID: uint(1), role: "student", required: middleware.AuthRoleStaff, status: fiber.StatusForbidden},
		{name: "teacher is not admin", userID: uint(1), role: "teacher", required: middleware.AuthRoleAdmin, status: fiber.StatusForbidden},
		{name: "missing user", userID: nil, role: "teacher", required: middleware.AuthRoleStaff, status: fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				if tc.userID != nil {
					c.Locals("user_id", tc.userID)
				}
				c.Locals("user_role", tc.role)
				return c.Next()
			})
			app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusNoContent)
			}, middleware.AuthOptions{Role: tc.required}))

			resp := perform(t, app)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestWithAuthAnyRequiresUserByDefault(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleAny}))

	resp := perform(t, app)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuthAnyAllowsAnonymousWhenOptedIn(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleAny, AllowAnonymous: true}))

	resp := perform(t, app)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func perform(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
