// server/identity/identity_test.go
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	svc := NewService("secret", time.Minute)

	token, err := svc.IssueToken("user_a", "a@x.com")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	ident, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ident.UserID != "user_a" || ident.Email != "a@x.com" {
		t.Errorf("identity = %+v", ident)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewService("secret-one", time.Minute).IssueToken("user_a", "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewService("secret-two", time.Minute).Verify(token); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestClockSkewLeeway(t *testing.T) {
	svc := NewService("secret", time.Minute)

	// Expired 30s ago: inside the 60s leeway, still accepted.
	recent := signedToken(t, "secret", jwt.MapClaims{
		"sub": "user_a",
		"exp": time.Now().Add(-30 * time.Second).Unix(),
	})
	if _, err := svc.Verify(recent); err != nil {
		t.Errorf("token within leeway rejected: %v", err)
	}

	// Expired well past the leeway: rejected.
	stale := signedToken(t, "secret", jwt.MapClaims{
		"sub": "user_a",
		"exp": time.Now().Add(-10 * time.Minute).Unix(),
	})
	if _, err := svc.Verify(stale); err == nil {
		t.Error("token past leeway accepted")
	}
}

func TestVerifyRequiresSubjectAndExpiry(t *testing.T) {
	svc := NewService("secret", time.Minute)

	noSub := signedToken(t, "secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := svc.Verify(noSub); err == nil {
		t.Error("token without sub accepted")
	}

	noExp := signedToken(t, "secret", jwt.MapClaims{"sub": "user_a"})
	if _, err := svc.Verify(noExp); err == nil {
		t.Error("token without exp accepted")
	}
}

func TestWebhookSignature(t *testing.T) {
	body := []byte(`{"type":"user.created"}`)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature("secret", body, sig) {
		t.Error("valid signature rejected")
	}
	if VerifyWebhookSignature("other", body, sig) {
		t.Error("signature verified under the wrong secret")
	}
	if VerifyWebhookSignature("secret", body, "not-hex") {
		t.Error("non-hex signature accepted")
	}
	if VerifyWebhookSignature("secret", body, "deadbeef") {
		t.Error("wrong signature accepted")
	}
}

func newMiddlewareApp(svc *Service) *fiber.App {
	app := fiber.New()
	app.Use(svc.Middleware(MiddlewareConfig{
		PublicRoutes:    []string{"/", "/about"},
		IgnoredPrefixes: []string{"/api/webhook"},
	}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("home") })
	app.Get("/about", func(c *fiber.Ctx) error { return c.SendString("about") })
	app.Post("/api/webhook/identity", func(c *fiber.Ctx) error { return c.SendString("hook") })
	app.Get("/api/notes", func(c *fiber.Ctx) error {
		ident, ok := FromContext(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}
		return c.SendString(ident.UserID)
	})
	return app
}

func TestMiddlewareRouteRegime(t *testing.T) {
	svc := NewService("secret", time.Minute)
	app := newMiddlewareApp(svc)

	cases := []struct {
		method, target, token string
		want                  int
	}{
		{"GET", "/", "", fiber.StatusOK},
		{"GET", "/about", "", fiber.StatusOK},
		{"POST", "/api/webhook/identity", "", fiber.StatusOK},
		{"GET", "/api/notes", "", fiber.StatusUnauthorized},
		{"GET", "/api/notes", "garbage", fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("%s %s (token %q): status = %d, want %d",
				tc.method, tc.target, tc.token, resp.StatusCode, tc.want)
		}
	}
}

func TestMiddlewareResolvesBearerAndCookie(t *testing.T) {
	svc := NewService("secret", time.Minute)
	app := newMiddlewareApp(svc)

	token, err := svc.IssueToken("user_a", "")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("bearer token status = %d, want 200", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/notes", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: token})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("session cookie status = %d, want 200", resp.StatusCode)
	}
}
