package gateway

import (
	"github.com/gofiber/fiber/v2"

	"tessera/internal/auth"
	"tessera/internal/config"
	"tessera/internal/metadata"
)

// TokenHandler exchanges principal credentials for a role-scoped access
// token. The principals and their roles come from the synthesized gateway
// policies, injected through deployment config.
type TokenHandler struct {
	principals map[string]config.Principal
	table      string
	secret     string
}

func NewTokenHandler(principals []config.Principal, table, secret string) *TokenHandler {
	byID := make(map[string]config.Principal, len(principals))
	for _, p := range principals {
		byID[p.ID] = p
	}
	return &TokenHandler{principals: byID, table: table, secret: secret}
}

// RegisterTokenRoutes wires the credential exchange. No auth middleware:
// this is the route that issues tokens.
func RegisterTokenRoutes(app *fiber.App, h *TokenHandler) {
	app.Post("/auth/token", h.Exchange)
}

type tokenRequest struct {
	Principal string `json:"principal"`
	Secret    string `json:"secret"`
}

// Exchange handles POST /auth/token.
func (h *TokenHandler) Exchange(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequestError("Invalid JSON body")
	}
	if req.Principal == "" || req.Secret == "" {
		return BadRequestError("principal and secret are required")
	}

	p, ok := h.principals[req.Principal]
	if !ok || !auth.CheckSecret(req.Secret, p.SecretHash) {
		return UnauthorizedError("Invalid principal credentials")
	}

	token, err := auth.GenerateAccessToken(p.ID, h.table, metadata.Role(p.Role), h.secret)
	if err != nil {
		return err
	}
	return c.JSON(auth.TokenResponse{
		AccessToken: token,
		RefreshID:   auth.GenerateRefreshID(),
	})
}
