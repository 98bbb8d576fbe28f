package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/auth"
	"github.com/sponsorconnect/backend/internal/config"
	"github.com/sponsorconnect/backend/internal/http/dto"
	"github.com/sponsorconnect/backend/internal/models"
	"github.com/sponsorconnect/backend/internal/rbac"
	"go.uber.org/zap"
)

const (
	CtxUserID    = "user_id"
	CtxIdentity  = "identity"
	CtxSessionID = "session_id"
)

func unauthorized(c *fiber.Ctx, msg string) error {
	reqID, _ := c.Locals(CtxRequestID).(string)
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: msg, RequestID: reqID})
}

// BearerToken reads the access token from the Authorization header, falling
// back to the token query parameter for websocket clients.
func BearerToken(c *fiber.Ctx) (string, bool) {
	if header := c.Get("Authorization"); header != "" {
		token := strings.TrimPrefix(header, "Bearer ")
		return token, token != header && token != ""
	}
	token := c.Query("token")
	return token, token != ""
}

// Authenticate checks the token signature and that its session is still live.
func Authenticate(c *fiber.Ctx, cfg *config.Config, sessions auth.SessionStore) (*auth.Claims, error) {
	token, ok := BearerToken(c)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	claims, err := auth.ParseJWT(cfg.JWTSecret, token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error())
	}
	if _, err := sessions.Get(c.Context(), claims.UserID, claims.SessionID()); err != nil {
		return nil, err
	}
	return claims, nil
}

func AuthMiddleware(cfg *config.Config, sessions auth.SessionStore, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := Authenticate(c, cfg, sessions)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrSessionNotFound):
			return unauthorized(c, "session expired")
		case errors.Is(err, apperrors.ErrUnauthorized):
			log.Debug("jwt rejected", zap.Error(err))
			return unauthorized(c, "invalid or expired token")
		default:
			log.Error("session lookup failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "session store unavailable"})
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxIdentity, claims.Identity())
		c.Locals(CtxSessionID, claims.SessionID())

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxUserID).(uuid.UUID)
	return id
}

func GetIdentity(c *fiber.Ctx) models.Identity {
	id, _ := c.Locals(CtxIdentity).(models.Identity)
	return id
}

func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(CtxSessionID).(string)
	return sid
}

// RequirePermission rejects callers whose role lacks permission.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rbac.HasPermission(GetIdentity(c).UserType, permission) {
			reqID, _ := c.Locals(CtxRequestID).(string)
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "not allowed for this account type", RequestID: reqID})
		}
		return c.Next()
	}
}
