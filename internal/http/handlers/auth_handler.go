package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sponsorconnect/backend/internal/http/dto"
	"github.com/sponsorconnect/backend/internal/middleware"
	"github.com/sponsorconnect/backend/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	accountService *services.AccountService
	log            *zap.Logger
}

func NewAuthHandler(accountService *services.AccountService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{accountService: accountService, log: log}
}

func clientInfo(c *fiber.Ctx) services.ClientInfo {
	return services.ClientInfo{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	res, err := h.accountService.Signup(c.Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		UserType: req.UserType,
	}, clientInfo(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, res)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	res, err := h.accountService.Login(c.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, res)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.accountService.Logout(c.Context(), middleware.GetIdentity(c), middleware.GetSessionID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, nil)
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	acc, err := h.accountService.Profile(c.Context(), middleware.GetIdentity(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, acc)
}

// SaveProfile backs POST /api/profile. Signup already creates the profile, so
// this only updates name and email.
func (h *AuthHandler) SaveProfile(c *fiber.Ctx) error {
	var req dto.ProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	acc, err := h.accountService.UpdateProfile(c.Context(), middleware.GetIdentity(c), services.ProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		UserType: req.UserType,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, acc)
}
