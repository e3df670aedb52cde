package handler

import (
	"errors"
	"time"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/pkg/response"
	"hireflow/internal/usecase"
	"hireflow/internal/usecase/otp"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc             usecase.AuthUsecase
	resendCooldown time.Duration
}

type otpRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

type otpVerifyRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	Code    string `json:"code"`
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(uc usecase.AuthUsecase, resendCooldown time.Duration) *AuthHandler {
	return &AuthHandler{uc: uc, resendCooldown: resendCooldown}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/otp/request", h.RequestOTP)
	r.Post("/otp/verify", h.VerifyOTP)
	r.Post("/otp/resend", h.ResendOTP)
	r.Post("/admin/login", h.AdminLogin)
}

func (h *AuthHandler) RequestOTP(c fiber.Ctx) error {
	var req otpRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.RequestOTP(c.Context(), req.Email, req.Purpose); err != nil {
		return mapOTPError(err)
	}

	data := map[string]any{
		"sent":                 true,
		"resend_after_seconds": int(h.resendCooldown.Seconds()),
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) ResendOTP(c fiber.Ctx) error {
	var req otpRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.ResendOTP(c.Context(), req.Email, req.Purpose); err != nil {
		return mapOTPError(err)
	}

	data := map[string]any{
		"sent":                 true,
		"resend_after_seconds": int(h.resendCooldown.Seconds()),
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) VerifyOTP(c fiber.Ctx) error {
	var req otpVerifyRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	usr, tokens, err := h.uc.VerifyOTP(c.Context(), req.Email, req.Purpose, req.Code)
	if err != nil {
		return mapOTPError(err)
	}

	data := map[string]any{
		"verified":      true,
		"user":          dto.NewUserResponse(usr),
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func (h *AuthHandler) AdminLogin(c fiber.Ctx) error {
	var req adminLoginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	usr, tokens, err := h.uc.LoginAdmin(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	data := map[string]any{
		"user":          dto.NewUserResponse(usr),
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

// All verification failures map to the same 401 so an unauthenticated
// caller cannot distinguish a live session from a missing one.
func mapOTPError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, otp.ErrInvalidAddress), errors.Is(err, otp.ErrInvalidPurpose):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, otp.ErrNotFound),
		errors.Is(err, otp.ErrExpired),
		errors.Is(err, otp.ErrInvalidCode),
		errors.Is(err, otp.ErrTooManyAttempts):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid or expired code", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid or expired code", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
