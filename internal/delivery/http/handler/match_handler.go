package handler

import (
	"errors"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/pkg/response"
	"hireflow/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchHandler struct {
	uc   usecase.MatchingUsecase
	auth *middleware.AuthMiddleware
}

func NewMatchHandler(uc usecase.MatchingUsecase, auth *middleware.AuthMiddleware) *MatchHandler {
	return &MatchHandler{uc: uc, auth: auth}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/jobs")
	grp.Get("/matches", h.GetRankedJobs)
	grp.Get("/:job_id/matches", h.GetApplicants, h.auth.RequireAdmin())
}

// GetRankedJobs returns the caller's open jobs ordered by match score.
// Jobs the caller already applied to are excluded.
func (h *MatchHandler) GetRankedJobs(c fiber.Ctx) error {
	userID, ok := middleware.UserIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	matches, err := h.uc.RankJobsForProfile(c.Context(), userID)
	if err != nil {
		return mapMatchingError(err)
	}

	out := make([]dto.JobMatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, dto.JobMatchResponse{Job: dto.NewJobResponse(m.Job), Score: m.Score})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *MatchHandler) GetApplicants(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	matches, err := h.uc.FilterApplicantsForJob(c.Context(), jobID)
	if err != nil {
		return mapMatchingError(err)
	}

	out := make([]dto.ApplicantMatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, dto.ApplicantMatchResponse{
			Application: dto.NewApplicationResponse(m.Application),
			Profile:     dto.NewProfileResponse(m.Profile),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func mapMatchingError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
