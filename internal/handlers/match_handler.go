package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
	"alfredoptarigan/resume-matcher/pkg/apperrors"
)

type MatchHandler struct {
	matchRepo repositories.MatchRepository
	matcher   services.MatcherService
}

func NewMatchHandler(
	matchRepo repositories.MatchRepository,
	matcher services.MatcherService,
) *MatchHandler {
	return &MatchHandler{
		matchRepo: matchRepo,
		matcher:   matcher,
	}
}

// HandleCreate handles POST /matches.
func (h *MatchHandler) HandleCreate(c *fiber.Ctx) error {
	session := currentSession(c)

	var req models.CreateMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	if req.ResumeID == "" || req.JobID == "" {
		return respondError(c, apperrors.New(apperrors.KindBadRequest, "resume_id and job_id are required"))
	}

	resumeID, err := uuid.Parse(req.ResumeID)
	if err != nil {
		return respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid resume_id format"))
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid job_id format"))
	}

	match, err := h.matcher.Match(c.UserContext(), session.UserID, resumeID, jobID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"match":   match,
	})
}

// HandleList handles GET /matches with optional resumeId/jobId/minScore
// filters.
func (h *MatchHandler) HandleList(c *fiber.Ctx) error {
	session := currentSession(c)
	limit, offset := paginationParams(c, 20)

	var filter repositories.MatchFilter
	if raw := c.Query("resumeId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid resumeId format"))
		}
		filter.ResumeID = id
	}
	if raw := c.Query("jobId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, apperrors.New(apperrors.KindBadRequest, "invalid jobId format"))
		}
		filter.JobID = id
	}
	if raw := c.Query("minScore"); raw != "" {
		minScore := c.QueryInt("minScore", -1)
		if minScore < 0 || minScore > 100 {
			return respondError(c, apperrors.New(apperrors.KindBadRequest, "minScore must be between 0 and 100"))
		}
		filter.MinScore = minScore
		filter.HasMin = true
	}

	matches, total, err := h.matchRepo.ListByUser(session.UserID, filter, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"matches": matches,
		"pagination": models.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+limit) < total,
		},
	})
}

// HandleGet handles GET /matches/:id.
func (h *MatchHandler) HandleGet(c *fiber.Ctx) error {
	session := currentSession(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid match id",
		})
	}

	match, err := h.matchRepo.FindByIDForUser(id, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, apperrors.New(apperrors.KindNotFound, "match not found"))
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"match":   match,
	})
}

// HandleDelete handles DELETE /matches/:id.
func (h *MatchHandler) HandleDelete(c *fiber.Ctx) error {
	session := currentSession(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid match id",
		})
	}

	match, err := h.matchRepo.FindByIDForUser(id, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, apperrors.New(apperrors.KindNotFound, "match not found"))
		}
		return respondError(c, err)
	}

	if err := h.matchRepo.Delete(match.ID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "match deleted successfully",
	})
}
