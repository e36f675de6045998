package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
	"alfredoptarigan/resume-matcher/pkg/apperrors"
)

const minJobDescriptionLength = 10

type JobHandler struct {
	jobRepo      repositories.JobRepository
	usageService services.UsageService
}

func NewJobHandler(
	jobRepo repositories.JobRepository,
	usageService services.UsageService,
) *JobHandler {
	return &JobHandler{
		jobRepo:      jobRepo,
		usageService: usageService,
	}
}

// HandleCreate handles POST /jobs.
func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	session := currentSession(c)

	access, err := h.usageService.CheckAccess(session.UserID, services.FeatureJobDescriptions)
	if err != nil {
		return respondError(c, err)
	}
	if !access.CanAccess {
		return respondError(c, apperrors.QuotaExceeded("job description", access.Limit, access.Remaining))
	}

	var req models.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title is required",
		})
	}
	if len(strings.TrimSpace(req.Description)) < minJobDescriptionLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "description is too short",
		})
	}
	if len(req.Skills) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "at least one skill is required",
		})
	}

	job := &models.JobDescription{
		ID:          uuid.New(),
		UserID:      session.UserID,
		Title:       strings.TrimSpace(req.Title),
		CompanyName: strings.TrimSpace(req.CompanyName),
		Description: strings.TrimSpace(req.Description),
		Skills:      models.StringList(req.Skills),
	}

	if err := h.jobRepo.Create(job); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"job":     job,
	})
}

// HandleList handles GET /jobs.
func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	session := currentSession(c)
	limit, offset := paginationParams(c, 20)

	jobs, total, err := h.jobRepo.ListByUser(session.UserID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"jobs": jobs,
		"pagination": models.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+limit) < total,
		},
	})
}

// HandleGet handles GET /jobs/:id.
func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	session := currentSession(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job id",
		})
	}

	job, err := h.jobRepo.FindDetail(id, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, apperrors.New(apperrors.KindNotFound, "job description not found"))
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"job":     job,
	})
}

// HandleUpdate handles PUT /jobs/:id.
func (h *JobHandler) HandleUpdate(c *fiber.Ctx) error {
	session := currentSession(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job id",
		})
	}

	var req models.UpdateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	job, err := h.jobRepo.FindByIDForUser(id, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, apperrors.New(apperrors.KindNotFound, "job description not found"))
		}
		return respondError(c, err)
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "title cannot be empty",
			})
		}
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.CompanyName != nil {
		job.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.Description != nil {
		if len(strings.TrimSpace(*req.Description)) < minJobDescriptionLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "description is too short",
			})
		}
		job.Description = strings.TrimSpace(*req.Description)
	}
	if req.Skills != nil {
		if len(req.Skills) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "at least one skill is required",
			})
		}
		job.Skills = models.StringList(req.Skills)
	}

	if err := h.jobRepo.Update(job); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"job":     job,
		"message": "job description updated successfully",
	})
}

// HandleDelete handles DELETE /jobs/:id. Matches go with the job in one
// transaction.
func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	session := currentSession(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job id",
		})
	}

	job, err := h.jobRepo.FindByIDForUser(id, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, apperrors.New(apperrors.KindNotFound, "job description not found"))
		}
		return respondError(c, err)
	}

	if err := h.jobRepo.DeleteCascade(job.ID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "job description deleted successfully",
	})
}
