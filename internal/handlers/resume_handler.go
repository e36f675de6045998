package handlers

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
	"alfredoptarigan/resume-matcher/pkg/apperrors"
)

type ResumeHandler struct {
	resumeRepo     repositories.ResumeRepository
	extractor      services.ExtractorService
	storageService services.StorageService
	usageService   services.UsageService
	analyzer       services.AnalyzerService
}

func NewResumeHandler(
	resumeRepo repositories.ResumeRepository,
	extractor services.ExtractorService,
	storageService services.StorageService,
	usageService services.UsageService,
	analyzer services.AnalyzerService,
) *ResumeHandler {
	return &ResumeHandler{
		resumeRepo:     resumeRepo,
		extractor:      extractor,
		storageService: storageService,
		usageService:   usageService,
		analyzer:       analyzer,
	}
}

// HandleUpload handles POST /resumes. Extraction failures surface here, at
// upload time, never later at analysis time.
func (h *ResumeHandler) HandleUpload(c *fiber.Ctx) error {
	session := currentSession(c)

	access, err := h.usageService.CheckAccess(session.UserID, services.FeatureResumes)
	if err != nil {
		return respondError(c, err)
	}
	if !access.CanAccess {
		return respondError(c, apperrors.QuotaExceeded("resume", access.Limit, access.Remaining))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no file provided",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	mimeType := fileHeader.Header.Get(fiber.HeaderContentType)
	parsedText, err := h.extractor.Extract(data, mimeType)
	if err != nil {
		return respondError(c, err)
	}

	fileURL, filePath, err := h.storageService.Save(data, fileHeader.Filename)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store file",
		})
	}

	resume := &models.Resume{
		ID:         uuid.New(),
		UserID:     session.UserID,
		FileURL:    fileURL,
		FileName:   fileHeader.Filename,
		ParsedText: &parsedText,
	}

	if err := h.resumeRepo.Create(resume); err != nil {
		if delErr := h.storageService.Delete(filePath); delErr != nil {
			slog.Warn("failed to clean up stored file", "path", filePath, "error", delErr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save resume record",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resume)
}

// HandleList handles GET /resumes.
func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	session := currentSession(c)
	limit, offset := paginationParams(c, 10)

	resumes, total, err := h.resumeRepo.ListByUser(session.UserID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"resumes": resumes,
		"pagination": models.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+limit) < total,
		},
	})
}

// HandleGet handles GET /resumes/:id.
func (h *ResumeHandler) HandleGet(c *fiber.Ctx) error {
	session := currentSession(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid resume id",
		})
	}

	resume, err := h.resumeRepo.FindDetail(id, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, apperrors.New(apperrors.KindNotFound, "resume not found"))
		}
		return respondError(c, err)
	}

	return c.JSON(resume)
}

// HandleDelete handles DELETE /resumes/:id. Match results and the analysis
// go with the resume in one transaction; the stored file goes best-effort.
func (h *ResumeHandler) HandleDelete(c *fiber.Ctx) error {
	session := currentSession(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid resume id",
		})
	}

	resume, err := h.resumeRepo.FindByIDForUser(id, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, apperrors.New(apperrors.KindNotFound, "resume not found"))
		}
		return respondError(c, err)
	}

	if err := h.resumeRepo.DeleteCascade(resume.ID); err != nil {
		return respondError(c, err)
	}

	if err := h.storageService.Delete(resume.FileURL); err != nil {
		slog.Warn("failed to delete stored file", "resume_id", resume.ID, "error", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "resume deleted successfully",
	})
}

// HandleAnalyze handles POST /resumes/:id/analysis.
func (h *ResumeHandler) HandleAnalyze(c *fiber.Ctx) error {
	session := currentSession(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid resume id",
		})
	}

	var req models.AnalyzeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request payload",
			})
		}
	}

	analysis, err := h.analyzer.Analyze(c.UserContext(), session.UserID, id, req.JobDescription)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"analysis": analysis,
	})
}

// HandleGetAnalysis handles GET /resumes/:id/analysis.
func (h *ResumeHandler) HandleGetAnalysis(c *fiber.Ctx) error {
	session := currentSession(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid resume id",
		})
	}

	resume, err := h.resumeRepo.FindByIDForUser(id, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, apperrors.New(apperrors.KindNotFound, "resume not found"))
		}
		return respondError(c, err)
	}

	if resume.Analysis == nil {
		return respondError(c, apperrors.New(apperrors.KindNotFound, "no analysis found for this resume"))
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"analysis": resume.Analysis,
	})
}

// HandleDeleteAnalysis handles DELETE /resumes/:id/analysis. Deleting is the
// only way to re-analyze a resume.
func (h *ResumeHandler) HandleDeleteAnalysis(c *fiber.Ctx) error {
	session := currentSession(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid resume id",
		})
	}

	resume, err := h.resumeRepo.FindByIDForUser(id, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, apperrors.New(apperrors.KindNotFound, "resume not found"))
		}
		return respondError(c, err)
	}

	if resume.Analysis == nil {
		return respondError(c, apperrors.New(apperrors.KindNotFound, "no analysis found for this resume"))
	}

	if err := h.resumeRepo.DeleteAnalysis(resume.Analysis.ID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "analysis deleted successfully",
	})
}
