package controller

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxUploadFiles = 20

type IDocumentController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Upload(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IIngestionService
}

func NewDocumentController(service service.IIngestionService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/documents/v1")
	h.Use(guard)
	h.Post("upload", c.Upload)
}

// Upload accepts multipart "files" (PDF only). With ?async=true the batch
// is queued and 202 is returned immediately.
func (c *documentController) Upload(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Expected multipart form with files")
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No files uploaded")
	}
	if len(headers) > maxUploadFiles {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("At most %d files per upload", maxUploadFiles))
	}

	files := make([]dto.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s is not a PDF", fh.Filename))
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return err
		}
		files = append(files, dto.UploadedFile{Name: filepath.Base(fh.Filename), Data: data})
	}

	if ctx.QueryBool("async") {
		res, err := c.service.Enqueue(ctx.UserContext(), files)
		if err != nil {
			return err
		}
		out := serverutils.SuccessResponse("Upload queued for ingestion", res)
		out.Code = fiber.StatusAccepted
		return ctx.Status(fiber.StatusAccepted).JSON(out)
	}

	uploaded, err := c.service.Ingest(ctx.UserContext(), files)
	if err != nil {
		return err
	}
	if !uploaded {
		res := serverutils.ErrorResponse(fiber.StatusUnprocessableEntity, "No readable text found in the uploaded files")
		res.Data = dto.UploadResponse{Uploaded: false, Files: len(files)}
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(res)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload documents", dto.UploadResponse{Uploaded: true, Files: len(files)}))
}
