package controller

import (
	"io"

	"smartfusion-dashboard/internal/dto"
	"smartfusion-dashboard/internal/pkg/serverutils"
	"smartfusion-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
	Ingest(ctx *fiber.Ctx) error
	IngestStatus(ctx *fiber.Ctx) error
}

type documentController struct {
	registry  service.IRegistryService
	ingestion service.IIngestionService
}

func NewDocumentController(registry service.IRegistryService, ingestion service.IIngestionService) IDocumentController {
	return &documentController{
		registry:  registry,
		ingestion: ingestion,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Get("", c.List)
	h.Delete("", c.Delete)
	h.Put("selection", c.Select)
	h.Post("ingest", c.Ingest)
	h.Get("ingest/status", c.IngestStatus)
}

// List returns the registry snapshot; ?refresh=1 re-fetches from the
// backend first.
func (c *documentController) List(ctx *fiber.Ctx) error {
	if ctx.QueryBool("refresh") {
		if _, err := c.registry.Refresh(ctx.Context()); err != nil {
			return err
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("Stored documents", dto.DocumentListResponse{
		Documents: c.registry.Documents(),
		Selected:  c.registry.SelectedFilenames(),
	}))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	filename := ctx.Query("filename")
	confirmed := ctx.QueryBool("confirm")

	if err := c.registry.Remove(ctx.Context(), filename, confirmed); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document deleted", dto.DocumentListResponse{
		Documents: c.registry.Documents(),
		Selected:  c.registry.SelectedFilenames(),
	}))
}

func (c *documentController) Select(ctx *fiber.Ctx) error {
	var req dto.SelectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	c.registry.SetSelection(req.Filenames)
	return ctx.JSON(serverutils.SuccessResponse("Selection updated", c.registry.SelectedFilenames()))
}

// Ingest accepts multipart uploads (files[] + metadata fields) or, with
// no files attached, a link in the text field.
func (c *documentController) Ingest(ctx *fiber.Ctx) error {
	meta := dto.IngestMetadata{
		Country:    ctx.FormValue("country"),
		JobArea:    ctx.FormValue("job_area"),
		SourceType: ctx.FormValue("source_type"),
	}
	if err := serverutils.ValidateRequest(meta); err != nil {
		return err
	}

	sub := service.Submission{
		Text:       ctx.FormValue("text"),
		Country:    meta.Country,
		JobArea:    meta.JobArea,
		SourceType: meta.SourceType,
	}

	if form, err := ctx.MultipartForm(); err == nil && form != nil {
		for _, header := range form.File["files"] {
			file, err := header.Open()
			if err != nil {
				return err
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return err
			}
			sub.Files = append(sub.Files, service.FileUpload{Name: header.Filename, Data: data})
		}
	}

	if err := c.ingestion.Submit(ctx.Context(), sub); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Submission accepted", c.ingestion.Status()))
}

func (c *documentController) IngestStatus(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Ingestion status", c.ingestion.Status()))
}
