package controller

import (
	"smartfusion-dashboard/internal/dto"
	"smartfusion-dashboard/internal/pkg/serverutils"
	"smartfusion-dashboard/internal/service"
	"smartfusion-dashboard/pkg/ragapi"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Metadata(ctx *fiber.Ctx) error
}

type searchController struct {
	search service.ISearchService
}

func NewSearchController(search service.ISearchService) ISearchController {
	return &searchController{search: search}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	r.Post("/search", c.Search)
	r.Get("/metadata", c.Metadata)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	filters := ragapi.FilterCriteria{
		Country:    req.Country,
		JobArea:    req.JobArea,
		SourceType: req.SourceType,
	}
	res, err := c.search.Search(ctx.Context(), filters, req.Question)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

func (c *searchController) Metadata(ctx *fiber.Ctx) error {
	opts, err := c.search.MetadataOptions(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Filter options", opts))
}
