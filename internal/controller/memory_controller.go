package controller

import (
	"project-memory-be/internal/dto"
	"project-memory-be/internal/pkg/serverutils"
	"project-memory-be/internal/service"
	"project-memory-be/pkg/errs"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMemoryController interface {
	RegisterRoutes(r fiber.Router)
	Trigger(ctx *fiber.Ctx) error
	Publish(ctx *fiber.Ctx) error
	EmbedChunks(ctx *fiber.Ctx) error
	SuggestSteps(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	RecomputeProfile(ctx *fiber.Ctx) error
	SaveContent(ctx *fiber.Ctx) error
	ChangeStatus(ctx *fiber.Ctx) error
}

type memoryController struct {
	memoryService        service.IMemoryService
	suggestionService    service.ISuggestionService
	contextSearchService service.IContextSearchService
	documentService      service.IDocumentService
}

func NewMemoryController(
	memoryService service.IMemoryService,
	suggestionService service.ISuggestionService,
	contextSearchService service.IContextSearchService,
	documentService service.IDocumentService,
) IMemoryController {
	return &memoryController{
		memoryService:        memoryService,
		suggestionService:    suggestionService,
		contextSearchService: contextSearchService,
		documentService:      documentService,
	}
}

func (c *memoryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/memory/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/trigger", c.Trigger)
	h.Post("/publish", c.Publish)
	h.Post("/chunks/embed", c.EmbedChunks)
	h.Post("/suggestions", c.SuggestSteps)
	h.Post("/search", c.Search)
	h.Post("/profile/recompute", c.RecomputeProfile)
	h.Put("/documents/:id/content", c.SaveContent)
	h.Put("/documents/:id/status", c.ChangeStatus)
}

func currentUser(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user")
	}
	return userId, nil
}

// bind parses and validates the JSON body into req.
func bind(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return errs.ErrInvalidRequest.WithMessage("malformed request body")
	}
	return serverutils.ValidateRequest(req)
}

func documentParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, errs.ErrInvalidRequest.WithMessage("invalid document id")
	}
	return id, nil
}

func (c *memoryController) Trigger(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.TriggerPipelineRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.memoryService.Trigger(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document summarized", res))
}

func (c *memoryController) Publish(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.PublishMemoryRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.memoryService.PublishOrDisconnect(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	if req.Action == dto.MemoryActionDisconnect {
		return ctx.JSON(serverutils.SuccessResponse("Memory disconnected", res))
	}
	return ctx.JSON(serverutils.SuccessResponse("Memory published", res))
}

func (c *memoryController) EmbedChunks(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.EmbedChunksRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.memoryService.EmbedChunks(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chunks embedded", res))
}

func (c *memoryController) SuggestSteps(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.SuggestStepsRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.suggestionService.SuggestSteps(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Step suggestions", res))
}

func (c *memoryController) Search(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.ContextSearchRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.contextSearchService.Search(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Context search results", res))
}

func (c *memoryController) RecomputeProfile(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.RecomputeProfileRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	res, err := c.memoryService.RecomputeProfile(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Project profile recomputed", res))
}

func (c *memoryController) SaveContent(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	documentId, err := documentParam(ctx)
	if err != nil {
		return err
	}
	var req dto.SaveContentRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	req.DocumentId = documentId

	res, err := c.documentService.SaveContent(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document content saved", res))
}

func (c *memoryController) ChangeStatus(ctx *fiber.Ctx) error {
	userId, err := currentUser(ctx)
	if err != nil {
		return err
	}
	documentId, err := documentParam(ctx)
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	req.DocumentId = documentId

	res, err := c.documentService.ChangeStatus(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document status updated", res))
}
