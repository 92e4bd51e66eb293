package controller

import (
	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/serverutils"
	"docqa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Ask(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/chat/v1")
	h.Use(guard)
	h.Post("", c.Ask)
	h.Get(":threadId/history", c.History)
	h.Delete(":threadId", c.Reset)
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	res, err := c.service.History(ctx.UserContext(), ctx.Params("threadId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get thread history", res))
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	if err := c.service.Reset(ctx.UserContext(), ctx.Params("threadId")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear thread", nil))
}
