package Controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"Folio/Models"
	"Folio/Relay"
)

// ContactController exposes the relay over HTTP
type ContactController struct {
	Relay  *Relay.Service
	Logger *zap.Logger
}

// NewContactController creates a new ContactController
func NewContactController(relay *Relay.Service, logger *zap.Logger) *ContactController {
	return &ContactController{Relay: relay, Logger: logger}
}

// Submit handles POST /api/contact
func (c *ContactController) Submit(ctx *fiber.Ctx) error {
	var input Models.Submission
	if err := ctx.BodyParser(&input); err != nil {
		// An unreadable body carries no fields.
		c.Logger.Debug("unparseable contact body", zap.Error(err), zap.String("ip", ctx.IP()))
		input = Models.Submission{}
	}

	// IP() may alias the request buffer, which fasthttp reuses after the
	// handler returns; the counter keeps the key much longer.
	clientKey := utils.CopyString(ctx.IP())

	// Delivery is not aborted when the client goes away.
	err := c.Relay.SubmitContact(context.WithoutCancel(ctx.UserContext()), clientKey, input)
	if err != nil {
		return ctx.Status(Relay.StatusOf(err)).JSON(Models.Result{
			Ok:    false,
			Error: Relay.PublicMessage(err),
		})
	}

	return ctx.JSON(Models.Result{Ok: true})
}

// Health reports that the process is serving
func Health(ctx *fiber.Ctx) error {
	return ctx.JSON(Models.Result{Ok: true})
}
