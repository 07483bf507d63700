package orchestrator

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"interop/internal/logger"
	"interop/pkg/errors"
)

type Handler struct {
	orchestrator *Orchestrator
	logger       logger.Logger
}

func NewHandler(o *Orchestrator, log logger.Logger) *Handler {
	return &Handler{
		orchestrator: o,
		logger:       log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/hl7/simulate", h.Simulate)
}

type simulateRequest struct {
	HL7        string            `json:"hl7" binding:"required"`
	Simulation SimulationOptions `json:"simulation"`
}

// Simulate godoc
// @Summary      Process an HL7 v2 message through the pipeline
// @Description  Parses, validates, classifies and converts the message, then runs the agent stages. Validation failures still return 200 with valid=false; non-2xx codes are reserved for injected simulation faults.
// @Tags         hl7
// @Accept       json
// @Produce      json
// @Success      200  {object}  Response
// @Failure      400  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /hl7/simulate [post]
func (h *Handler) Simulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	response, err := h.orchestrator.Process(c.Request.Context(), Request{
		HL7:        req.HL7,
		Simulation: req.Simulation,
	})
	if err != nil {
		h.handleProcessError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) handleProcessError(c *gin.Context, err error) {
	var fault *Fault
	if stderrors.As(err, &fault) {
		c.JSON(fault.Status, gin.H{
			"error":      fault.Message,
			"error_code": "SIMULATED_FAULT",
			"scenario":   fault.Scenario,
		})
		return
	}

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		h.logger.WarnwCtx(c.Request.Context(), "Pipeline run canceled", "error", err)
		c.JSON(errors.ErrCanceled.Status, errors.ToErrorResponse(errors.ErrCanceled.WithCause(err)))
		return
	}

	h.logger.ErrorwCtx(c.Request.Context(), "Pipeline run failed", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}
