package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/interfaces"
	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/tracing"
	"github.com/customeros/mailsorter/internal/utils"
)

const TriggerManual = "manual"

// TriggerRun runs the pipeline synchronously. The run is not cancelled if the client goes away.
func TriggerRun(processor interfaces.EmailProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.TriggerRun")
		defer span.Finish()
		tracing.SetDefaultServiceSpanTags(ctx, span)

		ctx = utils.WithTrigger(context.WithoutCancel(ctx), TriggerManual)
		processed, err := processor.RunOnce(ctx)

		if err != nil {
			if errors.Is(err, mserrors.ErrRunInProgress) {
				c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
				return
			}
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error(), RunID: lastRunID(processor)})
			return
		}

		c.JSON(http.StatusOK, dto.RunResponse{Processed: processed, RunID: lastRunID(processor)})
	}
}

func lastRunID(processor interfaces.EmailProcessor) string {
	if stats := processor.Status(); stats != nil {
		return stats.RunID
	}
	return ""
}
