package pbx

import (
	"context"

	"ivr-service/internal/domain/call"
	domivr "ivr-service/internal/domain/ivr"
	"ivr-service/internal/pkg/response"
	"ivr-service/internal/service/calllog"
	ivrservice "ivr-service/internal/service/ivr"
	menusvc "ivr-service/internal/service/menu"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// knownPBXParams are the reserved telephony parameters; everything else on
// the query string goes into the call's extra bag.
var knownPBXParams = map[string]struct{}{
	"PBXcallId":        {},
	"PBXphone":         {},
	"PBXnum":           {},
	"PBXdid":           {},
	"PBXextensionId":   {},
	"PBXextensionPath": {},
	"PBXcallType":      {},
	"PBXcallStatus":    {},
}

type PBXHandler struct {
	engine  *ivrservice.Engine
	builder *menusvc.Builder
	calls   *calllog.Logger
	logger  *zap.Logger
}

func NewPBXHandler(engine *ivrservice.Engine, builder *menusvc.Builder, calls *calllog.Logger, logger *zap.Logger) *PBXHandler {
	return &PBXHandler{
		engine:  engine,
		builder: builder,
		calls:   calls,
		logger:  logger,
	}
}

// HandleCall serves the initial PBX hit for a call.
func (h *PBXHandler) HandleCall(c *gin.Context) {
	meta := metadataFromQuery(c)
	if meta.PhoneNumber == "" {
		response.ValidationError(c, "missing PBXphone parameter", nil)
		return
	}

	ctx := c.Request.Context()
	h.logCall(ctx, meta)

	decision := h.engine.HandleEntry(ctx, meta)
	response.Menu(c, h.builder.Build(decision))
}

// HandleMenuInput serves one menu answer. The PBX usually sends the value
// in a parameter named after the step, but some firmware versions put it
// under the field name instead, so unrecognized names are rescanned.
func (h *PBXHandler) HandleMenuInput(c *gin.Context) {
	meta := metadataFromQuery(c)

	stepName := c.Param("step")
	value := c.Query(stepName)
	if value == "" {
		for _, name := range domivr.KnownStepNames() {
			if v := c.Query(name); v != "" {
				stepName, value = name, v
				break
			}
		}
	}

	ctx := c.Request.Context()
	h.logCall(ctx, meta)

	if value == "" {
		response.Menu(c, h.builder.Build(domivr.Decision{Kind: domivr.DecideInvalidChoice}))
		return
	}

	step := domivr.ParseStep(stepName)
	decision := h.engine.HandleInput(ctx, meta, step, value)
	response.Menu(c, h.builder.Build(decision))
}

func (h *PBXHandler) logCall(ctx context.Context, meta call.Metadata) {
	if meta.CallID == "" {
		return
	}
	if err := h.calls.Log(ctx, meta); err != nil {
		h.logger.Warn("failed to log call", zap.String("call_id", meta.CallID), zap.Error(err))
	}
}

func metadataFromQuery(c *gin.Context) call.Metadata {
	meta := call.Metadata{
		CallID:        c.Query("PBXcallId"),
		PhoneNumber:   c.Query("PBXphone"),
		Num:           c.Query("PBXnum"),
		DID:           c.Query("PBXdid"),
		ExtensionID:   c.Query("PBXextensionId"),
		ExtensionPath: c.Query("PBXextensionPath"),
		CallType:      c.Query("PBXcallType"),
		CallStatus:    c.Query("PBXcallStatus"),
		Extra:         map[string]string{},
	}
	for key, values := range c.Request.URL.Query() {
		if _, reserved := knownPBXParams[key]; reserved {
			continue
		}
		if len(values) > 0 {
			meta.Extra[key] = values[0]
		}
	}
	return meta
}
