package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/files"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/persistence"
)

// writeOutcome reports an action result together with the current status.
func (h *IntakeHandler) writeOutcome(c *gin.Context, out persistence.Outcome, err error) {
	code := http.StatusOK
	body := gin.H{"status": h.coord.Status()}
	if out.Message != "" {
		body["message"] = out.Message
	}
	if out.Cancelled {
		body["cancelled"] = true
	}
	if err != nil {
		body["error"] = err.Error()
		switch {
		case errors.Is(err, persistence.ErrParseFailure), errors.Is(err, persistence.ErrEmptyImport):
			code = http.StatusBadRequest
		case errors.Is(err, persistence.ErrUnsupportedCapability):
			code = http.StatusNotImplemented
		default:
			code = http.StatusInternalServerError
		}
	}
	c.JSON(code, body)
}

// withChoice binds the optional picker answer onto the request context.
func withChoice(c *gin.Context) bool {
	var req choiceRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return false
	}
	c.Request = c.Request.WithContext(files.WithChoice(c.Request.Context(), req.Path))
	return true
}

func (h *IntakeHandler) newIntake(c *gin.Context) {
	h.writeOutcome(c, h.coord.NewIntake(c.Request.Context()), nil)
}

func (h *IntakeHandler) open(c *gin.Context) {
	if !withChoice(c) {
		return
	}
	out, err := h.coord.Open(c.Request.Context())
	h.writeOutcome(c, out, err)
}

func (h *IntakeHandler) save(c *gin.Context) {
	if !withChoice(c) {
		return
	}
	out, err := h.coord.Save(c.Request.Context())
	h.writeOutcome(c, out, err)
}

func (h *IntakeHandler) saveAs(c *gin.Context) {
	if !withChoice(c) {
		return
	}
	out, err := h.coord.SaveAs(c.Request.Context())
	h.writeOutcome(c, out, err)
}

// download returns the export as JSON, or as a file when ?attachment=1.
func (h *IntakeHandler) download(c *gin.Context) {
	exp, out, err := h.coord.Download(c.Request.Context())
	if err != nil {
		h.writeOutcome(c, out, err)
		return
	}
	if c.Query("attachment") == "1" {
		c.Header("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
		c.Data(http.StatusOK, "application/json", exp.Data)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  out.Message,
		"filename": exp.Filename,
		"json":     string(exp.Data),
		"status":   h.coord.Status(),
	})
}

// importJSON imports the body's json field, or the buffer when it is absent.
func (h *IntakeHandler) importJSON(c *gin.Context) {
	var req bufferRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	if req.JSON != nil {
		h.coord.SetBuffer(*req.JSON)
	}
	out, err := h.coord.ImportBuffer(c.Request.Context())
	h.writeOutcome(c, out, err)
}

func (h *IntakeHandler) getBuffer(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"json": h.coord.Buffer()})
}

func (h *IntakeHandler) putBuffer(c *gin.Context) {
	var req bufferRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.JSON == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "json field is required"})
		return
	}
	h.coord.SetBuffer(*req.JSON)
	c.Status(http.StatusNoContent)
}
