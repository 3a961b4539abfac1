package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/persistence"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/reconciler"
)

// Notifications for the card actions.
const (
	MsgCopied        = "Copied!"
	MsgNothingToCopy = "Nothing to copy"
	MsgVINFirst      = "Enter 17-character VIN first"
)

// IntakeHandler exposes the intake form and its persistence actions over HTTP.
type IntakeHandler struct {
	form  *reconciler.Form
	coord *persistence.Coordinator
}

func NewIntakeHandler(form *reconciler.Form, coord *persistence.Coordinator) *IntakeHandler {
	return &IntakeHandler{form: form, coord: coord}
}

// Register mounts the intake routes under /api/intake.
func (h *IntakeHandler) Register(r gin.IRouter) {
	g := r.Group("/api/intake")
	g.GET("", h.getDocument)
	g.GET("/view", h.getView)
	g.GET("/status", h.getStatus)

	g.PUT("/customer", h.putCustomer)
	g.PUT("/counts/:kind", h.putCount)
	g.PATCH("/drivers/:i", h.patchDriver)
	g.PATCH("/vehicles/:i", h.patchVehicle)

	g.POST("/vehicles/:i/decode", h.decodeVehicle)
	g.POST("/vehicles/:i/blur", h.blurVehicle)
	g.POST("/vehicles/:i/copy-vin", h.copyVIN)
	g.GET("/vehicles/:i/decoder-url", h.decoderURL)
	g.POST("/drivers/:i/copy-license", h.copyLicense)

	g.POST("/new", h.newIntake)
	g.POST("/open", h.open)
	g.POST("/save", h.save)
	g.POST("/save-as", h.saveAs)
	g.POST("/download", h.download)
	g.POST("/import", h.importJSON)
	g.GET("/buffer", h.getBuffer)
	g.PUT("/buffer", h.putBuffer)
}

// choiceRequest answers the picker prompt of open/save/save-as. An empty
// path means the user dismissed the picker.
type choiceRequest struct {
	Path string `json:"path"`
}

type customerRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

type countRequest struct {
	Count *int `json:"count" binding:"required"`
}

type driverRequest struct {
	Name         *string `json:"name"`
	DOB          *string `json:"dob"`
	LicenseState *string `json:"licenseState"`
	License      *string `json:"license"`
}

type vehicleRequest struct {
	VIN *string `json:"vin"`
}

type bufferRequest struct {
	JSON *string `json:"json"`
}

// bindOptional binds a JSON body that may be absent.
func bindOptional(c *gin.Context, v interface{}) error {
	if c.Request.Body == nil {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func index(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("i"))
	if err != nil || i < 0 {
		badRequest(c, fmt.Errorf("invalid card index %q", c.Param("i")))
		return 0, false
	}
	return i, true
}

// formError maps reconciler errors to responses.
func formError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reconciler.ErrNoSuchCard):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reconciler.ErrUnknownField):
		badRequest(c, err)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *IntakeHandler) getDocument(c *gin.Context) {
	c.JSON(http.StatusOK, h.form.Snapshot())
}

func (h *IntakeHandler) getView(c *gin.Context) {
	c.JSON(http.StatusOK, h.form.View())
}

func (h *IntakeHandler) getStatus(c *gin.Context) {
	hd, bound := h.coord.Handle()
	c.JSON(http.StatusOK, gin.H{
		"status":            h.coord.Status(),
		"bound":             bound,
		"handle":            hd.Name,
		"suggestedFilename": h.coord.SuggestedFilename(),
	})
}

func (h *IntakeHandler) putCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	for field, v := range map[string]*string{"name": req.Name, "phone": req.Phone, "email": req.Email} {
		if v == nil {
			continue
		}
		if err := h.form.SetCustomerField(field, *v); err != nil {
			formError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.form.Snapshot().Customer)
}

func (h *IntakeHandler) putCount(c *gin.Context) {
	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n := *req.Count
	if n < 0 || n > reconciler.MaxCount {
		badRequest(c, fmt.Errorf("count must be between 0 and %d", reconciler.MaxCount))
		return
	}
	switch c.Param("kind") {
	case "drivers":
		h.form.SetDriverCount(n)
	case "vehicles":
		h.form.SetVehicleCount(n)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown count " + c.Param("kind")})
		return
	}
	c.JSON(http.StatusOK, h.form.View())
}

func (h *IntakeHandler) patchDriver(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	var req driverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.LicenseState != nil && !reconciler.IsLicenseState(*req.LicenseState) {
		badRequest(c, fmt.Errorf("unknown license state %q", *req.LicenseState))
		return
	}
	fields := []struct {
		name string
		v    *string
	}{{"name", req.Name}, {"dob", req.DOB}, {"licenseState", req.LicenseState}, {"license", req.License}}
	for _, f := range fields {
		if f.v == nil {
			continue
		}
		if err := h.form.SetDriverField(i, f.name, *f.v); err != nil {
			formError(c, err)
			return
		}
	}
	v := h.form.View()
	if i >= len(v.Drivers) {
		formError(c, reconciler.ErrNoSuchCard)
		return
	}
	c.JSON(http.StatusOK, v.Drivers[i])
}

func (h *IntakeHandler) patchVehicle(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.VIN != nil {
		if err := h.form.SetVehicleVIN(i, *req.VIN); err != nil {
			formError(c, err)
			return
		}
	}
	v := h.form.View()
	if i >= len(v.Vehicles) {
		formError(c, reconciler.ErrNoSuchCard)
		return
	}
	c.JSON(http.StatusOK, v.Vehicles[i])
}

func (h *IntakeHandler) decodeVehicle(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	res, err := h.form.DecodeVehicle(c.Request.Context(), i)
	if err != nil {
		formError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": res.OK, "decoded": res.Text})
}

func (h *IntakeHandler) blurVehicle(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	res, decoded, err := h.form.BlurVehicle(c.Request.Context(), i)
	if err != nil {
		formError(c, err)
		return
	}
	body := gin.H{"decodeRan": decoded}
	if decoded {
		body["ok"] = res.OK
		body["decoded"] = res.Text
	}
	c.JSON(http.StatusOK, body)
}

func (h *IntakeHandler) copyVIN(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	text, err := h.form.CopyVIN(c.Request.Context(), i)
	h.copied(c, text, err)
}

func (h *IntakeHandler) copyLicense(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	text, err := h.form.CopyLicense(c.Request.Context(), i)
	h.copied(c, text, err)
}

func (h *IntakeHandler) copied(c *gin.Context, text string, err error) {
	switch {
	case errors.Is(err, reconciler.ErrNothingToCopy):
		c.JSON(http.StatusOK, gin.H{"message": MsgNothingToCopy})
	case err != nil:
		formError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": MsgCopied, "text": text})
	}
}

func (h *IntakeHandler) decoderURL(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	u, ok, err := h.form.DecoderURL(i)
	if err != nil {
		formError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": MsgVINFirst})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}
