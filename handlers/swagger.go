package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the intake service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>quote-intake Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document for the intake endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "quote-intake", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Choice": { "type": "object", "properties": { "path": { "type": "string", "description": "picker answer; empty cancels" } } },
      "Outcome": { "type": "object", "properties": { "message": {"type":"string"}, "cancelled": {"type":"boolean"}, "error": {"type":"string"}, "status": {"type":"object"} } }
    }
  },
  "paths": {
    "/api/intake": { "get": { "summary": "Current document snapshot", "responses": { "200": { "description": "document" } } } },
    "/api/intake/view": { "get": { "summary": "Rendered cards with VINs as typed", "responses": { "200": { "description": "view" } } } },
    "/api/intake/status": { "get": { "summary": "Status line, bound handle and suggested filename", "responses": { "200": { "description": "status" } } } },
    "/api/intake/customer": { "put": { "summary": "Update customer fields", "responses": { "200": { "description": "customer" } } } },
    "/api/intake/counts/{kind}": { "put": { "summary": "Change the driver or vehicle count (0-10) keeping entered data", "parameters": [{"name":"kind","in":"path","required":true,"schema":{"type":"string","enum":["drivers","vehicles"]}}], "responses": { "200": { "description": "view" }, "400": { "description": "count out of range" } } } },
    "/api/intake/drivers/{i}": { "patch": { "summary": "Update driver card fields", "responses": { "200": { "description": "driver" }, "404": { "description": "no such card" } } } },
    "/api/intake/vehicles/{i}": { "patch": { "summary": "Update the VIN of a vehicle card", "responses": { "200": { "description": "vehicle" }, "404": { "description": "no such card" } } } },
    "/api/intake/vehicles/{i}/decode": { "post": { "summary": "Decode the VIN of a vehicle card", "responses": { "200": { "description": "decode result" } } } },
    "/api/intake/vehicles/{i}/blur": { "post": { "summary": "VIN field lost focus; decodes a changed 17-character VIN", "responses": { "200": { "description": "blur result" } } } },
    "/api/intake/vehicles/{i}/copy-vin": { "post": { "summary": "Copy the normalized VIN", "responses": { "200": { "description": "copied text" } } } },
    "/api/intake/vehicles/{i}/decoder-url": { "get": { "summary": "Public VIN decoder page", "responses": { "200": { "description": "url" }, "400": { "description": "VIN is not 17 characters" } } } },
    "/api/intake/drivers/{i}/copy-license": { "post": { "summary": "Copy state and license number", "responses": { "200": { "description": "copied text" } } } },
    "/api/intake/new": { "post": { "summary": "Start a blank intake and unbind the file", "responses": { "200": { "description": "outcome" } } } },
    "/api/intake/open": { "post": { "summary": "Open a file and bind it", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Choice" } } } }, "responses": { "200": { "description": "outcome" }, "400": { "description": "invalid JSON" }, "501": { "description": "no file access on this host" } } } },
    "/api/intake/save": { "post": { "summary": "Save to the bound file, or Save As when unbound", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Choice" } } } }, "responses": { "200": { "description": "outcome" }, "501": { "description": "no file access on this host" } } } },
    "/api/intake/save-as": { "post": { "summary": "Save to a newly chosen file and bind it", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Choice" } } } }, "responses": { "200": { "description": "outcome" }, "501": { "description": "no file access on this host" } } } },
    "/api/intake/download": { "post": { "summary": "Export pretty JSON without binding (?attachment=1 for a file)", "responses": { "200": { "description": "export" } } } },
    "/api/intake/import": { "post": { "summary": "Import JSON from the body or the buffer and unbind the file", "responses": { "200": { "description": "outcome" }, "400": { "description": "invalid or empty JSON" } } } },
    "/api/intake/buffer": {
      "get": { "summary": "Read the JSON buffer", "responses": { "200": { "description": "buffer" } } },
      "put": { "summary": "Replace the JSON buffer", "responses": { "204": { "description": "stored" } } }
    },
    "/ws/status": { "get": { "summary": "Websocket feed of status changes", "responses": { "101": { "description": "switching protocols" } } } },
    "/health": { "get": { "summary": "Liveness", "responses": { "200": { "description": "healthy" } } } }
  }
}`
