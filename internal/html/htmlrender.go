package html

import (
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"

	"github.com/evidenceledger/certissuer/internal/errl"
)

// RendererFiber renders HTML pages into fiber responses
type RendererFiber struct {
	engine *html.Engine
}

// NewRendererFiber creates a new HTML renderer.
// Templates come from viewsfs unless extDir is set, in which case they are read
// from that directory and reloaded on every request (development).
func NewRendererFiber(viewsfs fs.FS, extDir string) (*RendererFiber, error) {
	var engine *html.Engine

	if extDir != "" {
		engine = html.NewFileSystem(http.Dir(extDir), ".hbs")
		engine.Reload(true)
	} else {
		engine = html.NewFileSystem(http.FS(viewsfs), ".hbs")
	}

	if err := engine.Load(); err != nil {
		return nil, errl.Error(err)
	}

	return &RendererFiber{engine: engine}, nil
}

// ResponseSecurityHeadersFiber sets the security headers for the response
func ResponseSecurityHeadersFiber(c *fiber.Ctx) {
	c.Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none';")
	c.Set("X-Frame-Options", "DENY")
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
	c.Set("Cross-Origin-Opener-Policy", "same-origin")
	c.Set("Cross-Origin-Resource-Policy", "same-site")
	c.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=(), interest-cohort=()")
	c.Set("X-Powered-By", "webserver")
}

// Render writes the named template with the given status code
func (h *RendererFiber) Render(c *fiber.Ctx, status int, templateName string, data map[string]any, layout ...string) error {
	out := &bytes.Buffer{}

	if err := h.engine.Render(out, templateName, data, layout...); err != nil {
		slog.Error("Error rendering template",
			slog.String("template", templateName),
			slog.String("error", err.Error()),
		)
		return fiber.NewError(fiber.StatusInternalServerError, "rendering response")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	ResponseSecurityHeadersFiber(c)
	return c.Status(status).Send(out.Bytes())
}
