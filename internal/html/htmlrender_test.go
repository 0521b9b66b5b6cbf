package html

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func testViews() fstest.MapFS {
	return fstest.MapFS{
		"hello.hbs": &fstest.MapFile{Data: []byte(`<p>Hello {{.name}}</p>`)},
	}
}

func TestRenderEmbedded(t *testing.T) {
	r, err := NewRendererFiber(testViews(), "")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return r.Render(c, fiber.StatusTeapot, "hello", fiber.Map{"name": "<b>world</b>"})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	require.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "<p>Hello &lt;b&gt;world&lt;/b&gt;</p>", string(body))
}

func TestRenderExternalDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.hbs"), []byte(`ext {{.name}}`), 0o644))

	r, err := NewRendererFiber(testViews(), dir)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return r.Render(c, fiber.StatusOK, "hello", fiber.Map{"name": "x"})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "ext x", string(body))
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRendererFiber(testViews(), "")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return r.Render(c, fiber.StatusOK, "missing", nil)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
