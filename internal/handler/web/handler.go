package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"TraderExplorer/internal/presenter"
	"TraderExplorer/internal/service/ratelimit"
	xhttp "TraderExplorer/pkg/http"
	xlogger "TraderExplorer/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// TraderIDQuery is the query parameter carrying the topic view submission.
const TraderIDQuery = "trader_id"

const rateLimitedMessage = "too many topic requests, slow down"

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the dashboard pages, the JSON view API and live view sockets.
type Handler struct {
	logger   *xlogger.Logger
	catalog  *presenter.Catalog
	limiter  *ratelimit.Limiter
	tmpl     *template.Template
	upgrader websocket.Upgrader
}

func NewHandler(logger *xlogger.Logger, catalog *presenter.Catalog, limiter *ratelimit.Limiter) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		logger:  logger,
		catalog: catalog,
		limiter: limiter,
		tmpl:    tmpl,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	for _, item := range h.catalog.Nav() {
		e.GET(item.Path, h.Page(item))
	}

	g := e.Group("/api")
	g.GET("/views/:name", h.View)

	e.GET("/ws/views/:name", h.Live)
}

type pageData struct {
	Nav       []presenter.NavItem
	Page      presenter.Page
	Path      string
	FormParam string
}

// Page renders one view as HTML once it has settled.
func (h *Handler) Page(item presenter.NavItem) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limited(c) {
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError(rateLimitedMessage))
		}

		page, err := h.load(c.Request().Context(), item.Name, c)
		if err != nil {
			return h.loadError(c, item.Name, err)
		}

		var b strings.Builder
		if err := h.tmpl.ExecuteTemplate(&b, "page.html", pageData{
			Nav:       h.catalog.Nav(),
			Page:      page,
			Path:      item.Path,
			FormParam: TraderIDQuery,
		}); err != nil {
			h.logger.Error("render page error", xlogger.String("view", item.Name), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("could not render page").WithError(err))
		}
		return c.HTML(http.StatusOK, b.String())
	}
}

type viewRequest struct {
	Name   string `param:"name" validate:"required"`
	Format string `query:"format" default:"page" validate:"oneof=page text"`
}

// View returns the settled page of any view as JSON, or as plain text with format=text.
func (h *Handler) View(c echo.Context) error {
	req := &viewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.limited(c) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError(rateLimitedMessage))
	}

	page, err := h.load(c.Request().Context(), req.Name, c)
	if err != nil {
		return h.loadError(c, req.Name, err)
	}

	if req.Format == "text" {
		var b strings.Builder
		if err := presenter.WriteText(&b, page); err != nil {
			return xhttp.AppErrorResponse(c, err)
		}
		return c.String(http.StatusOK, b.String())
	}
	return xhttp.SuccessResponse(c, page)
}

// load mounts a fresh view, applies a topic submission if present and waits for
// the view to settle. Manual views without a submission render idle.
func (h *Handler) load(ctx context.Context, name string, c echo.Context) (presenter.Page, error) {
	v, err := h.catalog.New(name)
	if err != nil {
		return presenter.Page{}, err
	}
	defer v.Unmount()

	v.Mount(ctx)
	if v.Manual() {
		id, ok := submission(c)
		if !ok {
			return v.Render(), nil
		}
		v.Trigger(ctx, presenter.TopicParams(id))
	}
	return v.Wait(ctx)
}

func (h *Handler) loadError(c echo.Context, name string, err error) error {
	if errors.Is(err, presenter.ErrUnknownView) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("view %q not found", name).
			WithParam("views", h.catalog.Names()))
	}
	if errors.Is(err, context.Canceled) {
		h.logger.Debug("client went away before view settled", xlogger.String("view", name))
		return nil
	}
	h.logger.Error("load view error", xlogger.String("view", name), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("could not load view").WithError(err))
}

// limited applies the per-address budget to topic submissions only.
func (h *Handler) limited(c echo.Context) bool {
	name := c.Param("name")
	if name == "" && c.Path() == "/topics" {
		name = presenter.ViewTopics
	}
	if name != presenter.ViewTopics {
		return false
	}
	if _, ok := submission(c); !ok {
		return false
	}
	return !h.allow(c.RealIP())
}

func (h *Handler) allow(addr string) bool {
	if h.limiter == nil || h.limiter.Allow(addr) {
		return true
	}
	h.logger.Warn("topic request rate limited", xlogger.String("remote", addr))
	return false
}

// submission reports the trader id query value; an empty value is still a submission.
func submission(c echo.Context) (string, bool) {
	q := c.QueryParams()
	if !q.Has(TraderIDQuery) {
		return "", false
	}
	return q.Get(TraderIDQuery), true
}
