package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/community_gallery/internal/platform"
	"github.com/Skotchmaster/community_gallery/internal/service"
	"github.com/Skotchmaster/community_gallery/internal/transport"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
)

type ShopHTTP struct {
	Svc *service.ShopService
}

func (h *ShopHTTP) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.StatusResponse{
		Shop:      h.Svc.Shop,
		Connected: h.Svc.Connected(c.Request().Context()),
	})
}

func (h *ShopHTTP) ListMetafields(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.list_metafields")

	out, err := h.Svc.ListMetafields(ctx, c.Param("productId"))
	if err != nil {
		return fail(l, "list_metafields_error", err)
	}
	if out == nil {
		out = []platform.Metafield{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShopHTTP) CreateMetafield(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.create_metafield")

	var mf platform.Metafield
	if err := c.Bind(&mf); err != nil {
		l.Warn("create_metafield_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	out, err := h.Svc.CreateMetafield(ctx, c.Param("productId"), mf)
	if err != nil {
		return fail(l, "create_metafield_error", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ShopHTTP) UpdateMetafield(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.update_metafield")

	id, err := strconv.ParseInt(c.Param("metafieldId"), 10, 64)
	if err != nil {
		l.Warn("update_metafield_error", "status", 400, "reason", "metafield id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "metafield id is not integer")
	}

	var req transport.MetafieldUpdateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_metafield_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	out, err := h.Svc.UpdateMetafield(ctx, c.Param("productId"), id, req.Value, req.Type)
	if err != nil {
		return fail(l, "update_metafield_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShopHTTP) DeleteMetafield(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.delete_metafield")

	id, err := strconv.ParseInt(c.Param("metafieldId"), 10, 64)
	if err != nil {
		l.Warn("delete_metafield_error", "status", 400, "reason", "metafield id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "metafield id is not integer")
	}

	if err := h.Svc.DeleteMetafield(ctx, c.Param("productId"), id); err != nil {
		return fail(l, "delete_metafield_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkSetMetafields writes the batch in order. On failure the response still
// carries what was written before the failing entry.
func (h *ShopHTTP) BulkSetMetafields(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.bulk_set_metafields")

	var req transport.MetafieldBulkRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("bulk_set_metafields_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	written, failedIndex, err := h.Svc.SetMetafields(ctx, c.Param("productId"), req.Metafields)
	if written == nil {
		written = []platform.Metafield{}
	}
	if err != nil {
		status, reason := classify(err)
		l.Warn("bulk_set_metafields_error", "status", status, "reason", reason, "failed_index", failedIndex, "error", err)
		resp := transport.MetafieldBulkResponse{Metafields: written, Error: err.Error()}
		if failedIndex >= 0 {
			resp.FailedIndex = &failedIndex
		}
		return c.JSON(status, resp)
	}
	return c.JSON(http.StatusOK, transport.MetafieldBulkResponse{Metafields: written})
}

func (h *ShopHTTP) GetListMetafield(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.get_list_metafield")

	res, err := h.Svc.GetListMetafield(ctx, c.Param("productId"), c.Param("namespace"), c.Param("key"))
	if err != nil {
		return fail(l, "get_list_metafield_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ShopHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.upload")

	var req transport.UploadRequest
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := c.Bind(&req); err != nil {
			l.Warn("upload_error", "status", 400, "reason", "invalid body", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
	} else {
		req.Alt = c.FormValue("alt")
	}

	file, err := readFile(c, req.FileBase64)
	if err != nil {
		return fail(l, "upload_error", err)
	}
	filename := req.Filename
	if filename == "" {
		filename = file.Filename
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = file.ContentType
	}
	if mimeType == echo.MIMEOctetStream {
		mimeType = ""
	}

	out, err := h.Svc.Upload(ctx, filename, mimeType, req.Alt, file.Data)
	if err != nil {
		return fail(l, "upload_error", err)
	}
	l.Info("upload_success", "file_id", out.ID)
	return c.JSON(http.StatusCreated, out)
}
