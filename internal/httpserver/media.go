package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/community_gallery/internal/ownership"
	"github.com/Skotchmaster/community_gallery/internal/service"
	"github.com/Skotchmaster/community_gallery/internal/transport"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
)

type MediaHTTP struct {
	Svc *service.MediaService
}

func ownershipRequest(q transport.OwnershipQuery, productID string) ownership.Request {
	return ownership.Request{
		CustomerID: q.CustomerID.String(),
		OrderID:    q.OrderID.String(),
		ProductID:  productID,
		Signature:  q.Signature,
	}
}

func (h *MediaHTTP) VerifyOwnership(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.verify_ownership")

	var q transport.OwnershipQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		l.Warn("verify_ownership_error", "status", 400, "reason", "invalid query", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	res, err := h.Svc.Verify(ctx, ownershipRequest(q, c.Param("productId")))
	if err != nil {
		return fail(l, "verify_ownership_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *MediaHTTP) Gallery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.gallery")

	var q transport.OwnershipQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		l.Warn("gallery_error", "status", 400, "reason", "invalid query", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	res, err := h.Svc.Gallery(ctx, ownershipRequest(q, c.Param("productId")))
	if err != nil {
		return fail(l, "gallery_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *MediaHTTP) ProductMedia(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.product_media")

	productID := c.Param("productId")
	views, err := h.Svc.ApprovedMedia(ctx, productID)
	if err != nil {
		return fail(l, "product_media_error", err)
	}
	return c.JSON(http.StatusOK, transport.MediaListResponse{ProductID: productID, Media: views})
}

func (h *MediaHTTP) UploadAndAssign(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.upload_and_assign")

	var req transport.SubmitMediaRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("upload_and_assign_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	file, err := readFile(c, req.FileBase64)
	if err != nil {
		return fail(l, "upload_and_assign_error", err)
	}

	m, err := h.Svc.Submit(ctx, service.SubmitInput{
		Ownership: ownershipRequest(req.OwnershipQuery, req.ProductID.String()),
		Data:      file.Data,
		Filter:    req.Filter,
	})
	if err != nil {
		return fail(l, "upload_and_assign_error", err)
	}

	l.Info("upload_and_assign_success", "media_id", m.ID)
	return c.JSON(http.StatusCreated, transport.SubmitMediaResponse{
		Media: transport.NewMediaView(*m, 0),
		URL:   m.URL,
	})
}

func (h *MediaHTTP) Like(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "media.like")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		l.Warn("like_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req transport.LikeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("like_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.ToggleLike(ctx, uint(id), req.CustomerID.String(), req.Signature)
	if err != nil {
		return fail(l, "like_error", err)
	}
	return c.JSON(http.StatusOK, res)
}
