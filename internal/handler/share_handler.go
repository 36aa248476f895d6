package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/docvault/internal/model"
	appErr "github.com/xxxsen/docvault/internal/pkg/errors"
	"github.com/xxxsen/docvault/internal/pkg/response"
	"github.com/xxxsen/docvault/internal/service"
)

type ShareHandler struct {
	shares     *service.ShareService
	maxExpires int
}

func NewShareHandler(shares *service.ShareService, maxExpiresInMinutes int) *ShareHandler {
	return &ShareHandler{shares: shares, maxExpires: maxExpiresInMinutes}
}

type createShareRequest struct {
	Visibility       string `json:"visibility" binding:"required,oneof=public private"`
	Email            string `json:"email" binding:"omitempty,email"`
	ExpiresInMinutes *int   `json:"expiresInMinutes"`
}

type createMultipleShareRequest struct {
	DocumentIDs []int64 `json:"documentIds" binding:"required,min=1,dive,gt=0"`
	createShareRequest
}

func (h *ShareHandler) CreateDocument(c *gin.Context) {
	docID, err := parsePositiveID(c, "id", "document id")
	if err != nil {
		handleError(c, err)
		return
	}
	var req createShareRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}
	base, err := h.shareInput(c, req)
	if err != nil {
		handleError(c, err)
		return
	}
	link, err := h.shares.CreateDocumentShare(c.Request.Context(), service.CreateDocumentShareInput{
		CreateShareInput: base,
		DocumentID:       docID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, link)
}

func (h *ShareHandler) CreateFolder(c *gin.Context) {
	folderID, err := parsePositiveID(c, "id", "folder id")
	if err != nil {
		handleError(c, err)
		return
	}
	var req createShareRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}
	base, err := h.shareInput(c, req)
	if err != nil {
		handleError(c, err)
		return
	}
	link, err := h.shares.CreateFolderShare(c.Request.Context(), service.CreateFolderShareInput{
		CreateShareInput: base,
		FolderID:         folderID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, link)
}

func (h *ShareHandler) CreateMultiple(c *gin.Context) {
	var req createMultipleShareRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, err)
		return
	}
	base, err := h.shareInput(c, req.createShareRequest)
	if err != nil {
		handleError(c, err)
		return
	}
	link, err := h.shares.CreateMultipleShare(c.Request.Context(), service.CreateMultipleShareInput{
		CreateShareInput: base,
		DocumentIDs:      req.DocumentIDs,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, link)
}

// Get resolves a token for an optional caller. The viewer check runs before
// the share is opened so rejected requests are not counted.
func (h *ShareHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	share, err := h.shares.Lookup(ctx, c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.shares.AuthorizeViewer(share, getUserEmail(c)); err != nil {
		handleError(c, err)
		return
	}
	result, err := h.shares.Open(ctx, share)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *ShareHandler) Received(c *gin.Context) {
	email := getUserEmail(c)
	if email == "" {
		handleError(c, appErr.Unauthorized("email claim is required"))
		return
	}
	items, err := h.shares.ListReceived(c.Request.Context(), email)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}

func (h *ShareHandler) shareInput(c *gin.Context, req createShareRequest) (service.CreateShareInput, error) {
	if req.ExpiresInMinutes != nil {
		v := *req.ExpiresInMinutes
		if v < -1 || v > h.maxExpires {
			return service.CreateShareInput{}, appErr.Invalid(fmt.Sprintf("expiresInMinutes must be -1 (unlimited) or an integer up to %d", h.maxExpires))
		}
	}
	return service.CreateShareInput{
		Visibility:       model.Visibility(req.Visibility),
		OwnerUserID:      getUserID(c),
		TargetEmail:      req.Email,
		ExpiresInMinutes: req.ExpiresInMinutes,
	}, nil
}
