// Package handler はgroupsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"split_backend/internal/api"
	"split_backend/internal/feature/groups/domain/entity"
	"split_backend/internal/feature/groups/transport/http/dto"
	jwtmw "split_backend/internal/platform/jwt"
)

// GroupUsecase はグループ操作のユースケースを定義します。
// インターフェースはコンシューマー（handler）側で定義します。
type GroupUsecase interface {
	CreateGroup(ctx context.Context, name string, creatorID uint) (*entity.Group, error)
	FindGroupByID(ctx context.Context, groupID uint) (*entity.Group, bool, error)
	FindGroupByName(ctx context.Context, name string) (*entity.Group, bool, error)
	AddMemberToGroup(ctx context.Context, groupID, userIDToAdd, requestingUserID uint) (*entity.Group, error)
	RemoveMemberFromGroup(ctx context.Context, groupID, userIDToRemove, requestingUserID uint) (*entity.Group, error)
	FindGroupsByMember(ctx context.Context, userID uint) ([]*entity.Group, error)
	FindGroupsByCreator(ctx context.Context, userID uint) ([]*entity.Group, error)
	GetGroupMembers(ctx context.Context, groupID uint) ([]entity.User, error)
	UpdateGroupDetails(ctx context.Context, groupID uint, newName string, requestingUserID uint) (*entity.Group, error)
	DeleteGroup(ctx context.Context, groupID, requestingUserID uint) error
}

// GroupHandler はグループとメンバー管理のHTTPリクエストを処理します。
// すべてのルートはjwtmw.AuthRequiredの後ろに置かれる前提です。
type GroupHandler struct {
	groups GroupUsecase
}

// NewGroupHandler はGroupHandlerの新しいインスタンスを生成します。
func NewGroupHandler(groups GroupUsecase) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// requester returns the authenticated user id or writes 401.
func requester(c *gin.Context) (uint, bool) {
	id, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthenticated"})
		return 0, false
	}
	return id, true
}

// pathID binds a numeric path parameter or writes 400.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := api.PathID(c, name)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

// Create は POST /groups を処理します。作成者は認証済みユーザーです。
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	var req dto.CreateGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	g, err := h.groups.CreateGroup(c.Request.Context(), req.Name, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewGroupResponse(g))
}

// Get は GET /groups/:id を処理します。
func (h *GroupHandler) Get(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	g, found, err := h.groups.FindGroupByID(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "group not found"})
		return
	}
	c.JSON(http.StatusOK, dto.NewGroupResponse(g))
}

// Search は GET /groups/search?name= を処理します。名前は完全一致です。
func (h *GroupHandler) Search(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "name is required"})
		return
	}

	g, found, err := h.groups.FindGroupByName(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "group not found"})
		return
	}
	c.JSON(http.StatusOK, dto.NewGroupResponse(g))
}

// Update は PATCH /groups/:id を処理します。
func (h *GroupHandler) Update(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	g, err := h.groups.UpdateGroupDetails(c.Request.Context(), groupID, req.Name, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroupResponse(g))
}

// Delete は DELETE /groups/:id を処理します。
func (h *GroupHandler) Delete(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.groups.DeleteGroup(c.Request.Context(), groupID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Members は GET /groups/:id/members を処理します。
func (h *GroupHandler) Members(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	members, err := h.groups.GetGroupMembers(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponses(members))
}

// AddMember は POST /groups/:id/members を処理します。
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	g, err := h.groups.AddMemberToGroup(c.Request.Context(), groupID, req.UserID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroupResponse(g))
}

// RemoveMember は DELETE /groups/:id/members/:userId を処理します。
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	target, ok := pathID(c, "userId")
	if !ok {
		return
	}

	g, err := h.groups.RemoveMemberFromGroup(c.Request.Context(), groupID, target, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroupResponse(g))
}

// MyGroups は GET /me/groups を処理します。
func (h *GroupHandler) MyGroups(c *gin.Context) {
	userID, ok := requester(c)
	if !ok {
		return
	}
	h.respondGroups(c, func(ctx context.Context) ([]*entity.Group, error) {
		return h.groups.FindGroupsByMember(ctx, userID)
	})
}

// UserGroups は GET /users/:id/groups を処理します。
func (h *GroupHandler) UserGroups(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondGroups(c, func(ctx context.Context) ([]*entity.Group, error) {
		return h.groups.FindGroupsByMember(ctx, userID)
	})
}

// CreatedGroups は GET /users/:id/created-groups を処理します。
func (h *GroupHandler) CreatedGroups(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondGroups(c, func(ctx context.Context) ([]*entity.Group, error) {
		return h.groups.FindGroupsByCreator(ctx, userID)
	})
}

func (h *GroupHandler) respondGroups(c *gin.Context, find func(ctx context.Context) ([]*entity.Group, error)) {
	groups, err := find(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGroupResponses(groups))
}
