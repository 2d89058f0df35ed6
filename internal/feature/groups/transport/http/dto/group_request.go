// Package dto はgroupsフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// CreateGroupReq is the body of POST /groups.
type CreateGroupReq struct {
	Name string `json:"name" binding:"required"`
}

// UpdateGroupReq is the body of PATCH /groups/:id.
type UpdateGroupReq struct {
	Name string `json:"name" binding:"required"`
}

// AddMemberReq is the body of POST /groups/:id/members.
type AddMemberReq struct {
	UserID uint `json:"user_id" binding:"required,gt=0"`
}
