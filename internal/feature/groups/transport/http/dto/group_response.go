package dto

import (
	"split_backend/internal/api"
	"split_backend/internal/feature/groups/domain/entity"
)

// NewUserResponse converts a directory user to its public view.
func NewUserResponse(u entity.User) api.UserResponse {
	return api.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserResponses converts users preserving order.
func NewUserResponses(users []entity.User) []api.UserResponse {
	out := make([]api.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// NewGroupResponse converts a group and its member set.
func NewGroupResponse(g *entity.Group) api.GroupResponse {
	return api.GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		CreatedBy:   NewUserResponse(g.Creator),
		Members:     NewUserResponses(g.Members()),
		MemberCount: g.MemberCount(),
		Version:     g.Version,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// NewGroupResponses converts groups preserving order.
func NewGroupResponses(groups []*entity.Group) []api.GroupResponse {
	out := make([]api.GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, NewGroupResponse(g))
	}
	return out
}
