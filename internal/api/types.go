// Package api はHTTP APIで共有されるレスポンス型とパラメータ解析を定義します。
package api

import "time"

// ErrorResponse はエラー時のレスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// TokenResponse は/loginの成功レスポンスです。
type TokenResponse struct {
	Token string `json:"token"`
}

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupResponse is a group with its full member set.
type GroupResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	CreatedBy   UserResponse   `json:"created_by"`
	Members     []UserResponse `json:"members"`
	MemberCount int            `json:"member_count"`
	Version     uint           `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
