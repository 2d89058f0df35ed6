// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"split_backend/internal/feature/auth/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

const (
	// minUsernameLength / maxUsernameLength はユーザー名の文字数範囲を定義します。
	minUsernameLength = 3
	maxUsernameLength = 50

	// maxEmailLength はメールアドレスの最大文字数です。
	maxEmailLength = 100

	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	// maxPasswordLength はbcryptが扱える最大バイト数です。
	maxPasswordLength = 72
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスまたはユーザー名のユーザーが既に存在する場合、エラーを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByUsername は指定されたユーザー名に一致するユーザーを取得します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// ExistsByUsername はユーザー名が使用済みかどうかを返します。
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail はメールアドレスが登録済みかどうかを返します。
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type JWTGenerator interface {
	// GenerateToken は指定されたユーザーの署名済みJWTトークンを生成します。
	GenerateToken(userID uint, email string) (string, error)
}

// AuthUsecase は認証とユーザー参照のビジネスロジックを実装します。
type AuthUsecase struct {
	users        UserRepository
	jwtGenerator JWTGenerator
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, jwtGenerator JWTGenerator) *AuthUsecase {
	return &AuthUsecase{
		users:        users,
		jwtGenerator: jwtGenerator,
	}
}

// validateSignup は登録入力を正規化し、要件を満たしているかチェックします。
// 正規化済みのユーザー名とメールアドレスを返します。
func validateSignup(username, email, password string) (string, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return "", "", fmt.Errorf("%w: username must be between %d and %d characters",
			ErrInvalidInput, minUsernameLength, maxUsernameLength)
	}
	if email == "" || utf8.RuneCountInString(email) > maxEmailLength {
		return "", "", fmt.Errorf("%w: email must be between 1 and %d characters", ErrInvalidInput, maxEmailLength)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", "", fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return "", "", fmt.Errorf("%w: password must be at least %d characters long", ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return "", "", fmt.Errorf("%w: password must be at most %d bytes long", ErrInvalidInput, maxPasswordLength)
	}
	return username, email, nil
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録し、保存済みのユーザーを返します。
func (u *AuthUsecase) Signup(ctx context.Context, username, email, password string) (*entity.User, error) {
	username, email, err := validateSignup(username, email, password)
	if err != nil {
		return nil, err
	}

	taken, err := u.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		slog.WarnContext(ctx, "signup rejected: username taken", "username", username)
		return nil, ErrUsernameTaken
	}

	registered, err := u.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if registered {
		slog.WarnContext(ctx, "signup rejected: email registered", "email", email)
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{Username: username, Email: email, Password: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login はユーザーを認証し、成功時にJWTトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if err == nil {
		passwordHash = user.Password
	}

	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			slog.ErrorContext(ctx, "login lookup failed", "error", err)
		}
		return "", ErrInvalidCredentials
	}

	token, tokenErr := u.jwtGenerator.GenerateToken(user.ID, user.Email)
	if tokenErr != nil {
		return "", fmt.Errorf("failed to generate token: %w", tokenErr)
	}

	return token, nil
}

// FindByID はIDでユーザーを取得します。
func (u *AuthUsecase) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	slog.DebugContext(ctx, "finding user by id", "user_id", id)
	return u.users.FindByID(ctx, id)
}

// FindByUsername はユーザー名でユーザーを取得します。
func (u *AuthUsecase) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	slog.DebugContext(ctx, "finding user by username", "username", username)
	return u.users.FindByUsername(ctx, strings.TrimSpace(username))
}

// FindByEmail はメールアドレスでユーザーを取得します。大文字小文字は区別しません。
func (u *AuthUsecase) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return u.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
