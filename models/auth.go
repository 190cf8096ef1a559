package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
)

type LoginInfo struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

type Registration struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=8"`
}

var errInvalidCredentials = utils.Errorf(utils.ErrUnauthorized, "incorrect username or password")

// Register creates an active account with the default "user" role.
func Register(ctx context.Context, input *Registration) (*User, error) {
	role, err := GetRoleByName(ctx, RoleUser)
	if errors.Is(err, utils.ErrRoleNotFound) {
		if err := SeedDefaultRoles(ctx); err != nil {
			return nil, err
		}
		role, err = GetRoleByName(ctx, RoleUser)
	}
	if err != nil {
		return nil, err
	}
	return CreateUser(ctx, &NewUser{
		Username: input.Username,
		Password: input.Password,
		RoleId:   role.ID,
		IsActive: utils.NewTrue(),
	})
}

func issueTokens(user *User) (*LoginInfo, error) {
	access, _, err := utils.JwtGenerate(user.ID, user.Username, user.RoleName(), utils.AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, _, err := utils.JwtGenerate(user.ID, user.Username, user.RoleName(), utils.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &LoginInfo{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(config.GetAuthSettings().AccessTokenExpiry.Seconds()),
		User:         user,
	}, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).Preload("Role").Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.Active() {
		return nil, utils.Errorf(utils.ErrUnauthorized, "user is disabled")
	}
	return issueTokens(&user)
}

// RefreshToken exchanges a refresh token for a new pair; the old refresh token is revoked.
func RefreshToken(ctx context.Context, refreshToken string) (*LoginInfo, error) {
	claim, err := utils.JwtValidate(refreshToken)
	if err != nil {
		return nil, err
	}
	if claim.TokenType != utils.RefreshToken {
		return nil, utils.Errorf(utils.ErrUnauthorized, "not a refresh token")
	}
	revoked, err := utils.IsTokenRevoked(claim.Id)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, utils.Errorf(utils.ErrUnauthorized, "token has been revoked")
	}
	user, err := GetUser(ctx, claim.ID)
	if errors.Is(err, utils.ErrUserNotFound) {
		return nil, utils.Errorf(utils.ErrUnauthorized, "user not found")
	}
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, utils.Errorf(utils.ErrUnauthorized, "user is disabled")
	}
	if err := utils.RevokeToken(claim.Id, claim.RemainingLifetime()); err != nil {
		return nil, err
	}
	return issueTokens(user)
}

// AuthenticateToken resolves a bearer access token to its active user.
func AuthenticateToken(ctx context.Context, token string) (*User, *utils.JwtCustomClaim, error) {
	claim, err := utils.JwtValidate(token)
	if err != nil {
		return nil, nil, err
	}
	if claim.TokenType != utils.AccessToken {
		return nil, nil, utils.Errorf(utils.ErrUnauthorized, "not an access token")
	}
	revoked, err := utils.IsTokenRevoked(claim.Id)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, utils.Errorf(utils.ErrUnauthorized, "token has been revoked")
	}
	user, err := GetCachedUser(ctx, claim.ID)
	if errors.Is(err, utils.ErrUserNotFound) {
		return nil, nil, utils.Errorf(utils.ErrUnauthorized, "user not found")
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.Active() {
		return nil, nil, utils.Errorf(utils.ErrUnauthorized, "user is disabled")
	}
	return user, claim, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, utils.Errorf(utils.ErrUnauthorized, "token is required")
	}
	claim, err := utils.JwtValidate(token)
	if err != nil {
		return false, err
	}
	if err := utils.RevokeToken(claim.Id, claim.RemainingLifetime()); err != nil {
		return false, err
	}
	return true, nil
}

func GetMe(ctx context.Context) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrUnauthorized
	}
	return GetUser(ctx, userId)
}
