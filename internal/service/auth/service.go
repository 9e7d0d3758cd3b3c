package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/presensi-app/attendance-backend-go/internal/domain/auth"
	"github.com/presensi-app/attendance-backend-go/internal/domain/media"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
	"github.com/presensi-app/attendance-backend-go/internal/pkg/jwt"
	"github.com/presensi-app/attendance-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx postgresql.TxManager
	user.UserRepository
	jwt.Service
	auth.RefreshTokenRepository
	media media.MediaService
}

func NewAuthService(tx postgresql.TxManager, userRepository user.UserRepository, jwtService jwt.Service, tokenRepository auth.RefreshTokenRepository, mediaService media.MediaService) auth.AuthService {
	return &AuthServiceImpl{
		tx:                     tx,
		UserRepository:         userRepository,
		Service:                jwtService,
		RefreshTokenRepository: tokenRepository,
		media:                  mediaService,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, strings.TrimSpace(loginReq.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(userData.ID, userData.Email, userData.Role)
		if err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}
		tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(userData.ID)
		if err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}

		err = a.CreateRefreshToken(txCtx, userData.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, sessionTrackReq)
		if err != nil {
			return fmt.Errorf("failed to save refresh token to database: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return tokenResponse, nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	// Signature, expiry and token type
	tokenUserID, err := a.Service.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	userID, isRevoked, err := a.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if isRevoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}
	if userID != tokenUserID {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrUserNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	var accessTokenResponse auth.AccessTokenResponse
	accessTokenResponse.AccessToken, accessTokenResponse.AccessTokenExpiresIn, err =
		a.Service.GenerateAccessToken(userData.ID, userData.Email, userData.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessTokenResponse, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		_, isRevoked, err := a.IsRefreshTokenRevoked(txCtx, token)
		if err != nil {
			return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
		}
		if !isRevoked {
			if err := a.RevokeRefreshToken(txCtx, token); err != nil {
				return fmt.Errorf("failed to revoke refresh token: %w", err)
			}
		}
		return nil
	})
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, userID string) (auth.MeResponse, error) {
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.MeResponse{}, auth.ErrUserNotFound
		}
		return auth.MeResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	permissions := user.PermissionsForRole(userData.Role)
	resp := auth.MeResponse{
		ID:          userData.ID,
		Name:        userData.Name,
		Email:       userData.Email,
		Role:        string(userData.Role),
		Permissions: make([]string, 0, len(permissions)),
	}
	for _, p := range permissions {
		resp.Permissions = append(resp.Permissions, string(p))
	}

	if !userData.IsAdmin() {
		count, err := a.media.Count(ctx, media.OwnerUser, userData.ID, media.CollectionFaceReference)
		if err != nil {
			return auth.MeResponse{}, fmt.Errorf("failed to count reference photos: %w", err)
		}
		resp.HasReferencePhotos = count > 0
	}

	return resp, nil
}
