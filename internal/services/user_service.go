package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"dayflow/internal/database"
	"dayflow/internal/models"
	"dayflow/internal/store"
	"dayflow/pkg/auth"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserService manages accounts and credential verification. Users live in
// MongoDB; refresh-token revocation state lives in MySQL.
type UserService struct {
	users *mongo.Collection
	sqlDB *database.DB
	auth  *auth.LocalJWTAuth
}

// NewUserService wires the account store.
func NewUserService(mongoDB *database.MongoDB, sqlDB *database.DB, jwtAuth *auth.LocalJWTAuth) *UserService {
	return &UserService{
		users: mongoDB.Collection(database.CollectionUsers),
		sqlDB: sqlDB,
		auth:  jwtAuth,
	}
}

// Register creates an account with an Argon2id-hashed password.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           store.NewID(),
		Email:        email,
		PasswordHash: hash,
		Role:         "user",
		CreatedAt:    now,
		LastLoginAt:  now,
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Printf("✅ [AUTH] registered user %s", user.ID)
	return user, nil
}

// Authenticate verifies credentials and bumps last login. Wrong email and
// wrong password return the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.auth.VerifyPassword(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	_, _ = s.users.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"lastLoginAt": time.Now()}})
	return &user, nil
}

// GetByID fetches a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IssueTokens creates an access/refresh pair and records the refresh token
// for later revocation.
func (s *UserService) IssueTokens(ctx context.Context, user *models.User) (accessToken, refreshToken string, err error) {
	accessToken, refreshToken, err = s.auth.GenerateTokens(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", err
	}
	claims, err := s.auth.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	if s.sqlDB != nil {
		if err := s.sqlDB.StoreRefreshToken(ctx, claims.TokenID, user.ID, claims.ExpiresAt.Time); err != nil {
			return "", "", fmt.Errorf("failed to record refresh token: %w", err)
		}
	}
	return accessToken, refreshToken, nil
}

// Refresh validates a refresh token against the revocation store and
// rotates it: the old token is revoked, a new pair is issued.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.auth.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if s.sqlDB != nil {
		active, err := s.sqlDB.IsRefreshTokenActive(ctx, claims.TokenID)
		if err != nil {
			return "", "", fmt.Errorf("failed to check token: %w", err)
		}
		if !active {
			return "", "", ErrInvalidCredentials
		}
		if err := s.sqlDB.RevokeRefreshToken(ctx, claims.TokenID); err != nil {
			return "", "", fmt.Errorf("failed to rotate token: %w", err)
		}
	}

	user, err := s.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	return s.IssueTokens(ctx, user)
}

// Logout revokes the presented refresh token.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.auth.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	if s.sqlDB != nil {
		return s.sqlDB.RevokeRefreshToken(ctx, claims.TokenID)
	}
	return nil
}
