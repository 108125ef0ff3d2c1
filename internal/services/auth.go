package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/beaconsafety/beacon-server/internal/docstore"
	"github.com/beaconsafety/beacon-server/internal/models"
)

const (
	bcryptCost       = 12
	sessionDuration  = 30 * 24 * time.Hour
	sessionKeyPrefix = "session:"
)

type credentials struct {
	UserID       string `json:"userId"`
	PasswordHash string `json:"passwordHash"`
}

// AuthService manages password credentials and Redis-backed sessions.
// Credentials live in their own collection so profile documents never
// carry secrets.
type AuthService struct {
	store    docstore.Store
	redis    *redis.Client
	profiles ProfileServiceInterface
}

func NewAuthService(store docstore.Store, redisClient *redis.Client, profiles ProfileServiceInterface) *AuthService {
	return &AuthService{store: store, redis: redisClient, profiles: profiles}
}

func (s *AuthService) Register(ctx context.Context, params models.CreateProfileParams, password string) (*models.UserProfile, error) {
	if len(password) < 8 {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	profile, err := s.profiles.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	creds := credentials{UserID: profile.ID, PasswordHash: string(hash)}
	fields, err := docstore.FieldsOf(creds)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, colCredentials, profile.ID, fields); err != nil {
		return nil, fmt.Errorf("storing credentials: %w", err)
	}

	return profile, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.UserProfile, string, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	doc, err := s.store.Get(ctx, colCredentials, profile.ID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("loading credentials: %w", err)
	}
	var creds credentials
	if err := doc.DataTo(&creds); err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.createSession(ctx, profile.ID)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.UserProfile, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	userID, err := s.redis.Get(ctx, sessionKeyPrefix+hashToken(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	return s.profiles.GetByID(ctx, userID)
}

func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.redis.Del(ctx, sessionKeyPrefix+hashToken(token)).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *AuthService) createSession(ctx context.Context, userID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	token := hex.EncodeToString(raw)

	key := sessionKeyPrefix + hashToken(token)
	if err := s.redis.Set(ctx, key, userID, sessionDuration).Err(); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
