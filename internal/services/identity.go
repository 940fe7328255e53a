package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstem/plantcare-backend/internal/apierr"
	"github.com/greenstem/plantcare-backend/internal/logger"
	"github.com/greenstem/plantcare-backend/internal/repos"
	"github.com/greenstem/plantcare-backend/internal/requestdata"
	"github.com/greenstem/plantcare-backend/internal/types"
)

// identityClaims are what the external identity provider puts in its tokens.
// The subject is the provider's stable user id.
type identityClaims struct {
	jwt.RegisteredClaims
	Email             string `json:"email,omitempty"`
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
}

type IdentityService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	FindOrCreateUser(ctx context.Context, externalID, email, name, preferredUsername string) (*types.User, error)
}

type identityService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	sharedSecret string
}

func NewIdentityService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, sharedSecret string) IdentityService {
	return &identityService{
		db:           db,
		log:          log.With("service", "IdentityService"),
		userRepo:     userRepo,
		sharedSecret: sharedSecret,
	}
}

// SetContextFromToken verifies the provider token, lazily provisions the user
// on first sight, and stores the resolved identity in request data.
func (is *identityService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthorized("missing_token", fmt.Errorf("missing token"))
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(is.sharedSecret), nil
	})
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Errorf("failed to parse token: %w", err))
	}
	claims, ok := parsedToken.Claims.(*identityClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Errorf("invalid or expired token"))
	}
	if claims.Subject == "" {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Errorf("token missing subject"))
	}

	user, err := is.FindOrCreateUser(ctx, claims.Subject, claims.Email, claims.Name, claims.PreferredUsername)
	if err != nil {
		return ctx, err
	}

	rd := &requestdata.RequestData{
		TokenString:    tokenString,
		ExternalAuthID: claims.Subject,
		UserID:         user.ID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

// FindOrCreateUser is the idempotent provisioning upsert: insert guarded by
// the unique external_auth_id index, then fetch whichever row won.
func (is *identityService) FindOrCreateUser(ctx context.Context, externalID, email, name, preferredUsername string) (*types.User, error) {
	found, err := is.userRepo.GetByExternalAuthIDs(ctx, nil, []string{externalID})
	if err != nil {
		return nil, apierr.Internal("user_lookup_failed", err)
	}
	if len(found) > 0 {
		return found[0], nil
	}

	username := is.pickUsername(ctx, externalID, email, preferredUsername)
	candidate := &types.User{
		ID:             uuid.New(),
		ExternalAuthID: externalID,
		Username:       username,
		Email:          email,
		DisplayName:    name,
	}
	var inserted bool
	for attempt := 0; ; attempt++ {
		inserted, err = is.userRepo.InsertIgnoringConflict(ctx, nil, candidate)
		if err == nil {
			break
		}
		// The insert only absorbs external_auth_id conflicts, so a
		// concurrent claim of the same username surfaces as a duplicate
		// key. Pick a fresh one and try again.
		if attempt < 3 && errors.Is(err, gorm.ErrDuplicatedKey) {
			candidate.Username = fmt.Sprintf("%s_%s", username, uuid.New().String()[:8])
			continue
		}
		return nil, apierr.Internal("user_provision_failed", err)
	}
	if inserted {
		is.log.Info("Provisioned new user", "user_id", candidate.ID, "external_auth_id", externalID)
		return candidate, nil
	}

	// Lost the insert race; the winning row must exist now.
	found, err = is.userRepo.GetByExternalAuthIDs(ctx, nil, []string{externalID})
	if err != nil {
		return nil, apierr.Internal("user_lookup_failed", err)
	}
	if len(found) == 0 {
		return nil, apierr.Internal("user_provision_failed", fmt.Errorf("provisioning race left no user for %s", externalID))
	}
	return found[0], nil
}

func (is *identityService) pickUsername(ctx context.Context, externalID, email, preferred string) string {
	base := strings.TrimSpace(preferred)
	if base == "" && email != "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	if base == "" {
		base = "user_" + externalID
	}
	base = strings.ToLower(base)

	candidate := base
	for i := 0; i < 5; i++ {
		exists, err := is.userRepo.UsernameExists(ctx, nil, candidate)
		if err != nil || !exists {
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", base, time.Now().UnixNano()%10000+int64(i))
	}
	return fmt.Sprintf("%s_%s", base, uuid.New().String()[:8])
}
