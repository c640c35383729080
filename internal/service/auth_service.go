package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = 24 * time.Hour
	maxUsernameLen  = 64
)

// AuthService handles user auth logic
type AuthService struct {
	authRepo   repository.Authorization
	activity   ActivityLog
	signingKey []byte
	tokenTTL   time.Duration
}

func NewAuthService(repo repository.Authorization, activity ActivityLog, signingKey string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{authRepo: repo, activity: activity, signingKey: []byte(signingKey), tokenTTL: ttl}
}

// SignUp hashes password and creates a new user. The very first account becomes the admin.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || len(username) > maxUsernameLen {
		return models.User{}, invalidf("username must be 1..%d characters", maxUsernameLen)
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if err := validate.Var(email, "email"); err != nil {
			return models.User{}, invalidf("email is not valid")
		}
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return models.User{}, invalidf("%v", err)
	}

	existing, err := s.authRepo.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if existing != nil {
		return models.User{}, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
	}

	total, err := s.authRepo.CountByRole(ctx, "")
	if err != nil {
		return models.User{}, err
	}
	role := models.RoleUser
	if total == 0 {
		role = models.RoleAdmin
	}

	u := models.User{
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	id, err := s.authRepo.Create(ctx, u)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
		}
		return models.User{}, err
	}
	u.ID = id

	s.activity.Record(ctx, EventUserSignup, "user signed up", map[string]any{"id": id, "username": username, "role": role})
	return u, nil
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
}

// GenerateToken validates credentials and returns JWT
func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (string, error) {
	u, err := s.authRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(u.ID, u.Role)
}

// ParseToken parses JWT and returns the caller identity
func (s *AuthService) ParseToken(accessToken string) (Identity, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// Authenticate parses the token and re-reads the user, so deletions and role
// changes apply before the token expires. The stored role wins over the claim.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (Identity, error) {
	id, err := s.ParseToken(accessToken)
	if err != nil {
		return Identity{}, err
	}
	u, err := s.authRepo.GetByID(ctx, id.UserID)
	if err != nil {
		return Identity{}, err
	}
	if u == nil {
		return Identity{}, fmt.Errorf("%w: user %d no longer exists", ErrInvalidToken, id.UserID)
	}
	return Identity{UserID: u.ID, Role: u.Role}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id int) (models.User, error) {
	u, err := s.authRepo.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		return models.User{}, ErrNotFound
	}
	return *u, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.authRepo.List(ctx)
}

// UpdateUser applies the non-nil fields of in. Demoting the last admin is refused.
func (s *AuthService) UpdateUser(ctx context.Context, id int, in UserUpdate) (models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" {
			if err := validate.Var(email, "email"); err != nil {
				return models.User{}, invalidf("email is not valid")
			}
		}
		u.Email = email
	}
	if in.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*in.Role))
		if role != models.RoleAdmin && role != models.RoleUser {
			return models.User{}, invalidf("role must be %q or %q", models.RoleAdmin, models.RoleUser)
		}
		if u.Role == models.RoleAdmin && role != models.RoleAdmin {
			if err := s.ensureAnotherAdmin(ctx); err != nil {
				return models.User{}, err
			}
		}
		u.Role = role
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return models.User{}, invalidf("%v", err)
		}
		u.PasswordHash = hash
	}

	if err := s.authRepo.Update(ctx, u); err != nil {
		return models.User{}, err
	}
	s.activity.Record(ctx, EventUserUpdate, "user updated", map[string]any{"id": id, "role": u.Role})
	return u, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, id int) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == models.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.authRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, EventUserDelete, "user deleted", map[string]any{"id": id, "username": u.Username})
	return nil
}

func (s *AuthService) ensureAnotherAdmin(ctx context.Context) error {
	admins, err := s.authRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return invalidf("cannot remove the last admin")
	}
	return nil
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// helper: issue a signed JWT for a user
func (s *AuthService) issueToken(userID int, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Role:   role,
	})
	return token.SignedString(s.signingKey)
}

// isUniqueViolation detects sqlite's constraint error without importing the driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
