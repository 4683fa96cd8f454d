package service

import (
	"context"
	"errors"
	"time"

	"fuelstation/internal/config"
	"fuelstation/internal/dto"
	"fuelstation/internal/model"
	"fuelstation/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login or refresh.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CreateEmployee(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
}

type authService struct {
	repo repository.EmployeeRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.EmployeeRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	raw, _ := claims["employee_id"].(string)
	uid, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) CreateEmployee(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.Employee{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	for _, raw := range req.StationIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, validationf("invalid station id %q", raw)
		}
		user.Stations = append(user.Stations, model.Station{ID: id})
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := toEmployeeResponse(user)
	return &resp, nil
}

func (s *authService) issue(user *model.Employee) (*dto.LoginResponse, error) {
	access, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         toEmployeeResponse(user),
	}, nil
}

func toEmployeeResponse(u *model.Employee) dto.EmployeeResponse {
	stations := make([]string, 0, len(u.Stations))
	for _, st := range u.Stations {
		stations = append(stations, st.ID.String())
	}
	return dto.EmployeeResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		StationIDs: stations,
		Active:     u.Active,
	}
}

func (s *authService) generateToken(user *model.Employee, duration time.Duration) (string, error) {
	stations := make([]string, 0, len(user.Stations))
	for _, st := range user.Stations {
		stations = append(stations, st.ID.String())
	}
	claims := jwt.MapClaims{
		"employee_id": user.ID.String(),
		"username":    user.Username,
		"role":        user.Role,
		"station_ids": stations,
		"exp":         time.Now().Add(duration).Unix(),
		"iat":         time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
