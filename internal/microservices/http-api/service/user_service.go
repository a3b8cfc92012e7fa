package service

import (
	"context"
	"log/slog"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error)
	Get(ctx context.Context, username string) (*dto.UserResponse, error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error

	// self profile
	Me(ctx context.Context, userID int64) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, userID int64, req dto.UpdateMeRequest) (*dto.UserResponse, error)

	// CreateSuperuser creates a verified account whose role is always admin.
	CreateSuperuser(ctx context.Context, username, email string) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error) {
	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	data := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		data = append(data, *dto.FromModelToUserResponse(&users[i]))
	}
	return dto.NewPaginated(data, total, page, pageSize), nil
}

func (s *userService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: plainText(req.FirstName),
		LastName:  plainText(req.LastName),
		Bio:       plainText(req.Bio),
		Role:      req.Role,
	}
	if err := checkUser(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "user")
	}
	s.logger.Info("user_created", "user_id", user.ID, "role", user.Role)
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	return s.apply(ctx, user, req)
}

func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return mapRepoError(err, "user")
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return mapRepoError(err, "user")
	}
	s.logger.Info("user_deleted", "user_id", user.ID)
	return nil
}

func (s *userService) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	return dto.FromModelToUserResponse(user), nil
}

// UpdateMe applies a self update. The payload type has no role, so the
// caller's role is never changed here.
func (s *userService) UpdateMe(ctx context.Context, userID int64, req dto.UpdateMeRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	return s.apply(ctx, user, req.AsUserUpdate())
}

func (s *userService) CreateSuperuser(ctx context.Context, username, email string) (*dto.UserResponse, error) {
	user := &models.User{
		Username:   username,
		Email:      email,
		Role:       models.RoleAdmin,
		IsVerified: true,
	}
	if err := checkUser(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "user")
	}
	s.logger.Info("superuser_created", "user_id", user.ID, "username", user.Username)
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) apply(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	req.ApplyTo(user)
	user.FirstName = plainText(user.FirstName)
	user.LastName = plainText(user.LastName)
	user.Bio = plainText(user.Bio)

	if err := checkUser(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, mapRepoError(err, "user")
	}
	return dto.FromModelToUserResponse(user), nil
}

// checkUser re-applies the field rules that binding enforces, for callers
// that do not come through HTTP.
func checkUser(u *models.User) error {
	fields := map[string]string{}
	if msg, ok := validation.Username(u.Username); !ok {
		fields["username"] = msg
	}
	if len(u.Email) > validation.EmailMaxLength || validate.Var(u.Email, "required,email") != nil {
		fields["email"] = "enter a valid email address"
	}
	switch u.Role {
	case models.RoleUser, models.RoleModerator, models.RoleAdmin:
	default:
		fields["role"] = "must be one of: user moderator admin"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
