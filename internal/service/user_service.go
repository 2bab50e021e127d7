package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/vbonduro/stayhaven/internal/cache"
	"github.com/vbonduro/stayhaven/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// userRepository is the subset of store.UserStore that UserService requires.
type userRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	FindTaken(ctx context.Context, username, email string) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	Delete(ctx context.Context, id int64) error
}

type UserService struct {
	users  userRepository
	cache  cache.SpotListCache
	cost   int
	logger *slog.Logger
}

func NewUserService(users userRepository, listCache cache.SpotListCache, logger *slog.Logger) *UserService {
	return &UserService{users: users, cache: listCache, cost: bcrypt.DefaultCost, logger: logger}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

type SignUpInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

func (in *SignUpInput) validate() error {
	var v domain.Validation
	if strings.TrimSpace(in.FirstName) == "" {
		v.Add("firstName", "First Name is required.")
	}
	if strings.TrimSpace(in.LastName) == "" {
		v.Add("lastName", "Last Name is required.")
	}
	validateEmail(&v, in.Email)

	username := strings.TrimSpace(in.Username)
	if n := utf8.RuneCountInString(username); n < 4 || n > 30 {
		v.Add("username", "Please provide a username with at least 4 characters.")
	} else if isEmail(username) {
		v.Add("username", "Username cannot be an email.")
	}

	if len(in.Password) < minPasswordLength {
		v.Add("password", "Password must be 6 characters or more.")
	}
	return v.Err()
}

func validateEmail(v *domain.Validation, email string) {
	email = strings.TrimSpace(email)
	if n := len(email); n < 3 || n > 256 || !isEmail(email) {
		v.Add("email", "Please provide a valid email.")
	}
}

// isEmail accepts a bare address; display names are not allowed.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	taken, err := s.users.FindTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		return nil, takenError(taken, username, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Username:       username,
		Email:          email,
		HashedPassword: string(hash),
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// Lost a race with a concurrent sign-up after FindTaken.
		return nil, s.duplicateSignUp(ctx, username, email)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return user, nil
}

// duplicateSignUp rebuilds the conflict for a sign-up rejected by the
// database's uniqueness constraints.
func (s *UserService) duplicateSignUp(ctx context.Context, username, email string) error {
	taken, err := s.users.FindTaken(ctx, username, email)
	if err != nil {
		return err
	}
	return takenError(taken, username, email)
}

// takenError reports which of username and email already belong to someone.
func takenError(taken []*domain.User, username, email string) error {
	fields := make(map[string]string, 2)
	for _, u := range taken {
		if strings.EqualFold(u.Username, username) {
			fields["username"] = "User with that username already exists"
		}
		if strings.EqualFold(u.Email, email) {
			fields["email"] = "User with that email already exists"
		}
	}
	return &domain.ConflictError{Message: "User already exists", Fields: fields}
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NotFound("User")
	}
	return user, nil
}

type ProfileInput struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Bio       *string `json:"bio"`
}

// UpdateProfile replaces the user's names and bio. The email changes only
// when one is given.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var v domain.Validation
	if strings.TrimSpace(in.FirstName) == "" {
		v.Add("firstName", "First Name is required.")
	}
	if strings.TrimSpace(in.LastName) == "" {
		v.Add("lastName", "Last Name is required.")
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		validateEmail(&v, email)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if email != "" && !strings.EqualFold(email, user.Email) {
		taken, err := s.users.FindTaken(ctx, "", email)
		if err != nil {
			return nil, err
		}
		for _, other := range taken {
			if other.ID != user.ID {
				return nil, emailTakenError()
			}
		}
		user.Email = email
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Bio = in.Bio
	err = s.users.UpdateProfile(ctx, user)
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, emailTakenError()
	}
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, userID)
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *UserService) ChangePassword(ctx context.Context, userID int64, in PasswordInput) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	var v domain.Validation
	if in.CurrentPassword == "" {
		v.Add("currentPassword", "Current password is required.")
	}
	if len(in.NewPassword) < minPasswordLength {
		v.Add("newPassword", "Password must be 6 characters or more.")
	}
	if err := v.Err(); err != nil {
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(in.CurrentPassword))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domain.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to check password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// DeleteAccount removes the user together with their spots, bookings,
// reviews and wishlist.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("account deleted", "user_id", userID)
	invalidateListings(ctx, s.cache, s.logger)
	return nil
}

func emailTakenError() error {
	return &domain.ConflictError{
		Message: "User already exists",
		Fields:  map[string]string{"email": "User with that email already exists"},
	}
}
