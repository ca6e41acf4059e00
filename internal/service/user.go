package service

import (
	"InvKeeper/internal/model"
	"InvKeeper/internal/repo"
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,64}$`)

// bcrypt не принимает пароли длиннее 72 байт
const maxPasswordBytes = 72

// UserService — хранилище учётных данных: регистрация, проверка пароля, сброс.
type UserService struct {
	repo repo.UserRepository
	cost int

	// dummyHash сравнивается при отсутствии пользователя, чтобы время ответа не выдавало существование имени
	dummyHash []byte
}

// NewUserService создаёт сервис пользователей с bcrypt.DefaultCost.
func NewUserService(r repo.UserRepository) *UserService {
	s := &UserService{repo: r}
	s.SetHashCost(bcrypt.DefaultCost)
	return s
}

// SetHashCost меняет стоимость bcrypt (в тестах: bcrypt.MinCost).
func (s *UserService) SetHashCost(cost int) {
	s.cost = cost
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-0"), cost)
}

// NormalizeUsername убирает пробелы по краям. Регистр сохраняется.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidateUsername проверяет формат имени пользователя.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword: не короче 8 символов, есть заглавная, строчная и цифра.
func ValidatePassword(password string) error {
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w (at most %d bytes)", ErrWeakPassword, maxPasswordBytes)
	}
	if len([]rune(password)) < 8 {
		return ErrWeakPassword
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrWeakPassword
	}
	return nil
}

// Register создаёт пользователя. Хранится только bcrypt-хеш пароля.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = NormalizeUsername(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	taken, err := s.exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.repo.CreateUser(ctx, &model.User{Username: username, Password: string(hash)})
	if err != nil {
		// гонка двух регистраций: уникальный индекс отбил вторую вставку
		if taken, lookupErr := s.exists(ctx, username); lookupErr == nil && taken {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Verify проверяет пару имя/пароль. При любой неудаче: ErrInvalidCredentials.
func (s *UserService) Verify(ctx context.Context, username, password string) (*model.User, error) {
	username = NormalizeUsername(username)
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil && !repo.IsNotFound(err) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CheckAvailability сообщает, свободно ли имя. Только чтение.
func (s *UserService) CheckAvailability(ctx context.Context, username string) (bool, error) {
	username = NormalizeUsername(username)
	if err := ValidateUsername(username); err != nil {
		return false, err
	}
	taken, err := s.exists(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// ResetPassword заменяет пароль по одному лишь имени пользователя.
// Подтверждения владения аккаунтом нет; см. раздел про безопасность в DESIGN.md.
func (s *UserService) ResetPassword(ctx context.Context, username, newPassword string) error {
	username = NormalizeUsername(username)
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, username, string(hash)); err != nil {
		if repo.IsNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *UserService) exists(ctx context.Context, username string) (bool, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return user != nil, nil
	case repo.IsNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("get user: %w", err)
	}
}
