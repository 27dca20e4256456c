package repository

import (
	"database/sql"
	"errors"
	"strings"

	"edge/pkg/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// ErrDuplicate is returned when an insert hits the unique constraint on
// email or username. The constraint is what actually enforces uniqueness
// under concurrent registrations; the lookup before Create is advisory.
var ErrDuplicate = errors.New("user already exists")

type UserRepository interface {
	Create(email, username, password string) (models.User, error)
	ExistsByEmailOrUsername(email, username string) (bool, error)
	GetByUUID(uuid string) (models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create persists a new account. The raw password never reaches storage;
// it is bcrypt-hashed here on the way in.
func (r *userRepository) Create(email, username, password string) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = r.db.QueryRow(
		`INSERT INTO users (uuid, email, username, password) VALUES ($1, $2, $3, $4)
		 RETURNING id, uuid, email, username, created_at`,
		uuid.NewString(), strings.ToLower(email), strings.ToLower(username), string(hashed),
	).Scan(&user.ID, &user.UUID, &user.Email, &user.Username, &user.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) ExistsByEmailOrUsername(email, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2)`,
		strings.ToLower(email), strings.ToLower(username),
	).Scan(&exists)
	return exists, err
}

func (r *userRepository) GetByUUID(uid string) (models.User, error) {
	var user models.User
	err := r.db.QueryRow(
		`SELECT id, uuid, email, username, created_at FROM users WHERE uuid = $1`, uid,
	).Scan(&user.ID, &user.UUID, &user.Email, &user.Username, &user.CreatedAt)
	return user, err
}
