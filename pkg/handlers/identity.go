package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"edge/pkg/broker"
	"edge/pkg/cache"
	"edge/pkg/models"
	"edge/pkg/repository"
	"edge/pkg/token"
	"edge/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

const userCacheTTL = 15 * time.Minute

type IdentityHandler struct {
	repo   repository.UserRepository
	issuer *token.Issuer
	events *broker.Broker
	redis  *cache.Redis
}

// NewIdentity wires the registration workflow. events and redis may be nil
// when the service runs without a redis connection.
func NewIdentity(repo repository.UserRepository, issuer *token.Issuer, events *broker.Broker, redis *cache.Redis) *IdentityHandler {
	return &IdentityHandler{repo: repo, issuer: issuer, events: events, redis: redis}
}

// Register runs the registration workflow: validate, lookup, create, issue
// tokens. Each terminal state is reached at most once per request.
func (h *IdentityHandler) Register(c *fiber.Ctx) error {
	log.Println("[IDENTITY] Registration endpoint hit")

	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.RegisterResponse{
			Success: false, Message: "Invalid request body",
		})
	}

	if err := validation.ValidateRegistration(req); err != nil {
		log.Println("[IDENTITY] Validation error:", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(models.RegisterResponse{
			Success: false, Message: err.Error(),
		})
	}

	// Advisory check only: the unique constraints on email/username catch
	// the race where two registrations pass this lookup together. The
	// message stays generic either way so the colliding field is not
	// disclosed.
	exists, err := h.repo.ExistsByEmailOrUsername(req.Email, req.Username)
	if err != nil {
		log.Println("[IDENTITY] Lookup failed:", err)
		return internalError(c)
	}
	if exists {
		log.Println("[IDENTITY] User already exists")
		return c.Status(fiber.StatusBadRequest).JSON(models.RegisterResponse{
			Success: false, Message: "User already exists",
		})
	}

	user, err := h.repo.Create(req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Println("[IDENTITY] User already exists")
			return c.Status(fiber.StatusBadRequest).JSON(models.RegisterResponse{
				Success: false, Message: "User already exists",
			})
		}
		log.Println("[IDENTITY] Insert failed:", err)
		return internalError(c)
	}
	log.Printf("[IDENTITY] User saved successfully: id=%d uuid=%s", user.ID, user.UUID)

	tokens, err := h.issuer.Issue(user)
	if err != nil {
		log.Println("[IDENTITY] Token signing failed:", err)
		return internalError(c)
	}

	h.cacheUser(user)
	if h.events != nil {
		go h.events.PublishEvent(context.Background(), "user.registered", fiber.Map{
			"user_id": user.ID, "uuid": user.UUID, "username": user.Username,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.RegisterResponse{
		Success:      true,
		Message:      "User registered successfully!",
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Me returns the account behind the presented access token.
func (h *IdentityHandler) Me(c *fiber.Ctx) error {
	userUUID, _ := c.Locals("user_uuid").(string)
	if userUUID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false, "message": "Invalid or expired token",
		})
	}

	user, err := h.lookupUser(userUUID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "message": "User not found",
		})
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

// GetUserByUUID serves service-to-service lookups inside the cluster.
func (h *IdentityHandler) GetUserByUUID(c *fiber.Ctx) error {
	user, err := h.lookupUser(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "message": "User not found",
		})
	}
	return c.JSON(user)
}

func (h *IdentityHandler) lookupUser(uid string) (models.User, error) {
	var user models.User
	if h.redis != nil && h.redis.Get(context.Background(), "user:"+uid, &user) {
		return user, nil
	}

	user, err := h.repo.GetByUUID(uid)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Println("[IDENTITY] User lookup failed:", err)
		}
		return models.User{}, err
	}

	h.cacheUser(user)
	return user, nil
}

func (h *IdentityHandler) cacheUser(user models.User) {
	if h.redis != nil {
		h.redis.Set(context.Background(), "user:"+user.UUID, user, userCacheTTL)
	}
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(models.RegisterResponse{
		Success: false, Message: "Internal server error",
	})
}
