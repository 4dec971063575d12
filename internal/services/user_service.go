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
	"go.mongodb.org/mongo-driver/mongo/options"
	"hoyhub/backend/internal/auth"
	"hoyhub/backend/internal/config"
	"hoyhub/backend/internal/db"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/plan"
	"hoyhub/backend/internal/utils"
)

var (
	// ErrEmailTaken is returned when signup hits an existing account.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password, so login does not leak which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when an ID lookup matches nothing.
	ErrUserNotFound = errors.New("user not found")
)

// SignupInput carries everything needed to create an account and, for
// agents and hotel operators, the accompanying profile.
type SignupInput struct {
	Name         string
	Email        string
	Phone        string
	Password     string
	Role         models.Role
	ReferralCode string

	// Agent profile fields, used when Role is agent.
	AgencyName   string
	City         string
	WhatsApp     string
	ServiceAreas []string
}

// AuthResult is the signup/login response payload.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// IUserService defines the interface for accounts and agent profiles.
type IUserService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	FindByID(ctx context.Context, userID utils.SixID) (*models.User, error)
	AgentProfileByUserID(ctx context.Context, userID utils.SixID) (*models.AgentProfile, error)
	UpdateAgentProfile(ctx context.Context, userID utils.SixID, updates bson.M) (*models.AgentProfile, error)
	ListAgents(ctx context.Context, city string) ([]models.AgentProfile, error)
	SetPlanTier(ctx context.Context, userID utils.SixID, tier plan.Tier) error
}

const (
	usersCollection  = "users"
	agentsCollection = "agents"
)

type userService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(database *mongo.Database, cfg *config.Config) IUserService {
	return &userService{db: database, cfg: cfg}
}

// Signup creates the account document and, for agents, the profile document
// as a second independent write. A crash between the two leaves an account
// without a profile; the profile is backfilled on next login rather than
// wrapped in a transaction.
func (s *userService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	count, err := s.db.Collection(usersCollection).CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to check email availability: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Name:         input.Name,
		Email:        email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         input.Role,
		PlanTier:     plan.TierFree,
		ReferredBy:   input.ReferralCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	operation := func() error {
		user.GenID()
		_, insertErr := s.db.Collection(usersCollection).InsertOne(ctx, user)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to create account for %s: %w", email, err)
	}

	// Second write. Failures are logged, not rolled back.
	if input.Role == models.RoleAgent {
		if err := s.ensureAgentProfile(ctx, user, input); err != nil {
			log.Printf("WARNING: account %s created but agent profile write failed: %v", user.ID.String(), err)
		}
	}

	return s.withToken(user)
}

// Login verifies credentials and backfills a missing agent profile from a
// signup whose second write was lost.
func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account %s: %w", email, err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if user.Role == models.RoleAgent {
		if _, err := s.AgentProfileByUserID(ctx, user.ID); errors.Is(err, mongo.ErrNoDocuments) {
			if backfillErr := s.ensureAgentProfile(ctx, &user, SignupInput{AgencyName: user.Name}); backfillErr != nil {
				log.Printf("WARNING: failed to backfill agent profile for %s: %v", user.ID.String(), backfillErr)
			}
		}
	}

	return s.withToken(&user)
}

func (s *userService) FindByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID.String(), err)
	}
	return &user, nil
}

func (s *userService) AgentProfileByUserID(ctx context.Context, userID utils.SixID) (*models.AgentProfile, error) {
	var profile models.AgentProfile
	err := s.db.Collection(agentsCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load agent profile for %s: %w", userID.String(), err)
	}
	return &profile, nil
}

func (s *userService) UpdateAgentProfile(ctx context.Context, userID utils.SixID, updates bson.M) (*models.AgentProfile, error) {
	updates["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var profile models.AgentProfile
	err := s.db.Collection(agentsCollection).
		FindOneAndUpdate(ctx, bson.M{"user_id": userID}, bson.M{"$set": updates}, opts).
		Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update agent profile for %s: %w", userID.String(), err)
	}
	return &profile, nil
}

func (s *userService) ListAgents(ctx context.Context, city string) ([]models.AgentProfile, error) {
	filter := bson.M{}
	if city != "" {
		filter["city"] = city
	}
	opts := options.Find().SetSort(bson.D{{Key: "listings_count", Value: -1}})
	cursor, err := s.db.Collection(agentsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.AgentProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode agent profiles: %w", err)
	}
	return profiles, nil
}

// SetPlanTier is the admin hook that flips an account's tier after a plan
// upgrade order settles over WhatsApp.
func (s *userService) SetPlanTier(ctx context.Context, userID utils.SixID, tier plan.Tier) error {
	update := bson.M{"$set": bson.M{"plan_tier": tier, "updated_at": time.Now().UTC()}}
	result, err := s.db.Collection(usersCollection).UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to set plan tier for %s: %w", userID.String(), err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *userService) ensureAgentProfile(ctx context.Context, user *models.User, input SignupInput) error {
	now := time.Now().UTC()
	profile := &models.AgentProfile{
		UserID:       user.ID,
		AgencyName:   input.AgencyName,
		City:         input.City,
		WhatsApp:     input.WhatsApp,
		ServiceAreas: input.ServiceAreas,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if profile.AgencyName == "" {
		profile.AgencyName = user.Name
	}

	operation := func() error {
		profile.GenID()
		_, err := s.db.Collection(agentsCollection).InsertOne(ctx, profile)
		return err
	}
	return db.Try(operation)
}

func (s *userService) withToken(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateJWT(user.ID, string(user.Role), user.IsAdmin, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token for %s: %w", user.ID.String(), err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
