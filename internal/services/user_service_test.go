package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"hoyhub/backend/internal/config"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/plan"
	"hoyhub/backend/internal/utils"
)

func testUserConfig() *config.Config {
	return &config.Config{
		JwtSecret: "test-secret",
		JwtTTL:    time.Hour,
	}
}

func agentSignup(email string) SignupInput {
	return SignupInput{
		Name:       "Amina Warsame",
		Email:      email,
		Phone:      "+252611234567",
		Password:   "correct horse battery",
		Role:       models.RoleAgent,
		AgencyName: "Warsame Realty",
		City:       "Hargeisa",
		WhatsApp:   "+252611234567",
	}
}

func TestUserService_SignupAndLogin(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_user_service_auth", "users", "agents")
	svc := NewUserService(db, testUserConfig())
	ctx := context.Background()

	result, err := svc.Signup(ctx, agentSignup("amina@example.com"))
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, plan.TierFree, result.User.PlanTier)

	// Signup also wrote the agent profile.
	profile, err := svc.AgentProfileByUserID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Warsame Realty", profile.AgencyName)
	assert.Equal(t, "Hargeisa", profile.City)

	// Email comparison is case-insensitive.
	_, err = svc.Signup(ctx, agentSignup("AMINA@example.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(ctx, "Amina@Example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "amina@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_LoginBackfillsAgentProfile(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_user_service_backfill", "users", "agents")
	svc := NewUserService(db, testUserConfig())
	ctx := context.Background()

	result, err := svc.Signup(ctx, agentSignup("lost-profile@example.com"))
	require.NoError(t, err)

	// Simulate a signup whose second write was lost.
	_, err = db.Collection("agents").DeleteMany(ctx, bson.M{"user_id": result.User.ID})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "lost-profile@example.com", "correct horse battery")
	require.NoError(t, err)

	profile, err := svc.AgentProfileByUserID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amina Warsame", profile.AgencyName, "backfill falls back to the account name")
}

func TestUserService_SetPlanTier(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_user_service_plan", "users", "agents")
	svc := NewUserService(db, testUserConfig())
	ctx := context.Background()

	result, err := svc.Signup(ctx, agentSignup("upgrade@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.SetPlanTier(ctx, result.User.ID, plan.TierPro))

	user, err := svc.FindByID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.TierPro, user.PlanTier)

	err = svc.SetPlanTier(ctx, utils.NewSixID(), plan.TierPro)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UpdateAgentProfile(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_user_service_profile", "users", "agents")
	svc := NewUserService(db, testUserConfig())
	ctx := context.Background()

	result, err := svc.Signup(ctx, agentSignup("profile@example.com"))
	require.NoError(t, err)

	profile, err := svc.UpdateAgentProfile(ctx, result.User.ID, bson.M{
		"bio":  "Rentals across Hargeisa and Gabiley.",
		"city": "Gabiley",
	})
	require.NoError(t, err)
	assert.Equal(t, "Gabiley", profile.City)
	assert.Equal(t, "Rentals across Hargeisa and Gabiley.", profile.Bio)

	_, err = svc.UpdateAgentProfile(ctx, utils.NewSixID(), bson.M{"city": "Borama"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
