package handlers_test

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/plan"
	"hoyhub/backend/internal/services"
	"hoyhub/backend/internal/storage"
	"hoyhub/backend/internal/utils"
)

// --- Mocks ---

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) ListForOwner(ctx context.Context, ownerID utils.SixID) ([]models.Listing, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}
func (m *MockListingService) CountForOwner(ctx context.Context, ownerID utils.SixID) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}
func (m *MockListingService) FindByID(ctx context.Context, listingID utils.SixID) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) OpenEditor(ctx context.Context, listingID, ownerID utils.SixID, tier plan.Tier) (*models.Listing, error) {
	args := m.Called(ctx, listingID, ownerID, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) Create(ctx context.Context, ownerID utils.SixID, tier plan.Tier, draft services.ListingDraft) (*models.Listing, error) {
	args := m.Called(ctx, ownerID, tier, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) Update(ctx context.Context, listingID, ownerID utils.SixID, tier plan.Tier, draft services.ListingDraft) (*models.Listing, error) {
	args := m.Called(ctx, listingID, ownerID, tier, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) ToggleSoldStatus(ctx context.Context, listingID, ownerID utils.SixID) (*models.Listing, error) {
	args := m.Called(ctx, listingID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) ToggleArchive(ctx context.Context, listingID, ownerID utils.SixID) (*models.Listing, error) {
	args := m.Called(ctx, listingID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) Delete(ctx context.Context, listingID, ownerID utils.SixID) error {
	args := m.Called(ctx, listingID, ownerID)
	return args.Error(0)
}
func (m *MockListingService) AddImage(ctx context.Context, listingID utils.SixID, imageURL string) error {
	args := m.Called(ctx, listingID, imageURL)
	return args.Error(0)
}
func (m *MockListingService) SearchPublic(ctx context.Context, params services.PropertySearchParams) ([]models.Listing, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Signup(ctx context.Context, input services.SignupInput) (*services.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}
func (m *MockUserService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}
func (m *MockUserService) FindByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserService) AgentProfileByUserID(ctx context.Context, userID utils.SixID) (*models.AgentProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AgentProfile), args.Error(1)
}
func (m *MockUserService) UpdateAgentProfile(ctx context.Context, userID utils.SixID, updates bson.M) (*models.AgentProfile, error) {
	args := m.Called(ctx, userID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AgentProfile), args.Error(1)
}
func (m *MockUserService) ListAgents(ctx context.Context, city string) ([]models.AgentProfile, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AgentProfile), args.Error(1)
}
func (m *MockUserService) SetPlanTier(ctx context.Context, userID utils.SixID, tier plan.Tier) error {
	args := m.Called(ctx, userID, tier)
	return args.Error(0)
}

// MockHotelService
type MockHotelService struct {
	mock.Mock
}

func (m *MockHotelService) Create(ctx context.Context, hotel *models.Hotel) (*models.Hotel, error) {
	args := m.Called(ctx, hotel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}
func (m *MockHotelService) Update(ctx context.Context, hotelID, ownerID utils.SixID, updates bson.M) (*models.Hotel, error) {
	args := m.Called(ctx, hotelID, ownerID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}
func (m *MockHotelService) FindBySlugOrID(ctx context.Context, slugOrID string) (*models.Hotel, error) {
	args := m.Called(ctx, slugOrID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}
func (m *MockHotelService) ListForOwner(ctx context.Context, ownerID utils.SixID) ([]models.Hotel, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Hotel), args.Error(1)
}
func (m *MockHotelService) Search(ctx context.Context, params services.HotelSearchParams) ([]models.Hotel, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Hotel), args.Error(1)
}
func (m *MockHotelService) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *MockHotelService) BookingsForHotel(ctx context.Context, hotelID utils.SixID) ([]models.Booking, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *MockHotelService) BookingsForGuest(ctx context.Context, guestID utils.SixID) ([]models.Booking, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

// MockOrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, order *models.Order) (*services.OrderResult, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.OrderResult), args.Error(1)
}
func (m *MockOrderService) ListForUser(ctx context.Context, userID utils.SixID) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

// MockChatService
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Open(ctx context.Context, participantA, participantB, contextID string, names map[string]string) (*models.Channel, error) {
	args := m.Called(ctx, participantA, participantB, contextID, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}
func (m *MockChatService) Send(ctx context.Context, channelID, senderID, text string) (*models.Message, error) {
	args := m.Called(ctx, channelID, senderID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}
func (m *MockChatService) History(ctx context.Context, channelID string) ([]models.Message, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}
func (m *MockChatService) ListForParticipant(ctx context.Context, participantID string) ([]models.Channel, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Channel), args.Error(1)
}
func (m *MockChatService) Subscribe(ctx context.Context, channelID string) (<-chan models.Message, func(), error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, func() {}, args.Error(2)
	}
	return args.Get(0).(<-chan models.Message), args.Get(1).(func()), args.Error(2)
}

// MockReferralService
type MockReferralService struct {
	mock.Mock
}

func (m *MockReferralService) EnsureCode(ctx context.Context, userID utils.SixID) (*models.Referral, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Referral), args.Error(1)
}
func (m *MockReferralService) Award(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}
func (m *MockReferralService) ForUser(ctx context.Context, userID utils.SixID) (*models.Referral, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Referral), args.Error(1)
}
func (m *MockReferralService) Leaderboard(ctx context.Context, limit int) ([]services.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.LeaderboardEntry), args.Error(1)
}

// MockCityService
type MockCityService struct {
	mock.Mock
}

func (m *MockCityService) ListActive(ctx context.Context) ([]models.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.City), args.Error(1)
}
func (m *MockCityService) Create(ctx context.Context, city *models.City) (*models.City, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.City), args.Error(1)
}
func (m *MockCityService) SetActive(ctx context.Context, cityID utils.SixID, active bool) error {
	args := m.Called(ctx, cityID, active)
	return args.Error(0)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, userID utils.SixID, title, body string) (*models.Notification, error) {
	args := m.Called(ctx, userID, title, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}
func (m *MockNotificationService) ListForUser(ctx context.Context, userID utils.SixID, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}
func (m *MockNotificationService) MarkRead(ctx context.Context, notificationID, userID utils.SixID) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}
func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID utils.SixID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockS3Storage
type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, ownerID string, purpose storage.UploadPurpose, subjectID, filename, contentType string) (string, string, error) {
	args := m.Called(ctx, ownerID, purpose, subjectID, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockS3Storage) GetObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
func (m *MockS3Storage) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}
func (m *MockS3Storage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockAsynqClient
type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
