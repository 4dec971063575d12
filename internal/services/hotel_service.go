package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"hoyhub/backend/internal/config"
	"hoyhub/backend/internal/db"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/utils"
)

// ErrHotelNotFound is returned when neither slug nor ID resolves a hotel.
var ErrHotelNotFound = errors.New("hotel not found")

// ErrBookingConflict is returned when check-out does not fall after check-in.
var ErrBookingConflict = errors.New("check-out must be after check-in")

// ErrNotHotelOwner is returned when a hotel exists but belongs to another account.
var ErrNotHotelOwner = errors.New("hotel is owned by another account")

// HotelSearchParams are the public hotel search filters.
type HotelSearchParams struct {
	City   string
	Bucket string // price-per-night bucket, same format as listing buckets
}

// IHotelService defines the interface for hotel and booking operations.
type IHotelService interface {
	Create(ctx context.Context, hotel *models.Hotel) (*models.Hotel, error)
	Update(ctx context.Context, hotelID, ownerID utils.SixID, updates bson.M) (*models.Hotel, error)
	FindBySlugOrID(ctx context.Context, slugOrID string) (*models.Hotel, error)
	ListForOwner(ctx context.Context, ownerID utils.SixID) ([]models.Hotel, error)
	Search(ctx context.Context, params HotelSearchParams) ([]models.Hotel, error)
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	BookingsForHotel(ctx context.Context, hotelID utils.SixID) ([]models.Booking, error)
	BookingsForGuest(ctx context.Context, guestID utils.SixID) ([]models.Booking, error)
}

const (
	hotelsCollection   = "hotels"
	bookingsCollection = "bookings"
)

type hotelService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewHotelService creates a new HotelService.
func NewHotelService(database *mongo.Database, cfg *config.Config) IHotelService {
	return &hotelService{db: database, cfg: cfg}
}

// Create inserts a hotel. The slug is derived from the name when absent;
// duplicate-key retries regenerate the document ID only, so a slug clash
// surfaces to the caller as a duplicate error.
func (s *hotelService) Create(ctx context.Context, hotel *models.Hotel) (*models.Hotel, error) {
	if hotel.Slug == "" {
		hotel.Slug = slugify(hotel.Name)
	}
	now := time.Now().UTC()
	hotel.CreatedAt = now
	hotel.UpdatedAt = now
	hotel.PricePerNight = minRoomPrice(hotel.RoomTypes)

	operation := func() error {
		hotel.GenID()
		_, err := s.db.Collection(hotelsCollection).InsertOne(ctx, hotel)
		return err
	}
	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to create hotel %q: %w", hotel.Name, err)
	}
	return hotel, nil
}

// Update applies a partial update scoped to the owner. Room type changes
// refresh the denormalized nightly floor price.
func (s *hotelService) Update(ctx context.Context, hotelID, ownerID utils.SixID, updates bson.M) (*models.Hotel, error) {
	updates["updated_at"] = time.Now().UTC()
	if raw, ok := updates["room_types"]; ok {
		if roomTypes, ok := raw.([]models.RoomType); ok {
			updates["price_per_night"] = minRoomPrice(roomTypes)
		}
	}

	filter := bson.M{"_id": hotelID, "owner_id": ownerID}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var hotel models.Hotel
	err := s.db.Collection(hotelsCollection).FindOneAndUpdate(ctx, filter, bson.M{"$set": updates}, opts).Decode(&hotel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.diagnoseMissing(ctx, hotelID)
		}
		return nil, fmt.Errorf("failed to update hotel %s: %w", hotelID.String(), err)
	}
	return &hotel, nil
}

// FindBySlugOrID resolves the public detail route, which accepts either a
// slug or a raw ID.
func (s *hotelService) FindBySlugOrID(ctx context.Context, slugOrID string) (*models.Hotel, error) {
	var hotel models.Hotel
	err := s.db.Collection(hotelsCollection).FindOne(ctx, bson.M{"slug": slugOrID}).Decode(&hotel)
	if err == nil {
		return &hotel, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to look up hotel %q: %w", slugOrID, err)
	}

	id, parseErr := utils.ParseSixID(slugOrID)
	if parseErr != nil {
		return nil, ErrHotelNotFound
	}
	err = s.db.Collection(hotelsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&hotel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up hotel %q: %w", slugOrID, err)
	}
	return &hotel, nil
}

func (s *hotelService) ListForOwner(ctx context.Context, ownerID utils.SixID) ([]models.Hotel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(hotelsCollection).Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels for %s: %w", ownerID.String(), err)
	}
	defer cursor.Close(ctx)

	var hotels []models.Hotel
	if err = cursor.All(ctx, &hotels); err != nil {
		return nil, fmt.Errorf("failed to decode hotels for %s: %w", ownerID.String(), err)
	}
	return hotels, nil
}

// Search filters hotels by city and nightly price bucket. Same result cap
// as listing search.
func (s *hotelService) Search(ctx context.Context, params HotelSearchParams) ([]models.Hotel, error) {
	filter := bson.M{}
	if params.City != "" {
		filter["location.city"] = params.City
	}
	if params.Bucket != "" {
		priceRange := ParsePriceBucket(params.Bucket)
		filter["price_per_night"] = bson.M{"$gte": priceRange.Min, "$lte": priceRange.Max}
	}

	limit := int64(s.cfg.SearchResultLimit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.db.Collection(hotelsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("hotel search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var hotels []models.Hotel
	if err = cursor.All(ctx, &hotels); err != nil {
		return nil, fmt.Errorf("failed to decode hotel search results: %w", err)
	}
	return hotels, nil
}

// CreateBooking records a stay request. Overlapping bookings for the same
// room are allowed; availability is settled over WhatsApp, not here.
func (s *hotelService) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if !booking.CheckOut.After(booking.CheckIn) {
		return nil, ErrBookingConflict
	}

	var hotel models.Hotel
	err := s.db.Collection(hotelsCollection).FindOne(ctx, bson.M{"_id": booking.HotelID}).Decode(&hotel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve hotel for booking: %w", err)
	}

	nights := int(booking.CheckOut.Sub(booking.CheckIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	booking.Nights = nights
	booking.TotalPrice = roomPrice(hotel.RoomTypes, booking.RoomType) * float64(nights)
	booking.Status = models.BookingPending
	booking.CreatedAt = time.Now().UTC()

	operation := func() error {
		booking.GenID()
		_, err := s.db.Collection(bookingsCollection).InsertOne(ctx, booking)
		return err
	}
	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to create booking for hotel %s: %w", booking.HotelID.String(), err)
	}
	return booking, nil
}

func (s *hotelService) BookingsForHotel(ctx context.Context, hotelID utils.SixID) ([]models.Booking, error) {
	return s.findBookings(ctx, bson.M{"hotel_id": hotelID})
}

func (s *hotelService) BookingsForGuest(ctx context.Context, guestID utils.SixID) ([]models.Booking, error) {
	return s.findBookings(ctx, bson.M{"user_id": guestID})
}

func (s *hotelService) findBookings(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(bookingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (s *hotelService) diagnoseMissing(ctx context.Context, hotelID utils.SixID) error {
	count, err := s.db.Collection(hotelsCollection).CountDocuments(ctx, bson.M{"_id": hotelID})
	if err == nil && count == 0 {
		return ErrHotelNotFound
	}
	return fmt.Errorf("hotel %s: %w", hotelID.String(), ErrNotHotelOwner)
}

func minRoomPrice(roomTypes []models.RoomType) float64 {
	if len(roomTypes) == 0 {
		return 0
	}
	min := roomTypes[0].PricePerNight
	for _, rt := range roomTypes[1:] {
		if rt.PricePerNight < min {
			min = rt.PricePerNight
		}
	}
	return min
}

func roomPrice(roomTypes []models.RoomType, name string) float64 {
	for _, rt := range roomTypes {
		if rt.Name == name {
			return rt.PricePerNight
		}
	}
	return minRoomPrice(roomTypes)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
