package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"hoyhub/backend/internal/config"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/utils"
)

func setupTestDBHotel(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "hotels", "bookings")
}

func testHotelConfig() *config.Config {
	return &config.Config{SearchResultLimit: 50}
}

func berberaHotel(ownerID utils.SixID) *models.Hotel {
	return &models.Hotel{
		OwnerID:     ownerID,
		Name:        "Sahil Beach Resort",
		Description: "Beachfront rooms near the old port.",
		Location:    models.HotelLocation{City: "Berbera", Address: "Sahil Road"},
		RoomTypes: []models.RoomType{
			{Name: "Standard", PricePerNight: 40, Capacity: 2},
			{Name: "Suite", PricePerNight: 90, Capacity: 4},
		},
		Amenities: map[string]bool{"wifi": true, "parking": true},
		Images:    []string{"https://cdn.example.com/sahil.jpg"},
	}
}

func TestHotelService_CreateAndResolve(t *testing.T) {
	db := setupTestDBHotel(t, "testdb_hotel_service_create")
	svc := NewHotelService(db, testHotelConfig())
	ctx := context.Background()

	ownerID := utils.NewSixID()
	hotel, err := svc.Create(ctx, berberaHotel(ownerID))
	require.NoError(t, err)
	assert.Equal(t, "sahil-beach-resort", hotel.Slug)
	assert.Equal(t, 40.0, hotel.PricePerNight, "floor of the room type prices")

	bySlug, err := svc.FindBySlugOrID(ctx, "sahil-beach-resort")
	require.NoError(t, err)
	assert.Equal(t, hotel.ID, bySlug.ID)

	byID, err := svc.FindBySlugOrID(ctx, hotel.ID.String())
	require.NoError(t, err)
	assert.Equal(t, hotel.ID, byID.ID)

	_, err = svc.FindBySlugOrID(ctx, "no-such-hotel")
	assert.ErrorIs(t, err, ErrHotelNotFound)
}

func TestHotelService_UpdateOwnership(t *testing.T) {
	db := setupTestDBHotel(t, "testdb_hotel_service_ownership")
	svc := NewHotelService(db, testHotelConfig())
	ctx := context.Background()

	ownerID := utils.NewSixID()
	hotel, err := svc.Create(ctx, berberaHotel(ownerID))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, hotel.ID, ownerID, bson.M{
		"room_types": []models.RoomType{{Name: "Standard", PricePerNight: 35, Capacity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 35.0, updated.PricePerNight, "floor price follows room type changes")

	_, err = svc.Update(ctx, hotel.ID, utils.NewSixID(), bson.M{"name": "Hijacked"})
	assert.ErrorIs(t, err, ErrNotHotelOwner)

	_, err = svc.Update(ctx, utils.NewSixID(), ownerID, bson.M{"name": "Ghost"})
	assert.ErrorIs(t, err, ErrHotelNotFound)
}

func TestHotelService_Bookings(t *testing.T) {
	db := setupTestDBHotel(t, "testdb_hotel_service_bookings")
	svc := NewHotelService(db, testHotelConfig())
	ctx := context.Background()

	ownerID := utils.NewSixID()
	hotel, err := svc.Create(ctx, berberaHotel(ownerID))
	require.NoError(t, err)

	guestID := utils.NewSixID()
	checkIn := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)

	booking, err := svc.CreateBooking(ctx, &models.Booking{
		HotelID:  hotel.ID,
		UserID:   guestID,
		RoomType: "Suite",
		CheckIn:  checkIn,
		CheckOut: checkIn.AddDate(0, 0, 3),
		Guests:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, booking.Nights)
	assert.Equal(t, 270.0, booking.TotalPrice)
	assert.Equal(t, models.BookingPending, booking.Status)

	// Unknown room type falls back to the cheapest room.
	fallback, err := svc.CreateBooking(ctx, &models.Booking{
		HotelID:  hotel.ID,
		UserID:   guestID,
		RoomType: "Penthouse",
		CheckIn:  checkIn,
		CheckOut: checkIn.AddDate(0, 0, 1),
		Guests:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 40.0, fallback.TotalPrice)

	_, err = svc.CreateBooking(ctx, &models.Booking{
		HotelID:  hotel.ID,
		UserID:   guestID,
		RoomType: "Standard",
		CheckIn:  checkIn,
		CheckOut: checkIn,
		Guests:   1,
	})
	assert.ErrorIs(t, err, ErrBookingConflict)

	_, err = svc.CreateBooking(ctx, &models.Booking{
		HotelID:  utils.NewSixID(),
		UserID:   guestID,
		RoomType: "Standard",
		CheckIn:  checkIn,
		CheckOut: checkIn.AddDate(0, 0, 1),
		Guests:   1,
	})
	assert.ErrorIs(t, err, ErrHotelNotFound)

	forHotel, err := svc.BookingsForHotel(ctx, hotel.ID)
	require.NoError(t, err)
	assert.Len(t, forHotel, 2)

	forGuest, err := svc.BookingsForGuest(ctx, guestID)
	require.NoError(t, err)
	assert.Len(t, forGuest, 2)
}

func TestHotelService_Search(t *testing.T) {
	db := setupTestDBHotel(t, "testdb_hotel_service_search")
	svc := NewHotelService(db, testHotelConfig())
	ctx := context.Background()

	ownerID := utils.NewSixID()
	_, err := svc.Create(ctx, berberaHotel(ownerID))
	require.NoError(t, err)

	cheap := berberaHotel(ownerID)
	cheap.Name = "Port Guesthouse"
	cheap.RoomTypes = []models.RoomType{{Name: "Single", PricePerNight: 15, Capacity: 1}}
	_, err = svc.Create(ctx, cheap)
	require.NoError(t, err)

	hargeisa := berberaHotel(ownerID)
	hargeisa.Name = "Hargeisa City Hotel"
	hargeisa.Location.City = "Hargeisa"
	_, err = svc.Create(ctx, hargeisa)
	require.NoError(t, err)

	byCity, err := svc.Search(ctx, HotelSearchParams{City: "Berbera"})
	require.NoError(t, err)
	assert.Len(t, byCity, 2)

	byPrice, err := svc.Search(ctx, HotelSearchParams{City: "Berbera", Bucket: "0-20"})
	require.NoError(t, err)
	require.Len(t, byPrice, 1)
	assert.Equal(t, "Port Guesthouse", byPrice[0].Name)
}
