package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"hoyhub/backend/internal/db"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/utils"
)

// ErrCityNotFound is returned when a city ID resolves to nothing.
var ErrCityNotFound = errors.New("city not found")

// ICityService defines the interface for the city picker backing search.
type ICityService interface {
	ListActive(ctx context.Context) ([]models.City, error)
	Create(ctx context.Context, city *models.City) (*models.City, error)
	SetActive(ctx context.Context, cityID utils.SixID, active bool) error
}

const citiesCollection = "cities"

type cityService struct {
	db *mongo.Database
}

// NewCityService creates a new CityService.
func NewCityService(database *mongo.Database) ICityService {
	return &cityService{db: database}
}

func (s *cityService) ListActive(ctx context.Context) ([]models.City, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.db.Collection(citiesCollection).Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer cursor.Close(ctx)

	var cities []models.City
	if err = cursor.All(ctx, &cities); err != nil {
		return nil, fmt.Errorf("failed to decode cities: %w", err)
	}
	return cities, nil
}

func (s *cityService) Create(ctx context.Context, city *models.City) (*models.City, error) {
	city.Active = true
	operation := func() error {
		city.GenID()
		_, err := s.db.Collection(citiesCollection).InsertOne(ctx, city)
		return err
	}
	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to create city %q: %w", city.Name, err)
	}
	return city, nil
}

func (s *cityService) SetActive(ctx context.Context, cityID utils.SixID, active bool) error {
	result, err := s.db.Collection(citiesCollection).UpdateOne(ctx,
		bson.M{"_id": cityID},
		bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return fmt.Errorf("failed to set active=%t on city %s: %w", active, cityID.String(), err)
	}
	if result.MatchedCount == 0 {
		return ErrCityNotFound
	}
	return nil
}
