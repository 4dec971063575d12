package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"hoyhub/backend/internal/config"
	"hoyhub/backend/internal/db"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/plan"
	"hoyhub/backend/internal/utils"
)

// ListingDraft is the editable content of a listing save. NewImageURLs are
// blob URLs already uploaded by the caller; they are appended to the images
// kept on the document.
type ListingDraft struct {
	Title         string
	Description   string
	Area          string
	City          string
	Category      models.Category
	IsForSale     bool
	Price         float64
	DiscountPrice *float64
	Features      *models.Features
	NewImageURLs  []string
}

// PropertySearchParams are the public search filters.
type PropertySearchParams struct {
	ForSale  *bool // nil = both buy and rent
	City     string
	Category models.Category
	Bucket   string // raw price bucket string from the UI
}

// IListingService defines the interface for listing-related operations.
type IListingService interface {
	ListForOwner(ctx context.Context, ownerID utils.SixID) ([]models.Listing, error)
	CountForOwner(ctx context.Context, ownerID utils.SixID) (int, error)
	FindByID(ctx context.Context, listingID utils.SixID) (*models.Listing, error)
	OpenEditor(ctx context.Context, listingID, ownerID utils.SixID, tier plan.Tier) (*models.Listing, error)
	Create(ctx context.Context, ownerID utils.SixID, tier plan.Tier, draft ListingDraft) (*models.Listing, error)
	Update(ctx context.Context, listingID, ownerID utils.SixID, tier plan.Tier, draft ListingDraft) (*models.Listing, error)
	ToggleSoldStatus(ctx context.Context, listingID, ownerID utils.SixID) (*models.Listing, error)
	ToggleArchive(ctx context.Context, listingID, ownerID utils.SixID) (*models.Listing, error)
	Delete(ctx context.Context, listingID, ownerID utils.SixID) error
	AddImage(ctx context.Context, listingID utils.SixID, imageURL string) error
	SearchPublic(ctx context.Context, params PropertySearchParams) ([]models.Listing, error)
}

const listingsCollection = "property"

// listingService implements IListingService.
type listingService struct {
	db        *mongo.Database
	cfg       *config.Config
	configSvc IConfigService
}

// NewListingService creates a new ListingService.
func NewListingService(database *mongo.Database, cfg *config.Config, configSvc IConfigService) IListingService {
	return &listingService{db: database, cfg: cfg, configSvc: configSvc}
}

// limits resolves the effective plan limits: env defaults, overridable at
// runtime through the configuration collection.
func (s *listingService) limits(ctx context.Context) plan.Limits {
	l := plan.Limits{
		FreeListings:       s.cfg.FreeTierListingLimit,
		FreeImages:         s.cfg.FreeTierImageLimit,
		FreeDescriptionMax: s.cfg.FreeTierDescriptionMax,
		EditCooldown:       time.Duration(s.cfg.EditCooldownHours) * time.Hour,
	}
	if s.configSvc != nil {
		l.FreeListings = s.configSvc.GetInt(ctx, "FREE_TIER_LISTING_LIMIT", l.FreeListings)
		l.FreeImages = s.configSvc.GetInt(ctx, "FREE_TIER_IMAGE_LIMIT", l.FreeImages)
		l.FreeDescriptionMax = s.configSvc.GetInt(ctx, "FREE_TIER_DESCRIPTION_MAX", l.FreeDescriptionMax)
	}
	return l
}

// ListForOwner returns every listing owned by the caller, newest first.
// Tab filtering and text search happen after the fact (FilterDashboard);
// there is no pagination on the owner dashboard.
func (s *listingService) ListForOwner(ctx context.Context, ownerID utils.SixID) ([]models.Listing, error) {
	collection := s.db.Collection(listingsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings for owner %s: %w", ownerID.String(), err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings for owner %s: %w", ownerID.String(), err)
	}
	return listings, nil
}

// CountForOwner counts all listings owned by the caller, archived included.
func (s *listingService) CountForOwner(ctx context.Context, ownerID utils.SixID) (int, error) {
	count, err := s.db.Collection(listingsCollection).CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count listings for owner %s: %w", ownerID.String(), err)
	}
	return int(count), nil
}

// FindByID finds a listing by its ID without ownership checks.
func (s *listingService) FindByID(ctx context.Context, listingID utils.SixID) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Collection(listingsCollection).FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding listing %s: %w", listingID.String(), err)
	}
	return &listing, nil
}

// OpenEditor loads a listing for editing by its owner. Free-tier listings
// inside the edit cooldown return EditLockedError with the remaining hours.
func (s *listingService) OpenEditor(ctx context.Context, listingID, ownerID utils.SixID, tier plan.Tier) (*models.Listing, error) {
	var listing models.Listing
	filter := bson.M{"_id": listingID, "owner_id": ownerID}
	err := s.db.Collection(listingsCollection).FindOne(ctx, filter).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error opening listing %s for edit: %w", listingID.String(), err)
	}

	lock := s.limits(ctx).CheckEditLock(tier, listing.UpdatedAt, time.Now().UTC())
	if lock.Locked {
		return nil, &EditLockedError{HoursRemaining: lock.HoursRemaining()}
	}
	return &listing, nil
}

// Create validates and inserts a new listing. CreatedAt and UpdatedAt are
// stamped with the same timestamp on insert.
func (s *listingService) Create(ctx context.Context, ownerID utils.SixID, tier plan.Tier, draft ListingDraft) (*models.Listing, error) {
	limits := s.limits(ctx)

	count, err := s.CountForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !limits.CanCreate(tier, count) {
		return nil, ErrListingLimitReached
	}

	if errs := limits.ValidateDraft(tier, plan.Draft{
		Description:    draft.Description,
		ExistingImages: 0,
		NewImages:      len(draft.NewImageURLs),
	}); len(errs) > 0 {
		return nil, &ValidationError{Messages: errs}
	}
	if err := models.ValidateFeatures(draft.Category, draft.Features); err != nil {
		return nil, &ValidationError{Messages: []string{err.Error()}}
	}

	now := time.Now().UTC()
	var newListing *models.Listing

	operation := func() error {
		newListing = &models.Listing{
			Base:          models.NewBase(),
			OwnerID:       ownerID,
			Title:         draft.Title,
			Description:   draft.Description,
			Area:          draft.Area,
			City:          draft.City,
			Category:      draft.Category,
			IsForSale:     draft.IsForSale,
			Price:         draft.Price,
			DiscountPrice: draft.DiscountPrice,
			Status:        models.StatusAvailable,
			Archived:      false,
			Images:        append([]string{}, draft.NewImageURLs...),
			Features:      draft.Features,
			PlanTier:      tier,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		_, insertErr := s.db.Collection(listingsCollection).InsertOne(ctx, newListing)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert listing for owner %s after retries: %w", ownerID.String(), err)
	}
	return newListing, nil
}

// Update validates and saves an edit. The edit lock is re-checked here so a
// stale editor session cannot bypass the cooldown, and a successful save
// re-arms the lock via the fresh UpdatedAt.
func (s *listingService) Update(ctx context.Context, listingID, ownerID utils.SixID, tier plan.Tier, draft ListingDraft) (*models.Listing, error) {
	limits := s.limits(ctx)

	existing, err := s.OpenEditor(ctx, listingID, ownerID, tier)
	if err != nil {
		return nil, err
	}

	if errs := limits.ValidateDraft(tier, plan.Draft{
		Description:    draft.Description,
		ExistingImages: len(existing.Images),
		NewImages:      len(draft.NewImageURLs),
	}); len(errs) > 0 {
		return nil, &ValidationError{Messages: errs}
	}
	if err := models.ValidateFeatures(draft.Category, draft.Features); err != nil {
		return nil, &ValidationError{Messages: []string{err.Error()}}
	}

	// Merge: new image URLs are appended to the existing ordered list.
	images := append(append([]string{}, existing.Images...), draft.NewImageURLs...)

	update := bson.M{"$set": bson.M{
		"title":          draft.Title,
		"description":    draft.Description,
		"area":           draft.Area,
		"city":           draft.City,
		"category":       draft.Category,
		"is_for_sale":    draft.IsForSale,
		"price":          draft.Price,
		"discount_price": draft.DiscountPrice,
		"features":       draft.Features,
		"images":         images,
		"plan_tier":      tier,
		"updated_at":     time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Listing
	err = s.db.Collection(listingsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": listingID, "owner_id": ownerID}, update, opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("listing not found or not owned by user")
		}
		return nil, fmt.Errorf("failed to update listing %s: %w", listingID.String(), err)
	}
	return &updated, nil
}

// ToggleSoldStatus flips available ⇄ sold. Relisting (sold → available) also
// clears the archived flag so the listing reappears immediately. The archived
// flag is otherwise untouched.
func (s *listingService) ToggleSoldStatus(ctx context.Context, listingID, ownerID utils.SixID) (*models.Listing, error) {
	listing, err := s.findOwned(ctx, listingID, ownerID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if listing.Status == models.StatusSold {
		set["status"] = models.StatusAvailable
		set["archived"] = false
	} else {
		set["status"] = models.StatusSold
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Listing
	err = s.db.Collection(listingsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": listingID, "owner_id": ownerID}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle status for listing %s: %w", listingID.String(), err)
	}
	return &updated, nil
}

// ToggleArchive flips the archived flag only; the status field is untouched.
func (s *listingService) ToggleArchive(ctx context.Context, listingID, ownerID utils.SixID) (*models.Listing, error) {
	listing, err := s.findOwned(ctx, listingID, ownerID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"archived":   !listing.Archived,
		"updated_at": time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Listing
	err = s.db.Collection(listingsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": listingID, "owner_id": ownerID}, update, opts).
		Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle archive for listing %s: %w", listingID.String(), err)
	}
	return &updated, nil
}

// Delete removes the listing document permanently. Confirmation is the UI's
// responsibility; there is no soft-delete path.
func (s *listingService) Delete(ctx context.Context, listingID, ownerID utils.SixID) error {
	result, err := s.db.Collection(listingsCollection).DeleteOne(ctx, bson.M{"_id": listingID, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("db error deleting listing %s: %w", listingID.String(), err)
	}
	if result.DeletedCount == 0 {
		// Diagnose: missing vs wrong owner
		var listing models.Listing
		checkErr := s.db.Collection(listingsCollection).FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
		if errors.Is(checkErr, mongo.ErrNoDocuments) {
			return fmt.Errorf("listing %s not found", listingID.String())
		}
		return fmt.Errorf("listing %s does not belong to user %s", listingID.String(), ownerID.String())
	}
	return nil
}

// AddImage appends a processed image URL to a listing. Called by the image
// worker once the blob is stored.
func (s *listingService) AddImage(ctx context.Context, listingID utils.SixID, imageURL string) error {
	update := bson.M{
		"$addToSet": bson.M{"images": imageURL},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := s.db.Collection(listingsCollection).UpdateOne(ctx, bson.M{"_id": listingID}, update)
	if err != nil {
		return fmt.Errorf("db error adding image to listing %s: %w", listingID.String(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("listing %s not found when adding image", listingID.String())
	}
	return nil
}

// SearchPublic builds the public property search query. Archived listings and
// statuses outside {available, rented_out} (plus their legacy spellings) are
// excluded at the query level. Results are capped; there is no pagination.
func (s *listingService) SearchPublic(ctx context.Context, params PropertySearchParams) ([]models.Listing, error) {
	filter := bson.M{
		"archived": false,
		"status": bson.M{"$in": []models.Status{
			models.StatusAvailable, models.StatusActive,
			models.StatusRentedOut, models.StatusRented,
		}},
	}

	if params.ForSale != nil {
		filter["is_for_sale"] = *params.ForSale
	}
	if params.City != "" {
		filter["city"] = params.City
	}
	if params.Category != "" {
		filter["category"] = params.Category
	}

	pr := ParsePriceBucket(params.Bucket)
	if pr.Min > 0 || pr.Max < OpenEndedMax {
		priceFilter := bson.M{"$gte": pr.Min}
		if pr.Max > 0 {
			priceFilter["$lte"] = pr.Max
		}
		filter["price"] = priceFilter
	}

	limit := s.cfg.SearchResultLimit
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.db.Collection(listingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to execute property search: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Listing
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode property search results: %w", err)
	}
	return results, nil
}

// findOwned fetches a listing and verifies ownership, with a specific error
// for each failure mode.
func (s *listingService) findOwned(ctx context.Context, listingID, ownerID utils.SixID) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Collection(listingsCollection).FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("listing %s not found", listingID.String())
		}
		return nil, fmt.Errorf("error finding listing %s: %w", listingID.String(), err)
	}
	if listing.OwnerID != ownerID {
		return nil, fmt.Errorf("listing %s does not belong to user %s", listingID.String(), ownerID.String())
	}
	return &listing, nil
}
