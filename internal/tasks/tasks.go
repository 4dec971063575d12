package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"hoyhub/backend/internal/config"
	"hoyhub/backend/internal/email"
	"hoyhub/backend/internal/services"
	"hoyhub/backend/internal/utils"
)

// Task types.
const (
	TypeEmailDelivery = "email:deliver"
	TypeImageProcess  = "image:process"
	TypeReferralAward = "referral:award"
)

// NewClient creates an asynq client on the shared Redis connection.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	})
}

// ObjectStore is the slice of blob storage the image worker needs.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	PublicURL(key string) string
}

// ImageAttacher records a processed image URL against a listing.
type ImageAttacher interface {
	AddImage(ctx context.Context, listingID utils.SixID, imageURL string) error
}

// ReferralAwarder increments the counter behind a redeemed referral code.
type ReferralAwarder interface {
	Award(ctx context.Context, code string) error
}

// TaskProcessor holds the dependencies task handlers need.
type TaskProcessor struct {
	cfg             *config.Config
	emailSender     email.Sender
	store           ObjectStore
	listings        ImageAttacher
	referralService ReferralAwarder
	taskClient      *asynq.Client
}

// NewTaskProcessor creates a new TaskProcessor.
func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	store ObjectStore,
	listings ImageAttacher,
	referralService ReferralAwarder,
	taskClient *asynq.Client,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:             cfg,
		emailSender:     emailSender,
		store:           store,
		listings:        listings,
		referralService: referralService,
		taskClient:      taskClient,
	}
}

// SetupServer configures an asynq server and handler mux for the selected
// worker modes. Returns nil in api-only mode; the caller runs the server.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isImageWorker bool, isBgWorker bool) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(serverOpt, asynq.Config{
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
			"images":   5,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("[asynq] task %s failed: %v (payload: %s)", task.Type(), err, string(task.Payload()))
		}),
	})

	mux := asynq.NewServeMux()

	if isBgWorker {
		mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
		mux.HandleFunc(TypeReferralAward, processor.HandleReferralAwardTask)
		log.Println("Registered background task handlers.")
	}

	if isImageWorker {
		mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
		log.Println("Registered image processing task handlers.")
	}

	if !isBgWorker && !isImageWorker {
		log.Println("Running in API mode, no task server started.")
		return nil, nil
	}

	return srv, mux
}

// EmailTaskPayload is the payload for TypeEmailDelivery.
type EmailTaskPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// HandleEmailDeliveryTask builds the raw message and hands it to the sender.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}

	fromAddress := p.cfg.SmtpFromAddress
	if fromAddress == "" {
		fromAddress = "noreply@hoyhub.example.com"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", payload.To))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", fromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", payload.Subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(payload.Body)
	sb.WriteString("\r\n")

	if err := p.emailSender.Send(ctx, []string{payload.To}, payload.Subject, []byte(sb.String())); err != nil {
		log.Printf("Email delivery to %s failed: %v", payload.To, err)
		return err
	}
	return nil
}

// ImageTaskPayload is the payload for TypeImageProcess.
type ImageTaskPayload struct {
	S3Key     string `json:"s3_key"`
	ListingID string `json:"listing_id"`
}

// HandleImageProcessTask downloads an uploaded image, enforces the size cap,
// shrinks it to the configured bound and attaches the result to the listing.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	listingID, err := utils.ParseSixID(payload.ListingID)
	if err != nil {
		return fmt.Errorf("invalid listing ID %q in payload: %w", payload.ListingID, asynq.SkipRetry)
	}

	imgData, err := p.store.GetObject(ctx, payload.S3Key)
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchKey") {
			return fmt.Errorf("s3 object %s missing, upload likely failed: %w", payload.S3Key, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to download image %s: %w", payload.S3Key, err)
	}

	maxSizeBytes := int64(p.cfg.ImageMaxSizeMB) * 1024 * 1024
	if int64(len(imgData)) > maxSizeBytes {
		return fmt.Errorf("image %s exceeds max size (%d > %d bytes): %w", payload.S3Key, len(imgData), maxSizeBytes, asynq.SkipRetry)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return fmt.Errorf("unsupported or corrupt image %s: %w", payload.S3Key, asynq.SkipRetry)
	}
	log.Printf("Decoded image %s (%s, %dx%d)", payload.S3Key, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxDim := uint(p.cfg.ImageMaxDimension)
	processedData := imgData
	contentType := "image/" + format

	if uint(img.Bounds().Dx()) > maxDim || uint(img.Bounds().Dy()) > maxDim {
		resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
			return fmt.Errorf("failed to re-encode resized image %s: %w", payload.S3Key, err)
		}
		processedData = buf.Bytes()
		contentType = "image/jpeg"
		log.Printf("Resized image %s to %dx%d", payload.S3Key, resized.Bounds().Dx(), resized.Bounds().Dy())
	}

	if err := p.store.PutObject(ctx, payload.S3Key, processedData, contentType); err != nil {
		return fmt.Errorf("failed to upload processed image %s: %w", payload.S3Key, err)
	}

	imageURL := p.store.PublicURL(payload.S3Key)
	if err := p.listings.AddImage(ctx, listingID, imageURL); err != nil {
		return fmt.Errorf("failed to attach image %s to listing %s: %w", payload.S3Key, payload.ListingID, err)
	}

	log.Printf("Image task done: key=%s listing=%s", payload.S3Key, payload.ListingID)
	return nil
}

// ReferralAwardPayload is the payload for TypeReferralAward.
type ReferralAwardPayload struct {
	Code string `json:"code"`
}

// HandleReferralAwardTask increments the referral counter off the signup
// request path.
func (p *TaskProcessor) HandleReferralAwardTask(ctx context.Context, t *asynq.Task) error {
	var payload ReferralAwardPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal referral award payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := p.referralService.Award(ctx, payload.Code); err != nil {
		if errors.Is(err, services.ErrUnknownReferralCode) {
			log.Printf("Referral award for unknown code %q dropped.", payload.Code)
			return nil
		}
		return err
	}
	return nil
}
