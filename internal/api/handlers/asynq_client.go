package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"hoyhub/backend/internal/tasks"
	"hoyhub/backend/internal/utils"
)

// IAsynqClient defines the interface for the Asynq client methods handlers
// enqueue through.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func enqueueImageProcess(ctx context.Context, client IAsynqClient, s3Key string, listingID utils.SixID) error {
	if client == nil {
		return fmt.Errorf("no task client configured")
	}
	payload, err := json.Marshal(tasks.ImageTaskPayload{S3Key: s3Key, ListingID: listingID.String()})
	if err != nil {
		return fmt.Errorf("failed to marshal image task payload: %w", err)
	}
	task := asynq.NewTask(tasks.TypeImageProcess, payload)
	if _, err := client.EnqueueContext(ctx, task, asynq.Queue("images"), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue image task for %s: %w", s3Key, err)
	}
	return nil
}

func enqueueReferralAward(ctx context.Context, client IAsynqClient, code string) error {
	if client == nil {
		return fmt.Errorf("no task client configured")
	}
	payload, err := json.Marshal(tasks.ReferralAwardPayload{Code: code})
	if err != nil {
		return fmt.Errorf("failed to marshal referral award payload: %w", err)
	}
	task := asynq.NewTask(tasks.TypeReferralAward, payload)
	if _, err := client.EnqueueContext(ctx, task, asynq.Queue("low"), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue referral award for code %s: %w", code, err)
	}
	return nil
}

func enqueueEmail(ctx context.Context, client IAsynqClient, to, subject, body string) error {
	if client == nil {
		return fmt.Errorf("no task client configured")
	}
	payload, err := json.Marshal(tasks.EmailTaskPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	task := asynq.NewTask(tasks.TypeEmailDelivery, payload)
	if _, err := client.EnqueueContext(ctx, task, asynq.Queue("default"), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue email task to %s: %w", to, err)
	}
	return nil
}
