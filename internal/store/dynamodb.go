package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/sentifi/internal/models"
)

const (
	SNAPSHOTS_TABLE_NAME = "SentimentSnapshots"
	snapshotTTL          = 30 * 24 * time.Hour
)

var (
	dynamoOnce   sync.Once
	dynamoClient *dynamodb.Client
	dynamoErr    error
)

// ArchiveEnabled reports whether snapshots should also be written to
// DynamoDB for long-term retention.
func ArchiveEnabled() bool {
	return os.Getenv("SNAPSHOT_ARCHIVE") == "dynamodb"
}

func getDynamoClient() (*dynamodb.Client, error) {
	dynamoOnce.Do(func() {
		region := os.Getenv("AWS_REGION")
		if region == "" {
			region = "us-west-2"
		}

		cfg, err := config.LoadDefaultConfig(context.Background(),
			config.WithRegion(region))
		if err != nil {
			dynamoErr = fmt.Errorf("[DynamoDB] failed to load AWS config: %w", err)
			return
		}

		endpoint := os.Getenv("AWS_ENDPOINT")
		dynamoClient = dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
	})
	return dynamoClient, dynamoErr
}

// ArchiveSnapshots writes snapshots to the archive table in batches of 25,
// retrying unprocessed items before giving up on them.
func ArchiveSnapshots(ctx context.Context, snapshots []models.SentimentSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	client, err := getDynamoClient()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(snapshotTTL).Unix()

	const maxBatchSize = 25
	for i := 0; i < len(snapshots); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := i + maxBatchSize
		if end > len(snapshots) {
			end = len(snapshots)
		}

		writeRequests := make([]types.WriteRequest, 0, maxBatchSize)
		for _, snapshot := range snapshots[i:end] {
			item, err := attributevalue.MarshalMap(snapshot)
			if err != nil {
				return fmt.Errorf("[DynamoDB] failed to marshal snapshot: %w", err)
			}
			item["expires_at"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt)}

			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				SNAPSHOTS_TABLE_NAME: writeRequests,
			},
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] failed to batch write snapshots: %w", err)
		}

		retryCount := 0
		backoffDuration := 500 * time.Millisecond
		for len(out.UnprocessedItems) > 0 && retryCount < 3 {
			time.Sleep(backoffDuration)
			backoffDuration *= 2
			slog.Warn("[DynamoDB] Retrying unprocessed snapshots...",
				slog.Int("retry_attempt", retryCount+1),
				slog.Int("remaining_items", len(out.UnprocessedItems[SNAPSHOTS_TABLE_NAME])))

			out, err = client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] failed to retry batch write: %w", err)
			}
			retryCount++
		}

		if len(out.UnprocessedItems) > 0 {
			slog.Error("[DynamoDB] Some snapshots were not archived after retries",
				slog.Int("remaining_items", len(out.UnprocessedItems[SNAPSHOTS_TABLE_NAME])))
		}
	}

	slog.Info("[DynamoDB] Archived snapshots", slog.Int("count", len(snapshots)))
	return nil
}
