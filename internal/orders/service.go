package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
	"github.com/joe-hadchity/lescale-pos/internal/remote"
	"github.com/joe-hadchity/lescale-pos/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// ErrDuplicateSubmission is returned when the same checkout is confirmed
// twice before the first submission settles.
var ErrDuplicateSubmission = errors.New("order already submitted")

// submissionResponse is what the submission service returns for an accepted
// order.
type submissionResponse struct {
	OrderNumber string `json:"order_number"`
}

// Service finalizes confirmed orders: it reserves an idempotency key,
// submits the order to the remote order service, publishes a finalized-order
// event and journals the result locally. Submission and the later print
// dispatch are independent outcomes; neither rolls the other back.
type Service struct {
	submissionURL string
	client        *http.Client
	kafkaWriter   *kafka.Writer
	rdb           *redis.Client
	journal       *repository.Journal
}

// NewService creates the finalization service.
func NewService(submissionURL string, kafkaWriter *kafka.Writer, rdb *redis.Client, journal *repository.Journal) *Service {
	return &Service{
		submissionURL: submissionURL,
		client:        http.DefaultClient,
		kafkaWriter:   kafkaWriter,
		rdb:           rdb,
		journal:       journal,
	}
}

// Submit sends a finalized order to the submission service and returns the
// assigned order number. The idempotency key guards against double
// confirmation from the same session.
func (s *Service) Submit(ctx context.Context, order *entity.Order, idempotencyKey string) (string, error) {
	ok, err := s.reserveIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrDuplicateSubmission
	}

	var resp submissionResponse
	headers := map[string]string{"Idempotent-Key": idempotencyKey}
	if opErr := remote.PostJSON(ctx, s.client, s.submissionURL+"/orders", headers, order, &resp); opErr != nil {
		logger.Error().Str("kind", string(opErr.Kind)).Msgf("Order submission failed: %s", opErr.Message)
		return "", opErr
	}
	order.OrderNumber = resp.OrderNumber

	if err := s.publishOrderEvent(ctx, order, "finalized"); err != nil {
		// The order is accepted; a lost event must not fail the checkout.
		logger.Error().Err(err).Msgf("Error publishing event for order %s", order.OrderNumber)
	}

	if s.journal != nil {
		if err := s.journal.Record(ctx, order, time.Now()); err != nil {
			logger.Error().Err(err).Msgf("Error journaling order %s", order.OrderNumber)
		}
	}

	return resp.OrderNumber, nil
}

func (s *Service) publishOrderEvent(ctx context.Context, order *entity.Order, key string) error {
	// if env is set to test, skip publishing
	if os.Getenv("ENV") == "test" || s.kafkaWriter == nil {
		return nil
	}

	orderJSON, err := json.Marshal(order)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%s", key, order.OrderNumber)),
		Value: orderJSON,
	}

	return s.kafkaWriter.WriteMessages(ctx, msg)
}

func (s *Service) reserveIdempotencyKey(ctx context.Context, key string) (bool, error) {
	if s.rdb == nil || key == "" {
		return true, nil
	}

	redisKey := fmt.Sprintf("idempotent-key:%s", key)
	val, err := s.rdb.Get(ctx, redisKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	if val != "" {
		return false, nil
	}

	// Reserve the key with a TTL of 24 hours.
	if err := s.rdb.Set(ctx, redisKey, "exists", 24*time.Hour).Err(); err != nil {
		return false, err
	}
	return true, nil
}
