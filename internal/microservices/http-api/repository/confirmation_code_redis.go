package repository

import (
	"context"
	"fmt"
	"time"

	"yamdb/internal/microservices/http-api/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// consumeScript deletes the hash only while it still holds the expected code id.
var consumeScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "id") == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type confirmationCodeRedisStore struct {
	client *redis.Client
}

// NewConfirmationCodeRedisStore keeps codes as hashes that expire with the code.
func NewConfirmationCodeRedisStore(client *redis.Client) ConfirmationCodeStore {
	return &confirmationCodeRedisStore{client: client}
}

func confirmationKey(userID int64) string {
	return fmt.Sprintf("confirmation:user:%d", userID)
}

func (s *confirmationCodeRedisStore) Replace(ctx context.Context, code *models.ConfirmationCode) error {
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	key := confirmationKey(code.UserID)

	fields := map[string]any{
		"id":         code.ID,
		"user_id":    code.UserID,
		"code_hash":  code.CodeHash,
		"expires_at": code.ExpiresAt.Format(time.RFC3339Nano),
		"created_at": code.CreatedAt.Format(time.RFC3339Nano),
	}

	// DEL first so no field of an older code survives the rewrite
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.ExpireAt(ctx, key, code.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store confirmation code: %w", err)
	}
	return nil
}

func (s *confirmationCodeRedisStore) FindByUserID(ctx context.Context, userID int64) (*models.ConfirmationCode, error) {
	fields, err := s.client.HGetAll(ctx, confirmationKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load confirmation code: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	code := &models.ConfirmationCode{
		ID:       fields["id"],
		UserID:   userID,
		CodeHash: fields["code_hash"],
	}
	if code.ExpiresAt, err = time.Parse(time.RFC3339Nano, fields["expires_at"]); err != nil {
		return nil, fmt.Errorf("invalid expires_at for user %d: %w", userID, err)
	}
	code.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["created_at"])
	return code, nil
}

func (s *confirmationCodeRedisStore) Consume(ctx context.Context, code *models.ConfirmationCode) (bool, error) {
	deleted, err := consumeScript.Run(ctx, s.client, []string{confirmationKey(code.UserID)}, code.ID).Int()
	if err != nil {
		return false, fmt.Errorf("consume confirmation code: %w", err)
	}
	return deleted == 1, nil
}
