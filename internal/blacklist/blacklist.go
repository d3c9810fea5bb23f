package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/latienda/backend/internal/log"
	"github.com/latienda/backend/internal/otel"
)

const keyPrefix = "blacklist:"

// Store keeps revoked tokens in redis until they would have expired anyway.
type Store struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewStore creates a Store whose entries live at most ttl. A zero ttl means
// entries live for the token's full remaining validity.
func NewStore(cache *redis.Client, ttl time.Duration) *Store {
	return &Store{cache: cache, ttl: ttl}
}

func (s *Store) Put(c context.Context, token string, expiresAt time.Time) error {
	c, span := otel.Tracer.Start(c, "Store Put")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "Store Put").
		Logger()

	ttl := computeTTL(s.ttl, expiresAt, time.Now())
	if ttl <= 0 {
		logger.Debug().Msg("token already expired, skipping blacklist")
		return nil
	}

	logger = logger.With().Str(log.KeyCacheKey, keyPrefix+"***").Logger()
	logger.Trace().Msg("inserting token to blacklist")
	err := s.cache.SetEx(c, keyPrefix+token, "revoked", ttl).Err()
	if err != nil {
		err = fmt.Errorf("failed inserting token to blacklist with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Dur("ttl", ttl).Msg("inserted token to blacklist")

	return nil
}

func (s *Store) Exists(c context.Context, token string) (bool, error) {
	c, span := otel.Tracer.Start(c, "Store Exists")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "Store Exists").
		Logger()

	n, err := s.cache.Exists(c, keyPrefix+token).Result()
	if err != nil {
		err = fmt.Errorf("failed checking token in blacklist with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}

	return n > 0, nil
}

func (s *Store) Delete(c context.Context, token string) error {
	c, span := otel.Tracer.Start(c, "Store Delete")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "Store Delete").
		Logger()

	err := s.cache.Del(c, keyPrefix+token).Err()
	if err != nil {
		err = fmt.Errorf("failed deleting token from blacklist with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted token from blacklist")

	return nil
}

// computeTTL caps the token's remaining validity at max. Max <= 0 means no cap.
func computeTTL(max time.Duration, expiresAt, now time.Time) time.Duration {
	remaining := expiresAt.Sub(now)
	if max > 0 && remaining > max {
		return max
	}
	return remaining
}
