package service

import (
	"context"
	"fmt"
	"time"

	domainRepo "clinic-appointment-backend/internal/domain/repository"
	"clinic-appointment-backend/pkg/dateutil"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Redis key prefix for per-doctor-per-day token counters
const redisTokenKeyPrefix = "appt:token:"

// nextTokenScript seeds the bucket counter and increments it as a single
// atomic operation inside Redis. ARGV[1] is the highest token the caller saw
// in the database; the counter is raised to it before the INCR so a cold or
// stale key can never hand out a duplicate. ARGV[2] is the key TTL in seconds.
//
// The client automatically switches to EVALSHA after the first call.
var nextTokenScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '-1')
	local seed = tonumber(ARGV[1])
	if current < seed then
		redis.call('SET', KEYS[1], seed)
	end
	local token = redis.call('INCR', KEYS[1])
	redis.call('EXPIRE', KEYS[1], ARGV[2])
	return token
`)

// releaseTokenScript takes back an issued token only while it is still the
// newest one in the bucket. Older tokens are never reused.
var releaseTokenScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	if current == tonumber(ARGV[1]) then
		redis.call('DECR', KEYS[1])
		return 1
	end
	return 0
`)

// RedisTokenSequencer issues token numbers through atomic Redis counters,
// one key per (doctor, day) bucket. Safe across multiple app instances.
type RedisTokenSequencer struct {
	db              *gorm.DB
	redisClient     *redis.Client
	log             *logrus.Logger
	appointmentRepo domainRepo.AppointmentRepository
}

func NewRedisTokenSequencer(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger, appointmentRepo domainRepo.AppointmentRepository) *RedisTokenSequencer {
	return &RedisTokenSequencer{
		db:              db,
		redisClient:     redisClient,
		log:             log,
		appointmentRepo: appointmentRepo,
	}
}

func (s *RedisTokenSequencer) Next(ctx context.Context, doctorCode string, day time.Time, lastIssued int) (int, error) {
	key := s.tokenKey(doctorCode, day)
	ttl := s.calculateTTL(day)

	token, err := nextTokenScript.Run(ctx, s.redisClient, []string{key}, lastIssued, int(ttl.Seconds())).Int()
	if err != nil {
		s.log.Warnf("Failed to issue token for %s: %+v", key, err)
		return 0, fmt.Errorf("issue token for %s: %w", key, err)
	}

	s.log.Debugf("Issued token %d for %s", token, key)
	return token, nil
}

func (s *RedisTokenSequencer) Release(ctx context.Context, doctorCode string, day time.Time, token int) error {
	key := s.tokenKey(doctorCode, day)

	released, err := releaseTokenScript.Run(ctx, s.redisClient, []string{key}, token).Int()
	if err != nil {
		s.log.Warnf("Failed to release token %d for %s: %+v", token, key, err)
		return fmt.Errorf("release token %d for %s: %w", token, key, err)
	}

	if released == 0 {
		// A newer token was issued in the meantime; the number stays consumed
		s.log.Debugf("Token %d for %s no longer at head, not released", token, key)
	}
	return nil
}

// Stop is a no-op; the sequencer holds no background state of its own.
func (s *RedisTokenSequencer) Stop() {}

// SyncOnStartup re-seeds today's and future bucket counters from the
// database. Must run before traffic is accepted so a Redis flush cannot lead
// to duplicate token numbers.
func (s *RedisTokenSequencer) SyncOnStartup(ctx context.Context) error {
	s.log.Info("Re-seeding token counters from database...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	today, _ := dateutil.DayBounds(time.Now())

	buckets, err := s.appointmentRepo.FindTokenBuckets(s.db.WithContext(ctx), today)
	if err != nil {
		s.log.Errorf("Failed to query token buckets: %+v", err)
		return fmt.Errorf("query token buckets: %w", err)
	}

	if len(buckets) == 0 {
		s.log.Info("No active token buckets found for sync")
		return nil
	}

	pipe := s.redisClient.TxPipeline()
	for _, bucket := range buckets {
		key := s.tokenKey(bucket.DoctorCode, bucket.AppointmentDate)
		pipe.Set(ctx, key, bucket.MaxTokenNumber, s.calculateTTL(bucket.AppointmentDate))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Errorf("Failed to execute token sync pipeline: %+v", err)
		return fmt.Errorf("token sync pipeline: %w", err)
	}

	s.log.Infof("Token counter re-sync completed: %d buckets in %v", len(buckets), time.Since(startTime))
	return nil
}

func (s *RedisTokenSequencer) tokenKey(doctorCode string, day time.Time) string {
	return fmt.Sprintf("%s%s:%s", redisTokenKeyPrefix, doctorCode, dateutil.DayKey(day))
}

// calculateTTL returns a TTL that keeps the counter alive until 24 hours
// after the bucket's day has ended
func (s *RedisTokenSequencer) calculateTTL(day time.Time) time.Duration {
	_, dayEnd := dateutil.DayBounds(day)
	ttl := time.Until(dayEnd.AddDate(0, 0, 1))

	if ttl <= 0 {
		// Past day - short TTL for cleanup
		return 1 * time.Minute
	}

	return ttl
}
