package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"clinic-appointment-backend/pkg/dateutil"
)

// TokenSequencer issues per-doctor-per-day appointment token numbers.
//
// Contract: for a given (doctorCode, day) bucket, concurrent Next calls return
// distinct, monotonically increasing tokens. lastIssued is the highest token
// the caller observed in the database for the bucket; the sequencer never
// returns a token at or below it, which lets a freshly started (or flushed)
// sequencer recover from durable state.
//
// Release undoes an issue only when the token is still the newest one in the
// bucket, so a failed insert does not leave a gap; tokens behind the head are
// never reused.
type TokenSequencer interface {
	Next(ctx context.Context, doctorCode string, day time.Time, lastIssued int) (int, error)
	Release(ctx context.Context, doctorCode string, day time.Time, token int) error
	Stop()
}

const (
	// Interval for cleaning up idle bucket counters
	bucketCleanupInterval = 10 * time.Minute

	// How long a bucket must be unused before cleanup
	bucketStaleThreshold = 10 * time.Minute
)

// bucketCounter tracks the last issued token for one (doctor, day) bucket
type bucketCounter struct {
	mu       sync.Mutex
	last     int
	lastUsed atomic.Int64 // Unix timestamp
}

// MemoryTokenSequencer serializes token assignment with an in-process mutex
// per (doctor, day) bucket. Correct only for single-instance deployments;
// multi-instance deployments must use the Redis sequencer.
type MemoryTokenSequencer struct {
	buckets sync.Map // map[string]*bucketCounter

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewMemoryTokenSequencer() *MemoryTokenSequencer {
	s := &MemoryTokenSequencer{
		stopChan: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func tokenBucketKey(doctorCode string, day time.Time) string {
	return fmt.Sprintf("%s:%s", doctorCode, dateutil.DayKey(day))
}

func (s *MemoryTokenSequencer) Next(ctx context.Context, doctorCode string, day time.Time, lastIssued int) (int, error) {
	bc := s.getBucket(doctorCode, day)
	bc.mu.Lock()
	defer bc.mu.Unlock()

	// Merge with durable state so a restarted process never reissues a token
	if bc.last < lastIssued {
		bc.last = lastIssued
	}
	bc.last++
	return bc.last, nil
}

func (s *MemoryTokenSequencer) Release(ctx context.Context, doctorCode string, day time.Time, token int) error {
	bc := s.getBucket(doctorCode, day)
	bc.mu.Lock()
	defer bc.mu.Unlock()

	// Only the newest token can be taken back; anything older stays consumed
	if bc.last == token {
		bc.last--
	}
	return nil
}

// Stop shuts down the cleanup goroutine. Safe to call multiple times.
func (s *MemoryTokenSequencer) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
	}
}

func (s *MemoryTokenSequencer) getBucket(doctorCode string, day time.Time) *bucketCounter {
	bc, _ := s.buckets.LoadOrStore(tokenBucketKey(doctorCode, day), &bucketCounter{})
	result := bc.(*bucketCounter)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (s *MemoryTokenSequencer) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(bucketCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanupStaleBuckets()
		}
	}
}

// cleanupStaleBuckets removes idle counters using TryLock for safety.
// The lastUsed check runs inside the lock so a concurrent Next cannot be
// dropped between the check and the delete.
func (s *MemoryTokenSequencer) cleanupStaleBuckets() {
	cutoff := time.Now().Add(-bucketStaleThreshold).Unix()

	s.buckets.Range(func(key, value any) bool {
		bc, ok := value.(*bucketCounter)
		if !ok {
			return true
		}

		if bc.mu.TryLock() {
			if bc.lastUsed.Load() < cutoff {
				s.buckets.Delete(key)
			}
			bc.mu.Unlock()
		}
		return true
	})
}
