package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/segyhp/loan-ledger/internal/domain"
	"github.com/segyhp/loan-ledger/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// noRequest marks a cached "nothing generated today" answer.
const noRequest = "null"

// generationTTL only has to outlive one database read between Generation
// and Set.
const generationTTL = 48 * time.Hour

// setIfGeneration writes the entry only while the generation counter still
// holds the value the reader saw before going to the database.
var setIfGeneration = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if current == false then current = "0" end
if current ~= ARGV[1] then return 0 end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// StatusCache keeps short-lived copies of a loan's daily payment request so
// polling clients do not hit the database on every tick.
type StatusCache interface {
	// Get reports found=false on a miss. A hit may carry a nil request.
	Get(ctx context.Context, loanID int64, day time.Time) (req *domain.DailyPaymentRequest, found bool, err error)
	// Generation must be read before loading req from the database; Set
	// drops the write when an Invalidate happened in between.
	Generation(ctx context.Context, loanID int64, day time.Time) (int64, error)
	Set(ctx context.Context, loanID int64, day time.Time, generation int64, req *domain.DailyPaymentRequest) error
	Invalidate(ctx context.Context, loanID int64, day time.Time) error
}

type redisStatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatusCache(rdb *redis.Client, ttl time.Duration) StatusCache {
	return &redisStatusCache{rdb: rdb, ttl: ttl}
}

func statusKey(loanID int64, day time.Time) string {
	return "loan:" + strconv.FormatInt(loanID, 10) + ":daily-payment:" + utils.DayKey(day)
}

func generationKey(loanID int64, day time.Time) string {
	return statusKey(loanID, day) + ":gen"
}

func (c *redisStatusCache) Get(ctx context.Context, loanID int64, day time.Time) (*domain.DailyPaymentRequest, bool, error) {
	raw, err := c.rdb.Get(ctx, statusKey(loanID, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if string(raw) == noRequest {
		return nil, true, nil
	}

	var req domain.DailyPaymentRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, false, err
	}
	return &req, true, nil
}

func (c *redisStatusCache) Generation(ctx context.Context, loanID int64, day time.Time) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(loanID, day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisStatusCache) Set(ctx context.Context, loanID int64, day time.Time, generation int64, req *domain.DailyPaymentRequest) error {
	if c.ttl <= 0 {
		return nil
	}

	payload := []byte(noRequest)
	if req != nil {
		var err error
		if payload, err = json.Marshal(req); err != nil {
			return err
		}
	}

	keys := []string{statusKey(loanID, day), generationKey(loanID, day)}
	err := setIfGeneration.Run(ctx, c.rdb, keys, strconv.FormatInt(generation, 10), payload, c.ttl.Milliseconds()).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Invalidate drops the entry and bumps the generation so that readers
// already past their database load cannot put the old state back.
func (c *redisStatusCache) Invalidate(ctx context.Context, loanID int64, day time.Time) error {
	genKey := generationKey(loanID, day)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, statusKey(loanID, day))
		return nil
	})
	return err
}
