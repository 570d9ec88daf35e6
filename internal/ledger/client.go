package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dyluth/libdoc2tb/internal/timespec"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MinShortIDLength is the shortest run id prefix accepted by ResolveRunID.
const MinShortIDLength = 6

// Client provides repository-scoped access to the run history.
// The client is safe for concurrent use.
type Client struct {
	rdb        *redis.Client
	repository string
	logger     *slog.Logger
}

// NewClient creates a ledger client for the specified repository id.
func NewClient(redisOpts *redis.Options, repository string) (*Client, error) {
	if repository == "" {
		return nil, fmt.Errorf("repository cannot be empty")
	}

	return &Client{
		rdb:        redis.NewClient(redisOpts),
		repository: repository,
		logger:     slog.Default(),
	}, nil
}

// Dial parses a redis:// URL and creates a client for repository.
func Dial(redisURL, repository string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewClient(opts, repository)
}

// WithLogger sets the logger used for skipped records.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// RecordRun stores a run and adds it to the time index in one transaction.
func (c *Client) RecordRun(ctx context.Context, run *Run) error {
	if run.Repository != c.repository {
		return fmt.Errorf("run belongs to repository '%s', client is scoped to '%s'", run.Repository, c.repository)
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}

	hash, err := RunToHash(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, RunKey(c.repository, run.ID), hash)
		pipe.ZAdd(ctx, RunIndexKey(c.repository), redis.Z{
			Score:  float64(run.CreatedAtMs),
			Member: run.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write run to Redis: %w", err)
	}

	return nil
}

// GetRun retrieves a run by its full id.
// Returns (nil, redis.Nil) if the run doesn't exist; use IsNotFound to check.
func (c *Client) GetRun(ctx context.Context, runID string) (*Run, error) {
	hashData, err := c.rdb.HGetAll(ctx, RunKey(c.repository, runID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run from Redis: %w", err)
	}

	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	run, err := HashToRun(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize run: %w", err)
	}

	return run, nil
}

// ListRuns returns the runs created inside window, oldest first.
// Index entries whose hash is missing or malformed are skipped with a warning.
func (c *Client) ListRuns(ctx context.Context, window timespec.Range) ([]*Run, error) {
	by := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if !window.Since.IsZero() {
		by.Min = strconv.FormatInt(window.Since.UnixMilli(), 10)
	}
	if !window.Until.IsZero() {
		by.Max = strconv.FormatInt(window.Until.UnixMilli(), 10)
	}

	ids, err := c.rdb.ZRangeByScore(ctx, RunIndexKey(c.repository), by).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run index: %w", err)
	}

	runs := make([]*Run, 0, len(ids))
	for _, id := range ids {
		run, err := c.GetRun(ctx, id)
		if err != nil {
			c.logger.Warn("Skipping unreadable run", "run_id", id, "error", err)
			continue
		}
		runs = append(runs, run)
	}

	return runs, nil
}

// ResolveRunID expands a full id or a unique prefix into the full run id.
func (c *Client) ResolveRunID(ctx context.Context, shortID string) (string, error) {
	shortID = strings.ToLower(strings.TrimSpace(shortID))

	if _, err := uuid.Parse(shortID); err == nil && len(shortID) == 36 {
		if _, err := c.GetRun(ctx, shortID); err != nil {
			if IsNotFound(err) {
				return "", &NotFoundError{ShortID: shortID}
			}
			return "", fmt.Errorf("failed to verify run existence: %w", err)
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	ids, err := c.rdb.ZRange(ctx, RunIndexKey(c.repository), 0, -1).Result()
	if err != nil {
		return "", fmt.Errorf("failed to search run index: %w", err)
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, shortID) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// IsNotFound reports whether err is a Redis "key not found" error or a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.Is(err, redis.Nil) || errors.As(err, &nf)
}
