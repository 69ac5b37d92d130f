package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const CorrelationIDHeader = "X-Correlation-ID"

type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyMiddleware replays the stored response of a mutating request
// whose X-Correlation-ID was already seen for the same user within ttl.
// Retried set logs from a flaky connection are answered without running
// the handler again.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPatch && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		correlationID := c.Get(CorrelationIDHeader)
		if correlationID == "" {
			return c.Next()
		}

		key := fmt.Sprintf("idempotency:%s:%s", UserID(c), correlationID)

		cached, err := redisClient.Get(c.UserContext(), key).Bytes()
		if err == nil && len(cached) > 0 {
			var resp cachedResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				c.Set("X-Idempotent-Replay", "true")
				c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
				return c.Status(resp.Status).Send(resp.Body)
			}
		} else if err != nil && err != redis.Nil {
			log.WithError(err).Warn("idempotency lookup failed, processing request")
		}

		if err := c.Next(); err != nil {
			return err
		}

		statusCode := c.Response().StatusCode()
		if statusCode < 200 || statusCode >= 300 {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}
		payload, err := json.Marshal(cachedResponse{
			Status: statusCode,
			Body:   append([]byte(nil), body...),
		})
		if err != nil {
			return nil
		}

		// fire and forget; the response is already built
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisClient.Set(bgCtx, key, payload, ttl).Err(); err != nil {
				log.WithError(err).Warn("failed to store idempotent response")
			}
		}()

		return nil
	}
}
