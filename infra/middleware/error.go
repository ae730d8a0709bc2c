package middleware

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"

	"easyncd/pkg/apperr"
	"easyncd/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrorHandler maps apperr.AppError (and any other error) onto the wire
// contract of spec §6/§7: status code, relevant headers, and an EMPTY
// body — EAS errors never carry a JSON envelope, only WBXML success
// bodies do.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID, _ := c.Locals("request_id").(string)
		log := logger.WithField("request_id", requestID)

		if ae, ok := apperr.As(err); ok {
			if ae.Status >= 500 {
				log.WithError(ae.Err).WithField("code", ae.Code).Error("request_failed")
			} else {
				log.WithField("code", ae.Code).Warn("request_rejected")
			}
			switch ae.Code {
			case apperr.CodeAuthRequired, apperr.CodeAuthFailed:
				c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="ActiveSync"`)
			case apperr.CodeRateLimited:
				if ae.RetryAfter > 0 {
					c.Set(fiber.HeaderRetryAfter, strconv.Itoa(ae.RetryAfter))
				}
			}
			return c.Status(ae.Status).Send(nil)
		}

		if fe, ok := err.(*fiber.Error); ok {
			log.Warn("request_rejected: %s", fe.Message)
			return c.Status(fe.Code).Send(nil)
		}

		log.WithError(err).Error("request_failed_unexpected")
		return c.Status(fiber.StatusInternalServerError).Send(nil)
	}
}

// RequestID assigns or propagates a correlation id for every request.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Locals("request_id", id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		requestID, _ := c.Locals("request_id").(string)
		fields := map[string]any{
			"request_id": requestID,
			"method":     c.Method(),
			"path":       c.Path(),
			"cmd":        c.Query("Cmd"),
			"status":     c.Response().StatusCode(),
		}
		if deviceID := c.Query("DeviceId"); deviceID != "" {
			fields["device_id"] = deviceID
		}
		log := logger.WithFields(fields)

		status := c.Response().StatusCode()
		switch {
		case status >= 500:
			log.Error("request_completed")
		case status >= 400:
			log.Warn("request_completed")
		default:
			log.Info("request_completed")
		}
		return err
	}
}

// Recover turns a panic into a 500 rather than crashing the process.
func Recover() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Locals("request_id").(string)
				fmt.Fprintf(os.Stderr, "panic recovered: request_id=%s path=%s %s\n%s\n",
					requestID, c.Path(), r, debug.Stack())
				logger.WithFields(map[string]any{
					"request_id": requestID,
					"panic":      fmt.Sprintf("%v", r),
					"path":       c.Path(),
				}).Error("panic_recovered")
				c.Status(fiber.StatusInternalServerError).Send(nil)
			}
		}()
		return c.Next()
	}
}
