package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/sirupsen/logrus"
	"github.com/ttacon/libphonenumber"
)

// FormatPhoneNumber normalizes a valid number to E.164.
func FormatPhoneNumber(phoneNumber, countryCode string) (string, error) {
	if countryCode == "" {
		countryCode = config.DefaultCountryCode()
	}
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

// ProcessValidationErrors maps field name to the failed tag.
// Non-validator errors are reported under "body".
func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["body"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

func NilIfEmpty[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func Ptr[T any](v T) *T {
	return &v
}

/* dates */

// MonthKey formats t as YYYY-MM in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// DaysBetween counts whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

/* locking */

// OrganizationLock takes a best-effort redis lock for key within an organization.
// The returned release func is never nil; when redis is not ready or the lock
// is busy the caller proceeds unlocked and a warning is logged.
func OrganizationLock(ctx context.Context, organizationId string, key string, ttl time.Duration) func() {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}
	}
	lockKey := fmt.Sprintf("lock:%s:%s", organizationId, key)
	lock, err := locker.Obtain(ctx, lockKey, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
	})
	if err != nil {
		logger.WithFields(logrus.Fields{
			"field":           "OrganizationLock",
			"organization_id": organizationId,
			"key":             lockKey,
		}).Warn("proceeding without redis lock: " + err.Error())
		return func() {}
	}
	return func() {
		if releaseErr := lock.Release(context.Background()); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			logger.WithFields(logrus.Fields{
				"field": "OrganizationLock",
				"key":   lockKey,
			}).Warn("failed to release redis lock: " + releaseErr.Error())
		}
	}
}
