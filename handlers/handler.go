package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hostpilot-backend")

// scopedHandler receives the traced request context and the caller's organization.
type scopedHandler func(c *gin.Context, ctx context.Context, organizationId string)

func scoped(name string, h scopedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationId, ok := utils.GetOrganizationIdFromContext(c.Request.Context())
		if !ok || organizationId == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx, span := tracer.Start(c.Request.Context(), name)
		defer span.End()
		h(c, ctx, organizationId)
	}
}

func respondError(c *gin.Context, ctx context.Context, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
	case utils.IsInputError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorOrganizationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case utils.IsDuplicateKey(err):
		c.JSON(http.StatusConflict, gin.H{"error": "record already exists"})
	default:
		trace.SpanFromContext(ctx).RecordError(err)
		config.LogError(config.GetLogger(), "handlers", c.HandlerName(), c.Request.Method+" "+c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func reply(c *gin.Context, ctx context.Context, status int, result interface{}, err error) {
	if err != nil {
		respondError(c, ctx, err)
		return
	}
	c.JSON(status, result)
}

// bindJSON writes the 400 itself; callers return when it reports false.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dst)
}

func pathId(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, utils.NewInputError("invalid id")
	}
	return id, nil
}

func queryInt(c *gin.Context, key string) (*int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, utils.NewInputError("invalid " + key)
	}
	return &v, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, utils.NewInputError("invalid " + key)
	}
	return &v, nil
}

// queryDate accepts a calendar date or an RFC 3339 timestamp.
func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if v, err := time.Parse(layout, raw); err == nil {
			v = v.UTC()
			return &v, nil
		}
	}
	return nil, utils.NewInputError("invalid " + key)
}

func queryString[T ~string](c *gin.Context, key string) *T {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil
	}
	v := T(raw)
	return &v
}

// queryParser collects the first parse error so list handlers read top to bottom.
type queryParser struct {
	c   *gin.Context
	err error
}

func (p *queryParser) Int(key string) *int {
	v, err := queryInt(p.c, key)
	p.keep(err)
	return v
}

func (p *queryParser) Bool(key string) *bool {
	v, err := queryBool(p.c, key)
	p.keep(err)
	return v
}

func (p *queryParser) Date(key string) *time.Time {
	v, err := queryDate(p.c, key)
	p.keep(err)
	return v
}

func (p *queryParser) keep(err error) {
	if p.err == nil {
		p.err = err
	}
}

func createHandler[In any, Out any](fn func(context.Context, string, *In) (*Out, error)) scopedHandler {
	return func(c *gin.Context, ctx context.Context, organizationId string) {
		var input In
		if !bindJSON(c, &input) {
			return
		}
		result, err := fn(ctx, organizationId, &input)
		reply(c, ctx, http.StatusCreated, result, err)
	}
}

func updateHandler[In any, Out any](fn func(context.Context, string, int, *In) (*Out, error)) scopedHandler {
	return func(c *gin.Context, ctx context.Context, organizationId string) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, ctx, err)
			return
		}
		var input In
		if !bindJSON(c, &input) {
			return
		}
		result, err := fn(ctx, organizationId, id, &input)
		reply(c, ctx, http.StatusOK, result, err)
	}
}

// byIdHandler serves gets, deletes and body-less state transitions.
func byIdHandler[Out any](fn func(context.Context, string, int) (*Out, error)) scopedHandler {
	return func(c *gin.Context, ctx context.Context, organizationId string) {
		id, err := pathId(c)
		if err != nil {
			respondError(c, ctx, err)
			return
		}
		result, err := fn(ctx, organizationId, id)
		reply(c, ctx, http.StatusOK, result, err)
	}
}
