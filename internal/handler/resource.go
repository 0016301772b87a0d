package handler

// resource.go holds the request template every resource endpoint follows:
// read the id or body, validate, make one gateway call, answer with the
// envelope.  The session check has already run in middleware.

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ops/internal/apperror"
	"github.com/iliyamo/venue-ops/internal/validation"
)

// dbTimeout bounds every gateway call made on behalf of a request.
const dbTimeout = 5 * time.Second

// maxBodyBytes caps request bodies; larger ones are rejected as malformed.
const maxBodyBytes = 1 << 20

func dbContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// bindBody reads the request body into dst and validates it.
func bindBody(c echo.Context, dst any) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return apperror.Malformed(err)
	}
	if len(body) > maxBodyBytes {
		return &apperror.Error{Kind: apperror.KindMalformed, Message: "request body too large"}
	}
	return validation.Bind(body, dst)
}

// pathID returns the :id parameter once it is known to be well formed.
func pathID(c echo.Context) (string, error) {
	id := c.Param("id")
	if err := validation.ID(id); err != nil {
		return "", err
	}
	return id, nil
}

// queryID returns the named query parameter, which may be absent but must
// be a valid id when present.
func queryID(q url.Values, name string) (string, error) {
	v := q.Get(name)
	if v == "" {
		return "", nil
	}
	if err := validation.ID(v); err != nil {
		return "", apperror.Validation([]apperror.FieldError{{Field: name, Message: "must be a valid id"}})
	}
	return v, nil
}

func createHandler[In any, Out any](entity string, create func(ctx context.Context, c echo.Context, in *In) (Out, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in In
		if err := bindBody(c, &in); err != nil {
			return err
		}
		ctx, cancel := dbContext(c)
		defer cancel()
		out, err := create(ctx, c, &in)
		if err != nil {
			return storeError(entity, err)
		}
		return created(c, out)
	}
}

func getHandler[Out any](entity string, get func(ctx context.Context, id string) (Out, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		ctx, cancel := dbContext(c)
		defer cancel()
		out, err := get(ctx, id)
		if err != nil {
			return storeError(entity, err)
		}
		return ok(c, out)
	}
}

func listHandler[Out any](entity string, list func(ctx context.Context, q url.Values) (Out, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := dbContext(c)
		defer cancel()
		out, err := list(ctx, c.QueryParams())
		if err != nil {
			return storeError(entity, err)
		}
		return ok(c, out)
	}
}

func updateHandler[In any, Out any](entity string, update func(ctx context.Context, c echo.Context, id string, in *In) (Out, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		var in In
		if err := bindBody(c, &in); err != nil {
			return err
		}
		ctx, cancel := dbContext(c)
		defer cancel()
		out, err := update(ctx, c, id, &in)
		if err != nil {
			return storeError(entity, err)
		}
		return ok(c, out)
	}
}

func deleteHandler(entity string, del func(ctx context.Context, id string) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		ctx, cancel := dbContext(c)
		defer cancel()
		if err := del(ctx, id); err != nil {
			return storeError(entity, err)
		}
		return ok(c, deleted{ID: id, Deleted: true})
	}
}

func trimName(s string) string { return strings.TrimSpace(s) }
