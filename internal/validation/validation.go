// Package validation turns raw request bodies into typed, checked values.
// Rules are declared as struct tags on the schema types in schemas.go and
// enforced by go-playground/validator; anything a tag cannot express goes
// in a Check method.  Nothing here touches the store.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/venue-ops/internal/apperror"
	"github.com/iliyamo/venue-ops/internal/model"
)

// Checker is implemented by schemas with rules beyond struct tags.
type Checker interface {
	Check() []apperror.FieldError
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("venueobjecttype", func(fl validator.FieldLevel) bool {
		return model.VenueObjectType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("postatus", func(fl validator.FieldLevel) bool {
		return ParseStatus(fl.Field().String()) != ""
	})
	return v
}

// ParseStatus maps s onto the purchase order status enum, returning "" for
// anything outside it.
func ParseStatus(s string) model.PurchaseOrderStatus {
	switch st := model.PurchaseOrderStatus(s); st {
	case model.StatusPending, model.StatusOrdered, model.StatusShipped, model.StatusReceived, model.StatusCancelled:
		return st
	default:
		return ""
	}
}

// Bind decodes body into dst and validates it.  Type errors found while
// decoding and rule violations are reported together; a field that failed
// to decode is not reported a second time by its rules.
func Bind(body []byte, dst any) error {
	var details []apperror.FieldError
	if err := Decode(body, dst); err != nil {
		var ae *apperror.Error
		if !errors.As(err, &ae) || ae.Kind != apperror.KindValidation {
			return err
		}
		details = ae.Details
	}
	err := Struct(dst)
	if err == nil {
		if len(details) > 0 {
			return apperror.Validation(details)
		}
		return nil
	}
	var ae *apperror.Error
	if !errors.As(err, &ae) {
		return err
	}
	seen := make(map[string]bool, len(details))
	for _, d := range details {
		seen[d.Field] = true
	}
	for _, d := range ae.Details {
		if !seen[d.Field] {
			details = append(details, d)
		}
	}
	return apperror.Validation(details)
}

// Decode parses body as a JSON object into dst, a pointer to a struct.
// Unparseable input is reported as Malformed.  Fields are decoded one at a
// time so that every value of the wrong type is reported under its own
// JSON path, e.g. "items[1].unitCost".
func Decode(body []byte, dst any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return apperror.Malformed(errors.New("request body is required"))
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperror.Malformed(errors.New("request body must be a JSON object"))
		}
		return apperror.Malformed(err)
	}
	if obj == nil {
		return apperror.Malformed(errors.New("request body must be a JSON object"))
	}
	if details := decodeObject(obj, reflect.ValueOf(dst).Elem(), ""); len(details) > 0 {
		return apperror.Validation(details)
	}
	return nil
}

func decodeObject(obj map[string]json.RawMessage, v reflect.Value, prefix string) []apperror.FieldError {
	var details []apperror.FieldError
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if !sf.IsExported() || name == "" || name == "-" {
			continue
		}
		raw, ok := obj[name]
		if !ok {
			continue
		}
		path := prefix + name
		fv := v.Field(i)
		if isStructSlice(sf.Type) {
			details = append(details, decodeList(raw, fv, path)...)
			continue
		}
		if err := json.Unmarshal(raw, fv.Addr().Interface()); err != nil {
			fv.Set(reflect.Zero(sf.Type))
			details = append(details, apperror.FieldError{Field: path, Message: "must be " + jsonKind(sf.Type)})
		}
	}
	return details
}

// decodeList fills a slice of structs element by element.
func decodeList(raw json.RawMessage, fv reflect.Value, path string) []apperror.FieldError {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []apperror.FieldError{{Field: path, Message: "must be an array"}}
	}
	if elems == nil {
		return nil
	}
	var details []apperror.FieldError
	out := reflect.MakeSlice(fv.Type(), len(elems), len(elems))
	for i, el := range elems {
		elPath := path + "[" + strconv.Itoa(i) + "]"
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(el, &obj); err != nil || obj == nil {
			details = append(details, apperror.FieldError{Field: elPath, Message: "must be an object"})
			continue
		}
		details = append(details, decodeObject(obj, out.Index(i), elPath+".")...)
	}
	fv.Set(out)
	return details
}

func isStructSlice(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Struct &&
		t.Elem() != timeType && t.Elem() != decimalType
}

// Struct runs tag rules and the optional Check hook, reporting every
// violated field at once.
func Struct(v any) error {
	var details []apperror.FieldError
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate: %w", err)
		}
		for _, fe := range verrs {
			details = append(details, apperror.FieldError{Field: fieldPath(fe), Message: message(fe)})
		}
	}
	if c, ok := v.(Checker); ok {
		details = append(details, c.Check()...)
	}
	if len(details) > 0 {
		return apperror.Validation(details)
	}
	return nil
}

// ID checks that a path identifier is a UUID.
func ID(id string) error {
	if err := validate.Var(id, "required,uuid4"); err != nil {
		return apperror.Validation([]apperror.FieldError{{Field: "id", Message: "must be a valid id"}})
	}
	return nil
}

// fieldPath drops the root struct name from the namespace, leaving the
// JSON path, e.g. "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "uuid4", "uuid":
		return "must be a valid id"
	case "email":
		return "must be a valid email address"
	case "venueobjecttype":
		return "must be one of: " + joinTypes()
	case "postatus":
		return "must be one of: PENDING, ORDERED, SHIPPED, RECEIVED, CANCELLED"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}

func joinTypes() string {
	parts := make([]string, len(model.VenueObjectTypes))
	for i, t := range model.VenueObjectTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case timeType:
		return "an RFC 3339 timestamp"
	case decimalType:
		return "a decimal"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}
