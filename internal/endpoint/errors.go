package endpoint

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/coursewizard/internal/domain"
)

// MapErrorToStatus maps domain errors to gRPC status codes. Validation
// errors become InvalidArgument with the field errors attached as a
// structpb.Struct detail.
func MapErrorToStatus(err error) error {
	if err == nil {
		return status.Error(codes.Internal, "internal error")
	}

	// Already a gRPC status error
	if _, ok := status.FromError(err); ok {
		return err
	}

	if ve, ok := domain.AsValidationError(err); ok {
		return validationStatus(ve).Err()
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrConcurrentModify):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func validationStatus(ve *domain.ValidationError) *status.Status {
	st := status.New(codes.InvalidArgument, ve.Error())
	fields := make(map[string]any, len(ve.Fields)+1)
	for name, msg := range ve.Fields {
		fields[name] = msg
	}
	detail, err := structpb.NewStruct(map[string]any{
		"step":   ve.Step,
		"fields": fields,
	})
	if err != nil {
		return st
	}
	if withDetail, err := st.WithDetails(detail); err == nil {
		return withDetail
	}
	return st
}

// ErrorFromStatus maps a gRPC status error back to the domain error it was
// produced from. Errors that carry no status are returned unchanged.
func ErrorFromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return err
	}

	var sentinel error
	switch st.Code() {
	case codes.NotFound:
		sentinel = domain.ErrNotFound
	case codes.PermissionDenied:
		sentinel = domain.ErrPermissionDenied
	case codes.FailedPrecondition:
		sentinel = domain.ErrInvalidState
	case codes.Aborted:
		sentinel = domain.ErrConcurrentModify
	case codes.Unauthenticated:
		sentinel = domain.ErrUnauthenticated
	case codes.InvalidArgument:
		if ve := validationFromDetails(st); ve != nil {
			return ve
		}
		sentinel = domain.ErrInvalidArgument
	default:
		return err
	}
	return &statusError{sentinel: sentinel, msg: st.Message()}
}

func validationFromDetails(st *status.Status) *domain.ValidationError {
	for _, d := range st.Details() {
		s, ok := d.(*structpb.Struct)
		if !ok {
			continue
		}
		m := s.AsMap()
		raw, ok := m["fields"].(map[string]any)
		if !ok {
			continue
		}
		ve := &domain.ValidationError{Fields: domain.FieldErrors{}}
		if step, ok := m["step"].(float64); ok {
			ve.Step = int(step)
		}
		for name, msg := range raw {
			if text, ok := msg.(string); ok {
				ve.Fields[name] = text
			}
		}
		return ve
	}
	return nil
}

// statusError keeps the server's message while matching the sentinel.
type statusError struct {
	sentinel error
	msg      string
}

func (e *statusError) Error() string { return e.msg }
func (e *statusError) Unwrap() error { return e.sentinel }

// HTTPStatus returns the HTTP status code for err.
func HTTPStatus(err error) int {
	if _, ok := domain.AsValidationError(err); ok {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrConcurrentModify):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to a client for err.
func PublicMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
