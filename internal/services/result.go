package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/soundscript/internal/shared"
)

// Kind discriminates the outcome held by a [Result].
type Kind int

const (
	KindLoading Kind = iota
	KindSuccess
	KindError
	KindException
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindException:
		return "exception"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the outcome of a backend call.
//
// Only the fields matching Kind are meaningful: Data for success, Code and Message
// for an HTTP error status, Err for transport and decoding failures.
type Result[T any] struct {
	Kind    Kind
	Started bool
	Data    T
	Code    int
	Message string
	Err     error
}

func Loading[T any](started bool) Result[T] {
	return Result[T]{Kind: KindLoading, Started: started}
}

func Success[T any](data T) Result[T] {
	return Result[T]{Kind: KindSuccess, Data: data}
}

func Failure[T any](code int, message string) Result[T] {
	return Result[T]{Kind: KindError, Code: code, Message: message}
}

func Exception[T any](err error) Result[T] {
	return Result[T]{Kind: KindException, Err: err}
}

// OnSuccess runs fn with the payload of a successful result.
func (r Result[T]) OnSuccess(fn func(T)) Result[T] {
	if r.Kind == KindSuccess {
		fn(r.Data)
	}
	return r
}

// OnError runs fn with the status code and message of an HTTP error result.
func (r Result[T]) OnError(fn func(code int, message string)) Result[T] {
	if r.Kind == KindError {
		fn(r.Code, r.Message)
	}
	return r
}

// OnException runs fn with the cause of a transport or decoding failure.
func (r Result[T]) OnException(fn func(error)) Result[T] {
	if r.Kind == KindException {
		fn(r.Err)
	}
	return r
}

func (r Result[T]) IsSuccess() bool { return r.Kind == KindSuccess }

// AsError flattens a non-successful result into an error wrapping [shared.ErrAPIRequest] or the transport cause.
func (r Result[T]) AsError() error {
	switch r.Kind {
	case KindSuccess:
		return nil
	case KindError:
		return fmt.Errorf("%w: %d %s", shared.ErrAPIRequest, r.Code, r.Message)
	case KindException:
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, r.Err)
	default:
		return fmt.Errorf("%w: request still loading", shared.ErrAPIRequest)
	}
}

type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// handleResponse classifies resp into a [Result] and closes its body.
func handleResponse[T any](resp *http.Response) Result[T] {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Exception[T](fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failure[T](resp.StatusCode, errorMessage(resp.StatusCode, body))
	}

	if trimmed := strings.TrimSpace(string(body)); trimmed == "" || trimmed == "null" {
		return Failure[T](resp.StatusCode, "empty response body")
	}

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		return Exception[T](fmt.Errorf("failed to decode response: %w", err))
	}

	return Success(data)
}

func errorMessage(code int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Detail != "" {
			return eb.Detail
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", code)
}
