package httpapi

import apperrors "vecino/internal/platform/errors"

type envelope[T any] struct {
	Results *[]T `json:"results"`
}

// DecodeResults decodes a {"results": [...]} envelope. A missing results
// field is a malformed response, an empty list is not.
func DecodeResults[T any](resp Response) ([]T, error) {
	env := envelope[T]{}
	if err := DecodeJSON(resp, &env); err != nil {
		return nil, err
	}
	if env.Results == nil {
		return nil, &apperrors.RemoteError{Kind: apperrors.ErrMalformedResponse, Status: resp.Status, Detail: "response has no results field"}
	}
	return *env.Results, nil
}

// DecodeList accepts either a bare JSON array or a results envelope.
func DecodeList[T any](resp Response) ([]T, error) {
	trimmed := firstNonSpace(resp.Body)
	if trimmed == '[' {
		out := []T{}
		if err := DecodeJSON(resp, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return DecodeResults[T](resp)
}

func firstNonSpace(body []byte) byte {
	for _, b := range body {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b
		}
	}
	return 0
}
