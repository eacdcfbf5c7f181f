package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"household-ledger/internal/apperrors"
)

const maxBodyBytes = 20 << 20

// number accepts a JSON number or a numeric string.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return errors.New("not a number")
	}
	*n = number(v)
	return nil
}

func decodeJSON(body io.Reader, v any) error {
	if body == nil {
		return apperrors.Invalid("request body is required")
	}
	err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return apperrors.Invalid("request body is required")
	}
	if err != nil {
		return apperrors.Invalid("invalid request body: %v", err)
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Invalid("invalid id %q", s)
	}
	return id, nil
}
