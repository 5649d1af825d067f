package assessment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"visa-workers/internal/common/validation"
	"visa-workers/internal/models"
)

// ErrMalformedProfile is returned when the profile payload cannot be decoded.
var ErrMalformedProfile = errors.New("malformed applicant profile")

// Enum values are not enforced here: unknown values simply match no scoring rule.
var profileSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"name":             {"type": ["string", "null"]},
		"age":              {"type": ["string", "number", "null"]},
		"passport_country": {"type": ["string", "null"]},
		"dest_country":     {"type": ["string", "null"]},
		"purpose":          {"type": ["string", "null"]},
		"funds":            {"type": ["string", "number", "null"]},
		"education":        {"type": ["string", "null"]},
		"past_visa":        {"type": ["string", "null"]}
	},
	"additionalProperties": true
}`)

// ParseProfile decodes a profile payload. The payload may be a JSON object or a
// JSON string holding one. An empty or null payload yields the zero profile.
func ParseProfile(raw json.RawMessage) (models.ApplicantProfile, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.ApplicantProfile{}, nil
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return models.ApplicantProfile{}, fmt.Errorf("%w: %v", ErrMalformedProfile, err)
		}
		raw = bytes.TrimSpace([]byte(encoded))
		if len(raw) == 0 {
			return models.ApplicantProfile{}, nil
		}
	}

	if !json.Valid(raw) {
		return models.ApplicantProfile{}, fmt.Errorf("%w: invalid JSON", ErrMalformedProfile)
	}

	result, err := profileSchema.ValidateJSON(raw)
	if err != nil {
		return models.ApplicantProfile{}, fmt.Errorf("%w: %v", ErrMalformedProfile, err)
	}
	if !result.Valid {
		return models.ApplicantProfile{}, fmt.Errorf("%w: %s", ErrMalformedProfile, result.Error())
	}

	var fields map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return models.ApplicantProfile{}, fmt.Errorf("%w: %v", ErrMalformedProfile, err)
	}

	return models.ApplicantProfile{
		Name:            stringField(fields, "name"),
		Age:             stringField(fields, "age"),
		PassportCountry: stringField(fields, "passport_country"),
		DestCountry:     stringField(fields, "dest_country"),
		Purpose:         stringField(fields, "purpose"),
		Funds:           parseFunds(fields["funds"]),
		Education:       stringField(fields, "education"),
		PastVisa:        stringField(fields, "past_visa"),
	}, nil
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// parseFunds reads funds as an integer, saturating at the int64 range.
// Fractional JSON numbers truncate toward zero. Strings must hold a plain
// integer; anything else, exponents and separators included, counts as zero.
func parseFunds(v interface{}) int64 {
	switch val := v.(type) {
	case json.Number:
		if n, ok := parseInteger(val.String()); ok {
			return n
		}
		f, err := strconv.ParseFloat(val.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0
		}
		return saturate(f)
	case float64:
		return saturate(val)
	case string:
		n, _ := parseInteger(strings.TrimSpace(val))
		return n
	default:
		return 0
	}
}

func parseInteger(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return n, true
	}
	return 0, false
}

func saturate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
