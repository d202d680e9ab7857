package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VisitIDField marks a submission as an edit of an existing visit.
const VisitIDField = "visitId"

// FormData maps a question id to its answer: a string, a number or a list
// of strings. The shape is defined by the form schemas of each pathway.
type FormData map[string]any

// String renders the answer for key as text. Missing keys yield "".
func (f FormData) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Without returns a shallow copy of f without key.
func (f FormData) Without(key string) FormData {
	out := make(FormData, len(f))
	for k, v := range f {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// Visit is one home visit record of a patient.
type Visit struct {
	ID           string    `json:"id"`
	RegisteredAt time.Time `json:"registeredAt"`
	FormData     FormData  `json:"formData"`
}
