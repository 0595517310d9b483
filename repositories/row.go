package repositories

import (
	"encoding/json"
	"time"
)

// Row is a record as exchanged with storage engines, keyed by column name.
// The accessors tolerate the representations engines actually return: pgx decodes jsonb
// arrays to []any, text columns may come back as pointers, and so on.
type Row map[string]any

func (r Row) String(column string) string {
	if s := r.OptString(column); s != nil {
		return *s
	}
	return ""
}

func (r Row) OptString(column string) *string {
	switch v := r[column].(type) {
	case string:
		return &v
	case *string:
		return v
	case []byte:
		s := string(v)
		return &s
	}
	return nil
}

func (r Row) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case *bool:
		return v != nil && *v
	}
	return false
}

func (r Row) Time(column string) time.Time {
	if t := r.OptTime(column); t != nil {
		return *t
	}
	return time.Time{}
}

func (r Row) OptTime(column string) *time.Time {
	switch v := r[column].(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err == nil {
			return &t
		}
	}
	return nil
}

func (r Row) Strings(column string) []string {
	switch v := r[column].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []byte:
		var out []string
		if err := json.Unmarshal(v, &out); err == nil {
			return out
		}
	}
	return nil
}

func (r Row) Map(column string) map[string]any {
	switch v := r[column].(type) {
	case map[string]any:
		return v
	case []byte:
		var out map[string]any
		if err := json.Unmarshal(v, &out); err == nil {
			return out
		}
	}
	return nil
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
