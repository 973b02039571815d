package api

import "encoding/json"

// Body is a decoded JSON object exactly as the server sent it. Unknown
// fields are kept and missing fields read as zero values.
type Body map[string]any

func (b Body) Success() bool {
	return b.GetBool("success")
}

func (b Body) Count() int {
	return b.GetInt("count")
}

func (b Body) GetBool(key string) bool {
	v, _ := b[key].(bool)
	return v
}

func (b Body) GetString(key string) string {
	v, _ := b[key].(string)
	return v
}

// GetInt reads a JSON number, truncating any fraction.
func (b Body) GetInt(key string) int {
	switch v := b[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		f, _ := v.Float64()
		return int(f)
	case float64:
		return int(v)
	}
	return 0
}

func (b Body) GetFloat(key string) float64 {
	switch v := b[key].(type) {
	case json.Number:
		f, _ := v.Float64()
		return f
	case float64:
		return v
	}
	return 0
}

// GetObject returns the nested object under key, or nil.
func (b Body) GetObject(key string) Body {
	v, _ := b[key].(map[string]any)
	return Body(v)
}

// GetObjects returns the objects of the array under key, skipping
// elements that are not objects.
func (b Body) GetObjects(key string) []Body {
	items, _ := b[key].([]any)
	objects := make([]Body, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			objects = append(objects, Body(obj))
		}
	}
	return objects
}
