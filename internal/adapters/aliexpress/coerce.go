package aliexpress

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Upstream payloads are loosely typed: numbers arrive as numbers or
// strings, image lists mix plain URLs with {imgUrl}/{url} objects.
// These decoders treat every missing or mistyped field as absent
// rather than failing the record.

// flexInt accepts a JSON number or a numeric string.
type flexInt struct {
	v  int
	ok bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		f.v = int(n)
		f.ok = true
	}
	return nil
}

// or returns the decoded value, or def when the field was absent. This
// is the rating normalizer: def carries the platform's native-scale
// default (100 on the aliexpress 0-100 scale).
func (f flexInt) or(def int) int {
	if f.ok {
		return f.v
	}
	return def
}

// flexString accepts a JSON string or number.
type flexString struct {
	v string
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f.v = s
		return nil
	}
	trimmed := strings.TrimSpace(string(b))
	if trimmed != "null" && trimmed != "" && trimmed[0] != '{' && trimmed[0] != '[' {
		f.v = trimmed
	}
	return nil
}

// imageRef accepts either a plain URL string or an object carrying a
// url-like key. A ref without a usable URL decodes to absent.
type imageRef struct {
	url string
}

func (ir *imageRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		ir.url = s
		return nil
	}
	var obj struct {
		ImgURL string `json:"imgUrl"`
		URL    string `json:"url"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		if obj.ImgURL != "" {
			ir.url = obj.ImgURL
		} else {
			ir.url = obj.URL
		}
	}
	return nil
}

// imageURLs flattens refs to URL strings, dropping absent entries. The
// result is never nil: a review's image list is empty, not null.
func imageURLs(refs []imageRef) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.url != "" {
			out = append(out, ref.url)
		}
	}
	return out
}
