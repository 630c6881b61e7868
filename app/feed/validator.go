package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	requiredItemFields = []string{
		"title", "pubDate", "link", "guid", "author", "thumbnail",
		"description", "content", "enclosure", "categories",
	}
	stringItemFields = []string{
		"title", "pubDate", "link", "guid", "author", "thumbnail",
		"description", "content",
	}
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("pubdate", func(fl validator.FieldLevel) bool {
		return pubDatePattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// ValidateDocument checks the raw JSON shape of a cache file before decoding
// it, then applies the item rules of ValidateItems.
func (v *Validator) ValidateDocument(data []byte, label string) (*CacheFile, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: malformed JSON: %w", label, err)
	}

	if err := v.checkShape(doc, label); err != nil {
		return nil, err
	}

	var file CacheFile
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%s: failed to decode items: %w", label, err)
	}

	if err := v.ValidateItems(file.Items, label); err != nil {
		return nil, err
	}
	return &file, nil
}

func (v *Validator) checkShape(doc any, label string) error {
	root, ok := doc.(map[string]any)
	if !ok {
		return fmt.Errorf("%s: root must be an object", label)
	}

	rawItems, ok := root["items"]
	if !ok {
		return fmt.Errorf("%s: missing items", label)
	}
	items, ok := rawItems.([]any)
	if !ok {
		return fmt.Errorf("%s: items must be an array", label)
	}

	for i, rawItem := range items {
		item, ok := rawItem.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: item %d must be an object", label, i)
		}

		for _, key := range requiredItemFields {
			if _, ok := item[key]; !ok {
				return fmt.Errorf("%s: item %d missing %s", label, i, key)
			}
		}

		for _, key := range stringItemFields {
			if _, ok := item[key].(string); !ok {
				return fmt.Errorf("%s: item %d field %s must be a string", label, i, key)
			}
		}

		enclosure, ok := item["enclosure"].(map[string]any)
		if !ok {
			return fmt.Errorf("%s: item %d enclosure must be an object", label, i)
		}
		for _, key := range []string{"link", "type"} {
			if _, ok := enclosure[key].(string); !ok {
				return fmt.Errorf("%s: item %d enclosure.%s must be a string", label, i, key)
			}
		}

		categories, ok := item["categories"].([]any)
		if !ok {
			return fmt.Errorf("%s: item %d categories must be an array", label, i)
		}
		for j, category := range categories {
			if _, ok := category.(string); !ok {
				return fmt.Errorf("%s: item %d categories[%d] must be a string", label, i, j)
			}
		}
	}

	return nil
}

// ValidateItems enforces pubDate format and validity, guid uniqueness and
// non-increasing pubDate order. Equal timestamps are accepted in any order.
func (v *Validator) ValidateItems(items []CacheItem, label string) error {
	seen := make(map[string]int, len(items))
	var (
		prevIndex = -1
		prevTime  int64
	)

	for i, item := range items {
		if err := v.validate.Struct(item); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				fe := fieldErrs[0]
				return fmt.Errorf("%s: item %d field %s has invalid value %q", label, i, fe.Field(), fmt.Sprint(fe.Value()))
			}
			return fmt.Errorf("%s: item %d: %w", label, i, err)
		}

		if first, dup := seen[item.GUID]; dup {
			return fmt.Errorf("%s: item %d duplicates guid %q of item %d", label, i, item.GUID, first)
		}
		seen[item.GUID] = i

		t, err := ParsePubDate(item.PubDate)
		if err != nil {
			return fmt.Errorf("%s: item %d: %w", label, i, err)
		}

		ts := t.Unix()
		if prevIndex >= 0 && ts > prevTime {
			return fmt.Errorf("%s: item %d (guid %q) is newer than item %d; items must be sorted by pubDate descending", label, i, item.GUID, prevIndex)
		}
		prevIndex = i
		prevTime = ts
	}

	return nil
}
