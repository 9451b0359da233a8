// Package jsonpath extracts values from JSON documents such as saved
// benchmark reports, using a small JSONPath subset translated to gjson paths.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract returns the value at path in json as a string.
//
// Supported syntax: $, $.a.b, $.a[0].b, $['a'], $["a"], $[0].
func Extract(json string, path string) (string, error) {
	result, err := lookup(json, path)
	if err != nil {
		return "", err
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// Object decodes a JSON object into a map with gjson's native value mapping
// (numbers become float64).
func Object(json string) (map[string]any, error) {
	if strings.TrimSpace(json) == "" {
		return map[string]any{}, nil
	}
	if !gjson.Valid(json) {
		return nil, fmt.Errorf("invalid JSON: %s", json)
	}
	parsed := gjson.Parse(json)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("expected a JSON object, got %s", parsed.Type)
	}
	m, _ := parsed.Value().(map[string]interface{})
	return m, nil
}

func lookup(json, path string) (gjson.Result, error) {
	if json == "" {
		return gjson.Result{}, fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty JSONPath expression")
	}

	result := gjson.Get(json, toGjsonPath(path))
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	return result, nil
}

// toGjsonPath converts $.users[0].name to users.0.name.
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	replacer := strings.NewReplacer(
		"['", ".", "']", "",
		`["`, ".", `"]`, "",
		"[", ".", "]", "",
	)
	path = replacer.Replace(path)
	return strings.TrimPrefix(path, ".")
}
