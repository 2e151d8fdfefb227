package crcon

import (
	"strings"

	"hllrotate/internal/gateway/command"

	"github.com/tidwall/gjson"
)

// parseEntryList normalizes the server's list-shaped payloads. Known
// shapes: a bare array, an array under "result", or an array one level
// deeper under result.<nestedKey> (e.g. result.rotation, result.maps).
func parseEntryList(res gjson.Result, nestedKey string) []command.MapEntry {
	list := unwrapList(res, nestedKey)
	if !list.IsArray() {
		return nil
	}
	var entries []command.MapEntry
	list.ForEach(func(_, item gjson.Result) bool {
		if e, ok := parseEntry(item); ok {
			entries = append(entries, e)
		}
		return true
	})
	return entries
}

func unwrapList(res gjson.Result, nestedKey string) gjson.Result {
	if res.IsArray() {
		return res
	}
	inner := res.Get("result")
	if !inner.Exists() {
		inner = res
	}
	if inner.IsArray() {
		return inner
	}
	if nested := inner.Get(nestedKey); nested.IsArray() {
		return nested
	}
	return gjson.Result{}
}

// parseEntry accepts both plain layer-id strings and structured layer
// objects.
func parseEntry(item gjson.Result) (command.MapEntry, bool) {
	if item.Type == gjson.String {
		id := strings.TrimSpace(item.String())
		if id == "" {
			return command.MapEntry{}, false
		}
		return command.MapEntry{ID: id}, true
	}
	if !item.IsObject() {
		return command.MapEntry{}, false
	}
	e := command.MapEntry{
		ID:         firstString(item, "id", "layer_name", "name"),
		MapName:    firstString(item, "map.id", "map.name", "map_name"),
		PrettyName: firstString(item, "pretty_name", "map.pretty_name"),
	}
	if e.Canonical() == "" {
		return command.MapEntry{}, false
	}
	return e, true
}

func firstString(item gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := item.Get(p); v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}
