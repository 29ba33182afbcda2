package extract

import "strings"

// Items resolves a dot-path against a decoded JSON document and returns the
// raw item records found there. A path of "." selects the whole document: a
// list becomes the item sequence, a single object a one-element sequence.
// A non-empty path walks object fields left to right; a missing field, or a
// list encountered before the final step, yields no items.
//
// With an empty path the document is probed for common response shapes in
// order: a "results" array field, an "items" array field, otherwise the
// whole document is treated as a single item. A bare top-level array is used
// as-is.
func Items(doc any, path string) []any {
	if doc == nil {
		return nil
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return fallbackItems(doc)
	}
	return asItems(resolvePath(doc, path))
}

func resolvePath(doc any, path string) any {
	if path == "." {
		return doc
	}
	path = strings.TrimPrefix(path, ".")
	cur := doc
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			// Lists mid-path (index steps) are unsupported, as is descending
			// into scalars.
			return nil
		}
		cur, ok = obj[part]
		if !ok {
			return nil
		}
	}
	return cur
}

func asItems(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case map[string]any:
		return []any{t}
	}
	return nil
}

func fallbackItems(doc any) []any {
	switch t := doc.(type) {
	case []any:
		return t
	case map[string]any:
		if arr, ok := t["results"].([]any); ok {
			return arr
		}
		if arr, ok := t["items"].([]any); ok {
			return arr
		}
		return []any{t}
	}
	return nil
}
