// Package utils holds small helpers shared by several packages.
package utils

import (
	"strconv"
	"strings"
)

// PointerSegments splits a JSON pointer such as "/LUNDI/0/start_time" (a
// leading "#" is allowed) into its unescaped segments.
func PointerSegments(ptr string) []string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return nil
	}
	parts := strings.Split(ptr, "/")
	out := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		p = strings.ReplaceAll(p, "~1", "/")
		out = append(out, strings.ReplaceAll(p, "~0", "~"))
	}
	return out
}

// PointerPath renders a JSON pointer in dotted form, with array indexes in
// brackets: "/task_lists/Maison/tasks/2/time" becomes
// "task_lists.Maison.tasks[2].time".
func PointerPath(ptr string) string {
	var b strings.Builder
	for _, seg := range PointerSegments(ptr) {
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// SplitAndTrim splits s on sep, trims each part and drops empty ones.
func SplitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
