package notifier

import (
	"encoding/json"
	"strings"
)

// Script returns the statement that calls the global function fn with the
// JSON payload, guarded so that a page without fn is left untouched.
func Script(fn string, payload []byte) string {
	name, _ := json.Marshal(fn)
	var b strings.Builder
	b.WriteString(`if (typeof window !== "undefined" && typeof window?.[`)
	b.Write(name)
	b.WriteString(`] === "function") {`)
	b.WriteString("\n    window?.[")
	b.Write(name)
	b.WriteString("]?.(")
	b.Write(payload)
	b.WriteString(");\n}")
	return b.String()
}

// ParseScript extracts the function name and payload from a statement built
// by Script.
func ParseScript(script string) (fn string, payload []byte, ok bool) {
	const head = "\n    window?.["
	i := strings.Index(script, head)
	if i < 0 {
		return "", nil, false
	}
	rest := script[i+len(head):]
	j := strings.Index(rest, "]?.(")
	if j < 0 {
		return "", nil, false
	}
	if err := json.Unmarshal([]byte(rest[:j]), &fn); err != nil {
		return "", nil, false
	}
	body := rest[j+len("]?.("):]
	if !strings.HasSuffix(body, ");\n}") {
		return "", nil, false
	}
	return fn, []byte(strings.TrimSuffix(body, ");\n}")), true
}
