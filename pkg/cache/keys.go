package cache

import (
	"fmt"
	"strings"
)

// Key builds "kind:part:part" with parts lower-cased and inner spaces
// replaced, so "Aave V3" and "aave v3" share an entry.
func Key(kind string, parts ...interface{}) string {
	var b strings.Builder
	b.WriteString(kind)
	for _, p := range parts {
		s := strings.ToLower(strings.TrimSpace(fmt.Sprint(p)))
		b.WriteByte(':')
		b.WriteString(strings.ReplaceAll(s, " ", "_"))
	}
	return b.String()
}
