package transfer

import (
	"fmt"
	"strings"
)

// ResolveCollision appends " (1)", " (2)", ... before the extension
// until name is absent from used, preserving the extension split at
// the last ".".
func ResolveCollision(name string, used map[string]struct{}) string {
	if _, taken := used[name]; !taken {
		return name
	}

	base, ext := name, ""
	if idx := strings.LastIndex(name, "."); idx > 0 {
		base, ext = name[:idx], name[idx:]
	}

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}
