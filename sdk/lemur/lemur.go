// Package lemur provides shared support for the tuning and generation
// tooling.
package lemur

import (
	"context"
	"fmt"
	"strings"
)

// FmtLogger is a simple logger for the cli tooling that writes structured
// log arguments as readable lines on stdout.
func FmtLogger(ctx context.Context, msg string, args ...any) {
	var sb strings.Builder
	sb.WriteString(msg)

	for i := 0; i < len(args)-1; i += 2 {
		sb.WriteString(fmt.Sprintf(" %v[%v]", args[i], args[i+1]))
	}

	fmt.Println(sb.String())
}
