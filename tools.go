//go:build tools

package tools

// Tool dependencies pinned in go.mod. Mocks are regenerated with
// go generate ./pkg/log/...
import (
	_ "github.com/vektra/mockery/v2"
)
