package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/xceltrack/xceltrack-api/internal/pkg/router.middlewareRecoverer.func1.1()
	/src/internal/pkg/router/middleware_recover.go:21 +0x8c
panic({0x1029c40?, 0x1379a10?})
	/usr/local/go/src/runtime/panic.go:770 +0x132
github.com/xceltrack/xceltrack-api/internal/otp/inbound.(*HTTPEndpoint).SendOTP(...)
	/src/internal/otp/inbound/http_endpoint.go:30
`)

	assert.Equal(t, []string{
		"internal/pkg/router/middleware_recover.go:21",
		"internal/otp/inbound/http_endpoint.go:30",
	}, InternalPaths(stack))
}

func TestInternalPaths_None(t *testing.T) {
	assert.Empty(t, InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/app/main.go:9 +0x1d\n")))
}
