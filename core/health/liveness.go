package health

import (
	"github.com/dmitrymomot/scsp/core/handler"
	"github.com/dmitrymomot/scsp/core/response"
)

// Liveness reports that the process is serving requests. No dependency checks.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}
