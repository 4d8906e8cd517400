package handlers

import (
	"context"
	"strings"
	"sync"

	core "github.com/PaulFidika/donorkit/core"
	"github.com/gin-gonic/gin"
)

// ServiceProvider builds a Service bound to the calling client.
type ServiceProvider interface {
	ServiceFor(c *gin.Context, opts ...core.Option) *core.Service
}

// exchange collects the notices and navigation a Service emits during one
// request so the handler can put them in the response.
type exchange struct {
	mu          sync.Mutex
	notices     []core.Notice
	destination string
}

func (e *exchange) Notify(ctx context.Context, n core.Notice) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notices = append(e.notices, n)
	return nil
}

func (e *exchange) Navigate(ctx context.Context, destination string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destination = destination
	return nil
}

func (e *exchange) message() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	msgs := make([]string, 0, len(e.notices))
	for _, n := range e.notices {
		msgs = append(msgs, n.Message)
	}
	return strings.Join(msgs, "\n")
}
