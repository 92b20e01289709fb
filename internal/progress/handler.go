package progress

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pairreview/pairreview/pkg/logger"
)

// StreamHandler returns a gin handler that drains topicKey(c) into a
// text/event-stream response until the request is cancelled. The router
// mounts it for the local-review ai-suggestions/status endpoint only; the
// MCP endpoint does not use it.
func (b *Bus) StreamHandler(topicKey func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := topicKey(c)

		ch, unsubscribe := b.Subscribe(key)
		defer unsubscribe()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		fmt.Fprint(c.Writer, "event: connected\ndata: {}\n\n")
		c.Writer.Flush()

		ctx := c.Request.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-ch:
				if !ok {
					return
				}
				body, err := MarshalFrame(event)
				if err != nil {
					logger.Warn("failed to marshal progress event", zap.Error(err))
					continue
				}
				if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", body); err != nil {
					return
				}
				c.Writer.Flush()
			}
		}
	}
}
