// Package ginadapter reports errors raised while gin serves a request.
package ginadapter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/next-trace/scg-report/adapter/nethttp"
	apiError "github.com/next-trace/scg-report/error"
	"github.com/next-trace/scg-report/report"
	"github.com/next-trace/scg-report/reporter"
)

// Extract reads the request information of c, using gin's client IP
// resolution and the status written so far.
func Extract(c *gin.Context) *report.RequestInfo {
	if c == nil || c.Request == nil {
		return report.NewRequestInfo()
	}

	return nethttp.Extract(c.Request, c.Writer.Status()).SetRemoteAddress(c.ClientIP())
}

// Option configures Middleware.
type Option func(*options)

type options struct {
	minStatus int
}

// WithMinStatus reports error-free responses with status >= code; zero or
// less disables status reporting.
func WithMinStatus(code int) Option { return func(o *options) { o.minStatus = code } }

// Middleware reports recovered panics, every error attached with c.Error, and
// responses at or above the minimum status (500 by default) that carry no
// attached error. A panic aborts the request with 500 unless a response was
// already written.
func Middleware(rp *reporter.Reporter, opts ...Option) gin.HandlerFunc {
	o := options{minStatus: nethttp.DefaultMinStatus}
	for _, fn := range opts {
		fn(&o)
	}

	return func(c *gin.Context) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}

			e := apiError.Recovered(v)

			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				c.Abort()
				rp.Report(c.Request.Context(), e, Extract(c))
				panic(v)
			}

			if c.Writer.Written() {
				c.Abort()
			} else {
				c.AbortWithStatus(http.StatusInternalServerError)
			}

			rp.Report(c.Request.Context(), e, Extract(c))
		}()

		c.Next()

		if len(c.Errors) > 0 {
			info := Extract(c)
			for _, ge := range c.Errors {
				rp.Report(c.Request.Context(), ge.Err, info)
			}

			return
		}

		if status := c.Writer.Status(); o.minStatus > 0 && status >= o.minStatus {
			rp.Report(c.Request.Context(), fmt.Sprintf("%d %s", status, http.StatusText(status)), Extract(c))
		}
	}
}
