// Package report normalizes error signals into a wire-valid error report.
//
// It holds the three short-lived records of the pipeline and the router that
// fills them:
//   - Report: the aggregate submitted to the error-tracking endpoint
//   - RequestInfo: framework-neutral request data produced by an adapter
//   - CallSite: one stack frame plus a serializer for the full stack
//   - Route: derives message and location from a raw error value
//
// No operation in this package returns an error or panics. Invalid input is
// replaced by the documented default of the field it was meant for.
package report
