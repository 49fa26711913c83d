package error

import (
	"encoding/json"
	"runtime"
	"strings"

	"github.com/next-trace/scg-report/contract"
)

// maxDepth bounds the number of frames captured per stack.
const maxDepth = 32

// Frame is one captured stack frame.
type Frame struct {
	FilePath     string `json:"filePath"`
	LineNumber   int    `json:"lineNumber"`
	FunctionName string `json:"functionName"`
}

// Stack is a captured call stack, top frame first.
type Stack []Frame

var _ contract.StackSerializer = Stack(nil)

// Top returns the first frame, if any.
func (s Stack) Top() (Frame, bool) {
	if len(s) == 0 {
		return Frame{}, false
	}

	return s[0], true
}

// Serialize renders the stack as a JSON array, or the capture-failure notice
// when the stack is empty.
func (s Stack) Serialize() string {
	if len(s) == 0 {
		return contract.StackUnavailable
	}

	data, err := json.Marshal(s)
	if err != nil {
		return contract.StackUnavailable
	}

	return string(data)
}

// Capture records the stack of its caller, skipping skip additional frames.
// Capture(0) puts the caller of Capture on top.
func Capture(skip int) Stack {
	pcs := make([]uintptr, maxDepth)

	// +2 skips runtime.Callers and Capture itself.
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	return frames(pcs[:n], false)
}

// CapturePanic records the stack of the goroutine's current panic. It must be
// called from a deferred function; the panicking frame ends up on top.
// Without a panic in flight it behaves like Capture(1).
func CapturePanic() Stack {
	pcs := make([]uintptr, maxDepth)

	n := runtime.Callers(2, pcs)
	if n == 0 {
		return nil
	}

	pcs = pcs[:n]

	if s := frames(pcs, true); len(s) > 0 {
		return s
	}

	// No runtime.gopanic frame: drop the deferred caller.
	s := frames(pcs, false)
	if len(s) > 1 {
		return s[1:]
	}

	return s
}

func frames(pcs []uintptr, afterPanic bool) Stack {
	var out Stack

	seenPanic := !afterPanic
	callers := runtime.CallersFrames(pcs)

	for {
		frame, more := callers.Next()

		switch {
		case frame.Function == "runtime.gopanic":
			seenPanic = true
		case frame.Function == "runtime.goexit":
			more = false
		case strings.HasPrefix(frame.Function, "runtime."),
			strings.HasPrefix(frame.Function, "internal/runtime/"):
		case seenPanic:
			out = append(out, Frame{
				FilePath:     frame.File,
				LineNumber:   frame.Line,
				FunctionName: frame.Function,
			})
		}

		if !more {
			break
		}
	}

	return out
}
