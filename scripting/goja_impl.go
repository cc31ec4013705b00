package scripting

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
)

// JSRule evaluates candidates with a caller-supplied JavaScript
// function. The script must define
//
//	function evaluate(candidate) { return true /* remove */ }
//
// where candidate has kind, text, pageIndex, x, y, w and h properties.
// A truthy return removes the candidate; anything else keeps it.
type JSRule struct {
	vm *goja.Runtime
	fn goja.Callable
}

// NewJSRule compiles script and resolves its evaluate function.
func NewJSRule(script string) (*JSRule, error) {
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("compile rule script: %w", err)
	}
	fnVal := vm.Get("evaluate")
	if fnVal == nil {
		return nil, fmt.Errorf("rule script defines no evaluate function")
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, fmt.Errorf("evaluate is not a function")
	}
	return &JSRule{vm: vm, fn: fn}, nil
}

// Evaluate runs the script for one candidate. The VM is interrupted if
// ctx is cancelled.
func (r *JSRule) Evaluate(ctx context.Context, c Candidate) (Decision, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Keep, err
	}

	done := make(chan struct{})
	defer close(done)
	defer r.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	obj := r.vm.NewObject()
	_ = obj.Set("kind", c.Kind)
	_ = obj.Set("text", c.Text)
	_ = obj.Set("pageIndex", c.PageIndex)
	_ = obj.Set("x", c.X)
	_ = obj.Set("y", c.Y)
	_ = obj.Set("w", c.W)
	_ = obj.Set("h", c.H)

	val, err := r.fn(goja.Undefined(), obj)
	if err != nil {
		if interrupted, ok := err.(*goja.InterruptedError); ok {
			if cause := interrupted.Unwrap(); cause != nil {
				return Keep, cause
			}
			return Keep, context.Canceled
		}
		return Keep, fmt.Errorf("rule script: %w", err)
	}
	if val.ToBoolean() {
		return Remove, nil
	}
	return Keep, nil
}
