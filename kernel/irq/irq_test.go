package irq

import "testing"

func TestRegisterAndDispatch(t *testing.T) {
	defer func() { delete(handlers, PageFaultException) }()

	var gotCtx *Context
	var activeDuringCall *Context

	Register(PageFaultException, func(ctx *Context) {
		gotCtx = ctx
		activeDuringCall = ActiveContext
	})

	ctx := &Context{EIP: 0xdeadbeef}
	Dispatch(PageFaultException, ctx)

	if gotCtx != ctx {
		t.Fatal("expected handler to receive the dispatched context")
	}
	if activeDuringCall != ctx {
		t.Fatal("expected ActiveContext to be set to ctx for the duration of the handler")
	}
	if ActiveContext != nil {
		t.Fatal("expected ActiveContext to be restored to nil after Dispatch returns")
	}
}

func TestDispatchUnregisteredVectorIsNoop(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("expected Dispatch to a vector with no handler to be a no-op; got panic: %v", r)
		}
	}()

	Dispatch(DoubleFault, &Context{})
}
