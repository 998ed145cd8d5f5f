package main

import "github.com/marmot-os/kernel/kernel/kmain"

var multibootInfoPtr uintptr

// main is the only Go symbol visible (exported) from the rt0 initialization
// code. It is a trampoline for the real kernel entrypoint, kmain.Kmain; a
// package-level variable is passed as its argument to stop the compiler
// inlining the call and optimizing Kmain out of the generated object file,
// since the rt0 assembly has no notion of Go call graphs.
//
// main is invoked by the rt0 assembly after it sets up a minimal g0 struct
// that lets Go code run on the small stack the assembly allocated. main is
// not expected to return; if it does, the rt0 code halts the CPU.
func main() {
	kmain.Kmain(multibootInfoPtr)
}
