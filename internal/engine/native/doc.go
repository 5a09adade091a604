// Package native manages memory allocated outside the Go heap for strings
// shared with native code.
//
// A Pointer owns one foreign allocation. On unix platforms the allocation
// is an anonymous private mapping, so the garbage collector never scans or
// moves it. Pointers are released either explicitly with Free or by a
// FinalizationService once the Pointer becomes unreachable. Release happens
// at most once; any access after release panics.
//
// Typical use:
//
//	svc := native.NewCleanupService(logger)
//	p, err := native.Malloc(len(b) + 1)
//	if err != nil {
//	    return err
//	}
//	p.EnableAutorelease(svc)
//	p.CopyIn(0, b)
package native
