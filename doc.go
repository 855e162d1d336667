// Package statemesh provides a lazy, push-invalidate / pull-recompute
// dependency graph for mutable values.
//
// # Overview
//
// Statemesh organizes state around two concepts:
//
//  1. Cells: mutable, lazily cached, observable value holders
//  2. Aggregates: cells whose value is derived from input cells
//     through a combining function
//
// Writes and wiring changes push invalidation through the graph;
// values are pulled on demand and recomputed at most once per
// invalidation cycle, no matter how many consumers read them.
//
// # Basic Usage
//
// Create cells and read them lazily:
//
//	port := statemesh.NewCell("port", statemesh.WithInitial(8080))
//
//	val, err := port.Get()   // 8080
//	port.Set(9090)           // invalidates, notifies listeners
//	val, err = port.Get()    // 9090, recomputed once
//
// Connect one cell to follow another:
//
//	primary := statemesh.NewCell("primary", statemesh.WithInitial("a"))
//	replica := statemesh.NewCell[string]("replica")
//
//	primary.Connect(replica)  // replica now mirrors primary
//	primary.Set("b")
//	v, _ := replica.Get()     // "b"
//	replica.Disconnect()      // back to its own value
//
// # Aggregation
//
// Group named cells with the default combiner:
//
//	user := statemesh.NewCell("username", statemesh.WithInitial("johndoe"))
//	mail := statemesh.NewCell("email", statemesh.WithInitial("j@x.com"))
//
//	form := statemesh.NewGroup("form")
//	form.AddInputs(user, mail)
//
//	vals, _ := form.Get()  // Values{"username": "johndoe", "email": "j@x.com"}
//
// Or derive a typed value:
//
//	count := statemesh.NewCell("count", statemesh.WithInitial(5))
//
//	doubled := statemesh.Derive1("doubled", count, func(n int) (int, error) {
//	    return n * 2, nil
//	})
//
//	v, _ := doubled.Get()  // 10
//	count.Set(7)
//	v, _ = doubled.Get()   // 14, combiner ran exactly twice
//
// # Listeners
//
// Change listeners observe the freshly recomputed value on every
// invalidation; invalidation listeners fire only on the
// valid-to-invalid edge:
//
//	sub := count.AddChangeListener(func(n int) {
//	    fmt.Println("count is now", n)
//	})
//	defer sub.Destroy()
//
//	count.AddInvalidationListener(func() {
//	    fmt.Println("count went stale")
//	})
//
// Listener registries tolerate add, remove and clear from inside a
// firing callback. Subscriptions are owned by whoever registered them
// and must be destroyed before discarding a cell, or they keep firing
// for the cell's lifetime.
//
// # Errors
//
// Cyclic graphs are detected at recompute time and surface as
// *CycleError instead of unbounded recursion. A combining function's
// error propagates out of Get and leaves the aggregate invalid, so the
// next Get retries from scratch:
//
//	_, err := cell.Get()
//	var cycle *statemesh.CycleError
//	if errors.As(err, &cycle) {
//	    fmt.Println("cycle through", cycle.Path)
//	}
//
// # Observers
//
// Cross-cutting concerns attach through the Observer interface, built
// on the public listener registries:
//
//	handle := statemesh.Observe(myObserver, cellA, cellB)
//	defer handle.Destroy()
//
// The extensions package ships observers for structured logging,
// Prometheus metrics and dependency-graph debugging; the history
// package records changes for undo/redo; the async package resolves
// cell values through deferred operations.
//
// # Concurrency
//
// The core is designed for a single logical thread of control:
// notification is synchronous and re-entrant-safe by construction, not
// by locking. Cells must not be shared across goroutines without
// external synchronization; the async package is the sanctioned bridge
// for values produced elsewhere.
package statemesh
