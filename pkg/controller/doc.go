// Package controller holds the interactive graph state machine.
//
// A [Controller] owns the current graph and reacts to user events:
//
//	Idle → Loading → Ready
//	Ready → Filtering | Searching | LayoutChanging → Ready
//	Loading | Filtering → Error → (Retry) → Loading
//
// Each event reruns only the stages it affects. A filter change refetches
// and rebuilds everything; a search change only re-highlights; a layout
// change only repositions; a click on a cluster node expands it in place
// and reheats the simulation.
//
// # Supersession
//
// Fetches are tagged with a generation and the filters they were issued for.
// If the filters change while a fetch is in flight, the older fetch's result
// is dropped on arrival and the call returns [ErrSuperseded]. Fetches are not
// cancelled; pass a context with a deadline to bound them.
//
// # Failure
//
// A failed or malformed fetch moves the controller to Error with an empty
// graph; [Controller.Err] reports why and [Controller.Retry] re-issues the
// same fetch.
//
// # Observing
//
// [Controller.Subscribe] delivers an [Event] per transition, plus one for each
// cluster expansion, in the order they happened. The server pushes these to
// websocket clients and the explorer redraws on them.
package controller
