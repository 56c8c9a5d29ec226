// Package winproc provides move-only owning wrappers for Windows kernel
// thread and process handles, without shelling out or routing through os/exec.
//
// The core types are Thread and Process. Each exclusively owns its kernel
// handle(s) and guarantees the handle is closed exactly once, whether through
// an explicit Reset, a Release that hands ownership back to the caller, or a
// terminal operation such as Join:
//
//	si := winproc.StartupInfo()
//	p := winproc.CreateProcessUTF8("", `cmd.exe /C exit 28`, nil, nil, false, 0, nil, "", si)
//	if !p.Valid() {
//	    log.Fatal("spawn failed")
//	}
//	defer p.Reset()
//
//	if p.Wait() == winproc.WaitSignaled {
//	    code, ok := p.TryExitCode()
//	    fmt.Println(code, ok) // 28 true
//	}
//
// # Ownership model
//
// Ownership is exclusive and non-shared. Handle() and ThreadHandle() expose
// raw handles for interop but the wrapper keeps closing rights; Release()
// transfers them out. There is no reference counting: handing the same raw
// handle to two wrappers means a double close.
//
// A single Thread or Process instance is not synchronized. It may be handed
// freely between goroutines, but concurrent calls into one instance must be
// serialized by the caller. Independent instances are independent.
//
// # Supervision layer
//
// The Supervisor type is provided as a convenience for programs that need a
// child process kept alive: it spawns through CreateProcessUTF8, restarts
// with exponential backoff, optionally restarts when watched files change,
// and can persist a fixed-size binary state record readable by external
// tooling. Like the core types, it is optional - everything it does can be
// replicated with Process directly.
//
// The Manager type runs bulk wait/terminate operations over many Process
// instances with bounded concurrency.
//
// # Known sentinel ambiguities
//
// The wrapped platform overloads a few values, and this package reports them
// as the platform does rather than guessing:
//
//   - An exit code equal to StillActive (259) cannot be told apart from a
//     still-running target; TryExitCode reports no value for both.
//   - Priority 0 and priority-class 0 are also the failure returns of the
//     respective getters.
package winproc
