// Package resource bounds the resources an index store may consume.
//
// A Controller manages three budgets:
//
//   - Mapped bytes: total size of index files currently mapped into memory
//     (non-blocking, fail-fast)
//   - Background workers: concurrent archive uploads and restores
//   - IO: a token bucket throttling archive traffic so it does not starve
//     appenders flushing to the same disk
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
