// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker execution layer for the job pool: a fixed set of OS-thread-locked
// worker goroutines fed from one lock-free MPMC queue. Idle workers sleep
// on a futex-backed semaphore counting queued tasks, so the dispatch path
// takes no mutex.
package concurrency
