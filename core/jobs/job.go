// File: core/jobs/job.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package jobs

import (
	"sync/atomic"
	"time"
)

// Job is a handle to a scheduled job. A nil *Job and the zero Job are empty
// handles: they are always complete and report no failure.
//
// Each handle holds one reference to the job. Close waits for completion and
// drops that reference; Clone adds another. A job's failure is returned once,
// to whichever Wait, WaitFor, TryWait or Close first observes completion.
type Job struct {
	h      *jobHeader
	closed atomic.Bool
}

func (j *Job) header() *jobHeader {
	if j == nil {
		return nil
	}
	return j.h
}

// Empty reports whether j refers to no job.
func (j *Job) Empty() bool { return j.header() == nil }

// ID returns the pool-unique job id, or 0 for an empty handle.
func (j *Job) ID() uint64 {
	if h := j.header(); h != nil {
		return h.id
	}
	return 0
}

// Wait blocks until the job completes.
func (j *Job) Wait() error {
	h := j.header()
	if h == nil {
		return nil
	}
	h.exec.wait()
	return h.deliver()
}

// WaitFor waits at most timeout and reports whether the job completed.
// A negative timeout waits forever.
func (j *Job) WaitFor(timeout time.Duration) (bool, error) {
	h := j.header()
	if h == nil {
		return true, nil
	}
	if !h.exec.waitFor(timeout) {
		return false, nil
	}
	return true, h.deliver()
}

// TryWait reports whether the job has completed, without blocking.
func (j *Job) TryWait() (bool, error) {
	h := j.header()
	if h == nil {
		return true, nil
	}
	if !h.exec.tryWait() {
		return false, nil
	}
	return true, h.deliver()
}

// Clone returns a new handle to the same job.
func (j *Job) Clone() *Job {
	h := j.header()
	if h == nil {
		return &Job{}
	}
	h.retain()
	return &Job{h: h}
}

// Close waits for the job and releases this handle. Calling Close again is
// a no-op.
func (j *Job) Close() error {
	h := j.header()
	if h == nil || !j.closed.CompareAndSwap(false, true) {
		return nil
	}
	h.exec.wait()
	err := h.deliver()
	h.release()
	return err
}

// Combine returns a job that completes when every given job has completed.
// Empty handles are skipped; if nothing remains the result is empty.
// Jobs from different pools cannot be combined.
func Combine(jobs ...*Job) (*Job, error) {
	var (
		pool    *Pool
		members []*jobHeader
	)
	for _, j := range jobs {
		h := j.header()
		if h == nil {
			continue
		}
		if pool == nil {
			pool = h.pool
		} else if h.pool != pool {
			return nil, ErrCrossPool
		}
		members = append(members, h)
	}
	if len(members) == 0 {
		return &Job{}, nil
	}
	h := &jobHeader{id: pool.nextID.Add(1), pool: pool}
	h.exec.initCollection(members)
	h.refs.Store(1)
	return &Job{h: h}, nil
}
