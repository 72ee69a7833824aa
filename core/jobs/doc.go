// File: core/jobs/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package jobs schedules dependency-aware jobs on a fixed pool of worker
// threads.
//
// A job is one function, several functions, or one function run over an
// index range. Jobs may be ordered after other jobs and grouped with
// Combine. Failures are captured on the worker and returned to the first
// caller that waits on the job:
//
//	pool, err := jobs.NewPool(4)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	load, _ := pool.Schedule(readInput)
//	defer load.Close()
//	work, _ := pool.ScheduleParallelAfter(load, 64, process)
//	defer work.Close()
//	return work.Wait()
//
// A panic whose value is an error is captured as *PanicError. Any other
// panic is fatal and goes to the hook set with WithOnFatal.
package jobs
