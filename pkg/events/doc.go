/*
Package events provides an in-memory event broker for simulation progress.

A simulation run publishes an event whenever a job is released, completes,
misses its deadline or is cancelled, plus one event at the start and end of
the run. Subscribers such as `rtsim run --watch` receive them on buffered
channels.

# Architecture

	Run.Step ──Publish──► eventCh (buffer: 100) ──► broadcast loop
	                                                    │
	                              ┌─────────────────────┼──────────────┐
	                              ▼                     ▼              ▼
	                        Subscriber (50)       Subscriber (50)     ...

Delivery is best effort. A subscriber whose buffer is full misses the event;
the simulation never waits for a slow reader. Publish only blocks while the
broker's own buffer is full, and returns immediately once Stop is called.

# Event Types

  - run.started, run.finished
  - job.released, job.completed
  - job.deadline_missed: a job completed after its absolute deadline
  - job.cancelled: a scheduler dropped the job

Metadata carries "scheduler" and, for job events, "task" and "job".
*/
package events
