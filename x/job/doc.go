/*
Package job implements an escrow mediated payment for a single piece of
work.

An employer creates a job together with the worker. The pay is locked in an
escrow custody at creation time. The worker approves the job first, the
employer confirms it afterwards and only then the locked funds are released
to the worker. A job nobody approved yet can be cancelled, which refunds
the employer.

	Created -> WorkerApproved -> Completed
	Created -> Cancelled
*/
package job
