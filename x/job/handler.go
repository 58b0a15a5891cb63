package job

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/gconf"
	"github.com/iov-one/jobchain/x"
	"github.com/iov-one/jobchain/x/escrow"
)

const (
	createJobCost  int64 = 300
	approveJobCost int64 = 50
	cancelJobCost  int64 = 50

	gconfPkg = "job"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r jobchain.Registry, auth x.Authenticator, custody escrow.Controller) {
	jobs := NewBucket()
	r.Handle(pathCreateJobMsg, CreateJobHandler{auth: auth, jobs: jobs, custody: custody})
	r.Handle(pathApproveJobWorkerMsg, ApproveJobWorkerHandler{auth: auth, jobs: jobs})
	r.Handle(pathApproveJobEmployerMsg, ApproveJobEmployerHandler{auth: auth, jobs: jobs, custody: custody})
	r.Handle(pathCancelJobMsg, CancelJobHandler{auth: auth, jobs: jobs, custody: custody})
	r.Handle(pathUpdateConfigurationMsg, gconf.NewUpdateConfigurationHandler(gconfPkg, &Configuration{}, auth))
}

// RegisterQuery will register this bucket as "/jobs"
func RegisterQuery(qr jobchain.QueryRouter) {
	NewBucket().Register("jobs", qr)
}

// CreateJobHandler creates a job and funds its custody.
type CreateJobHandler struct {
	auth    x.Authenticator
	jobs    Bucket
	custody escrow.Controller
}

var _ jobchain.Handler = CreateJobHandler{}

func (h CreateJobHandler) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &jobchain.CheckResult{GasAllocated: createJobCost}, nil
}

// Deliver stores the job, opens the custody and locks the pay taken from
// the employer. Any failure leaves no trace because the whole transaction
// is discarded.
func (h CreateJobHandler) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, ok := jobchain.BlockTime(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "block time not present")
	}

	_, err = h.jobs.Initialize(db, msg.JobKey, msg.ID, msg.Title, msg.Pay,
		msg.Employer, msg.Worker, msg.EscrowKey, jobchain.AsUnixTime(now))
	if err != nil {
		return nil, err
	}
	if _, err := h.custody.Open(db, msg.EscrowKey, msg.JobKey); err != nil {
		return nil, errors.Wrap(err, "open custody")
	}
	if err := h.custody.Lock(db, msg.EscrowKey, msg.Pay, msg.Employer); err != nil {
		return nil, errors.Wrap(err, "lock pay")
	}

	jobchain.GetLogger(ctx).Info("job created", "id", msg.ID, "job", msg.JobKey, "pay", msg.Pay)
	return &jobchain.DeliverResult{Data: msg.JobKey}, nil
}

func (h CreateJobHandler) validate(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*CreateJobMsg, error) {
	var msg CreateJobMsg
	if err := jobchain.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}

	signers := []string{"employer", "worker", "job key owner", "escrow key owner"}
	if i := x.FirstMissing(ctx, h.auth, msg.Employer, msg.Worker, msg.JobKey, msg.EscrowKey); i >= 0 {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s signature missing", signers[i])
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if msg.Pay < conf.MinPay {
		return nil, errors.Wrapf(errors.ErrAmount, "pay %d below minimum %d", msg.Pay, conf.MinPay)
	}
	if conf.UniqueParties {
		if err := h.ensureNoActiveJob(db, msg.Employer, msg.Worker); err != nil {
			return nil, err
		}
	}
	if err := h.jobs.ensureFree(db, msg.JobKey, msg.ID); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (h CreateJobHandler) ensureNoActiveJob(db jobchain.ReadOnlyKVStore, employer, worker jobchain.Address) error {
	jobs, err := h.jobs.ByEmployer(db, employer)
	if err != nil {
		return errors.Wrap(err, "list employer jobs")
	}
	for _, j := range jobs {
		if j.Worker.Equals(worker) && !j.Status.IsTerminal() {
			return errors.Wrapf(errors.ErrDuplicate, "active job %q for the same parties", j.ID)
		}
	}
	return nil
}

// ApproveJobWorkerHandler records the worker approval.
type ApproveJobWorkerHandler struct {
	auth x.Authenticator
	jobs Bucket
}

var _ jobchain.Handler = ApproveJobWorkerHandler{}

func (h ApproveJobWorkerHandler) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &jobchain.CheckResult{GasAllocated: approveJobCost}, nil
}

func (h ApproveJobWorkerHandler) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	msg, job, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.jobs.Put(db, msg.JobKey, job); err != nil {
		return nil, errors.Wrap(err, "save job")
	}
	return &jobchain.DeliverResult{Data: msg.JobKey}, nil
}

// validate returns the job with the transition already applied.
func (h ApproveJobWorkerHandler) validate(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*ApproveJobWorkerMsg, *Job, error) {
	var msg ApproveJobWorkerMsg
	if err := jobchain.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	job, err := h.jobs.Load(db, msg.JobKey)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, job.Worker) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "worker signature missing")
	}
	if err := job.SetWorkerApproved(); err != nil {
		return nil, nil, err
	}
	return &msg, job, nil
}

// ApproveJobEmployerHandler completes the job and pays the worker.
type ApproveJobEmployerHandler struct {
	auth    x.Authenticator
	jobs    Bucket
	custody escrow.Controller
}

var _ jobchain.Handler = ApproveJobEmployerHandler{}

func (h ApproveJobEmployerHandler) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &jobchain.CheckResult{GasAllocated: approveJobCost}, nil
}

func (h ApproveJobEmployerHandler) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	msg, job, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.jobs.Put(db, msg.JobKey, job); err != nil {
		return nil, errors.Wrap(err, "save job")
	}
	if err := h.custody.Release(db, job.EscrowRef, job.Worker); err != nil {
		return nil, err
	}

	jobchain.GetLogger(ctx).Info("job completed", "id", job.ID, "job", msg.JobKey, "pay", job.Pay)
	return &jobchain.DeliverResult{Data: msg.JobKey}, nil
}

func (h ApproveJobEmployerHandler) validate(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*ApproveJobEmployerMsg, *Job, error) {
	var msg ApproveJobEmployerMsg
	if err := jobchain.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	job, err := h.jobs.Load(db, msg.JobKey)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, job.Employer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "employer signature missing")
	}
	if err := job.SetEmployerApproved(); err != nil {
		return nil, nil, err
	}
	return &msg, job, nil
}

// CancelJobHandler cancels a job nobody approved yet and refunds the
// employer.
//
// The worker can cancel right away. The employer alone can cancel only
// after the configured timeout has passed since the job was created.
type CancelJobHandler struct {
	auth    x.Authenticator
	jobs    Bucket
	custody escrow.Controller
}

var _ jobchain.Handler = CancelJobHandler{}

func (h CancelJobHandler) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &jobchain.CheckResult{GasAllocated: cancelJobCost}, nil
}

func (h CancelJobHandler) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	msg, job, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.jobs.Put(db, msg.JobKey, job); err != nil {
		return nil, errors.Wrap(err, "save job")
	}
	if err := h.custody.Refund(db, job.EscrowRef, job.Employer); err != nil {
		return nil, err
	}

	jobchain.GetLogger(ctx).Info("job cancelled", "id", job.ID, "job", msg.JobKey)
	return &jobchain.DeliverResult{Data: msg.JobKey}, nil
}

func (h CancelJobHandler) validate(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*CancelJobMsg, *Job, error) {
	var msg CancelJobMsg
	if err := jobchain.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	job, err := h.jobs.Load(db, msg.JobKey)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case h.auth.HasAddress(ctx, job.Worker):
		// The worker may walk away until approving.
	case h.auth.HasAddress(ctx, job.Employer):
		if job.Status == StatusCreated {
			if err := h.employerMayCancel(ctx, db, job); err != nil {
				return nil, nil, err
			}
		}
	default:
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "party signature missing")
	}

	if err := job.SetCancelled(); err != nil {
		return nil, nil, err
	}
	return &msg, job, nil
}

func (h CancelJobHandler) employerMayCancel(ctx jobchain.Context, db jobchain.KVStore, job *Job) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	deadline, ok := conf.cancelDeadline(job.CreatedAt)
	if !ok {
		return errors.Wrap(errors.ErrUnauthorized, "employer cancellation disabled")
	}
	if !jobchain.IsExpired(ctx, deadline) {
		return errors.Wrapf(errors.ErrUnauthorized, "employer can cancel after %s", deadline)
	}
	return nil
}
