package job

import (
	"fmt"
	"regexp"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/orm"
)

// BucketName is where jobs are stored.
const BucketName = "job"

const maxTitleLength = 256

var validID = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,64}$`).MatchString

// JobStatus is the position of a job in its life cycle.
type JobStatus uint8

const (
	StatusCreated JobStatus = iota + 1
	StatusWorkerApproved
	StatusCompleted
	StatusCancelled
)

func (s JobStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusWorkerApproved:
		return "worker_approved"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("JobStatus(%d)", uint8(s))
	}
}

// IsTerminal returns true if no further transition is possible.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Job is a single piece of work paid through an escrow custody.
type Job struct {
	Metadata *jobchain.Metadata `json:"metadata"`
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	// Pay is locked in the custody when the job is created and never
	// changes.
	Pay       uint64           `json:"pay"`
	Employer  jobchain.Address `json:"employer"`
	Worker    jobchain.Address `json:"worker"`
	EscrowRef jobchain.Address `json:"escrow_ref"`

	WorkerApproved   bool      `json:"worker_approved"`
	EmployerApproved bool      `json:"employer_approved"`
	Status           JobStatus `json:"status"`

	CreatedAt jobchain.UnixTime `json:"created_at"`
}

var _ orm.Model = (*Job)(nil)

func (j *Job) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", j.Metadata.Validate())
	if !validID(j.ID) {
		errs = errors.AppendField(errs, "ID", errors.ErrInput)
	}
	if j.Title == "" {
		errs = errors.AppendField(errs, "Title", errors.ErrEmpty)
	} else if len(j.Title) > maxTitleLength {
		errs = errors.AppendField(errs, "Title", errors.ErrInput)
	}
	if j.Pay == 0 {
		errs = errors.AppendField(errs, "Pay", errors.ErrAmount)
	}
	errs = errors.AppendField(errs, "Employer", j.Employer.Validate())
	errs = errors.AppendField(errs, "Worker", j.Worker.Validate())
	errs = errors.AppendField(errs, "EscrowRef", j.EscrowRef.Validate())
	errs = errors.AppendField(errs, "CreatedAt", j.CreatedAt.Validate())
	errs = errors.AppendField(errs, "Status", j.validateStatus())
	return errs
}

// validateStatus ensures the status agrees with the approval flags.
func (j *Job) validateStatus() error {
	if j.EmployerApproved && !j.WorkerApproved {
		return errors.Wrap(errors.ErrState, "employer approved before the worker")
	}
	var ok bool
	switch j.Status {
	case StatusCreated:
		ok = !j.WorkerApproved && !j.EmployerApproved
	case StatusWorkerApproved:
		ok = j.WorkerApproved && !j.EmployerApproved
	case StatusCompleted:
		ok = j.WorkerApproved && j.EmployerApproved
	case StatusCancelled:
		ok = !j.WorkerApproved && !j.EmployerApproved
	default:
		return errors.Wrapf(errors.ErrInput, "unknown status %d", j.Status)
	}
	if !ok {
		return errors.Wrapf(errors.ErrState, "status %s does not match approvals", j.Status)
	}
	return nil
}

func (j *Job) Copy() orm.CloneableData {
	return &Job{
		Metadata:         j.Metadata.Copy(),
		ID:               j.ID,
		Title:            j.Title,
		Pay:              j.Pay,
		Employer:         copyAddr(j.Employer),
		Worker:           copyAddr(j.Worker),
		EscrowRef:        copyAddr(j.EscrowRef),
		WorkerApproved:   j.WorkerApproved,
		EmployerApproved: j.EmployerApproved,
		Status:           j.Status,
		CreatedAt:        j.CreatedAt,
	}
}

func copyAddr(a jobchain.Address) jobchain.Address {
	if a == nil {
		return nil
	}
	return append(jobchain.Address(nil), a...)
}

// SetWorkerApproved records the worker approval of a freshly created job.
func (j *Job) SetWorkerApproved() error {
	if j.Status != StatusCreated {
		return errors.Wrapf(ErrInvalidTransition, "worker cannot approve a %s job", j.Status)
	}
	j.WorkerApproved = true
	j.Status = StatusWorkerApproved
	return nil
}

// SetEmployerApproved completes a job already approved by the worker.
func (j *Job) SetEmployerApproved() error {
	if j.Status != StatusWorkerApproved {
		return errors.Wrapf(ErrInvalidTransition, "employer cannot approve a %s job", j.Status)
	}
	j.EmployerApproved = true
	j.Status = StatusCompleted
	return nil
}

// SetCancelled ends a job nobody approved yet. Once the worker approved,
// only the employer approval can finish the job.
func (j *Job) SetCancelled() error {
	if j.Status != StatusCreated {
		return errors.Wrapf(ErrInvalidTransition, "cannot cancel a %s job", j.Status)
	}
	j.Status = StatusCancelled
	return nil
}

// Bucket stores jobs under the caller provided job key. Jobs are indexed
// by their unique ID and by both parties.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing jobs.
func NewBucket() Bucket {
	b := orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Job{})).
		WithIndex("id", idxID, true).
		WithIndex("employer", idxEmployer, false).
		WithIndex("worker", idxWorker, false)
	return Bucket{ModelBucket: orm.NewModelBucket(b)}
}

// Initialize creates a new job in the Created status. ErrDuplicate is
// returned if the key or the ID is already taken.
func (b Bucket) Initialize(
	db jobchain.KVStore,
	key jobchain.Address,
	id, title string,
	pay uint64,
	employer, worker, escrowRef jobchain.Address,
	now jobchain.UnixTime,
) (*Job, error) {
	if err := b.ensureFree(db, key, id); err != nil {
		return nil, err
	}
	job := &Job{
		Metadata:  &jobchain.Metadata{Schema: 1},
		ID:        id,
		Title:     title,
		Pay:       pay,
		Employer:  employer,
		Worker:    worker,
		EscrowRef: escrowRef,
		Status:    StatusCreated,
		CreatedAt: now,
	}
	if err := b.Create(db, key, job); err != nil {
		return nil, errors.Wrap(err, "cannot create job")
	}
	return job, nil
}

// ensureFree fails with ErrDuplicate if a job exists under given key or
// with given ID.
func (b Bucket) ensureFree(db jobchain.ReadOnlyKVStore, key jobchain.Address, id string) error {
	switch err := b.Has(db, key); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "job %s", key)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	if _, err := b.ByID(db, id); !errors.ErrNotFound.Is(err) {
		if err == nil {
			return errors.Wrapf(errors.ErrDuplicate, "job with ID %q", id)
		}
		return err
	}
	return nil
}

// Load returns the job stored under given key.
func (b Bucket) Load(db jobchain.ReadOnlyKVStore, key jobchain.Address) (*Job, error) {
	var job Job
	if err := b.One(db, key, &job); err != nil {
		return nil, errors.Wrapf(err, "job %s", key)
	}
	return &job, nil
}

// ByID returns the job with given ID.
func (b Bucket) ByID(db jobchain.ReadOnlyKVStore, id string) (*Job, error) {
	var jobs []Job
	if err := b.Many(db, "id", []byte(id), &jobs); err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "job with ID %q", id)
	}
	return &jobs[0], nil
}

// ByEmployer returns all jobs created by given employer.
func (b Bucket) ByEmployer(db jobchain.ReadOnlyKVStore, employer jobchain.Address) ([]Job, error) {
	var jobs []Job
	err := b.Many(db, "employer", employer, &jobs)
	return jobs, err
}

func idxID(obj orm.Object) ([]byte, error) {
	j, err := asJob(obj)
	if err != nil {
		return nil, err
	}
	return []byte(j.ID), nil
}

func idxEmployer(obj orm.Object) ([]byte, error) {
	j, err := asJob(obj)
	if err != nil {
		return nil, err
	}
	return j.Employer, nil
}

func idxWorker(obj orm.Object) ([]byte, error) {
	j, err := asJob(obj)
	if err != nil {
		return nil, err
	}
	return j.Worker, nil
}

func asJob(obj orm.Object) (*Job, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	j, ok := obj.Value().(*Job)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "can only take index of Job, got %T", obj.Value())
	}
	return j, nil
}
