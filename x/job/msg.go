package job

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

const (
	pathCreateJobMsg           = "job/create"
	pathApproveJobWorkerMsg    = "job/approve_worker"
	pathApproveJobEmployerMsg  = "job/approve_employer"
	pathCancelJobMsg           = "job/cancel"
	pathUpdateConfigurationMsg = "job/update_conf"
)

var _ jobchain.Msg = (*CreateJobMsg)(nil)

// CreateJobMsg creates a job and locks its pay in a new escrow custody.
// It must be signed by both parties and by the owners of the job and the
// escrow keys.
type CreateJobMsg struct {
	Metadata  *jobchain.Metadata `json:"metadata"`
	JobKey    jobchain.Address   `json:"job_key"`
	EscrowKey jobchain.Address   `json:"escrow_key"`
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Pay       uint64             `json:"pay"`
	Employer  jobchain.Address   `json:"employer"`
	Worker    jobchain.Address   `json:"worker"`
}

func (CreateJobMsg) Path() string {
	return pathCreateJobMsg
}

func (m *CreateJobMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "JobKey", m.JobKey.Validate())
	errs = errors.AppendField(errs, "EscrowKey", m.EscrowKey.Validate())
	if m.JobKey.Equals(m.EscrowKey) {
		errs = errors.AppendField(errs, "EscrowKey", errors.Wrap(errors.ErrInput, "must differ from the job key"))
	}
	if !validID(m.ID) {
		errs = errors.AppendField(errs, "ID", errors.ErrInput)
	}
	switch n := len(m.Title); {
	case n == 0:
		errs = errors.AppendField(errs, "Title", errors.ErrEmpty)
	case n > maxTitleLength:
		errs = errors.AppendField(errs, "Title", errors.ErrInput)
	}
	if m.Pay == 0 {
		errs = errors.AppendField(errs, "Pay", errors.ErrAmount)
	}
	errs = errors.AppendField(errs, "Employer", m.Employer.Validate())
	errs = errors.AppendField(errs, "Worker", m.Worker.Validate())
	return errs
}

var _ jobchain.Msg = (*ApproveJobWorkerMsg)(nil)

// ApproveJobWorkerMsg is sent by the worker once the work is done.
type ApproveJobWorkerMsg struct {
	Metadata *jobchain.Metadata `json:"metadata"`
	JobKey   jobchain.Address   `json:"job_key"`
}

func (ApproveJobWorkerMsg) Path() string {
	return pathApproveJobWorkerMsg
}

func (m *ApproveJobWorkerMsg) Validate() error {
	return validateJobRef(m.Metadata, m.JobKey)
}

var _ jobchain.Msg = (*ApproveJobEmployerMsg)(nil)

// ApproveJobEmployerMsg is sent by the employer to accept the work and
// release the pay.
type ApproveJobEmployerMsg struct {
	Metadata *jobchain.Metadata `json:"metadata"`
	JobKey   jobchain.Address   `json:"job_key"`
}

func (ApproveJobEmployerMsg) Path() string {
	return pathApproveJobEmployerMsg
}

func (m *ApproveJobEmployerMsg) Validate() error {
	return validateJobRef(m.Metadata, m.JobKey)
}

var _ jobchain.Msg = (*CancelJobMsg)(nil)

// CancelJobMsg cancels an unfinished job and refunds the employer.
type CancelJobMsg struct {
	Metadata *jobchain.Metadata `json:"metadata"`
	JobKey   jobchain.Address   `json:"job_key"`
}

func (CancelJobMsg) Path() string {
	return pathCancelJobMsg
}

func (m *CancelJobMsg) Validate() error {
	return validateJobRef(m.Metadata, m.JobKey)
}

func validateJobRef(meta *jobchain.Metadata, key jobchain.Address) error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", meta.Validate())
	errs = errors.AppendField(errs, "JobKey", key.Validate())
	return errs
}

var _ jobchain.Msg = (*UpdateConfigurationMsg)(nil)

// UpdateConfigurationMsg patches the job configuration. Zero value fields
// of the patch are ignored.
type UpdateConfigurationMsg struct {
	Metadata *jobchain.Metadata `json:"metadata"`
	Patch    *Configuration     `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	if m.Patch.Owner != nil {
		if err := m.Patch.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if err := validateCancelTimeout(m.Patch.CancelTimeout); err != nil {
		return err
	}
	return nil
}
