package app_test

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/iov-one/jobchain"
	baseapp "github.com/iov-one/jobchain/app"
	jobchaind "github.com/iov-one/jobchain/cmd/jobchaind/app"
	"github.com/iov-one/jobchain/crypto"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/jobtest/assert"
	"github.com/iov-one/jobchain/x/cash"
	"github.com/iov-one/jobchain/x/escrow"
	"github.com/iov-one/jobchain/x/job"
	"github.com/iov-one/jobchain/x/sigs"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const chainID = "jobchain-test"

// signer is a key together with the nonce it must use next.
type signer struct {
	key *crypto.PrivateKey
	seq int64
}

func newSigner() *signer {
	return &signer{key: crypto.GenPrivKeyEd25519()}
}

func (s *signer) addr() jobchain.Address {
	return s.key.PublicKey().Address()
}

// chain drives an application block by block.
type chain struct {
	t      *testing.T
	app    abci.Application
	height int64
	now    time.Time
}

func newChain(t *testing.T, genesis string) *chain {
	t.Helper()
	myApp, err := jobchaind.GenerateApp("", log.NewNopLogger(), true, nil)
	require.NoError(t, err)
	myApp.InitChain(abci.RequestInitChain{
		ChainId:       chainID,
		AppStateBytes: []byte(genesis),
	})
	myApp.Commit()
	return &chain{t: t, app: myApp, now: time.Unix(1500000000, 0)}
}

// sign builds a transaction for msg signed by all signers, bumping their
// nonces.
func (c *chain) sign(msg jobchain.Msg, signers ...*signer) []byte {
	c.t.Helper()
	tx := &jobchaind.Tx{Msg: msg}
	for _, s := range signers {
		sig, err := sigs.SignTx(s.key, tx, chainID, s.seq)
		require.NoError(c.t, err)
		tx.Signatures = append(tx.Signatures, sig)
		s.seq++
	}
	bz, err := tx.Marshal()
	require.NoError(c.t, err)
	return bz
}

// block runs all transactions in a single block and commits it.
func (c *chain) block(txs ...[]byte) []abci.ResponseDeliverTx {
	c.height++
	c.now = c.now.Add(5 * time.Second)
	c.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{Height: c.height, Time: c.now, ChainID: chainID},
	})
	var res []abci.ResponseDeliverTx
	for _, tx := range txs {
		res = append(res, c.app.DeliverTx(tx))
	}
	c.app.EndBlock(abci.RequestEndBlock{Height: c.height})
	c.app.Commit()
	return res
}

func (c *chain) query(path string, key []byte, obj jobchain.Persistent) {
	c.t.Helper()
	res := c.app.Query(abci.RequestQuery{Path: path, Data: key})
	require.Equal(c.t, uint32(0), res.Code, res.Log)
	require.NoError(c.t, baseapp.UnmarshalOneResult(res.Value, obj))
}

func (c *chain) balance(addr jobchain.Address) uint64 {
	var w cash.Wallet
	c.query("/wallets", addr, &w)
	return w.Balance
}

func (c *chain) job(key jobchain.Address) job.Job {
	var j job.Job
	c.query("/jobs", key, &j)
	return j
}

func genesis(rich jobchain.Address, balance uint64, owner jobchain.Address) string {
	return fmt.Sprintf(`{
		"cash": [{"address": %q, "balance": %d}],
		"conf": {"job": {
			"metadata": {"schema": 1},
			"owner": %q,
			"min_pay": 10,
			"unique_parties": true,
			"cancel_timeout": 60
		}}
	}`, hex.EncodeToString(rich), balance, hex.EncodeToString(owner))
}

func TestJobLifecycle(t *testing.T) {
	employer, worker := newSigner(), newSigner()
	jobKey, escrowKey := newSigner(), newSigner()
	c := newChain(t, genesis(employer.addr(), 5000, employer.addr()))

	create := &job.CreateJobMsg{
		Metadata:  &jobchain.Metadata{Schema: 1},
		JobKey:    jobKey.addr(),
		EscrowKey: escrowKey.addr(),
		ID:        "job1",
		Title:     "Software Engineer",
		Pay:       1000,
		Employer:  employer.addr(),
		Worker:    worker.addr(),
	}
	createTx := c.sign(create, employer, worker, jobKey, escrowKey)

	check := c.app.CheckTx(createTx)
	require.Equal(t, uint32(0), check.Code, check.Log)

	res := c.block(createTx)
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	assert.Equal(t, []byte(jobKey.addr()), res[0].Data)
	require.NotEmpty(t, res[0].Tags)
	assert.Equal(t, "job/create", string(res[0].Tags[0].Value))

	j := c.job(jobKey.addr())
	assert.Equal(t, job.StatusCreated, j.Status)
	assert.Equal(t, uint64(1000), j.Pay)
	assert.Equal(t, uint64(4000), c.balance(employer.addr()))
	assert.Equal(t, uint64(1000), c.balance(escrow.Condition(escrowKey.addr()).Address()))

	var custody escrow.Custody
	c.query("/custody", escrowKey.addr(), &custody)
	assert.Equal(t, uint64(1000), custody.HeldAmount)
	assert.Equal(t, jobKey.addr(), custody.BoundJob)

	// replaying the very same bytes is rejected by the nonce check
	res = c.block(createTx)
	assert.Equal(t, sigs.ErrInvalidSequence.ABCICode(), res[0].Code)

	// the employer cannot approve first
	earlyApproval := c.sign(&job.ApproveJobEmployerMsg{
		Metadata: &jobchain.Metadata{Schema: 1},
		JobKey:   jobKey.addr(),
	}, employer)
	res = c.block(earlyApproval)
	assert.Equal(t, job.ErrInvalidTransition.ABCICode(), res[0].Code)
	assert.Equal(t, job.StatusCreated, c.job(jobKey.addr()).Status)

	res = c.block(
		c.sign(&job.ApproveJobWorkerMsg{
			Metadata: &jobchain.Metadata{Schema: 1},
			JobKey:   jobKey.addr(),
		}, worker),
		c.sign(&job.ApproveJobEmployerMsg{
			Metadata: &jobchain.Metadata{Schema: 1},
			JobKey:   jobKey.addr(),
		}, employer),
	)
	for i, r := range res {
		require.Equal(t, uint32(0), r.Code, "tx %d: %s", i, r.Log)
	}

	j = c.job(jobKey.addr())
	assert.Equal(t, job.StatusCompleted, j.Status)
	assert.Equal(t, true, j.WorkerApproved)
	assert.Equal(t, true, j.EmployerApproved)
	assert.Equal(t, uint64(1000), c.balance(worker.addr()))
	assert.Equal(t, uint64(0), c.balance(escrow.Condition(escrowKey.addr()).Address()))

	c.query("/custody", escrowKey.addr(), &custody)
	assert.Equal(t, uint64(0), custody.HeldAmount)
	assert.Equal(t, true, custody.Reclaimable)

	// a completed job cannot be cancelled
	res = c.block(c.sign(&job.CancelJobMsg{
		Metadata: &jobchain.Metadata{Schema: 1},
		JobKey:   jobKey.addr(),
	}, worker))
	assert.Equal(t, job.ErrInvalidTransition.ABCICode(), res[0].Code)
	assert.Equal(t, uint64(1000), c.balance(worker.addr()))
}

func TestCancelAfterTimeout(t *testing.T) {
	employer, worker := newSigner(), newSigner()
	jobKey, escrowKey := newSigner(), newSigner()
	c := newChain(t, genesis(employer.addr(), 500, employer.addr()))

	res := c.block(c.sign(&job.CreateJobMsg{
		Metadata:  &jobchain.Metadata{Schema: 1},
		JobKey:    jobKey.addr(),
		EscrowKey: escrowKey.addr(),
		ID:        "job2",
		Title:     "Reviewer",
		Pay:       300,
		Employer:  employer.addr(),
		Worker:    worker.addr(),
	}, employer, worker, jobKey, escrowKey))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)

	cancel := func() []byte {
		return c.sign(&job.CancelJobMsg{
			Metadata: &jobchain.Metadata{Schema: 1},
			JobKey:   jobKey.addr(),
		}, employer)
	}

	// the timeout did not pass yet
	res = c.block(cancel())
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res[0].Code)

	c.now = c.now.Add(time.Minute)
	res = c.block(cancel())
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)

	assert.Equal(t, job.StatusCancelled, c.job(jobKey.addr()).Status)
	assert.Equal(t, uint64(500), c.balance(employer.addr()))
	assert.Equal(t, uint64(0), c.balance(worker.addr()))
}

func TestCreatePolicy(t *testing.T) {
	employer, worker := newSigner(), newSigner()
	c := newChain(t, genesis(employer.addr(), 5000, employer.addr()))

	create := func(id string, pay uint64) []byte {
		jobKey, escrowKey := newSigner(), newSigner()
		return c.sign(&job.CreateJobMsg{
			Metadata:  &jobchain.Metadata{Schema: 1},
			JobKey:    jobKey.addr(),
			EscrowKey: escrowKey.addr(),
			ID:        id,
			Title:     "Translator",
			Pay:       pay,
			Employer:  employer.addr(),
			Worker:    worker.addr(),
		}, employer, worker, jobKey, escrowKey)
	}

	res := c.block(create("cheap", 5), create("first", 100), create("second", 100))
	assert.Equal(t, errors.ErrAmount.ABCICode(), res[0].Code)
	assert.Equal(t, uint32(0), res[1].Code)
	assert.Equal(t, errors.ErrDuplicate.ABCICode(), res[2].Code)
	assert.Equal(t, uint64(4900), c.balance(employer.addr()))

	// the owner relaxes the policy
	res = c.block(c.sign(&job.UpdateConfigurationMsg{
		Metadata: &jobchain.Metadata{Schema: 1},
		Patch: &job.Configuration{
			Metadata: &jobchain.Metadata{Schema: 1},
			MinPay:   1,
		},
	}, employer))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)

	res = c.block(create("cheap", 5))
	assert.Equal(t, errors.ErrDuplicate.ABCICode(), res[0].Code)
}

func TestSend(t *testing.T) {
	rich, poor := newSigner(), newSigner()
	c := newChain(t, genesis(rich.addr(), 100, rich.addr()))

	send := func(amount uint64) []byte {
		return c.sign(&cash.SendMsg{
			Metadata:    &jobchain.Metadata{Schema: 1},
			Source:      rich.addr(),
			Destination: poor.addr(),
			Amount:      amount,
			Memo:        "rent",
		}, rich)
	}
	res := c.block(send(60), send(60))
	assert.Equal(t, uint32(0), res[0].Code)
	assert.Equal(t, errors.ErrInsufficientAmount.ABCICode(), res[1].Code)
	assert.Equal(t, uint64(40), c.balance(rich.addr()))
	assert.Equal(t, uint64(60), c.balance(poor.addr()))

	// the failed send still consumed a nonce
	next, err := sigs.NextNonce(baseapp.NewABCIStore(c.app), rich.addr())
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func TestTxDecoder(t *testing.T) {
	_, err := jobchaind.TxDecoder([]byte("not a transaction"))
	assert.IsErr(t, errors.ErrInput, err)

	tx := &jobchaind.Tx{Msg: &job.CancelJobMsg{
		Metadata: &jobchain.Metadata{Schema: 1},
		JobKey:   newSigner().addr(),
	}}
	bz, err := tx.Marshal()
	require.NoError(t, err)
	decoded, err := jobchaind.TxDecoder(bz)
	require.NoError(t, err)
	assert.Equal(t, "job/cancel", jobchain.GetPath(decoded))

	_, err = (&jobchaind.Tx{}).GetMsg()
	assert.IsErr(t, errors.ErrState, err)
}

func TestGenInitOptions(t *testing.T) {
	owner := newSigner()
	opts, err := jobchaind.GenInitOptions([]string{hex.EncodeToString(owner.addr())})
	require.NoError(t, err)
	c := newChain(t, string(opts))
	assert.Equal(t, uint64(123456789), c.balance(owner.addr()))

	_, err = jobchaind.GenInitOptions([]string{"not-an-address"})
	require.Error(t, err)
}
