package jobchain

import (
	"testing"

	"github.com/iov-one/jobchain/errors"
)

type demoMsg struct {
	Num  int
	Text string
}

func (demoMsg) Path() string { return "demo/path" }

func (m demoMsg) Validate() error {
	if m.Num < 0 {
		return errors.ErrMsg.New("negative num")
	}
	return nil
}

type otherMsg struct{}

func (otherMsg) Path() string    { return "other/path" }
func (otherMsg) Validate() error { return nil }

type demoTx struct {
	msg Msg
	err error
}

func (tx demoTx) GetMsg() (Msg, error)    { return tx.msg, tx.err }
func (demoTx) Marshal() ([]byte, error)   { return nil, nil }
func (*demoTx) Unmarshal(bz []byte) error { return nil }

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		tx      Tx
		dest    func() interface{}
		wantErr *errors.Error
		wantNum int
	}{
		"load into a value": {
			tx:      &demoTx{msg: &demoMsg{Num: 3}},
			dest:    func() interface{} { return &demoMsg{} },
			wantNum: 3,
		},
		"load into a pointer": {
			tx:      &demoTx{msg: &demoMsg{Num: 4}},
			dest:    func() interface{} { var m *demoMsg; return &m },
			wantNum: 4,
		},
		"message type mismatch": {
			tx:      &demoTx{msg: &otherMsg{}},
			dest:    func() interface{} { return &demoMsg{} },
			wantErr: errors.ErrType,
		},
		"destination is not a pointer": {
			tx:      &demoTx{msg: &demoMsg{}},
			dest:    func() interface{} { return demoMsg{} },
			wantErr: errors.ErrType,
		},
		"invalid message": {
			tx:      &demoTx{msg: &demoMsg{Num: -1}},
			dest:    func() interface{} { return &demoMsg{} },
			wantErr: errors.ErrMsg,
		},
		"transaction error is passed through": {
			tx:      &demoTx{err: errors.ErrEmpty.New("no message")},
			dest:    func() interface{} { return &demoMsg{} },
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			dest := tc.dest()
			err := LoadMsg(tc.tx, dest)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			var got int
			switch d := dest.(type) {
			case *demoMsg:
				got = d.Num
			case **demoMsg:
				got = (*d).Num
			}
			if got != tc.wantNum {
				t.Fatalf("want %d, got %d", tc.wantNum, got)
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	if got := GetPath(&demoTx{msg: &demoMsg{}}); got != "demo/path" {
		t.Fatalf("unexpected path: %q", got)
	}
	if got := GetPath(&demoTx{err: errors.ErrEmpty}); got != "(missing)" {
		t.Fatalf("unexpected path: %q", got)
	}
}
