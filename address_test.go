package jobchain_test

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressForms(t *testing.T) {
	Convey("Given the address of an employer key", t, func() {
		cond := jobchain.NewCondition("sigs", "ed25519", []byte("employer pubkey"))
		addr := cond.Address()

		Convey("it is derived from the condition", func() {
			So(addr, ShouldHaveLength, jobchain.AddressLength)
			So(addr.Equals(jobchain.NewAddress(cond)), ShouldBeTrue)
			So(addr.Validate(), ShouldBeNil)
		})

		Convey("it prints as upper case hex", func() {
			So(jobchain.Address{0xab, 0x01}.String(), ShouldEqual, "AB01")
			So(jobchain.Address(nil).String(), ShouldEqual, "(nil)")
		})

		Convey("it survives a JSON round trip", func() {
			raw, err := json.Marshal(addr)
			So(err, ShouldBeNil)
			var back jobchain.Address
			So(json.Unmarshal(raw, &back), ShouldBeNil)
			So(back, ShouldResemble, addr)
		})

		Convey("it survives a bech32 round trip", func() {
			enc, err := addr.Bech32("job")
			So(err, ShouldBeNil)
			back, err := jobchain.ParseBech32("job", enc)
			So(err, ShouldBeNil)
			So(back, ShouldResemble, addr)

			_, err = jobchain.ParseBech32("tjob", enc)
			So(errors.ErrInput.Is(err), ShouldBeTrue)
		})
	})
}

func TestAddressUnmarshalJSON(t *testing.T) {
	worker := jobchain.NewCondition("sigs", "ed25519", []byte("worker pubkey"))
	addr := worker.Address()
	bech, err := addr.Bech32("job")
	require.NoError(t, err)

	cases := map[string]struct {
		json    string
		want    jobchain.Address
		wantErr *errors.Error
	}{
		"plain hex":          {json: `"` + addr.String() + `"`, want: addr},
		"prefixed hex":       {json: `"hex:` + addr.String() + `"`, want: addr},
		"lower case hex":     {json: `"hex:0102030405060708090a0b0c0d0e0f1011121314"`, want: jobchain.Address{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}},
		"hex too short":      {json: `"hex:0102"`, wantErr: errors.ErrInput},
		"not hex":            {json: `"hex:xyz"`, wantErr: errors.ErrInput},
		"bech32":             {json: `"bech32:` + bech + `"`, want: addr},
		"broken bech32":      {json: `"bech32:job1qqqq"`, wantErr: errors.ErrInput},
		"condition":          {json: `"cond:sigs/ed25519/776F726B6572207075626B6579"`, want: addr},
		"condition, 2 parts": {json: `"cond:sigs/776F726B6572207075626B6579"`, wantErr: errors.ErrInput},
		"condition, no hex":  {json: `"cond:sigs/ed25519/worker"`, wantErr: errors.ErrInput},
		"unknown prefix":     {json: `"base64:AQID"`, wantErr: errors.ErrType},
		"not a string":       {json: `42`, wantErr: errors.ErrInput},
		"empty":              {json: `""`},
		"empty hex":          {json: `"hex:"`},
		"empty condition":    {json: `"cond:"`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var got jobchain.Address
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
