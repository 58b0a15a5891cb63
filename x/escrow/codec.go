package escrow

import amino "github.com/tendermint/go-amino"

var cdc = amino.NewCodec()

func (c *Custody) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

func (c *Custody) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}
