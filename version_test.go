package jobchain_test

import (
	"testing"

	"github.com/iov-one/jobchain"
	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	defer func(c string) { jobchain.GitCommit = c }(jobchain.GitCommit)

	jobchain.GitCommit = ""
	assert.Equal(t, "v0.1.0-dev", jobchain.Version())

	jobchain.GitCommit = "12345678"
	assert.Equal(t, "v0.1.0-dev 12345678", jobchain.Version())
}
