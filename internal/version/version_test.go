package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tokensmith/internal/version"
)

func TestString(t *testing.T) {
	// without ldflags the build reports a dev or module version
	assert.NotEmpty(t, version.String())
}

func TestFull(t *testing.T) {
	old := version.GitCommit
	defer func() { version.GitCommit = old }()

	version.GitCommit = "abcdef1234567890"
	assert.Contains(t, version.Full(), "abcdef1")

	version.GitCommit = "unknown"
	assert.NotContains(t, version.Full(), "commit")
}
