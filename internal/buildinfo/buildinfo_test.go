package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	oldVersion, oldDate, oldCommit := BuildVersion, BuildDate, BuildCommit
	t.Cleanup(func() { BuildVersion, BuildDate, BuildCommit = oldVersion, oldDate, oldCommit })

	BuildVersion, BuildDate, BuildCommit = "v1.2.3", "2024-05-01", "abc123"

	var buf bytes.Buffer
	PrintBuildData(&buf)

	assert.Equal(t, "Build version: v1.2.3\nBuild date: 2024-05-01\nBuild commit: abc123\n", buf.String())
}

func TestPrintBanner_IncludesBuildData(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "EUTYPE")

	out := buf.String()
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "Build version: ")
}
