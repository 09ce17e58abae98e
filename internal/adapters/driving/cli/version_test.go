package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "formgate version")
}

func TestSetDeps_OverridesVersion(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	oldVersion := version
	defer func() {
		version = oldVersion
	}()

	SetDeps(Deps{Version: "1.2.3"})

	assert.Equal(t, "1.2.3", version)
}
