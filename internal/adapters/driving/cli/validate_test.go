package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeForm(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestValidateCmd_Use(t *testing.T) {
	assert.Equal(t, "validate [file]", validateCmd.Use)
}

func TestValidateCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"validate"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestValidateCmd_HasJSONFlag(t *testing.T) {
	flag := validateCmd.Flags().Lookup("json")
	require.NotNil(t, flag, "json flag should exist")
	assert.Equal(t, "false", flag.DefValue)
}

func TestValidateCmd_TextFormSkipsDigitizer(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	extraction := &mockExtraction{record: sampleRecord()}
	extractionService = extraction

	path := writeForm(t, "form.txt", "Name: Priya\nAge: 25")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"validate", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "Name: Priya\nAge: 25", extraction.gotText, "text forms go straight to text extraction")
	assert.Empty(t, extraction.gotMIMEType)
	assert.Contains(t, buf.String(), "Extracted 2 fields")
	assert.Contains(t, buf.String(), "personal loan")
	assert.Contains(t, buf.String(), "RENDERED REPORT")
}

func TestValidateCmd_ImageFormUsesDocumentPath(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	extraction := &mockExtraction{record: sampleRecord()}
	extractionService = extraction

	path := writeForm(t, "form.png", "fake image bytes")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"validate", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "image/png", extraction.gotMIMEType)
}

func TestValidateCmd_UnsupportedExtension(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := writeForm(t, "form.docx", "content")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"validate", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file extension")
}

func TestValidateCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"validate", filepath.Join(t.TempDir(), "absent.txt")})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read form")
}

func TestValidateCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := writeForm(t, "form.txt", "Name: Priya")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"validate", "--json", path})
	defer func() {
		rootCmd.SetArgs(nil)
		validateJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"overall_status"`)
	assert.Contains(t, buf.String(), "COMPLIANT")
}

func TestValidateCmd_ServicesNotConfigured(t *testing.T) {
	oldExtraction := extractionService
	oldValidation := validationService
	extractionService = nil
	validationService = nil
	defer func() {
		extractionService = oldExtraction
		validationService = oldValidation
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"validate", "form.txt"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestValidateCmd_ExtractionError(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	extractionService = &mockExtraction{err: errors.New("backend down")}

	path := writeForm(t, "form.txt", "Name: Priya")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"validate", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "extraction failed")
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash(""))
	assert.Equal(t, "kyc", orDash("kyc"))
}
