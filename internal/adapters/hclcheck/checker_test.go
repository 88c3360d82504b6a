package hclcheck_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hxt/internal/adapters/hclcheck"
	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/zerr"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), domain.FilePerm))
	}
	return dir
}

func TestCheck_Valid(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.tf": `
terraform {
  required_version = ">= 0.15"
  backend "s3" {}
}

resource "aws_s3_bucket" "b" {
  bucket = "example"
}
`,
		"providers.tf.json": `{"provider": {"aws": {"region": "ap-southeast-2"}}}`,
		"README.md":         "not terraform {",
	})

	require.NoError(t, hclcheck.NewChecker().Check(dir))
}

func TestCheck_SyntaxError(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ok.tf":     `locals { a = 1 }`,
		"broken.tf": `resource "aws_s3_bucket" "b" {`,
	})

	err := hclcheck.NewChecker().Check(dir)
	require.ErrorIs(t, err, domain.ErrHCLInvalid)

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, dir, zErr.Metadata()["dir"])
	assert.Contains(t, err.Error(), "broken.tf")
}

func TestCheck_RequiredVersionMustBeString(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.tf": "terraform {\n  required_version = 15\n}\n",
	})

	err := hclcheck.NewChecker().Check(dir)
	require.ErrorIs(t, err, domain.ErrHCLInvalid)
	assert.Contains(t, err.Error(), "required_version")
}

func TestCheck_NoFiles(t *testing.T) {
	err := hclcheck.NewChecker().Check(t.TempDir())
	require.ErrorIs(t, err, domain.ErrHCLInvalid)
}

func TestCheck_MissingDir(t *testing.T) {
	err := hclcheck.NewChecker().Check(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, domain.ErrHCLInvalid)
}
