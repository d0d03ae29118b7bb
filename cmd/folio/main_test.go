package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	parser, err := kong.New(cli, kong.Name("folio"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	return parser
}

func TestParseOnlyFlagSplitsOnComma(t *testing.T) {
	var cli CLI
	kctx, err := newParser(t, &cli).Parse([]string{"build", "--only", "blog,talks", "--no-site"})
	require.NoError(t, err)
	assert.Equal(t, "build", kctx.Command())
	assert.Equal(t, []string{"blog", "talks"}, cli.Build.Only)
	assert.True(t, cli.Build.NoSite)
}

func TestParseDefaultsToBuild(t *testing.T) {
	var cli CLI
	kctx, err := newParser(t, &cli).Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "build", kctx.Command())
}

func TestBuildCommandWritesCollections(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	require.NoError(t, os.MkdirAll(filepath.Join(contentDir, "blog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "blog", "first.md"), []byte(`---
title: First Post
date: 2024-02-01
---
Hello there.
`), 0o644))

	configPath := filepath.Join(root, "folio.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`site:
  title: Test Site
  base_url: https://test.example
content_dir: `+contentDir+`
output_dir: `+filepath.Join(root, "data")+`
generator:
  enabled: true
  output_dir: `+filepath.Join(root, "public")+`
`), 0o644))

	var cli CLI
	kctx, err := newParser(t, &cli).Parse([]string{"--config", configPath, "build", "--only", "blog"})
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	err = kctx.Run(&Global{Context: context.Background(), Stdout: &stdout, Stderr: &stderr}, &cli)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "data", "blog.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "public", "sitemap.xml"))
	assert.NoError(t, err)
	assert.Contains(t, stdout.String(), "blog")
	assert.Contains(t, stdout.String(), "wrote ")
}
