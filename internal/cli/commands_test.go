package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-daas/pkg/prompt"
)

const heroTemplate = `<div class="hero"><h1>[[hero.title]]</h1><a href="[[hero.link]]">More</a></div>`

const faqTemplate = `<div class="faq">` +
	`<p>[[@repeat(faq)]]</p>` +
	`<div class="item"><h3>[[faq[].q]]</h3></div>` +
	`<p>[[@repeatend(faq)]]</p>` +
	`</div>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, g *globals, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DAAS_ENDPOINT", "")
	t.Setenv("DAAS_TOKEN", "")
	cmd := newRootCmd(g)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootHelpWorks(t *testing.T) {
	out, err := run(t, &globals{}, "--help")
	assert.NoError(t, err)
	assert.Contains(t, out, "publish")
	assert.Contains(t, out, "extract")
}

func TestUnknownSubcommandErrors(t *testing.T) {
	_, err := run(t, &globals{}, "nope")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestExpandWritesRequestedItems(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "faq.html", faqTemplate)

	out, err := run(t, &globals{}, "expand", tpl, "--count", "faq=2")
	require.NoError(t, err)
	assert.Contains(t, out, "[[faq[0].q]]")
	assert.Contains(t, out, "[[faq[1].q]]")
	assert.NotContains(t, out, "[[faq[2].q]]")
}

func TestExpandRejectsMalformedCount(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "faq.html", faqTemplate)

	_, err := run(t, &globals{}, "expand", tpl, "--count", "faq")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "want name=N")
}

func TestComposeThenExtractRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "hero.html", heroTemplate)
	data := writeFile(t, dir, "data.yaml", "hero.title: Welcome\nhero.link: https://example.com/more\n")
	composed := filepath.Join(dir, "out.html")

	_, err := run(t, &globals{}, "compose", tpl, "--data", data, "--output", composed)
	require.NoError(t, err)

	raw, err := os.ReadFile(composed)
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "Welcome")
	assert.Contains(t, html, `href="https://example.com/more"`)
	assert.NotContains(t, html, "[[")

	out, err := run(t, &globals{}, "extract", composed)
	require.NoError(t, err)
	assert.Contains(t, out, "hero.title: Welcome")
	assert.Contains(t, out, "hero.link: https://example.com/more")
}

func TestComposeDropsUnfilledPlaceholders(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "hero.html", heroTemplate)

	out, err := run(t, &globals{}, "compose", tpl)
	require.NoError(t, err)
	assert.NotContains(t, out, "[[hero.title]]")
	assert.NotContains(t, out, "[[hero.link]]")
}

func TestLintReportsAdjacentPlaceholders(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "bad.html", `<p>[[first]][[second]]</p>`)

	out, err := run(t, &globals{}, "lint", tpl)
	assert.ErrorIs(t, err, errLintIssues)
	assert.Contains(t, out, "[adjacent]")
}

func TestLintCleanTemplate(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "hero.html", heroTemplate)

	out, err := run(t, &globals{}, "lint", tpl)
	require.NoError(t, err)
	assert.Contains(t, out, "no issues")
}

func TestFormRendersInputs(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "hero.html", heroTemplate)
	schemaFile := writeFile(t, dir, "schema.yaml", "fields:\n  - key: hero.title\n    label: Title\n  - key: hero.link\n    type: url\n")

	out, err := run(t, &globals{}, "form", tpl, "--schema", schemaFile, "--action", "/save")
	require.NoError(t, err)
	assert.Contains(t, out, `name="hero.title"`)
	assert.Contains(t, out, `name="hero.link"`)
	assert.Contains(t, out, "/save")
}

type scriptedDriver struct {
	prompt.Driver
	answers map[string]string
}

func (d scriptedDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	return d.answers[cfg.Message], nil
}

func TestFillWritesAnswers(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "hero.html", heroTemplate)
	schemaFile := writeFile(t, dir, "schema.yaml", "fields:\n  - key: hero.title\n    label: Title\n")

	g := &globals{driver: scriptedDriver{answers: map[string]string{"Title": "Hello there"}}}
	out, err := run(t, g, "fill", tpl, "--schema", schemaFile)
	require.NoError(t, err)
	assert.Contains(t, out, "hero.title: Hello there")
}

func TestPublishWritesToOutputDir(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "hero.html", heroTemplate)
	data := writeFile(t, dir, "data.json", `{"hero": {"title": "Launch"}}`)
	outDir := filepath.Join(dir, "dist")
	cfg := writeFile(t, dir, "daas.yaml", "output_dir: "+outDir+"\n")

	cmd := newRootCmd(&globals{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	t.Setenv("DAAS_ENDPOINT", "")
	cmd.SetArgs([]string{"--config", cfg, "publish", tpl, "--data", data, "--dest", "pages/home.html"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	saved, err := os.ReadFile(filepath.Join(outDir, "pages", "home.html"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "Launch")
	assert.Contains(t, out.String(), "saved pages/home.html")
	assert.Contains(t, out.String(), "preview refreshed")
}

func TestPublishRequiresDest(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "hero.html", heroTemplate)

	_, err := run(t, &globals{}, "publish", tpl)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--dest is required")
}
