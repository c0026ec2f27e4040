package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"examphoto/internal/application"
	"examphoto/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*application.App, string) {
	t.Helper()
	dir := t.TempDir()
	app := application.NewAppWithConfig(&config.Config{
		AppDataDir:     dir,
		DefaultsPath:   filepath.Join(dir, "defaults.txt"),
		DatabasePath:   filepath.Join(dir, "history.sqlite3"),
		AssumedInputKB: 1500,
		ToleranceBytes: 512,
		MaxAttempts:    10,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, app.OnStartup(context.Background()))
	t.Cleanup(func() { app.OnShutdown() })
	return app, dir
}

func runCommand(t *testing.T, app *application.App, args ...string) (int, string, string) {
	t.Helper()
	cmd, ok := lookupCommand(args[0])
	require.True(t, ok, "unknown command %s", args[0])

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), app, cmd, args[1:], &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 3), G: uint8(y * 5), B: uint8(x ^ y), A: 0xFF})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: examphoto")

	stderr.Reset()
	assert.Equal(t, 2, run([]string{"shrink"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "shrink"`)

	stderr.Reset()
	assert.Equal(t, 0, run([]string{"help"}, &stdout, &stderr))
	for _, c := range commands {
		assert.Contains(t, stderr.String(), c.name)
	}
}

func TestPresetsCommand(t *testing.T) {
	app, _ := newTestApp(t)

	code, out, _ := runCommand(t, app, "presets")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "TNPSC Group Exams")
	assert.Contains(t, out, "472x157")
	assert.Equal(t, 16, strings.Count(out, "\n"))
}

func TestConvertCommand(t *testing.T) {
	app, dir := newTestApp(t)
	source := filepath.Join(dir, "me.png")
	writePNG(t, source, 320, 400)
	output := filepath.Join(dir, "upload.jpg")

	code, out, _ := runCommand(t, app, "convert", "-in", source, "-out", output, "-exam", "TNPSC Group Exams", "-type", "Photo", "-size-kb", "40")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "276x354 px")
	assert.Contains(t, out, "target 40.0 KB")
	assert.FileExists(t, output)

	code, out, _ = runCommand(t, app, "history", "-n", "5")
	require.Equal(t, 0, code)
	assert.Contains(t, out, output)
	assert.Contains(t, out, "1 conversions")
}

func TestConvertCommand_FlagsAfterSource(t *testing.T) {
	app, dir := newTestApp(t)
	source := filepath.Join(dir, "me.png")
	writePNG(t, source, 320, 400)

	code, out, stderr := runCommand(t, app, "convert", source, "-exam", "UPSC/IAS", "-type", "Photo", "-json")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, `"status": "completed"`)
	assert.FileExists(t, filepath.Join(dir, "me_upsc-ias_photo.jpg"))

	code, _, _ = runCommand(t, app, "convert", source, "-size-kb", "NaN", "-exam", "UPSC/IAS", "-type", "Photo")
	assert.Equal(t, 1, code)
}

func TestReorderArgs(t *testing.T) {
	fs := newFlagSet("test", io.Discard)
	fs.String("exam", "", "")
	fs.Bool("json", false, "")

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"flags only", []string{"-exam", "X"}, []string{"-exam", "X"}},
		{"source first", []string{"a.png", "-exam", "X", "b.png"}, []string{"-exam", "X", "--", "a.png", "b.png"}},
		{"bool flag takes no value", []string{"a.png", "-json", "b.png"}, []string{"-json", "--", "a.png", "b.png"}},
		{"inline value", []string{"a.png", "--exam=X"}, []string{"--exam=X", "--", "a.png"}},
		{"after terminator", []string{"-exam", "X", "--", "-odd.png"}, []string{"-exam", "X", "--", "-odd.png"}},
		{"unknown flag kept", []string{"a.png", "-bogus"}, []string{"-bogus", "--", "a.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, reorderArgs(fs, tt.args))
		})
	}
}

func TestConvertCommand_Errors(t *testing.T) {
	app, dir := newTestApp(t)
	source := filepath.Join(dir, "me.png")
	writePNG(t, source, 50, 50)

	code, _, stderr := runCommand(t, app, "convert", "-in", source)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "convert needs -in, -exam and -type")

	code, _, _ = runCommand(t, app, "convert", "-in", source, "-exam", "TNPSC Group Exams", "-type", "Photo", "-size-kb", "5")
	assert.Equal(t, 1, code)

	code, _, _ = runCommand(t, app, "convert", "-bogus")
	assert.Equal(t, 2, code)

	code, _, _ = runCommand(t, app, "convert", "-h")
	assert.Equal(t, 0, code)
}

func TestDefaultsCommand(t *testing.T) {
	app, _ := newTestApp(t)

	code, out, _ := runCommand(t, app, "defaults")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "276x354")

	code, out, _ = runCommand(t, app, "defaults", "-width-px", "300", "-height-cm", "4.5", "-exam", "TNPSC Group Exams", "-type", "Photo")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "300x354")

	code, out, _ = runCommand(t, app, "defaults")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "300x354")

	code, _, _ = runCommand(t, app, "defaults", "-width-px", "wide")
	assert.Equal(t, 1, code)
}

func TestInspectCommand(t *testing.T) {
	app, dir := newTestApp(t)
	source := filepath.Join(dir, "scan.png")
	writePNG(t, source, 64, 48)

	code, out, _ := runCommand(t, app, "inspect", source)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "png, 64x48 px")
	assert.Contains(t, out, "unknown dpi")

	code, out, _ = runCommand(t, app, "inspect", "-json", "-in", source)
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"width": 64`)

	code, _, _ = runCommand(t, app, "inspect")
	assert.Equal(t, 2, code)
}

func TestWatchCommand_RequiresFolders(t *testing.T) {
	app, _ := newTestApp(t)

	code, _, stderr := runCommand(t, app, "watch", "-exam", "UPSC/IAS", "-type", "Photo")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "watch needs -in and -out")
}
