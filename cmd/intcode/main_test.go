package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI in dir and returns stdout and stderr.
func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeProgram(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src+"\n"), 0o644))
	return path
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, dir, "echo.txt", "3,0,4,0,99")

	out, _, err := execute(t, dir, "run", path, "-i", "42")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestRunCommandUsesManifest(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "input.txt", "3,0,3,1,1,0,1,0,4,0,99")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intcode.toml"), []byte("[program]\ninputs = [20, 22]\n"), 0o644))

	out, _, err := execute(t, dir, "run")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestRunCommandFault(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, dir, "bad.txt", "104,7,42")

	out, _, err := execute(t, dir, "run", path)
	assert.ErrorIs(t, err, intcode.ErrUnknownOpcode)
	assert.Equal(t, "7\n", out)
}

func TestAmplifyCommand(t *testing.T) {
	dir := t.TempDir()
	serial := writeProgram(t, dir, "serial.txt", "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	feedback := writeProgram(t, dir, "feedback.txt",
		"3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5")

	out, errOut, err := execute(t, dir, "amplify", serial, "--mode", "serial")
	require.NoError(t, err)
	assert.Equal(t, "43210\n", out)
	assert.Contains(t, errOut, "serial phases 4,3,2,1,0 (120 tried)")

	out, _, err = execute(t, dir, "amplify", feedback, "--phases", "9,8,7,6,5", "--once")
	require.NoError(t, err)
	assert.Equal(t, "139629729\n", out)

	_, _, err = execute(t, dir, "amplify", feedback, "--mode", "sideways")
	assert.Error(t, err)
}

func TestAssistCommand(t *testing.T) {
	dir := t.TempDir()
	adder := writeProgram(t, dir, "adder.txt", "1,0,0,0,99,10,20")
	dayTwo := writeProgram(t, dir, "day2.txt", "1,9,10,3,2,3,11,0,99,30,40,50")

	out, errOut, err := execute(t, dir, "assist", adder, "--target", "40", "--max", "7")
	require.NoError(t, err)
	assert.Equal(t, "606\n", out)
	assert.Contains(t, errOut, "noun=6 verb=6")

	out, _, err = execute(t, dir, "assist", dayTwo, "--noun", "9", "--verb", "10")
	require.NoError(t, err)
	assert.Equal(t, "3500\n", out)
}

func TestDisasmCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, dir, "mul.txt", "1002,4,3,4,33")

	out, _, err := execute(t, dir, "disasm", path)
	require.NoError(t, err)
	assert.Contains(t, out, "; === mul.txt ===")
	assert.Contains(t, out, "0000  MUL   *4 #3 *4")
}

func TestImageCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, dir, "big.txt", "104,1125899906842624,99")

	out, _, err := execute(t, dir, "image", path)
	require.NoError(t, err)
	image := filepath.Join(dir, "big.icbc")
	assert.True(t, strings.HasPrefix(out, image+": 3 cells"))

	data, err := os.ReadFile(image)
	require.NoError(t, err)
	assert.True(t, intcode.IsImage(data))

	out, _, err = execute(t, dir, "run", image)
	require.NoError(t, err)
	assert.Equal(t, "1125899906842624\n", out)
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, dir, "echo.txt", "3,0,4,0,99")
	ledger := []string{"--store", "leveldb", "--store-path", filepath.Join(dir, "ledger")}

	_, errOut, err := execute(t, dir, append(ledger, "run", path, "-i", "5", "--record")...)
	require.NoError(t, err)
	assert.Contains(t, errOut, "recorded run")
	_, _, err = execute(t, dir, append(ledger, "run", path, "-i", "6", "--record")...)
	require.NoError(t, err)

	out, _, err := execute(t, dir, append(ledger, "history", path)...)
	require.NoError(t, err)
	assert.Contains(t, out, "echo.txt")
	assert.Contains(t, out, "2 runs")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasSuffix(lines[3], "5"), lines[3])
	assert.True(t, strings.HasSuffix(lines[4], "6"), lines[4])

	_, _, err = execute(t, dir, append(ledger, "history", "deadbeef")...)
	assert.Error(t, err)
}

func TestConsole(t *testing.T) {
	// out 1; in; out in+1; in; out in+1; halt
	vm := intcode.New(intcode.MustParse("104,1,3,30,1001,30,1,30,4,30,3,30,1001,30,1,30,4,30,99"))

	lines := []string{"", ":state", ":peek 0", ":bogus", "x", "41", "99"}
	next := func() (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}

	var out bytes.Buffer
	require.NoError(t, runConsole(vm, next, &out))
	assert.Equal(t, strings.Join([]string{
		"1",
		"suspended ip=2 rb=0 cells=19",
		"[0] = 104",
		"unknown command :bogus",
		`parse error: cell 0: "x" is not an integer`,
		"42",
		"100",
		"halted",
	}, "\n")+"\n", out.String())
}

func TestConsoleEndOfInput(t *testing.T) {
	vm := intcode.New(intcode.MustParse("3,0,99"))
	var out bytes.Buffer
	err := runConsole(vm, func() (string, error) { return "", io.EOF }, &out)
	require.NoError(t, err)
	assert.True(t, vm.Suspended())
}
