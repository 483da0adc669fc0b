package intcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassemble(t *testing.T) {
	out := DisassembleWithName(MustParse("1002,4,3,4,33"), "mul")

	assert.True(t, strings.HasPrefix(out, "; === mul ===\n; 5 cells, sha256 "))
	assert.Contains(t, out, "0000  MUL   *4 #3 *4\n")
	assert.Contains(t, out, "0004  DATA  33\n")
}

func TestDisassembleModes(t *testing.T) {
	out := Disassemble(MustParse("109,19,204,-34,21101,1,2,3,99"))

	assert.NotContains(t, out, "===")
	assert.Contains(t, out, "0000  ARB   #19\n")
	assert.Contains(t, out, "0002  OUT   @-34\n")
	assert.Contains(t, out, "0004  ADD   #1 #2 @3\n")
	assert.Contains(t, out, "0008  HALT\n")
}

func TestDisassembleTruncated(t *testing.T) {
	out := Disassemble(MustParse("1,0"))
	assert.Contains(t, out, "0000  DATA  1\n")
	assert.Contains(t, out, "0001  DATA  0\n")
}
