package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleCatalog is a small flat catalog covering single-tag, multi-tag and
// compressed encodings.
const SampleCatalog = `add rv_i 0000000??????????000?????0110011 rd rs1 rs2
sub rv_i 0100000??????????000?????0110011 rd rs1 rs2
addi rv_i ?????????????????000?????0010011 rd rs1 imm12
lw rv_i ?????????????????010?????0000011 rd rs1 imm12
sw rv_i ?????????????????010?????0100011 imm12hi rs1 rs2 imm12lo
beq rv_i ?????????????????000?????1100011 bimm12hi rs1 rs2 bimm12lo
mul rv_m 0000001??????????000?????0110011 rd rs1 rs2
sh1add rv_zba rv64_zba 0010000??????????010?????0110011 rd rs1 rs2
ecall rv_i 00000000000000000000000001110011
`

// WriteFile writes content under dir and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// WriteCatalog writes SampleCatalog into a temp dir and returns its path.
func WriteCatalog(t testing.TB) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), "riscv_instructions.csv", SampleCatalog)
}
