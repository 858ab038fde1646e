package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chainInput = []byte(`
Title: Three atom chain
Lattice: [[3, 0, 0], [0, 10, 0], [0, 0, 10]]
Positions: [[0, 0, 0], [0.3333333333333333, 0, 0], [0.6666666666666666, 0, 0]]
Numbers: [1, 1, 1]
PointGroup: "-1"
Translations: [[0, 0, 0], [0.3333333333333333, 0, 0], [0.6666666666666666, 0, 0]]
`)

func TestRunBasis(t *testing.T) {
	var (
		dir    = t.TempDir()
		input  = filepath.Join(dir, "chain.yaml")
		output = filepath.Join(dir, "basis.yaml")
	)
	require.NoError(t, os.WriteFile(input, chainInput, 0644))
	mb := &ModelBasis{InputFile: input, OutputFile: output, NP: 2}
	ip, err := processInput(mb)
	require.NoError(t, err)
	assert.Equal(t, "Three atom chain", ip.Title)

	bs, err := RunBasis(mb, ip)
	require.NoError(t, err)
	assert.Equal(t, 6, bs.Len())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var out BasisOutput
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, "Three atom chain", out.Title)
	assert.Equal(t, 3, out.NAtom)
	assert.Equal(t, 6, out.BasisSize)
	require.Len(t, out.Basis, 6)
	for _, f := range out.Basis {
		assert.Len(t, f, 81)
	}

	_, err = processInput(&ModelBasis{})
	assert.Error(t, err)
	_, err = processInput(&ModelBasis{InputFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestBasisCommand(t *testing.T) {
	var (
		dir    = t.TempDir()
		input  = filepath.Join(dir, "chain.yaml")
		output = filepath.Join(dir, "basis.yaml")
	)
	require.NoError(t, os.WriteFile(input, chainInput, 0644))
	rootCmd.SetArgs([]string{"basis", "-I", input, "-o", output, "--np", "2", "--tol", "1e-9"})
	require.NoError(t, rootCmd.Execute())
	_, err := os.Stat(output)
	assert.NoError(t, err)
}
