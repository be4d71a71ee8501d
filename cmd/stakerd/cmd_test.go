package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("1500000")
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), amount.Int64())

	for _, bad := range []string{"", "0", "-5", "1.5", "abc"} {
		_, err := parseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestPrintOutput(t *testing.T) {
	out := AmountOutput{Address: "cosmos1abc", Amount: "42", Denom: "uatom"}

	var buf bytes.Buffer
	require.NoError(t, printOutput(&buf, out, OutputFormatJSON))
	var decoded AmountOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, out, decoded)

	buf.Reset()
	require.NoError(t, printOutput(&buf, out, OutputFormatYAML))
	decoded = AmountOutput{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, out, decoded)
	assert.NotContains(t, buf.String(), "fiat")

	assert.Error(t, printOutput(&buf, out, "xml"))
}

func TestInitWritesConfig(t *testing.T) {
	home := t.TempDir()

	root := NewRootCmd()
	root.SetArgs([]string{"init", "--home", home, "--chain-id", "testhub-1", "--tx-format", "current"})
	require.NoError(t, root.Execute())

	cfg, err := loadConfigOrDefault()
	require.NoError(t, err)
	assert.Equal(t, "testhub-1", cfg.ChainID)
	assert.Equal(t, "current", string(cfg.TxFormat))
	assert.Equal(t, home, cfg.NodeHome)

	root = NewRootCmd()
	root.SetArgs([]string{"init", "--home", home})
	assert.Error(t, root.Execute(), "existing config is not overwritten")
}
