package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	summary := c.MustGet(HandoverSummary)
	assert.Equal(t, 0.5, summary.Temperature)
	assert.Equal(t, 2048, summary.MaxTokens)
	assert.Contains(t, summary.System, "exit interview transcript")

	spof := c.MustGet(SPOFDetection)
	assert.Equal(t, 0.3, spof.Temperature)
	assert.Contains(t, spof.System, "riskScore")
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	body := `catalog: continuity
prompts:
  - name: handover_summary
    temperature: 0.1
    system: summarize
  - name: spof_detection
    system: detect
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "summarize", c.MustGet(HandoverSummary).System)
	assert.Equal(t, 2048, c.MustGet(SPOFDetection).MaxTokens)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"wrong catalog":  "catalog: other\nprompts: []\n",
		"missing prompt": "catalog: continuity\nprompts:\n  - name: handover_summary\n    system: x\n",
		"duplicate": `catalog: continuity
prompts:
  - {name: handover_summary, system: a}
  - {name: handover_summary, system: b}
  - {name: spof_detection, system: c}
`,
		"empty system": `catalog: continuity
prompts:
  - {name: handover_summary, system: ""}
  - {name: spof_detection, system: c}
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			require.Error(t, err)
		})
	}
}
