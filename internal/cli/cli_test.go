package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const matchYAML = `
name: scrim
description: "entry reveal narrows the defender's ability"
entities:
  - name: p1a
    side: p1
    species: finch
    candidates:
      ability: [vigor]
  - name: p2a
    side: p2
    species: wolf
    candidates:
      ability: [dread, stormcall]
events:
  - tag: switch
    args: [p1a, finch]
  - tag: switch
    args: [p2a, wolf]
  - tag: boost
    args: [p1a, atk, "-1"]
    kv: { of: p2a }
  - tag: turn
    args: ["1"]
  - tag: win
    args: [p2]
`

func TestRoot_RejectsBadFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "sessions", "--db", filepath.Join(t.TempDir(), "x.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestReplay_Text(t *testing.T) {
	match := writeFile(t, "match.yaml", matchYAML)

	out, err := execute(t, "replay", match)
	require.NoError(t, err)
	assert.Contains(t, out, "Winner: p2 (turn 1)")
	assert.Contains(t, out, "p2a.ability: [dread]")
}

func TestReplay_JSON(t *testing.T) {
	match := writeFile(t, "match.yaml", matchYAML)

	out, err := execute(t, "--format", "json", "replay", match)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var report ReplayReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "p2", report.Final.Winner)
	assert.True(t, report.Final.Ended)
	assert.Equal(t, []string{"dread"}, report.Possibilities["p2a.ability"])
	assert.Equal(t, 5, report.Events)
}

func TestReplay_MissingFile(t *testing.T) {
	_, err := execute(t, "replay", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplay_ContradictionExitsFailure(t *testing.T) {
	match := writeFile(t, "match.yaml", `
name: bad
description: "reveal outside the enumeration"
entities:
  - name: p1a
    side: p1
    species: finch
    candidates:
      ability: [vigor]
  - name: p2a
    side: p2
    species: wolf
    candidates:
      ability: [dread]
events:
  - tag: turn
    args: ["1"]
  - tag: ability
    args: [p2a, stormcall]
`)

	out, err := execute(t, "replay", match)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Replay failed")
}

func TestReplay_RecordThenTrace(t *testing.T) {
	match := writeFile(t, "match.yaml", matchYAML)
	db := filepath.Join(t.TempDir(), "glean.db")

	out, err := execute(t, "replay", match, "--record", "--db", db, "--label", "scrim")
	require.NoError(t, err)
	require.Contains(t, out, "Recorded session: ")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	token := strings.TrimPrefix(last, "Recorded session: ")
	require.NotEmpty(t, token)

	traced, err := execute(t, "trace", token, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, traced, "(scrim)")
	assert.Contains(t, traced, "5 event(s)")
	assert.Contains(t, traced, "|switch|p1a|finch")
	assert.Contains(t, traced, "|win|p2")

	listed, err := execute(t, "sessions", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, listed, token)
	assert.Contains(t, listed, "scrim")
}

func TestTrace_UnknownSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "glean.db")

	_, err := execute(t, "trace", "no-such-token", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSessions_EmptyJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "glean.db")

	out, err := execute(t, "sessions", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No recorded sessions.")
}

func TestValidate_BuiltinStyleTable(t *testing.T) {
	rules := writeFile(t, "rules.cue", `
traits: {
	blaze: {
		attr:   "ability"
		hook:   "on_damage"
		reveal: "boost"
		requires: {
			kind:    "hp_below"
			percent: 33
		}
	}
}
`)

	out, err := execute(t, "validate", rules)
	require.NoError(t, err)
	assert.Contains(t, out, "1 trait(s)")
	assert.Contains(t, out, "blaze")
}

func TestValidate_InvalidTable(t *testing.T) {
	rules := writeFile(t, "rules.cue", `
traits: {
	blaze: {
		attr: "ability"
		hook: "on_damage"
	}
}
`)

	out, err := execute(t, "validate", rules)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "invalid trait table")
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
