package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-daytime/internal/config"
	"github.com/tartampluch/go-daytime/internal/day"
	"github.com/tartampluch/go-daytime/internal/i18n"
)

func TestPrintTable_All(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, i18n.NewTranslator("fr"), ""))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, day.Count)

	assert.True(t, strings.HasPrefix(lines[0], "08:00"))
	assert.Contains(t, lines[0], "Il est l'heure de se lever")
	assert.True(t, strings.HasPrefix(lines[4], "02:00"))
	assert.Contains(t, lines[4], "Fais de beaux rêves")
}

func TestPrintTable_Single(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, i18n.NewTranslator("en"), "Evening"))
	assert.Equal(t, "22:00  Evening    Good night\n", buf.String())
}

func TestPrintTable_Unknown(t *testing.T) {
	var buf bytes.Buffer
	err := printTable(&buf, i18n.NewTranslator("en"), "dusk")
	assert.ErrorIs(t, err, day.ErrUnknown)
	assert.Empty(t, buf.String())
}

// TestPrintVersion checks that the ldflags build variables reach the output.
func TestPrintVersion(t *testing.T) {
	origCommit, origDate := config.Commit, config.Date
	t.Cleanup(func() { config.Commit, config.Date = origCommit, origDate })
	config.Commit = "abc1234"
	config.Date = "2026-10-19"

	var buf bytes.Buffer
	printVersion(&buf)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, config.AppName+" version "+config.Version))
	assert.Contains(t, out, "abc1234")
	assert.Contains(t, out, "2026-10-19")
	assert.True(t, strings.HasSuffix(out, "\n"))
}
