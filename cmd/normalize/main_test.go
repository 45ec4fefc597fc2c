package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartfeed/internal/normalize"
)

func TestRun(t *testing.T) {
	testCases := []struct {
		name string
		kind normalize.Kind
		in   string
		want string
	}{
		{
			name: "tick",
			kind: normalize.KindTick,
			in:   `{"tick":{"epoch":1700000000,"quote":"100.5"}}`,
			want: `{"status":"ok","quotes":[{"Date":"2023-11-14T22:13:20","Close":100.5,"tick":{"epoch":1700000000,"quote":"100.5"}}]}`,
		},
		{
			name: "replay gap",
			kind: normalize.KindReplay,
			in:   `[{"epoch":0,"tick":1},{"epoch":1},{"epoch":2,"tick":3}]`,
			want: `{"status":"ok","quotes":[{"Date":"1970-01-01T00:00:00","Close":1},{"Date":"1970-01-01T00:00:01","Close":2},{"Date":"1970-01-01T00:00:02","Close":3}]}`,
		},
		{
			name: "absent",
			kind: normalize.KindHistory,
			in:   `{"msg_type":"history"}`,
			want: `{"status":"absent","quotes":[]}`,
		},
		{
			name: "incomplete",
			kind: normalize.KindContract,
			in:   `null`,
			want: `{"status":"incomplete","quotes":[]}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, run(tc.kind, strings.NewReader(tc.in), &out, false))
			assert.JSONEq(t, tc.want, out.String())
		})
	}
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer

	err := run("bars", strings.NewReader(`{}`), &out, false)
	require.ErrorIs(t, err, normalize.ErrUnknownKind)

	err = run(normalize.KindReplay, strings.NewReader(`{`), &out, false)
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"history":[{"epoch":60,"quote":"1.5"}]}`), 0o600))

	var out bytes.Buffer
	require.NoError(t, runFile(normalize.KindHistory, path, &out, false))
	assert.JSONEq(t, `{"status":"ok","quotes":[{"Date":"1970-01-01T00:01:00","Close":1.5}]}`, out.String())

	err := runFile(normalize.KindHistory, filepath.Join(t.TempDir(), "missing.json"), &out, false)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestKindList(t *testing.T) {
	assert.Equal(t, "history, tick, replay, contract", kindList())
}
