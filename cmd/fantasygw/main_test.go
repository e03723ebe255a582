package main

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fantasygw/internal/domain"
)

func TestExecRequest_FlagsOverrideParams(t *testing.T) {
	opts := &execOptions{}
	flags := pflag.NewFlagSet("exec", pflag.ContinueOnError)
	bindExecFlags(flags, opts)
	require.NoError(t, flags.Parse([]string{
		"--tool", "get_matchups",
		"--params", `{"sport":"basketball","league_id":"L0","week":2}`,
		"--league", "L1",
		"--week", "0",
	}))

	req, err := opts.request(flags)
	require.NoError(t, err)
	require.Equal(t, "get_matchups", req.Tool)
	require.Equal(t, "basketball", req.Params.Sport)
	require.Equal(t, "L1", req.Params.LeagueID)
	require.NotNil(t, req.Params.Week)
	require.Equal(t, 0, *req.Params.Week)
	require.Nil(t, req.Params.Count)
}

func TestExecRequest_InvalidParams(t *testing.T) {
	opts := &execOptions{tool: "get_standings", rawParams: "{"}
	_, err := opts.request(pflag.NewFlagSet("exec", pflag.ContinueOnError))
	require.ErrorContains(t, err, "parse --params")
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd(zap.NewNop())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), domain.ServiceName)
}
