package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-buildopts"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"buildopts": run,
	}))
}

func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(e *testscript.Env) error {
			e.Setenv(WorkspaceEnv, "")
			return nil
		},
	})
}

func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides([]string{
		"outputPath=dist/next",
		"aot=false",
		"budgets.maximumError=2mb",
		"budgets.count=3",
		"styles=[a.css, b.css]",
		"watch=",
	})
	require.NoError(t, err)

	assert.Equal(t, "dist/next", got["outputPath"])
	assert.Equal(t, false, got["aot"])
	assert.Equal(t, []any{"a.css", "b.css"}, got["styles"])
	assert.Nil(t, got["watch"])

	budgets, ok := got["budgets"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2mb", budgets["maximumError"])
	assert.EqualValues(t, 3, budgets["count"])

	_, err = parseOverrides([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseOverrides([]string{"=x"})
	assert.Error(t, err)
}

func TestParseStrategies(t *testing.T) {
	strategies, err := parseStrategies([]string{
		"styles=hasBase ? append_unique(base, override) : override",
		"optimization=@deep",
	}, buildopts.EngineExpr)
	require.NoError(t, err)
	require.Len(t, strategies, 2)

	merged, err := buildopts.MergeWith(
		buildopts.Fragment{"styles": []any{"a.css"}},
		buildopts.Fragment{"styles": []any{"b.css", "a.css"}},
		buildopts.MergeConfig{Strategies: strategies},
	)
	require.NoError(t, err)
	assert.Equal(t, []any{"a.css", "b.css"}, merged["styles"])

	none, err := parseStrategies(nil, buildopts.EngineCEL)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseStrategies([]string{"styles"}, buildopts.EngineExpr)
	assert.Error(t, err)
	_, err = parseStrategies([]string{"styles=base +"}, buildopts.EngineCEL)
	assert.Error(t, err)
}

func TestEngineFlag(t *testing.T) {
	assert.Equal(t, buildopts.EngineExpr, engineExpr.engine())
	assert.Equal(t, buildopts.EngineCEL, engineCEL.engine())
}
