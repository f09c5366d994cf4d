package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const testModel = `cheese 1 0
cheddar 0.9 0.1
recipe 0 1
pasta -1 0
`

const testDataset = `Title,Instructions,Image_Name,Cleaned_Ingredients,combined_cleaned
Tomato Pasta,Boil pasta.,tomato-pasta,"['pasta']","['pasta', 'tomato']"
Cheddar Bake,Grate cheddar.,cheddar-bake,"['cheddar']","['cheddar', 'cheese', 'recipe']"
`

func fixtures(t *testing.T) (model, dataset string) {
	t.Helper()
	dir := t.TempDir()
	model = filepath.Join(dir, "model.txt")
	dataset = filepath.Join(dir, "recipes.csv")
	require.NoError(t, os.WriteFile(model, []byte(testModel), 0o600))
	require.NoError(t, os.WriteFile(dataset, []byte(testDataset), 0o600))
	return model, dataset
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"flavorctl", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestQueryCommand_JSON(t *testing.T) {
	model, dataset := fixtures(t)

	out, err := run(t, "query", "--model", model, "--dataset", dataset, "--top-k", "1", "--json", "recpie", "chedder")
	require.NoError(t, err)

	var got queryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "recpie chedder", got.Query)
	assert.Equal(t, "recipe cheddar", got.CorrectedQuery)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "Cheddar Bake", got.Results[0].Title)
	assert.Equal(t, 1, got.Results[0].Rank)
}

func TestQueryCommand_Table(t *testing.T) {
	model, dataset := fixtures(t)

	out, err := run(t, "query", "-m", model, "-d", dataset, "chedder")
	require.NoError(t, err)
	assert.Contains(t, out, `showing results for "cheddar"`)
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "Tomato Pasta")
}

func TestQueryCommand_RequiresInputs(t *testing.T) {
	_, err := run(t, "query", "cheese")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--model")
}

func TestConvertCommand(t *testing.T) {
	model, dataset := fixtures(t)
	snap := filepath.Join(t.TempDir(), "model.msgpack")

	out, err := run(t, "convert", "--model", model, "--out", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "4 tokens, 2 dimensions")

	// The snapshot is picked up by extension and ranks identically.
	fromText, err := run(t, "query", "-m", model, "-d", dataset, "--json", "cheese")
	require.NoError(t, err)
	fromSnap, err := run(t, "query", "-m", snap, "-d", dataset, "--json", "cheese")
	require.NoError(t, err)
	assert.JSONEq(t, fromText, fromSnap)
}

func TestConvertCommand_OutRequired(t *testing.T) {
	model, _ := fixtures(t)
	_, err := run(t, "convert", "--model", model)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out")
}

func TestInspectCommand(t *testing.T) {
	model, dataset := fixtures(t)

	out, err := run(t, "inspect", "--model", model, "--dataset", dataset, "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "vocabulary: 4")
	assert.Contains(t, out, "dimensions: 2")
	assert.Contains(t, out, "sample: cheese cheddar")
	assert.Contains(t, out, "documents: 2")

	out, err = run(t, "inspect", "--model", model, "--similar", "cheese", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "cheddar")
	assert.NotContains(t, out, "pasta")

	_, err = run(t, "inspect", "--model", model, "--similar", "tofu")
	assert.Error(t, err)

	_, err = run(t, "inspect")
	assert.Error(t, err)
}

func TestAppFlags(t *testing.T) {
	app := newApp(&bytes.Buffer{})

	names := make([]string, len(app.Commands))
	for i, c := range app.Commands {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"query", "convert", "inspect"}, names)

	var topK *cli.IntFlag
	for _, f := range app.Commands[0].Flags {
		if f, ok := f.(*cli.IntFlag); ok && f.Name == "top-k" {
			topK = f
		}
	}
	require.NotNil(t, topK)
	assert.Equal(t, 50, topK.Value)
}
