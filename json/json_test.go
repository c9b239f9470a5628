package json

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJsonClient_ExportImport(t *testing.T) {
	jsonClient := NewJsonClient(filepath.Join(t.TempDir(), "nested"), logrus.New())

	err := jsonClient.Export([]record{{Name: "a", Count: 1}, {Name: "b", Count: 2}}, "records.json")
	require.NoError(t, err)

	var records []record
	err = jsonClient.Import("records.json", &records)
	require.NoError(t, err)
	assert.Equal(t, []record{{Name: "a", Count: 1}, {Name: "b", Count: 2}}, records)

	_, err = os.Stat(filepath.Join(jsonClient.WorkingFolderPath, "records.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestJsonClient_Import_MissingFile(t *testing.T) {
	jsonClient := NewJsonClient(t.TempDir(), logrus.New())

	var records []record
	err := jsonClient.Import("missing.json", &records)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestJsonClient_Import_CorruptFile(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "records.json"), []byte("{not json"), 0644))
	jsonClient := NewJsonClient(folder, logrus.New())

	var records []record
	err := jsonClient.Import("records.json", &records)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRecordNotFound)
}

func TestJsonClient_Export_UnwritableFolder(t *testing.T) {
	folder := t.TempDir()
	blocker := filepath.Join(folder, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0644))
	jsonClient := NewJsonClient(filepath.Join(blocker, "data"), logrus.New())

	err := jsonClient.Export([]record{}, "records.json")
	assert.Error(t, err)
}
