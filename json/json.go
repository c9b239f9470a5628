package json

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// ErrRecordNotFound is returned by Import when the record file does not exist yet.
var ErrRecordNotFound = errors.New("record not found")

type IJsonClient interface {
	Export(value any, fileName string) error
	Import(fileName string, value any) error
}

type JsonClient struct {
	WorkingFolderPath string
	Logger            *logrus.Logger
}

func NewJsonClient(workingFolderPath string, logger *logrus.Logger) *JsonClient {
	return &JsonClient{
		WorkingFolderPath: workingFolderPath,
		Logger:            logger,
	}
}

// Export rewrites the whole record. The file is replaced through a rename so a
// failed write never leaves a truncated record behind.
func (jsonClient *JsonClient) Export(value any, fileName string) error {
	content, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(jsonClient.WorkingFolderPath, 0755); err != nil {
		return err
	}

	jsonFilePath := filepath.Join(jsonClient.WorkingFolderPath, fileName)
	tempFilePath := jsonFilePath + ".tmp"
	if err := os.WriteFile(tempFilePath, content, 0644); err != nil {
		return err
	}
	if err := os.Rename(tempFilePath, jsonFilePath); err != nil {
		os.Remove(tempFilePath)
		return err
	}

	jsonClient.Logger.Tracef("Record written to %s", jsonFilePath)
	return nil
}

func (jsonClient *JsonClient) Import(fileName string, value any) error {
	jsonFilePath := filepath.Join(jsonClient.WorkingFolderPath, fileName)

	content, err := os.ReadFile(jsonFilePath)
	if errors.Is(err, os.ErrNotExist) {
		return ErrRecordNotFound
	}
	if err != nil {
		return err
	}

	jsonClient.Logger.Tracef("Record read from %s", jsonFilePath)
	return json.Unmarshal(content, value)
}
