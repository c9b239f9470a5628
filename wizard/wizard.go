package wizard

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/csvimport/import-wizard/analyzer"
	"github.com/csvimport/import-wizard/csv"
	"github.com/csvimport/import-wizard/importer"
	"github.com/csvimport/import-wizard/schema"
	"github.com/csvimport/import-wizard/templates"
)

// Wizard wires the four steps to one session and one controller.
type Wizard struct {
	Session    *Session
	Controller *Controller
	Start      *StartStep
	Upload     *UploadStep
	Mapping    *MappingStep
	Execute    *ExecuteStep
	Logger     *logrus.Logger
}

func New(
	templateClient templates.ITemplateClient,
	csvClient csv.ICsvClient,
	mappingClient analyzer.IMappingClient,
	schemaClient schema.ISchemaClient,
	importClient importer.IImportClient,
	maxFileSizeBytes int64,
	logger *logrus.Logger,
) *Wizard {
	session := NewSession()
	controller := NewController(session, logger)

	wizard := &Wizard{
		Session:    session,
		Controller: controller,
		Start: &StartStep{
			Templates: templateClient,
			Navigator: controller,
			Logger:    logger,
		},
		Upload: &UploadStep{
			Csv:              csvClient,
			Mapping:          mappingClient,
			Navigator:        controller,
			MaxFileSizeBytes: maxFileSizeBytes,
			ReadFile:         os.ReadFile,
			Logger:           logger,
		},
		Mapping: &MappingStep{
			Schema:    schemaClient,
			Mapping:   mappingClient,
			Templates: templateClient,
			Logger:    logger,
		},
		Execute: &ExecuteStep{
			Importer:  importClient,
			Csv:       csvClient,
			Navigator: controller,
			Logger:    logger,
		},
		Logger: logger,
	}

	controller.Register(StepStart, wizard.Start)
	controller.Register(StepUpload, wizard.Upload)
	controller.Register(StepMapping, wizard.Mapping)
	controller.Register(StepExecute, wizard.Execute)

	return wizard
}

func (wizard *Wizard) Step() Step {
	return wizard.Controller.CurrentStep
}

func (wizard *Wizard) Next() bool {
	return wizard.Controller.Next()
}

func (wizard *Wizard) Prev() bool {
	return wizard.Controller.Prev()
}

func (wizard *Wizard) GoToStep(step Step) error {
	return wizard.Controller.GoToStep(step)
}
