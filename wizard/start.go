package wizard

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/csvimport/import-wizard/analyzer"
	"github.com/csvimport/import-wizard/templates"
	"github.com/csvimport/import-wizard/types"
)

type StartStep struct {
	Templates templates.ITemplateClient
	Navigator Navigator
	Logger    *logrus.Logger
}

func (startStep *StartStep) Enter(session *Session) {
	startStep.Logger.Debugf("Start step: %d saved templates", len(startStep.Templates.List()))
}

// ChooseNew starts an import without a template and moves on to the upload.
// A file that is already loaded stays, with fresh unmapped columns.
func (startStep *StartStep) ChooseNew(session *Session) bool {
	session.Mode = types.ModeNew
	session.SelectedTemplate = nil
	session.clearMappings()
	return startStep.Navigator.Next()
}

func (startStep *StartStep) ChooseTemplateMode(session *Session) {
	session.Mode = types.ModeTemplate
}

// SelectTemplate makes the template current and moves on to the upload.
func (startStep *StartStep) SelectTemplate(session *Session, id string) error {
	template, err := startStep.Templates.Get(id)
	if err != nil {
		return fmt.Errorf("failed to select template %s: %w", id, err)
	}

	session.Mode = types.ModeTemplate
	session.SelectedTemplate = &template
	startStep.Navigator.Next()
	return nil
}

func (startStep *StartStep) DeleteTemplate(session *Session, id string) bool {
	if !startStep.Templates.Delete(id) {
		return false
	}
	if session.SelectedTemplateID() == id {
		session.SelectedTemplate = nil
	}
	return true
}

func (startStep *StartStep) RecentTemplates() ([]types.Template, int) {
	return startStep.Templates.Recent(templates.RecentPreviewMax)
}

func (startStep *StartStep) AllTemplates() []types.Template {
	all, _ := startStep.Templates.Recent(0)
	return all
}

// Leave applies the selected template to the session.
func (startStep *StartStep) Leave(session *Session) bool {
	if !session.IsTemplateMode() {
		return true
	}

	template := session.SelectedTemplate
	session.DestinationType = template.DestinationType
	session.ColumnMappings = analyzer.FromFieldMappings(template.FieldMappings)
	session.StaticFieldMappings = types.CloneStaticFieldMappings(template.StaticFieldMappings)
	session.FastTrackEligible = false
	session.MissingColumns = []string{}

	if err := startStep.Templates.Touch(template.ID); err != nil {
		startStep.Logger.Warnf("Could not mark template %s as used: %v", template.Name, err)
	}
	startStep.Logger.Infof("Using template %s", template.Name)
	return true
}
