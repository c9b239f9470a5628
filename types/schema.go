package types

type DestinationType struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type DestinationField struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Field    string `yaml:"field"`
	Required bool   `yaml:"required"`
}

type Mode string

const (
	ModeNew      Mode = "new"
	ModeTemplate Mode = "template"
)

func (mode Mode) IsValidMode() bool {
	return mode == ModeNew || mode == ModeTemplate
}
