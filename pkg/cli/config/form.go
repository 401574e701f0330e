package config

import (
	_ "embed"
	"log/slog"
	"os"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	domainConfig "github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

//go:embed default_form.toml
var defaultFormTOML []byte

var fieldIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// FormFile is the TOML layout of the review form configuration
type FormFile struct {
	Title         string           `toml:"title"`
	Placeholder   string           `toml:"placeholder"`
	AllowedEmails []string         `toml:"allowed_emails"`
	Fields        []FieldEntry     `toml:"fields"`
	Display       []DisplayEntry   `toml:"display"`
	Milestones    []MilestoneEntry `toml:"milestones"`
}

// FieldEntry represents one SME field in the form file
type FieldEntry struct {
	ID          string   `toml:"id"`
	Label       string   `toml:"label"`
	Type        string   `toml:"type"`
	Required    bool     `toml:"required"`
	Description string   `toml:"description"`
	AIColumn    string   `toml:"ai_column"`
	AILabel     string   `toml:"ai_label"`
	Options     []string `toml:"options"`
}

// DisplayEntry represents a read-only AI column in the form file
type DisplayEntry struct {
	Column string `toml:"column"`
	Label  string `toml:"label"`
}

// MilestoneEntry represents an encouragement message in the form file
type MilestoneEntry struct {
	Position int    `toml:"position"`
	Message  string `toml:"message"`
}

// Validate checks if the FieldEntry is valid
func (f *FieldEntry) Validate() error {
	if !fieldIDPattern.MatchString(f.ID) {
		return goerr.Wrap(ErrInvalidFieldID, "field ID must be lower snake case", goerr.V(FieldIDKey, f.ID))
	}
	if f.Label == "" {
		return goerr.Wrap(ErrMissingLabel, "field label is required", goerr.V(FieldIDKey, f.ID))
	}

	ft := types.FieldType(f.Type)
	if !ft.IsValid() {
		return goerr.Wrap(ErrInvalidFieldType, "unknown field type",
			goerr.V(FieldIDKey, f.ID), goerr.V(FieldTypeKey, f.Type))
	}

	if ft == types.FieldTypeSelect || ft == types.FieldTypeMultiSelect {
		if len(f.Options) == 0 {
			return goerr.Wrap(ErrMissingOptions, "no options", goerr.V(FieldIDKey, f.ID))
		}
		seen := make(map[string]bool, len(f.Options))
		for _, opt := range f.Options {
			if opt == "" {
				return goerr.Wrap(ErrInvalidConfig, "empty option", goerr.V(FieldIDKey, f.ID))
			}
			if seen[opt] {
				return goerr.Wrap(ErrDuplicateOption, "option listed twice",
					goerr.V(FieldIDKey, f.ID), goerr.V(OptionKey, opt))
			}
			seen[opt] = true
		}
	} else if len(f.Options) > 0 {
		return goerr.Wrap(ErrInvalidConfig, "options are only allowed on select fields",
			goerr.V(FieldIDKey, f.ID), goerr.V(FieldTypeKey, f.Type))
	}

	return nil
}

// Validate checks if the FormFile is valid
func (c *FormFile) Validate() error {
	if len(c.Fields) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "at least one field is required")
	}

	fieldIDs := make(map[string]bool, len(c.Fields))
	for i := range c.Fields {
		f := &c.Fields[i]
		if err := f.Validate(); err != nil {
			return goerr.Wrap(err, "invalid field", goerr.V(FieldIndexKey, i))
		}
		if fieldIDs[f.ID] {
			return goerr.Wrap(ErrDuplicateFieldID, "field ID listed twice", goerr.V(FieldIDKey, f.ID))
		}
		fieldIDs[f.ID] = true
	}

	for _, d := range c.Display {
		if d.Column == "" || d.Label == "" {
			return goerr.Wrap(ErrInvalidConfig, "display column needs column and label", goerr.V("column", d.Column))
		}
	}

	positions := make(map[int]bool, len(c.Milestones))
	for _, m := range c.Milestones {
		if m.Position < 1 || m.Message == "" || positions[m.Position] {
			return goerr.Wrap(ErrInvalidMilestone, "milestone needs a unique position >= 1 and a message",
				goerr.V(PositionKey, m.Position))
		}
		positions[m.Position] = true
	}

	for _, e := range c.AllowedEmails {
		if err := types.Email(e).Validate(); err != nil {
			return goerr.Wrap(ErrInvalidAllowEmail, "malformed allow-list entry", goerr.V(EmailKey, e))
		}
	}

	return nil
}

// ParseFormFile decodes and validates a form configuration
func ParseFormFile(data []byte) (*FormFile, error) {
	var file FormFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML form config")
	}
	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "form config validation failed")
	}
	return &file, nil
}

// LoadFormFile reads a form configuration from path, or the embedded default
// when path is empty
func LoadFormFile(path string) (*FormFile, error) {
	if path == "" {
		return ParseFormFile(defaultFormTOML)
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read form config file", goerr.V(ConfigPathKey, path))
	}

	file, err := ParseFormFile(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid form config", goerr.V(ConfigPathKey, path))
	}
	return file, nil
}

// ToDomainFormSchema converts FormFile to the domain FormSchema
func (c *FormFile) ToDomainFormSchema() *domainConfig.FormSchema {
	fields := make([]domainConfig.FieldDefinition, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = domainConfig.FieldDefinition{
			ID:          f.ID,
			Label:       f.Label,
			Type:        types.FieldType(f.Type),
			Required:    f.Required,
			Description: f.Description,
			AIColumn:    f.AIColumn,
			AILabel:     f.AILabel,
			Options:     append([]string(nil), f.Options...),
		}
	}

	display := make([]domainConfig.DisplayColumn, len(c.Display))
	for i, d := range c.Display {
		display[i] = domainConfig.DisplayColumn{Column: d.Column, Label: d.Label}
	}

	milestones := make([]domainConfig.Milestone, len(c.Milestones))
	for i, m := range c.Milestones {
		milestones[i] = domainConfig.Milestone{Position: m.Position, Message: m.Message}
	}

	return &domainConfig.FormSchema{
		Title:       c.Title,
		Placeholder: c.Placeholder,
		Fields:      fields,
		Display:     display,
		Milestones:  milestones,
	}
}

// Form holds CLI flags for the review form and reviewer allow-list
type Form struct {
	path          string
	allowedEmails []string
}

func (f *Form) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "form-config",
			Usage:       "Path to the review form TOML; the built-in form is used when empty",
			Category:    "Form",
			Sources:     cli.EnvVars("HLP_FORM_CONFIG"),
			Destination: &f.path,
		},
		&cli.StringSliceFlag{
			Name:        "allowed-email",
			Usage:       "Reviewer e-mail permitted to log in; replaces the form file list when set",
			Category:    "Form",
			Sources:     cli.EnvVars("HLP_ALLOWED_EMAILS"),
			Destination: &f.allowedEmails,
		},
	}
}

func (f Form) LogValue() slog.Value {
	path := f.path
	if path == "" {
		path = "(built-in)"
	}
	return slog.GroupValue(
		slog.String("path", path),
		slog.Int("allowed_email_flags", len(f.allowedEmails)),
	)
}

// Configure loads the form and the allow-list
func (f *Form) Configure() (*domainConfig.FormSchema, *model.AllowList, error) {
	file, err := LoadFormFile(f.path)
	if err != nil {
		return nil, nil, err
	}

	emails := file.AllowedEmails
	if len(f.allowedEmails) > 0 {
		for _, e := range f.allowedEmails {
			if err := types.Email(e).Validate(); err != nil {
				return nil, nil, goerr.Wrap(ErrInvalidAllowEmail, "malformed --allowed-email", goerr.V(EmailKey, e))
			}
		}
		emails = f.allowedEmails
	}

	allowList := model.NewAllowList(emails...)
	if allowList.Len() == 0 {
		return nil, nil, goerr.Wrap(ErrEmptyAllowList, "no reviewer can log in")
	}

	return file.ToDomainFormSchema(), allowList, nil
}
