package agenda

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/agenda-go/internal/utils"
)

// Schema is the bundled JSON schema of the agenda document.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Agenda",
  "type": "object",
  "properties": {
    "task_lists": {
      "type": "object",
      "additionalProperties": {"$ref": "#/$defs/taskList"}
    },
    "notes": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "schedule": {"type": "object"},
    "events": {
      "type": "array",
      "items": {"$ref": "#/$defs/event"}
    }
  },
  "$defs": {
    "taskList": {
      "type": "object",
      "required": ["tasks"],
      "properties": {
        "tasks": {"type": "array", "items": {"$ref": "#/$defs/task"}}
      }
    },
    "task": {
      "type": "object",
      "required": ["title", "time"],
      "properties": {
        "id": {"type": "string"},
        "title": {"type": "string"},
        "time": {"type": "string"},
        "notified": {"type": "boolean"},
        "completed": {"type": "boolean"}
      }
    },
    "event": {
      "type": "object",
      "required": ["title", "date"],
      "properties": {
        "id": {"type": "string"},
        "title": {"type": "string"},
        "date": {"type": "string"},
        "time": {"type": "string"},
        "description": {"type": "string"},
        "notified": {"type": "boolean"}
      }
    }
  }
}`

var bundledSchema = jsonschema.MustCompileString("agenda.schema.json", Schema)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError is one problem found in an agenda document or record.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationOptions controls Validate.
type ValidationOptions struct {
	// SchemaPath replaces the bundled schema with a schema file.
	SchemaPath string
}

// ValidationResult collects the outcome of Validate.
type ValidationResult struct {
	Valid    bool
	Errors   []error
	Warnings []string
}

// ValidateDocument checks raw agenda data against the schema and then every
// record against its field rules (time formats, ids).
func ValidateDocument(data []byte, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{Valid: true}

	schema := bundledSchema
	if opts.SchemaPath != "" {
		s, err := compileSchemaFile(opts.SchemaPath)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("using bundled schema: %v", err))
		} else {
			schema = s
		}
	}
	if errs := validateSchema(schema, data); len(errs) > 0 {
		result.Valid = false
		result.Errors = errs
		return result
	}

	f := NewFile()
	if err := json.Unmarshal(data, f); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: err})
		return result
	}
	if errs := f.validateRecords(); len(errs) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, errs...)
	}
	return result
}

func compileSchemaFile(path string) (*jsonschema.Schema, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("schema file: %w", err)
	}
	c := jsonschema.NewCompiler()
	c.AssertFormat = true
	return c.Compile(abs)
}

func validateSchema(schema *jsonschema.Schema, data []byte) []error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return []error{&ValidationError{Err: fmt.Errorf("parse: %w", err)}}
	}
	err := schema.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []error{&ValidationError{Err: err}}
	}
	var errs []error
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]error) {
	if len(ve.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: utils.PointerPath(ve.InstanceLocation),
			Err:  errors.New(ve.Message),
		})
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// validateRecords applies the struct rules to every task and event and
// reports ids used twice.
func (f *File) validateRecords() []error {
	var errs []error
	seen := map[string]string{}
	checkID := func(id, path string) {
		if id == "" {
			return
		}
		if prev, dup := seen[id]; dup {
			errs = append(errs, &ValidationError{Path: path + ".id", Err: fmt.Errorf("duplicate of %s", prev)})
			return
		}
		seen[id] = path
	}

	for _, title := range f.ListTitles() {
		for i, task := range f.TaskLists[title].Tasks {
			path := fmt.Sprintf("task_lists.%s.tasks[%d]", title, i)
			errs = append(errs, structErrors(path, task)...)
			checkID(task.ID, path)
		}
	}
	for i, ev := range f.Events {
		path := fmt.Sprintf("events[%d]", i)
		errs = append(errs, structErrors(path, ev)...)
		checkID(ev.ID, path)
	}
	return errs
}

// structErrors runs the validator on v and prefixes field paths.
func structErrors(prefix string, v any) []error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{&ValidationError{Path: prefix, Err: err}}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Field()
		if prefix != "" {
			path = prefix + "." + path
		}
		out = append(out, &ValidationError{Path: path, Err: errors.New(ruleMessage(fe))})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return fmt.Sprintf("%q does not match %s", fe.Value(), fe.Param())
	case "uuid":
		return fmt.Sprintf("%q is not a UUID", fe.Value())
	default:
		return fmt.Sprintf("fails %s", fe.Tag())
	}
}
