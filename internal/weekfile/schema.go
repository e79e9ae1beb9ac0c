package weekfile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/agenda-go/internal/utils"
)

const schemaURL = "schedule.schema.json"

// Schema is the JSON schema of the schedule document.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Weekly schedule",
  "type": "object",
  "properties": {
    "LUNDI": {"$ref": "#/$defs/day"},
    "MARDI": {"$ref": "#/$defs/day"},
    "MERCREDI": {"$ref": "#/$defs/day"},
    "JEUDI": {"$ref": "#/$defs/day"},
    "VENDREDI": {"$ref": "#/$defs/day"},
    "SAMEDI": {"$ref": "#/$defs/day"},
    "DIMANCHE": {"$ref": "#/$defs/day"}
  },
  "additionalProperties": false,
  "$defs": {
    "day": {
      "type": "array",
      "items": {"$ref": "#/$defs/interval"}
    },
    "interval": {
      "type": "object",
      "required": ["start_time", "end_time", "course", "is_temporary"],
      "properties": {
        "start_time": {"$ref": "#/$defs/clock"},
        "end_time": {"$ref": "#/$defs/clock"},
        "course": {"type": "string"},
        "is_temporary": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "clock": {
      "type": "string",
      "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"
    }
  }
}`

var compiled = jsonschema.MustCompileString(schemaURL, Schema)

// validate checks data against Schema. The first leaf violation is turned
// into a CorruptStateError pointing at the offending day and record.
func validate(source string, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return corrupt(source, "", -1, fmt.Errorf("parse: %w", err))
	}
	err := compiled.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return corrupt(source, "", -1, err)
	}
	leaf := firstLeaf(ve)
	day, index := locate(leaf.InstanceLocation)
	msg := leaf.Message
	if path := utils.PointerPath(leaf.InstanceLocation); path != "" {
		msg = path + ": " + msg
	}
	return corrupt(source, day, index, errors.New(msg))
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

func locate(ptr string) (day string, index int) {
	segs := utils.PointerSegments(ptr)
	index = -1
	if len(segs) > 0 && strings.ToUpper(segs[0]) == segs[0] {
		day = segs[0]
	}
	if len(segs) > 1 {
		if i, err := strconv.Atoi(segs[1]); err == nil {
			index = i
		}
	}
	return day, index
}

// Validate reports every schema violation in data, one error per leaf.
// It is meant for diagnostics; Decode stops at the first problem.
func Validate(data []byte) []error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return []error{fmt.Errorf("parse: %w", err)}
	}
	err := compiled.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []error{err}
	}
	var errs []error
	collectLeaves(ve, &errs)
	return errs
}

func collectLeaves(ve *jsonschema.ValidationError, errs *[]error) {
	if len(ve.Causes) == 0 {
		*errs = append(*errs, fmt.Errorf("%s: %s", utils.PointerPath(ve.InstanceLocation), ve.Message))
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, errs)
	}
}
