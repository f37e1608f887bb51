package nodes

import (
	"bytes"
	"encoding/json"
	"maps"
	"reflect"
	"strings"
)

// rawCarrier is implemented by the typed variants that remember the
// payload they were decoded from.
type rawCarrier interface {
	withRaw(raw json.RawMessage) Data
}

// mergeRaw encodes fields over the payload a variant was decoded from.
// Keys the variant does not model are kept verbatim. A modelled key the
// typed encoding omits keeps its received form while that form is still
// a zero value ("", [], {}, false, 0, null), so editor defaults survive
// export; otherwise it is dropped.
func mergeRaw(raw json.RawMessage, fields any) ([]byte, error) {
	typed, err := json.Marshal(fields)
	if err != nil || isEmptyJSON(raw) {
		return typed, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return typed, nil
	}
	var over map[string]json.RawMessage
	if err := json.Unmarshal(typed, &over); err != nil {
		return nil, err
	}

	for _, k := range jsonKeys(reflect.TypeOf(fields)) {
		if _, ok := over[k]; ok {
			continue
		}
		if cur, ok := out[k]; ok && !isZeroJSON(cur) {
			delete(out, k)
		}
	}
	maps.Copy(out, over)
	return json.Marshal(out)
}

// jsonKeys lists the object keys a struct type encodes to.
func jsonKeys(t reflect.Type) []string {
	keys := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		keys = append(keys, name)
	}
	return keys
}

func isZeroJSON(b json.RawMessage) bool {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return false
	}
	switch buf.String() {
	case `null`, `""`, `[]`, `{}`, `false`, `0`:
		return true
	}
	return false
}
