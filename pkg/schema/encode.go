package schema

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON emits the canonical wire form. Targets and actuators are wrapped
// under their type name; all other kinds encode as a flat property map.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := o.appendJSON(&buf, o.Kind().Wrapped()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Serialize returns the canonical JSON text, indented when pretty is set.
func (o *Object) Serialize(pretty bool) (string, error) {
	data, err := o.MarshalJSON()
	if err != nil {
		return "", err
	}
	if !pretty {
		return string(data), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "    "); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (o *Object) String() string {
	text, err := o.Serialize(false)
	if err != nil {
		return "<" + o.TypeName() + ">"
	}
	return text
}

// appendJSON writes o, wrapping it under its type name when wrap is set.
//
// Wrapped encoding collapses to {type: value} when only the eponymous field is
// populated on a collapsible type, and otherwise nests the property map under
// the full type name.
func (o *Object) appendJSON(buf *bytes.Buffer, wrap bool) error {
	if o.opaque {
		if !wrap {
			return appendValue(buf, nil, o.payload)
		}
		buf.WriteByte('{')
		if err := appendScalar(buf, o.typ.name); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := appendValue(buf, nil, o.payload); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	}
	if !wrap {
		return o.appendFlat(buf)
	}

	buf.WriteByte('{')
	if err := appendScalar(buf, o.typ.name); err != nil {
		return err
	}
	buf.WriteByte(':')
	local := o.typ.LocalName()
	keys := o.Keys()
	if o.typ.Collapsible() && len(keys) == 1 && keys[0] == local {
		prop, _ := o.typ.Property(local)
		if err := appendValue(buf, prop, o.values[local]); err != nil {
			return err
		}
	} else if err := o.appendFlat(buf); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func (o *Object) appendFlat(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, key := range o.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendScalar(buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		prop, _ := o.typ.Property(key)
		if err := appendValue(buf, prop, o.values[key]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// appendValue encodes value in the context of the property that holds it:
// objects under a component property are wrapped, list items inherit the
// contained property, and everything else encodes flat.
func appendValue(buf *bytes.Buffer, prop Property, value any) error {
	switch v := value.(type) {
	case *Object:
		_, component := prop.(*ComponentProperty)
		return v.appendJSON(buf, component)
	case []any:
		var contained Property
		if list, ok := prop.(*ListProperty); ok {
			contained = list.contained
		}
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendValue(buf, contained, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		buf.WriteByte('{')
		for i, key := range sortedKeys(v) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendScalar(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := appendValue(buf, nil, v[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	}
	return appendScalar(buf, value)
}

func appendScalar(buf *bytes.Buffer, value any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
