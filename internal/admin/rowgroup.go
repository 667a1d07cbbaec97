package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// RowField is one input of a repeatable row.
type RowField struct {
	Key         string
	Class       string
	Placeholder string
}

// RowSchema describes a repeatable row group and where the form shows it.
type RowSchema struct {
	// Name is the group name used in input names and actions.
	Name string
	// FormField is the multipart field the serialized rows go to.
	FormField string
	// WrapKey nests the rows one level down: {"<WrapKey>": [...]}.
	WrapKey string

	ListID      string
	AddButtonID string
	ItemClass   string
	RemoveClass string

	Fields []RowField
}

// Single reports whether rows hold one bare value instead of an object.
func (s RowSchema) Single() bool {
	return len(s.Fields) == 1 && s.Fields[0].Key == ""
}

// Row holds one value per schema field, in schema order.
type Row []string

func (r Row) empty() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// RowGroup is the state of one repeatable group.
type RowGroup struct {
	Schema RowSchema
	Rows   []Row
}

// NewRowGroup starts a group with one empty row.
func NewRowGroup(schema RowSchema) *RowGroup {
	g := &RowGroup{Schema: schema}
	g.Add()
	return g
}

func (g *RowGroup) Add() {
	g.Rows = append(g.Rows, make(Row, len(g.Schema.Fields)))
}

// Remove drops row i. Out of range indexes are ignored.
func (g *RowGroup) Remove(i int) {
	if i < 0 || i >= len(g.Rows) {
		return
	}
	g.Rows = append(g.Rows[:i], g.Rows[i+1:]...)
}

// Collect returns the trimmed rows that have at least one non-empty value.
func (g *RowGroup) Collect() []Row {
	out := make([]Row, 0, len(g.Rows))
	for _, row := range g.Rows {
		if row.empty() {
			continue
		}
		trimmed := make(Row, len(row))
		for i, v := range row {
			trimmed[i] = strings.TrimSpace(v)
		}
		out = append(out, trimmed)
	}
	return out
}

// JSON serializes the collected rows. ok is false when there is nothing to
// send, in which case the field is left out of the submission.
func (g *RowGroup) JSON() (string, bool, error) {
	rows := g.Collect()
	if len(rows) == 0 {
		return "", false, nil
	}

	var buf bytes.Buffer
	if g.Schema.WrapKey != "" {
		key, _ := json.Marshal(g.Schema.WrapKey)
		buf.WriteByte('{')
		buf.Write(key)
		buf.WriteByte(':')
	}

	buf.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := g.writeRow(&buf, row); err != nil {
			return "", false, err
		}
	}
	buf.WriteByte(']')

	if g.Schema.WrapKey != "" {
		buf.WriteByte('}')
	}
	return buf.String(), true, nil
}

// writeRow keeps the schema's key order, which a map would not.
func (g *RowGroup) writeRow(buf *bytes.Buffer, row Row) error {
	if g.Schema.Single() {
		v, err := json.Marshal(row[0])
		if err != nil {
			return fmt.Errorf("failed to encode %s row: %w", g.Schema.Name, err)
		}
		buf.Write(v)
		return nil
	}

	buf.WriteByte('{')
	for i, field := range g.Schema.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(field.Key)
		v, err := json.Marshal(row[i])
		if err != nil {
			return fmt.Errorf("failed to encode %s row: %w", g.Schema.Name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return nil
}

// InputName is the form name of field j in row i, e.g. faqs[0][question] or
// features[2].
func (g *RowGroup) InputName(i, j int) string {
	if g.Schema.Single() {
		return fmt.Sprintf("%s[%d]", g.Schema.Name, i)
	}
	return fmt.Sprintf("%s[%d][%s]", g.Schema.Name, i, g.Schema.Fields[j].Key)
}

var rowInputRe = regexp.MustCompile(`^([A-Za-z0-9_]+)\[(\d+)\](?:\[([A-Za-z0-9_]+)\])?$`)

// rowGroupFromValues rebuilds a group from posted inputs, keeping row order by
// index. A group with no posted rows comes back empty.
func rowGroupFromValues(schema RowSchema, values url.Values) *RowGroup {
	byIndex := make(map[int]Row)
	for name, vals := range values {
		m := rowInputRe.FindStringSubmatch(name)
		if m == nil || m[1] != schema.Name || len(vals) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		col := fieldIndex(schema, m[3])
		if col < 0 {
			continue
		}

		row, ok := byIndex[idx]
		if !ok {
			row = make(Row, len(schema.Fields))
			byIndex[idx] = row
		}
		row[col] = vals[0]
	}

	indexes := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	g := &RowGroup{Schema: schema, Rows: make([]Row, 0, len(indexes))}
	for _, idx := range indexes {
		g.Rows = append(g.Rows, byIndex[idx])
	}
	return g
}

func fieldIndex(schema RowSchema, key string) int {
	for i, f := range schema.Fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}
