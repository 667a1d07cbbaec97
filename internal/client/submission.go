package client

import (
	"bytes"

	"resty.dev/v3"
)

// Field is one named text part of a multipart submission.
type Field struct {
	Name  string
	Value string
}

// Upload is one file part of a multipart submission.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Content     []byte
}

// Submission is an ordered multipart payload: text fields first, then files.
type Submission struct {
	Fields []Field
	Files  []Upload
}

func (s *Submission) Add(name, value string) {
	s.Fields = append(s.Fields, Field{Name: name, Value: value})
}

func (s *Submission) Attach(u Upload) {
	s.Files = append(s.Files, u)
}

// Value returns the first value of the named field.
func (s *Submission) Value(name string) (string, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func (s *Submission) multipartFields() []*resty.MultipartField {
	fields := make([]*resty.MultipartField, 0, len(s.Fields)+len(s.Files))
	for _, f := range s.Fields {
		fields = append(fields, &resty.MultipartField{
			Name:   f.Name,
			Values: []string{f.Value},
		})
	}
	for _, u := range s.Files {
		fields = append(fields, &resty.MultipartField{
			Name:        u.Field,
			FileName:    u.FileName,
			ContentType: u.ContentType,
			Reader:      bytes.NewReader(u.Content),
			FileSize:    int64(len(u.Content)),
		})
	}
	return fields
}

// CreateResult is the backend's answer to a successful creation.
type CreateResult struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
