// Package validate enforces the document submission rules before any storage
// or network work happens. All violations are reported together, not one at a
// time, so a form can annotate every broken field in a single pass.
package validate

import (
	"strings"
	"unicode/utf8"

	"acervo/pkg/model"
)

const (
	MinTitleLen       = 5
	MinDescriptionLen = 10
)

// Rule violation messages. Kept user-facing (pt-BR), matching the interface copy.
const (
	MsgTitleTooShort       = "título deve ter pelo menos 5 caracteres"
	MsgDescriptionTooShort = "descrição deve ter pelo menos 10 caracteres"
	MsgAuthorRequired      = "pelo menos um autor é obrigatório"
	MsgKeywordRequired     = "pelo menos uma palavra-chave é obrigatória"
	MsgInvalidDocumentType = "tipo de documento inválido"
	MsgInvalidResearchArea = "área de pesquisa inválida"
	MsgFileRequired        = "arquivo é obrigatório"
	MsgFileTooLarge        = "arquivo excede o limite de 10MB"
	MsgFileTypeNotAllowed  = "tipo de arquivo não permitido"
)

// FileInput describes the upload accompanying a document creation.
type FileInput struct {
	Name     string
	Size     int64
	MimeType string
}

// DocumentInput is the metadata submitted on create or edit.
type DocumentInput struct {
	Title           string
	Description     string
	Authors         []string
	Keywords        []string
	DocumentType    string
	ResearchArea    string
	PublicationDate string
	File            *FileInput
}

// Error aggregates every violated rule of a submission.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return "validação falhou: " + strings.Join(e.Messages, "; ")
}

// Is lets errors.Is match any *Error regardless of its messages.
func (e *Error) Is(target error) bool {
	_, ok := target.(*Error)
	return ok
}

// Create validates a document creation payload. The file is mandatory.
func Create(in DocumentInput) error {
	msgs := check(in)
	if in.File == nil {
		msgs = append(msgs, MsgFileRequired)
	} else {
		msgs = append(msgs, checkFile(*in.File)...)
	}
	if len(msgs) > 0 {
		return &Error{Messages: msgs}
	}
	return nil
}

// Update validates a metadata-only edit. The file is optional, but when one
// is attached it must still honor the size and type limits.
func Update(in DocumentInput) error {
	msgs := check(in)
	if in.File != nil {
		msgs = append(msgs, checkFile(*in.File)...)
	}
	if len(msgs) > 0 {
		return &Error{Messages: msgs}
	}
	return nil
}

func check(in DocumentInput) []string {
	var msgs []string
	if utf8.RuneCountInString(strings.TrimSpace(in.Title)) < MinTitleLen {
		msgs = append(msgs, MsgTitleTooShort)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < MinDescriptionLen {
		msgs = append(msgs, MsgDescriptionTooShort)
	}
	if countNonEmpty(in.Authors) == 0 {
		msgs = append(msgs, MsgAuthorRequired)
	}
	if countNonEmpty(in.Keywords) == 0 {
		msgs = append(msgs, MsgKeywordRequired)
	}
	if !model.ValidDocumentType(in.DocumentType) {
		msgs = append(msgs, MsgInvalidDocumentType)
	}
	if !model.ValidResearchArea(in.ResearchArea) {
		msgs = append(msgs, MsgInvalidResearchArea)
	}
	return msgs
}

func checkFile(f FileInput) []string {
	var msgs []string
	if f.Size > model.MaxFileSize {
		msgs = append(msgs, MsgFileTooLarge)
	}
	if !model.AllowedMimeType(f.MimeType) {
		msgs = append(msgs, MsgFileTypeNotAllowed)
	}
	return msgs
}

func countNonEmpty(ss []string) int {
	n := 0
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
