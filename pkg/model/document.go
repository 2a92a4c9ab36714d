package model

import "time"

// CreatedBy identifies the account that uploaded a document.
type CreatedBy struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Document represents an academic document in the repository.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Authors         []string  `json:"authors"`
	PublicationDate string    `json:"publicationDate,omitempty"`
	DocumentType    string    `json:"documentType"`
	ResearchArea    string    `json:"researchArea"`
	Keywords        []string  `json:"keywords"`
	FileURL         string    `json:"fileUrl"`
	FileSize        int64     `json:"fileSize"`
	FileMimeType    string    `json:"fileMimeType"`
	ViewCount       int       `json:"viewCount"`
	DownloadCount   int       `json:"downloadCount"`
	CreatedBy       CreatedBy `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DocumentPatch carries a metadata-only update. Nil fields are left unchanged.
type DocumentPatch struct {
	Title           *string  `json:"title,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	PublicationDate *string  `json:"publicationDate,omitempty"`
	DocumentType    *string  `json:"documentType,omitempty"`
	ResearchArea    *string  `json:"researchArea,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// MaxFileSize is the upload size limit in bytes.
const MaxFileSize = 10 * 1024 * 1024

// AllowedMimeTypes is the upload allow-list.
var AllowedMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

// DocumentTypes is the fixed set of accepted document types.
var DocumentTypes = []string{
	"Artigo Científico",
	"Dissertação",
	"Tese",
	"Relatório de Pesquisa",
	"Livro",
	"Capítulo de Livro",
	"Trabalho de Conclusão de Curso",
	"Monografia",
	"Projeto de Pesquisa",
	"Outros",
}

// ResearchAreas is the fixed set of accepted research areas.
var ResearchAreas = []string{
	"Ciências Ambientais",
	"Agricultura Sustentável",
	"Geologia",
	"Biodiversidade",
	"Engenharia de Petróleo",
	"Ciência dos Materiais",
	"Engenharia Civil",
	"Engenharia Elétrica",
	"Ciência da Computação",
	"Matemática",
	"Física",
	"Química",
	"Biologia",
	"Medicina",
	"Educação",
	"Outras",
}

// ValidDocumentType reports whether t belongs to the fixed document type set.
func ValidDocumentType(t string) bool {
	return contains(DocumentTypes, t)
}

// ValidResearchArea reports whether a belongs to the fixed research area set.
func ValidResearchArea(a string) bool {
	return contains(ResearchAreas, a)
}

// AllowedMimeType reports whether ct is on the upload allow-list.
func AllowedMimeType(ct string) bool {
	return contains(AllowedMimeTypes, ct)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
