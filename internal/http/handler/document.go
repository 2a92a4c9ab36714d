package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"acervo/internal/http/middleware"
	"acervo/internal/repository"
	"acervo/internal/service"
	"acervo/pkg/model"
	"acervo/pkg/validate"
)

// pageWindow parses and clamps the limit/offset query parameters.
func pageWindow(c *fiber.Ctx, defaultLimit int) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, nil
}

// ListDocuments serves the filtered, paginated document listing.
func ListDocuments(svc service.DocumentService, defaultLimit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageWindow(c, defaultLimit)
		if err != nil {
			return err
		}
		f := repository.DocumentFilter{
			Search:       c.Query("search"),
			DocumentType: c.Query("documentType"),
			ResearchArea: c.Query("researchArea"),
			Author:       c.Query("author"),
		}

		res, err := svc.List(c.UserContext(), f, limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(listPayload{
			Success: true,
			Data:    res.Items,
			Pagination: pagination{
				Total:  res.Total,
				Limit:  limit,
				Offset: offset,
				Pages:  res.PageCount,
			},
		})
	}
}

// GetDocument serves a single document by ID.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return writeData(c, fiber.StatusOK, doc)
	}
}

// metaFromForm collects the document metadata fields of a multipart form.
// Authors and keywords accept both repeated fields and comma-separated values.
func metaFromForm(c *fiber.Ctx, fh *multipart.FileHeader) validate.DocumentInput {
	in := validate.DocumentInput{
		Title:           c.FormValue("title"),
		Description:     c.FormValue("description"),
		Authors:         formList(c, "authors"),
		Keywords:        formList(c, "keywords"),
		DocumentType:    c.FormValue("documentType"),
		ResearchArea:    c.FormValue("researchArea"),
		PublicationDate: c.FormValue("publicationDate"),
	}
	if fh != nil {
		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		in.File = &validate.FileInput{Name: fh.Filename, Size: fh.Size, MimeType: ct}
	}
	return in
}

func formList(c *fiber.Ctx, field string) []string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	var out []string
	for _, v := range form.Value[field] {
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// UploadDocument handles multipart document creation (field name: file).
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, _ := middleware.CurrentUser(c)

		fh, _ := c.FormFile("file")
		meta := metaFromForm(c, fh)

		in := service.UploadInput{Meta: meta, Actor: actor}
		if fh != nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()
			in.Content = f
		}

		doc, err := svc.Upload(c.UserContext(), in)
		if err != nil {
			var verr *validate.Error
			if errors.As(err, &verr) {
				return writeValidationError(c, verr.Messages)
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return writeData(c, fiber.StatusCreated, doc)
	}
}

// UpdateDocument applies a metadata-only patch from a JSON body.
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch model.DocumentPatch
		if err := c.BodyParser(&patch); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		doc, err := svc.Update(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			var verr *validate.Error
			switch {
			case errors.As(err, &verr):
				return writeValidationError(c, verr.Messages)
			case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrIDRequired):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return writeData(c, fiber.StatusOK, doc)
	}
}

// DeleteDocument removes a document and its stored file.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument streams the stored file with its original filename.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Download(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		// fasthttp closes the stream once the body has been written.
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.Filename))
		if res.ContentType != "" {
			c.Set(fiber.HeaderContentType, res.ContentType)
		}
		return c.SendStream(res.Content, int(res.Size))
	}
}

// DocumentFilters serves the per-type and per-area counters for the filter
// sidebar.
func DocumentFilters(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.FilterStats(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return writeData(c, fiber.StatusOK, stats)
	}
}
