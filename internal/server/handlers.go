package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/output"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// unitView is a unit without its text unless the caller asks for it.
type unitView struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	Range string `json:"range,omitempty"`
	Bytes int    `json:"bytes"`
	Text  string `json:"text,omitempty"`
}

// ListSheets reports the units an uploaded workbook splits into.
// POST /api/v1/sheets
func (s *Server) ListSheets(c *gin.Context) {
	opts, err := s.requestOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wb, ok := s.readUpload(c, opts)
	if !ok {
		return
	}

	withText := formBool(c, "include_text", false)
	units := make([]unitView, len(wb.Units))
	for i, u := range wb.Units {
		units[i] = unitView{Name: u.Name, Index: u.Index, Range: u.Range, Bytes: len(u.Text)}
		if withText {
			units[i].Text = u.Text
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"book_name":    wb.BookName,
		"consolidated": wb.Consolidated,
		"units":        units,
	})
}

// ProposeSchema infers a schema for every unit without extracting rows.
// POST /api/v1/schema
func (s *Server) ProposeSchema(c *gin.Context) {
	opts, err := s.requestOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wb, ok := s.readUpload(c, opts)
	if !ok {
		return
	}
	p, err := sheetinfer.New(s.client, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	schemas, failures, err := p.ProposeSchemas(c.Request.Context(), wb.Units)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"book_name": wb.BookName,
		"schemas":   schemas,
		"failures":  failures,
	})
}

// Clean runs the full pipeline over an uploaded workbook. The form field
// format selects json (default) or xlsx output.
// POST /api/v1/clean
func (s *Server) Clean(c *gin.Context) {
	opts, err := s.requestOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	format := strings.ToLower(c.DefaultPostForm("format", "json"))
	if format != "json" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown format %q", format)})
		return
	}
	header := output.HeaderMode(c.DefaultPostForm("header", string(output.HeaderName)))
	if header != output.HeaderName && header != output.HeaderOriginal {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown header mode %q", header)})
		return
	}

	wb, ok := s.readUpload(c, opts)
	if !ok {
		return
	}
	p, err := sheetinfer.New(s.client, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	result, err := p.RunWorkbook(c.Request.Context(), wb)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if format == "json" {
		c.JSON(http.StatusOK, output.Report{OverallResult: result, Summary: result.Summary()})
		return
	}

	f, err := output.BuildWorkbook(result, output.WorkbookOptions{Header: header})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	c.Header("Content-Disposition", contentDisposition(cleanedName(wb.BookName)))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		s.logger.Error("write workbook", "error", err)
	}
}

// requestOptions applies the background, consolidate and print_areas form
// fields over the server defaults.
func (s *Server) requestOptions(c *gin.Context) (sheetinfer.Options, error) {
	opts := s.opts
	if bg, ok := c.GetPostForm("background"); ok {
		opts.Background = bg
	}
	if raw, ok := c.GetPostForm("consolidate"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid consolidate value %q", raw)
		}
		opts.Consolidate = v
	}
	if raw, ok := c.GetPostForm("print_areas"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid print_areas value %q", raw)
		}
		opts.PrintAreas = v
	}
	return opts, nil
}

// readUpload loads the multipart "file" field. On failure it has already
// written the response.
func (s *Server) readUpload(c *gin.Context, opts sheetinfer.Options) (*models.Workbook, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload field \"file\""})
		return nil, false
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	defer file.Close()

	wb, err := sheetinfer.LoadWorkbookReader(file, filepath.Base(fh.Filename), opts)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return nil, false
	}
	return wb, true
}

func statusFor(err error) int {
	var dup *sheetinfer.DuplicateUnitError
	switch {
	case errors.Is(err, sheetinfer.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, sheetinfer.ErrNoUnits):
		return http.StatusUnprocessableEntity
	case errors.As(err, &dup):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func formBool(c *gin.Context, key string, def bool) bool {
	raw, ok := c.GetPostForm(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func cleanedName(bookName string) string {
	base := strings.TrimSuffix(bookName, filepath.Ext(bookName))
	if base == "" {
		base = "workbook"
	}
	return base + "_cleaned.xlsx"
}

func contentDisposition(filename string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > 0x7e || r < 0x20 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", ascii, url.PathEscape(filename))
}
