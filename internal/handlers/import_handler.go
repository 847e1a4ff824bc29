package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"catalog-sync-service/internal/catalog"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"catalog-sync-service/internal/source"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ErrRunInProgress is reported when an import is requested while another one is running
var ErrRunInProgress = errors.New("a catalog import is already running")

// ImportDefaults are the run options used when a request does not set them
type ImportDefaults struct {
	VerifySkus bool
	LinkImages bool
	Encoding   string
}

type ImportHandler struct {
	repo      repository.CatalogRepository
	uploader  catalog.ImageUploader
	publisher catalog.EventPublisher
	defaults  ImportDefaults
	logger    *logrus.Logger

	// running admits a single synchronization at a time
	running sync.Mutex
}

// NewImportHandler creates the handler. uploader and publisher may be nil.
func NewImportHandler(repo repository.CatalogRepository, uploader catalog.ImageUploader, publisher catalog.EventPublisher, defaults ImportDefaults, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		repo:      repo,
		uploader:  uploader,
		publisher: publisher,
		defaults:  defaults,
		logger:    logger,
	}
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/catalog/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	template := models.CatalogImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

// generateCSVTemplate downloads a CSV template (headers only)
func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=catalog_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

// generateXLSXTemplate downloads an Excel template with an instructions sheet
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := source.ProductsSheet
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Catalog Import Instructions")
	f.SetCellValue("Instructions", "A3", "Rows sharing a DefaultSku become one product; every row is one SKU.")
	f.SetCellValue("Instructions", "A4", "Add one Variation:<name> column per variation dimension, e.g. Variation:Color.")
	f.SetCellValue("Instructions", "A5", "Brands are matched by exact name and created when missing.")

	f.SetCellValue("Instructions", "A7", "Column")
	f.SetCellValue("Instructions", "B7", "Description")
	f.SetCellValue("Instructions", "C7", "Required")
	f.SetCellValue("Instructions", "D7", "Type")
	f.SetCellValue("Instructions", "E7", "Example")

	for i, col := range template.Columns {
		row := i + 8
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}

	f.SetColWidth("Instructions", "A", "A", 25)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "C", "E", 15)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=catalog_import_template.xlsx")

	f.Write(c.Writer)
}

// ImportCatalog synchronizes an uploaded CSV or Excel catalog into the store
// POST /api/v1/catalog/import
func (h *ImportHandler) ImportCatalog(c *gin.Context) {
	if !h.running.TryLock() {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "RUN_IN_PROGRESS",
				Message: ErrRunInProgress.Error(),
			},
		})
		return
	}
	defer h.running.Unlock()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_REQUIRED",
				Message: "Please upload a CSV or Excel file",
			},
		})
		return
	}
	defer file.Close()

	req := models.ImportRequest{
		ValidateOnly: formBool(c, "validateOnly", false),
		VerifySkus:   formBool(c, "verifySkus", h.defaults.VerifySkus),
		LinkImages:   formBool(c, "linkImages", h.defaults.LinkImages),
	}
	encoding := c.DefaultPostForm("encoding", h.defaults.Encoding)

	format, err := source.FormatFromFilename(header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Only CSV and XLSX files are supported",
			},
		})
		return
	}

	rows, err := source.ReadRows(file, format, encoding)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "PARSE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EMPTY_FILE",
				Message: "The file contains no data rows",
			},
		})
		return
	}

	repo := h.repo
	if req.ValidateOnly {
		repo = repository.NewMemoryCatalogRepository()
	} else if err := h.repo.VerifyTables(c.Request.Context()); err != nil {
		code := "STORE_UNAVAILABLE"
		if errors.Is(err, repository.ErrTableMissing) {
			code = "TABLE_MISSING"
		}
		h.logger.WithError(err).Error("Catalog tables are not ready")
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    code,
				Message: err.Error(),
			},
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"file":         header.Filename,
		"rows":         len(rows),
		"validateOnly": req.ValidateOnly,
		"verifySkus":   req.VerifySkus,
		"linkImages":   req.LinkImages,
	}).Info("Catalog import started")

	uploader := h.uploader
	if req.ValidateOnly {
		uploader = nil
	}
	importer := catalog.NewImporter(repo, uploader, h.publisher, catalog.Options{
		VerifySkus:   req.VerifySkus,
		LinkImages:   req.LinkImages,
		ValidateOnly: req.ValidateOnly,
	}, h.logger)

	report, err := importer.Run(c.Request.Context(), rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "IMPORT_FAILED",
				Message: err.Error(),
			},
			Report: report,
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

func formBool(c *gin.Context, key string, fallback bool) bool {
	value := c.PostForm(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
