package report

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/partsdesk/tosshin/models"
	"github.com/xuri/excelize/v2"
)

const (
	// WorkbookFileName is the fixed name of the output workbook.
	WorkbookFileName = "Tosshin data.xlsx"

	sheetName = "Tosshin Data"
)

// Column order of the report sheet. The URL column doubles as the
// hyperlink target of the maker cell.
var headers = []string{"Maker", "Keyword", "Weight", "Price", "URL"}

// Workbook accumulates result rows and persists them as a single
// Excel file on Save.
type Workbook struct {
	file     *excelize.File
	path     string
	rowCount int

	currencyStyle int
	linkStyle     int

	// colWidths tracks the widest content per column for the
	// autofit-style sizing applied on Save.
	colWidths []int

	// RetryPrompt is consulted when saving fails. Returning true
	// retries the save; false gives up and surfaces the error. The
	// default implementation asks the operator on stdin to close the
	// file and press Enter.
	RetryPrompt func(reason string) bool
}

// NewWorkbook creates the workbook, its single worksheet, and the
// styled header row.
func NewWorkbook(outputDir string) (*Workbook, error) {
	path := filepath.Join(outputDir, WorkbookFileName)
	slog.Info("creating workbook", "path", path)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeWorkbook, "failed to name worksheet", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeWorkbook, "failed to create header style", err)
	}

	currencyFmt := "$#,##0.00"
	currencyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currencyFmt})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeWorkbook, "failed to create currency style", err)
	}

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single"},
	})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeWorkbook, "failed to create hyperlink style", err)
	}

	w := &Workbook{
		file:          f,
		path:          path,
		currencyStyle: currencyStyle,
		linkStyle:     linkStyle,
		colWidths:     make([]int, len(headers)),
		RetryPrompt:   stdinRetryPrompt,
	}

	// Header row always lands before any data row.
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeWorkbook, "failed to write header row", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", cellName(len(headers), 1), headerStyle); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeWorkbook, "failed to style header row", err)
	}
	w.rowCount = 1
	w.trackWidths(headers)

	return w, nil
}

// RowCount reports the rows written so far, header included.
func (w *Workbook) RowCount() int {
	return w.rowCount
}

// AppendRow writes one result row below the rows written so far.
// The maker cell is hyperlinked to the row's source URL and the price
// cell is written as a currency number when it parses as one.
func (w *Workbook) AppendRow(row models.ResultRow) error {
	r := w.rowCount + 1

	values := []string{row.Maker, row.Keyword, row.Weight, row.Price, row.URL}
	for i, v := range values {
		if err := w.file.SetCellValue(sheetName, cellName(i+1, r), v); err != nil {
			return models.NewScrapeError(
				models.ErrCodeWorkbook,
				fmt.Sprintf("failed to write row %d", r),
				err)
		}
	}

	if row.URL != "" {
		makerCell := cellName(1, r)
		if err := w.file.SetCellHyperLink(sheetName, makerCell, row.URL, "External"); err != nil {
			return models.NewScrapeError(
				models.ErrCodeWorkbook,
				fmt.Sprintf("failed to link maker cell in row %d", r),
				err)
		}
		_ = w.file.SetCellStyle(sheetName, makerCell, makerCell, w.linkStyle)
	}

	if amount, ok := parsePrice(row.Price); ok {
		priceCell := cellName(4, r)
		if err := w.file.SetCellValue(sheetName, priceCell, amount); err != nil {
			return models.NewScrapeError(
				models.ErrCodeWorkbook,
				fmt.Sprintf("failed to write price in row %d", r),
				err)
		}
		_ = w.file.SetCellStyle(sheetName, priceCell, priceCell, w.currencyStyle)
	}

	w.rowCount++
	w.trackWidths(values)
	return nil
}

// Save sizes the columns to their content and writes the workbook to
// disk, retrying while the operator keeps the file open elsewhere.
func (w *Workbook) Save() error {
	slog.Info("finalizing workbook", "path", w.path, "rows", w.rowCount)

	for i, width := range w.colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = w.file.SetColWidth(sheetName, col, col, fitWidth(width))
	}

	for {
		err := w.file.SaveAs(w.path)
		if err == nil {
			slog.Info("workbook saved", "path", w.path)
			return w.file.Close()
		}

		reason := "an unexpected error occurred while saving the workbook"
		if errors.Is(err, fs.ErrPermission) {
			reason = "the workbook appears to be open in another program"
		}
		slog.Error("failed to save workbook", "path", w.path, "error", err)

		if !w.RetryPrompt(reason) {
			_ = w.file.Close()
			return models.NewScrapeError(models.ErrCodeWorkbook, "failed to save workbook", err)
		}
	}
}

// trackWidths records the widest content seen per column.
func (w *Workbook) trackWidths(values []string) {
	for i, v := range values {
		if i < len(w.colWidths) && len(v) > w.colWidths[i] {
			w.colWidths[i] = len(v)
		}
	}
}

// fitWidth converts a content length to a column width, clamped so a
// single long URL cannot blow the sheet out.
func fitWidth(contentLen int) float64 {
	const (
		minWidth = 10
		maxWidth = 80
		padding  = 2
	)
	width := contentLen + padding
	if width < minWidth {
		width = minWidth
	}
	if width > maxWidth {
		width = maxWidth
	}
	return float64(width)
}

// cellName converts 1-based column/row coordinates to an A1 reference.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// parsePrice extracts a numeric amount from a price string such as
// "$1,234.56" or "1234". Strings that do not look like a single
// amount are kept as text.
func parsePrice(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimLeft(cleaned, "$¥€£ ")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// stdinRetryPrompt asks the operator to close the workbook and press
// Enter, then retries. It only gives up when stdin is closed.
func stdinRetryPrompt(reason string) bool {
	fmt.Fprintf(os.Stderr, "%s.\nPlease close the Excel file if it is open and press Enter to retry...", reason)
	reader := bufio.NewReader(os.Stdin)
	_, err := reader.ReadString('\n')
	return err == nil
}
