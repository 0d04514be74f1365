// Package export renders saved splits as spreadsheets for offline review.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/settlement"
)

const (
	SplitsSheet = "splits"
	SharesSheet = "shares"
	ItemsSheet  = "items"
)

// moneyFormat is excelize's built-in "0.00" number format.
const moneyFormat = 2

// BuildSplitsXLSX renders splits into a workbook with one sheet per level:
// split summaries, participant shares and receipt items. names maps
// participant IDs to display names; IDs missing from it are written as is.
// The aggregate status column is computed from callerID's point of view.
func BuildSplitsXLSX(splits []*models.Split, names map[string]string, callerID string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SplitsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, sheet := range []string{SharesSheet, ItemsSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	name := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}

	w := &sheetWriter{f: f}
	w.header(SplitsSheet, bold, "Split", "Transaction", "Method", "Total", "Created", "Status", "Settled", "Participants")
	w.header(SharesSheet, bold, "Split", "Participant", "Amount", "Percentage", "Status")
	w.header(ItemsSheet, bold, "Split", "Item", "Quantity", "Unit price", "Line total", "Assigned to")

	splitRow, shareRow, itemRow := 2, 2, 2
	for _, s := range splits {
		sum := settlement.Aggregate(s.Shares, callerID)
		w.row(SplitsSheet, splitRow,
			s.ID,
			s.TransactionID,
			string(s.Method),
			s.Total.InexactFloat64(),
			time.Unix(s.CreatedAt, 0).UTC().Format(time.RFC3339),
			string(sum.Status),
			sum.SettledCount,
			sum.TotalParticipants,
		)
		w.style(SplitsSheet, "D", splitRow, style)
		splitRow++

		for _, sh := range s.Shares {
			w.row(SharesSheet, shareRow,
				s.ID,
				name(sh.ParticipantID),
				sh.Amount.InexactFloat64(),
				sh.Percentage.InexactFloat64(),
				string(sh.Status),
			)
			w.style(SharesSheet, "C", shareRow, style)
			w.style(SharesSheet, "D", shareRow, style)
			shareRow++
		}

		for _, item := range s.Items {
			assigned := make([]string, len(item.AssignedTo))
			for i, id := range item.AssignedTo {
				assigned[i] = name(id)
			}
			w.row(ItemsSheet, itemRow,
				s.ID,
				item.Name,
				item.Quantity,
				item.UnitPrice.InexactFloat64(),
				item.LineTotal().InexactFloat64(),
				strings.Join(assigned, ", "),
			)
			w.style(ItemsSheet, "D", itemRow, style)
			w.style(ItemsSheet, "E", itemRow, style)
			itemRow++
		}
	}

	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first cell error so the render loop stays flat.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) header(sheet string, style int, titles ...string) {
	vals := make([]any, len(titles))
	for i, t := range titles {
		vals[i] = t
	}
	w.row(sheet, 1, vals...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, style); err != nil {
		w.err = err
	}
}

func (w *sheetWriter) row(sheet string, row int, vals ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &vals); err != nil {
		w.err = fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
}

func (w *sheetWriter) style(sheet, col string, row, style int) {
	if w.err != nil {
		return
	}
	cell := fmt.Sprintf("%s%d", col, row)
	if err := w.f.SetCellStyle(sheet, cell, cell, style); err != nil {
		w.err = err
	}
}
