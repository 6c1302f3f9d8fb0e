package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// excelStyles holds the style ids shared by every sheet of an export.
type excelStyles struct {
	title, subtitle, header, row, label, value int
}

// GenerateProposalExcel creates an Excel workbook with a summary sheet and one
// sheet per phase listing its itemized calculation results.
func GenerateProposalExcel(doc Proposal) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, "Summary"); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if err := writeSummarySheet(f, "Summary", doc, styles); err != nil {
		return nil, err
	}

	for _, phase := range []Phase{PhaseDesign, PhaseConstruction} {
		name := phaseSheetName(phase)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
		if err := writePhaseSheet(f, name, doc, phase, styles); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func phaseSheetName(phase Phase) string {
	switch phase {
	case PhaseDesign:
		return "Design"
	case PhaseConstruction:
		return "Construction"
	}
	return string(phase)
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}

	if s.subtitle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	}); err != nil {
		return s, fmt.Errorf("create subtitle style: %w", err)
	}

	// Column header: bold, white text, charcoal background, centered.
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}

	if s.row, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create row style: %w", err)
	}

	if s.label, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return s, fmt.Errorf("create label style: %w", err)
	}

	if s.value, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	}); err != nil {
		return s, fmt.Errorf("create value style: %w", err)
	}

	return s, nil
}

func writeSummarySheet(f *excelize.File, sheet string, doc Proposal, st excelStyles) error {
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return fmt.Errorf("set col width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "D", 18); err != nil {
		return fmt.Errorf("set col width: %w", err)
	}

	if err := f.MergeCell(sheet, "A1", "D1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	title := "Fee Proposal " + doc.ProposalNumber
	if doc.RevisionNumber > 0 {
		title += fmt.Sprintf(" Rev %d", doc.RevisionNumber)
	}
	f.SetCellValue(sheet, "A1", sanitizeExcelCell(title))
	f.SetCellStyle(sheet, "A1", "D1", st.title)

	f.SetCellValue(sheet, "A2", "Status: "+sanitizeExcelCell(doc.Status))
	f.SetCellStyle(sheet, "A2", "A2", st.subtitle)
	if doc.Description != "" {
		if err := f.MergeCell(sheet, "A3", "D3"); err != nil {
			return fmt.Errorf("merge description: %w", err)
		}
		f.SetCellValue(sheet, "A3", sanitizeExcelCell(doc.Description))
		f.SetCellStyle(sheet, "A3", "D3", st.subtitle)
	}
	if c, ok := PrimaryContact(doc.Contacts); ok {
		f.SetCellValue(sheet, "A4", sanitizeExcelCell(fmt.Sprintf("Primary contact: %s <%s>", c.Name, c.Email)))
		f.SetCellStyle(sheet, "A4", "A4", st.subtitle)
	}

	headers := []string{"Phase", "Itemized Total", "Stored Total", "Cost Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 6)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A6", "D6", st.header)

	summary := SummarizeCalculations(doc)
	row := 7
	for _, ps := range []PhaseSummary{summary.Design, summary.Construction} {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheet, "A"+r, phaseSheetName(ps.Phase))
		f.SetCellValue(sheet, "B"+r, FormatCurrency(ps.ItemizedTotal))
		f.SetCellValue(sheet, "C"+r, FormatCurrency(ps.StoredTotal))
		f.SetCellValue(sheet, "D"+r, FormatCurrency(ps.CostTotal))
		f.SetCellStyle(sheet, "A"+r, "D"+r, st.row)
		row++
	}

	r := fmt.Sprintf("%d", row)
	f.SetCellValue(sheet, "A"+r, "Total:")
	f.SetCellStyle(sheet, "A"+r, "A"+r, st.label)
	f.SetCellValue(sheet, "B"+r, FormatCurrency(summary.ItemizedTotal))
	f.SetCellValue(sheet, "C"+r, FormatCurrency(summary.StoredTotal))
	f.SetCellValue(sheet, "D"+r, FormatCurrency(summary.CostTotal))
	f.SetCellStyle(sheet, "B"+r, "D"+r, st.value)

	return nil
}

func writePhaseSheet(f *excelize.File, sheet string, doc Proposal, phase Phase, st excelStyles) error {
	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	widths := []float64{12, 24, 24, 12, 16, 40, 22}
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	if err := f.MergeCell(sheet, "A1", "G1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", phaseSheetName(phase)+" fees")
	f.SetCellStyle(sheet, "A1", "G1", st.title)

	headers := []string{"Level", "Node", "Category", "Source", "Value", "Parameters", "Timestamp"}
	for i, h := range headers {
		f.SetCellValue(sheet, columns[i]+"3", h)
	}
	f.SetCellStyle(sheet, "A3", "G3", st.header)

	names := nodeNames(doc.ProjectData.Structures)
	pc := doc.ProjectData.Calculations.For(phase)
	groups := []struct {
		label   string
		results []CalculationResult
	}{
		{"Structure", pc.Structures},
		{"Level", pc.Levels},
		{"Space", pc.Spaces},
	}

	row := 4
	for _, g := range groups {
		for _, res := range g.results {
			r := fmt.Sprintf("%d", row)
			nodeID := res.SpaceID
			if nodeID == "" {
				nodeID = res.LevelID
			}
			if nodeID == "" {
				nodeID = res.StructureID
			}
			node := nodeID
			if n, ok := names[nodeID]; ok {
				node = n
			}

			f.SetCellValue(sheet, "A"+r, g.label)
			f.SetCellValue(sheet, "B"+r, sanitizeExcelCell(node))
			f.SetCellValue(sheet, "C"+r, sanitizeExcelCell(res.Category))
			f.SetCellValue(sheet, "D"+r, string(res.Source))
			f.SetCellValue(sheet, "E"+r, FormatCurrency(res.Value))
			f.SetCellValue(sheet, "F"+r, sanitizeExcelCell(FormatParams(res.Parameters)))
			if !res.Timestamp.IsZero() {
				f.SetCellValue(sheet, "G"+r, res.Timestamp.UTC().Format("2006-01-02 15:04:05"))
			}
			f.SetCellStyle(sheet, "A"+r, "G"+r, st.row)
			row++
		}
	}

	ps := SummarizePhase(doc, phase)
	row++
	r := fmt.Sprintf("%d", row)
	f.SetCellValue(sheet, "D"+r, "Itemized Total:")
	f.SetCellStyle(sheet, "D"+r, "D"+r, st.label)
	f.SetCellValue(sheet, "E"+r, FormatCurrency(ps.ItemizedTotal))
	f.SetCellStyle(sheet, "E"+r, "E"+r, st.value)
	row++

	r = fmt.Sprintf("%d", row)
	f.SetCellValue(sheet, "D"+r, "Stored Total:")
	f.SetCellStyle(sheet, "D"+r, "D"+r, st.label)
	f.SetCellValue(sheet, "E"+r, FormatCurrency(ps.StoredTotal))
	f.SetCellStyle(sheet, "E"+r, "E"+r, st.value)

	return nil
}

// nodeNames maps every structure, level and space id to its display name.
func nodeNames(structures []Structure) map[string]string {
	names := make(map[string]string)
	for _, s := range structures {
		names[s.ID] = s.Name
		for _, l := range s.Levels {
			names[l.ID] = s.Name + " / " + l.Name
			for _, sp := range l.Spaces {
				names[sp.ID] = s.Name + " / " + l.Name + " / " + sp.Name
			}
		}
	}
	return names
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1,
		}
	}
	return borders
}
