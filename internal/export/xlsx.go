// Package export renders leaderboards as spreadsheets.
package export

import (
	"fmt"
	"strings"

	"github.com/trentd187/golf-trips/internal/scoring"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an .xlsx file.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// bandColors fills classified cells. Par stays unfilled.
var bandColors = map[scoring.Band]string{
	scoring.BandEagle:       "#F9D976",
	scoring.BandBirdie:      "#F4A6A6",
	scoring.BandBogey:       "#C9DCF0",
	scoring.BandDoubleBogey: "#8FB3DE",
	scoring.BandWorse:       "#5A86C5",
}

const maxSheetName = 31

// LeaderboardWorkbook builds one sheet per round: a header row, a par row when
// the course has par data, then one row per standing with per-hole strokes
// (cleared holes left blank), total and differential.
func LeaderboardWorkbook(eventName string, boards []scoring.RoundBoard) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetDocProps(&excelize.DocProperties{Title: eventName, Creator: "golf-trips"}); err != nil {
		return nil, err
	}

	styles, err := bandStyles(f)
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	first := f.GetSheetName(0)
	if len(boards) == 0 {
		if err := f.SetSheetName(first, "Leaderboard"); err != nil {
			return nil, err
		}
		if err := f.SetCellValue("Leaderboard", "A1", "No rounds scheduled"); err != nil {
			return nil, err
		}
		return f, nil
	}

	used := make(map[string]bool)
	for i, b := range boards {
		name := sheetName(i, b.CourseName, used)
		if i == 0 {
			err = f.SetSheetName(first, name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		if err := writeBoard(f, name, b, styles, bold); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func bandStyles(f *excelize.File) (map[scoring.Band]int, error) {
	styles := make(map[scoring.Band]int, len(bandColors))
	for band, color := range bandColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return nil, err
		}
		styles[band] = id
	}
	return styles, nil
}

func writeBoard(f *excelize.File, sheet string, b scoring.RoundBoard, styles map[scoring.Band]int, bold int) error {
	header := []any{"Pos", "Player"}
	if len(b.Standings) > 0 {
		for _, h := range b.Standings[0].Holes {
			header = append(header, h.Hole)
		}
	}
	header = append(header, "Total", "To Par")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol, bold); err != nil {
		return err
	}

	row := 2
	if b.HasPar && len(b.Standings) > 0 {
		par := []any{"", "Par"}
		for _, h := range b.Standings[0].Holes {
			par = append(par, valueOrBlank(h.Par))
		}
		par = append(par, b.TotalPar, "")
		if err := writeRow(f, sheet, row, par); err != nil {
			return err
		}
		row++
	}

	for _, s := range b.Standings {
		line := []any{positionLabel(s.Position), s.Player.Name}
		for _, h := range s.Holes {
			if h.Strokes == 0 {
				line = append(line, "")
			} else {
				line = append(line, h.Strokes)
			}
		}
		line = append(line, s.TotalStrokes, s.ToPar)
		if err := writeRow(f, sheet, row, line); err != nil {
			return err
		}

		for i, h := range s.Holes {
			style, ok := styles[h.Band]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(3+i, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
		row++
	}

	return f.SetColWidth(sheet, "B", "B", 24)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func valueOrBlank(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func positionLabel(p int) any {
	if p == 0 {
		return "-"
	}
	return p
}

// sheetName makes a unique, valid sheet name like "R1 Bandon Dunes".
func sheetName(i int, course string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return ' '
		}
		return r
	}, course)
	name := strings.TrimSpace(fmt.Sprintf("R%d %s", i+1, clean))
	if len([]rune(name)) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	if used[name] {
		name = fmt.Sprintf("R%d", i+1)
	}
	used[name] = true
	return name
}
