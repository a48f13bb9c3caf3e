package reports

import (
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

const (
	gridCellSize = 16
	gridGap      = 2
)

var markColors = map[AttendanceMark]color.NRGBA{
	AttendanceMarkPresent: {R: 0x2e, G: 0xa0, B: 0x43, A: 0xff},
	AttendanceMarkAbsent:  {R: 0xd0, G: 0x3b, B: 0x3b, A: 0xff},
	AttendanceMarkBenched: {R: 0xe3, G: 0xa0, B: 0x1b, A: 0xff},
	AttendanceMarkNone:    {R: 0x3a, G: 0x3a, B: 0x3a, A: 0xff},
}

var gridBackground = color.NRGBA{R: 0x1b, G: 0x1b, B: 0x1b, A: 0xff}

// RenderAttendanceGrid draws one row per character and one column per raid,
// in report order. Row i matches report.Characters[i].
func RenderAttendanceGrid(report *TeamAttendanceReport) *image.NRGBA {
	cols := len(report.Raids)
	rows := len(report.Characters)
	width := gridGap + max(cols, 1)*(gridCellSize+gridGap)
	height := gridGap + max(rows, 1)*(gridCellSize+gridGap)

	canvas := imaging.New(width, height, gridBackground)
	cells := make(map[AttendanceMark]*image.NRGBA, len(markColors))
	for mark, c := range markColors {
		cells[mark] = imaging.New(gridCellSize, gridCellSize, c)
	}

	for r, character := range report.Characters {
		for c, mark := range character.Marks {
			pos := image.Pt(gridGap+c*(gridCellSize+gridGap), gridGap+r*(gridCellSize+gridGap))
			canvas = imaging.Paste(canvas, cells[mark], pos)
		}
	}
	return canvas
}

func WriteAttendancePNG(w io.Writer, report *TeamAttendanceReport) error {
	return imaging.Encode(w, RenderAttendanceGrid(report), imaging.PNG)
}
