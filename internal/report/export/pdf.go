package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/report/domain"
)

// Grid widths per column, summing to maroto's 12-column grid.
var pdfWidths = []int{1, 2, 2, 1, 1, 1, 1, 2, 1}

// PDFMeta is printed above the table.
type PDFMeta struct {
	Title       string
	GeneratedAt string
}

// RenderPDF lays the report rows out as a paginated table with a totals line.
func RenderPDF(meta PDFMeta, rows []domain.Row) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	title := meta.Title
	if title == "" {
		title = "Inventory report"
	}
	m.AddRow(12,
		text.NewCol(12, title, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	if meta.GeneratedAt != "" {
		m.AddRow(8, text.NewCol(12, "Generated "+meta.GeneratedAt, props.Text{Size: 8}))
	}

	header := make([]colSpec, 0, len(domain.Headers))
	for i, h := range domain.Headers {
		header = append(header, colSpec{width: pdfWidths[i], value: h, bold: true})
	}
	m.AddRow(10, cols(header)...)

	var units int64
	revenue := decimal.Zero
	for _, r := range rows {
		specs := make([]colSpec, 0, len(domain.Columns))
		for i, c := range domain.Columns {
			specs = append(specs, colSpec{width: pdfWidths[i], value: r.Value(c)})
		}
		m.AddRow(7, cols(specs)...)
		units += r.UnitsSold
		revenue = revenue.Add(r.TotalRevenue)
	}

	m.AddRow(10,
		col.New(6),
		text.NewCol(3, fmt.Sprintf("Units sold: %d", units), props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
		text.NewCol(3, "Revenue: "+revenue.StringFixed(2), props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

type colSpec struct {
	width int
	value string
	bold  bool
}

func cols(specs []colSpec) []core.Col {
	out := make([]core.Col, 0, len(specs))
	for _, s := range specs {
		p := props.Text{Size: 7}
		if s.bold {
			p.Style = fontstyle.Bold
		}
		out = append(out, text.NewCol(s.width, s.value, p))
	}
	return out
}
