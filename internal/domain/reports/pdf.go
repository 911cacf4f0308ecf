package reports

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"roster/internal/domain/directory"
)

type RosterDocument struct {
	Title       string
	Filter      directory.UserFilter
	Users       []directory.User
	Roles       []directory.Role
	GeneratedAt time.Time
}

var rosterColumns = []struct {
	title string
	width float64
}{
	{"Name", 50},
	{"Email", 62},
	{"Phone", 32},
	{"Status", 20},
	{"Pay", 18},
	{"Clock", 16},
	{"Roles", 69},
}

func writeRosterPDF(w io.Writer, doc RosterDocument) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.Title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, doc.Title)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", doc.GeneratedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(6)
	if desc := describeFilter(doc.Filter, doc.Roles); desc != "" {
		pdf.Cell(0, 6, tr("Filter: "+desc))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("%d employee(s)", len(doc.Users)))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(229, 231, 235)
	for _, col := range rosterColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, u := range doc.Users {
		roleNames := make([]string, 0, len(u.Roles))
		for _, r := range directory.ResolveRoles(u, doc.Roles) {
			roleNames = append(roleNames, r.Name)
		}
		cells := []string{
			u.FullName(),
			u.Email,
			u.Phone,
			string(u.Status),
			string(u.PayType),
			u.ClockCode,
			strings.Join(roleNames, ", "),
		}
		for i, col := range rosterColumns {
			pdf.CellFormat(col.width, 7, tr(fit(pdf, cells[i], col.width-2)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render roster pdf: %w", err)
	}
	return nil
}

// fit truncates text so it fits in width at the current font.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func describeFilter(f directory.UserFilter, roles []directory.Role) string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", f.Search))
	}
	if f.Status != "" && f.Status != directory.FilterAll {
		parts = append(parts, "status "+f.Status)
	}
	if f.Role != "" && f.Role != directory.FilterAll {
		name := f.Role
		for _, r := range roles {
			if r.ID == f.Role {
				name = r.Name
				break
			}
		}
		parts = append(parts, "role "+name)
	}
	return strings.Join(parts, ", ")
}
