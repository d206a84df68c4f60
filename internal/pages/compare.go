package pages

import (
	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/stores/compare"
	"github.com/bobmcallan/raymonds/internal/view"
)

// ComparePage is the comparison selection and, when open, its modal table.
type ComparePage struct {
	Header      Header
	Items       []models.CompanyScore
	Table       view.Table
	IsModalOpen bool
	CanOpen     bool
	Max         int
	Message     string
}

// Compare renders a selection snapshot.
func (p *Pages) Compare(selection compare.State) ComparePage {
	page := ComparePage{
		Header:      p.Header(),
		Items:       selection.Items,
		IsModalOpen: selection.IsModalOpen,
		CanOpen:     selection.Len() >= compare.MinForModal,
		Max:         selection.Max,
	}
	switch {
	case selection.Len() == 0:
		page.Message = "Select companies to compare."
	case !page.CanOpen:
		page.Message = "Select at least two companies to compare."
	}
	page.Table = view.ComparisonTable(selection.Items)
	return page
}
