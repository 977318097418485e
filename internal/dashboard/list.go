// Package dashboard holds the view logic shared by the web dashboard and the
// terminal client: list ordering and paging, detail presentation and the
// two-step verification flow.
package dashboard

import (
	"sort"

	"github.com/freshxpress/dashboard/internal/models"
)

// PageSize is the number of farmers per list page.
const PageSize = 10

const shortIDLen = 8

// SortByVerification returns a copy of farmers ordered by verification flag.
// Farmers with the same flag keep their fetch order.
func SortByVerification(farmers []models.FarmerSummary, verifiedFirst bool) []models.FarmerSummary {
	out := make([]models.FarmerSummary, len(farmers))
	copy(out, farmers)
	sort.SliceStable(out, func(i, j int) bool {
		if verifiedFirst {
			return out[i].IsVerify && !out[j].IsVerify
		}
		return !out[i].IsVerify && out[j].IsVerify
	})
	return out
}

// SortToggleLabel is the caption of the button that flips the order.
func SortToggleLabel(verifiedFirst bool) string {
	if verifiedFirst {
		return "Sort by Unverified"
	}
	return "Sort by Verified"
}

// SortParam and ParseSort map the order to and from the ?sort= query value.
func SortParam(verifiedFirst bool) string {
	if verifiedFirst {
		return "verified"
	}
	return "unverified"
}

func ParseSort(v string) bool {
	return v == "verified"
}

// TotalPages is ceil(n / PageSize).
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// ClampPage keeps page inside [1, max(1, TotalPages(n))].
func ClampPage(page, n int) int {
	last := TotalPages(n)
	if last < 1 {
		last = 1
	}
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// Page is one slice of the ordered list.
type Page struct {
	Items   []models.FarmerSummary
	Number  int
	Total   int
	HasPrev bool
	HasNext bool
}

// Prev and Next are the neighbouring page numbers, clamped.
func (p Page) Prev() int {
	if p.HasPrev {
		return p.Number - 1
	}
	return p.Number
}

func (p Page) Next() int {
	if p.HasNext {
		return p.Number + 1
	}
	return p.Number
}

// Paginate cuts the requested page out of farmers. Out of range page numbers
// are clamped rather than wrapped.
func Paginate(farmers []models.FarmerSummary, page int) Page {
	n := len(farmers)
	page = ClampPage(page, n)
	start := (page - 1) * PageSize
	end := start + PageSize
	if end > n {
		end = n
	}
	total := TotalPages(n)
	return Page{
		Items:   farmers[start:end],
		Number:  page,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page < total,
	}
}

// ShortID is the compact form of an identifier shown in the list. Links
// always use the full identifier.
func ShortID(id string) string {
	r := []rune(id)
	if len(r) <= shortIDLen {
		return id
	}
	return string(r[:shortIDLen]) + "..."
}
