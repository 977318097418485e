package dashboard

import (
	"strconv"
	"sync"

	"github.com/freshxpress/dashboard/internal/models"
)

// Placeholder is shown for any empty field.
const Placeholder = "-"

// DetailState is the lifecycle of one detail fetch.
type DetailState int

const (
	StateLoading DetailState = iota
	StateNotFound
	StateLoaded
)

func (s DetailState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateNotFound:
		return "not_found"
	default:
		return "loaded"
	}
}

// Ticket identifies one fetch issued by Detail.Begin.
type Ticket struct {
	id  string
	seq uint64
}

// ID is the identifier the fetch was issued for.
func (t Ticket) ID() string { return t.id }

// Detail tracks the farmer currently on screen. Each Begin supersedes the
// previous fetch; responses carrying an older ticket are dropped so a slow
// response for a previous identifier cannot overwrite the current one.
type Detail struct {
	mu     sync.Mutex
	seq    uint64
	id     string
	state  DetailState
	farmer *models.Farmer
}

// Begin starts loading id and returns the ticket its response must carry.
func (d *Detail) Begin(id string) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.id = id
	d.state = StateLoading
	d.farmer = nil
	return Ticket{id: id, seq: d.seq}
}

// Resolve applies a fetch result. It reports false, changing nothing, when t
// is stale. A fetch error or a nil record both end in StateNotFound.
func (d *Detail) Resolve(t Ticket, f *models.Farmer, err error) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.seq != d.seq || t.id != d.id {
		return false
	}
	if err != nil || f == nil {
		d.state = StateNotFound
		d.farmer = nil
		return true
	}
	d.state = StateLoaded
	d.farmer = f
	return true
}

// State returns the current state.
func (d *Detail) State() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Farmer returns the loaded record or nil.
func (d *Detail) Farmer() *models.Farmer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.farmer
}

// SetVerified updates the loaded record after the backend acknowledged a
// verification change.
func (d *Detail) SetVerified(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.farmer != nil {
		d.farmer.IsVerify = v
	}
}

// Field is one labelled value.
type Field struct {
	Label string
	Value string
}

// Section groups fields under a heading.
type Section struct {
	Title  string
	Fields []Field
}

// MapPoint is the marker position of a farm.
type MapPoint struct {
	Lat float64
	Lng float64
}

// DetailView is the render-ready form of a farmer record.
type DetailView struct {
	ID          string
	Name        string
	Personal    Section
	Farm        Section
	Crops       []string
	Location    Section
	Additional  Section
	Banking     Section
	DocumentURL string
	Map         *MapPoint
}

// Present builds the view of f. Empty values become Placeholder.
func Present(f *models.Farmer) DetailView {
	v := DetailView{
		ID:   orPlaceholder(f.ID),
		Name: orPlaceholder(f.FullName),
		Personal: Section{Title: "Personal Information", Fields: []Field{
			{"Contact", orPlaceholder(f.ContactNumber)},
			{"Email", orPlaceholder(f.Email)},
			{"Aadhaar", orPlaceholder(f.Aadhaar)},
		}},
		Farm: Section{Title: "Farm Details", Fields: []Field{
			{"Total Land Area", orPlaceholder(f.TotalLandArea)},
			{"Farming Type", orPlaceholder(f.FarmingType)},
			{"Irrigation Method", orPlaceholder(f.IrrigationMethod)},
			{"Fertilizer Usage", orPlaceholder(f.FertilizerUsage)},
			{"Harvest Seasons", orPlaceholder(f.HarvestSeasons)},
			{"Average Yield", orPlaceholder(f.AverageYield)},
		}},
		Location: Section{Title: "Location Details", Fields: []Field{
			{"Village", orPlaceholder(f.Village)},
			{"Taluk", orPlaceholder(f.Taluk)},
			{"District", orPlaceholder(f.District)},
			{"State", orPlaceholder(f.State)},
			{"PIN Code", orPlaceholder(f.PinCode)},
			{"Geo Location", orPlaceholder(f.GeoLocation)},
			{"Nearest Market", orPlaceholder(f.NearestMarket)},
			{"Distance to Road", orPlaceholder(f.DistanceToRoad)},
		}},
		Additional: Section{Title: "Additional Information", Fields: []Field{
			{"Storage Facilities", orPlaceholder(f.StorageFacilities)},
			{"Transport Availability", orPlaceholder(f.TransportAvailability)},
			{"Delivery Mode", orPlaceholder(f.DeliveryMode)},
			{"Previous Buyers", orPlaceholder(f.PreviousBuyers)},
			{"Long Term Partnership", orPlaceholder(f.LongTermPartnership)},
			{"Additional Remarks", orPlaceholder(f.AdditionalRemarks)},
		}},
		Banking: Section{Title: "Banking Details", Fields: []Field{
			{"Payment Method", orPlaceholder(f.PaymentMethod)},
			{"Bank Name", orPlaceholder(f.BankName)},
			{"Account Number", orPlaceholder(f.BankAccount)},
			{"IFSC Code", orPlaceholder(f.IFSCCode)},
			{"UPI ID", orPlaceholder(f.UPIID)},
		}},
		DocumentURL: f.LandOwnershipProof.String(),
	}
	for _, c := range f.CropsGrown {
		if c != "" {
			v.Crops = append(v.Crops, c)
		}
	}
	if lat, lng, ok := f.Coordinates(); ok {
		v.Map = &MapPoint{Lat: lat, Lng: lng}
	}
	return v
}

// FormatCoord renders a coordinate for HTML data attributes.
func FormatCoord(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func orPlaceholder[T ~string](s T) string {
	if s == "" {
		return Placeholder
	}
	return string(s)
}
