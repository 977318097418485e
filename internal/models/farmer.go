package models

// FarmerSummary is one row of the farmer collection returned by GET /api/farmers.
type FarmerSummary struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	ContactNumber Text   `json:"contact_number"`
	State         Text   `json:"state"`
	IsVerify      bool   `json:"is_verify"`
}

// Farmer is the full detail record returned by GET /api/farmers/{id}.
// Every descriptive field is optional and decoded leniently.
type Farmer struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	ContactNumber Text   `json:"contact_number,omitempty"`
	Email         Text   `json:"email,omitempty"`
	Aadhaar       Text   `json:"aadhaar,omitempty"`

	TotalLandArea    Text     `json:"total_land_area,omitempty"`
	CropsGrown       []string `json:"crops_grown,omitempty"`
	FarmingType      Text     `json:"farming_type,omitempty"`
	IrrigationMethod Text     `json:"irrigation_method,omitempty"`
	FertilizerUsage  Text     `json:"fertilizer_usage,omitempty"`
	HarvestSeasons   Text     `json:"harvest_seasons,omitempty"`
	AverageYield     Text     `json:"average_yield,omitempty"`
	PreviousBuyers   Text     `json:"previous_buyers,omitempty"`

	Village       Text     `json:"village,omitempty"`
	Taluk         Text     `json:"taluk,omitempty"`
	District      Text     `json:"district,omitempty"`
	State         Text     `json:"state,omitempty"`
	PinCode       Text     `json:"pin_code,omitempty"`
	GeoLocation   Text     `json:"geo_location,omitempty"`
	NearestMarket Text     `json:"nearest_market,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`

	DeliveryMode          Text `json:"delivery_mode,omitempty"`
	StorageFacilities     Text `json:"storage_facilities,omitempty"`
	DistanceToRoad        Text `json:"distance_to_road,omitempty"`
	TransportAvailability Text `json:"transport_availability,omitempty"`

	PaymentMethod Text `json:"payment_method,omitempty"`
	BankAccount   Text `json:"bank_account,omitempty"`
	BankName      Text `json:"bank_name,omitempty"`
	IFSCCode      Text `json:"ifsc_code,omitempty"`
	UPIID         Text `json:"upi_id,omitempty"`

	LandOwnershipProof  Text `json:"land_ownership_proof,omitempty"`
	LongTermPartnership Text `json:"long_term_partnership,omitempty"`
	AdditionalRemarks   Text `json:"additional_remarks,omitempty"`

	IsVerify bool `json:"is_verify"`
}

// Summary projects the detail record onto the list row shape.
func (f *Farmer) Summary() FarmerSummary {
	return FarmerSummary{
		ID:            f.ID,
		FullName:      f.FullName,
		ContactNumber: f.ContactNumber,
		State:         f.State,
		IsVerify:      f.IsVerify,
	}
}

// Coordinates returns the map position when both latitude and longitude are
// present and non-zero.
func (f *Farmer) Coordinates() (lat, lng float64, ok bool) {
	if f.Latitude == nil || f.Longitude == nil {
		return 0, 0, false
	}
	if *f.Latitude == 0 || *f.Longitude == 0 {
		return 0, 0, false
	}
	return *f.Latitude, *f.Longitude, true
}

// VerificationUpdate is the body of PUT /api/farmers/{id}.
type VerificationUpdate struct {
	IsVerify bool `json:"is_verify"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /api/auth/login. Message is set on failure
// and sometimes on success.
type LoginResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}
